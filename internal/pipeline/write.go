package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// writeFileAtomic writes data to a temporary file beside path and renames it
// into place, so path is either the complete new content or untouched
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// copySidecars copies the other .json files of a scene directory next to
// the sampled scene file
func copySidecars(srcDir, dstDir, sceneFile string) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", srcDir, err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == sceneFile || !strings.EqualFold(filepath.Ext(name), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(srcDir, name))
		if err != nil {
			return fmt.Errorf("failed to read sidecar %s: %w", name, err)
		}
		if err := writeFileAtomic(filepath.Join(dstDir, name), data); err != nil {
			return fmt.Errorf("failed to copy sidecar %s: %w", name, err)
		}
	}
	return nil
}
