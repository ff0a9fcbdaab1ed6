package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// SceneRef locates one scene record on disk
type SceneRef struct {
	Dataset string `json:"dataset"`
	SceneID string `json:"scene_id"`
	Dir     string `json:"dir"`
	Path    string `json:"path"`
}

// Discover finds scene records laid out as <inputDir>/<dataset>/<scene>/<sceneFile>.
// When datasets is empty every directory under inputDir is treated as a
// dataset. Datasets without a directory are returned as missing; scene
// directories without a scene file are skipped. Results are ordered by
// dataset (as given) then scene id.
func Discover(inputDir string, datasets []string, sceneFile string) ([]SceneRef, []string, error) {
	if len(datasets) == 0 {
		entries, err := os.ReadDir(inputDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list datasets in %s: %w", inputDir, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				datasets = append(datasets, e.Name())
			}
		}
	}

	var (
		refs    []SceneRef
		missing []string
	)

	for _, dataset := range datasets {
		datasetDir := filepath.Join(inputDir, dataset)
		if !isDir(datasetDir) {
			missing = append(missing, dataset)
			continue
		}

		entries, err := os.ReadDir(datasetDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list scenes in %s: %w", datasetDir, err)
		}

		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			sceneDir := filepath.Join(datasetDir, e.Name())
			path := filepath.Join(sceneDir, sceneFile)
			if !isFile(path) {
				continue
			}
			refs = append(refs, SceneRef{
				Dataset: dataset,
				SceneID: e.Name(),
				Dir:     sceneDir,
				Path:    path,
			})
		}
	}

	return refs, missing, nil
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
