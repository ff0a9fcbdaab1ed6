package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Run describes one sampling invocation
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Seed       int64     `json:"seed" yaml:"seed"`
	NumObjects int       `json:"num_objects" yaml:"num_objects"`
	Datasets   []string  `json:"datasets" yaml:"datasets"`
	InputDir   string    `json:"input_dir" yaml:"input_dir"`
	OutputDir  string    `json:"output_dir" yaml:"output_dir"`
}

// Report is the persisted form of a run
type Report struct {
	Run      Run          `json:"run" yaml:"run"`
	Summary  Summary      `json:"summary" yaml:"summary"`
	Scenes   []SceneStats `json:"scenes" yaml:"scenes"`
	Failures []Failure    `json:"failures" yaml:"failures"`
}

// Marshal encodes the report as YAML for .yaml/.yml paths and indented JSON
// otherwise
func Marshal(path string, r Report) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Marshal(r)
	default:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

// WriteFile writes the report to path, replacing any previous report only
// once the new one is complete
func WriteFile(path string, r Report) error {
	data, err := Marshal(path, r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*")
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return os.Rename(tmp.Name(), path)
}
