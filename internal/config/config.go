// Package config provides configuration management for the scene sampler.
//
// Values are resolved in layers, later layers winning:
//  1. built-in defaults
//  2. config file
//  3. .env file and SCENESAMPLER_* environment variables
//  4. command line flags (applied by the caller)
//
// Config file locations (priority order):
//  1. $SCENESAMPLER_CONFIG
//  2. ./scenesampler.yaml
//  3. $XDG_CONFIG_HOME/scenesampler/config.yaml
//  4. ~/.config/scenesampler/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator"
	"gopkg.in/yaml.v3"

	"scenesampler/internal/domain"
)

var validate = validator.New()

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path. Keys absent from the file
// keep their default values.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the defaults for a run with no configuration
func DefaultConfig() *Config {
	return &Config{
		Version:      1,
		NumObjects:   domain.DefaultTargetObjectCount,
		Seed:         domain.DefaultSeed,
		InputDir:     DefaultInputDir,
		OutputDir:    DefaultOutputDir,
		Datasets:     slices.Clone(KnownDatasets),
		SceneFile:    DefaultSceneFile,
		CopySidecars: true,
		LogLevel:     DefaultLogLevel,
	}
}

// applyDefaults fills in values a config file may blank out. NumObjects is
// never defaulted here: an explicit zero must fail validation.
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.SceneFile == "" {
		c.SceneFile = DefaultSceneFile
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if len(c.Datasets) == 0 {
		c.Datasets = slices.Clone(KnownDatasets)
	}
}

// Validate checks the configuration and returns a *domain.ConfigurationError
// naming the first invalid field
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		if c.InputDir == c.OutputDir {
			return &domain.ConfigurationError{Field: "output_dir", Reason: "must differ from input_dir"}
		}
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &domain.ConfigurationError{Field: "config", Reason: err.Error()}
	}

	fe := verrs[0]
	field, ok := yamlFieldName(fe.StructField())
	if !ok {
		field = fe.Field()
	}

	var reason string
	switch fe.Tag() {
	case "min":
		if fe.StructField() == "NumObjects" {
			reason = "must be a positive integer"
		} else {
			reason = "must be at least " + fe.Param()
		}
	case "required":
		reason = "is required"
	case "oneof":
		reason = "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		reason = fmt.Sprintf("failed %q validation", fe.Tag())
	}

	return &domain.ConfigurationError{Field: field, Reason: reason}
}

// Policy returns the sampling policy described by the config
func (c *Config) Policy() domain.SamplingPolicy {
	return domain.SamplingPolicy{
		TargetObjectCount: c.NumObjects,
		Seed:              c.Seed,
		DatasetFilter:     slices.Clone(c.Datasets),
	}
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := "Sampling Configuration:\n"
	summary += fmt.Sprintf("  Objects per scene: %d\n", c.NumObjects)
	summary += fmt.Sprintf("  Input directory: %s\n", c.InputDir)
	summary += fmt.Sprintf("  Output directory: %s\n", c.OutputDir)
	summary += fmt.Sprintf("  Datasets: %s\n", strings.Join(c.Datasets, ", "))
	summary += fmt.Sprintf("  Random seed: %d", c.Seed)
	return summary
}

var yamlNames = map[string]string{
	"NumObjects": "num_objects",
	"InputDir":   "input_dir",
	"OutputDir":  "output_dir",
	"Datasets":   "datasets",
	"SceneFile":  "scene_file",
	"Workers":    "workers",
	"LogLevel":   "log_level",
}

func yamlFieldName(structField string) (string, bool) {
	name, ok := yamlNames[structField]
	return name, ok
}
