package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"scenesampler/internal/domain"
)

// Environment variables that override config file values
const (
	EnvNumObjects   = "SCENESAMPLER_NUM_OBJECTS"
	EnvSeed         = "SCENESAMPLER_SEED"
	EnvInputDir     = "SCENESAMPLER_INPUT_DIR"
	EnvOutputDir    = "SCENESAMPLER_OUTPUT_DIR"
	EnvDatasets     = "SCENESAMPLER_DATASETS"
	EnvSceneFile    = "SCENESAMPLER_SCENE_FILE"
	EnvCopySidecars = "SCENESAMPLER_COPY_SIDECARS"
	EnvWorkers      = "SCENESAMPLER_WORKERS"
	EnvStatsFile    = "SCENESAMPLER_STATS_FILE"
	EnvStatsDB      = "SCENESAMPLER_STATS_DB"
	EnvLogLevel     = "SCENESAMPLER_LOG_LEVEL"
)

// LoadDotEnv loads variables from the given .env files (./.env when none are
// named). Variables already set in the environment are not overwritten. A
// missing file is not an error; it reports false.
func LoadDotEnv(files ...string) (bool, error) {
	if err := godotenv.Load(files...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ApplyEnv overrides config values from SCENESAMPLER_* variables. Unparseable
// numbers are configuration errors rather than silently ignored.
func (c *Config) ApplyEnv() error {
	if v, ok := lookup(EnvNumObjects); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &domain.ConfigurationError{Field: "num_objects", Reason: "not an integer: " + v}
		}
		c.NumObjects = n
	}
	if v, ok := lookup(EnvSeed); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return &domain.ConfigurationError{Field: "seed", Reason: "not an integer: " + v}
		}
		c.Seed = n
	}
	if v, ok := lookup(EnvWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &domain.ConfigurationError{Field: "workers", Reason: "not an integer: " + v}
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvCopySidecars); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &domain.ConfigurationError{Field: "copy_sidecars", Reason: "not a boolean: " + v}
		}
		c.CopySidecars = b
	}
	if v, ok := lookup(EnvDatasets); ok {
		c.Datasets = SplitList(v)
	}

	for env, dst := range map[string]*string{
		EnvInputDir:  &c.InputDir,
		EnvOutputDir: &c.OutputDir,
		EnvSceneFile: &c.SceneFile,
		EnvStatsFile: &c.StatsFile,
		EnvStatsDB:   &c.StatsDB,
		EnvLogLevel:  &c.LogLevel,
	} {
		if v, ok := lookup(env); ok {
			*dst = v
		}
	}

	return nil
}

// SplitList splits a comma or whitespace separated list, dropping empties
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	return fields
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
