package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"scenesampler/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.NumObjects != 15 {
		t.Errorf("NumObjects = %d, want 15", cfg.NumObjects)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if len(cfg.Datasets) != 3 {
		t.Errorf("Datasets = %v, want all known datasets", cfg.Datasets)
	}
	if !cfg.CopySidecars {
		t.Error("CopySidecars should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestDefaultConfigDoesNotShareDatasets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Datasets[0] = "changed"

	if KnownDatasets[0] != "scannet" {
		t.Error("modifying a config changed KnownDatasets")
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenesampler.yaml")

	content := `
num_objects: 20
seed: 7
datasets: [scannet]
stats_file: out/stats.json
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded != path {
		t.Errorf("path = %s, want %s", loaded, path)
	}
	if cfg.NumObjects != 20 || cfg.Seed != 7 {
		t.Errorf("NumObjects/Seed = %d/%d, want 20/7", cfg.NumObjects, cfg.Seed)
	}
	if len(cfg.Datasets) != 1 || cfg.Datasets[0] != "scannet" {
		t.Errorf("Datasets = %v, want [scannet]", cfg.Datasets)
	}
	if cfg.InputDir != DefaultInputDir {
		t.Errorf("InputDir = %s, want default %s", cfg.InputDir, DefaultInputDir)
	}
	if cfg.StatsFile != "out/stats.json" {
		t.Errorf("StatsFile = %s", cfg.StatsFile)
	}
}

func TestLoadFromPathExplicitZeroFailsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zero.yaml")
	if err := os.WriteFile(path, []byte("num_objects: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.NumObjects != 0 {
		t.Fatalf("NumObjects = %d, want explicit 0 to be kept", cfg.NumObjects)
	}

	err = cfg.Validate()
	var ce *domain.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if ce.Field != "num_objects" {
		t.Errorf("Field = %s, want num_objects", ce.Field)
	}
}

func TestLoadFromPathErrors(t *testing.T) {
	dir := t.TempDir()

	if _, _, err := LoadFromPath(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("num_objects: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadFromPath(bad); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"negative objects", func(c *Config) { c.NumObjects = -1 }, "num_objects"},
		{"empty input", func(c *Config) { c.InputDir = "" }, "input_dir"},
		{"empty output", func(c *Config) { c.OutputDir = "" }, "output_dir"},
		{"same dirs", func(c *Config) { c.OutputDir = c.InputDir }, "output_dir"},
		{"negative workers", func(c *Config) { c.Workers = -2 }, "workers"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"empty scene file", func(c *Config) { c.SceneFile = "" }, "scene_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
			var ce *domain.ConfigurationError
			errors.As(err, &ce)
			if ce.Field != tt.field {
				t.Errorf("Field = %s, want %s", ce.Field, tt.field)
			}
		})
	}
}

func TestPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumObjects = 8
	cfg.Seed = 99
	cfg.Datasets = []string{"multiscan"}

	p := cfg.Policy()
	if p.TargetObjectCount != 8 || p.Seed != 99 {
		t.Errorf("policy = %+v", p)
	}
	if !p.AllowsDataset("multiscan") || p.AllowsDataset("scannet") {
		t.Errorf("dataset filter = %v", p.DatasetFilter)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.NumObjects = 12
	cfg.StatsDB = "runs.db"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.NumObjects != 12 || loaded.StatsDB != "runs.db" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestFindConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", "")

	t.Setenv(EnvConfigPath, "")
	if got := FindConfigPath(); got != "" {
		t.Errorf("expected no config, got %s", got)
	}

	explicit := filepath.Join(dir, "explicit.yaml")
	if err := os.WriteFile(explicit, []byte("seed: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, explicit)
	if got := FindConfigPath(); got != explicit {
		t.Errorf("FindConfigPath() = %s, want %s", got, explicit)
	}

	t.Setenv(EnvConfigPath, "")
	xdg := filepath.Join(dir, ".config", ConfigDirName, "config.yaml")
	if err := os.MkdirAll(filepath.Dir(xdg), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(xdg, []byte("seed: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigPath(); got != xdg {
		t.Errorf("FindConfigPath() = %s, want %s", got, xdg)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvNumObjects, "9")
	t.Setenv(EnvSeed, "1234")
	t.Setenv(EnvDatasets, "scannet, 3rscan")
	t.Setenv(EnvCopySidecars, "false")
	t.Setenv(EnvOutputDir, "/tmp/sampled")
	t.Setenv(EnvLogLevel, "")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.NumObjects != 9 || cfg.Seed != 1234 {
		t.Errorf("NumObjects/Seed = %d/%d", cfg.NumObjects, cfg.Seed)
	}
	if len(cfg.Datasets) != 2 || cfg.Datasets[1] != "3rscan" {
		t.Errorf("Datasets = %v", cfg.Datasets)
	}
	if cfg.CopySidecars {
		t.Error("CopySidecars should be false")
	}
	if cfg.OutputDir != "/tmp/sampled" {
		t.Errorf("OutputDir = %s", cfg.OutputDir)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("empty env value should not override LogLevel, got %q", cfg.LogLevel)
	}
}

func TestApplyEnvRejectsBadNumbers(t *testing.T) {
	t.Setenv(EnvNumObjects, "fifteen")

	err := DefaultConfig().ApplyEnv()
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	loaded, err := LoadDotEnv(filepath.Join(dir, ".env"))
	if err != nil || loaded {
		t.Errorf("missing .env: loaded=%v err=%v", loaded, err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(EnvSeed+"=77\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvSeed, "")
	os.Unsetenv(EnvSeed)

	loaded, err = LoadDotEnv(path)
	if err != nil || !loaded {
		t.Fatalf("loaded=%v err=%v", loaded, err)
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 77 {
		t.Errorf("Seed = %d, want 77", cfg.Seed)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" scannet,,multiscan 3rscan ")
	want := []string{"scannet", "multiscan", "3rscan"}
	if len(got) != len(want) {
		t.Fatalf("SplitList = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SplitList[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
