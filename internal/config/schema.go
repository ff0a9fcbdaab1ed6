package config

// Config is the root configuration structure
type Config struct {
	Version      int      `yaml:"version"`
	NumObjects   int      `yaml:"num_objects" validate:"min=1"`
	Seed         int64    `yaml:"seed"`
	InputDir     string   `yaml:"input_dir" validate:"required"`
	OutputDir    string   `yaml:"output_dir" validate:"required"`
	Datasets     []string `yaml:"datasets" validate:"dive,required"`
	SceneFile    string   `yaml:"scene_file" validate:"required"`
	CopySidecars bool     `yaml:"copy_sidecars"`
	Workers      int      `yaml:"workers" validate:"min=0"`

	// Reporting (optional)
	StatsFile string `yaml:"stats_file,omitempty"`
	StatsDB   string `yaml:"stats_db,omitempty"`

	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// KnownDatasets are the datasets processed when none are configured
var KnownDatasets = []string{"scannet", "multiscan", "3rscan"}

const (
	DefaultInputDir  = "data/scenegraphs"
	DefaultOutputDir = "data/scenegraphs_sampled"
	DefaultSceneFile = "scene_graph.json"
	DefaultLogLevel  = "info"
)
