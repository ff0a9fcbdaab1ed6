package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"scenesampler/internal/config"
	"scenesampler/internal/domain"
	"scenesampler/internal/logging"
	"scenesampler/internal/pipeline"
	"scenesampler/internal/report"
	"scenesampler/internal/repository"
	"scenesampler/internal/repository/sqlite"
)

const (
	exitOK          = 0
	exitSceneFailed = 1
	exitConfig      = 2
)

// progressEvery controls how often scene progress is logged
const progressEvery = 10

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Config file path (default: search standard locations)")
	envFile := flag.String("env-file", ".env", "Dotenv file to load before reading the environment")
	numObjects := flag.Int("num-objects", domain.DefaultTargetObjectCount, "Target number of objects per scene")
	seed := flag.Int64("seed", domain.DefaultSeed, "Random seed")
	inputDir := flag.String("input-dir", config.DefaultInputDir, "Directory containing <dataset>/<scene>/ scene graphs")
	outputDir := flag.String("output-dir", config.DefaultOutputDir, "Directory for sampled scene graphs")
	datasets := flag.String("datasets", "", "Comma-separated datasets to process (default: scannet,multiscan,3rscan)")
	sceneFile := flag.String("scene-file", config.DefaultSceneFile, "Scene graph file name inside each scene directory")
	copySidecars := flag.Bool("copy-sidecars", true, "Copy other .json files of each scene to the output")
	workers := flag.Int("workers", 0, "Concurrent scenes (0 = number of CPUs)")
	statsFile := flag.String("stats-file", "", "Write run statistics to this file (.json, .yaml)")
	statsDB := flag.String("stats-db", "", "Record the run in this SQLite database")
	logLevel := flag.String("log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	verbose := flag.Bool("verbose", false, "Shorthand for -log-level debug")
	flag.Parse()

	boot := logging.New(logging.Options{Level: "info"})

	if _, err := config.LoadDotEnv(*envFile); err != nil {
		boot.Error("Failed to load env file", "path", *envFile, "err", err)
		return exitConfig
	}

	var (
		cfg    *config.Config
		loaded string
		err    error
	)
	if *configPath != "" {
		cfg, loaded, err = config.LoadFromPath(*configPath)
	} else {
		cfg, loaded, err = config.Load()
	}
	if err != nil {
		boot.Error("Failed to load config", "path", loaded, "err", err)
		return exitConfig
	}
	if err := cfg.ApplyEnv(); err != nil {
		boot.Error("Invalid environment", "err", err)
		return exitConfig
	}

	// Only explicitly set flags override file and environment values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "num-objects":
			cfg.NumObjects = *numObjects
		case "seed":
			cfg.Seed = *seed
		case "input-dir":
			cfg.InputDir = *inputDir
		case "output-dir":
			cfg.OutputDir = *outputDir
		case "datasets":
			cfg.Datasets = config.SplitList(*datasets)
		case "scene-file":
			cfg.SceneFile = *sceneFile
		case "copy-sidecars":
			cfg.CopySidecars = *copySidecars
		case "workers":
			cfg.Workers = *workers
		case "stats-file":
			cfg.StatsFile = *statsFile
		case "stats-db":
			cfg.StatsDB = *statsDB
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if *verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		boot.Error("Invalid configuration", "err", err)
		return exitConfig
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel})
	if loaded != "" {
		logger.Info("Loaded config", "path", loaded)
	}
	logger.Debug(cfg.Summary())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var repo repository.StatsRepository
	if cfg.StatsDB != "" {
		db, err := sqlite.New(cfg.StatsDB)
		if err != nil {
			logger.Warn("Failed to open stats database, run will not be recorded", "path", cfg.StatsDB, "err", err)
		} else {
			defer db.Close()
			repo = db
			logger.Info("Database opened", "path", cfg.StatsDB)
		}
	}

	bus := pipeline.NewEventBus()
	events := make(chan pipeline.Event, 100)
	bus.Subscribe(events)
	go logProgress(logger, events)

	result, err := pipeline.Run(ctx, pipeline.Options{
		InputDir:     cfg.InputDir,
		OutputDir:    cfg.OutputDir,
		SceneFile:    cfg.SceneFile,
		Policy:       cfg.Policy(),
		Workers:      cfg.Workers,
		CopySidecars: cfg.CopySidecars,
		StatsFile:    cfg.StatsFile,
		Repository:   repo,
		Logger:       logger,
		Events:       bus,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConfiguration) {
			logger.Error("Invalid configuration", "err", err)
			return exitConfig
		}
		logger.Error("Run aborted", "err", err)
		return exitSceneFailed
	}

	fmt.Println()
	report.Print(os.Stdout, result.Summary)
	fmt.Printf("\nSampled scene graphs saved to: %s\n", cfg.OutputDir)

	if len(result.Failures) > 0 {
		return exitSceneFailed
	}
	return exitOK
}

func logProgress(logger *log.Logger, events <-chan pipeline.Event) {
	for ev := range events {
		switch ev.Type {
		case pipeline.EventSceneSampled, pipeline.EventSceneFailed:
			se, ok := ev.Payload.(pipeline.SceneEvent)
			if !ok {
				continue
			}
			if se.Done%progressEvery == 0 || se.Done == se.Total {
				logger.Info("Progress", "done", se.Done, "total", se.Total)
			}
		case pipeline.EventRunCompleted:
			logger.Debug("Run completed")
		}
	}
}
