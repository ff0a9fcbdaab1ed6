package repository

import (
	"context"

	"scenesampler/internal/report"
)

// StatsRepository defines the interface for persisting sampling runs
type StatsRepository interface {
	// Write operations
	SaveRun(ctx context.Context, r report.Report) error

	// Read operations
	GetRun(ctx context.Context, id string) (*report.Run, error)
	ListRuns(ctx context.Context) ([]report.Run, error)
	GetRunSceneStats(ctx context.Context, runID string) ([]report.SceneStats, error)
	GetRunFailures(ctx context.Context, runID string) ([]report.Failure, error)

	// Close releases resources
	Close() error
}
