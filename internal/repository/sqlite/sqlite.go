package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"scenesampler/internal/report"
)

// Repository implements repository.StatsRepository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps in-memory databases shared across queries.
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		seed INTEGER NOT NULL,
		num_objects INTEGER NOT NULL,
		datasets JSON,
		input_dir TEXT,
		output_dir TEXT,
		summary JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS scene_stats (
		run_id TEXT NOT NULL,
		dataset TEXT NOT NULL DEFAULT '',
		scene_id TEXT NOT NULL,
		objects_original INTEGER NOT NULL,
		objects_sampled INTEGER NOT NULL,
		relationships_original INTEGER NOT NULL,
		relationships_sampled INTEGER NOT NULL,
		attributes_original INTEGER NOT NULL,
		attributes_sampled INTEGER NOT NULL,
		agent_objects INTEGER NOT NULL DEFAULT 0,
		sampled_agent_objects INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, dataset, scene_id),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS scene_failures (
		run_id TEXT NOT NULL,
		dataset TEXT NOT NULL DEFAULT '',
		scene_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		message TEXT,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_scene_stats_run ON scene_stats(run_id);
	CREATE INDEX IF NOT EXISTS idx_scene_failures_run ON scene_failures(run_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveRun stores a run with its scene stats and failures in one transaction
func (r *Repository) SaveRun(ctx context.Context, rep report.Report) error {
	if strings.TrimSpace(rep.Run.ID) == "" {
		return errors.New("run id is required")
	}

	datasets, err := marshalToNull(rep.Run.Datasets)
	if err != nil {
		return fmt.Errorf("failed to marshal datasets: %w", err)
	}
	summary, err := marshalToNull(rep.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, seed, num_objects, datasets, input_dir, output_dir, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rep.Run.ID, formatTime(rep.Run.StartedAt), timeToNull(rep.Run.FinishedAt),
		rep.Run.Seed, rep.Run.NumObjects, datasets,
		stringToNull(rep.Run.InputDir), stringToNull(rep.Run.OutputDir), summary)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", rep.Run.ID, err)
	}

	statsStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scene_stats (`+sceneStatsColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare scene stats statement: %w", err)
	}
	defer statsStmt.Close()

	for _, st := range rep.Scenes {
		if _, err := statsStmt.ExecContext(ctx, sceneStatsInsertArgs(rep.Run.ID, st)...); err != nil {
			return fmt.Errorf("failed to insert stats for %s: %w", st.SceneID, err)
		}
	}

	failStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scene_failures (run_id, dataset, scene_id, kind, message)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare failure statement: %w", err)
	}
	defer failStmt.Close()

	for _, f := range rep.Failures {
		if _, err := failStmt.ExecContext(ctx, rep.Run.ID, f.Dataset, f.SceneID, string(f.Kind), stringToNull(f.Message)); err != nil {
			return fmt.Errorf("failed to insert failure for %s: %w", f.SceneID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRun retrieves a single run by ID
func (r *Repository) GetRun(ctx context.Context, id string) (*report.Run, error) {
	var row runRow
	err := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id).Scan(row.scanArgs()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	return row.toReport()
}

// ListRuns returns all runs, most recent first
func (r *Repository) ListRuns(ctx context.Context) ([]report.Run, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]report.Run, 0)
	for rows.Next() {
		var row runRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run, err := row.toReport()
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// GetRunSceneStats returns the scene stats recorded for a run
func (r *Repository) GetRunSceneStats(ctx context.Context, runID string) ([]report.SceneStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sceneStatsColumns+` FROM scene_stats
		WHERE run_id = ?
		ORDER BY dataset, scene_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scene stats: %w", err)
	}
	defer rows.Close()

	stats := make([]report.SceneStats, 0)
	for rows.Next() {
		var row sceneStatsRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan scene stats: %w", err)
		}
		stats = append(stats, row.toReport())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scene stats: %w", err)
	}
	return stats, nil
}

// GetRunFailures returns the failures recorded for a run
func (r *Repository) GetRunFailures(ctx context.Context, runID string) ([]report.Failure, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT dataset, scene_id, kind, message FROM scene_failures
		WHERE run_id = ?
		ORDER BY dataset, scene_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query failures: %w", err)
	}
	defer rows.Close()

	failures := make([]report.Failure, 0)
	for rows.Next() {
		var (
			f       report.Failure
			kind    string
			message sql.NullString
		)
		if err := rows.Scan(&f.Dataset, &f.SceneID, &kind, &message); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		f.Kind = report.FailureKind(kind)
		f.Message = nullToString(message)
		failures = append(failures, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating failures: %w", err)
	}
	return failures, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
