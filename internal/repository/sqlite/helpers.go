package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"scenesampler/internal/report"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Times are stored as RFC 3339 text so they read back identically
// regardless of driver time handling.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// timeToNull converts a zero time to NULL
func timeToNull(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField safely unmarshals JSON from nullable string into target
func unmarshalJSONField(ns sql.NullString, target interface{}) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals interface to nullable JSON string
// Returns empty NullString for nil values and empty slices
func marshalToNull(v interface{}) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}

	if s, ok := v.([]string); ok && len(s) == 0 {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Run Row Scanner
// ============================================================================
//
// CRITICAL: Column order must match between runColumns and scanArgs().
// Same pattern applies to scene stats.

const runColumns = `id, started_at, finished_at, seed, num_objects, datasets, input_dir, output_dir`

// runRow holds all columns from a run query for scanning
type runRow struct {
	ID           string
	StartedAt    string
	FinishedAt   sql.NullString
	Seed         int64
	NumObjects   int
	DatasetsJSON sql.NullString
	InputDir     sql.NullString
	OutputDir    sql.NullString
}

func (r *runRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,
		&r.StartedAt,
		&r.FinishedAt,
		&r.Seed,
		&r.NumObjects,
		&r.DatasetsJSON,
		&r.InputDir,
		&r.OutputDir,
	}
}

// toReport converts the scanned row to a report.Run
func (r *runRow) toReport() (*report.Run, error) {
	run := &report.Run{
		ID:         r.ID,
		Seed:       r.Seed,
		NumObjects: r.NumObjects,
		InputDir:   nullToString(r.InputDir),
		OutputDir:  nullToString(r.OutputDir),
	}

	started, err := parseTime(r.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	run.StartedAt = started

	if r.FinishedAt.Valid {
		finished, err := parseTime(r.FinishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		run.FinishedAt = finished
	}

	if err := unmarshalJSONField(r.DatasetsJSON, &run.Datasets); err != nil {
		return nil, fmt.Errorf("unmarshal datasets: %w", err)
	}

	return run, nil
}

// ============================================================================
// Scene Stats Row Scanner
// ============================================================================

const sceneStatsColumns = `run_id, dataset, scene_id,
	objects_original, objects_sampled,
	relationships_original, relationships_sampled,
	attributes_original, attributes_sampled,
	agent_objects, sampled_agent_objects`

type sceneStatsRow struct {
	RunID string
	report.SceneStats
}

func (r *sceneStatsRow) scanArgs() []interface{} {
	return []interface{}{
		&r.RunID,
		&r.Dataset,
		&r.SceneID,
		&r.Objects.Original,
		&r.Objects.Sampled,
		&r.Relationships.Original,
		&r.Relationships.Sampled,
		&r.Attributes.Original,
		&r.Attributes.Sampled,
		&r.AgentObjects,
		&r.SampledAgentObjects,
	}
}

func (r *sceneStatsRow) toReport() report.SceneStats {
	return r.SceneStats
}

func sceneStatsInsertArgs(runID string, st report.SceneStats) []interface{} {
	return []interface{}{
		runID,
		st.Dataset,
		st.SceneID,
		st.Objects.Original,
		st.Objects.Sampled,
		st.Relationships.Original,
		st.Relationships.Sampled,
		st.Attributes.Original,
		st.Attributes.Sampled,
		st.AgentObjects,
		st.SampledAgentObjects,
	}
}
