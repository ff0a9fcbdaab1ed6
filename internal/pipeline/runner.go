package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"scenesampler/internal/codec"
	"scenesampler/internal/domain"
	"scenesampler/internal/filter"
	"scenesampler/internal/loader"
	"scenesampler/internal/logging"
	"scenesampler/internal/report"
	"scenesampler/internal/repository"
	"scenesampler/internal/sampler"
)

// Options configures a batch run
type Options struct {
	InputDir     string
	OutputDir    string
	SceneFile    string
	Policy       domain.SamplingPolicy
	Workers      int
	CopySidecars bool

	// Optional reporting sinks; failures to write either are warnings
	StatsFile  string
	Repository repository.StatsRepository

	Logger *log.Logger
	Events *EventBus
}

// Result is the outcome of a batch run
type Result struct {
	Run             report.Run
	Summary         report.Summary
	Scenes          []report.SceneStats
	Failures        []report.Failure
	MissingDatasets []string
}

// Report returns the persisted form of the result
func (r *Result) Report() report.Report {
	return report.Report{
		Run:      r.Run,
		Summary:  r.Summary,
		Scenes:   r.Scenes,
		Failures: r.Failures,
	}
}

var jsonCodec = codec.NewJSONCodec()

func (o *Options) validate() error {
	if err := o.Policy.Validate(); err != nil {
		return err
	}
	if o.InputDir == "" {
		return &domain.ConfigurationError{Field: "input_dir", Reason: "is required"}
	}
	if o.OutputDir == "" {
		return &domain.ConfigurationError{Field: "output_dir", Reason: "is required"}
	}
	if filepath.Clean(o.InputDir) == filepath.Clean(o.OutputDir) {
		return &domain.ConfigurationError{Field: "output_dir", Reason: "must differ from input_dir"}
	}
	if o.SceneFile == "" {
		return &domain.ConfigurationError{Field: "scene_file", Reason: "is required"}
	}
	return nil
}

// Run samples every discovered scene. Configuration errors abort before any
// scene is read; per-scene failures are collected in the result. The
// returned error is non-nil only for configuration problems, discovery
// failures or cancellation.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	started := time.Now()
	runID := uuid.NewString()

	refs, missing, err := Discover(opts.InputDir, opts.Policy.DatasetFilter, opts.SceneFile)
	if err != nil {
		return nil, fmt.Errorf("failed to discover scenes: %w", err)
	}
	for _, dataset := range missing {
		logger.Warn("Dataset directory not found, skipping", "dataset", dataset, "dir", filepath.Join(opts.InputDir, dataset))
		opts.Events.Publish(Event{Type: EventDatasetMissing, Payload: dataset})
	}
	refs = slices.DeleteFunc(refs, func(ref SceneRef) bool {
		return !opts.Policy.AllowsDataset(ref.Dataset)
	})

	logger.Info("Processing scenes", "run", runID, "scenes", len(refs), "target", opts.Policy.TargetObjectCount, "seed", opts.Policy.Seed)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	acc := report.NewAccumulator()
	total := len(refs)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, ref := range refs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			st, err := ProcessScene(ref, opts)
			n := int(done.Add(1))
			ev := SceneEvent{Scene: ref, Done: n, Total: total}

			if err != nil {
				f := failureFor(ref, err)
				acc.AddFailure(f)
				logger.Error("Scene failed", "dataset", ref.Dataset, "scene", ref.SceneID, "kind", f.Kind, "err", err)
				ev.Error = err.Error()
				opts.Events.Publish(Event{Type: EventSceneFailed, Payload: ev})
				return nil
			}

			acc.Add(st)
			logger.Debug("Scene sampled", "dataset", ref.Dataset, "scene", ref.SceneID,
				"objects", st.Objects.Sampled, "relationships", st.Relationships.Sampled)
			opts.Events.Publish(Event{Type: EventSceneSampled, Payload: ev})
			return nil
		})
	}

	// Workers record failures instead of returning them.
	_ = g.Wait()

	result := &Result{
		Run: report.Run{
			ID:         runID,
			StartedAt:  started,
			FinishedAt: time.Now(),
			Seed:       opts.Policy.Seed,
			NumObjects: opts.Policy.TargetObjectCount,
			Datasets:   datasetsOf(opts.Policy.DatasetFilter, refs),
			InputDir:   opts.InputDir,
			OutputDir:  opts.OutputDir,
		},
		Summary:         acc.Summary(),
		Scenes:          acc.Scenes(),
		Failures:        acc.Failures(),
		MissingDatasets: missing,
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	persist(ctx, opts, logger, result)
	opts.Events.Publish(Event{Type: EventRunCompleted, Payload: result.Summary})

	return result, nil
}

// ProcessScene runs load -> sample -> filter -> write for one scene
func ProcessScene(ref SceneRef, opts Options) (report.SceneStats, error) {
	sg, err := loader.LoadFile(ref.SceneID, ref.Path)
	if err != nil {
		return report.SceneStats{}, err
	}

	ids, err := sampler.Sample(sg, opts.Policy)
	if err != nil {
		return report.SceneStats{}, err
	}
	sampled := filter.Apply(sg, ids)

	data, err := jsonCodec.Encode(sampled)
	if err != nil {
		return report.SceneStats{}, fmt.Errorf("scene %s: %w", ref.SceneID, err)
	}

	outDir := filepath.Join(opts.OutputDir, ref.Dataset, ref.SceneID)
	outPath := filepath.Join(outDir, opts.SceneFile)
	if err := writeFileAtomic(outPath, data); err != nil {
		return report.SceneStats{}, &domain.WriteFailureError{SceneID: ref.SceneID, Path: outPath, Err: err}
	}

	if opts.CopySidecars {
		if err := copySidecars(ref.Dir, outDir, opts.SceneFile); err != nil {
			return report.SceneStats{}, &domain.WriteFailureError{SceneID: ref.SceneID, Path: outDir, Err: err}
		}
	}

	return report.NewSceneStats(ref.Dataset, sg, sampled), nil
}

func failureFor(ref SceneRef, err error) report.Failure {
	kind := report.FailureRead
	switch {
	case errors.Is(err, domain.ErrMalformedSceneGraph):
		kind = report.FailureMalformed
	case errors.Is(err, domain.ErrWriteFailure):
		kind = report.FailureWrite
	}

	return report.Failure{
		SceneID: ref.SceneID,
		Dataset: ref.Dataset,
		Kind:    kind,
		Message: err.Error(),
	}
}

func persist(ctx context.Context, opts Options, logger *log.Logger, result *Result) {
	if opts.StatsFile != "" {
		if err := report.WriteFile(opts.StatsFile, result.Report()); err != nil {
			logger.Warn("Failed to write stats report", "path", opts.StatsFile, "err", err)
		} else {
			logger.Info("Statistics saved", "path", opts.StatsFile)
		}
	}

	if opts.Repository != nil {
		if err := opts.Repository.SaveRun(ctx, result.Report()); err != nil {
			logger.Warn("Failed to record run", "run", result.Run.ID, "err", err)
		}
	}
}

func datasetsOf(filter []string, refs []SceneRef) []string {
	if len(filter) > 0 {
		return slices.Clone(filter)
	}
	var names []string
	for _, ref := range refs {
		if !slices.Contains(names, ref.Dataset) {
			names = append(names, ref.Dataset)
		}
	}
	return names
}
