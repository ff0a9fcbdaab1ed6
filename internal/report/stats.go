// Package report aggregates sampling statistics across a batch of scenes and
// writes the run report.
package report

import (
	"cmp"
	"slices"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"scenesampler/internal/domain"
)

// TopSceneCount is the number of scenes ranked in a summary
const TopSceneCount = 10

// Counts is an original/sampled pair for one category
type Counts struct {
	Original int `json:"original" yaml:"original"`
	Sampled  int `json:"sampled" yaml:"sampled"`
}

// Reduction returns how many entries sampling removed
func (c Counts) Reduction() int {
	return c.Original - c.Sampled
}

// ReductionRatio returns the removed fraction, or 0 when nothing was there
func (c Counts) ReductionRatio() float64 {
	if c.Original == 0 {
		return 0
	}
	return float64(c.Reduction()) / float64(c.Original)
}

// SceneStats holds the before/after counts of one scene
type SceneStats struct {
	SceneID             string `json:"scene_id" yaml:"scene_id"`
	Dataset             string `json:"dataset,omitempty" yaml:"dataset,omitempty"`
	Objects             Counts `json:"objects" yaml:"objects"`
	Relationships       Counts `json:"relationships" yaml:"relationships"`
	Attributes          Counts `json:"attributes" yaml:"attributes"`
	AgentObjects        int    `json:"agent_objects" yaml:"agent_objects"`
	SampledAgentObjects int    `json:"sampled_agent_objects" yaml:"sampled_agent_objects"`
}

// NewSceneStats compares a scene with its sampled version
func NewSceneStats(dataset string, original, sampled *domain.SceneGraph) SceneStats {
	return SceneStats{
		SceneID:             original.SceneID,
		Dataset:             dataset,
		Objects:             Counts{len(original.Objects), len(sampled.Objects)},
		Relationships:       Counts{len(original.Relationships), len(sampled.Relationships)},
		Attributes:          Counts{len(original.Attributes), len(sampled.Attributes)},
		AgentObjects:        original.AgentCount(),
		SampledAgentObjects: sampled.AgentCount(),
	}
}

// FailureKind classifies a per-scene failure
type FailureKind string

const (
	FailureMalformed FailureKind = "malformed"
	FailureWrite     FailureKind = "write"
	FailureRead      FailureKind = "read"
)

// Failure records a scene that could not be sampled
type Failure struct {
	SceneID string      `json:"scene_id" yaml:"scene_id"`
	Dataset string      `json:"dataset,omitempty" yaml:"dataset,omitempty"`
	Kind    FailureKind `json:"kind" yaml:"kind"`
	Message string      `json:"message" yaml:"message"`
}

// CategorySummary aggregates one category across scenes
type CategorySummary struct {
	Original       int     `json:"original" yaml:"original"`
	Sampled        int     `json:"sampled" yaml:"sampled"`
	Reduction      int     `json:"reduction" yaml:"reduction"`
	ReductionRatio float64 `json:"reduction_ratio" yaml:"reduction_ratio"`
	AvgOriginal    float64 `json:"avg_original" yaml:"avg_original"`
	AvgSampled     float64 `json:"avg_sampled" yaml:"avg_sampled"`
}

// AgentSummary tracks agent retention across scenes
type AgentSummary struct {
	Found         int     `json:"found" yaml:"found"`
	Included      int     `json:"included" yaml:"included"`
	InclusionRate float64 `json:"inclusion_rate" yaml:"inclusion_rate"`
}

// Distribution summarizes per-scene values
type Distribution struct {
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
	Mean float64 `json:"mean" yaml:"mean"`
}

// Summary is the aggregate view of a batch
type Summary struct {
	Scenes                int             `json:"scenes" yaml:"scenes"`
	Objects               CategorySummary `json:"objects" yaml:"objects"`
	Relationships         CategorySummary `json:"relationships" yaml:"relationships"`
	Attributes            CategorySummary `json:"attributes" yaml:"attributes"`
	Agents                AgentSummary    `json:"agents" yaml:"agents"`
	RelationshipReduction Distribution    `json:"relationship_reduction" yaml:"relationship_reduction"`
	TopScenes             []SceneStats    `json:"top_scenes" yaml:"top_scenes"`
	FailedScenes          []string        `json:"failed_scenes,omitempty" yaml:"failed_scenes,omitempty"`
}

// Accumulator collects scene stats and failures from concurrent workers
type Accumulator struct {
	mu       sync.Mutex
	scenes   []SceneStats
	failures []Failure
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add merges one completed scene
func (a *Accumulator) Add(s SceneStats) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scenes = append(a.scenes, s)
}

// AddFailure records a scene that failed
func (a *Accumulator) AddFailure(f Failure) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures = append(a.failures, f)
}

// Reset clears all collected data
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scenes = nil
	a.failures = nil
}

// Scenes returns collected stats ordered by dataset then scene id
func (a *Accumulator) Scenes() []SceneStats {
	a.mu.Lock()
	scenes := slices.Clone(a.scenes)
	a.mu.Unlock()

	slices.SortFunc(scenes, func(x, y SceneStats) int {
		return cmp.Or(cmp.Compare(x.Dataset, y.Dataset), cmp.Compare(x.SceneID, y.SceneID))
	})
	return scenes
}

// Failures returns collected failures ordered by dataset then scene id
func (a *Accumulator) Failures() []Failure {
	a.mu.Lock()
	failures := slices.Clone(a.failures)
	a.mu.Unlock()

	slices.SortFunc(failures, func(x, y Failure) int {
		return cmp.Or(cmp.Compare(x.Dataset, y.Dataset), cmp.Compare(x.SceneID, y.SceneID))
	})
	return failures
}

// Summary computes aggregate statistics over everything collected so far
func (a *Accumulator) Summary() Summary {
	return Summarize(a.Scenes(), a.Failures())
}

// Summarize computes aggregate statistics for the given scenes
func Summarize(scenes []SceneStats, failures []Failure) Summary {
	s := Summary{
		Scenes:        len(scenes),
		Objects:       summarizeCategory(scenes, func(st SceneStats) Counts { return st.Objects }),
		Relationships: summarizeCategory(scenes, func(st SceneStats) Counts { return st.Relationships }),
		Attributes:    summarizeCategory(scenes, func(st SceneStats) Counts { return st.Attributes }),
		TopScenes:     TopScenes(scenes, TopSceneCount),
	}

	for _, st := range scenes {
		s.Agents.Found += st.AgentObjects
		s.Agents.Included += st.SampledAgentObjects
	}
	if s.Agents.Found > 0 {
		s.Agents.InclusionRate = float64(s.Agents.Included) / float64(s.Agents.Found)
	}

	if len(scenes) > 0 {
		reductions := make([]float64, 0, len(scenes))
		for _, st := range scenes {
			reductions = append(reductions, float64(st.Relationships.Reduction()))
		}
		s.RelationshipReduction = Distribution{
			Min:  floats.Min(reductions),
			Max:  floats.Max(reductions),
			Mean: stat.Mean(reductions, nil),
		}
	}

	for _, f := range failures {
		s.FailedScenes = append(s.FailedScenes, f.SceneID)
	}

	return s
}

func summarizeCategory(scenes []SceneStats, pick func(SceneStats) Counts) CategorySummary {
	var total Counts
	originals := make([]float64, 0, len(scenes))
	sampled := make([]float64, 0, len(scenes))

	for _, st := range scenes {
		c := pick(st)
		total.Original += c.Original
		total.Sampled += c.Sampled
		originals = append(originals, float64(c.Original))
		sampled = append(sampled, float64(c.Sampled))
	}

	cs := CategorySummary{
		Original:       total.Original,
		Sampled:        total.Sampled,
		Reduction:      total.Reduction(),
		ReductionRatio: total.ReductionRatio(),
	}
	if len(scenes) > 0 {
		cs.AvgOriginal = stat.Mean(originals, nil)
		cs.AvgSampled = stat.Mean(sampled, nil)
	}
	return cs
}

// TopScenes ranks scenes by sampled relationship count, descending, with
// ties broken by scene id then dataset
func TopScenes(scenes []SceneStats, n int) []SceneStats {
	ranked := slices.Clone(scenes)
	slices.SortStableFunc(ranked, func(x, y SceneStats) int {
		return cmp.Or(
			cmp.Compare(y.Relationships.Sampled, x.Relationships.Sampled),
			cmp.Compare(x.SceneID, y.SceneID),
			cmp.Compare(x.Dataset, y.Dataset),
		)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
