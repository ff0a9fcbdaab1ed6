package domain

import "slices"

const (
	DefaultTargetObjectCount       = 15
	DefaultSeed              int64 = 42
)

// SamplingPolicy controls how scenes are reduced
type SamplingPolicy struct {
	TargetObjectCount int
	Seed              int64

	// DatasetFilter limits processing to the named datasets. Empty allows all.
	DatasetFilter []string
}

// DefaultPolicy returns the policy used when nothing is configured
func DefaultPolicy() SamplingPolicy {
	return SamplingPolicy{
		TargetObjectCount: DefaultTargetObjectCount,
		Seed:              DefaultSeed,
	}
}

// Validate checks the policy before any scene is processed
func (p SamplingPolicy) Validate() error {
	if p.TargetObjectCount <= 0 {
		return &ConfigurationError{
			Field:  "target_object_count",
			Reason: "must be a positive integer",
		}
	}
	return nil
}

// AllowsDataset reports whether scenes of the named dataset should be sampled
func (p SamplingPolicy) AllowsDataset(name string) bool {
	if len(p.DatasetFilter) == 0 {
		return true
	}
	return slices.Contains(p.DatasetFilter, name)
}
