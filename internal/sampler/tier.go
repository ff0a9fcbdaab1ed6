package sampler

import (
	"math/rand/v2"
	"slices"

	"scenesampler/internal/domain"
)

// Tier is an object's retention priority. Lower tiers are filled first.
type Tier int

const (
	// TierAgent objects are always kept
	TierAgent Tier = iota
	// TierTargetable objects are preferred over fillers
	TierTargetable
	// TierFiller objects only fill remaining slots
	TierFiller

	tierCount
)

func (t Tier) String() string {
	switch t {
	case TierAgent:
		return "agent"
	case TierTargetable:
		return "targetable"
	case TierFiller:
		return "filler"
	default:
		return "unknown"
	}
}

// Tiers holds the candidates of each tier ordered by object id
type Tiers [tierCount][]domain.Object

// Classify returns the tier an object belongs to
func Classify(obj domain.Object) Tier {
	switch {
	case obj.Agent():
		return TierAgent
	case obj.IsTargetable:
		return TierTargetable
	default:
		return TierFiller
	}
}

// Partition splits objects into tiers. Each tier is sorted by object id so
// the result does not depend on record order.
func Partition(objects []domain.Object) Tiers {
	var tiers Tiers
	for _, obj := range objects {
		t := Classify(obj)
		tiers[t] = append(tiers[t], obj)
	}
	for i := range tiers {
		slices.SortFunc(tiers[i], func(a, b domain.Object) int {
			return a.ID - b.ID
		})
	}
	return tiers
}

// SelectAll returns the ids of every candidate
func SelectAll(candidates []domain.Object) []int {
	ids := make([]int, 0, len(candidates))
	for _, obj := range candidates {
		ids = append(ids, obj.ID)
	}
	return ids
}

// SelectShuffled shuffles a copy of candidates with rng and returns the ids
// of the first n. The candidate slice is not modified.
func SelectShuffled(candidates []domain.Object, n int, rng *rand.Rand) []int {
	if n <= 0 || len(candidates) == 0 {
		return nil
	}
	n = min(n, len(candidates))

	ids := SelectAll(candidates)
	rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	return ids[:n]
}
