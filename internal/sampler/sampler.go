// Package sampler chooses which objects of a scene survive sampling.
//
// Objects are ranked in three tiers: agents are always kept, targetable
// objects fill the remaining slots first, and everything else fills what is
// left. Shuffles draw from a generator seeded from the run seed and the scene
// id, so a scene samples the same way regardless of run order or worker count.
package sampler

import (
	"encoding/binary"
	"math/rand/v2"
	"slices"

	"golang.org/x/crypto/blake2b"

	"scenesampler/internal/domain"
)

// SceneSeed derives the scene-local PCG seed from the run seed and scene id
func SceneSeed(seed int64, sceneID string) [2]uint64 {
	buf := binary.BigEndian.AppendUint64(nil, uint64(seed))
	buf = append(buf, sceneID...)
	sum := blake2b.Sum256(buf)
	return [2]uint64{
		binary.BigEndian.Uint64(sum[0:8]),
		binary.BigEndian.Uint64(sum[8:16]),
	}
}

// NewSceneRand returns a generator private to one scene
func NewSceneRand(seed int64, sceneID string) *rand.Rand {
	s := SceneSeed(seed, sceneID)
	return rand.New(rand.NewPCG(s[0], s[1]))
}

// Select applies the tier policy and returns the chosen ids in ascending
// order. Agents are kept even when they alone reach or exceed target.
func Select(objects []domain.Object, target int, rng *rand.Rand) []int {
	tiers := Partition(objects)

	selected := SelectAll(tiers[TierAgent])
	remaining := target - len(selected)

	for _, tier := range []Tier{TierTargetable, TierFiller} {
		if remaining <= 0 {
			break
		}
		picked := SelectShuffled(tiers[tier], remaining, rng)
		selected = append(selected, picked...)
		remaining -= len(picked)
	}

	slices.Sort(selected)
	return selected
}

// Sample selects at most policy.TargetObjectCount objects from the scene,
// plus any agents beyond that count
func Sample(sg *domain.SceneGraph, policy domain.SamplingPolicy) ([]int, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	rng := NewSceneRand(policy.Seed, sg.SceneID)
	return Select(sg.Objects, policy.TargetObjectCount, rng), nil
}
