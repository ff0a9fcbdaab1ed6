package sampler

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"scenesampler/internal/domain"
)

func agent(id int) domain.Object {
	return domain.Object{ID: id, Labels: []string{domain.AgentLabel}, IsAgent: true}
}

func targetable(id int) domain.Object {
	return domain.Object{ID: id, Labels: []string{"chair"}, IsTargetable: true}
}

func plain(id int) domain.Object {
	return domain.Object{ID: id, Labels: []string{"wall"}}
}

func scene(id string, objects ...domain.Object) *domain.SceneGraph {
	sg := domain.NewSceneGraph(id)
	sg.Objects = objects
	return sg
}

func policy(n int) domain.SamplingPolicy {
	return domain.SamplingPolicy{TargetObjectCount: n, Seed: 42}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		obj  domain.Object
		want Tier
	}{
		{agent(1), TierAgent},
		{domain.Object{ID: 2, Labels: []string{domain.AgentLabel}, IsTargetable: true}, TierAgent},
		{targetable(3), TierTargetable},
		{plain(4), TierFiller},
	}

	for _, tt := range tests {
		if got := Classify(tt.obj); got != tt.want {
			t.Errorf("Classify(%d) = %s, want %s", tt.obj.ID, got, tt.want)
		}
	}
}

func TestPartitionSortsByID(t *testing.T) {
	tiers := Partition([]domain.Object{plain(9), targetable(5), agent(7), targetable(2), plain(1)})

	want := [][]int{{7}, {2, 5}, {1, 9}}
	for tier, ids := range want {
		got := SelectAll(tiers[tier])
		if !slices.Equal(got, ids) {
			t.Errorf("tier %s = %v, want %v", Tier(tier), got, ids)
		}
	}
}

func TestSelectShuffled(t *testing.T) {
	candidates := []domain.Object{plain(1), plain(2), plain(3), plain(4)}

	t.Run("takes n", func(t *testing.T) {
		got := SelectShuffled(candidates, 2, rand.New(rand.NewPCG(1, 2)))
		if len(got) != 2 {
			t.Fatalf("expected 2 ids, got %v", got)
		}
	})

	t.Run("caps at candidate count", func(t *testing.T) {
		got := SelectShuffled(candidates, 10, rand.New(rand.NewPCG(1, 2)))
		slices.Sort(got)
		if !slices.Equal(got, []int{1, 2, 3, 4}) {
			t.Errorf("expected all candidates, got %v", got)
		}
	})

	t.Run("zero", func(t *testing.T) {
		if got := SelectShuffled(candidates, 0, rand.New(rand.NewPCG(1, 2))); len(got) != 0 {
			t.Errorf("expected no ids, got %v", got)
		}
	})

	t.Run("does not reorder input", func(t *testing.T) {
		SelectShuffled(candidates, 4, rand.New(rand.NewPCG(3, 4)))
		if !slices.Equal(SelectAll(candidates), []int{1, 2, 3, 4}) {
			t.Errorf("candidates were modified: %v", SelectAll(candidates))
		}
	})
}

func TestSampleScenario(t *testing.T) {
	sg := scene("scene0000_00", agent(0), targetable(1), targetable(2), plain(3), plain(4))

	ids, err := Sample(sg, policy(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}
	if ids[0] != 0 {
		t.Errorf("agent 0 must be sampled, got %v", ids)
	}
	if ids[1] != 1 && ids[1] != 2 {
		t.Errorf("second slot must come from the targetable tier, got %v", ids)
	}
}

func TestSampleAgentsAlwaysKept(t *testing.T) {
	sg := scene("s", targetable(1), agent(4), agent(2), agent(8), plain(3))

	ids, err := Sample(sg, policy(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(ids, []int{2, 4, 8}) {
		t.Errorf("expected exactly the agents in id order, got %v", ids)
	}

	t.Run("zero target keeps agents", func(t *testing.T) {
		got := Select(sg.Objects, 0, NewSceneRand(42, "s"))
		if !slices.Equal(got, []int{2, 4, 8}) {
			t.Errorf("expected agents only, got %v", got)
		}
	})
}

func TestSampleFillsFromFillerTier(t *testing.T) {
	sg := scene("s", targetable(1), plain(2), plain(3), plain(4))

	ids, err := Sample(sg, policy(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %v", ids)
	}
	if !slices.Contains(ids, 1) {
		t.Errorf("targetable object must be taken before fillers, got %v", ids)
	}
}

func TestSampleFullScene(t *testing.T) {
	sg := scene("s", plain(5), agent(0), targetable(3), plain(1))

	for _, n := range []int{4, 5, 100} {
		ids, err := Sample(sg, policy(n))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(ids, []int{0, 1, 3, 5}) {
			t.Errorf("target %d: expected whole scene, got %v", n, ids)
		}
	}
}

func TestSampleSubsetProperty(t *testing.T) {
	var objects []domain.Object
	for i := 0; i < 40; i++ {
		switch {
		case i%13 == 0:
			objects = append(objects, agent(i))
		case i%3 == 0:
			objects = append(objects, targetable(i))
		default:
			objects = append(objects, plain(i))
		}
	}
	sg := scene("scene0042_01", objects...)
	all := sg.ObjectIndex()

	for n := 1; n <= 45; n++ {
		ids, err := Sample(sg, policy(n))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, id := range ids {
			if _, ok := all[id]; !ok {
				t.Fatalf("target %d: sampled unknown id %d", n, id)
			}
		}
		want := max(min(n, len(objects)), sg.AgentCount())
		if len(ids) != want {
			t.Errorf("target %d: sampled %d objects, want %d", n, len(ids), want)
		}
		if !slices.IsSorted(ids) {
			t.Errorf("target %d: ids not sorted: %v", n, ids)
		}
	}
}

func TestSampleDeterminism(t *testing.T) {
	var objects []domain.Object
	for i := 0; i < 30; i++ {
		objects = append(objects, targetable(i))
	}

	t.Run("same inputs", func(t *testing.T) {
		a, _ := Sample(scene("scene0100_00", objects...), policy(5))
		b, _ := Sample(scene("scene0100_00", objects...), policy(5))
		if !slices.Equal(a, b) {
			t.Errorf("runs differ: %v vs %v", a, b)
		}
	})

	t.Run("record order does not matter", func(t *testing.T) {
		reversed := slices.Clone(objects)
		slices.Reverse(reversed)
		a, _ := Sample(scene("scene0100_00", objects...), policy(5))
		b, _ := Sample(scene("scene0100_00", reversed...), policy(5))
		if !slices.Equal(a, b) {
			t.Errorf("runs differ: %v vs %v", a, b)
		}
	})

	t.Run("scene id changes the draw", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 20; i++ {
			ids, _ := Sample(scene(fmt.Sprintf("scene%04d_00", i), objects...), policy(5))
			seen[fmt.Sprint(ids)] = true
		}
		if len(seen) < 2 {
			t.Error("every scene produced the same sample")
		}
	})
}

func TestSceneSeed(t *testing.T) {
	if SceneSeed(42, "a") != SceneSeed(42, "a") {
		t.Error("seed derivation is not stable")
	}
	if SceneSeed(42, "a") == SceneSeed(43, "a") {
		t.Error("run seed should change the scene seed")
	}
	if SceneSeed(42, "a") == SceneSeed(42, "b") {
		t.Error("scene id should change the scene seed")
	}
}

func TestSampleRejectsInvalidPolicy(t *testing.T) {
	sg := scene("s", agent(0), targetable(1))
	for _, n := range []int{0, -1} {
		_, err := Sample(sg, policy(n))
		if !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("target %d: expected ErrConfiguration, got %v", n, err)
		}
	}
}
