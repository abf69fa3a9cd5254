package eli

import (
	"math/rand"
	"testing"
)

func TestWeightedChoiceEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := weightedChoice(rng, nil); got != -1 {
		t.Fatalf("empty list chose %d, want -1", got)
	}
	zero := []candidate{{weight: 0}, {weight: 0}}
	if got := weightedChoice(rng, zero); got != -1 {
		t.Fatalf("zero mass chose %d, want -1", got)
	}
}

func TestWeightedChoiceSingle(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cands := []candidate{{trajIdx: 3, weight: 0.25}}
	for i := 0; i < 10; i++ {
		if got := weightedChoice(rng, cands); got != 0 {
			t.Fatalf("single candidate chose %d, want 0", got)
		}
	}
}

func TestWeightedChoiceFollowsMass(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cands := []candidate{
		{weight: 1e-9},
		{weight: 1e9},
		{weight: 1e-9},
	}
	for i := 0; i < 200; i++ {
		if got := weightedChoice(rng, cands); got != 1 {
			t.Fatalf("draw %d picked index %d against ~1e18 odds", i, got)
		}
	}
}

func TestWeightedChoiceDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cands := []candidate{{weight: 1}, {weight: 3}}

	counts := [2]int{}
	for i := 0; i < 4000; i++ {
		counts[weightedChoice(rng, cands)]++
	}
	// Expect roughly 1:3; allow a generous band.
	if counts[1] < 2700 || counts[1] > 3300 {
		t.Fatalf("weight-3 candidate drawn %d of 4000, want ~3000", counts[1])
	}
}

func TestTickInhibitions(t *testing.T) {
	list := []inhibition{
		{index: 1, steps: 3},
		{index: 2, steps: 1},
		{index: 3, steps: 2},
	}
	list = tickInhibitions(list)

	if len(list) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(list))
	}
	if list[0].index != 1 || list[0].steps != 2 {
		t.Fatalf("entry 0 = %+v, want index 1 steps 2", list[0])
	}
	if isInhibited(list, 2) {
		t.Fatal("expired entry still inhibited")
	}
	if !isInhibited(list, 3) {
		t.Fatal("live entry not inhibited")
	}
}

func TestResponseStopsAtTerminator(t *testing.T) {
	m := newTestMind(20)
	m.Process("yes.")
	m.Process("no!")

	// Every response must respect the step budget and end promptly after
	// a terminator label is emitted.
	for i := 0; i < 10; i++ {
		resp := m.Process("well")
		if len([]rune(resp)) > maxResponseSymbols {
			t.Fatalf("response of %d symbols exceeds the budget", len([]rune(resp)))
		}
		for pos, ch := range []rune(resp) {
			if isTerminator(ch) && pos != len([]rune(resp))-1 {
				t.Fatalf("terminator mid-response: %q", resp)
			}
		}
	}
}

func TestHebbianReinforcement(t *testing.T) {
	m := newTestMind(21)
	m.Process("abcdef")

	// Strengths only move inside generateResponse: used trajectories gain
	// 0.1 once, then everything decays 0.5%, floored at 0.1.
	for i := 0; i < 50; i++ {
		m.Process("abc")
		for ti := range m.trajectories {
			if s := m.trajectories[ti].Strength; s < strengthFloor {
				t.Fatalf("trajectory %d strength %v below floor", ti, s)
			}
		}
	}
}
