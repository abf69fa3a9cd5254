package eli

import (
	"math"
	"testing"
)

func TestClosestPointEarliestTie(t *testing.T) {
	// Two identical path points: the earliest index must win.
	p := Coord{Re: -0.5, Im: 0.1}
	traj := NewTrajectory([]Coord{p, {Re: 0, Im: 0}, p}, []int{0, 1, 2})

	idx, dist := traj.ClosestPoint(p)
	if idx != 0 {
		t.Fatalf("tie resolved to index %d, want 0", idx)
	}
	if dist != 0 {
		t.Fatalf("distance %v, want 0", dist)
	}
}

func TestTrajectoryInfluence(t *testing.T) {
	p := Coord{Re: -0.5, Im: 0}
	traj := NewTrajectory([]Coord{p}, []int{0})
	traj.Strength = 2.0

	// On the path, influence equals strength.
	if got := traj.InfluenceAt(p); got != 2.0 {
		t.Fatalf("influence at path point = %v, want 2.0", got)
	}

	// Gaussian falloff: strength * exp(-d²/0.05).
	q := Coord{Re: -0.4, Im: 0}
	want := 2.0 * math.Exp(-0.01/0.05)
	if got := traj.InfluenceAt(q); math.Abs(got-want) > 1e-12 {
		t.Fatalf("influence = %v, want %v", got, want)
	}
}

func TestSuggestNext(t *testing.T) {
	path := []Coord{{Re: -0.5, Im: 0}, {Re: -0.4, Im: 0.1}, {Re: -0.3, Im: 0.2}}
	traj := NewTrajectory(path, []int{7, 8, 9})

	next, sym, ok := traj.SuggestNext(Coord{Re: -0.5, Im: 0.01})
	if !ok {
		t.Fatal("expected a next step from the path start")
	}
	if next != path[1] || sym != 8 {
		t.Fatalf("got (%v, %d), want (%v, 8)", next, sym, path[1])
	}

	// At the end of the path there is nothing to suggest.
	if _, _, ok := traj.SuggestNext(Coord{Re: -0.3, Im: 0.2}); ok {
		t.Fatal("suggested a step past the end of the path")
	}
}

func TestFieldContainsInclusive(t *testing.T) {
	f := NewField(Coord{Re: -0.5, Im: 0}, 0.2)

	if !f.Contains(Coord{Re: -0.5, Im: 0}) {
		t.Fatal("field must contain its center")
	}
	// Boundary is inclusive.
	if !f.Contains(Coord{Re: -0.3, Im: 0}) {
		t.Fatal("field must contain a point exactly at its radius")
	}
	if f.Contains(Coord{Re: -0.29, Im: 0.1}) {
		t.Fatal("field contained a point outside its radius")
	}
}

func TestFieldInfluenceFalloff(t *testing.T) {
	f := NewField(Coord{Re: -0.5, Im: 0}, 0.2)
	f.Strength = 3.0

	if got := f.InfluenceAt(f.Center); got != 3.0 {
		t.Fatalf("influence at center = %v, want strength", got)
	}
	// Halfway out: half the strength.
	if got := f.InfluenceAt(Coord{Re: -0.4, Im: 0}); math.Abs(got-1.5) > 1e-12 {
		t.Fatalf("influence at half radius = %v, want 1.5", got)
	}
	if got := f.InfluenceAt(Coord{Re: 0, Im: 0.5}); got != 0 {
		t.Fatalf("influence outside radius = %v, want 0", got)
	}
}

func TestStrengthFloor(t *testing.T) {
	traj := NewTrajectory([]Coord{{Re: -0.5, Im: 0}}, []int{0})

	for i := 0; i < 5000; i++ {
		traj.Strength = math.Max(traj.Strength*strengthDecay, strengthFloor)
		if traj.Strength < strengthFloor {
			t.Fatalf("strength %v dropped below floor at step %d", traj.Strength, i)
		}
	}
	if traj.Strength != strengthFloor {
		t.Fatalf("strength converged to %v, want %v", traj.Strength, strengthFloor)
	}
}
