package eli

import (
	"fmt"
	"testing"
)

func TestHashCoordDeterministic(t *testing.T) {
	inputs := []string{"", "a", "cat", "hello world", "ヱリ", "explore 42"}
	for _, s := range inputs {
		a := HashCoord(s)
		b := HashCoord(s)
		if a != b {
			t.Fatalf("HashCoord(%q) not deterministic: %v vs %v", s, a, b)
		}
	}
}

func TestHashCoordBounded(t *testing.T) {
	for i := 0; i < 1000; i++ {
		c := HashCoord(fmt.Sprintf("input-%d", i))
		if c.Re < ReMin || c.Re > ReMax {
			t.Fatalf("re %v out of [%v, %v]", c.Re, ReMin, ReMax)
		}
		if c.Im < ImMin || c.Im > ImMax {
			t.Fatalf("im %v out of [%v, %v]", c.Im, ImMin, ImMax)
		}
	}
}

func TestHashCoordDistinguishesInputs(t *testing.T) {
	if HashCoord("cat") == HashCoord("dog") {
		t.Fatal("distinct inputs collided (astronomically unlikely)")
	}
}

func TestContextualCoordNudgesWithinBounds(t *testing.T) {
	base := HashCoord("cat")
	out := ContextualCoord(base, "some recent conversation", 1.0)

	if out.Re < ReMin || out.Re > ReMax || out.Im < ImMin || out.Im > ImMax {
		t.Fatalf("contextual coord %v escaped concept space", out)
	}

	// The 0.1 damping means full influence moves at most 10% of the way.
	ctx := HashCoord("some recent conversation")
	maxRe := 0.1 * abs64(ctx.Re-base.Re)
	if got := abs64(out.Re - base.Re); got > maxRe+1e-12 {
		t.Fatalf("re moved %v, want at most %v", got, maxRe)
	}
}

func TestContextualCoordZeroInfluence(t *testing.T) {
	base := HashCoord("cat")
	if got := ContextualCoord(base, "anything", 0); got != base {
		t.Fatalf("zero influence moved the point: %v vs %v", got, base)
	}
}

func TestMandelbrotEscapes(t *testing.T) {
	// Origin is in the set: never escapes.
	if got := MandelbrotEscapes(complex(0, 0), 100); got != 100 {
		t.Fatalf("c=0 escaped at %d, want max_iter", got)
	}
	// c=2 blows up immediately after a couple of iterations.
	if got := MandelbrotEscapes(complex(2, 0), 100); got >= 5 {
		t.Fatalf("c=2 escaped at %d, want < 5", got)
	}
}

func TestStabilityRange(t *testing.T) {
	for _, c := range []Coord{{-0.5, 0}, {0.25, 1.0}, {-0.75, -1.0}, {0, 0.66}} {
		s := Stability(c, 256)
		if s < 0 || s > 1 {
			t.Fatalf("stability %v outside [0,1] for %v", s, c)
		}
	}
	if Stability(Coord{Re: 0, Im: 0}, 256) != 1.0 {
		t.Fatal("origin should be fully stable")
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	c := HashCoord("cat")
	a := JuliaFingerprint(c, 64)
	b := JuliaFingerprint(c, 64)
	if a != b {
		t.Fatal("fingerprint not deterministic for fixed point and scale")
	}
	if HammingDistance(a, b) != 0 {
		t.Fatal("identical fingerprints must be distance 0")
	}
}

func TestHammingDistanceMetric(t *testing.T) {
	f1 := JuliaFingerprint(HashCoord("cat"), 64)
	f2 := JuliaFingerprint(HashCoord("dog"), 64)

	if HammingDistance(f1, f2) != HammingDistance(f2, f1) {
		t.Fatal("hamming distance not symmetric")
	}
	if d := HammingDistance(f1, f2); d > 2048 {
		t.Fatalf("distance %d exceeds 2048", d)
	}

	var zero, ones Fingerprint
	for i := range ones {
		ones[i] = ^uint64(0)
	}
	if d := HammingDistance(zero, ones); d != 2048 {
		t.Fatalf("all-bits distance = %d, want 2048", d)
	}
}

func TestNearbyInterestingPoints(t *testing.T) {
	points := NearbyInterestingPoints(Coord{Re: -0.5, Im: 0}, 0.3, 20)
	for _, p := range points {
		if p.Re < ReMin || p.Re > ReMax || p.Im < ImMin || p.Im > ImMax {
			t.Fatalf("point %v escaped concept space", p)
		}
		s := Stability(p, stabilityProbeIters)
		if s <= 0.3 || s >= 0.95 {
			t.Fatalf("kept point %v has stability %v, want (0.3, 0.95)", p, s)
		}
	}
	if len(points) > 20 {
		t.Fatalf("returned %d points from 20 samples", len(points))
	}
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
