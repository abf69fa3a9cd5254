package eli

import "math"

// Symbol is a deduplicated learned unit anchored at a coordinate. The label
// is display metadata only; the fingerprint is the identity. Label 0 means
// unlabeled. Symbols are owned by the Mind and referenced from trajectories
// by index, never by pointer, so pruning can compact the store.
type Symbol struct {
	Coord      Coord
	Pattern    Fingerprint
	Count      uint32
	Label      rune
	Confidence float32
	Stability  float64
}

// Trajectory is the recorded path of one learned input: a sequence of
// coordinates and the parallel sequence of symbol indices. Strength starts
// at 1.0, decays toward 0.1 and is boosted when the trajectory is walked.
type Trajectory struct {
	Path      []Coord
	Symbols   []int
	Strength  float64
	ImagePath string // set only when the input came from a source image
}

func NewTrajectory(path []Coord, symbols []int) Trajectory {
	return Trajectory{
		Path:     path,
		Symbols:  symbols,
		Strength: 1.0,
	}
}

// ClosestPoint returns the path index nearest to coord and its distance.
// Ties resolve to the earliest index.
func (t *Trajectory) ClosestPoint(coord Coord) (int, float64) {
	if len(t.Path) == 0 {
		return 0, math.Inf(1)
	}

	bestIdx := 0
	bestDist := coordDistance(coord, t.Path[0])
	for i := 1; i < len(t.Path); i++ {
		if d := coordDistance(coord, t.Path[i]); d < bestDist {
			bestDist = d
			bestIdx = i
		}
	}
	return bestIdx, bestDist
}

// InfluenceAt is a Gaussian falloff from the nearest path point.
func (t *Trajectory) InfluenceAt(coord Coord) float64 {
	_, dist := t.ClosestPoint(coord)
	return t.Strength * math.Exp(-dist*dist/0.05)
}

// SuggestNext returns the point and symbol one step past the path point
// closest to current. ok is false at the end of the path.
func (t *Trajectory) SuggestNext(current Coord) (Coord, int, bool) {
	idx, _ := t.ClosestPoint(current)
	if idx+1 >= len(t.Path) || idx+1 >= len(t.Symbols) {
		return Coord{}, 0, false
	}
	return t.Path[idx+1], t.Symbols[idx+1], true
}

// Field is a reinforced circular region of concept space. Unlike a
// trajectory it has no order; it provides coarse, radius-based pull.
type Field struct {
	Center   Coord
	Radius   float64
	Strength float64
}

func NewField(center Coord, radius float64) Field {
	return Field{
		Center:   center,
		Radius:   radius,
		Strength: 1.0,
	}
}

// Contains is inclusive at the boundary.
func (f *Field) Contains(coord Coord) bool {
	return coordDistance(f.Center, coord) <= f.Radius
}

// InfluenceAt falls off linearly to zero at the radius.
func (f *Field) InfluenceAt(coord Coord) float64 {
	dist := coordDistance(f.Center, coord)
	if dist > f.Radius {
		return 0
	}
	return f.Strength * (1.0 - dist/f.Radius)
}
