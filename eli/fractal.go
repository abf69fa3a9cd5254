package eli

import (
	"hash/fnv"
	"math"
	"math/bits"
)

// Concept space: the lively window of the Mandelbrot set. Every coordinate
// this package produces is clamped into this rectangle before use.
const (
	ReMin = -0.75
	ReMax = 0.25
	ImMin = -1.0
	ImMax = 1.0
)

// Coord is a point in concept space, interpreted as the c parameter of the
// iteration z ← z² + c when a Julia pattern is needed.
type Coord struct {
	Re float64
	Im float64
}

func NewCoord(re, im float64) Coord {
	return Coord{Re: re, Im: im}
}

func (c Coord) param() complex128 {
	return complex(c.Re, c.Im)
}

func (c Coord) clamped() Coord {
	return Coord{
		Re: clampF64(c.Re, ReMin, ReMax),
		Im: clampF64(c.Im, ImMin, ImMax),
	}
}

func coordDistance(a, b Coord) float64 {
	dr := a.Re - b.Re
	di := a.Im - b.Im
	return math.Sqrt(dr*dr + di*di)
}

// HashCoord maps arbitrary text onto concept space: FNV-1a 64, high half to
// the real axis, low half to the imaginary axis. Deterministic across
// processes; not injective.
func HashCoord(input string) Coord {
	h := fnv.New64a()
	h.Write([]byte(input))
	sum := h.Sum64()

	reBits := uint32(sum >> 32)
	imBits := uint32(sum)

	re := ReMin + float64(reBits)/float64(math.MaxUint32)*(ReMax-ReMin)
	im := ImMin + float64(imBits)/float64(math.MaxUint32)*(ImMax-ImMin)
	return Coord{Re: re, Im: im}
}

// ContextualCoord nudges base toward the context's own coordinate. The 0.1
// factor keeps context from ever overwhelming the input's position.
func ContextualCoord(base Coord, context string, influence float64) Coord {
	ctx := HashCoord(context)
	return Coord{
		Re: base.Re + (ctx.Re-base.Re)*influence*0.1,
		Im: base.Im + (ctx.Im-base.Im)*influence*0.1,
	}.clamped()
}

// MandelbrotEscapes returns the first iteration at which |z|² > 4 starting
// from z = 0, or maxIter if the orbit never escapes.
func MandelbrotEscapes(c complex128, maxIter uint32) uint32 {
	var z complex128
	for i := uint32(0); i < maxIter; i++ {
		if absSq(z) > 4.0 {
			return i
		}
		z = z*z + c
	}
	return maxIter
}

// JuliaEscapes is the same escape rule seeded at z0 with c held fixed.
func JuliaEscapes(z0, c complex128, maxIter uint32) uint32 {
	z := z0
	for i := uint32(0); i < maxIter; i++ {
		if absSq(z) > 4.0 {
			return i
		}
		z = z*z + c
	}
	return maxIter
}

func absSq(z complex128) float64 {
	re, im := real(z), imag(z)
	return re*re + im*im
}

// FingerprintWords is the fingerprint width: 32 words = 2048 bits,
// two bits per cell of a 32×32 probe grid.
const FingerprintWords = 32

const fingerprintGrid = 32

// Fingerprint summarizes the escape-time shape of the Julia set at a
// coordinate. Fixed width keeps the Hamming distance a plain XOR + popcount.
type Fingerprint [FingerprintWords]uint64

// JuliaFingerprint probes a 32×32 grid spanning [-2,2]² and buckets each
// escape time into four categories: never escaped, first third, second
// third, last third of the iteration budget.
func JuliaFingerprint(coord Coord, scale uint32) Fingerprint {
	c := coord.param()
	const span = 2.0

	var fp Fingerprint
	third := scale / 3

	for y := 0; y < fingerprintGrid; y++ {
		for x := 0; x < fingerprintGrid; x++ {
			zx := -span + float64(x)/float64(fingerprintGrid)*2.0*span
			zy := -span + float64(y)/float64(fingerprintGrid)*2.0*span
			escape := JuliaEscapes(complex(zx, zy), c, scale)

			var bin uint64
			switch {
			case escape >= scale:
				bin = 0
			case escape <= third:
				bin = 1
			case escape <= 2*third:
				bin = 2
			default:
				bin = 3
			}

			idx := y*fingerprintGrid + x
			fp[(idx*2)/64] |= bin << uint((idx*2)%64)
		}
	}
	return fp
}

// HammingDistance between two fingerprints, in [0, 2048].
func HammingDistance(a, b Fingerprint) uint32 {
	var d uint32
	for i := range a {
		d += uint32(bits.OnesCount64(a[i] ^ b[i]))
	}
	return d
}

// Stability is the normalized single-seed escape time of a coordinate:
// 1.0 means the orbit never escaped within the budget.
func Stability(coord Coord, scale uint32) float64 {
	return float64(MandelbrotEscapes(coord.param(), scale)) / float64(scale)
}

// stabilityProbeIters is the fixed budget used when screening nearby points.
const stabilityProbeIters = 256

// NearbyInterestingPoints spirals outward from coord and keeps points whose
// stability sits strictly between 0.3 and 0.95 — near the boundary, where
// the patterns are rich enough to be worth landing on.
func NearbyInterestingPoints(coord Coord, radius float64, samples int) []Coord {
	var points []Coord

	for i := 0; i < samples; i++ {
		angle := float64(i) / float64(samples) * 2.0 * math.Pi
		r := radius * math.Sqrt(float64(i)/float64(samples))

		test := Coord{
			Re: coord.Re + r*math.Cos(angle),
			Im: coord.Im + r*math.Sin(angle),
		}.clamped()

		stability := Stability(test, stabilityProbeIters)
		if stability > 0.3 && stability < 0.95 {
			points = append(points, test)
		}
	}
	return points
}

func clampF64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampF32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
