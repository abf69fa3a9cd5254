package eli

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// Signal encoders. Upstream producers (microphones, cameras, image files)
// reduce their signal to a plain string with one of these strategies; the
// mind only ever sees the string. Device capture itself lives with the
// caller.

// EncodeBandSymbols reduces a sample buffer to one glyph per frequency
// band, e.g. "bands:.-|#@". Band energies come from a direct DFT over up to
// 2048 samples.
func EncodeBandSymbols(samples []float32, bands int) string {
	if bands <= 0 {
		return "bands:"
	}

	n := len(samples)
	if n > 2048 {
		n = 2048
	}

	var b strings.Builder
	b.WriteString("bands:")
	if n == 0 {
		return b.String()
	}

	binsPerBand := (n / 2) / bands
	if binsPerBand == 0 {
		binsPerBand = 1
	}

	for band := 0; band < bands; band++ {
		start := band * binsPerBand
		end := (band + 1) * binsPerBand
		if end > n/2 {
			end = n / 2
		}
		if start >= end {
			b.WriteByte('.')
			continue
		}

		energy := 0.0
		for k := start; k < end; k++ {
			re, im := dftBin(samples[:n], k)
			energy += re*re + im*im
		}
		energy = math.Sqrt(energy / float64(end-start))

		switch e := int(energy * 100); {
		case e <= 5:
			b.WriteByte('.')
		case e <= 15:
			b.WriteByte('-')
		case e <= 30:
			b.WriteByte('|')
		case e <= 50:
			b.WriteByte('#')
		default:
			b.WriteByte('@')
		}
	}
	return b.String()
}

func dftBin(samples []float32, k int) (re, im float64) {
	n := float64(len(samples))
	for t, s := range samples {
		angle := -2.0 * math.Pi * float64(k) * float64(t) / n
		re += float64(s) * math.Cos(angle)
		im += float64(s) * math.Sin(angle)
	}
	return re / n, im / n
}

// EncodeAmplitudeEnvelope emits the mean absolute amplitude per time step,
// scaled to integers: "amp:20,45,80,".
func EncodeAmplitudeEnvelope(samples []float32, sampleRate, stepMs int) string {
	var b strings.Builder
	b.WriteString("amp:")

	samplesPerStep := sampleRate * stepMs / 1000
	if samplesPerStep <= 0 {
		samplesPerStep = 1
	}

	for start := 0; start < len(samples); start += samplesPerStep {
		end := start + samplesPerStep
		if end > len(samples) {
			end = len(samples)
		}
		sum := 0.0
		for _, s := range samples[start:end] {
			sum += math.Abs(float64(s))
		}
		fmt.Fprintf(&b, "%d,", int(sum/float64(end-start)*1000))
	}
	return b.String()
}

// EncodeEdgeASCII downsamples the image to width×height luminance and maps
// the local gradient to an ASCII edge map, one row per line.
func EncodeEdgeASCII(img image.Image, width, height int) string {
	gray := resizeGray(img, width, height)

	var b strings.Builder
	b.Grow(width*height + height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			center := int(gray[y*width+x])
			right := center
			if x+1 < width {
				right = int(gray[y*width+x+1])
			}
			down := center
			if y+1 < height {
				down = int(gray[(y+1)*width+x])
			}

			gradient := abs(right-center) + abs(down-center)
			switch {
			case gradient <= 20:
				b.WriteByte(' ')
			case gradient <= 50:
				b.WriteByte('.')
			case gradient <= 100:
				b.WriteByte('-')
			case gradient <= 150:
				b.WriteByte('|')
			default:
				b.WriteByte('#')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// EncodePixelGrid downsamples to a brightness ramp: darkest ' ' to
// brightest '@'.
func EncodePixelGrid(img image.Image, width, height int) string {
	const ramp = " .:-=+*#%@"
	gray := resizeGray(img, width, height)

	var b strings.Builder
	b.Grow(width*height + height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := int(gray[y*width+x]) * (len(ramp) - 1) / 255
			b.WriteByte(ramp[idx])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// resizeGray nearest-neighbor samples the image down to w×h luminance.
func resizeGray(img image.Image, w, h int) []uint8 {
	bounds := img.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()

	out := make([]uint8, w*h)
	if srcW == 0 || srcH == 0 {
		return out
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx := bounds.Min.X + x*srcW/w
			sy := bounds.Min.Y + y*srcH/h
			r, g, bl, _ := img.At(sx, sy).RGBA()
			// 16-bit channels; plain average matches the upstream encoder.
			out[y*w+x] = uint8((r + g + bl) / 3 >> 8)
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
