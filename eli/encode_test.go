package eli

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestEncodeBandSymbols(t *testing.T) {
	silence := make([]float32, 512)
	got := EncodeBandSymbols(silence, 8)
	if got != "bands:........" {
		t.Fatalf("silence encoded as %q", got)
	}

	// A loud constant offset concentrates energy in the DC band.
	loud := make([]float32, 512)
	for i := range loud {
		loud[i] = 0.9
	}
	got = EncodeBandSymbols(loud, 8)
	if !strings.HasPrefix(got, "bands:") || len(got) != len("bands:")+8 {
		t.Fatalf("unexpected shape %q", got)
	}
	if got[len("bands:")] == '.' {
		t.Fatalf("DC band silent for a loud signal: %q", got)
	}

	if got := EncodeBandSymbols(nil, 4); got != "bands:" {
		t.Fatalf("empty buffer encoded as %q", got)
	}
}

func TestEncodeAmplitudeEnvelope(t *testing.T) {
	samples := make([]float32, 800)
	for i := range samples {
		samples[i] = 0.5
	}
	got := EncodeAmplitudeEnvelope(samples, 8000, 100)
	// 800 samples at 8kHz in 100ms steps = one step, mean |amp| 0.5 → 500.
	if got != "amp:500," {
		t.Fatalf("envelope = %q, want %q", got, "amp:500,")
	}
}

func flatImage(w, h int, y uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = y
	}
	return img
}

func TestEncodeEdgeASCIIGrid(t *testing.T) {
	got := EncodeEdgeASCII(flatImage(16, 16, 128), 8, 4)
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(lines))
	}
	for _, line := range lines {
		if line != "        " {
			t.Fatalf("flat image produced edges: %q", line)
		}
	}
}

func TestEncodeEdgeASCIIDetectsEdges(t *testing.T) {
	// Left half black, right half white: a hard vertical edge.
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 8; x < 16; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	got := EncodeEdgeASCII(img, 8, 8)
	if !strings.ContainsAny(got, ".-|#") {
		t.Fatalf("edge missed: %q", got)
	}
}

func TestEncodePixelGrid(t *testing.T) {
	dark := EncodePixelGrid(flatImage(8, 8, 0), 4, 2)
	if dark != "    \n    \n" {
		t.Fatalf("black image = %q", dark)
	}
	bright := EncodePixelGrid(flatImage(8, 8, 255), 4, 2)
	if bright != "@@@@\n@@@@\n" {
		t.Fatalf("white image = %q", bright)
	}
}

func TestAsciiJuliaShape(t *testing.T) {
	out := AsciiJulia(Coord{Re: -0.5, Im: 0}, 20, 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(lines))
	}
	for i, line := range lines {
		if len(line) != 20 {
			t.Fatalf("row %d has width %d, want 20", i, len(line))
		}
	}
}
