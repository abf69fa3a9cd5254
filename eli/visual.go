package eli

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// AsciiJulia renders the Julia set parameterized by coord as a width×height
// character field — the terminal stand-in for a live fractal window.
func AsciiJulia(coord Coord, width, height int) string {
	const ramp = " .:-=+*#%@"
	const zoom = 1.5
	const iters = 256

	c := coord.param()

	var b strings.Builder
	b.Grow(width*height + height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			zx := (float64(x)/float64(width) - 0.5) * zoom * 2.0
			zy := (float64(y)/float64(height) - 0.5) * zoom * 2.0
			escape := JuliaEscapes(complex(zx, zy), c, iters)

			if escape >= iters {
				b.WriteByte(' ') // inside the set
			} else {
				idx := int(escape) * (len(ramp) - 1) / iters
				b.WriteByte(ramp[len(ramp)-1-idx])
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Watch copies summary counters on a timer and writes one status line per
// change until stop closes. Strictly read-only: it only ever calls
// Snapshot.
func Watch(m *Mind, interval time.Duration, out io.Writer, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last Snapshot
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			snap := m.Snapshot()
			if snap == last {
				continue
			}
			last = snap
			fmt.Fprintf(out, "[watch] c=(%.3f,%.3f) symbols=%d trajectories=%d fields=%d\n",
				snap.Coord.Re, snap.Coord.Im, snap.Symbols, snap.Trajectories, snap.Fields)
		}
	}
}
