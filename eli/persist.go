package eli

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Mind state file: one little-endian blob.
//
//	magic "ELIM", version u32
//	scale u32, exploration radius f64
//	current / contextual coords, background coord + presence flag
//	last output string
//	symbols, trajectories, fields, inhibition lists (u64 count each)
//
// Strings are u64-length-prefixed UTF-8. The session windows (context
// history, symbol history) are deliberately absent: they describe a
// conversation, not the memory, and a loaded mind starts a new one.
const (
	stateVersion = 1

	// Sanity cap on any element count read from disk; a corrupt length
	// must fail decode, not exhaust memory.
	maxStateElems = 1 << 28
)

var stateMagic = [4]byte{'E', 'L', 'I', 'M'}

type stateWriter struct {
	w   io.Writer
	err error
}

func (sw *stateWriter) write(v any) {
	if sw.err != nil {
		return
	}
	sw.err = binary.Write(sw.w, binary.LittleEndian, v)
}

func (sw *stateWriter) writeString(s string) {
	sw.write(uint64(len(s)))
	if sw.err != nil {
		return
	}
	_, sw.err = io.WriteString(sw.w, s)
}

func (sw *stateWriter) writeCoord(c Coord) {
	sw.write(c.Re)
	sw.write(c.Im)
}

type stateReader struct {
	r   io.Reader
	err error
}

func (sr *stateReader) read(v any) {
	if sr.err != nil {
		return
	}
	sr.err = binary.Read(sr.r, binary.LittleEndian, v)
}

func (sr *stateReader) readString() string {
	var length uint64
	sr.read(&length)
	if sr.err != nil {
		return ""
	}
	if length > maxStateElems {
		sr.err = fmt.Errorf("string length %d out of range", length)
		return ""
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(sr.r, buf); err != nil {
		sr.err = err
		return ""
	}
	return string(buf)
}

func (sr *stateReader) readCoord() Coord {
	var c Coord
	sr.read(&c.Re)
	sr.read(&c.Im)
	return c
}

func (sr *stateReader) readCount() uint64 {
	var n uint64
	sr.read(&n)
	if sr.err == nil && n > maxStateElems {
		sr.err = fmt.Errorf("element count %d out of range", n)
	}
	return n
}

// Save serializes the durable state to filename. Write failures are the
// caller's problem; there is no retry.
func (m *Mind) Save(filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var buf bytes.Buffer
	sw := &stateWriter{w: &buf}

	sw.write(stateMagic)
	sw.write(uint32(stateVersion))
	sw.write(m.scale)
	sw.write(m.explorationRadius)
	sw.writeCoord(m.currentCoord)
	sw.writeCoord(m.contextualCoord)
	sw.writeCoord(m.backgroundCoord)
	if m.hasBackground {
		sw.write(uint8(1))
	} else {
		sw.write(uint8(0))
	}
	sw.writeString(m.lastOutput)

	sw.write(uint64(len(m.symbols)))
	for i := range m.symbols {
		sym := &m.symbols[i]
		sw.writeCoord(sym.Coord)
		sw.write(sym.Pattern)
		sw.write(sym.Count)
		sw.write(int32(sym.Label))
		sw.write(sym.Confidence)
		sw.write(sym.Stability)
	}

	sw.write(uint64(len(m.trajectories)))
	for i := range m.trajectories {
		traj := &m.trajectories[i]
		sw.write(uint64(len(traj.Path)))
		for _, p := range traj.Path {
			sw.writeCoord(p)
		}
		sw.write(uint64(len(traj.Symbols)))
		for _, si := range traj.Symbols {
			sw.write(int64(si))
		}
		sw.write(traj.Strength)
		sw.writeString(traj.ImagePath)
	}

	sw.write(uint64(len(m.fields)))
	for i := range m.fields {
		sw.writeCoord(m.fields[i].Center)
		sw.write(m.fields[i].Radius)
		sw.write(m.fields[i].Strength)
	}

	writeInhibitions(sw, m.inhibitedSymbols)
	writeInhibitions(sw, m.inhibitedTrajectories)

	if sw.err != nil {
		return fmt.Errorf("encode mind state: %w", sw.err)
	}
	return os.WriteFile(filename, buf.Bytes(), 0644)
}

func writeInhibitions(sw *stateWriter, list []inhibition) {
	sw.write(uint64(len(list)))
	for _, in := range list {
		sw.write(int64(in.index))
		sw.write(in.steps)
	}
}

// Load reads a mind back from filename. Any malformed blob comes back as an
// error; callers fall back to New().
func Load(filename string) (*Mind, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	sr := &stateReader{r: bytes.NewReader(data)}

	var magic [4]byte
	sr.read(&magic)
	if sr.err == nil && magic != stateMagic {
		return nil, fmt.Errorf("not a mind state file: bad magic %q", magic[:])
	}
	var version uint32
	sr.read(&version)
	if sr.err == nil && version != stateVersion {
		return nil, fmt.Errorf("unsupported mind state version %d", version)
	}

	m := New()
	sr.read(&m.scale)
	sr.read(&m.explorationRadius)
	m.currentCoord = sr.readCoord()
	m.contextualCoord = sr.readCoord()
	m.backgroundCoord = sr.readCoord()
	var hasBg uint8
	sr.read(&hasBg)
	m.hasBackground = hasBg != 0
	m.lastOutput = sr.readString()

	symCount := sr.readCount()
	for i := uint64(0); i < symCount && sr.err == nil; i++ {
		var sym Symbol
		sym.Coord = sr.readCoord()
		sr.read(&sym.Pattern)
		sr.read(&sym.Count)
		var label int32
		sr.read(&label)
		sym.Label = rune(label)
		sr.read(&sym.Confidence)
		sr.read(&sym.Stability)
		m.symbols = append(m.symbols, sym)
	}

	trajCount := sr.readCount()
	for i := uint64(0); i < trajCount && sr.err == nil; i++ {
		var traj Trajectory
		pathLen := sr.readCount()
		for j := uint64(0); j < pathLen && sr.err == nil; j++ {
			traj.Path = append(traj.Path, sr.readCoord())
		}
		symLen := sr.readCount()
		for j := uint64(0); j < symLen && sr.err == nil; j++ {
			var si int64
			sr.read(&si)
			traj.Symbols = append(traj.Symbols, int(si))
		}
		sr.read(&traj.Strength)
		traj.ImagePath = sr.readString()
		m.trajectories = append(m.trajectories, traj)
	}

	fieldCount := sr.readCount()
	for i := uint64(0); i < fieldCount && sr.err == nil; i++ {
		var f Field
		f.Center = sr.readCoord()
		sr.read(&f.Radius)
		sr.read(&f.Strength)
		m.fields = append(m.fields, f)
	}

	m.inhibitedSymbols = readInhibitions(sr)
	m.inhibitedTrajectories = readInhibitions(sr)

	if sr.err != nil {
		return nil, fmt.Errorf("corrupt mind state: %w", sr.err)
	}

	// Stale symbol references must not survive a load.
	for _, traj := range m.trajectories {
		for _, si := range traj.Symbols {
			if si < 0 || si >= len(m.symbols) {
				return nil, fmt.Errorf("corrupt mind state: symbol index %d of %d", si, len(m.symbols))
			}
		}
	}

	return m, nil
}

func readInhibitions(sr *stateReader) []inhibition {
	count := sr.readCount()
	var list []inhibition
	for i := uint64(0); i < count && sr.err == nil; i++ {
		var idx int64
		var steps uint32
		sr.read(&idx)
		sr.read(&steps)
		list = append(list, inhibition{index: int(idx), steps: steps})
	}
	return list
}
