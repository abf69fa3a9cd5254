package eli

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
)

const (
	defaultScale             = 4096
	defaultExplorationRadius = 0.20

	mergeThreshold  = 8 // Hamming bits below which two patterns are one symbol
	confidenceBoost = 0.15
	confidenceDecay = 0.001
	confidenceFloor = 0.05
	pruneCountCap   = 10

	contextWindowMax = 10
	symbolHistoryMax = 20

	charPrefixMax = 50
)

// Mind is the memory aggregate: symbol store, trajectory store, associative
// fields, plus the transient session state around them. One instance is
// shared by the foreground path, the idle-thought loop and the
// visualization loop; the mutex lives here so callers never coordinate.
type Mind struct {
	mu  sync.Mutex
	rng *rand.Rand

	symbols      []Symbol
	trajectories []Trajectory
	fields       []Field

	currentCoord    Coord // character-by-character learning cursor
	contextualCoord Coord // seeds the next generation; learning must not clobber it
	backgroundCoord Coord
	hasBackground   bool
	lastOutput      string

	// Session-only: these describe a conversation, not the memory.
	contextHistory []string
	symbolHistory  []int

	inhibitedSymbols      []inhibition
	inhibitedTrajectories []inhibition

	scale             uint32
	explorationRadius float64
}

// inhibition is a refractory entry: the index stays suppressed for the
// remaining number of generation steps.
type inhibition struct {
	index int
	steps uint32
}

func New() *Mind {
	return &Mind{
		rng:               rand.New(rand.NewSource(time.Now().UnixNano())),
		currentCoord:      Coord{Re: -0.5, Im: 0},
		contextualCoord:   Coord{Re: -0.5, Im: 0},
		scale:             defaultScale,
		explorationRadius: defaultExplorationRadius,
	}
}

// Process learns the input at full intensity and generates a response.
func (m *Mind) Process(input string) string {
	return m.ProcessWithIntensity(input, 1.0)
}

// ProcessWithIntensity runs the full pipeline: hierarchical learning,
// background-position tracking, synaptic pruning, then the stochastic walk
// that produces the response. Blocks until the mind is free.
func (m *Mind) ProcessWithIntensity(input string, intensity float64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.process(input, intensity)
}

// TryProcessWithIntensity is the non-blocking variant used by the idle
// loop: if the mind is busy the call is dropped rather than queued.
func (m *Mind) TryProcessWithIntensity(input string, intensity float64) (string, bool) {
	if !m.mu.TryLock() {
		return "", false
	}
	defer m.mu.Unlock()
	return m.process(input, intensity), true
}

func (m *Mind) process(input string, intensity float64) string {
	m.processHierarchical(input, intensity)

	// Low-intensity input is background wandering; remember where it went.
	if intensity < 0.3 {
		m.backgroundCoord = m.currentCoord
		m.hasBackground = true
	}

	m.decaySymbols()

	return m.generateResponse()
}

// processHierarchical learns the input at three scales: the whole chunk,
// each word, and a character-level prefix. Only high-intensity input enters
// the rolling context window and moves the contextual position.
func (m *Mind) processHierarchical(input string, baseIntensity float64) {
	if baseIntensity > 0.3 {
		m.contextHistory = append(m.contextHistory, input)
		if len(m.contextHistory) > contextWindowMax {
			m.contextHistory = m.contextHistory[1:]
		}
	}
	context := strings.Join(m.contextHistory, " ")

	chunkCoord := HashCoord(input)
	// Computed before learning so the character walk below cannot
	// overwrite the position the next generation starts from.
	m.contextualCoord = ContextualCoord(chunkCoord, context, 0.7*baseIntensity)

	m.learn(input, baseIntensity*0.8, "")

	words := strings.Fields(input)
	if len(words) > 1 {
		for _, word := range words {
			m.learn(word, baseIntensity*0.4, "")
		}
	}

	if baseIntensity > 0.5 {
		if prefix := charPrefix(input); prefix != "" {
			m.learn(prefix, baseIntensity*0.1, "")
		}
	}
}

// charPrefix strips whitespace and duplicate characters, keeping first
// occurrences, capped at charPrefixMax runes.
func charPrefix(input string) string {
	seen := make(map[rune]bool)
	var prefix []rune
	for _, ch := range input {
		if unicode.IsSpace(ch) || seen[ch] {
			continue
		}
		seen[ch] = true
		prefix = append(prefix, ch)
		if len(prefix) == charPrefixMax {
			break
		}
	}
	return string(prefix)
}

// learn walks the concept character by character, merging each derived
// coordinate into the symbol store, then records one trajectory and updates
// fields and overlapping trajectories.
func (m *Mind) learn(concept string, intensity float64, imagePath string) {
	var path []Coord
	var symbolIndices []int

	for i, ch := range []rune(concept) {
		var charCoord Coord
		if intensity < 0.2 {
			// Low salience: hash the bare character so repeats merge.
			charCoord = HashCoord(string(ch))
		} else {
			// Salient: position + context in the key for diversity.
			charCoord = HashCoord(fmt.Sprintf("%c:%d:%s", ch, i, concept))
		}

		path = append(path, charCoord)
		symbolIndices = append(symbolIndices, m.storeSymbol(charCoord, ch))
		m.currentCoord = charCoord
	}

	if len(path) == 0 {
		return
	}

	traj := NewTrajectory(path, symbolIndices)
	traj.ImagePath = imagePath
	m.trajectories = append(m.trajectories, traj)

	m.symbolHistory = append(m.symbolHistory, symbolIndices...)
	if n := len(m.symbolHistory); n > symbolHistoryMax {
		m.symbolHistory = m.symbolHistory[n-symbolHistoryMax:]
	}

	// Strengthen the containing field, or claim new territory when the
	// input was salient enough.
	found := false
	for i := range m.fields {
		if m.fields[i].Contains(m.currentCoord) {
			m.fields[i].Strength += 0.1 * intensity
			found = true
			break
		}
	}
	if !found && intensity > 0.3 {
		m.fields = append(m.fields, NewField(m.currentCoord, m.explorationRadius))
	}

	// Cross-reinforcement: older trajectories passing near the new path
	// get pulled along with it.
	near := m.explorationRadius * 0.5
	for ti := 0; ti < len(m.trajectories)-1; ti++ {
		if pathsOverlap(path, m.trajectories[ti].Path, near) {
			m.trajectories[ti].Strength += 0.05
		}
	}
}

func pathsOverlap(a, b []Coord, within float64) bool {
	for _, pa := range a {
		for _, pb := range b {
			if coordDistance(pa, pb) < within {
				return true
			}
		}
	}
	return false
}

// LearnWithImage learns a concept and records the source image path on its
// trajectory so the image can be recalled later.
func (m *Mind) LearnWithImage(concept string, intensity float64, imagePath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.learn(concept, intensity, imagePath)
}

// storeSymbol merges the coordinate's fingerprint into the store. The first
// symbol within the merge threshold wins, in store order — not the global
// nearest. On a miss a new symbol is appended.
func (m *Mind) storeSymbol(coord Coord, ch rune) int {
	pattern := JuliaFingerprint(coord, m.scale)
	stability := Stability(coord, m.scale)

	for i := range m.symbols {
		sym := &m.symbols[i]
		if HammingDistance(pattern, sym.Pattern) < mergeThreshold {
			sym.Count++
			sym.Confidence = clampF32(sym.Confidence+confidenceBoost, 0, 1)
			if sym.Label == 0 {
				sym.Label = ch
			}
			return i
		}
	}

	m.symbols = append(m.symbols, Symbol{
		Coord:     coord,
		Pattern:   pattern,
		Count:     1,
		Label:     ch,
		Stability: stability,
	})
	return len(m.symbols) - 1
}

// decaySymbols lowers every confidence, then removes symbols that have
// decayed, were barely used and are unreferenced. Removal compacts the
// store, so every trajectory's index sequence is remapped in the same pass;
// a stale index must never survive this function.
func (m *Mind) decaySymbols() {
	for i := range m.symbols {
		if m.symbols[i].Confidence > 0 {
			m.symbols[i].Confidence = clampF32(m.symbols[i].Confidence-confidenceDecay, 0, 1)
		}
	}

	referenced := make([]bool, len(m.symbols))
	for ti := range m.trajectories {
		for _, si := range m.trajectories[ti].Symbols {
			if si >= 0 && si < len(referenced) {
				referenced[si] = true
			}
		}
	}

	kept := m.symbols[:0:0]
	indexMap := make([]int, len(m.symbols))
	removed := false
	for i, sym := range m.symbols {
		if sym.Confidence > confidenceFloor || sym.Count > pruneCountCap || referenced[i] {
			indexMap[i] = len(kept)
			kept = append(kept, sym)
		} else {
			indexMap[i] = -1
			removed = true
		}
	}
	if !removed {
		return
	}

	for ti := range m.trajectories {
		traj := &m.trajectories[ti]
		remapped := traj.Symbols[:0]
		for _, old := range traj.Symbols {
			if old >= 0 && old < len(indexMap) && indexMap[old] >= 0 {
				remapped = append(remapped, indexMap[old])
			}
		}
		traj.Symbols = remapped
	}
	m.symbols = kept
}

// Reset clears everything back to a fresh mind without replacing the
// instance other goroutines hold.
func (m *Mind) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.symbols = nil
	m.trajectories = nil
	m.fields = nil
	m.currentCoord = Coord{Re: -0.5, Im: 0}
	m.contextualCoord = Coord{Re: -0.5, Im: 0}
	m.backgroundCoord = Coord{}
	m.hasBackground = false
	m.lastOutput = ""
	m.contextHistory = nil
	m.symbolHistory = nil
	m.inhibitedSymbols = nil
	m.inhibitedTrajectories = nil
	m.scale = defaultScale
	m.explorationRadius = defaultExplorationRadius
}

// Snapshot is the read-only view the visualization loop copies out.
type Snapshot struct {
	Coord        Coord
	Symbols      int
	Labeled      int
	Trajectories int
	Fields       int
	ContextLen   int
	LastOutput   string
}

func (m *Mind) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	labeled := 0
	for i := range m.symbols {
		if m.symbols[i].Label != 0 {
			labeled++
		}
	}
	return Snapshot{
		Coord:        m.currentCoord,
		Symbols:      len(m.symbols),
		Labeled:      labeled,
		Trajectories: len(m.trajectories),
		Fields:       len(m.fields),
		ContextLen:   len(m.contextHistory),
		LastOutput:   m.lastOutput,
	}
}

// StateString renders the state box shown by the /state command.
func (m *Mind) StateString() string {
	s := m.Snapshot()
	var b strings.Builder
	fmt.Fprintf(&b, "╭─── mind state ───────────╮\n")
	fmt.Fprintf(&b, "│ position: (%.3f, %.3f)\n", s.Coord.Re, s.Coord.Im)
	fmt.Fprintf(&b, "│ symbols: %d (labeled: %d)\n", s.Symbols, s.Labeled)
	fmt.Fprintf(&b, "│ trajectories: %d\n", s.Trajectories)
	fmt.Fprintf(&b, "│ fields: %d\n", s.Fields)
	fmt.Fprintf(&b, "│ context: %d\n", s.ContextLen)
	fmt.Fprintf(&b, "╰──────────────────────────╯")
	return b.String()
}

// Alphabet returns every learned label in store order.
func (m *Mind) Alphabet() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var b strings.Builder
	for i := range m.symbols {
		if m.symbols[i].Label != 0 {
			b.WriteRune(m.symbols[i].Label)
			b.WriteByte(' ')
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// RecallImages navigates to the concept and returns the image paths of the
// trajectories nearest to it, strongest and closest first.
func (m *Mind) RecallImages(concept string, limit int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.process(concept, 1.0)
	current := m.currentCoord

	type scored struct {
		path      string
		relevance float64
	}
	var candidates []scored

	for ti := range m.trajectories {
		traj := &m.trajectories[ti]
		if traj.ImagePath == "" {
			continue
		}
		_, dist := traj.ClosestPoint(current)
		relevance := traj.Strength * math.Exp(-dist*dist/0.1)
		if relevance > 0.01 {
			candidates = append(candidates, scored{traj.ImagePath, relevance})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].relevance > candidates[j].relevance
	})

	var paths []string
	for i := 0; i < len(candidates) && i < limit; i++ {
		paths = append(paths, candidates[i].path)
	}
	return paths
}

// Imagine samples a width×height grid of labels by walking trajectories
// outward from the concept's position — a rough visual recall.
func (m *Mind) Imagine(concept string, width, height int) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.process(concept, 1.0)
	current := m.currentCoord

	var b strings.Builder
	b.Grow(width*height + height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var cands []candidate
			var coords []Coord

			for ti := range m.trajectories {
				traj := &m.trajectories[ti]
				idx, dist := traj.ClosestPoint(current)
				if dist < m.explorationRadius && idx+1 < len(traj.Symbols) && idx+1 < len(traj.Path) {
					cands = append(cands, candidate{
						trajIdx:   ti,
						symbolIdx: traj.Symbols[idx+1],
						weight:    traj.InfluenceAt(current),
					})
					coords = append(coords, traj.Path[idx+1])
				}
			}

			pick := weightedChoice(m.rng, cands)
			if pick < 0 {
				b.WriteByte(' ')
				continue
			}

			ch := ' '
			if si := cands[pick].symbolIdx; si < len(m.symbols) && m.symbols[si].Label != 0 {
				ch = m.symbols[si].Label
			}
			b.WriteRune(ch)
			current = coords[pick]
		}
		b.WriteByte('\n')
	}
	return b.String()
}
