package eli

import (
	"math"
	"math/rand"
)

const (
	maxResponseSymbols = 100
	maxThoughtSymbols  = 30

	symbolRefractory     = 3
	trajectoryRefractory = 2

	hebbianBoost  = 0.1
	strengthDecay = 0.995
	strengthFloor = 0.1

	placeholder = "?"
)

// candidate is one possible next step of the walk: a trajectory, the symbol
// it would emit, and the weight it carries into the draw.
type candidate struct {
	trajIdx   int
	symbolIdx int
	weight    float64
}

// weightedChoice draws one candidate index with probability proportional to
// weight. Returns -1 when the list is empty or carries no mass. All of the
// engine's stochastic picks funnel through here so a seeded rng makes the
// whole walk reproducible.
func weightedChoice(rng *rand.Rand, cands []candidate) int {
	total := 0.0
	for i := range cands {
		total += cands[i].weight
	}
	if total <= 0 {
		return -1
	}

	r := rng.Float64() * total
	for i := range cands {
		if r < cands[i].weight {
			return i
		}
		r -= cands[i].weight
	}
	return len(cands) - 1
}

func isTerminator(ch rune) bool {
	return ch == '.' || ch == '!' || ch == '?'
}

// generateResponse walks learned trajectories from the contextual position,
// one symbol per step. Caller holds the lock.
//
// Per step: inhibition counters tick down; a search point is chosen (85%
// stay, 10% blend toward the background thought, 5% hop to a nearby
// interesting point); every non-inhibited trajectory near the search point
// contributes a candidate; one is drawn by weight. Used symbols and
// trajectories enter a refractory period so the walk cannot stutter.
func (m *Mind) generateResponse() string {
	if len(m.trajectories) == 0 || len(m.symbols) == 0 {
		return placeholder
	}

	var response []rune
	current := m.contextualCoord // context seeds the walk, not the learning cursor
	used := make(map[int]bool)
	lastTraj := -1

	for step := 0; step < maxResponseSymbols; step++ {
		m.inhibitedSymbols = tickInhibitions(m.inhibitedSymbols)
		m.inhibitedTrajectories = tickInhibitions(m.inhibitedTrajectories)

		searchCoord := current
		switch r := m.rng.Float64(); {
		case r < 0.85:
			// follow the input context
		case r < 0.95:
			if m.hasBackground {
				searchCoord = Coord{
					Re: current.Re*0.7 + m.backgroundCoord.Re*0.3,
					Im: current.Im*0.7 + m.backgroundCoord.Im*0.3,
				}
			}
		default:
			if nearby := NearbyInterestingPoints(current, 0.1, 3); len(nearby) > 0 {
				searchCoord = nearby[0]
			}
		}

		var cands []candidate
		for ti := range m.trajectories {
			if isInhibited(m.inhibitedTrajectories, ti) {
				continue
			}
			traj := &m.trajectories[ti]
			closest, dist := traj.ClosestPoint(searchCoord)

			// Continuing the same trajectory must move forward.
			next := closest
			if ti == lastTraj {
				next = closest + 1
			}

			if dist >= m.explorationRadius*10 || next >= len(traj.Symbols) {
				continue
			}
			symbolIdx := traj.Symbols[next]
			if isInhibited(m.inhibitedSymbols, symbolIdx) {
				continue
			}

			// Longer trajectories carry richer patterns.
			bonus := 0.5
			if len(traj.Symbols) > 5 {
				bonus = 2.0
			}
			cands = append(cands, candidate{
				trajIdx:   ti,
				symbolIdx: symbolIdx,
				weight:    traj.InfluenceAt(searchCoord) * traj.Strength * bonus,
			})
		}

		// Fields pull in trajectories that begin inside them, even when
		// the search point sits well outside the trajectory itself.
		for fi := range m.fields {
			field := &m.fields[fi]
			if coordDistance(searchCoord, field.Center) >= field.Radius*3 {
				continue
			}
			for ti := range m.trajectories {
				traj := &m.trajectories[ti]
				if len(traj.Symbols) == 0 || len(traj.Path) == 0 {
					continue
				}
				if field.Contains(traj.Path[0]) {
					cands = append(cands, candidate{
						trajIdx:   ti,
						symbolIdx: traj.Symbols[0],
						weight:    field.Strength * 0.5,
					})
				}
			}
		}

		pick := weightedChoice(m.rng, cands)
		if pick < 0 {
			break
		}
		chosen := cands[pick]

		used[chosen.trajIdx] = true
		m.inhibitedSymbols = append(m.inhibitedSymbols,
			inhibition{index: chosen.symbolIdx, steps: symbolRefractory})
		m.inhibitedTrajectories = append(m.inhibitedTrajectories,
			inhibition{index: chosen.trajIdx, steps: trajectoryRefractory})
		lastTraj = chosen.trajIdx

		terminated := false
		if chosen.symbolIdx < len(m.symbols) {
			if label := m.symbols[chosen.symbolIdx].Label; label != 0 {
				response = append(response, label)
				terminated = isTerminator(label)
			}
		}
		if terminated {
			break
		}

		// Advance along the chosen trajectory from the walk's own
		// position, not the search point.
		if next, _, ok := m.trajectories[chosen.trajIdx].SuggestNext(current); ok {
			current = next
		}
	}

	m.currentCoord = current

	// Hebbian pass: every trajectory that fired this response gets one
	// boost, then the whole store decays toward the floor.
	for ti := range used {
		if ti < len(m.trajectories) {
			m.trajectories[ti].Strength += hebbianBoost
		}
	}
	for ti := range m.trajectories {
		m.trajectories[ti].Strength = math.Max(m.trajectories[ti].Strength*strengthDecay, strengthFloor)
	}

	out := string(response)
	if out == "" {
		out = placeholder
	}
	m.lastOutput = out
	return out
}

// TryThink runs one background-thought cycle if the mind is idle right now.
// Contention means the foreground is busy; the cycle is silently dropped.
func (m *Mind) TryThink() (string, bool) {
	if !m.mu.TryLock() {
		return "", false
	}
	defer m.mu.Unlock()
	return m.backgroundThought(), true
}

// backgroundThought is the weaker wandering variant: jittered start, no
// inhibition, no forward-progress rule, fields not consulted. Caller holds
// the lock.
func (m *Mind) backgroundThought() string {
	if len(m.trajectories) == 0 || len(m.symbols) == 0 {
		return ""
	}

	var thought []rune

	const drift = 0.3
	current := Coord{
		Re: m.currentCoord.Re + (m.rng.Float64()-0.5)*drift,
		Im: m.currentCoord.Im + (m.rng.Float64()-0.5)*drift,
	}.clamped()

	for step := 0; step < maxThoughtSymbols; step++ {
		searchCoord := current
		switch r := m.rng.Float64(); {
		case r < 0.5:
			// stay put
		case r < 0.8:
			if nearby := NearbyInterestingPoints(current, 0.3, 5); len(nearby) > 0 {
				searchCoord = nearby[0]
			}
		default:
			if nearby := NearbyInterestingPoints(current, 0.5, 10); len(nearby) > 0 {
				searchCoord = nearby[m.rng.Intn(len(nearby))]
			}
		}

		var cands []candidate
		for ti := range m.trajectories {
			traj := &m.trajectories[ti]
			closest, dist := traj.ClosestPoint(searchCoord)
			if dist < m.explorationRadius*15 && closest < len(traj.Symbols) {
				cands = append(cands, candidate{
					trajIdx:   ti,
					symbolIdx: traj.Symbols[closest],
					weight:    traj.InfluenceAt(searchCoord) * traj.Strength,
				})
			}
		}

		pick := weightedChoice(m.rng, cands)
		if pick < 0 {
			break
		}
		chosen := cands[pick]

		terminated := false
		if chosen.symbolIdx < len(m.symbols) {
			if label := m.symbols[chosen.symbolIdx].Label; label != 0 {
				thought = append(thought, label)
				terminated = isTerminator(label)
			}
		}
		if terminated {
			break
		}

		if next, _, ok := m.trajectories[chosen.trajIdx].SuggestNext(current); ok {
			current = Coord{
				Re: next.Re + (m.rng.Float64()-0.5)*0.1,
				Im: next.Im + (m.rng.Float64()-0.5)*0.1,
			}.clamped()
		}
	}

	m.backgroundCoord = current
	m.hasBackground = true
	return string(thought)
}

func tickInhibitions(list []inhibition) []inhibition {
	kept := list[:0]
	for _, in := range list {
		if in.steps > 0 {
			in.steps--
		}
		if in.steps > 0 {
			kept = append(kept, in)
		}
	}
	return kept
}

func isInhibited(list []inhibition, index int) bool {
	for i := range list {
		if list[i].index == index {
			return true
		}
	}
	return false
}
