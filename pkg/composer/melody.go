package composer

import (
	"hash/fnv"
	"slices"

	"github.com/james-see/codecomposer/pkg/rhythm"
	"github.com/james-see/codecomposer/pkg/style"
	"github.com/james-see/codecomposer/pkg/theory"
	"github.com/james-see/codecomposer/pkg/token"
)

// motif carries a contour and pool cursor from one bar into the next
type motif struct {
	contour style.Contour
	cursor  int
}

// pitchPool returns the chord tones, scale tones and sampled blue notes in the melody octave, ascending
func pitchPool(chord theory.Chord, scale theory.Scale, blueProb float64, octave int, rng *rhythm.Source) []theory.Pitch {
	classes := slices.Clone(chord.Tones)
	for _, pc := range scale.Classes {
		if !slices.Contains(classes, pc) {
			classes = append(classes, pc)
		}
	}
	// one draw per candidate keeps the stream position independent of outcomes
	for _, pc := range scale.BlueNotes() {
		if rng.Float64() < blueProb && !slices.Contains(classes, pc) {
			classes = append(classes, pc)
		}
	}

	pool := make([]theory.Pitch, len(classes))
	for i, pc := range classes {
		pool[i] = theory.Pitch{Class: pc, Octave: octave}
	}
	slices.SortFunc(pool, func(a, b theory.Pitch) int { return a.MIDI() - b.MIDI() })
	return pool
}

// tokenSeed maps a token to a stable pool position
func tokenSeed(t token.Token) int {
	h := fnv.New32a()
	h.Write([]byte(t.Kind.String()))
	h.Write([]byte(t.Lexeme))
	return int(h.Sum32() & 0x7fffffff)
}

// contourOffset is the pool step for slot i of n under a contour
func contourOffset(c style.Contour, i, n int) int {
	switch c {
	case style.ContourAscending:
		return i
	case style.ContourDescending:
		return -i
	case style.ContourArch:
		return min(i, n-1-i)
	case style.ContourValley:
		return -min(i, n-1-i)
	default:
		return 0
	}
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}

// nearestChordTone returns the pool index of the chord tone closest to pool[from]; ties go low
func nearestChordTone(pool []theory.Pitch, chord theory.Chord, from int) int {
	best, bestDist := from, -1
	target := pool[from].MIDI()
	for i, p := range pool {
		if !chord.IsTone(p.Class) {
			continue
		}
		d := p.MIDI() - target
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist || (d == bestDist && p.MIDI() < pool[best].MIDI()) {
			best, bestDist = i, d
		}
	}
	return best
}

// melodyBar assigns pitches to one bar of rhythmic slots. The first slot always lands on a chord
// tone and carries the accent; the returned motif continues where this bar stopped.
func melodyBar(durations []rhythm.Duration, pool []theory.Pitch, chord theory.Chord, m motif) ([]Slot, motif) {
	n := len(pool)
	start := nearestChordTone(pool, chord, wrap(m.cursor, n))

	slots := make([]Slot, len(durations))
	var offset rhythm.Duration
	last := start
	for i, d := range durations {
		idx := wrap(start+contourOffset(m.contour, i, len(durations)), n)
		velocity := DefaultVelocity
		if i == 0 {
			velocity = AccentVelocity
		}
		slots[i] = Slot{
			Offset:   offset,
			Duration: d,
			Pitches:  []theory.Pitch{pool[idx]},
			Velocity: velocity,
		}
		offset += d
		last = idx
	}

	return slots, motif{contour: m.contour, cursor: last}
}

// drawContour picks a contour from the style's motif weights
func drawContour(st style.Style, rng *rhythm.Source) style.Contour {
	contours, weights := st.MotifProbabilities()
	idx := rng.Choose(weights)
	if idx < 0 {
		return style.ContourRepeat
	}
	return contours[idx]
}
