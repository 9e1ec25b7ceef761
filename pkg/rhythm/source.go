package rhythm

import (
	"math/rand/v2"
)

// Stream identifies an independent random stream within a bar
type Stream uint64

const (
	StreamRhythm Stream = iota + 1
	StreamMotif
	StreamBlueNotes
	StreamAccompaniment
)

// Source is a seeded, order-dependent random generator
type Source struct {
	seed uint64
	rng  *rand.Rand
}

// NewSource creates a source from a caller seed
func NewSource(seed int64) *Source {
	return newSource(uint64(seed))
}

func newSource(seed uint64) *Source {
	return &Source{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, mix(seed))),
	}
}

// Seed returns the seed this source was built from
func (s *Source) Seed() uint64 {
	return s.seed
}

// Derive returns an independent source keyed by (seed, bar, stream).
// Derived sources never touch the parent's draw sequence.
func (s *Source) Derive(bar int, stream Stream) *Source {
	k := mix(s.seed + 0x9e3779b97f4a7c15*uint64(bar+1))
	k = mix(k ^ (uint64(stream) * 0xbf58476d1ce4e5b9))
	return newSource(k)
}

// Float64 returns a draw in [0, 1)
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// IntN returns a draw in [0, n)
func (s *Source) IntN(n int) int {
	return s.rng.IntN(n)
}

// Choose returns an index drawn with probability proportional to weights.
// It returns -1 when no weight is positive.
func (s *Source) Choose(weights []float64) int {
	total := 0.0
	last := -1
	for i, w := range weights {
		if w > 0 {
			total += w
			last = i
		}
	}
	if last < 0 {
		return -1
	}

	r := s.rng.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if r < w {
			return i
		}
		r -= w
	}
	return last
}

// mix is the splitmix64 finalizer
func mix(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
