package theory

import (
	"fmt"
	"strings"
)

// Progression is an ordered chord sequence cycled across bars
type Progression struct {
	Name   string  `json:"name"`
	Chords []Chord `json:"chords"`
}

// Len returns the number of chords
func (p Progression) Len() int {
	return len(p.Chords)
}

// At returns the chord for a bar index, cycling modulo the progression length
func (p Progression) At(bar int) Chord {
	n := len(p.Chords)
	return p.Chords[((bar%n)+n)%n]
}

// Symbols returns the chord symbols in order
func (p Progression) Symbols() []string {
	out := make([]string, len(p.Chords))
	for i, c := range p.Chords {
		out[i] = c.Symbol
	}
	return out
}

// SplitProgression splits a progression name ("I_vi_IV_V", "1-6-4-5" style separators) into symbols
func SplitProgression(name string) []string {
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == ','
	})
	return fields
}

// ParseProgression parses every symbol and checks that each chord tone lies in the scale
func ParseProgression(name string, scale Scale) (Progression, error) {
	symbols := SplitProgression(name)
	if len(symbols) == 0 {
		return Progression{}, fmt.Errorf("empty progression %q", name)
	}

	chords := make([]Chord, 0, len(symbols))
	for _, sym := range symbols {
		chord, err := ParseSymbol(sym, scale.Root)
		if err != nil {
			return Progression{}, err
		}
		for _, tone := range chord.Tones {
			if !scale.Contains(tone) {
				return Progression{}, fmt.Errorf("chord %s (%s) uses %s outside %s %s",
					sym, chord.Name(), tone, scale.Root, scale.Name)
			}
		}
		chords = append(chords, chord)
	}

	return Progression{Name: strings.Join(symbols, "_"), Chords: chords}, nil
}
