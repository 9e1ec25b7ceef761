package style

import (
	"maps"
	"slices"
)

// DefaultInstrument is used when neither the style nor the caller names one
const DefaultInstrument = "piano"

// instrumentPrograms maps Alda part names to General MIDI programs (0-based)
var instrumentPrograms = map[string]uint8{
	"piano":           0,
	"harpsichord":     6,
	"celesta":         8,
	"glockenspiel":    9,
	"music-box":       10,
	"vibraphone":      11,
	"marimba":         12,
	"organ":           19,
	"accordion":       21,
	"harmonica":       22,
	"guitar":          24,
	"electric-guitar": 26,
	"upright-bass":    32,
	"electric-bass":   33,
	"violin":          40,
	"viola":           41,
	"cello":           42,
	"contrabass":      43,
	"harp":            46,
	"trumpet":         56,
	"trombone":        57,
	"tuba":            58,
	"french-horn":     60,
	"soprano-sax":     64,
	"alto-sax":        65,
	"tenor-sax":       66,
	"oboe":            68,
	"bassoon":         70,
	"clarinet":        71,
	"piccolo":         72,
	"flute":           73,
	"recorder":        74,
	"pan-flute":       75,
	"shakuhachi":      77,
	"sitar":           104,
	"banjo":           105,
	"koto":            107,
}

// Instruments lists the known instrument names in order
func Instruments() []string {
	return slices.Sorted(maps.Keys(instrumentPrograms))
}

// IsInstrument reports whether name is a known instrument
func IsInstrument(name string) bool {
	_, ok := instrumentPrograms[name]
	return ok
}

// InstrumentProgram returns the General MIDI program for name, falling back to the default instrument
func InstrumentProgram(name string) uint8 {
	if p, ok := instrumentPrograms[name]; ok {
		return p
	}
	return instrumentPrograms[DefaultInstrument]
}
