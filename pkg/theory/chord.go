package theory

import (
	"fmt"
	"regexp"
	"strings"
)

// Quality names a chord's interval stack
type Quality string

const (
	QualityMajor     Quality = "maj"
	QualityMinor     Quality = "min"
	QualityDim       Quality = "dim"
	QualityAug       Quality = "aug"
	QualitySus2      Quality = "sus2"
	QualitySus4      Quality = "sus4"
	QualityDom7      Quality = "7"
	QualityMaj7      Quality = "maj7"
	QualityMin7      Quality = "min7"
	QualityMinMaj7   Quality = "minmaj7"
	QualityHalfDim7  Quality = "m7b5"
	QualityDim7      Quality = "dim7"
	QualityMaj6      Quality = "6"
	QualityMin6      Quality = "min6"
	QualityDom9      Quality = "9"
	QualityMin9      Quality = "min9"
	QualityAdd9      Quality = "add9"
	QualityMinorAdd9 Quality = "madd9"
)

// qualityIntervals lists semitones above the root, in root-third-fifth-seventh order
var qualityIntervals = map[Quality][]int{
	QualityMajor:     {0, 4, 7},
	QualityMinor:     {0, 3, 7},
	QualityDim:       {0, 3, 6},
	QualityAug:       {0, 4, 8},
	QualitySus2:      {0, 2, 7},
	QualitySus4:      {0, 5, 7},
	QualityDom7:      {0, 4, 7, 10},
	QualityMaj7:      {0, 4, 7, 11},
	QualityMin7:      {0, 3, 7, 10},
	QualityMinMaj7:   {0, 3, 7, 11},
	QualityHalfDim7:  {0, 3, 6, 10},
	QualityDim7:      {0, 3, 6, 9},
	QualityMaj6:      {0, 4, 7, 9},
	QualityMin6:      {0, 3, 7, 9},
	QualityDom9:      {0, 4, 7, 10, 14},
	QualityMin9:      {0, 3, 7, 10, 14},
	QualityAdd9:      {0, 4, 7, 14},
	QualityMinorAdd9: {0, 3, 7, 14},
}

var qualitySuffix = map[Quality]string{
	QualityMajor: "", QualityMinor: "m", QualityDim: "dim", QualityAug: "aug",
	QualitySus2: "sus2", QualitySus4: "sus4", QualityDom7: "7", QualityMaj7: "maj7",
	QualityMin7: "m7", QualityMinMaj7: "mMaj7", QualityHalfDim7: "m7b5", QualityDim7: "dim7",
	QualityMaj6: "6", QualityMin6: "m6", QualityDom9: "9", QualityMin9: "m9",
	QualityAdd9: "add9", QualityMinorAdd9: "madd9",
}

// degreeOffsets are major-scale semitone offsets for roman numerals I..VII
var degreeOffsets = map[string]int{
	"i": 0, "ii": 2, "iii": 4, "iv": 5, "v": 7, "vi": 9, "vii": 11,
}

// Longest numerals first: alternation is leftmost-first
var symbolPattern = regexp.MustCompile(`^([b#♭♯]?)(VII|VI|V|IV|III|II|I|vii|vi|v|iv|iii|ii|i)(.*)$`)

// Chord is a resolved chord: its symbol, root and ordered tones
type Chord struct {
	Symbol    string     `json:"symbol"`
	Root      PitchClass `json:"root"`
	Quality   Quality    `json:"quality"`
	Intervals []int      `json:"intervals"`
	Tones     ClassSet   `json:"tones"`
}

// Name renders the chord in lead-sheet form ("Am7", "G7", "Fmaj7")
func (c Chord) Name() string {
	return c.Root.String() + qualitySuffix[c.Quality]
}

// Voicing places the chord tones upward from the root in the given octave
func (c Chord) Voicing(octave int) []Pitch {
	root := Pitch{Class: c.Root, Octave: octave}
	out := make([]Pitch, 0, len(c.Intervals))
	for _, iv := range c.Intervals {
		out = append(out, root.Transpose(iv))
	}
	return out
}

// IsTone reports whether pc is one of the chord's tones
func (c Chord) IsTone(pc PitchClass) bool {
	return c.Tones.Contains(pc)
}

// ParseSymbol parses a scale-degree chord symbol ("vi", "V7", "bVII", "ii7", "IVsus2", "vii°")
// against a key root.
func ParseSymbol(symbol string, key PitchClass) (Chord, error) {
	m := symbolPattern.FindStringSubmatch(strings.TrimSpace(symbol))
	if m == nil {
		return Chord{}, fmt.Errorf("invalid chord symbol: %q", symbol)
	}
	accidental, numeral, suffix := m[1], m[2], m[3]

	offset := degreeOffsets[strings.ToLower(numeral)]
	switch accidental {
	case "b", "♭":
		offset--
	case "#", "♯":
		offset++
	}

	upper := numeral == strings.ToUpper(numeral)
	quality, err := qualityFor(suffix, upper)
	if err != nil {
		return Chord{}, fmt.Errorf("chord symbol %q: %w", symbol, err)
	}

	root := Mod12(int(key) + offset)
	intervals := qualityIntervals[quality]
	return Chord{
		Symbol:    symbol,
		Root:      root,
		Quality:   quality,
		Intervals: append([]int(nil), intervals...),
		Tones:     Transpose(root, intervals),
	}, nil
}

func qualityFor(suffix string, upper bool) (Quality, error) {
	pick := func(major, minor Quality) Quality {
		if upper {
			return major
		}
		return minor
	}

	switch suffix {
	case "":
		return pick(QualityMajor, QualityMinor), nil
	case "7":
		return pick(QualityDom7, QualityMin7), nil
	case "maj7", "M7", "Δ":
		return pick(QualityMaj7, QualityMinMaj7), nil
	case "6":
		return pick(QualityMaj6, QualityMin6), nil
	case "9":
		return pick(QualityDom9, QualityMin9), nil
	case "add9":
		return pick(QualityAdd9, QualityMinorAdd9), nil
	case "sus2":
		return QualitySus2, nil
	case "sus4", "sus":
		return QualitySus4, nil
	case "dim", "°", "o":
		return QualityDim, nil
	case "dim7", "°7", "o7":
		return QualityDim7, nil
	case "aug", "+":
		return QualityAug, nil
	case "m7b5", "ø", "ø7":
		return QualityHalfDim7, nil
	default:
		return "", fmt.Errorf("unknown chord quality %q", suffix)
	}
}
