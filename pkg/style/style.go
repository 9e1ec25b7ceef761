// Package style holds named bundles of generation parameters loaded from YAML
package style

import (
	"fmt"
	"math"
	"slices"

	"github.com/james-see/codecomposer/pkg/rhythm"
	"github.com/james-see/codecomposer/pkg/theory"
)

// Contour is a melodic direction applied across one bar of slots
type Contour string

const (
	ContourAscending  Contour = "ascending"
	ContourDescending Contour = "descending"
	ContourArch       Contour = "arch"
	ContourValley     Contour = "valley"
	ContourRepeat     Contour = "repeat"
)

// Contours lists every contour in a stable order
func Contours() []Contour {
	return []Contour{ContourAscending, ContourDescending, ContourArch, ContourValley, ContourRepeat}
}

// Accompaniment pattern names
const (
	PatternBlock    = "block"
	PatternDouble   = "double"
	PatternArpeggio = "arpeggio"
	PatternPendulum = "pendulum"
	PatternFollow   = "follow"
	PatternWaltz    = "waltz_oom_pah"
	PatternMinuet   = "minuet_duple"
	PatternAlberti  = "alberti"
)

// BassPatterns lists every accompaniment pattern name
func BassPatterns() []string {
	return []string{
		PatternBlock, PatternDouble, PatternArpeggio, PatternPendulum,
		PatternFollow, PatternWaltz, PatternMinuet, PatternAlberti,
	}
}

// IsBassPattern reports whether name is a known accompaniment pattern
func IsBassPattern(name string) bool {
	return slices.Contains(BassPatterns(), name)
}

// MotifWeight is one entry of a contour weight table
type MotifWeight struct {
	Contour Contour `yaml:"contour" json:"contour"`
	Weight  float64 `yaml:"weight" json:"weight"`
}

// Style is an immutable bundle of generation parameters
type Style struct {
	Name                string          `yaml:"name" json:"name"`
	Description         string          `yaml:"description" json:"description"`
	Rhythm              []rhythm.Weight `yaml:"rhythm" json:"rhythm"`
	SwingRatio          float64         `yaml:"swing_ratio" json:"swing_ratio"`
	BlueNoteProbability float64         `yaml:"blue_note_probability" json:"blue_note_probability"`
	Motifs              []MotifWeight   `yaml:"motifs" json:"motifs"`
	BassPattern         string          `yaml:"bass_pattern" json:"bass_pattern"`
	Key                 string          `yaml:"key" json:"key"`
	Scale               string          `yaml:"scale" json:"scale"`
	Progression         string          `yaml:"progression" json:"progression"`
	Progressions        []string        `yaml:"progressions" json:"progressions"`
	Tempo               int             `yaml:"tempo" json:"tempo"`
	BarsPerPhrase       int             `yaml:"bars_per_phrase" json:"bars_per_phrase"`
	Octave              int             `yaml:"octave" json:"octave"`
	Instrument          string          `yaml:"instrument,omitempty" json:"instrument,omitempty"`
}

// Octave bounds for the melody register
const (
	MinOctave = 2
	MaxOctave = 6
)

// MaxBarsPerPhrase bounds phrase length, and with it the padding added after the last token
const MaxBarsPerPhrase = 64

// Validate checks every field the generators rely on
func (s Style) Validate() error {
	fail := func(field, format string, args ...any) error {
		return &InvalidStyleConfigError{Style: s.Name, Field: field, Reason: fmt.Sprintf(format, args...)}
	}

	if s.Name == "" {
		return fail("name", "must not be empty")
	}
	if err := rhythm.ValidateWeights(s.Rhythm); err != nil {
		return fail("rhythm", "%v", err)
	}
	if err := validateMotifs(s.Motifs); err != nil {
		return fail("motifs", "%v", err)
	}
	if s.SwingRatio <= 0 || s.SwingRatio >= 1 || math.IsNaN(s.SwingRatio) {
		return fail("swing_ratio", "%v is outside (0,1)", s.SwingRatio)
	}
	if s.BlueNoteProbability < 0 || s.BlueNoteProbability > 1 || math.IsNaN(s.BlueNoteProbability) {
		return fail("blue_note_probability", "%v is outside [0,1]", s.BlueNoteProbability)
	}
	if !IsBassPattern(s.BassPattern) {
		return fail("bass_pattern", "unknown pattern %q", s.BassPattern)
	}
	root, err := theory.ParsePitchClass(s.Key)
	if err != nil {
		return fail("key", "%v", err)
	}
	scale, err := theory.BuildScale(root, s.Scale)
	if err != nil {
		return fail("scale", "unknown scale %q", s.Scale)
	}
	if s.Progression != "" {
		if _, err := theory.ParseProgression(s.Progression, scale); err != nil {
			return fail("progression", "%q does not fit %s %s: %v", s.Progression, s.Key, s.Scale, err)
		}
	}
	for _, name := range s.Progressions {
		if _, err := theory.ParseProgression(name, scale); err != nil {
			return fail("progressions", "%q does not fit %s %s: %v", name, s.Key, s.Scale, err)
		}
	}
	if s.Tempo <= 0 {
		return fail("tempo", "%d must be positive", s.Tempo)
	}
	if s.BarsPerPhrase < 1 || s.BarsPerPhrase > MaxBarsPerPhrase {
		return fail("bars_per_phrase", "%d is outside [1,%d]", s.BarsPerPhrase, MaxBarsPerPhrase)
	}
	if s.Octave < MinOctave || s.Octave > MaxOctave {
		return fail("octave", "%d is outside [%d,%d]", s.Octave, MinOctave, MaxOctave)
	}
	if s.Instrument != "" && !IsInstrument(s.Instrument) {
		return fail("instrument", "unknown instrument %q", s.Instrument)
	}
	return nil
}

func validateMotifs(motifs []MotifWeight) error {
	if len(motifs) == 0 {
		return fmt.Errorf("empty motif weight table")
	}
	sum := 0.0
	for _, m := range motifs {
		if !slices.Contains(Contours(), m.Contour) {
			return fmt.Errorf("unknown contour %q", m.Contour)
		}
		if m.Weight < 0 || math.IsNaN(m.Weight) {
			return fmt.Errorf("negative weight %v for %q", m.Weight, m.Contour)
		}
		sum += m.Weight
	}
	if math.Abs(sum-1.0) > rhythm.WeightTolerance {
		return fmt.Errorf("motif weights sum to %.3f, want 1.0", sum)
	}
	return nil
}

// MotifProbabilities returns contours and their weights as parallel slices
func (s Style) MotifProbabilities() ([]Contour, []float64) {
	contours := make([]Contour, len(s.Motifs))
	weights := make([]float64, len(s.Motifs))
	for i, m := range s.Motifs {
		contours[i] = m.Contour
		weights[i] = m.Weight
	}
	return contours, weights
}

// Clone returns a deep copy so callers cannot mutate registry data
func (s Style) Clone() Style {
	s.Rhythm = slices.Clone(s.Rhythm)
	s.Motifs = slices.Clone(s.Motifs)
	s.Progressions = slices.Clone(s.Progressions)
	return s
}
