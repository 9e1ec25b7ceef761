package composer

import (
	"fmt"

	"github.com/james-see/codecomposer/pkg/errs"
	"github.com/james-see/codecomposer/pkg/style"
	"github.com/james-see/codecomposer/pkg/theory"
)

// Options are caller overrides; zero values fall back to the style's defaults
type Options struct {
	Style         string `json:"style"`
	Key           string `json:"key,omitempty"`
	Scale         string `json:"scale,omitempty"`
	Progression   string `json:"progression,omitempty"`
	BassPattern   string `json:"bass_pattern,omitempty"`
	Tempo         int    `json:"tempo,omitempty"`
	BarsPerPhrase int    `json:"bars_per_phrase,omitempty"`
	BarsPerToken  int    `json:"bars_per_token,omitempty"`
	Octave        int    `json:"octave,omitempty"`
	Instrument    string `json:"instrument,omitempty"`
	Seed          int64  `json:"seed"`
	Parallel      bool   `json:"parallel,omitempty"`
}

// DefaultStyle is used when Options.Style is empty
const DefaultStyle = "default"

// validate rejects option values no style could make sense of
func (o Options) validate() error {
	if o.BarsPerToken != 0 && o.BarsPerToken != 1 && o.BarsPerToken != 2 {
		return &errs.InputError{Field: "bars_per_token", Value: o.BarsPerToken, Reason: "must be 1 or 2"}
	}
	if o.Tempo < 0 {
		return &errs.InputError{Field: "tempo", Value: o.Tempo, Reason: "must be positive"}
	}
	if o.BarsPerPhrase < 0 || o.BarsPerPhrase > style.MaxBarsPerPhrase {
		return &errs.InputError{Field: "bars_per_phrase", Value: o.BarsPerPhrase,
			Reason: fmt.Sprintf("must be within [1,%d]", style.MaxBarsPerPhrase)}
	}
	if o.Octave != 0 && (o.Octave < style.MinOctave || o.Octave > style.MaxOctave) {
		return &errs.InputError{Field: "octave", Value: o.Octave,
			Reason: fmt.Sprintf("must be within [%d,%d]", style.MinOctave, style.MaxOctave)}
	}
	return nil
}

// settings are the fully resolved parameters for one generation run
type settings struct {
	style         style.Style
	harmony       theory.Resolution
	key           string
	bassPattern   string
	tempo         int
	barsPerPhrase int
	barsPerToken  int
	octave        int
	instrument    string
	seed          int64
	parallel      bool
}

func or[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}
	return v
}

// resolve merges options over the style and resolves the harmony
func resolve(reg *style.Registry, o Options) (settings, error) {
	st, err := reg.Resolve(or(o.Style, DefaultStyle))
	if err != nil {
		return settings{}, err
	}
	if err := o.validate(); err != nil {
		return settings{}, err
	}

	pattern := or(o.BassPattern, st.BassPattern)
	if !style.IsBassPattern(pattern) {
		return settings{}, &errs.ConfigurationError{
			Kind:   "bass_pattern",
			Name:   pattern,
			Reason: fmt.Sprintf("not registered (known: %v)", style.BassPatterns()),
		}
	}

	instrument := or(o.Instrument, or(st.Instrument, style.DefaultInstrument))
	if !style.IsInstrument(instrument) {
		return settings{}, &errs.ConfigurationError{
			Kind:   "instrument",
			Name:   instrument,
			Reason: "not a known instrument",
		}
	}

	scale := or(o.Scale, st.Scale)
	progression := o.Progression
	if progression == "" && scale == st.Scale {
		progression = st.Progression
	}

	key := or(o.Key, st.Key)
	harmony, err := theory.Resolve(key, scale, progression)
	if err != nil {
		return settings{}, err
	}

	return settings{
		style:         st,
		harmony:       harmony,
		key:           harmony.Key.String(),
		bassPattern:   pattern,
		tempo:         or(o.Tempo, st.Tempo),
		barsPerPhrase: or(o.BarsPerPhrase, st.BarsPerPhrase),
		barsPerToken:  or(o.BarsPerToken, 1),
		octave:        or(o.Octave, st.Octave),
		instrument:    instrument,
		seed:          o.Seed,
		parallel:      o.Parallel,
	}, nil
}

// metadata describes the settings for the finished composition
func (s settings) metadata(tokens, bars int) Metadata {
	classes := make([]string, len(s.harmony.Scale.Classes))
	for i, pc := range s.harmony.Scale.Classes {
		classes[i] = pc.String()
	}
	chords := make([]string, s.harmony.Progression.Len())
	for i, c := range s.harmony.Progression.Chords {
		chords[i] = c.Name()
	}

	return Metadata{
		Key:           s.key,
		Scale:         s.harmony.Scale.Name,
		ScaleClasses:  classes,
		Progression:   s.harmony.Progression.Name,
		Chords:        chords,
		Style:         s.style.Name,
		BassPattern:   s.bassPattern,
		Tempo:         s.tempo,
		Seed:          s.seed,
		Octave:        s.octave,
		Instrument:    s.instrument,
		SwingRatio:    s.style.SwingRatio,
		BarsPerPhrase: s.barsPerPhrase,
		BarsPerToken:  s.barsPerToken,
		Tokens:        tokens,
		Phrases:       bars / s.barsPerPhrase,
		Warnings:      append([]string(nil), s.harmony.Warnings...),
	}
}
