// Package composer turns a token stream into a two-voice, bar-exact composition
package composer

import (
	"github.com/james-see/codecomposer/pkg/rhythm"
	"github.com/james-see/codecomposer/pkg/style"
	"github.com/james-see/codecomposer/pkg/theory"
	"github.com/james-see/codecomposer/pkg/token"
)

// Velocities
const (
	AccentVelocity  = 95
	DefaultVelocity = 80
)

// Voice names
const (
	VoiceMelody        = "melody"
	VoiceAccompaniment = "accompaniment"
)

// Slot is a span of a bar in one voice; every pitch in it sounds together
type Slot struct {
	Offset   rhythm.Duration `json:"offset"`
	Duration rhythm.Duration `json:"duration"`
	Pitches  []theory.Pitch  `json:"pitches"`
	Velocity int             `json:"velocity"`
}

// Bar is one whole-note measure holding both voices over a single chord
type Bar struct {
	Index         int           `json:"index"`
	Phrase        int           `json:"phrase"`
	TokenIndex    int           `json:"token_index"` // -1 for phrase padding
	Token         *token.Token  `json:"token,omitempty"`
	Chord         theory.Chord  `json:"chord"`
	Contour       style.Contour `json:"contour"`
	Melody        []Slot        `json:"melody"`
	Accompaniment []Slot        `json:"accompaniment"`
}

// Padding reports whether the bar only completes the last phrase
func (b Bar) Padding() bool {
	return b.TokenIndex < 0
}

// Start returns the bar's absolute tick position
func (b Bar) Start() rhythm.Duration {
	return rhythm.Duration(b.Index) * rhythm.Bar
}

// Note is a single pitched event at an absolute tick position
type Note struct {
	Pitch    theory.Pitch    `json:"pitch"`
	Start    rhythm.Duration `json:"start"`
	Duration rhythm.Duration `json:"duration"`
	Velocity int             `json:"velocity"`
	Bar      int             `json:"bar"`
}

// Voice is the ordered note list of one part
type Voice struct {
	Name  string `json:"name"`
	Notes []Note `json:"notes"`
}

// Metadata records the resolved settings a composition was built with
type Metadata struct {
	Key           string   `json:"key"`
	Scale         string   `json:"scale"`
	ScaleClasses  []string `json:"scale_classes"`
	Progression   string   `json:"progression"`
	Chords        []string `json:"chords"`
	Style         string   `json:"style"`
	BassPattern   string   `json:"bass_pattern"`
	Tempo         int      `json:"tempo"`
	Seed          int64    `json:"seed"`
	Octave        int      `json:"octave"`
	Instrument    string   `json:"instrument"`
	SwingRatio    float64  `json:"swing_ratio"`
	BarsPerPhrase int      `json:"bars_per_phrase"`
	BarsPerToken  int      `json:"bars_per_token"`
	Tokens        int      `json:"tokens"`
	Phrases       int      `json:"phrases"`
	Warnings      []string `json:"warnings,omitempty"`
}

// Composition is the finished score; it is never modified after Compose returns
type Composition struct {
	Metadata      Metadata `json:"metadata"`
	Bars          []Bar    `json:"bars"`
	Melody        Voice    `json:"melody"`
	Accompaniment Voice    `json:"accompaniment"`
}

// Length returns the total duration in ticks
func (c *Composition) Length() rhythm.Duration {
	return rhythm.Duration(len(c.Bars)) * rhythm.Bar
}

// Voices returns the melody and accompaniment in score order
func (c *Composition) Voices() []Voice {
	return []Voice{c.Melody, c.Accompaniment}
}

// Empty reports whether the composition has no bars
func (c *Composition) Empty() bool {
	return len(c.Bars) == 0
}
