package composer

import (
	"testing"

	"github.com/james-see/codecomposer/pkg/rhythm"
	"github.com/james-see/codecomposer/pkg/style"
	"github.com/james-see/codecomposer/pkg/theory"
	"github.com/james-see/codecomposer/pkg/token"
)

func TestContourOffset(t *testing.T) {
	tests := []struct {
		contour  style.Contour
		expected []int
	}{
		{style.ContourAscending, []int{0, 1, 2, 3, 4}},
		{style.ContourDescending, []int{0, -1, -2, -3, -4}},
		{style.ContourArch, []int{0, 1, 2, 1, 0}},
		{style.ContourValley, []int{0, -1, -2, -1, 0}},
		{style.ContourRepeat, []int{0, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(string(tt.contour), func(t *testing.T) {
			for i, want := range tt.expected {
				if got := contourOffset(tt.contour, i, len(tt.expected)); got != want {
					t.Errorf("contourOffset(%s, %d, 5) = %d, want %d", tt.contour, i, got, want)
				}
			}
		})
	}
}

func TestPitchPool(t *testing.T) {
	scale, _ := theory.BuildScale(0, "major")
	chord, _ := theory.ParseSymbol("V7", 0)

	plain := pitchPool(chord, scale, 0, 4, rhythm.NewSource(1))
	if len(plain) != 7 {
		t.Fatalf("pool without blue notes has %d pitches, want 7", len(plain))
	}
	for i := 1; i < len(plain); i++ {
		if plain[i-1].MIDI() >= plain[i].MIDI() {
			t.Errorf("pool not ascending at %d: %v", i, plain)
		}
	}

	blue := pitchPool(chord, scale, 1, 4, rhythm.NewSource(1))
	if len(blue) != 10 {
		t.Errorf("pool with certain blue notes has %d pitches, want 10", len(blue))
	}
}

func TestMelodyBarResolvesToChordTone(t *testing.T) {
	scale, _ := theory.BuildScale(0, "major")
	chord, _ := theory.ParseSymbol("IV", 0)
	pool := pitchPool(chord, scale, 0, 4, rhythm.NewSource(1))

	durations := []rhythm.Duration{480, 480, 480, 480}
	// pool[1] is D: C is two semitones away, F is three
	slots, next := melodyBar(durations, pool, chord, motif{contour: style.ContourAscending, cursor: 1})

	if got := slots[0].Pitches[0]; got != (theory.Pitch{Class: 0, Octave: 4}) {
		t.Errorf("first slot = %v, want c4", got)
	}
	if slots[0].Velocity != AccentVelocity || slots[1].Velocity != DefaultVelocity {
		t.Errorf("velocities = %d, %d", slots[0].Velocity, slots[1].Velocity)
	}
	if slots[3].Offset != 1440 {
		t.Errorf("last offset = %d, want 1440", slots[3].Offset)
	}
	if next.cursor != 3 || next.contour != style.ContourAscending {
		t.Errorf("next motif = %+v, want cursor 3 ascending", next)
	}
}

func TestTokenSeedStable(t *testing.T) {
	a := tokenSeed(token.New(token.KindKeyword, "return"))
	b := tokenSeed(token.New(token.KindKeyword, "return"))
	c := tokenSeed(token.New(token.KindIdentifier, "return"))
	if a != b {
		t.Errorf("tokenSeed not stable: %d vs %d", a, b)
	}
	if a == c {
		t.Error("tokenSeed ignores the token kind")
	}
	if a < 0 {
		t.Errorf("tokenSeed = %d, want non-negative", a)
	}
}

func TestAccompanimentPatterns(t *testing.T) {
	chord, _ := theory.ParseSymbol("I", 0)
	melody := []Slot{{Duration: 720}, {Duration: 720}, {Duration: 480}}

	tests := []struct {
		pattern string
		slots   int
		first   int // pitches in first slot
	}{
		{style.PatternBlock, 1, 3},
		{style.PatternDouble, 2, 3},
		{style.PatternArpeggio, 8, 1},
		{style.PatternPendulum, 2, 1},
		{style.PatternFollow, 3, 1},
		{style.PatternWaltz, 3, 1},
		{style.PatternMinuet, 3, 1},
		{style.PatternAlberti, 8, 1},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			slots, err := accompanimentBar(tt.pattern, chord, 3, melody, 0)
			if err != nil {
				t.Fatalf("accompanimentBar() error: %v", err)
			}
			if len(slots) != tt.slots {
				t.Fatalf("got %d slots, want %d", len(slots), tt.slots)
			}
			if len(slots[0].Pitches) != tt.first {
				t.Errorf("first slot has %d pitches, want %d", len(slots[0].Pitches), tt.first)
			}
			var total rhythm.Duration
			for _, s := range slots {
				total += s.Duration
				if s.Velocity != DefaultVelocity {
					t.Errorf("velocity = %d, want %d", s.Velocity, DefaultVelocity)
				}
			}
			if total != rhythm.Bar {
				t.Errorf("pattern fills %d ticks, want %d", total, rhythm.Bar)
			}
		})
	}

	if _, err := accompanimentBar("stride", chord, 3, melody, 0); err == nil {
		t.Error("accompanimentBar() expected error for unknown pattern")
	}
}

func TestFollowUsesMelodyRhythmAndChordTones(t *testing.T) {
	chord, _ := theory.ParseSymbol("V7", 0)
	melody := []Slot{{Duration: 240}, {Duration: 240}, {Duration: 480}, {Duration: 960}}

	slots, err := accompanimentBar(style.PatternFollow, chord, 3, melody, 0)
	if err != nil {
		t.Fatalf("accompanimentBar() error: %v", err)
	}
	for i, s := range slots {
		if s.Duration != melody[i].Duration {
			t.Errorf("slot %d lasts %d, want the melody's %d", i, s.Duration, melody[i].Duration)
		}
		for _, p := range s.Pitches {
			if !chord.IsTone(p.Class) {
				t.Errorf("slot %d plays %s, which is not in %s", i, p, chord.Name())
			}
		}
	}
}

func TestPendulumAlternatesRootAndFifth(t *testing.T) {
	chord, _ := theory.ParseSymbol("V", 0)
	slots, _ := accompanimentBar(style.PatternPendulum, chord, 3, nil, 0)
	if slots[0].Pitches[0] != (theory.Pitch{Class: 7, Octave: 3}) || slots[1].Pitches[0] != (theory.Pitch{Class: 2, Octave: 4}) {
		t.Errorf("pendulum = %v", slots)
	}
}
