package theory

import (
	"errors"
	"reflect"
	"testing"

	"github.com/james-see/codecomposer/pkg/errs"
)

func TestParsePitchClass(t *testing.T) {
	tests := []struct {
		input    string
		expected PitchClass
	}{
		{"C", 0},
		{"c", 0},
		{"C#", 1},
		{"Db", 1},
		{"E♭", 3},
		{"F♯", 6},
		{"B#", 0},
		{"Cb", 11},
		{"Abb", 7},
		{" g ", 7},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParsePitchClass(tt.input)
			if err != nil {
				t.Fatalf("ParsePitchClass(%q) error: %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("ParsePitchClass(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParsePitchClassInvalid(t *testing.T) {
	for _, input := range []string{"", "H", "C#x", "C###", "do"} {
		if _, err := ParsePitchClass(input); err == nil {
			t.Errorf("ParsePitchClass(%q) expected error", input)
		}
	}
}

func TestPitchMIDI(t *testing.T) {
	tests := []struct {
		pitch    Pitch
		expected int
		name     string
	}{
		{Pitch{Class: 0, Octave: 4}, 60, "c4"},
		{Pitch{Class: 9, Octave: 4}, 69, "a4"},
		{Pitch{Class: 6, Octave: 5}, 78, "f#5"},
		{Pitch{Class: 0, Octave: -1}, 0, "c-1"},
	}

	for _, tt := range tests {
		if got := tt.pitch.MIDI(); got != tt.expected {
			t.Errorf("%v.MIDI() = %d, want %d", tt.pitch, got, tt.expected)
		}
		if got := tt.pitch.String(); got != tt.name {
			t.Errorf("Pitch.String() = %q, want %q", got, tt.name)
		}
		if back := PitchFromMIDI(tt.expected); back != tt.pitch {
			t.Errorf("PitchFromMIDI(%d) = %v, want %v", tt.expected, back, tt.pitch)
		}
	}

	b3 := Pitch{Class: 11, Octave: 3}
	if got := b3.Transpose(1); got != (Pitch{Class: 0, Octave: 4}) {
		t.Errorf("b3.Transpose(1) = %v, want c4", got)
	}
}

func TestTranspose(t *testing.T) {
	got := Transpose(7, []int{0, 2, 4, 5, 7, 9, 11})
	want := ClassSet{7, 9, 11, 0, 2, 4, 6}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Transpose(G, major) = %v, want %v", got, want)
	}
}

func TestBuildScale(t *testing.T) {
	s, err := BuildScale(2, "dorian")
	if err != nil {
		t.Fatalf("BuildScale() error: %v", err)
	}
	want := ClassSet{2, 4, 5, 7, 9, 11, 0}
	if !reflect.DeepEqual(s.Classes, want) {
		t.Errorf("D dorian = %v, want %v", s.Classes, want)
	}
	if s.Degree(1) != 2 || s.Degree(8) != 2 {
		t.Errorf("Degree wrap failed: %v %v", s.Degree(1), s.Degree(8))
	}

	if _, err := BuildScale(0, "lochrian-ish"); err == nil {
		t.Error("BuildScale() expected error for unknown scale")
	}
}

func TestScalesHaveUniqueClasses(t *testing.T) {
	for _, name := range ScaleNames() {
		for root := PitchClass(0); root < 12; root++ {
			if _, err := BuildScale(root, name); err != nil {
				t.Errorf("BuildScale(%v, %q) error: %v", root, name, err)
			}
		}
	}
}

func TestBlueNotes(t *testing.T) {
	major, _ := BuildScale(0, "major")
	if got, want := major.BlueNotes(), (ClassSet{3, 6, 10}); !reflect.DeepEqual(got, want) {
		t.Errorf("C major BlueNotes() = %v, want %v", got, want)
	}

	blues, _ := BuildScale(0, "blues")
	if got := blues.BlueNotes(); len(got) != 0 {
		t.Errorf("C blues BlueNotes() = %v, want none", got)
	}
}

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		symbol string
		name   string
		tones  ClassSet
	}{
		{"I", "C", ClassSet{0, 4, 7}},
		{"vi", "Am", ClassSet{9, 0, 4}},
		{"V7", "G7", ClassSet{7, 11, 2, 5}},
		{"ii7", "Dm7", ClassSet{2, 5, 9, 0}},
		{"Imaj7", "Cmaj7", ClassSet{0, 4, 7, 11}},
		{"bVII", "A#", ClassSet{10, 2, 5}},
		{"vii°", "Bdim", ClassSet{11, 2, 5}},
		{"IVsus2", "Fsus2", ClassSet{5, 7, 0}},
		{"#iv", "F#m", ClassSet{6, 9, 1}},
		{"viim7b5", "Bm7b5", ClassSet{11, 2, 5, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			chord, err := ParseSymbol(tt.symbol, 0)
			if err != nil {
				t.Fatalf("ParseSymbol(%q) error: %v", tt.symbol, err)
			}
			if chord.Name() != tt.name {
				t.Errorf("ParseSymbol(%q).Name() = %q, want %q", tt.symbol, chord.Name(), tt.name)
			}
			if !reflect.DeepEqual(chord.Tones, tt.tones) {
				t.Errorf("ParseSymbol(%q).Tones = %v, want %v", tt.symbol, chord.Tones, tt.tones)
			}
		})
	}
}

func TestParseSymbolInvalid(t *testing.T) {
	for _, symbol := range []string{"", "X", "Iwhat", "8", "min"} {
		if _, err := ParseSymbol(symbol, 0); err == nil {
			t.Errorf("ParseSymbol(%q) expected error", symbol)
		}
	}
}

func TestChordVoicing(t *testing.T) {
	chord, _ := ParseSymbol("V7", 0)
	got := chord.Voicing(3)
	want := []Pitch{{7, 3}, {11, 3}, {2, 4}, {5, 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("V7.Voicing(3) = %v, want %v", got, want)
	}
}

func TestProgressionCycles(t *testing.T) {
	major, _ := BuildScale(0, "major")
	p, err := ParseProgression("I-vi-IV-V", major)
	if err != nil {
		t.Fatalf("ParseProgression() error: %v", err)
	}
	if p.Name != "I_vi_IV_V" {
		t.Errorf("Name = %q, want I_vi_IV_V", p.Name)
	}
	for bar, want := range []string{"I", "vi", "IV", "V", "I", "vi"} {
		if got := p.At(bar).Symbol; got != want {
			t.Errorf("At(%d) = %q, want %q", bar, got, want)
		}
	}
}

func TestRegisteredProgressionsResolve(t *testing.T) {
	for _, name := range ScaleNames() {
		def, _ := LookupScale(name)
		for root := PitchClass(0); root < 12; root++ {
			scale, err := BuildScale(root, name)
			if err != nil {
				t.Fatalf("BuildScale(%v, %q) error: %v", root, name, err)
			}
			for _, prog := range append([]string{def.DefaultProgression}, def.Progressions...) {
				if _, err := ParseProgression(prog, scale); err != nil {
					t.Errorf("%v %s: ParseProgression(%q) error: %v", root, name, prog, err)
				}
			}
		}
	}
}

func TestResolve(t *testing.T) {
	res, err := Resolve("C", "major", "I_vi_IV_V")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", res.Warnings)
	}
	if got, want := res.Progression.Symbols(), []string{"I", "vi", "IV", "V"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Symbols() = %v, want %v", got, want)
	}
}

func TestResolveDefaultProgression(t *testing.T) {
	res, err := Resolve("A", "minor", "")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none for an omitted progression", res.Warnings)
	}
	if res.Progression.Name != "i_iv_v_i" {
		t.Errorf("Progression = %q, want i_iv_v_i", res.Progression.Name)
	}
}

func TestResolveIncompatibleSubstitutes(t *testing.T) {
	res, err := Resolve("C", "dorian", "I_vi_IV_V")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want exactly one", res.Warnings)
	}
	if res.Progression.Name != "i_IV_i_bVII" {
		t.Errorf("Progression = %q, want dorian default i_IV_i_bVII", res.Progression.Name)
	}
	for _, c := range res.Progression.Chords {
		for _, tone := range c.Tones {
			if !res.Scale.Contains(tone) {
				t.Errorf("chord %s tone %v outside C dorian", c.Symbol, tone)
			}
		}
	}
}

func TestResolveGarbageProgressionSubstitutes(t *testing.T) {
	res, err := Resolve("G", "major", "I_banana_V")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if len(res.Warnings) != 1 || res.Progression.Name != "I_vi_IV_V" {
		t.Errorf("got %q with warnings %v", res.Progression.Name, res.Warnings)
	}
}

func TestResolveErrors(t *testing.T) {
	_, err := Resolve("C", "nope", "")
	if !errors.Is(err, errs.ErrConfiguration) {
		t.Errorf("unknown scale: err = %v, want ErrConfiguration", err)
	}

	_, err = Resolve("Q", "major", "")
	if !errors.Is(err, errs.ErrBadInput) {
		t.Errorf("bad key: err = %v, want ErrBadInput", err)
	}
}

func TestCompatible(t *testing.T) {
	if !Compatible("D", "major", "ii7_V7_Imaj7") {
		t.Error("ii7_V7_Imaj7 should fit D major")
	}
	if Compatible("C", "pentatonic", "V7") {
		t.Error("V7 should not fit C pentatonic")
	}
}
