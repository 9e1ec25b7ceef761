package style

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/codecomposer/pkg/errs"
	"github.com/james-see/codecomposer/pkg/theory"
)

func TestDefaultRegistry(t *testing.T) {
	reg := Default()
	assert.Equal(t, []string{"blues", "chinese", "default", "jazz", "minuet", "waltz"}, reg.Names())

	jazz, err := reg.Resolve("jazz")
	require.NoError(t, err)
	assert.InDelta(t, 0.667, jazz.SwingRatio, 1e-9)
	assert.Equal(t, "ii7_V7_Imaj7", jazz.Progression)
	assert.Equal(t, PatternArpeggio, jazz.BassPattern)
}

func TestBuiltinProgressionsResolve(t *testing.T) {
	for _, s := range Default().Styles() {
		for _, prog := range append([]string{s.Progression}, s.Progressions...) {
			if !theory.Compatible(s.Key, s.Scale, prog) {
				t.Errorf("style %q: progression %q does not fit %s %s", s.Name, prog, s.Key, s.Scale)
			}
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := Default().Resolve("polka")

	var unknown *UnknownStyleError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "polka", unknown.Name)
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}

func TestResolveReturnsCopy(t *testing.T) {
	reg := Default()
	a, err := reg.Resolve("default")
	require.NoError(t, err)
	a.Rhythm[0].Weight = 99

	b, err := reg.Resolve("default")
	require.NoError(t, err)
	assert.NotEqual(t, 99.0, b.Rhythm[0].Weight)
}

const validStyle = `
styles:
  - name: march
    rhythm:
      - {class: quarter, weight: 0.6}
      - {class: half, weight: 0.4}
    swing_ratio: 0.5
    blue_note_probability: 0
    motifs:
      - {contour: ascending, weight: 1}
    bass_pattern: double
    key: Bb
    scale: major
    progression: I_IV_V_I
    tempo: 112
    bars_per_phrase: 4
    octave: 4
`

func TestLoad(t *testing.T) {
	reg, err := Load(strings.NewReader(validStyle))
	require.NoError(t, err)

	march, err := reg.Resolve("march")
	require.NoError(t, err)
	assert.Equal(t, 112, march.Tempo)
	assert.Len(t, march.Rhythm, 2)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
		field   string
	}{
		{"weights do not sum", [2]string{"weight: 0.4}", "weight: 0.2}"}, "rhythm"},
		{"swing out of range", [2]string{"swing_ratio: 0.5", "swing_ratio: 1.5"}, "swing_ratio"},
		{"blue probability out of range", [2]string{"blue_note_probability: 0", "blue_note_probability: -0.1"}, "blue_note_probability"},
		{"unknown bass pattern", [2]string{"bass_pattern: double", "bass_pattern: stride"}, "bass_pattern"},
		{"unknown scale", [2]string{"scale: major", "scale: klingon"}, "scale"},
		{"zero tempo", [2]string{"tempo: 112", "tempo: 0"}, "tempo"},
		{"octave too high", [2]string{"octave: 4", "octave: 9"}, "octave"},
		{"unknown contour", [2]string{"contour: ascending", "contour: zigzag"}, "motifs"},
		{"progression outside scale", [2]string{"progression: I_IV_V_I", "progression: I_bIII_bVII"}, "progression"},
		{"unparsable progression", [2]string{"progression: I_IV_V_I", "progression: I_XI"}, "progression"},
		{"listed progression outside scale", [2]string{"tempo: 112", "progressions: [I_IV_V_I, i_bVI]\n    tempo: 112"}, "progressions"},
		{"phrase too long", [2]string{"bars_per_phrase: 4", "bars_per_phrase: 65"}, "bars_per_phrase"},
		{"unknown instrument", [2]string{"octave: 4", "octave: 4\n    instrument: kazoo"}, "instrument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := strings.Replace(validStyle, tt.replace[0], tt.replace[1], 1)
			_, err := Load(strings.NewReader(doc))

			var invalid *InvalidStyleConfigError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
			assert.True(t, errors.Is(err, errs.ErrConfiguration))
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	doc := strings.Replace(validStyle, "tempo: 112", "tempo: 112\n    time_signature: 3/4", 1)
	_, err := Load(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestLoadInstrument(t *testing.T) {
	doc := strings.Replace(validStyle, "octave: 4", "octave: 4\n    instrument: violin", 1)
	reg, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	march, err := reg.Resolve("march")
	require.NoError(t, err)
	assert.Equal(t, "violin", march.Instrument)
	assert.Equal(t, uint8(40), InstrumentProgram(march.Instrument))
}

func TestInstrumentProgram(t *testing.T) {
	assert.Equal(t, uint8(0), InstrumentProgram("piano"))
	assert.Equal(t, uint8(73), InstrumentProgram("flute"))
	assert.Equal(t, uint8(0), InstrumentProgram("kazoo"), "unknown names fall back to the default")
	assert.True(t, IsInstrument(DefaultInstrument))
	assert.Contains(t, Instruments(), "violin")
}

func TestBuiltinInstruments(t *testing.T) {
	for _, s := range Default().Styles() {
		assert.True(t, IsInstrument(s.Instrument), "style %q has instrument %q", s.Name, s.Instrument)
	}
}

func TestLoadRejectsDuplicates(t *testing.T) {
	body := strings.TrimPrefix(validStyle, "\nstyles:\n")
	_, err := Load(strings.NewReader("styles:\n" + body + body))
	var invalid *InvalidStyleConfigError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "name", invalid.Field)
}

func TestWithOverrides(t *testing.T) {
	reg, err := WithOverrides("")
	require.NoError(t, err)
	assert.Len(t, reg.Names(), 6)

	path := filepath.Join(t.TempDir(), "styles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validStyle), 0644))

	reg, err = WithOverrides(path)
	require.NoError(t, err)
	assert.Contains(t, reg.Names(), "march")
	assert.Contains(t, reg.Names(), "jazz")

	_, err = WithOverrides(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
