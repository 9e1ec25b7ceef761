package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/james-see/codecomposer/pkg/composer"
	"github.com/james-see/codecomposer/pkg/rhythm"
	"github.com/james-see/codecomposer/pkg/style"
	"github.com/james-see/codecomposer/pkg/theory"
)

// voiceLabels maps voice names to Alda voice markers
var voiceLabels = map[string]string{
	composer.VoiceMelody:        "V1",
	composer.VoiceAccompaniment: "V2",
}

// Alda renders the composition as an Alda score with one line per bar
func Alda(c *composer.Composition, voices Voices) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s in %s %s, %s, seed %d\n",
		c.Metadata.Style, c.Metadata.Key, c.Metadata.Scale, c.Metadata.Progression, c.Metadata.Seed)
	fmt.Fprintf(&b, "%s:\n  (tempo %d)\n", instrument(c), c.Metadata.Tempo)

	for _, v := range voices.Select(c) {
		fmt.Fprintf(&b, "  %s:\n", voiceLabels[v.Name])
		w := &aldaWriter{octave: -1, volume: -1}
		for _, bar := range c.Bars {
			slots := bar.Melody
			if v.Name == composer.VoiceAccompaniment {
				slots = bar.Accompaniment
			}
			b.WriteString("    ")
			b.WriteString(w.bar(slots))
			b.WriteString(" |\n")
		}
	}
	return b.String()
}

// instrument returns the composition's Alda part name
func instrument(c *composer.Composition) string {
	if c.Metadata.Instrument == "" {
		return style.DefaultInstrument
	}
	return c.Metadata.Instrument
}

// aldaWriter tracks octave and volume so attributes are only emitted on change
type aldaWriter struct {
	octave int
	volume int
}

func (w *aldaWriter) bar(slots []composer.Slot) string {
	parts := make([]string, 0, len(slots))
	for _, s := range slots {
		var b strings.Builder
		if s.Velocity != w.volume {
			fmt.Fprintf(&b, "(vol %d) ", s.Velocity)
			w.volume = s.Velocity
		}
		length := aldaLength(s.Duration)
		if len(s.Pitches) == 0 {
			b.WriteString("r" + length)
			parts = append(parts, b.String())
			continue
		}
		notes := make([]string, len(s.Pitches))
		for i, p := range s.Pitches {
			notes[i] = w.move(p.Octave) + aldaNote(p.Class) + length
		}
		b.WriteString(strings.Join(notes, "/"))
		parts = append(parts, b.String())
	}
	return strings.Join(parts, " ")
}

// move returns the octave marker that reaches target from the current octave
func (w *aldaWriter) move(target int) string {
	if w.octave < 0 {
		w.octave = target
		return fmt.Sprintf("o%d ", target)
	}
	var marker string
	switch {
	case target > w.octave:
		marker = strings.Repeat(">", target-w.octave)
	case target < w.octave:
		marker = strings.Repeat("<", w.octave-target)
	}
	w.octave = target
	return marker
}

// aldaNote spells a pitch class with Alda accidentals ("c+", "f+")
func aldaNote(pc theory.PitchClass) string {
	return strings.ReplaceAll(pc.Name(), "#", "+")
}

// lengthTable holds every tick count expressible as a single Alda note length, longest first
var lengthTable = func() []rhythm.Duration {
	var out []rhythm.Duration
	for d := rhythm.Bar; d >= 1; d-- {
		if rhythm.Bar%d == 0 {
			out = append(out, d)
		}
	}
	return out
}()

// aldaLength writes ticks as an Alda note length: a whole-note divisor ("4"), a dotted
// divisor ("4."), or a tie of divisors ("4~16").
func aldaLength(d rhythm.Duration) string {
	if d <= 0 {
		return "1"
	}
	if rhythm.Bar%d == 0 {
		return strconv.Itoa(int(rhythm.Bar / d))
	}
	if base := d * 2 / 3; d*2%3 == 0 && rhythm.Bar%base == 0 {
		return strconv.Itoa(int(rhythm.Bar/base)) + "."
	}

	var parts []string
	for rem := d; rem > 0; {
		i := sort.Search(len(lengthTable), func(i int) bool { return lengthTable[i] <= rem })
		t := lengthTable[i]
		parts = append(parts, strconv.Itoa(int(rhythm.Bar/t)))
		rem -= t
	}
	return strings.Join(parts, "~")
}
