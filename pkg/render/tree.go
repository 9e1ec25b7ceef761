package render

import (
	"fmt"
	"strings"

	"github.com/james-see/codecomposer/pkg/composer"
)

// Tree renders a human-readable outline: phrases, then bars with their chord and both voices
func Tree(c *composer.Composition) string {
	var b strings.Builder
	m := c.Metadata
	fmt.Fprintf(&b, "Composition (%s) %s %s, %s @ %d bpm, seed %d\n",
		m.Style, m.Key, m.Scale, m.Progression, m.Tempo, m.Seed)
	fmt.Fprintf(&b, "  chords: %s\n", strings.Join(m.Chords, " "))
	fmt.Fprintf(&b, "  bass: %s  swing: %.3f  tokens: %d  bars: %d\n",
		m.BassPattern, m.SwingRatio, m.Tokens, len(c.Bars))
	for _, w := range m.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", w)
	}

	phrase := -1
	for _, bar := range c.Bars {
		if bar.Phrase != phrase {
			phrase = bar.Phrase
			fmt.Fprintf(&b, "  Phrase %d\n", phrase)
		}

		label := "PAD"
		if bar.Token != nil {
			label = bar.Token.String()
		}
		fmt.Fprintf(&b, "    Bar %d [%s] %s (%s) %s\n",
			bar.Index, bar.Chord.Symbol, bar.Chord.Name(), bar.Contour, label)
		fmt.Fprintf(&b, "      V1: %s\n", slotSummary(bar.Melody))
		fmt.Fprintf(&b, "      V2: %s\n", slotSummary(bar.Accompaniment))
	}
	return b.String()
}

func slotSummary(slots []composer.Slot) string {
	parts := make([]string, len(slots))
	for i, s := range slots {
		names := make([]string, len(s.Pitches))
		for j, p := range s.Pitches {
			names[j] = p.String()
		}
		parts[i] = fmt.Sprintf("%s:%d", strings.Join(names, "/"), s.Duration)
	}
	return strings.Join(parts, " ")
}
