package render

import (
	"fmt"
	"strings"

	"github.com/james-see/codecomposer/pkg/style"
	"github.com/james-see/codecomposer/pkg/theory"
)

// previewOctave is where scale and progression previews start
const previewOctave = 4

// ScalePreview renders the scale ascending one octave and back down as Alda eighth notes
func ScalePreview(key, scaleName string, tempo int) (string, error) {
	res, err := theory.Resolve(key, scaleName, "")
	if err != nil {
		return "", err
	}

	root := theory.Pitch{Class: res.Key, Octave: previewOctave}
	up := make([]theory.Pitch, 0, len(res.Scale.Intervals)+1)
	for _, iv := range res.Scale.Intervals {
		up = append(up, root.Transpose(iv))
	}
	up = append(up, root.Transpose(12))

	w := &aldaWriter{octave: -1, volume: -1}
	notes := make([]string, 0, len(up)*2)
	for i, p := range up {
		n := w.move(p.Octave) + aldaNote(p.Class)
		if i == 0 {
			n += "8"
		}
		notes = append(notes, n)
	}
	for i := len(up) - 2; i >= 0; i-- {
		notes = append(notes, w.move(up[i].Octave)+aldaNote(up[i].Class))
	}

	return fmt.Sprintf("# %s %s\n%s:\n  (tempo %d)\n  %s\n",
		res.Key, res.Scale.Name, style.DefaultInstrument, previewTempo(tempo), strings.Join(notes, " ")), nil
}

// Preview is an Alda rendering of a resolved progression
type Preview struct {
	Alda     string   `json:"alda"`
	Chords   []string `json:"chords"`
	Warnings []string `json:"warnings,omitempty"`
}

// ProgressionPreview renders each chord of a progression as a half-note block chord
func ProgressionPreview(key, scaleName, progression string, tempo int) (*Preview, error) {
	res, err := theory.Resolve(key, scaleName, progression)
	if err != nil {
		return nil, err
	}

	w := &aldaWriter{octave: -1, volume: -1}
	chords := make([]string, 0, res.Progression.Len())
	names := make([]string, 0, res.Progression.Len())
	for _, chord := range res.Progression.Chords {
		voicing := chord.Voicing(previewOctave)
		tones := make([]string, len(voicing))
		for i, p := range voicing {
			tones[i] = w.move(p.Octave) + aldaNote(p.Class) + "2"
		}
		chords = append(chords, strings.Join(tones, "/"))
		names = append(names, fmt.Sprintf("%s (%s)", chord.Symbol, chord.Name()))
	}

	return &Preview{
		Alda: fmt.Sprintf("# %s %s %s\n%s:\n  (tempo %d)\n  %s\n",
			res.Key, res.Scale.Name, res.Progression.Name, style.DefaultInstrument, previewTempo(tempo), strings.Join(chords, " | ")),
		Chords:   names,
		Warnings: res.Warnings,
	}, nil
}

func previewTempo(tempo int) int {
	if tempo <= 0 {
		return 120
	}
	return tempo
}
