package composer

import (
	"github.com/james-see/codecomposer/pkg/errs"
	"github.com/james-see/codecomposer/pkg/rhythm"
	"github.com/james-see/codecomposer/pkg/style"
	"github.com/james-see/codecomposer/pkg/theory"
)

// step is one entry of a fixed accompaniment template
type step struct {
	ticks   rhythm.Duration
	pitches func(v voicing) []theory.Pitch
}

// voicing is a chord laid out upward from its root in the accompaniment register
type voicing []theory.Pitch

func (v voicing) all() []theory.Pitch  { return v }
func (v voicing) root() []theory.Pitch { return v[:1] }
func (v voicing) third() []theory.Pitch {
	return v[1:2]
}
func (v voicing) fifth() []theory.Pitch {
	return v[min(2, len(v)-1):][:1]
}
func (v voicing) upper() []theory.Pitch { return v[1:] }

func (v voicing) cycle(i int) []theory.Pitch {
	return v[i%len(v) : i%len(v)+1]
}

func repeatSteps(n int, ticks rhythm.Duration, pick func(i int) func(voicing) []theory.Pitch) []step {
	out := make([]step, n)
	for i := range out {
		out[i] = step{ticks: ticks, pitches: pick(i)}
	}
	return out
}

func cycleAt(i int) func(voicing) []theory.Pitch {
	return func(v voicing) []theory.Pitch { return v.cycle(i) }
}

// templates are the fixed-rhythm patterns; follow is built from the melody instead
var templates = map[string][]step{
	style.PatternBlock: {
		{rhythm.Bar, voicing.all},
	},
	style.PatternDouble: {
		{rhythm.Bar / 2, voicing.all},
		{rhythm.Bar / 2, voicing.all},
	},
	style.PatternArpeggio: repeatSteps(8, rhythm.Bar/8, cycleAt),
	style.PatternPendulum: {
		{rhythm.Bar / 2, voicing.root},
		{rhythm.Bar / 2, voicing.fifth},
	},
	style.PatternWaltz: {
		{rhythm.Bar / 3, voicing.root},
		{rhythm.Bar / 3, voicing.upper},
		{rhythm.Bar / 3, voicing.upper},
	},
	style.PatternMinuet: {
		{rhythm.Bar / 2, voicing.root},
		{rhythm.Bar / 4, voicing.upper},
		{rhythm.Bar / 4, voicing.upper},
	},
	style.PatternAlberti: repeatSteps(8, rhythm.Bar/8, func(i int) func(voicing) []theory.Pitch {
		return []func(voicing) []theory.Pitch{voicing.root, voicing.fifth, voicing.third, voicing.fifth}[i%4]
	}),
}

// accompanimentBar builds one bar of the accompaniment voice from the active chord
func accompanimentBar(pattern string, chord theory.Chord, octave int, melody []Slot, bar int) ([]Slot, error) {
	v := voicing(chord.Voicing(octave))

	var steps []step
	if pattern == style.PatternFollow {
		steps = make([]step, len(melody))
		for i, s := range melody {
			steps[i] = step{ticks: s.Duration, pitches: cycleAt(i)}
		}
	} else {
		var ok bool
		if steps, ok = templates[pattern]; !ok {
			return nil, &errs.ConfigurationError{Kind: "bass_pattern", Name: pattern, Reason: "no template"}
		}
	}

	slots := make([]Slot, len(steps))
	var offset rhythm.Duration
	for i, st := range steps {
		slots[i] = Slot{
			Offset:   offset,
			Duration: st.ticks,
			Pitches:  append([]theory.Pitch(nil), st.pitches(v)...),
			Velocity: DefaultVelocity,
		}
		offset += st.ticks
	}
	if offset != rhythm.Bar {
		return nil, errs.NewInternal("accompaniment", bar, "pattern %q fills %d ticks, want %d", pattern, offset, rhythm.Bar)
	}
	return slots, nil
}
