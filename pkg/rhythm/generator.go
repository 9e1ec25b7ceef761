package rhythm

import (
	"fmt"
	"math"

	"github.com/james-see/codecomposer/pkg/errs"
)

// StraightSwing is the ratio at which eighths are played evenly
const StraightSwing = 0.5

// note is a sampled duration and the class that produced it
type note struct {
	ticks Duration
	class Class
	group int // triplet group id, 0 when not in a group
}

// GenerateBarDurations samples durations from weights until exactly one bar is filled.
// A sample that would overshoot is clipped to the remaining capacity.
// A swing ratio other than 0.5 splits beat-aligned eighth pairs and triplet groups unevenly.
func GenerateBarDurations(weights []Weight, swingRatio float64, rng *Source) ([]Duration, error) {
	if rng == nil {
		return nil, fmt.Errorf("nil random source")
	}
	if swingRatio <= 0 || swingRatio >= 1 || math.IsNaN(swingRatio) {
		return nil, &errs.ConfigurationError{Kind: "rhythm", Name: "swing_ratio",
			Reason: fmt.Sprintf("%v is outside (0,1)", swingRatio)}
	}

	probs := make([]float64, len(weights))
	for i, w := range weights {
		if _, ok := classTicks[w.Class]; !ok {
			return nil, &errs.ConfigurationError{Kind: "rhythm", Name: string(w.Class),
				Reason: "unknown duration class"}
		}
		probs[i] = w.Weight
	}

	notes := sample(weights, probs, rng)
	if notes == nil {
		return nil, &errs.ConfigurationError{Kind: "rhythm", Name: "weights",
			Reason: "no duration class has a positive weight"}
	}

	if math.Abs(swingRatio-StraightSwing) > 1e-9 {
		notes = swing(notes, swingRatio)
	}

	out := make([]Duration, len(notes))
	var sum Duration
	for i, n := range notes {
		if n.ticks <= 0 {
			return nil, errs.NewInternal("rhythm", 0, "non-positive duration %d at slot %d", n.ticks, i)
		}
		out[i] = n.ticks
		sum += n.ticks
	}
	if sum != Bar {
		return nil, errs.NewInternal("rhythm", 0, "durations sum to %d ticks, want %d", sum, Bar)
	}
	return out, nil
}

func sample(weights []Weight, probs []float64, rng *Source) []note {
	var notes []note
	group := 0
	for remaining := Bar; remaining > 0; {
		idx := rng.Choose(probs)
		if idx < 0 {
			return nil
		}
		class := weights[idx].Class
		ticks := classTicks[class]

		switch {
		case ticks > remaining:
			notes = append(notes, note{ticks: remaining, class: class})
			remaining = 0
		case class == ClassTriplet:
			group++
			for range 3 {
				notes = append(notes, note{ticks: TripletTicks, class: class, group: group})
			}
			remaining -= ticks
		default:
			notes = append(notes, note{ticks: ticks, class: class})
			remaining -= ticks
		}
	}
	return notes
}

// swing rewrites beat-aligned eighth pairs and whole triplet groups as long-short pairs
func swing(notes []note, ratio float64) []note {
	long := Duration(math.Round(float64(PPQ) * ratio))
	long = min(max(long, 1), PPQ-1)
	short := PPQ - long

	out := make([]note, 0, len(notes))
	var offset Duration
	for i := 0; i < len(notes); {
		n := notes[i]

		if n.class == ClassEighth && n.ticks == PPQ/2 && offset%PPQ == 0 &&
			i+1 < len(notes) && notes[i+1].class == ClassEighth && notes[i+1].ticks == PPQ/2 {
			out = append(out, note{ticks: long, class: n.class}, note{ticks: short, class: n.class})
			offset += PPQ
			i += 2
			continue
		}

		if n.group != 0 && i+2 < len(notes) && notes[i+1].group == n.group && notes[i+2].group == n.group {
			out = append(out, note{ticks: long, class: n.class}, note{ticks: short, class: n.class})
			offset += PPQ
			i += 3
			continue
		}

		out = append(out, n)
		offset += n.ticks
		i++
	}
	return out
}
