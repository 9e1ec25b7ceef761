// Package rhythm samples bar-exact note durations from weighted duration classes
package rhythm

import (
	"fmt"
	"math"
)

// Duration is a length in ticks
type Duration int

// Tick resolution
const (
	PPQ          Duration = 480     // ticks per quarter note
	Bar          Duration = 4 * PPQ // one whole-note bar
	TripletTicks Duration = PPQ / 3 // one note of a quarter-note triplet
)

// Class names a duration the rhythm table can sample
type Class string

const (
	ClassWhole         Class = "whole"
	ClassHalf          Class = "half"
	ClassDottedQuarter Class = "dotted_quarter"
	ClassQuarter       Class = "quarter"
	ClassEighth        Class = "eighth"
	ClassSixteenth     Class = "sixteenth"
	ClassTriplet       Class = "triplet" // three notes filling one quarter
)

var classTicks = map[Class]Duration{
	ClassWhole:         Bar,
	ClassHalf:          Bar / 2,
	ClassDottedQuarter: PPQ * 3 / 2,
	ClassQuarter:       PPQ,
	ClassEighth:        PPQ / 2,
	ClassSixteenth:     PPQ / 4,
	ClassTriplet:       PPQ,
}

// Classes lists every duration class, longest first
func Classes() []Class {
	return []Class{
		ClassWhole, ClassHalf, ClassDottedQuarter, ClassQuarter,
		ClassEighth, ClassSixteenth, ClassTriplet,
	}
}

// Ticks returns the length a class occupies in the bar
func (c Class) Ticks() (Duration, bool) {
	d, ok := classTicks[c]
	return d, ok
}

// Beats returns the duration in quarter notes
func (d Duration) Beats() float64 {
	return float64(d) / float64(PPQ)
}

// Weight is one entry of a weighted duration table
type Weight struct {
	Class  Class   `yaml:"class" json:"class"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// WeightTolerance is how far a weight table may sum away from 1.0
const WeightTolerance = 0.01

// ValidateWeights checks classes are known, weights are non-negative and sum to 1.0
func ValidateWeights(weights []Weight) error {
	if len(weights) == 0 {
		return fmt.Errorf("empty rhythm weight table")
	}

	seen := make(map[Class]bool, len(weights))
	sum := 0.0
	for _, w := range weights {
		if _, ok := classTicks[w.Class]; !ok {
			return fmt.Errorf("unknown duration class %q", w.Class)
		}
		if seen[w.Class] {
			return fmt.Errorf("duplicate duration class %q", w.Class)
		}
		seen[w.Class] = true
		if w.Weight < 0 || math.IsNaN(w.Weight) {
			return fmt.Errorf("negative weight %v for %q", w.Weight, w.Class)
		}
		sum += w.Weight
	}

	if math.Abs(sum-1.0) > WeightTolerance {
		return fmt.Errorf("rhythm weights sum to %.3f, want 1.0", sum)
	}
	return nil
}
