package theory

import (
	"fmt"

	"github.com/james-see/codecomposer/pkg/errs"
)

// Resolution is the concrete harmony a composition is built on
type Resolution struct {
	Key         PitchClass
	Scale       Scale
	Progression Progression
	Warnings    []string
}

// Resolve turns a key, scale name and optional progression name into pitch classes and chords.
// An empty or unresolvable progression falls back to the scale's default; only the latter
// records a warning.
func Resolve(key, scaleName, progressionName string) (Resolution, error) {
	root, err := ParsePitchClass(key)
	if err != nil {
		return Resolution{}, &errs.InputError{Field: "key", Value: key, Reason: err.Error()}
	}

	def, ok := LookupScale(scaleName)
	if !ok {
		return Resolution{}, &errs.ConfigurationError{
			Kind:   "scale",
			Name:   scaleName,
			Reason: fmt.Sprintf("not registered (known: %v)", ScaleNames()),
		}
	}

	scale, err := BuildScale(root, def.Name)
	if err != nil {
		return Resolution{}, &errs.ConfigurationError{Kind: "scale", Name: scaleName, Cause: err}
	}

	res := Resolution{Key: root, Scale: scale}

	if progressionName != "" {
		prog, perr := ParseProgression(progressionName, scale)
		if perr == nil {
			res.Progression = prog
			return res, nil
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"progression %q is incompatible with %s %s (%v); using default %q",
			progressionName, root, scale.Name, perr, def.DefaultProgression))
	}

	prog, err := ParseProgression(def.DefaultProgression, scale)
	if err != nil {
		return Resolution{}, errs.NewInternal("theory", 0,
			"default progression %q for scale %q does not resolve: %v", def.DefaultProgression, def.Name, err)
	}
	res.Progression = prog
	return res, nil
}

// Compatible reports whether a progression resolves in the given key and scale
func Compatible(key, scaleName, progressionName string) bool {
	root, err := ParsePitchClass(key)
	if err != nil {
		return false
	}
	scale, err := BuildScale(root, scaleName)
	if err != nil {
		return false
	}
	_, err = ParseProgression(progressionName, scale)
	return err == nil
}
