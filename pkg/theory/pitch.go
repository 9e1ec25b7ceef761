// Package theory provides pitch, scale, chord and progression resolution as pure value transforms
package theory

import (
	"fmt"
	"strings"
)

// PitchClass is a pitch modulo the octave (0 = C, 11 = B)
type PitchClass int

// sharpNames spells every pitch class with sharps
var sharpNames = [12]string{"c", "c#", "d", "d#", "e", "f", "f#", "g", "g#", "a", "a#", "b"}

// letterClass maps natural letters to their pitch class
var letterClass = map[byte]int{
	'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11,
}

// Mod12 folds any integer into a pitch class
func Mod12(n int) PitchClass {
	return PitchClass(((n % 12) + 12) % 12)
}

// ParsePitchClass parses a letter plus optional accidental ("C", "f#", "Bb", "E♭")
func ParsePitchClass(s string) (PitchClass, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return 0, fmt.Errorf("empty pitch name")
	}

	base, ok := letterClass[name[0]]
	if !ok {
		return 0, fmt.Errorf("invalid pitch name: %q", s)
	}

	offset := 0
	for _, r := range name[1:] {
		switch r {
		case '#', '♯':
			offset++
		case 'b', '♭':
			offset--
		default:
			return 0, fmt.Errorf("invalid accidental in pitch name: %q", s)
		}
	}
	if offset < -2 || offset > 2 {
		return 0, fmt.Errorf("too many accidentals in pitch name: %q", s)
	}

	return Mod12(base + offset), nil
}

// Name returns the lowercase sharp spelling ("c#")
func (pc PitchClass) Name() string {
	return sharpNames[Mod12(int(pc))]
}

// String returns the uppercase sharp spelling ("C#")
func (pc PitchClass) String() string {
	return strings.ToUpper(pc.Name()[:1]) + pc.Name()[1:]
}

// Pitch is a pitch class in a scientific-notation octave (C4 = middle C)
type Pitch struct {
	Class  PitchClass `json:"class"`
	Octave int        `json:"octave"`
}

// PitchFromMIDI converts a MIDI note number to a Pitch
func PitchFromMIDI(n int) Pitch {
	return Pitch{Class: Mod12(n), Octave: n/12 - 1}
}

// MIDI returns the MIDI note number
func (p Pitch) MIDI() int {
	return (p.Octave+1)*12 + int(p.Class)
}

// Transpose moves the pitch by the given number of semitones
func (p Pitch) Transpose(semitones int) Pitch {
	return PitchFromMIDI(p.MIDI() + semitones)
}

// String renders letter, accidental and octave ("f#5")
func (p Pitch) String() string {
	return fmt.Sprintf("%s%d", p.Class.Name(), p.Octave)
}

// ClassSet is an ordered, duplicate-free list of pitch classes
type ClassSet []PitchClass

// Contains reports whether pc is in the set
func (s ClassSet) Contains(pc PitchClass) bool {
	for _, c := range s {
		if c == Mod12(int(pc)) {
			return true
		}
	}
	return false
}

// Transpose adds each interval to root modulo 12
func Transpose(root PitchClass, intervals []int) ClassSet {
	out := make(ClassSet, 0, len(intervals))
	for _, iv := range intervals {
		out = append(out, Mod12(int(root)+iv))
	}
	return out
}
