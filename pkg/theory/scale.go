package theory

import (
	"fmt"
	"sort"
)

// ScaleDef is a registered mode: its interval pattern and harmonic defaults
type ScaleDef struct {
	Name               string
	Description        string
	Intervals          []int
	DefaultProgression string
	Progressions       []string
}

// scaleTable is the registered scale library
var scaleTable = map[string]ScaleDef{
	"major": {
		Name:               "major",
		Description:        "Ionian major scale",
		Intervals:          []int{0, 2, 4, 5, 7, 9, 11},
		DefaultProgression: "I_vi_IV_V",
		Progressions: []string{
			"I_vi_IV_V", "I_V_IV_vi", "IV_V_iii_vi_ii_V_I", "I_IV_V_I",
			"Imaj7_vi7_ii7_V7", "ii7_V7_Imaj7", "vi7_ii7_V7_Imaj7",
		},
	},
	"minor": {
		Name:               "minor",
		Description:        "Natural minor (aeolian)",
		Intervals:          []int{0, 2, 3, 5, 7, 8, 10},
		DefaultProgression: "i_iv_v_i",
		Progressions:       []string{"i_iv_v_i", "i_bVI_bIII_bVII", "i_iv_bVII_bIII", "i_bVII_bVI_bVII"},
	},
	"harmonic_minor": {
		Name:               "harmonic_minor",
		Description:        "Harmonic minor",
		Intervals:          []int{0, 2, 3, 5, 7, 8, 11},
		DefaultProgression: "i_iv_V_i",
		Progressions:       []string{"i_iv_V_i", "i_bVI_iv_V", "i_iidim_V7_i"},
	},
	"dorian": {
		Name:               "dorian",
		Description:        "Dorian mode",
		Intervals:          []int{0, 2, 3, 5, 7, 9, 10},
		DefaultProgression: "i_IV_i_bVII",
		Progressions:       []string{"i_IV_i_bVII", "i7_IV7", "i_ii_bIII_IV"},
	},
	"phrygian": {
		Name:               "phrygian",
		Description:        "Phrygian mode",
		Intervals:          []int{0, 1, 3, 5, 7, 8, 10},
		DefaultProgression: "i_bII_bvii_i",
		Progressions:       []string{"i_bII_bvii_i", "i_bII_bIII_bII"},
	},
	"lydian": {
		Name:               "lydian",
		Description:        "Lydian mode",
		Intervals:          []int{0, 2, 4, 6, 7, 9, 11},
		DefaultProgression: "I_II_V_I",
		Progressions:       []string{"I_II_V_I", "I_II_vii_I", "Imaj7_II7"},
	},
	"mixolydian": {
		Name:               "mixolydian",
		Description:        "Mixolydian mode",
		Intervals:          []int{0, 2, 4, 5, 7, 9, 10},
		DefaultProgression: "I_bVII_IV_I",
		Progressions:       []string{"I_bVII_IV_I", "I_v_IV_I", "I7_IV_v_I"},
	},
	"pentatonic": {
		Name:               "pentatonic",
		Description:        "Major pentatonic",
		Intervals:          []int{0, 2, 4, 7, 9},
		DefaultProgression: "I_vi_Vsus2_IIsus4",
		Progressions:       []string{"I_vi_Vsus2_IIsus4", "Isus2_vi_I_Vsus2"},
	},
	"minor_pentatonic": {
		Name:               "minor_pentatonic",
		Description:        "Minor pentatonic",
		Intervals:          []int{0, 3, 5, 7, 10},
		DefaultProgression: "i_bIIIsus2_IVsus2_bVIIsus2",
		Progressions:       []string{"i_bIIIsus2_IVsus2_bVIIsus2", "i_isus4_bVIIsus2_i"},
	},
	"blues": {
		Name:               "blues",
		Description:        "Minor blues hexatonic",
		Intervals:          []int{0, 3, 5, 6, 7, 10},
		DefaultProgression: "i7_IVsus2_i7_bVIIsus2",
		Progressions:       []string{"i7_IVsus2_i7_bVIIsus2", "i_IVsus2_i_bVIIsus2"},
	},
	"gypsy_minor": {
		Name:               "gypsy_minor",
		Description:        "Hungarian (gypsy) minor",
		Intervals:          []int{0, 2, 3, 6, 7, 8, 11},
		DefaultProgression: "i_bVI_V_i",
		Progressions:       []string{"i_bVI_V_i", "i_V_i_bVI"},
	},
	"gypsy_major": {
		Name:               "gypsy_major",
		Description:        "Double harmonic major",
		Intervals:          []int{0, 1, 4, 5, 7, 8, 11},
		DefaultProgression: "I_bII_iii_I",
		Progressions:       []string{"I_bII_iii_I", "I_bII_I_iv"},
	},
}

// Scale is a mode transposed onto a concrete root
type Scale struct {
	Name      string     `json:"name"`
	Root      PitchClass `json:"root"`
	Intervals []int      `json:"intervals"`
	Classes   ClassSet   `json:"classes"`
}

// Contains reports whether pc belongs to the scale
func (s Scale) Contains(pc PitchClass) bool {
	return s.Classes.Contains(pc)
}

// Degree returns the pitch class of the 1-based scale step, wrapping past the top
func (s Scale) Degree(step int) PitchClass {
	n := len(s.Classes)
	return s.Classes[((step-1)%n+n)%n]
}

// LookupScale returns the registered definition for name
func LookupScale(name string) (ScaleDef, bool) {
	def, ok := scaleTable[name]
	return def, ok
}

// ScaleNames lists registered scales in sorted order
func ScaleNames() []string {
	names := make([]string, 0, len(scaleTable))
	for name := range scaleTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildScale transposes a registered scale onto root
func BuildScale(root PitchClass, name string) (Scale, error) {
	def, ok := scaleTable[name]
	if !ok {
		return Scale{}, fmt.Errorf("unknown scale: %q", name)
	}
	classes := Transpose(root, def.Intervals)
	if err := checkUnique(classes); err != nil {
		return Scale{}, fmt.Errorf("scale %q: %w", name, err)
	}
	return Scale{
		Name:      name,
		Root:      Mod12(int(root)),
		Intervals: append([]int(nil), def.Intervals...),
		Classes:   classes,
	}, nil
}

func checkUnique(classes ClassSet) error {
	seen := make(map[PitchClass]bool, len(classes))
	for _, pc := range classes {
		if seen[pc] {
			return fmt.Errorf("duplicate pitch class %s", pc)
		}
		seen[pc] = true
	}
	return nil
}

// BlueNotes returns the flattened 3rd, 5th and 7th above the root that the scale lacks
func (s Scale) BlueNotes() ClassSet {
	var out ClassSet
	for _, iv := range []int{3, 6, 10} {
		pc := Mod12(int(s.Root) + iv)
		if !s.Contains(pc) {
			out = append(out, pc)
		}
	}
	return out
}
