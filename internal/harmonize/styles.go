// Package harmonize generates ranked chord progressions for a melody:
// per-slot candidate scoring, exploratory weighted selection, and a
// deduplicating multi-attempt search ranked by voice leading, melody fit
// and style adherence.
package harmonize

import "github.com/cadenzalabs/composer-api/internal/models"

// StyleRules captures the harmonic vocabulary and conventions of one
// harmonization style. Instances are package-level and never mutated.
type StyleRules struct {
	AllowedNumerals        []string
	PreferExtensions       bool
	CommonProgressions     [][]string
	CadencePatterns        map[string][]string
	Substitutions          map[string]string
	AvoidParallelFifths    bool
	AvoidParallelOctaves   bool
	PreferRootPosition     bool
	AllowChromaticApproach bool
}

var classicalRules = StyleRules{
	AllowedNumerals:  []string{"I", "ii", "iii", "IV", "V", "vi", "viio"},
	PreferExtensions: false,
	CommonProgressions: [][]string{
		{"I", "IV", "V", "I"},
		{"I", "vi", "IV", "V"},
		{"I", "ii", "V", "I"},
		{"I", "IV", "ii", "V"},
	},
	CadencePatterns: map[string][]string{
		"perfect":   {"V", "I"},
		"plagal":    {"IV", "I"},
		"half":      {"ii", "V"},
		"deceptive": {"V", "vi"},
	},
	AvoidParallelFifths:  true,
	AvoidParallelOctaves: true,
}

var jazzRules = StyleRules{
	AllowedNumerals:  []string{"Imaj7", "ii7", "iii7", "IVmaj7", "V7", "vi7", "viio7"},
	PreferExtensions: true,
	CommonProgressions: [][]string{
		{"ii7", "V7", "Imaj7"},
		{"iii7", "vi7", "ii7", "V7"},
		{"Imaj7", "vi7", "ii7", "V7"},
		{"ii7", "V7", "iii7", "vi7"},
	},
	CadencePatterns: map[string][]string{
		"perfect":    {"V7", "Imaj7"},
		"half":       {"ii7", "V7"},
		"turnaround": {"Imaj7", "vi7", "ii7", "V7"},
	},
	Substitutions: map[string]string{
		"V7":     "bII7", // tritone sub
		"Imaj7":  "vi7",
		"IVmaj7": "ii7",
	},
	AllowChromaticApproach: true,
}

var popRules = StyleRules{
	AllowedNumerals:  []string{"I", "ii", "IV", "V", "vi"},
	PreferExtensions: false,
	CommonProgressions: [][]string{
		{"I", "V", "vi", "IV"},
		{"I", "IV", "vi", "V"},
		{"vi", "IV", "I", "V"},
		{"I", "IV", "I", "V"},
	},
	CadencePatterns: map[string][]string{
		"perfect": {"V", "I"},
		"plagal":  {"IV", "I"},
	},
	AvoidParallelFifths:  true,
	AvoidParallelOctaves: true,
	PreferRootPosition:   true,
}

var modalRules = StyleRules{
	AllowedNumerals:  []string{"I", "II", "III", "IV", "V", "VI", "VII"},
	PreferExtensions: false,
	CommonProgressions: [][]string{
		{"I", "IV", "I"},
		{"i", "VII", "VI"},
		{"I", "II", "I"},
	},
	CadencePatterns: map[string][]string{
		// V-I sounds too tonal for modal writing
		"modal":  {"IV", "I"},
		"plagal": {"IV", "I"},
	},
}

// RulesFor returns the rule set for a style. Unknown styles are rejected
// during request validation; classical is the fallback for direct callers.
func RulesFor(style models.Style) StyleRules {
	switch style {
	case models.StyleJazz:
		return jazzRules
	case models.StylePop:
		return popRules
	case models.StyleModal:
		return modalRules
	case models.StyleClassical:
		return classicalRules
	default:
		return classicalRules
	}
}
