package theory

import (
	"strings"
)

// Chord is a resolved harmonic function: a root with a pitch-class set.
// BassPC equals the root class; labels resolve in root position.
type Chord struct {
	RootPC   int
	RootName string
	PCs      []int
	BassPC   int
	Quality  string
}

var romanDegrees = map[string]int{
	"i": 1, "ii": 2, "iii": 3, "iv": 4, "v": 5, "vi": 6, "vii": 7,
}

// ResolveRoman resolves a scale-degree label (roman-numeral style, e.g.
// "V7", "ii7", "viio", "bII7", "Imaj7") against a key. The second return
// is false when the label does not denote a resolvable harmonic function;
// callers simply exclude such candidates.
func ResolveRoman(label string, k Key) (Chord, bool) {
	rest := label

	flats := 0
	for strings.HasPrefix(rest, "b") {
		flats++
		rest = rest[1:]
	}

	// Longest numeral match (III before II before I).
	numeral := ""
	for cand := range romanDegrees {
		if strings.HasPrefix(strings.ToLower(rest), cand) && len(cand) > len(numeral) {
			numeral = cand
		}
	}
	if numeral == "" {
		return Chord{}, false
	}
	head := rest[:len(numeral)]
	tail := rest[len(numeral):]
	if head != strings.ToUpper(head) && head != strings.ToLower(head) {
		return Chord{}, false // mixed-case numeral
	}
	minor := head == strings.ToLower(head)

	diminished := false
	if strings.HasPrefix(tail, "o") {
		diminished = true
		tail = tail[1:]
	}

	degree := romanDegrees[numeral]
	rootPC := ((k.DegreePC(degree)-flats)%12 + 12) % 12

	var pcs []int
	quality := ""
	switch {
	case diminished:
		pcs = []int{0, 3, 6}
		quality = "diminished"
	case minor:
		pcs = []int{0, 3, 7}
		quality = "minor"
	default:
		pcs = []int{0, 4, 7}
		quality = "major"
	}

	switch tail {
	case "":
	case "maj7":
		if minor || diminished {
			return Chord{}, false
		}
		pcs = append(pcs, 11)
		quality = "major-seventh"
	case "7":
		switch {
		case diminished:
			pcs = append(pcs, 9)
			quality = "diminished-seventh"
		case minor:
			pcs = append(pcs, 10)
			quality = "minor-seventh"
		default:
			pcs = append(pcs, 10)
			quality = "dominant-seventh"
		}
	default:
		return Chord{}, false
	}

	rootName := k.SpellPC(rootPC)
	if flats > 0 {
		rootName = FlatClassNameOf(rootPC)
	}

	abs := make([]int, len(pcs))
	for i, iv := range pcs {
		abs[i] = (rootPC + iv) % 12
	}

	return Chord{
		RootPC:   rootPC,
		RootName: rootName,
		PCs:      abs,
		BassPC:   rootPC,
		Quality:  quality,
	}, true
}

// ContainsPC reports whether the chord includes a pitch class.
func (c Chord) ContainsPC(pc int) bool {
	pc = ((pc % 12) + 12) % 12
	for _, p := range c.PCs {
		if p == pc {
			return true
		}
	}
	return false
}

// Symbol renders the chord as a lead-sheet symbol (e.g. "Dm7", "G7",
// "Cmaj7", "Bdim").
func (c Chord) Symbol() string {
	suffix := map[string]string{
		"major":              "",
		"minor":              "m",
		"diminished":         "dim",
		"major-seventh":      "maj7",
		"dominant-seventh":   "7",
		"minor-seventh":      "m7",
		"diminished-seventh": "dim7",
	}[c.Quality]
	return c.RootName + suffix
}

// Pitches realizes the chord in root position starting at the given octave.
func (c Chord) Pitches(octave int) []Pitch {
	base := (octave+1)*12 + c.RootPC
	out := make([]Pitch, 0, len(c.PCs))
	prev := -1
	for _, pc := range c.PCs {
		midi := base + ((pc-c.RootPC)%12+12)%12
		for midi <= prev {
			midi += 12
		}
		out = append(out, PitchFromMIDI(midi))
		prev = midi
	}
	return out
}
