package theory

import (
	"fmt"
	"strings"

	"github.com/cadenzalabs/composer-api/internal/apierr"
)

// ChordSymbol is a parsed lead-sheet symbol like "Cmaj7" or "Em/G".
type ChordSymbol struct {
	Root    Pitch // realized at octave 4
	Bass    *Pitch
	Quality string
	Symbol  string

	intervals []int // semitones above the root
}

// Triad and seventh-chord interval tables, keyed by quality suffix.
// Longest suffixes are matched first.
var qualityTable = []struct {
	suffix    string
	quality   string
	intervals []int
}{
	{"maj9", "major-ninth", []int{0, 4, 7, 11, 14}},
	{"maj7", "major-seventh", []int{0, 4, 7, 11}},
	{"m7b5", "half-diminished", []int{0, 3, 6, 10}},
	{"dim7", "diminished-seventh", []int{0, 3, 6, 9}},
	{"min7", "minor-seventh", []int{0, 3, 7, 10}},
	{"sus2", "suspended-second", []int{0, 2, 7}},
	{"sus4", "suspended-fourth", []int{0, 5, 7}},
	{"add9", "added-ninth", []int{0, 4, 7, 14}},
	{"dim", "diminished", []int{0, 3, 6}},
	{"aug", "augmented", []int{0, 4, 8}},
	{"min", "minor", []int{0, 3, 7}},
	{"maj", "major", []int{0, 4, 7}},
	{"m9", "minor-ninth", []int{0, 3, 7, 10, 14}},
	{"m7", "minor-seventh", []int{0, 3, 7, 10}},
	{"m6", "minor-sixth", []int{0, 3, 7, 9}},
	{"13", "dominant-13th", []int{0, 4, 7, 10, 14, 21}},
	{"11", "dominant-11th", []int{0, 4, 7, 10, 17}},
	{"9", "dominant-ninth", []int{0, 4, 7, 10, 14}},
	{"7", "dominant-seventh", []int{0, 4, 7, 10}},
	{"6", "major-sixth", []int{0, 4, 7, 9}},
	{"m", "minor", []int{0, 3, 7}},
	{"o", "diminished", []int{0, 3, 6}},
	{"+", "augmented", []int{0, 4, 8}},
	{"", "major", []int{0, 4, 7}},
}

// ParseChordSymbol parses a lead-sheet chord symbol, including slash-bass
// notation ("Em/G").
func ParseChordSymbol(symbol string) (ChordSymbol, error) {
	text := strings.TrimSpace(symbol)
	if text == "" {
		return ChordSymbol{}, apierr.InvalidChordSymbol("Chord symbol is empty")
	}

	bassName := ""
	if i := strings.IndexByte(text, '/'); i >= 0 {
		bassName = strings.TrimSpace(text[i+1:])
		text = strings.TrimSpace(text[:i])
	}

	rootLen := 1
	if len(text) < 1 || text[0] < 'A' || text[0] > 'G' {
		return ChordSymbol{}, apierr.InvalidChordSymbol(
			fmt.Sprintf("Could not parse chord symbol: %s", symbol))
	}
	if len(text) > 1 && (text[1] == '#' || text[1] == 'b') {
		rootLen = 2
	}
	rootName := text[:rootLen]
	rest := text[rootLen:]

	root, err := ParsePitch(rootName + "4")
	if err != nil {
		return ChordSymbol{}, apierr.InvalidChordSymbol(
			fmt.Sprintf("Could not parse chord symbol: %s", symbol))
	}

	cs := ChordSymbol{Root: root, Symbol: symbol}
	matched := false
	for _, q := range qualityTable {
		if rest == q.suffix {
			cs.Quality = q.quality
			cs.intervals = q.intervals
			matched = true
			break
		}
	}
	if !matched {
		return ChordSymbol{}, apierr.InvalidChordSymbol(
			fmt.Sprintf("Could not parse chord symbol: %s", symbol))
	}

	if bassName != "" {
		bass, err := ParsePitch(bassName + "3")
		if err != nil {
			return ChordSymbol{}, apierr.InvalidChordSymbol(
				fmt.Sprintf("Invalid bass note in chord symbol: %s", symbol))
		}
		cs.Bass = &bass
	}

	return cs, nil
}

// Pitches returns the chord tones in root position from the parsed root.
// A slash bass replaces any duplicate chord tone and sits below the root.
func (cs ChordSymbol) Pitches() []Pitch {
	out := make([]Pitch, 0, len(cs.intervals)+1)
	for _, iv := range cs.intervals {
		out = append(out, cs.Root.Transpose(iv))
	}
	if cs.Bass != nil {
		filtered := out[:0]
		for _, p := range out {
			if p.Class() != cs.Bass.Class() {
				filtered = append(filtered, p)
			}
		}
		out = append([]Pitch{*cs.Bass}, filtered...)
	}
	return out
}
