// Package theory models pitches, intervals, keys and chord resolution.
// Pitches carry a chromatic position (MIDI number) plus a display spelling;
// search and comparison always use the chromatic position.
package theory

import (
	"fmt"
	"strconv"
	"strings"
)

// Semitone offsets of the natural letters from C.
var letterOffsets = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

var sharpNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
var flatNames = []string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// Pitch is an immutable chromatic position with a spelling.
// MIDI 60 = C4 (middle C).
type Pitch struct {
	midi int
	name string // spelling with octave, e.g. "F#4"
}

// ParsePitch parses a note name like "C4", "F#3" or "Bb5".
func ParsePitch(s string) (Pitch, error) {
	if len(s) < 2 {
		return Pitch{}, fmt.Errorf("note name too short: %q", s)
	}
	letter := s[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	offset, ok := letterOffsets[letter]
	if !ok {
		return Pitch{}, fmt.Errorf("invalid note letter in %q", s)
	}

	idx := 1
	alter := 0
	for idx < len(s) && (s[idx] == '#' || s[idx] == 'b') {
		if s[idx] == '#' {
			alter++
		} else {
			alter--
		}
		idx++
	}

	octave, err := strconv.Atoi(s[idx:])
	if err != nil {
		return Pitch{}, fmt.Errorf("invalid octave in %q", s)
	}

	midi := (octave+1)*12 + offset + alter
	if midi < 0 || midi > 127 {
		return Pitch{}, fmt.Errorf("pitch out of MIDI range: %q", s)
	}

	name := string(letter) + strings.Repeat("#", max(alter, 0)) +
		strings.Repeat("b", max(-alter, 0)) + strconv.Itoa(octave)
	return Pitch{midi: midi, name: name}, nil
}

// ParseClass resolves a bare pitch-class name like "C", "F#" or "Bb" to its
// class number. The second return is false for unrecognized names.
func ParseClass(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	letter := s[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	offset, ok := letterOffsets[letter]
	if !ok {
		return 0, false
	}
	for _, c := range s[1:] {
		switch c {
		case '#':
			offset++
		case 'b':
			offset--
		default:
			return 0, false
		}
	}
	return ((offset % 12) + 12) % 12, true
}

// MustPitch is ParsePitch for literals known to be valid.
func MustPitch(s string) Pitch {
	p, err := ParsePitch(s)
	if err != nil {
		panic(err)
	}
	return p
}

// PitchFromMIDI builds a pitch with a sharp-preferring spelling.
func PitchFromMIDI(midi int) Pitch {
	octave := midi/12 - 1
	return Pitch{midi: midi, name: sharpNames[((midi%12)+12)%12] + strconv.Itoa(octave)}
}

// SpelledPitch builds a pitch at the given MIDI position carrying the
// supplied pitch-class spelling (e.g. "Eb"). The octave digit is derived
// from the chromatic position.
func SpelledPitch(midi int, spelling string) Pitch {
	octave := midi/12 - 1
	// Cb and B# sit in the neighboring notated octave.
	if strings.HasPrefix(spelling, "C") && strings.Contains(spelling, "b") {
		octave++
	} else if strings.HasPrefix(spelling, "B") && strings.Contains(spelling, "#") {
		octave--
	}
	return Pitch{midi: midi, name: spelling + strconv.Itoa(octave)}
}

// MIDI returns the chromatic position.
func (p Pitch) MIDI() int { return p.midi }

// Class returns the pitch class (0=C .. 11=B).
func (p Pitch) Class() int { return ((p.midi % 12) + 12) % 12 }

// Name returns the spelling with octave, e.g. "F#4".
func (p Pitch) Name() string { return p.name }

// ClassName returns the spelling without the octave digit.
func (p Pitch) ClassName() string {
	return strings.TrimRight(p.name, "0123456789-")
}

// Transpose returns a new pitch the given number of semitones away,
// respelled with sharps.
func (p Pitch) Transpose(semitones int) Pitch {
	return PitchFromMIDI(p.midi + semitones)
}

// ClassNameOf returns the sharp-preferring spelling of a pitch class.
func ClassNameOf(pc int) string {
	return sharpNames[((pc%12)+12)%12]
}

// FlatClassNameOf returns the flat-preferring spelling of a pitch class.
func FlatClassNameOf(pc int) string {
	return flatNames[((pc%12)+12)%12]
}
