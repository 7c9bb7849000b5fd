package theory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cadenzalabs/composer-api/internal/apierr"
)

// Mode is one of the seven diatonic modes (major = ionian, minor = aeolian).
type Mode string

const (
	ModeMajor      Mode = "major"
	ModeMinor      Mode = "minor"
	ModeDorian     Mode = "dorian"
	ModePhrygian   Mode = "phrygian"
	ModeLydian     Mode = "lydian"
	ModeMixolydian Mode = "mixolydian"
	ModeAeolian    Mode = "aeolian"
	ModeLocrian    Mode = "locrian"
)

// Semitone offsets of the seven scale degrees above the tonic.
var modeSteps = map[Mode][7]int{
	ModeMajor:      {0, 2, 4, 5, 7, 9, 11},
	ModeMinor:      {0, 2, 3, 5, 7, 8, 10},
	ModeDorian:     {0, 2, 3, 5, 7, 9, 10},
	ModePhrygian:   {0, 1, 3, 5, 7, 8, 10},
	ModeLydian:     {0, 2, 4, 6, 7, 9, 11},
	ModeMixolydian: {0, 2, 4, 5, 7, 9, 10},
	ModeAeolian:    {0, 2, 3, 5, 7, 8, 10},
	ModeLocrian:    {0, 1, 3, 5, 6, 8, 10},
}

var letterSequence = "CDEFGAB"

// Key is a tonic pitch class with a mode. The zero value is not valid;
// construct via ParseKey or NewKey.
type Key struct {
	TonicName string // spelled tonic, e.g. "F#"
	TonicPC   int
	Mode      Mode

	degreeNames [7]string // spelled scale degrees
	degreePCs   [7]int
}

// ParseKey parses a key string like "C major" or "d dorian".
func ParseKey(s string) (Key, error) {
	parts := strings.Fields(strings.TrimSpace(s))
	if len(parts) != 2 {
		return Key{}, apierr.InvalidKey(fmt.Sprintf("Invalid key format: %s", s))
	}

	tonic := strings.ToUpper(parts[0][:1]) + parts[0][1:]
	mode := Mode(strings.ToLower(parts[1]))
	if _, ok := modeSteps[mode]; !ok {
		return Key{}, apierr.InvalidKey(fmt.Sprintf("Unknown mode: %s", parts[1]))
	}

	offset, ok := letterOffsets[tonic[0]]
	if !ok {
		return Key{}, apierr.InvalidKey(fmt.Sprintf("Invalid tonic: %s", parts[0]))
	}
	alter := 0
	for _, c := range tonic[1:] {
		switch c {
		case '#':
			alter++
		case 'b':
			alter--
		default:
			return Key{}, apierr.InvalidKey(fmt.Sprintf("Invalid tonic: %s", parts[0]))
		}
	}

	return NewKey(tonic, ((offset+alter)%12+12)%12, mode), nil
}

// MustKey is ParseKey for literals known to be valid.
func MustKey(s string) Key {
	k, err := ParseKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

// NewKey builds a key and derives the spelled scale degrees: successive
// letters from the tonic letter, accidentals chosen to hit the mode's
// chromatic steps.
func NewKey(tonicName string, tonicPC int, mode Mode) Key {
	k := Key{TonicName: tonicName, TonicPC: tonicPC, Mode: mode}
	steps := modeSteps[mode]

	letterIdx := strings.IndexByte(letterSequence, tonicName[0])
	for degree := 0; degree < 7; degree++ {
		pc := (tonicPC + steps[degree]) % 12
		letter := letterSequence[(letterIdx+degree)%7]
		natural := letterOffsets[letter]
		alter := pc - natural
		// Wrap to the nearest accidental count.
		if alter > 6 {
			alter -= 12
		} else if alter < -6 {
			alter += 12
		}
		name := string(letter)
		switch {
		case alter > 2 || alter < -2:
			// Give up on the letter spelling for remote tonics.
			name = ClassNameOf(pc)
		case alter > 0:
			name += strings.Repeat("#", alter)
		case alter < 0:
			name += strings.Repeat("b", -alter)
		}
		k.degreeNames[degree] = name
		k.degreePCs[degree] = pc
	}
	return k
}

// String renders the key as "<tonic> <mode>".
func (k Key) String() string {
	return k.TonicName + " " + string(k.Mode)
}

// DegreePC returns the pitch class of a 1-based scale degree.
func (k Key) DegreePC(degree int) int {
	return k.degreePCs[(degree-1)%7]
}

// DegreeName returns the spelled pitch-class name of a 1-based degree.
func (k Key) DegreeName(degree int) string {
	return k.degreeNames[(degree-1)%7]
}

// Contains reports whether a pitch class belongs to the key's scale.
func (k Key) Contains(pc int) bool {
	for _, dpc := range k.degreePCs {
		if dpc == ((pc%12)+12)%12 {
			return true
		}
	}
	return false
}

// SpellPC returns the key-appropriate spelling of a pitch class, falling
// back to flats for chromatic notes in flat-side keys.
func (k Key) SpellPC(pc int) string {
	pc = ((pc % 12) + 12) % 12
	for degree, dpc := range k.degreePCs {
		if dpc == pc {
			return k.degreeNames[degree]
		}
	}
	if strings.Contains(k.TonicName, "b") || k.TonicName == "F" {
		return FlatClassNameOf(pc)
	}
	return ClassNameOf(pc)
}

// ScaleRealization returns the ordered, duplicate-free concrete pitches of
// the key's scale within [low, high], strictly ascending by chromatic
// position. The range must satisfy low < high.
func (k Key) ScaleRealization(low, high Pitch) ([]Pitch, error) {
	if low.MIDI() >= high.MIDI() {
		return nil, apierr.InvalidRange(fmt.Sprintf(
			"Range low (%s) must be below range high (%s)", low.Name(), high.Name()))
	}

	var pitches []Pitch
	seen := make(map[int]bool)
	for degree := 0; degree < 7; degree++ {
		pc := k.degreePCs[degree]
		// First occurrence of this class at or above the range floor.
		midi := low.MIDI() + ((pc-low.MIDI())%12+12)%12
		for ; midi <= high.MIDI(); midi += 12 {
			if !seen[midi] {
				seen[midi] = true
				pitches = append(pitches, SpelledPitch(midi, k.degreeNames[degree]))
			}
		}
	}

	sort.Slice(pitches, func(i, j int) bool { return pitches[i].MIDI() < pitches[j].MIDI() })
	return pitches, nil
}
