package theory

import (
	"fmt"
	"strconv"
)

// Interval is a signed semitone distance with a canonical short name,
// e.g. "P4" = 5 semitones, "M3" = 4.
type Interval struct {
	name      string
	semitones int
}

// Major/perfect semitone sizes of the simple diatonic numbers 1..8.
var diatonicSemitones = [...]int{0, 0, 2, 4, 5, 7, 9, 11, 12}

// Diatonic numbers whose default quality is perfect (vs major).
var perfectNumbers = map[int]bool{1: true, 4: true, 5: true, 8: true}

// ParseInterval parses an interval name like "P5", "M3", "m7", "A4", "d5".
func ParseInterval(s string) (Interval, error) {
	if len(s) < 2 {
		return Interval{}, fmt.Errorf("interval name too short: %q", s)
	}
	quality := s[0]
	number, err := strconv.Atoi(s[1:])
	if err != nil || number < 1 {
		return Interval{}, fmt.Errorf("invalid interval number in %q", s)
	}

	simple := (number-1)%7 + 1
	octaves := (number - 1) / 7
	if simple == 1 && octaves > 0 {
		simple = 8
		octaves--
	}
	base := diatonicSemitones[simple]
	perfect := perfectNumbers[simple]

	var semis int
	switch quality {
	case 'P':
		if !perfect {
			return Interval{}, fmt.Errorf("interval %d has no perfect quality", number)
		}
		semis = base
	case 'M':
		if perfect {
			return Interval{}, fmt.Errorf("interval %d has no major quality", number)
		}
		semis = base
	case 'm':
		if perfect {
			return Interval{}, fmt.Errorf("interval %d has no minor quality", number)
		}
		semis = base - 1
	case 'A':
		semis = base + 1
	case 'd':
		if perfect {
			semis = base - 1
		} else {
			semis = base - 2
		}
	default:
		return Interval{}, fmt.Errorf("invalid interval quality in %q", s)
	}

	return Interval{name: s, semitones: semis + 12*octaves}, nil
}

// MustInterval is ParseInterval for literals known to be valid.
func MustInterval(s string) Interval {
	iv, err := ParseInterval(s)
	if err != nil {
		panic(err)
	}
	return iv
}

// Semitones returns the chromatic width of the interval.
func (iv Interval) Semitones() int { return iv.semitones }

// Name returns the canonical short name.
func (iv Interval) Name() string { return iv.name }

// IntervalBetween names the simple interval from low to high, compressed
// to within an octave. Ambiguous chromatic sizes use the common spelling.
func IntervalBetween(low, high Pitch) string {
	semis := high.MIDI() - low.MIDI()
	if semis < 0 {
		semis = -semis
	}
	semis %= 12
	names := [...]string{"P1", "m2", "M2", "m3", "M3", "P4", "A4", "P5", "m6", "M6", "m7", "M7"}
	return names[semis]
}
