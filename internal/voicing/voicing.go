// Package voicing realizes chord symbols into concrete pitch sets: close,
// open, drop-2, drop-3 and quartal layouts, constrained to instrument
// ranges.
package voicing

import (
	"sort"

	"github.com/cadenzalabs/composer-api/internal/theory"
)

// InstrumentRange bounds a voicing for a target instrument.
type InstrumentRange struct {
	Low      theory.Pitch
	High     theory.Pitch
	MaxNotes int
}

var instrumentRanges = map[string]InstrumentRange{
	"piano":   {Low: theory.MustPitch("A0"), High: theory.MustPitch("C8"), MaxNotes: 10},
	"guitar":  {Low: theory.MustPitch("E2"), High: theory.MustPitch("E6"), MaxNotes: 6},
	"satb":    {Low: theory.MustPitch("E2"), High: theory.MustPitch("A5"), MaxNotes: 4},
	"strings": {Low: theory.MustPitch("C2"), High: theory.MustPitch("E6"), MaxNotes: 4},
}

// RangeFor returns the range for an instrument, defaulting to piano.
func RangeFor(instrument string) InstrumentRange {
	if r, ok := instrumentRanges[instrument]; ok {
		return r
	}
	return instrumentRanges["piano"]
}

// octaveUp shifts a pitch up an octave preserving its spelling.
func octaveUp(p theory.Pitch) theory.Pitch {
	return theory.SpelledPitch(p.MIDI()+12, p.ClassName())
}

func octaveDown(p theory.Pitch) theory.Pitch {
	return theory.SpelledPitch(p.MIDI()-12, p.ClassName())
}

// Close stacks the chord tones within an octave above the bass, rotating
// first for the requested inversion.
func Close(pitches []theory.Pitch, inversion int) []theory.Pitch {
	if len(pitches) == 0 {
		return nil
	}

	rotated := append([]theory.Pitch(nil), pitches...)
	if inversion > 0 && inversion < len(rotated) {
		rotated = append(rotated[inversion:], rotated[:inversion]...)
	}

	result := []theory.Pitch{rotated[0]}
	for _, p := range rotated[1:] {
		for p.MIDI() <= result[len(result)-1].MIDI() {
			p = octaveUp(p)
		}
		result = append(result, p)
	}
	return result
}

// Open spreads a close voicing past an octave by lifting every other
// inner voice. Triads stay close.
func Open(pitches []theory.Pitch, inversion int) []theory.Pitch {
	stacked := Close(pitches, inversion)
	if len(stacked) < 4 {
		return stacked
	}

	result := make([]theory.Pitch, 0, len(stacked))
	for i, p := range stacked {
		if i%2 == 1 && i < len(stacked)-1 {
			p = octaveUp(p)
		}
		result = append(result, p)
	}
	sortByMIDI(result)
	return result
}

// Drop2 lowers the second-from-top voice of the close voicing an octave.
func Drop2(pitches []theory.Pitch) []theory.Pitch {
	stacked := Close(pitches, 0)
	if len(stacked) < 4 {
		return stacked
	}

	result := append([]theory.Pitch(nil), stacked...)
	result[len(result)-2] = octaveDown(result[len(result)-2])
	sortByMIDI(result)
	return result
}

// Drop3 lowers the third-from-top voice of the close voicing an octave.
func Drop3(pitches []theory.Pitch) []theory.Pitch {
	stacked := Close(pitches, 0)
	if len(stacked) < 4 {
		return stacked
	}

	result := append([]theory.Pitch(nil), stacked...)
	result[len(result)-3] = octaveDown(result[len(result)-3])
	sortByMIDI(result)
	return result
}

// Quartal stacks three perfect fourths above the root, discarding the
// chord's original tertian tones.
func Quartal(root theory.Pitch) []theory.Pitch {
	result := []theory.Pitch{root}
	current := root
	for i := 0; i < 3; i++ {
		current = current.Transpose(5)
		result = append(result, current)
	}
	return result
}

// ApplyRange octave-shifts each pitch into the effective range, drops any
// that still cannot fit, and caps the count at the instrument's limit.
func ApplyRange(pitches []theory.Pitch, rangeLow, rangeHigh string, instrument string) ([]theory.Pitch, error) {
	constraints := RangeFor(instrument)

	low := constraints.Low
	high := constraints.High
	if rangeLow != "" {
		p, err := theory.ParsePitch(rangeLow)
		if err != nil {
			return nil, err
		}
		low = p
	}
	if rangeHigh != "" {
		p, err := theory.ParsePitch(rangeHigh)
		if err != nil {
			return nil, err
		}
		high = p
	}

	var result []theory.Pitch
	for _, p := range pitches {
		for p.MIDI() < low.MIDI() {
			p = octaveUp(p)
		}
		for p.MIDI() > high.MIDI() {
			p = octaveDown(p)
		}
		if p.MIDI() >= low.MIDI() && p.MIDI() <= high.MIDI() {
			result = append(result, p)
		}
	}

	if len(result) > constraints.MaxNotes {
		result = result[:constraints.MaxNotes]
	}
	sortByMIDI(result)
	return result, nil
}

// IntervalsFromBass names the simple interval from the lowest voice to
// each upper voice.
func IntervalsFromBass(pitches []theory.Pitch) []string {
	if len(pitches) < 2 {
		return nil
	}
	bass := pitches[0]
	intervals := make([]string, 0, len(pitches)-1)
	for _, p := range pitches[1:] {
		intervals = append(intervals, theory.IntervalBetween(bass, p))
	}
	return intervals
}

func sortByMIDI(pitches []theory.Pitch) {
	sort.Slice(pitches, func(i, j int) bool {
		return pitches[i].MIDI() < pitches[j].MIDI()
	})
}
