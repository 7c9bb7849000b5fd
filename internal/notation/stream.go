// Package notation is the notation-layer collaborator: the note-stream
// model, textual parsing and rendering, key analysis, and MIDI export.
package notation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cadenzalabs/composer-api/internal/apierr"
	"github.com/cadenzalabs/composer-api/internal/theory"
)

// TimeSignature is a parsed meter, e.g. 4/4 or 6/8.
type TimeSignature struct {
	Numerator   int
	Denominator int
}

// ParseTimeSignature parses strings like "4/4" or "6/8".
func ParseTimeSignature(s string) (TimeSignature, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return TimeSignature{}, apierr.InvalidTimeSignature(
			fmt.Sprintf("Invalid time signature: %s", s))
	}
	num, err1 := strconv.Atoi(parts[0])
	den, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || num < 1 || den < 1 {
		return TimeSignature{}, apierr.InvalidTimeSignature(
			fmt.Sprintf("Invalid time signature: %s", s))
	}
	return TimeSignature{Numerator: num, Denominator: den}, nil
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator)
}

// QuartersPerMeasure converts the meter to quarter-note units.
func (ts TimeSignature) QuartersPerMeasure() float64 {
	return float64(ts.Numerator) * 4.0 / float64(ts.Denominator)
}

// Event is one sounding element: a single pitch (note) or several (chord),
// with a duration and start offset in quarter-note units.
type Event struct {
	Pitches  []theory.Pitch
	Duration float64
	Offset   float64
	Velocity uint8 // 0 means unset; MIDI export falls back to its default
}

// Stream is an ordered sequence of events with optional meter and key
// attachments.
type Stream struct {
	Events  []Event
	TimeSig TimeSignature
	KeyName string
}

// NewStream returns an empty stream in 4/4.
func NewStream() *Stream {
	return &Stream{TimeSig: TimeSignature{Numerator: 4, Denominator: 4}}
}

// Append places an event at the current end of the stream.
func (s *Stream) Append(pitches []theory.Pitch, duration float64) {
	s.Events = append(s.Events, Event{
		Pitches:  pitches,
		Duration: duration,
		Offset:   s.TotalDuration(),
	})
}

// AppendNote places a single note at the current end of the stream.
func (s *Stream) AppendNote(p theory.Pitch, duration float64) {
	s.Append([]theory.Pitch{p}, duration)
}

// InsertAt places an event at an explicit offset.
func (s *Stream) InsertAt(offset float64, pitches []theory.Pitch, duration float64) {
	s.Events = append(s.Events, Event{Pitches: pitches, Duration: duration, Offset: offset})
}

// TotalDuration is the end offset of the stream in quarter-note units.
func (s *Stream) TotalDuration() float64 {
	end := 0.0
	for _, ev := range s.Events {
		if ev.Offset+ev.Duration > end {
			end = ev.Offset + ev.Duration
		}
	}
	return end
}

// NoteCount counts individual pitches across all events.
func (s *Stream) NoteCount() int {
	n := 0
	for _, ev := range s.Events {
		n += len(ev.Pitches)
	}
	return n
}

// PitchClassesAt returns the distinct pitch-class spellings of every pitch
// sounding within [offset, offset+window).
func (s *Stream) PitchClassesAt(offset, window float64) []string {
	seen := make(map[string]bool)
	var names []string
	for _, ev := range s.Events {
		if ev.Offset < offset+window && ev.Offset+ev.Duration > offset {
			for _, p := range ev.Pitches {
				name := p.ClassName()
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
		}
	}
	return names
}

// durationName maps a quarter-note length to a notation type name.
// Unrecognized lengths report as quarter.
func durationName(quarters float64) string {
	switch quarters {
	case 4.0:
		return "whole"
	case 3.0:
		return "half" // dotted half, dot reported separately
	case 2.0:
		return "half"
	case 1.5:
		return "quarter"
	case 1.0:
		return "quarter"
	case 0.75:
		return "eighth"
	case 0.5:
		return "eighth"
	case 0.25:
		return "16th"
	}
	return "quarter"
}

// DurationName exposes the notation type name of a quarter-note length.
func DurationName(quarters float64) string { return durationName(quarters) }

// IsDotted reports whether a quarter-note length is a dotted base type.
func IsDotted(quarters float64) bool {
	switch quarters {
	case 3.0, 1.5, 0.75:
		return true
	}
	return false
}
