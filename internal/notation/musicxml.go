package notation

import (
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"github.com/cadenzalabs/composer-api/internal/apierr"
	"github.com/cadenzalabs/composer-api/internal/theory"
)

// Divisions per quarter note used when rendering.
const xmlDivisions = 480

// === Wire structures (score-partwise subset) ===

type xmlScore struct {
	XMLName  xml.Name     `xml:"score-partwise"`
	Version  string       `xml:"version,attr,omitempty"`
	PartList *xmlPartList `xml:"part-list,omitempty"`
	Parts    []xmlPart    `xml:"part"`
}

type xmlPartList struct {
	ScoreParts []xmlScorePart `xml:"score-part"`
}

type xmlScorePart struct {
	ID       string `xml:"id,attr"`
	PartName string `xml:"part-name"`
}

type xmlPart struct {
	ID       string       `xml:"id,attr,omitempty"`
	Measures []xmlMeasure `xml:"measure"`
}

type xmlMeasure struct {
	Number     int            `xml:"number,attr"`
	Attributes *xmlAttributes `xml:"attributes,omitempty"`
	Notes      []xmlNote      `xml:"note"`
}

type xmlAttributes struct {
	Divisions int      `xml:"divisions,omitempty"`
	Time      *xmlTime `xml:"time,omitempty"`
}

type xmlTime struct {
	Beats    int `xml:"beats"`
	BeatType int `xml:"beat-type"`
}

type xmlNote struct {
	Chord    *struct{} `xml:"chord,omitempty"`
	Rest     *struct{} `xml:"rest,omitempty"`
	Pitch    *xmlPitch `xml:"pitch,omitempty"`
	Duration int       `xml:"duration"`
	Type     string    `xml:"type,omitempty"`
	Dot      *struct{} `xml:"dot,omitempty"`
}

type xmlPitch struct {
	Step   string `xml:"step"`
	Alter  int    `xml:"alter,omitempty"`
	Octave int    `xml:"octave"`
}

// parseMusicXML reads the score-partwise subset we emit: parts, measures,
// notes with pitch/duration, chord grouping, rests, divisions, and time
// signatures.
func parseMusicXML(input string) (*Stream, error) {
	var score xmlScore
	if err := xml.Unmarshal([]byte(input), &score); err != nil {
		return nil, apierr.Parse(fmt.Sprintf("Failed to parse input: %v", err))
	}
	if len(score.Parts) == 0 {
		return nil, apierr.Parse("Score contains no parts")
	}

	s := NewStream()
	divisions := xmlDivisions
	offset := 0.0

	for _, measure := range score.Parts[0].Measures {
		if measure.Attributes != nil {
			if measure.Attributes.Divisions > 0 {
				divisions = measure.Attributes.Divisions
			}
			if t := measure.Attributes.Time; t != nil && t.Beats > 0 && t.BeatType > 0 {
				s.TimeSig = TimeSignature{Numerator: t.Beats, Denominator: t.BeatType}
			}
		}
		for _, n := range measure.Notes {
			dur := float64(n.Duration) / float64(divisions)
			if n.Rest != nil || n.Pitch == nil {
				offset += dur
				continue
			}
			name := n.Pitch.Step
			switch {
			case n.Pitch.Alter > 0:
				name += strings.Repeat("#", n.Pitch.Alter)
			case n.Pitch.Alter < 0:
				name += strings.Repeat("b", -n.Pitch.Alter)
			}
			p, err := theory.ParsePitch(fmt.Sprintf("%s%d", name, n.Pitch.Octave))
			if err != nil {
				return nil, apierr.Parse(fmt.Sprintf("Invalid pitch in score: %s%d", name, n.Pitch.Octave))
			}
			if n.Chord != nil && len(s.Events) > 0 {
				last := &s.Events[len(s.Events)-1]
				last.Pitches = append(last.Pitches, p)
				continue
			}
			s.InsertAt(offset, []theory.Pitch{p}, dur)
			offset += dur
		}
	}

	if len(s.Events) == 0 {
		return nil, apierr.Parse("Score contains no notes")
	}
	return s, nil
}

// ToMusicXML renders a stream as score-partwise markup, one part, measures
// cut by the stream's time signature.
func ToMusicXML(s *Stream) (string, error) {
	perMeasure := s.TimeSig.QuartersPerMeasure()
	if perMeasure <= 0 {
		perMeasure = 4.0
	}

	measureCount := int(math.Ceil(s.TotalDuration() / perMeasure))
	if measureCount == 0 {
		measureCount = 1
	}

	measures := make([]xmlMeasure, measureCount)
	for i := range measures {
		measures[i] = xmlMeasure{Number: i + 1}
	}
	measures[0].Attributes = &xmlAttributes{
		Divisions: xmlDivisions,
		Time:      &xmlTime{Beats: s.TimeSig.Numerator, BeatType: s.TimeSig.Denominator},
	}

	for _, ev := range s.Events {
		idx := int(ev.Offset / perMeasure)
		if idx >= measureCount {
			idx = measureCount - 1
		}
		ticks := int(math.Round(ev.Duration * xmlDivisions))
		for pi, p := range ev.Pitches {
			n := xmlNote{
				Pitch:    pitchToXML(p),
				Duration: ticks,
				Type:     durationName(ev.Duration),
			}
			if IsDotted(ev.Duration) {
				n.Dot = &struct{}{}
			}
			if pi > 0 {
				n.Chord = &struct{}{}
			}
			measures[idx].Notes = append(measures[idx].Notes, n)
		}
	}

	score := xmlScore{
		Version: "4.0",
		PartList: &xmlPartList{ScoreParts: []xmlScorePart{
			{ID: "P1", PartName: "Music"},
		}},
		Parts: []xmlPart{{ID: "P1", Measures: measures}},
	}

	out, err := xml.MarshalIndent(score, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render musicxml: %w", err)
	}
	return xml.Header + string(out), nil
}

func pitchToXML(p theory.Pitch) *xmlPitch {
	name := p.ClassName()
	step := name[:1]
	alter := strings.Count(name, "#") - strings.Count(name, "b")
	octave := p.MIDI()/12 - 1
	if step == "C" && alter < 0 {
		octave++
	} else if step == "B" && alter > 0 {
		octave--
	}
	return &xmlPitch{Step: step, Alter: alter, Octave: octave}
}

// ToText renders a stream in the compact token form ("C4:q D4:e ...").
func ToText(s *Stream) string {
	codeFor := func(d float64) string {
		switch d {
		case 4.0:
			return "w"
		case 3.0:
			return "hd"
		case 2.0:
			return "h"
		case 1.5:
			return "qd"
		case 1.0:
			return "q"
		case 0.75:
			return "ed"
		case 0.5:
			return "e"
		case 0.25:
			return "s"
		}
		return "q"
	}

	var parts []string
	for _, ev := range s.Events {
		for _, p := range ev.Pitches {
			parts = append(parts, p.Name()+":"+codeFor(ev.Duration))
		}
	}
	return strings.Join(parts, " ")
}
