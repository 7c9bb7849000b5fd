package voicing

import (
	"fmt"

	"github.com/cadenzalabs/composer-api/internal/apierr"
	"github.com/cadenzalabs/composer-api/internal/models"
	"github.com/cadenzalabs/composer-api/internal/notation"
	"github.com/cadenzalabs/composer-api/internal/theory"
)

// Realize voices a chord symbol for a target instrument and returns the
// concrete pitches with analysis plus up to two alternative layouts.
func Realize(req models.RealizeChordRequest) (*models.ChordResponseData, error) {
	cs, err := theory.ParseChordSymbol(req.ChordSymbol)
	if err != nil {
		return nil, err
	}

	pitches := cs.Pitches()
	if len(pitches) == 0 {
		return nil, apierr.InvalidChordSymbol(
			fmt.Sprintf("Chord symbol '%s' produced no pitches", req.ChordSymbol)).
			WithField("chord_symbol")
	}

	if req.BassNote != "" {
		bass, err := theory.ParsePitch(req.BassNote)
		if err != nil {
			return nil, apierr.InvalidNote(fmt.Sprintf("Invalid note: %s", req.BassNote), "bass_note")
		}
		filtered := make([]theory.Pitch, 0, len(pitches)+1)
		filtered = append(filtered, bass)
		for _, p := range pitches {
			if p.Class() != bass.Class() {
				filtered = append(filtered, p)
			}
		}
		pitches = filtered
	}

	voiced := voiceWith(req.VoicingStyle, pitches, req.Inversion)
	voiced, err = ApplyRange(voiced, req.RangeLow, req.RangeHigh, req.Instrument)
	if err != nil {
		return nil, err
	}

	xml, err := voicingMusicXML(voiced)
	if err != nil {
		return nil, err
	}

	quality := cs.Quality
	if quality == "" {
		quality = "unknown"
	}

	data := &models.ChordResponseData{
		Voicing: models.VoicingData{
			Notes:       pitchNames(voiced),
			MidiPitches: midiValues(voiced),
			MusicXML:    xml,
		},
		Analysis: models.VoicingAnalysis{
			ChordQuality:      quality,
			VoicingStyle:      string(req.VoicingStyle),
			Inversion:         req.Inversion,
			IntervalsFromBass: IntervalsFromBass(voiced),
		},
		Alternatives: []models.VoicingAlternative{},
	}

	for _, style := range alternativeStyles(req.VoicingStyle) {
		var alt []theory.Pitch
		switch style {
		case models.VoicingClose:
			alt = Close(pitches, 0)
		case models.VoicingDrop2:
			alt = Drop2(pitches)
		case models.VoicingDrop3:
			alt = Drop3(pitches)
		default:
			continue
		}
		alt, err = ApplyRange(alt, req.RangeLow, req.RangeHigh, req.Instrument)
		if err != nil {
			return nil, err
		}
		data.Alternatives = append(data.Alternatives, models.VoicingAlternative{
			Notes: pitchNames(alt),
			Style: string(style),
		})
	}

	return data, nil
}

func voiceWith(style models.VoicingStyle, pitches []theory.Pitch, inversion int) []theory.Pitch {
	switch style {
	case models.VoicingOpen:
		return Open(pitches, inversion)
	case models.VoicingDrop2:
		return Drop2(pitches)
	case models.VoicingDrop3:
		return Drop3(pitches)
	case models.VoicingQuartal:
		return Quartal(pitches[0])
	default:
		return Close(pitches, inversion)
	}
}

// alternativeStyles picks the first two styles other than the chosen one,
// in the fixed close/open/drop2/drop3/quartal order.
func alternativeStyles(chosen models.VoicingStyle) []models.VoicingStyle {
	order := []models.VoicingStyle{
		models.VoicingClose, models.VoicingOpen,
		models.VoicingDrop2, models.VoicingDrop3, models.VoicingQuartal,
	}
	var alts []models.VoicingStyle
	for _, s := range order {
		if s == chosen {
			continue
		}
		alts = append(alts, s)
		if len(alts) == 2 {
			break
		}
	}
	return alts
}

func voicingMusicXML(pitches []theory.Pitch) (string, error) {
	s := notation.NewStream()
	s.Append(pitches, 4)
	return notation.ToMusicXML(s)
}

func pitchNames(pitches []theory.Pitch) []string {
	names := make([]string, len(pitches))
	for i, p := range pitches {
		names[i] = p.Name()
	}
	return names
}

func midiValues(pitches []theory.Pitch) []int {
	values := make([]int, len(pitches))
	for i, p := range pitches {
		values[i] = p.MIDI()
	}
	return values
}
