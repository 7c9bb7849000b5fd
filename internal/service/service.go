// Package service is the protocol-independent composition core: the HTTP
// handlers and the CLI both call it.
package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/cadenzalabs/composer-api/internal/harmonize"
	"github.com/cadenzalabs/composer-api/internal/logger"
	"github.com/cadenzalabs/composer-api/internal/melody"
	"github.com/cadenzalabs/composer-api/internal/metrics"
	"github.com/cadenzalabs/composer-api/internal/models"
	"github.com/cadenzalabs/composer-api/internal/notation"
	"github.com/cadenzalabs/composer-api/internal/voicing"
)

// Matches the request-validation ceiling on max_attempts.
const defaultAttemptCap = 1000

// Global metrics instance
var searchMetrics = metrics.NewSentryMetrics()

// CompositionService implements every composition operation.
type CompositionService struct {
	maxAttempts int // deployment cap on caller-supplied max_attempts
}

func NewCompositionService(maxAttempts int) *CompositionService {
	if maxAttempts <= 0 {
		maxAttempts = defaultAttemptCap
	}
	return &CompositionService{maxAttempts: maxAttempts}
}

// GenerateMelody runs the melody search loop and renders the winner.
// Requests asking for more attempts than the configured cap are clamped.
func (s *CompositionService) GenerateMelody(req models.MelodyRequest) (*models.MelodyResponseData, []models.Warning, error) {
	start := time.Now()

	if req.MaxAttempts > s.maxAttempts {
		req.MaxAttempts = s.maxAttempts
	}

	result, err := melody.Generate(req)
	if err != nil {
		return nil, nil, err
	}

	stream := notation.NewStream()
	stream.TimeSig, _ = notation.ParseTimeSignature(req.TimeSignature)
	stream.KeyName = result.Key.String()
	for _, n := range result.Notes {
		stream.AppendNote(n.Pitch, n.Duration)
	}

	xml, err := notation.ToMusicXML(stream)
	if err != nil {
		return nil, nil, err
	}

	beatsPerMeasure := stream.TimeSig.Numerator
	notesData := make([]models.NoteData, 0, len(result.Notes))
	measure := 1
	beat := 1.0
	for _, n := range result.Notes {
		notesData = append(notesData, models.NoteData{
			Pitch:    n.Pitch.Name(),
			Duration: notation.DurationName(n.Duration),
			Measure:  measure,
			Beat:     beat,
		})
		beat += n.Duration
		for beat > float64(beatsPerMeasure) {
			beat -= float64(beatsPerMeasure)
			measure++
		}
	}

	lowest := result.Notes[0].Pitch
	highest := result.Notes[0].Pitch
	for _, n := range result.Notes[1:] {
		if n.Pitch.MIDI() < lowest.MIDI() {
			lowest = n.Pitch
		}
		if n.Pitch.MIDI() > highest.MIDI() {
			highest = n.Pitch
		}
	}

	elapsed := time.Since(start)
	logger.LogSearchRequest("generate_melody", req.MaxAttempts, elapsed, logger.Fields{
		"key":        req.Key,
		"note_count": len(result.Notes),
	})
	searchMetrics.RecordSearchMetrics(context.Background(), "generate_melody", req.MaxAttempts, elapsed)

	return &models.MelodyResponseData{
		Melody: models.MelodyData{
			MusicXML: xml,
			Notes:    notesData,
		},
		Metadata: models.MelodyMetadata{
			Measures:    req.LengthMeasures,
			NoteCount:   len(result.Notes),
			ActualRange: fmt.Sprintf("%s-%s", lowest.Name(), highest.Name()),
			Key:         req.Key,
			SeedUsed:    result.SeedUsed,
		},
	}, result.Warnings, nil
}

// Reharmonize parses the melody and runs the reharmonization search loop.
func (s *CompositionService) Reharmonize(req models.ReharmonizeRequest) (*models.ReharmonizeResponseData, error) {
	start := time.Now()

	stream, err := notation.Parse(req.Melody, req.InputFormat)
	if err != nil {
		return nil, err
	}

	result, err := harmonize.Reharmonize(stream, req.Melody, req)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	logger.LogSearchRequest("reharmonize_melody", req.NumOptions*5, elapsed, logger.Fields{
		"style":        string(req.Style),
		"detected_key": result.DetectedKey,
	})
	searchMetrics.RecordSearchMetrics(context.Background(), "reharmonize_melody", req.NumOptions*5, elapsed)
	return result, nil
}

// RealizeChord voices a chord symbol.
func (s *CompositionService) RealizeChord(req models.RealizeChordRequest) (*models.ChordResponseData, error) {
	return voicing.Realize(req)
}

// ExportMidi renders a textual stream as a base64 Standard MIDI File,
// optionally humanized.
func (s *CompositionService) ExportMidi(req models.ExportMidiRequest) (*models.MidiResponseData, error) {
	stream, err := notation.Parse(req.Stream, req.InputFormat)
	if err != nil {
		return nil, err
	}

	if req.Humanize {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		notation.Humanize(stream, *req.HumanizeAmount, req.VelocityCurve, rng)
	}

	midiBytes, err := notation.ToMIDI(stream, req.Tempo)
	if err != nil {
		return nil, err
	}

	totalQuarters := stream.TotalDuration()
	durationSeconds := totalQuarters * 60.0 / float64(req.Tempo)

	quartersPerMeasure := stream.TimeSig.QuartersPerMeasure()
	measures := int(math.Ceil(totalQuarters / quartersPerMeasure))
	if measures < 1 {
		measures = 1
	}

	keySignature := ""
	if stream.NoteCount() > 0 {
		keySignature = notation.AnalyzeKey(stream).String()
	}

	data := &models.MidiResponseData{
		Midi: models.MidiData{
			Base64:          base64.StdEncoding.EncodeToString(midiBytes),
			DurationSeconds: math.Round(durationSeconds*100) / 100,
			TrackCount:      1,
			Tempo:           req.Tempo,
		},
		Metadata: models.MidiMetadata{
			Measures:      measures,
			TimeSignature: stream.TimeSig.String(),
			KeySignature:  keySignature,
			NoteCount:     stream.NoteCount(),
		},
	}
	if req.IncludeText {
		data.Text = notation.ToText(stream)
	}
	return data, nil
}
