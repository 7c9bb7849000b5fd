package models

import (
	"errors"

	"github.com/cadenzalabs/composer-api/internal/apierr"
)

// Warning describes a non-fatal adjustment made while fulfilling a request.
type Warning struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Location *int   `json:"location,omitempty"`
}

// ErrorDetail is the wire form of an apierr.Error.
type ErrorDetail struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Field       string   `json:"field,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// APIResponse is the uniform envelope every operation returns.
type APIResponse struct {
	Success    bool         `json:"success"`
	Data       any          `json:"data"`
	Warnings   []Warning    `json:"warnings"`
	Error      *ErrorDetail `json:"error"`
	APIVersion string       `json:"api_version"`
}

// SuccessResponse wraps a payload in a successful envelope.
func SuccessResponse(data any, warnings ...Warning) APIResponse {
	if warnings == nil {
		warnings = []Warning{}
	}
	return APIResponse{
		Success:    true,
		Data:       data,
		Warnings:   warnings,
		APIVersion: APIVersion,
	}
}

// ErrorResponse wraps an error in a failure envelope. Unknown error types
// map to INTERNAL_ERROR; they never leak a partial payload.
func ErrorResponse(err error) APIResponse {
	detail := &ErrorDetail{Code: apierr.CodeInternal, Message: err.Error()}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		detail = &ErrorDetail{
			Code:        ae.Code,
			Message:     ae.Message,
			Field:       ae.Field,
			Suggestions: ae.Suggestions,
		}
	}
	return APIResponse{
		Success:    false,
		Warnings:   []Warning{},
		Error:      detail,
		APIVersion: APIVersion,
	}
}

// === Payloads ===

// NoteData is a single note in a melody response.
type NoteData struct {
	Pitch    string  `json:"pitch"`
	Duration string  `json:"duration"`
	Measure  int     `json:"measure"`
	Beat     float64 `json:"beat"`
}

type MelodyData struct {
	MusicXML string     `json:"musicxml"`
	Notes    []NoteData `json:"notes"`
}

type MelodyMetadata struct {
	Measures    int    `json:"measures"`
	NoteCount   int    `json:"note_count"`
	ActualRange string `json:"actual_range"`
	Key         string `json:"key"`
	SeedUsed    int64  `json:"seed_used"`
}

type MelodyResponseData struct {
	Melody   MelodyData     `json:"melody"`
	Metadata MelodyMetadata `json:"metadata"`
}

// HarmonizationScores holds the three component scores and their mean.
type HarmonizationScores struct {
	VoiceLeading   float64 `json:"voice_leading"`
	ChordMelodyFit float64 `json:"chord_melody_fit"`
	StyleAdherence float64 `json:"style_adherence"`
	Overall        float64 `json:"overall"`
}

type Harmonization struct {
	Rank          int                 `json:"rank"`
	Chords        []string            `json:"chords"`
	RomanNumerals []string            `json:"roman_numerals"`
	MusicXML      string              `json:"musicxml"`
	Scores        HarmonizationScores `json:"scores"`
}

type ReharmonizeResponseData struct {
	DetectedKey    string          `json:"detected_key"`
	ChordRhythm    ChordRhythm     `json:"chord_rhythm"`
	Style          Style           `json:"style"`
	Harmonizations []Harmonization `json:"harmonizations"`
}

type VoicingData struct {
	Notes       []string `json:"notes"`
	MidiPitches []int    `json:"midi_pitches"`
	MusicXML    string   `json:"musicxml"`
}

type VoicingAnalysis struct {
	ChordQuality      string   `json:"chord_quality"`
	VoicingStyle      string   `json:"voicing_style"`
	Inversion         int      `json:"inversion"`
	IntervalsFromBass []string `json:"intervals_from_bass"`
}

type VoicingAlternative struct {
	Notes []string `json:"notes"`
	Style string   `json:"style"`
}

type ChordResponseData struct {
	Voicing      VoicingData          `json:"voicing"`
	Analysis     VoicingAnalysis      `json:"analysis"`
	Alternatives []VoicingAlternative `json:"alternatives"`
}

type MidiData struct {
	Base64          string  `json:"base64"`
	DurationSeconds float64 `json:"duration_seconds"`
	TrackCount      int     `json:"track_count"`
	Tempo           int     `json:"tempo"`
}

type MidiMetadata struct {
	Measures      int    `json:"measures"`
	TimeSignature string `json:"time_signature"`
	KeySignature  string `json:"key_signature,omitempty"`
	NoteCount     int    `json:"note_count"`
}

type MidiResponseData struct {
	Midi     MidiData     `json:"midi"`
	Metadata MidiMetadata `json:"metadata"`
	Text     string       `json:"text,omitempty"`
}
