// Package models defines the request and response types for all
// composition operations, plus the uniform response envelope.
package models

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cadenzalabs/composer-api/internal/apierr"
)

const APIVersion = "0.1.0"

// === Enums ===

type Contour string

const (
	ContourArch       Contour = "arch"
	ContourAscending  Contour = "ascending"
	ContourDescending Contour = "descending"
	ContourWave       Contour = "wave"
	ContourStatic     Contour = "static"
)

type Density string

const (
	DensitySparse Density = "sparse"
	DensityMedium Density = "medium"
	DensityDense  Density = "dense"
)

type Style string

const (
	StyleClassical Style = "classical"
	StyleJazz      Style = "jazz"
	StylePop       Style = "pop"
	StyleModal     Style = "modal"
)

type VoicingStyle string

const (
	VoicingClose   VoicingStyle = "close"
	VoicingOpen    VoicingStyle = "open"
	VoicingDrop2   VoicingStyle = "drop2"
	VoicingDrop3   VoicingStyle = "drop3"
	VoicingQuartal VoicingStyle = "quartal"
)

type InputFormat string

const (
	FormatMusicXML InputFormat = "musicxml"
	FormatABC      InputFormat = "abc"
	FormatNotes    InputFormat = "notes"
)

type ChordRhythm string

const (
	ChordPerMeasure ChordRhythm = "per_measure"
	ChordPerBeat    ChordRhythm = "per_beat"
	ChordPerHalf    ChordRhythm = "per_half"
)

type BassMotion string

const (
	BassStepwise BassMotion = "stepwise"
	BassFifths   BassMotion = "fifths"
	BassPedal    BassMotion = "pedal"
	BassAny      BassMotion = "any"
)

// === Validation patterns ===

var (
	notePattern     = regexp.MustCompile(`^[A-Ga-g][#b]?[0-9]$`)
	intervalPattern = regexp.MustCompile(`^(P|M|m|A|d)[1-9][0-9]?$`)
	keyPattern      = regexp.MustCompile(`(?i)^[A-Ga-g][#b]?\s+(major|minor|dorian|phrygian|lydian|mixolydian|aeolian|locrian)$`)
	timeSigPattern  = regexp.MustCompile(`^\d+/\d+$`)
)

// ValidateNote checks note format like C4, F#5, Bb3.
func ValidateNote(value, field string) error {
	if !notePattern.MatchString(value) {
		return apierr.InvalidNote(
			fmt.Sprintf("Invalid note: %s. Expected format: C4, F#5, Bb3", value), field)
	}
	return nil
}

// ValidateKey checks key signature format like "C major" or "D dorian".
func ValidateKey(value string) error {
	if !keyPattern.MatchString(strings.TrimSpace(value)) {
		return apierr.InvalidKey(
			fmt.Sprintf("Invalid key: %s. Expected format: 'C major', 'F# minor', 'D dorian'", value))
	}
	return nil
}

// ValidateInterval checks interval format like P5, M3, m7.
func ValidateInterval(value, field string) error {
	if !intervalPattern.MatchString(value) {
		return apierr.InvalidInterval(
			fmt.Sprintf("Invalid interval: %s. Expected format: P5, M3, m7", value), field)
	}
	return nil
}

// ValidateTimeSignature checks time signature format like 4/4 or 6/8.
func ValidateTimeSignature(value string) error {
	if !timeSigPattern.MatchString(value) {
		return apierr.InvalidTimeSignature(
			fmt.Sprintf("Invalid time signature: %s. Expected format: 4/4, 3/4, 6/8", value))
	}
	return nil
}

// === Requests ===

// MelodyRequest carries the parameters for POST /generate_melody.
type MelodyRequest struct {
	Key                   string   `json:"key" binding:"required"`
	LengthMeasures        int      `json:"length_measures" binding:"required"`
	TimeSignature         string   `json:"time_signature"`
	RangeLow              string   `json:"range_low"`
	RangeHigh             string   `json:"range_high"`
	Contour               Contour  `json:"contour,omitempty"`
	RhythmicDensity       Density  `json:"rhythmic_density"`
	StartNote             string   `json:"start_note,omitempty"`
	EndNote               string   `json:"end_note,omitempty"`
	AvoidLeapsGreaterThan string   `json:"avoid_leaps_greater_than,omitempty"`
	PreferStepwise        *float64 `json:"prefer_stepwise,omitempty"`
	Seed                  *int64   `json:"seed,omitempty"`
	MaxAttempts           int      `json:"max_attempts"`
}

// ApplyDefaults fills unset fields with the documented defaults.
func (r *MelodyRequest) ApplyDefaults() {
	if r.TimeSignature == "" {
		r.TimeSignature = "4/4"
	}
	if r.RangeLow == "" {
		r.RangeLow = "C4"
	}
	if r.RangeHigh == "" {
		r.RangeHigh = "C6"
	}
	if r.RhythmicDensity == "" {
		r.RhythmicDensity = DensityMedium
	}
	if r.PreferStepwise == nil {
		v := 0.7
		r.PreferStepwise = &v
	}
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 100
	}
}

// Validate checks every field eagerly, before any search begins.
func (r *MelodyRequest) Validate() error {
	if err := ValidateKey(r.Key); err != nil {
		return err
	}
	if r.LengthMeasures < 1 || r.LengthMeasures > 64 {
		return apierr.New(apierr.CodeUnsatisfiableConstraints,
			fmt.Sprintf("length_measures must be between 1 and 64, got %d", r.LengthMeasures)).
			WithField("length_measures")
	}
	if err := ValidateTimeSignature(r.TimeSignature); err != nil {
		return err
	}
	if err := ValidateNote(r.RangeLow, "range_low"); err != nil {
		return err
	}
	if err := ValidateNote(r.RangeHigh, "range_high"); err != nil {
		return err
	}
	if r.StartNote != "" {
		if err := ValidateNote(r.StartNote, "start_note"); err != nil {
			return err
		}
	}
	if r.EndNote != "" {
		if err := ValidateNote(r.EndNote, "end_note"); err != nil {
			return err
		}
	}
	if r.AvoidLeapsGreaterThan != "" {
		if err := ValidateInterval(r.AvoidLeapsGreaterThan, "avoid_leaps_greater_than"); err != nil {
			return err
		}
	}
	if ps := *r.PreferStepwise; ps < 0.0 || ps > 1.0 {
		return apierr.New(apierr.CodeUnsatisfiableConstraints,
			fmt.Sprintf("prefer_stepwise must be between 0.0 and 1.0, got %g", ps)).
			WithField("prefer_stepwise")
	}
	if r.MaxAttempts < 1 || r.MaxAttempts > 1000 {
		return apierr.New(apierr.CodeUnsatisfiableConstraints,
			fmt.Sprintf("max_attempts must be between 1 and 1000, got %d", r.MaxAttempts)).
			WithField("max_attempts")
	}
	switch r.Contour {
	case "", ContourArch, ContourAscending, ContourDescending, ContourWave, ContourStatic:
	default:
		return apierr.New(apierr.CodeParseError,
			fmt.Sprintf("Unknown contour: %s", r.Contour)).WithField("contour").
			WithSuggestions("arch", "ascending", "descending", "wave", "static")
	}
	switch r.RhythmicDensity {
	case DensitySparse, DensityMedium, DensityDense:
	default:
		return apierr.New(apierr.CodeParseError,
			fmt.Sprintf("Unknown rhythmic_density: %s", r.RhythmicDensity)).
			WithField("rhythmic_density").WithSuggestions("sparse", "medium", "dense")
	}
	return nil
}

// ReharmonizeRequest carries the parameters for POST /reharmonize.
type ReharmonizeRequest struct {
	Melody        string      `json:"melody" binding:"required"`
	InputFormat   InputFormat `json:"input_format,omitempty"`
	Style         Style       `json:"style" binding:"required"`
	ChordRhythm   ChordRhythm `json:"chord_rhythm"`
	NumOptions    int         `json:"num_options"`
	AllowExtended *bool       `json:"allow_extended,omitempty"`
	BassMotion    BassMotion  `json:"bass_motion"`
}

func (r *ReharmonizeRequest) ApplyDefaults() {
	if r.ChordRhythm == "" {
		r.ChordRhythm = ChordPerMeasure
	}
	if r.NumOptions == 0 {
		r.NumOptions = 3
	}
	if r.BassMotion == "" {
		r.BassMotion = BassAny
	}
}

func (r *ReharmonizeRequest) Validate() error {
	if strings.TrimSpace(r.Melody) == "" {
		return apierr.EmptyInput("Melody is empty", "melody")
	}
	switch r.Style {
	case StyleClassical, StyleJazz, StylePop, StyleModal:
	default:
		return apierr.New(apierr.CodeParseError,
			fmt.Sprintf("Unknown style: %s", r.Style)).WithField("style").
			WithSuggestions("classical", "jazz", "pop", "modal")
	}
	switch r.ChordRhythm {
	case ChordPerMeasure, ChordPerBeat, ChordPerHalf:
	default:
		return apierr.New(apierr.CodeParseError,
			fmt.Sprintf("Unknown chord_rhythm: %s", r.ChordRhythm)).
			WithField("chord_rhythm").
			WithSuggestions("per_measure", "per_beat", "per_half")
	}
	if r.NumOptions < 1 || r.NumOptions > 10 {
		return apierr.New(apierr.CodeUnsatisfiableConstraints,
			fmt.Sprintf("num_options must be between 1 and 10, got %d", r.NumOptions)).
			WithField("num_options")
	}
	switch r.BassMotion {
	case BassStepwise, BassFifths, BassPedal, BassAny:
	default:
		return apierr.New(apierr.CodeParseError,
			fmt.Sprintf("Unknown bass_motion: %s", r.BassMotion)).
			WithField("bass_motion").
			WithSuggestions("stepwise", "fifths", "pedal", "any")
	}
	return nil
}

// RealizeChordRequest carries the parameters for POST /realize_chord.
type RealizeChordRequest struct {
	ChordSymbol     string       `json:"chord_symbol" binding:"required"`
	VoicingStyle    VoicingStyle `json:"voicing_style"`
	Instrument      string       `json:"instrument"`
	Inversion       int          `json:"inversion"`
	BassNote        string       `json:"bass_note,omitempty"`
	RangeLow        string       `json:"range_low,omitempty"`
	RangeHigh       string       `json:"range_high,omitempty"`
	PreviousVoicing []string     `json:"previous_voicing,omitempty"`
}

func (r *RealizeChordRequest) ApplyDefaults() {
	if r.VoicingStyle == "" {
		r.VoicingStyle = VoicingClose
	}
	if r.Instrument == "" {
		r.Instrument = "piano"
	}
}

func (r *RealizeChordRequest) Validate() error {
	if strings.TrimSpace(r.ChordSymbol) == "" {
		return apierr.EmptyInput("chord_symbol is empty", "chord_symbol")
	}
	switch r.VoicingStyle {
	case VoicingClose, VoicingOpen, VoicingDrop2, VoicingDrop3, VoicingQuartal:
	default:
		return apierr.New(apierr.CodeParseError,
			fmt.Sprintf("Unknown voicing_style: %s", r.VoicingStyle)).
			WithField("voicing_style").
			WithSuggestions("close", "open", "drop2", "drop3", "quartal")
	}
	switch r.Instrument {
	case "piano", "guitar", "satb", "strings":
	default:
		return apierr.New(apierr.CodeParseError,
			fmt.Sprintf("Unknown instrument: %s", r.Instrument)).
			WithField("instrument").
			WithSuggestions("piano", "guitar", "satb", "strings")
	}
	if r.Inversion < 0 || r.Inversion > 6 {
		return apierr.New(apierr.CodeUnsatisfiableConstraints,
			fmt.Sprintf("inversion must be between 0 and 6, got %d", r.Inversion)).
			WithField("inversion")
	}
	for field, v := range map[string]string{
		"bass_note": r.BassNote, "range_low": r.RangeLow, "range_high": r.RangeHigh,
	} {
		if v != "" {
			if err := ValidateNote(v, field); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExportMidiRequest carries the parameters for POST /export_midi.
type ExportMidiRequest struct {
	Stream         string      `json:"stream" binding:"required"`
	InputFormat    InputFormat `json:"input_format,omitempty"`
	Tempo          int         `json:"tempo"`
	Humanize       bool        `json:"humanize"`
	HumanizeAmount *float64    `json:"humanize_amount,omitempty"`
	VelocityCurve  string      `json:"velocity_curve"`
	IncludeText    bool        `json:"include_text"`
}

func (r *ExportMidiRequest) ApplyDefaults() {
	if r.Tempo == 0 {
		r.Tempo = 120
	}
	if r.HumanizeAmount == nil {
		v := 0.3
		r.HumanizeAmount = &v
	}
	if r.VelocityCurve == "" {
		r.VelocityCurve = "flat"
	}
}

func (r *ExportMidiRequest) Validate() error {
	if strings.TrimSpace(r.Stream) == "" {
		return apierr.EmptyInput("Stream is empty", "stream")
	}
	if r.Tempo < 20 || r.Tempo > 300 {
		return apierr.New(apierr.CodeUnsatisfiableConstraints,
			fmt.Sprintf("tempo must be between 20 and 300, got %d", r.Tempo)).
			WithField("tempo")
	}
	if v := *r.HumanizeAmount; v < 0.0 || v > 1.0 {
		return apierr.New(apierr.CodeUnsatisfiableConstraints,
			fmt.Sprintf("humanize_amount must be between 0.0 and 1.0, got %g", v)).
			WithField("humanize_amount")
	}
	switch r.VelocityCurve {
	case "flat", "dynamic", "crescendo", "diminuendo":
	default:
		return apierr.New(apierr.CodeParseError,
			fmt.Sprintf("Unknown velocity_curve: %s", r.VelocityCurve)).
			WithField("velocity_curve").
			WithSuggestions("flat", "dynamic", "crescendo", "diminuendo")
	}
	return nil
}
