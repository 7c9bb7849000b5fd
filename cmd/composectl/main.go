// Package main is the entry point for the composectl CLI
package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cadenzalabs/composer-api/internal/models"
	"github.com/cadenzalabs/composer-api/internal/service"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	keyName        string
	lengthMeasures int
	contourName    string
	densityName    string
	rangeLow       string
	rangeHigh      string
	seedValue      int64
	styleName      string
	chordRhythm    string
	numOptions     int
	voicingStyle   string
	instrument     string
	tempoBPM       int
	outputFile     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "composectl",
	Short: "Generate melodies, harmonizations and chord voicings",
	Long: `composectl runs the composition engine from the command line.

Examples:
  composectl melody --key "C major" --measures 4 --contour arch
  composectl reharmonize "C4 E4 G4 E4" --style jazz
  composectl chord Cmaj7 --voicing drop2 --instrument guitar
  composectl midi "C4 D4 E4 F4" -o phrase.mid`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var melodyCmd = &cobra.Command{
	Use:   "melody",
	Short: "Generate a melody from constraints",
	RunE:  runMelody,
}

var reharmonizeCmd = &cobra.Command{
	Use:   "reharmonize <melody>",
	Short: "Generate chord progressions for a melody",
	Args:  cobra.ExactArgs(1),
	RunE:  runReharmonize,
}

var chordCmd = &cobra.Command{
	Use:   "chord <symbol>",
	Short: "Voice a chord symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runChord,
}

var midiCmd = &cobra.Command{
	Use:   "midi <stream>",
	Short: "Export a note stream as a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runMidi,
}

func init() {
	melodyCmd.Flags().StringVarP(&keyName, "key", "k", "C major", "Key signature")
	melodyCmd.Flags().IntVarP(&lengthMeasures, "measures", "m", 4, "Length in measures")
	melodyCmd.Flags().StringVarP(&contourName, "contour", "c", "", "Contour shape (arch, ascending, descending, wave, static)")
	melodyCmd.Flags().StringVarP(&densityName, "density", "d", "medium", "Rhythmic density (sparse, medium, dense)")
	melodyCmd.Flags().StringVar(&rangeLow, "low", "C4", "Lowest allowed pitch")
	melodyCmd.Flags().StringVar(&rangeHigh, "high", "C6", "Highest allowed pitch")
	melodyCmd.Flags().Int64VarP(&seedValue, "seed", "s", 0, "Random seed (0 draws a fresh one)")

	reharmonizeCmd.Flags().StringVarP(&styleName, "style", "s", "classical", "Harmonization style (classical, jazz, pop, modal)")
	reharmonizeCmd.Flags().StringVarP(&chordRhythm, "rhythm", "r", "per_measure", "Chord rhythm (per_measure, per_beat, per_half)")
	reharmonizeCmd.Flags().IntVarP(&numOptions, "options", "n", 3, "Number of harmonizations")

	chordCmd.Flags().StringVarP(&voicingStyle, "voicing", "v", "close", "Voicing style (close, open, drop2, drop3, quartal)")
	chordCmd.Flags().StringVarP(&instrument, "instrument", "i", "piano", "Target instrument (piano, guitar, satb, strings)")

	midiCmd.Flags().IntVarP(&tempoBPM, "tempo", "t", 120, "Tempo in BPM")
	midiCmd.Flags().StringVarP(&outputFile, "output", "o", "out.mid", "Output .mid file path")

	rootCmd.AddCommand(melodyCmd)
	rootCmd.AddCommand(reharmonizeCmd)
	rootCmd.AddCommand(chordCmd)
	rootCmd.AddCommand(midiCmd)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runMelody(cmd *cobra.Command, args []string) error {
	req := models.MelodyRequest{
		Key:             keyName,
		LengthMeasures:  lengthMeasures,
		Contour:         models.Contour(contourName),
		RhythmicDensity: models.Density(densityName),
		RangeLow:        rangeLow,
		RangeHigh:       rangeHigh,
	}
	if seedValue != 0 {
		req.Seed = &seedValue
	}
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return err
	}

	svc := service.NewCompositionService(0)
	data, warnings, err := svc.GenerateMelody(req)
	if err != nil {
		return err
	}

	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.Message)
	}

	pitches := make([]string, len(data.Melody.Notes))
	for i, n := range data.Melody.Notes {
		pitches[i] = n.Pitch
	}
	fmt.Printf("key=%s seed=%d range=%s\n", data.Metadata.Key, data.Metadata.SeedUsed, data.Metadata.ActualRange)
	fmt.Println(strings.Join(pitches, " "))
	return nil
}

func runReharmonize(cmd *cobra.Command, args []string) error {
	req := models.ReharmonizeRequest{
		Melody:      args[0],
		Style:       models.Style(styleName),
		ChordRhythm: models.ChordRhythm(chordRhythm),
		NumOptions:  numOptions,
	}
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return err
	}

	svc := service.NewCompositionService(0)
	data, err := svc.Reharmonize(req)
	if err != nil {
		return err
	}

	fmt.Printf("detected key: %s\n", data.DetectedKey)
	for _, h := range data.Harmonizations {
		fmt.Printf("%d. %s  (overall %.2f)\n", h.Rank, strings.Join(h.Chords, " "), h.Scores.Overall)
	}
	return nil
}

func runChord(cmd *cobra.Command, args []string) error {
	req := models.RealizeChordRequest{
		ChordSymbol:  args[0],
		VoicingStyle: models.VoicingStyle(voicingStyle),
		Instrument:   instrument,
	}
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return err
	}

	svc := service.NewCompositionService(0)
	data, err := svc.RealizeChord(req)
	if err != nil {
		return err
	}
	return printJSON(data)
}

func runMidi(cmd *cobra.Command, args []string) error {
	req := models.ExportMidiRequest{
		Stream: args[0],
		Tempo:  tempoBPM,
	}
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return err
	}

	svc := service.NewCompositionService(0)
	data, err := svc.ExportMidi(req)
	if err != nil {
		return err
	}

	raw, err := base64.StdEncoding.DecodeString(data.Midi.Base64)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputFile, raw, 0644); err != nil {
		return err
	}

	fmt.Printf("Wrote %s (%d notes, %.2fs at %d bpm)\n",
		outputFile, data.Metadata.NoteCount, data.Midi.DurationSeconds, data.Midi.Tempo)
	return nil
}
