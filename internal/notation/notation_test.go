package notation

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadenzalabs/composer-api/internal/models"
	"github.com/cadenzalabs/composer-api/internal/theory"
)

func TestParseTimeSignature(t *testing.T) {
	ts, err := ParseTimeSignature("6/8")
	require.NoError(t, err)
	assert.Equal(t, 6, ts.Numerator)
	assert.Equal(t, 8, ts.Denominator)
	assert.Equal(t, "6/8", ts.String())
	assert.InDelta(t, 3.0, ts.QuartersPerMeasure(), 1e-9)

	for _, in := range []string{"", "4", "4/0", "0/4", "a/b", "4/4/4"} {
		_, err := ParseTimeSignature(in)
		assert.Error(t, err, in)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		input string
		want  models.InputFormat
	}{
		{`<?xml version="1.0"?><score-partwise/>`, models.FormatMusicXML},
		{"X:1\nK:C\nCDEF", models.FormatABC},
		{"C4 D4 E4", models.FormatNotes},
		{"  f#3:e g3:q", models.FormatNotes},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := DetectFormat("")
	assert.Error(t, err)

	_, err = DetectFormat("not music at all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detect")
}

func TestParseNoteListDurations(t *testing.T) {
	s, err := ParseNoteList("C4:q, D4:e E4:h G4:qd A4")
	require.NoError(t, err)
	require.Len(t, s.Events, 5)

	wantDur := []float64{1.0, 0.5, 2.0, 1.5, 1.0}
	offset := 0.0
	for i, ev := range s.Events {
		assert.InDelta(t, wantDur[i], ev.Duration, 1e-9)
		assert.InDelta(t, offset, ev.Offset, 1e-9)
		offset += ev.Duration
	}
	assert.Equal(t, "C4", s.Events[0].Pitches[0].Name())
	assert.InDelta(t, 6.0, s.TotalDuration(), 1e-9)
}

func TestParseNoteListRejectsBadInput(t *testing.T) {
	_, err := ParseNoteList("C4 X9 E4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid pitch")

	_, err = ParseNoteList("   ")
	assert.Error(t, err)
}

func TestParseABCTune(t *testing.T) {
	input := "X:1\nT:Test\nM:3/4\nL:1/4\nK:G\nG A B | c2 z B"
	s, err := Parse(input, models.FormatABC)
	require.NoError(t, err)

	assert.Equal(t, TimeSignature{Numerator: 3, Denominator: 4}, s.TimeSig)
	assert.Equal(t, "G", s.KeyName)

	require.Len(t, s.Events, 5)
	names := make([]string, len(s.Events))
	for i, ev := range s.Events {
		names[i] = ev.Pitches[0].Name()
	}
	assert.Equal(t, []string{"G4", "A4", "B4", "C5", "B4"}, names)

	// c2 lasts two units and the rest advances one more.
	assert.InDelta(t, 2.0, s.Events[3].Duration, 1e-9)
	assert.InDelta(t, 6.0, s.Events[4].Offset, 1e-9)
}

func TestParseABCAccidentalsAndOctaveMarks(t *testing.T) {
	s, err := Parse("L:1/4\n^F _B, =c'", models.FormatABC)
	require.NoError(t, err)
	require.Len(t, s.Events, 3)
	assert.Equal(t, "F#4", s.Events[0].Pitches[0].Name())
	assert.Equal(t, "Bb3", s.Events[1].Pitches[0].Name())
	assert.Equal(t, "C6", s.Events[2].Pitches[0].Name())

	_, err = Parse("L:1/4\n^ G", models.FormatABC)
	assert.Error(t, err)
}

func TestMusicXMLRoundTrip(t *testing.T) {
	s := NewStream()
	s.TimeSig = TimeSignature{Numerator: 3, Denominator: 4}
	s.AppendNote(theory.MustPitch("C4"), 1.0)
	s.AppendNote(theory.MustPitch("F#4"), 0.5)
	s.Append([]theory.Pitch{theory.MustPitch("G4"), theory.MustPitch("B4")}, 1.5)

	out, err := ToMusicXML(s)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, "<score-partwise")

	parsed, err := Parse(out, models.FormatMusicXML)
	require.NoError(t, err)
	assert.Equal(t, s.TimeSig, parsed.TimeSig)
	assert.Equal(t, s.NoteCount(), parsed.NoteCount())

	require.Len(t, parsed.Events, 3)
	assert.Equal(t, "C4", parsed.Events[0].Pitches[0].Name())
	assert.Equal(t, "F#4", parsed.Events[1].Pitches[0].Name())
	assert.Len(t, parsed.Events[2].Pitches, 2)
	assert.InDelta(t, 1.5, parsed.Events[2].Duration, 1e-9)
}

func TestToText(t *testing.T) {
	s := NewStream()
	s.AppendNote(theory.MustPitch("C4"), 1.0)
	s.AppendNote(theory.MustPitch("D4"), 0.5)
	s.AppendNote(theory.MustPitch("E4"), 1.5)
	assert.Equal(t, "C4:q D4:e E4:qd", ToText(s))
}

func TestDurationNames(t *testing.T) {
	assert.Equal(t, "whole", DurationName(4.0))
	assert.Equal(t, "half", DurationName(3.0))
	assert.Equal(t, "eighth", DurationName(0.75))
	assert.Equal(t, "16th", DurationName(0.25))
	assert.Equal(t, "quarter", DurationName(0.37))

	assert.True(t, IsDotted(1.5))
	assert.True(t, IsDotted(3.0))
	assert.False(t, IsDotted(1.0))
}

func TestPitchClassesAt(t *testing.T) {
	s := NewStream()
	s.AppendNote(theory.MustPitch("C4"), 1.0)
	s.Append([]theory.Pitch{theory.MustPitch("E4"), theory.MustPitch("G4")}, 1.0)
	s.AppendNote(theory.MustPitch("C5"), 2.0)

	assert.Equal(t, []string{"C"}, s.PitchClassesAt(0, 1.0))
	assert.ElementsMatch(t, []string{"E", "G"}, s.PitchClassesAt(1.0, 1.0))
	// The window spans the chord and the held C, deduplicated by spelling.
	assert.ElementsMatch(t, []string{"E", "G", "C"}, s.PitchClassesAt(1.0, 3.0))
	assert.Empty(t, s.PitchClassesAt(10.0, 1.0))
}

func TestAnalyzeKey(t *testing.T) {
	major, err := ParseNoteList("C4 E4 G4 C5:h G4 E4 D4 C4:h")
	require.NoError(t, err)
	k := AnalyzeKey(major)
	assert.Equal(t, 0, k.TonicPC)
	assert.Equal(t, theory.ModeMajor, k.Mode)

	minor, err := ParseNoteList("A3:h C4 E4 A4 E4 C4 B3 A3:h")
	require.NoError(t, err)
	k = AnalyzeKey(minor)
	assert.Equal(t, 9, k.TonicPC)
	assert.Equal(t, theory.ModeMinor, k.Mode)
}

func TestToMIDIStructure(t *testing.T) {
	s, err := ParseNoteList("C4 D4 E4 F4")
	require.NoError(t, err)

	data, err := ToMIDI(s, 120)
	require.NoError(t, err)
	require.Greater(t, len(data), 22)
	assert.Equal(t, "MThd", string(data[:4]))
	assert.Contains(t, string(data), "MTrk")
}

func TestHumanizeShapesVelocities(t *testing.T) {
	s, err := ParseNoteList("C4 D4 E4 F4 G4 A4 B4 C5")
	require.NoError(t, err)

	Humanize(s, 0.5, "crescendo", rand.New(rand.NewSource(3)))

	for _, ev := range s.Events {
		assert.GreaterOrEqual(t, ev.Offset, 0.0)
		assert.GreaterOrEqual(t, int(ev.Velocity), 1)
		assert.LessOrEqual(t, int(ev.Velocity), 127)
		assert.Greater(t, ev.Duration, 0.0)
	}
	assert.Greater(t, s.Events[len(s.Events)-1].Velocity, s.Events[0].Velocity)
}

func TestParseRejectsUnknownFormat(t *testing.T) {
	_, err := Parse("C4 D4", models.InputFormat("tab"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown format")
}
