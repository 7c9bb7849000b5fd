package theory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePitch(t *testing.T) {
	tests := []struct {
		in   string
		midi int
		name string
	}{
		{"C4", 60, "C4"},
		{"c4", 60, "C4"},
		{"F#3", 54, "F#3"},
		{"Bb5", 82, "Bb5"},
		{"A0", 21, "A0"},
		{"C8", 108, "C8"},
	}
	for _, tt := range tests {
		p, err := ParsePitch(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.midi, p.MIDI(), tt.in)
		assert.Equal(t, tt.name, p.Name(), tt.in)
	}
}

func TestParsePitchRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "C", "X4", "C#", "C99"} {
		_, err := ParsePitch(in)
		assert.Error(t, err, in)
	}
}

func TestParseClass(t *testing.T) {
	tests := []struct {
		in string
		pc int
	}{
		{"C", 0},
		{"F#", 6},
		{"Bb", 10},
		{"e", 4},
		{"Cb", 11},
	}
	for _, tt := range tests {
		pc, ok := ParseClass(tt.in)
		require.True(t, ok, tt.in)
		assert.Equal(t, tt.pc, pc, tt.in)
	}

	for _, in := range []string{"", "H", "C4", "Cx"} {
		_, ok := ParseClass(in)
		assert.False(t, ok, in)
	}
}

func TestSpelledPitchOctaveBoundaries(t *testing.T) {
	cb := SpelledPitch(59, "Cb")
	assert.Equal(t, "Cb4", cb.Name())
	assert.Equal(t, 59, cb.MIDI())

	bs := SpelledPitch(60, "B#")
	assert.Equal(t, "B#3", bs.Name())
	assert.Equal(t, 60, bs.MIDI())
}

func TestClassName(t *testing.T) {
	assert.Equal(t, "Bb", MustPitch("Bb5").ClassName())
	assert.Equal(t, "C#", PitchFromMIDI(61).ClassName())
	assert.Equal(t, "F#", MustPitch("F#2").ClassName())
}

func TestParseKeySpellsDegrees(t *testing.T) {
	k, err := ParseKey("F# major")
	require.NoError(t, err)
	assert.Equal(t, "F# major", k.String())

	want := []string{"F#", "G#", "A#", "B", "C#", "D#", "E#"}
	for degree, name := range want {
		assert.Equal(t, name, k.DegreeName(degree+1))
	}
}

func TestParseKeyFlatSide(t *testing.T) {
	k := MustKey("Bb major")
	want := []string{"Bb", "C", "D", "Eb", "F", "G", "A"}
	for degree, name := range want {
		assert.Equal(t, name, k.DegreeName(degree+1))
	}
	// Chromatic classes spell with flats in flat-side keys.
	assert.Equal(t, "Db", k.SpellPC(1))

	assert.Equal(t, "F#", MustKey("C major").SpellPC(6))
}

func TestParseKeyLowercaseTonic(t *testing.T) {
	k, err := ParseKey("d dorian")
	require.NoError(t, err)
	assert.Equal(t, "D", k.TonicName)
	assert.Equal(t, ModeDorian, k.Mode)
	assert.True(t, k.Contains(11)) // B natural, the raised sixth
}

func TestParseKeyRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "C", "C sharp major", "H major", "C baroque", "C major extra"} {
		_, err := ParseKey(in)
		assert.Error(t, err, in)
	}
}

func TestKeyContains(t *testing.T) {
	k := MustKey("D minor")
	for _, pc := range []int{2, 4, 5, 7, 9, 10, 0} {
		assert.True(t, k.Contains(pc), pc)
	}
	assert.False(t, k.Contains(1))
	assert.True(t, k.Contains(14)) // wraps mod 12
}

func TestScaleRealizationOrderedAndSpelled(t *testing.T) {
	k := MustKey("Eb major")
	pitches, err := k.ScaleRealization(MustPitch("Eb4"), MustPitch("Eb5"))
	require.NoError(t, err)
	require.Len(t, pitches, 8)

	names := make([]string, len(pitches))
	for i, p := range pitches {
		names[i] = p.Name()
		if i > 0 {
			assert.Greater(t, p.MIDI(), pitches[i-1].MIDI())
		}
	}
	assert.Equal(t, []string{"Eb4", "F4", "G4", "Ab4", "Bb4", "C5", "D5", "Eb5"}, names)
}

func TestScaleRealizationRejectsInvertedRange(t *testing.T) {
	k := MustKey("C major")
	_, err := k.ScaleRealization(MustPitch("C5"), MustPitch("C4"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be below")
}

func TestResolveRoman(t *testing.T) {
	k := MustKey("C major")
	tests := []struct {
		label   string
		symbol  string
		quality string
		pcs     []int
	}{
		{"I", "C", "major", []int{0, 4, 7}},
		{"V7", "G7", "dominant-seventh", []int{7, 11, 2, 5}},
		{"ii7", "Dm7", "minor-seventh", []int{2, 5, 9, 0}},
		{"viio", "Bdim", "diminished", []int{11, 2, 5}},
		{"Imaj7", "Cmaj7", "major-seventh", []int{0, 4, 7, 11}},
		{"bII7", "Db7", "dominant-seventh", []int{1, 5, 8, 11}},
	}
	for _, tt := range tests {
		ch, ok := ResolveRoman(tt.label, k)
		require.True(t, ok, tt.label)
		assert.Equal(t, tt.symbol, ch.Symbol(), tt.label)
		assert.Equal(t, tt.quality, ch.Quality, tt.label)
		assert.Equal(t, tt.pcs, ch.PCs, tt.label)
	}
}

func TestResolveRomanRejectsUnknownLabels(t *testing.T) {
	k := MustKey("C major")
	for _, label := range []string{"", "X", "Iv", "iimaj7", "V9", "IV+"} {
		_, ok := ResolveRoman(label, k)
		assert.False(t, ok, label)
	}
}

func TestChordContainsPC(t *testing.T) {
	ch, ok := ResolveRoman("V7", MustKey("C major"))
	require.True(t, ok)
	assert.True(t, ch.ContainsPC(7))
	assert.True(t, ch.ContainsPC(19)) // wraps mod 12
	assert.False(t, ch.ContainsPC(0))
}

func TestChordPitchesAscend(t *testing.T) {
	ch, ok := ResolveRoman("V7", MustKey("C major"))
	require.True(t, ok)
	pitches := ch.Pitches(3)
	midis := make([]int, len(pitches))
	for i, p := range pitches {
		midis[i] = p.MIDI()
	}
	assert.Equal(t, []int{55, 59, 62, 65}, midis)
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		name  string
		semis int
	}{
		{"P1", 0},
		{"M3", 4},
		{"P4", 5},
		{"A4", 6},
		{"d5", 6},
		{"P5", 7},
		{"m7", 10},
		{"P8", 12},
		{"M9", 14},
	}
	for _, tt := range tests {
		iv, err := ParseInterval(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.semis, iv.Semitones(), tt.name)
		assert.Equal(t, tt.name, iv.Name())
	}
}

func TestParseIntervalRejectsInvalidQuality(t *testing.T) {
	for _, in := range []string{"P3", "M5", "x3", "P0", "M"} {
		_, err := ParseInterval(in)
		assert.Error(t, err, in)
	}
}

func TestIntervalBetween(t *testing.T) {
	assert.Equal(t, "M3", IntervalBetween(MustPitch("C4"), MustPitch("E4")))
	assert.Equal(t, "P5", IntervalBetween(MustPitch("E4"), MustPitch("B4")))
	assert.Equal(t, "A4", IntervalBetween(MustPitch("C4"), MustPitch("F#4")))
	// Order and octave are normalized.
	assert.Equal(t, "M3", IntervalBetween(MustPitch("E5"), MustPitch("C4")))
}

func TestParseChordSymbol(t *testing.T) {
	tests := []struct {
		symbol  string
		quality string
		midis   []int
	}{
		{"C", "major", []int{60, 64, 67}},
		{"Cmaj7", "major-seventh", []int{60, 64, 67, 71}},
		{"Dm7", "minor-seventh", []int{62, 65, 69, 72}},
		{"G7", "dominant-seventh", []int{67, 71, 74, 77}},
		{"F#m7b5", "half-diminished", []int{66, 69, 72, 76}},
		{"Ebsus4", "suspended-fourth", []int{63, 68, 70}},
	}
	for _, tt := range tests {
		cs, err := ParseChordSymbol(tt.symbol)
		require.NoError(t, err, tt.symbol)
		assert.Equal(t, tt.quality, cs.Quality, tt.symbol)

		midis := make([]int, 0, len(tt.midis))
		for _, p := range cs.Pitches() {
			midis = append(midis, p.MIDI())
		}
		assert.Equal(t, tt.midis, midis, tt.symbol)
	}
}

func TestParseChordSymbolSlashBass(t *testing.T) {
	cs, err := ParseChordSymbol("C/G")
	require.NoError(t, err)
	require.NotNil(t, cs.Bass)

	pitches := cs.Pitches()
	require.NotEmpty(t, pitches)
	// The bass sits below the root and replaces the duplicate chord tone.
	assert.Equal(t, 55, pitches[0].MIDI())
	for _, p := range pitches[1:] {
		assert.NotEqual(t, 7, p.Class())
	}
}

func TestParseChordSymbolRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "Xmaj7", "Cfoo", "C/H"} {
		_, err := ParseChordSymbol(in)
		assert.Error(t, err, in)
	}
}
