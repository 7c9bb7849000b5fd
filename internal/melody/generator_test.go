package melody

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadenzalabs/composer-api/internal/models"
	"github.com/cadenzalabs/composer-api/internal/notation"
	"github.com/cadenzalabs/composer-api/internal/theory"
)

func melodyRequest(t *testing.T, mutate func(*models.MelodyRequest)) models.MelodyRequest {
	t.Helper()
	req := models.MelodyRequest{
		Key:            "C major",
		LengthMeasures: 2,
	}
	if mutate != nil {
		mutate(&req)
	}
	req.ApplyDefaults()
	require.NoError(t, req.Validate())
	return req
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	seed := int64(42)
	req := melodyRequest(t, func(r *models.MelodyRequest) {
		r.Seed = &seed
		r.Contour = models.ContourArch
	})

	first, err := Generate(req)
	require.NoError(t, err)
	second, err := Generate(req)
	require.NoError(t, err)

	require.Equal(t, len(first.Notes), len(second.Notes))
	for i := range first.Notes {
		assert.Equal(t, first.Notes[i].Pitch.MIDI(), second.Notes[i].Pitch.MIDI())
		assert.Equal(t, first.Notes[i].Duration, second.Notes[i].Duration)
	}
	assert.Equal(t, seed, first.SeedUsed)
}

func TestGenerateStaysInRangeAndOnScale(t *testing.T) {
	seed := int64(7)
	req := melodyRequest(t, func(r *models.MelodyRequest) {
		r.Key = "D dorian"
		r.RangeLow = "D4"
		r.RangeHigh = "D5"
		r.Seed = &seed
	})

	result, err := Generate(req)
	require.NoError(t, err)

	k := theory.MustKey("D dorian")
	low := theory.MustPitch("D4")
	high := theory.MustPitch("D5")
	for _, n := range result.Notes {
		assert.GreaterOrEqual(t, n.Pitch.MIDI(), low.MIDI())
		assert.LessOrEqual(t, n.Pitch.MIDI(), high.MIDI())
		assert.True(t, k.Contains(n.Pitch.Class()), "pitch %s not in D dorian", n.Pitch.Name())
	}
}

func TestGenerateHonorsLeapBound(t *testing.T) {
	seed := int64(99)
	req := melodyRequest(t, func(r *models.MelodyRequest) {
		r.AvoidLeapsGreaterThan = "M3"
		r.Seed = &seed
		r.LengthMeasures = 4
	})

	result, err := Generate(req)
	require.NoError(t, err)

	for i := 1; i < len(result.Notes); i++ {
		leap := result.Notes[i].Pitch.MIDI() - result.Notes[i-1].Pitch.MIDI()
		if leap < 0 {
			leap = -leap
		}
		assert.LessOrEqual(t, leap, 4, "leap at slot %d exceeds a major third", i)
	}
}

func TestGenerateRhythmSumsToMeasureTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := []struct {
		density  models.Density
		timeSig  string
		measures int
	}{
		{models.DensitySparse, "4/4", 2},
		{models.DensityMedium, "3/4", 3},
		{models.DensityDense, "6/8", 2},
		{models.DensityMedium, "4/4", 1},
	}
	for _, tc := range cases {
		ts, err := notation.ParseTimeSignature(tc.timeSig)
		require.NoError(t, err)
		rhythm := GenerateRhythm(tc.density, ts, tc.measures, rng)
		sum := 0.0
		for _, d := range rhythm {
			sum += d
		}
		want := ts.QuartersPerMeasure() * float64(tc.measures)
		assert.InDelta(t, want, sum, 1e-9, "%s %s x%d", tc.density, tc.timeSig, tc.measures)
	}
}

func TestGenerateStartNoteAdjustedWarning(t *testing.T) {
	seed := int64(5)
	req := melodyRequest(t, func(r *models.MelodyRequest) {
		r.StartNote = "C#4" // not in C major
		r.RangeLow = "C4"
		r.RangeHigh = "C5"
		r.Seed = &seed
	})

	result, err := Generate(req)
	require.NoError(t, err)

	var codes []string
	for _, w := range result.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, "START_NOTE_ADJUSTED")
	assert.LessOrEqual(t, countCode(result.Warnings, "START_NOTE_ADJUSTED"), 1)
}

func TestGenerateNarrowRangeUnsatisfiable(t *testing.T) {
	req := melodyRequest(t, func(r *models.MelodyRequest) {
		r.RangeLow = "C4"
		r.RangeHigh = "D4"
	})

	_, err := Generate(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too narrow")
}

func TestGenerateExplicitEndNote(t *testing.T) {
	seed := int64(21)
	req := melodyRequest(t, func(r *models.MelodyRequest) {
		r.EndNote = "G4"
		r.Seed = &seed
	})

	result, err := Generate(req)
	require.NoError(t, err)
	require.NotEmpty(t, result.Notes)
	assert.Equal(t, theory.MustPitch("G4").MIDI(), result.Notes[len(result.Notes)-1].Pitch.MIDI())
}

func TestScaleRealizationOneOctaveCMajor(t *testing.T) {
	k := theory.MustKey("C major")
	pitches, err := k.ScaleRealization(theory.MustPitch("C4"), theory.MustPitch("C5"))
	require.NoError(t, err)
	require.Len(t, pitches, 8)
	assert.Equal(t, "C4", pitches[0].Name())
	assert.Equal(t, "C5", pitches[7].Name())
}

func TestContourBiasShapes(t *testing.T) {
	assert.Equal(t, 0.5, ContourBias(0.2, models.ContourArch))
	assert.Equal(t, -0.5, ContourBias(0.8, models.ContourArch))
	assert.Equal(t, 0.4, ContourBias(0.5, models.ContourAscending))
	assert.Equal(t, -0.4, ContourBias(0.5, models.ContourDescending))
	assert.Equal(t, 0.0, ContourBias(0.3, models.ContourStatic))
	assert.InDelta(t, 0.4*math.Sin(0.25*4*math.Pi), ContourBias(0.25, models.ContourWave), 1e-12)
}

func TestSelectNextPitchRespectsLeapBound(t *testing.T) {
	k := theory.MustKey("C major")
	scale, err := k.ScaleRealization(theory.MustPitch("C4"), theory.MustPitch("C6"))
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(3))

	current := scale[len(scale)/2]
	for i := 0; i < 200; i++ {
		next := SelectNextPitch(current, scale, 0.5, "", 0.7, 4, rng)
		leap := next.MIDI() - current.MIDI()
		if leap < 0 {
			leap = -leap
		}
		require.LessOrEqual(t, leap, 4)
		current = next
	}
}

func countCode(warnings []models.Warning, code string) int {
	n := 0
	for _, w := range warnings {
		if w.Code == code {
			n++
		}
	}
	return n
}
