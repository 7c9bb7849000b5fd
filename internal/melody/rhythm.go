// Package melody implements the stochastic melodic-line generator:
// density-tiered rhythm patterns, a weighted random walk over scale
// pitches, and a bounded generate-score-select search loop.
package melody

import (
	"math/rand"

	"github.com/cadenzalabs/composer-api/internal/models"
	"github.com/cadenzalabs/composer-api/internal/notation"
)

// Pattern palettes per density tier, in quarter-note units.
var rhythmPatterns = map[models.Density][][]float64{
	models.DensitySparse: {
		{2.0, 2.0},
		{4.0},
		{3.0, 1.0},
		{2.0, 1.0, 1.0},
	},
	models.DensityMedium: {
		{1.0, 1.0, 1.0, 1.0},
		{1.0, 1.0, 2.0},
		{2.0, 1.0, 1.0},
		{1.5, 0.5, 1.0, 1.0},
		{1.0, 1.0, 1.0, 0.5, 0.5},
	},
	models.DensityDense: {
		{0.5, 0.5, 0.5, 0.5, 1.0, 1.0},
		{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
		{1.0, 0.5, 0.5, 0.5, 0.5, 1.0},
		{0.25, 0.25, 0.5, 0.5, 0.5, 1.0, 1.0},
	},
}

const sumTolerance = 1e-9

// GenerateRhythm produces a duration sequence summing to
// beats_per_measure * (4/beat_unit) * measures quarter-note units: whole
// patterns are drawn at random from the tier's palette, the final duration
// truncated to the exact remainder. An empty target yields an empty
// sequence.
func GenerateRhythm(density models.Density, ts notation.TimeSignature, measures int, rng *rand.Rand) []float64 {
	target := ts.QuartersPerMeasure() * float64(measures)
	patterns := rhythmPatterns[density]

	var rhythm []float64
	sum := 0.0
	for sum < target-sumTolerance {
		pattern := patterns[rng.Intn(len(patterns))]
		for _, dur := range pattern {
			if sum+dur <= target+sumTolerance {
				rhythm = append(rhythm, dur)
				sum += dur
			} else {
				if remaining := target - sum; remaining > sumTolerance {
					rhythm = append(rhythm, remaining)
					sum = target
				}
				break
			}
		}
	}
	return rhythm
}
