package notation

import (
	"math"

	"github.com/cadenzalabs/composer-api/internal/theory"
)

// Krumhansl-Kessler key profiles: perceived stability of each chromatic
// degree relative to the tonic.
var (
	krumhanslMajor = [12]float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	krumhanslMinor = [12]float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

// AnalyzeKey infers the most likely key of a stream by correlating its
// duration-weighted pitch-class histogram against the major and minor
// profiles in all 12 transpositions.
func AnalyzeKey(s *Stream) theory.Key {
	var histogram [12]float64
	for _, ev := range s.Events {
		for _, p := range ev.Pitches {
			histogram[p.Class()] += ev.Duration
		}
	}

	bestScore := math.Inf(-1)
	bestTonic := 0
	bestMode := theory.ModeMajor

	for tonic := 0; tonic < 12; tonic++ {
		for _, mode := range []theory.Mode{theory.ModeMajor, theory.ModeMinor} {
			profile := krumhanslMajor
			if mode == theory.ModeMinor {
				profile = krumhanslMinor
			}
			score := correlate(histogram, profile, tonic)
			if score > bestScore {
				bestScore = score
				bestTonic = tonic
				bestMode = mode
			}
		}
	}

	tonicName := theory.ClassNameOf(bestTonic)
	// Flat-side tonics read more naturally with flat spellings.
	switch bestTonic {
	case 1, 3, 8, 10:
		if bestMode == theory.ModeMajor {
			tonicName = theory.FlatClassNameOf(bestTonic)
		}
	}
	return theory.NewKey(tonicName, bestTonic, bestMode)
}

// correlate computes the Pearson correlation of the histogram against a
// profile rotated to the given tonic.
func correlate(histogram [12]float64, profile [12]float64, tonic int) float64 {
	var hMean, pMean float64
	for i := 0; i < 12; i++ {
		hMean += histogram[i]
		pMean += profile[i]
	}
	hMean /= 12
	pMean /= 12

	var num, hVar, pVar float64
	for i := 0; i < 12; i++ {
		h := histogram[i] - hMean
		p := profile[((i-tonic)%12+12)%12] - pMean
		num += h * p
		hVar += h * h
		pVar += p * p
	}
	if hVar == 0 || pVar == 0 {
		return 0
	}
	return num / math.Sqrt(hVar*pVar)
}
