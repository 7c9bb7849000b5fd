package harmonize

import (
	"math/rand"
	"sort"

	"github.com/cadenzalabs/composer-api/internal/models"
	"github.com/cadenzalabs/composer-api/internal/notation"
	"github.com/cadenzalabs/composer-api/internal/theory"
)

// Candidate is one allowed-by-style label with its fitness score.
type Candidate struct {
	Numeral string
	Score   float64
}

// ChordPoints computes the offsets where chord changes occur for a given
// harmonic-rhythm granularity over a melody's total duration.
func ChordPoints(melody *notation.Stream, rhythm models.ChordRhythm, beatsPerMeasure int) []float64 {
	total := melody.TotalDuration()

	var step float64
	switch rhythm {
	case models.ChordPerMeasure:
		step = float64(beatsPerMeasure)
	case models.ChordPerHalf:
		step = float64(beatsPerMeasure) / 2
	default: // per_beat
		step = 1.0
	}

	var points []float64
	for offset := 0.0; offset < total; offset += step {
		points = append(points, offset)
	}
	return points
}

// ScoreCandidates scores every style-allowed label against the melody
// pitch classes sounding in the slot. Labels that do not resolve in the
// key are excluded. Chord tones reward +1.0 and non-chord tones cost 0.3,
// normalized over the slot's melody notes; idiomatic progression pairs and
// cadence membership add fixed bonuses, plus a small jitter so repeated
// attempts explore different orderings.
func ScoreCandidates(
	melodyClasses []string,
	k theory.Key,
	rules StyleRules,
	previous string,
	isCadence bool,
	rng *rand.Rand,
) []Candidate {
	var candidates []Candidate

	for _, numeral := range rules.AllowedNumerals {
		ch, ok := theory.ResolveRoman(numeral, k)
		if !ok {
			continue
		}

		score := 0.0
		for _, name := range melodyClasses {
			pc, ok := theory.ParseClass(name)
			if ok && ch.ContainsPC(pc) {
				score += 1.0
			} else {
				score -= 0.3
			}
		}
		if len(melodyClasses) > 0 {
			score /= float64(len(melodyClasses))
		} else {
			score = 0.5
		}

		if previous != "" {
			for _, prog := range rules.CommonProgressions {
				found := false
				for i := 0; i < len(prog)-1; i++ {
					if prog[i] == previous && prog[i+1] == numeral {
						score += 0.3
						found = true
						break
					}
				}
				if found {
					break
				}
			}
		}

		if isCadence {
			for _, pattern := range rules.CadencePatterns {
				if containsLabel(pattern, numeral) {
					score += 0.2
				}
			}
		}

		score += rng.Float64()*0.2 - 0.1

		candidates = append(candidates, Candidate{Numeral: numeral, Score: score})
	}

	sortCandidates(candidates)
	return candidates
}

// SelectChord picks one label from scored candidates: an optional
// bass-motion bonus re-ranks them, then a weighted random draw over the
// top three keeps the search exploratory rather than greedy. Weights floor
// at 0.1 so even weak candidates stay reachable.
func SelectChord(
	candidates []Candidate,
	bassMotion models.BassMotion,
	previous string,
	k theory.Key,
	rng *rand.Rand,
) string {
	if len(candidates) == 0 {
		return "I"
	}

	if bassMotion != models.BassAny && previous != "" {
		if prev, ok := theory.ResolveRoman(previous, k); ok {
			reranked := make([]Candidate, 0, len(candidates))
			for _, c := range candidates {
				ch, ok := theory.ResolveRoman(c.Numeral, k)
				if !ok {
					reranked = append(reranked, c)
					continue
				}
				distance := ch.BassPC - prev.BassPC
				if distance < 0 {
					distance = -distance
				}

				bonus := 0.0
				switch {
				case bassMotion == models.BassStepwise && distance <= 2:
					bonus = 0.2
				case bassMotion == models.BassFifths && (distance == 5 || distance == 7):
					bonus = 0.2
				case bassMotion == models.BassPedal && distance == 0:
					bonus = 0.3
				}
				reranked = append(reranked, Candidate{Numeral: c.Numeral, Score: c.Score + bonus})
			}
			sortCandidates(reranked)
			candidates = reranked
		}
	}

	top := candidates
	if len(top) > 3 {
		top = top[:3]
	}

	total := 0.0
	for _, c := range top {
		total += weightOf(c.Score)
	}
	r := rng.Float64() * total
	cumulative := 0.0
	for _, c := range top {
		cumulative += weightOf(c.Score)
		if r <= cumulative {
			return c.Numeral
		}
	}
	return candidates[0].Numeral
}

func weightOf(score float64) float64 {
	if score < 0.1 {
		return 0.1
	}
	return score
}

func containsLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

// sortCandidates orders by score descending, stable so tied candidates
// keep their vocabulary order.
func sortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
}
