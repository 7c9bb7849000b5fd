package harmonize

import (
	"strings"

	"github.com/cadenzalabs/composer-api/internal/notation"
	"github.com/cadenzalabs/composer-api/internal/theory"
)

// VoiceLeadingScore rates a progression for voice-leading quality in
// [0, 1]. Parallel perfect fifths and parallel unisons carried between
// adjacent chords each cost 0.1 when the style forbids them; smooth mean
// per-voice motion earns a small bonus and wide motion a small penalty.
func VoiceLeadingScore(progression []string, k theory.Key, rules StyleRules) float64 {
	if len(progression) < 2 {
		return 1.0
	}

	score := 1.0
	for i := 0; i < len(progression)-1; i++ {
		curr, okCurr := theory.ResolveRoman(progression[i], k)
		next, okNext := theory.ResolveRoman(progression[i+1], k)
		if !okCurr || !okNext {
			continue
		}
		currPCs := curr.PCs
		nextPCs := next.PCs

		if rules.AvoidParallelFifths {
			score -= 0.1 * float64(countParallels(currPCs, nextPCs, 7))
		}
		if rules.AvoidParallelOctaves {
			score -= 0.1 * float64(countParallelUnisons(currPCs, nextPCs))
		}

		if len(currPCs) == len(nextPCs) && len(currPCs) > 0 {
			total := 0
			for j := range currPCs {
				total += pcDistance(currPCs[j], nextPCs[j])
			}
			avg := float64(total) / float64(len(currPCs))
			if avg <= 2 {
				score += 0.05
			} else if avg > 4 {
				score -= 0.05
			}
		}
	}

	return clamp01(score)
}

// countParallels counts voice pairs a perfect fifth (or the given interval)
// apart in the current chord whose counterpart pair in the next chord holds
// the same interval.
func countParallels(curr, next []int, interval int) int {
	n := 0
	for j := 0; j < len(curr)-1; j++ {
		for l := j + 1; l < len(curr); l++ {
			if mod12(curr[l]-curr[j]) != interval {
				continue
			}
			if l < len(next) && mod12(next[l]-next[j]) == interval {
				n++
			}
		}
	}
	return n
}

func countParallelUnisons(curr, next []int) int {
	n := 0
	for j := 0; j < len(curr)-1; j++ {
		for l := j + 1; l < len(curr); l++ {
			if curr[j] != curr[l] {
				continue
			}
			if l < len(next) && next[j] == next[l] {
				n++
			}
		}
	}
	return n
}

// MelodyFitScore averages, over harmonic-rhythm points with at least one
// melody note, the fraction of sounding melody pitch classes that are
// chord tones of the chosen label. No melodic evidence at all scores a
// neutral 0.5.
func MelodyFitScore(
	progression []string,
	melody *notation.Stream,
	points []float64,
	k theory.Key,
	beatsPerMeasure int,
) float64 {
	if len(progression) == 0 || len(points) == 0 {
		return 0.5
	}

	totalFit := 0.0
	count := 0
	for i := 0; i < len(progression) && i < len(points); i++ {
		ch, ok := theory.ResolveRoman(progression[i], k)
		if !ok {
			continue
		}

		duration := float64(beatsPerMeasure)
		if i < len(points)-1 {
			duration = points[i+1] - points[i]
		}
		classes := melody.PitchClassesAt(points[i], duration)
		if len(classes) == 0 {
			continue
		}

		matches := 0
		for _, name := range classes {
			if pc, ok := theory.ParseClass(name); ok && ch.ContainsPC(pc) {
				matches++
			}
		}
		totalFit += float64(matches) / float64(len(classes))
		count++
	}

	if count == 0 {
		return 0.5
	}
	return totalFit / float64(count)
}

// StyleAdherenceScore rates how closely a progression follows the style's
// conventions: idiomatic progressions appearing verbatim and a recognized
// closing cadence each raise a 0.5 base, capped at 1.0.
func StyleAdherenceScore(progression []string, rules StyleRules) float64 {
	score := 0.5

	joined := strings.Join(progression, " ")
	for _, common := range rules.CommonProgressions {
		if strings.Contains(joined, strings.Join(common, " ")) {
			score += 0.2
		}
	}

	if len(progression) >= 2 {
		finalTwo := progression[len(progression)-2:]
		for _, pattern := range rules.CadencePatterns {
			if len(pattern) >= 2 &&
				finalTwo[0] == pattern[len(pattern)-2] &&
				finalTwo[1] == pattern[len(pattern)-1] {
				score += 0.15
				break
			}
		}
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}

func mod12(x int) int { return ((x % 12) + 12) % 12 }

// pcDistance is the shortest chromatic path between two pitch classes.
func pcDistance(a, b int) int {
	d := mod12(a - b)
	if d > 6 {
		return 12 - d
	}
	return d
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
