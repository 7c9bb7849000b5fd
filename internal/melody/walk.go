package melody

import (
	"math"
	"math/rand"

	"github.com/cadenzalabs/composer-api/internal/models"
	"github.com/cadenzalabs/composer-api/internal/theory"
)

// ContourBias maps a contour and a phrase position (0.0 start, 1.0 end) to
// a directional bias in [-1, 1]: positive favors upward motion.
func ContourBias(positionRatio float64, contour models.Contour) float64 {
	switch contour {
	case models.ContourArch:
		if positionRatio < 0.6 {
			return 0.5
		}
		return -0.5
	case models.ContourAscending:
		return 0.4
	case models.ContourDescending:
		return -0.4
	case models.ContourWave:
		return 0.4 * math.Sin(positionRatio*4*math.Pi)
	case models.ContourStatic:
		return 0.0
	}
	return 0.0
}

// SelectNextPitch samples the next pitch of the walk by weighted random
// choice over every scale pitch within the leap bound. maxLeapSemis < 0
// means unbounded. When no candidate survives filtering the current pitch
// is returned unchanged (self-loop fallback; the walk never fails).
func SelectNextPitch(
	current theory.Pitch,
	scalePitches []theory.Pitch,
	positionRatio float64,
	contour models.Contour,
	preferStepwise float64,
	maxLeapSemis int,
	rng *rand.Rand,
) theory.Pitch {
	currentIdx := -1
	for i, p := range scalePitches {
		if p.MIDI() == current.MIDI() {
			currentIdx = i
			break
		}
	}
	if currentIdx == -1 {
		// Current pitch not in scale; anchor on the nearest.
		best := math.MaxInt
		for i, p := range scalePitches {
			if d := abs(p.MIDI() - current.MIDI()); d < best {
				best = d
				currentIdx = i
			}
		}
	}

	bias := ContourBias(positionRatio, contour)

	type candidate struct {
		pitch  theory.Pitch
		weight float64
	}
	var candidates []candidate

	for i, p := range scalePitches {
		stepDistance := abs(i - currentIdx)
		midiDistance := abs(p.MIDI() - current.MIDI())

		if maxLeapSemis >= 0 && midiDistance > maxLeapSemis {
			continue
		}

		weight := 1.0
		switch {
		case stepDistance <= 1:
			weight *= 1.0 + preferStepwise*2
		case stepDistance == 2:
			weight *= 1.0 + preferStepwise*0.5
		default:
			weight *= 1.0 - preferStepwise*0.3
		}

		switch {
		case p.MIDI() > current.MIDI() && bias > 0:
			weight *= 1.0 + bias
		case p.MIDI() < current.MIDI() && bias < 0:
			weight *= 1.0 - bias
		case p.MIDI() == current.MIDI():
			if contour == models.ContourStatic {
				weight *= 1.5
			} else {
				weight *= 0.5
			}
		}

		if weight > 0 {
			candidates = append(candidates, candidate{pitch: p, weight: weight})
		}
	}

	if len(candidates) == 0 {
		return current
	}

	total := 0.0
	for _, c := range candidates {
		total += c.weight
	}
	r := rng.Float64() * total
	cumulative := 0.0
	for _, c := range candidates {
		cumulative += c.weight
		if r <= cumulative {
			return c.pitch
		}
	}
	return candidates[len(candidates)-1].pitch
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
