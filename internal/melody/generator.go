package melody

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/cadenzalabs/composer-api/internal/apierr"
	"github.com/cadenzalabs/composer-api/internal/models"
	"github.com/cadenzalabs/composer-api/internal/notation"
	"github.com/cadenzalabs/composer-api/internal/theory"
)

// Note is one generated melody note.
type Note struct {
	Pitch    theory.Pitch
	Duration float64
}

// Result is the best melody found by the search loop.
type Result struct {
	Key      theory.Key
	TimeSig  notation.TimeSignature
	Notes    []Note
	Warnings []models.Warning
	SeedUsed int64
}

// Generate runs the bounded generate-score-select loop: a rhythm is drawn
// once, then each attempt walks the scale slot-by-slot, is scored against
// the range and leap constraints, and the best attempt wins. Identical
// requests with an explicit seed reproduce identical output.
func Generate(req models.MelodyRequest) (*Result, error) {
	k, err := theory.ParseKey(req.Key)
	if err != nil {
		return nil, err
	}

	low, errLow := theory.ParsePitch(req.RangeLow)
	high, errHigh := theory.ParsePitch(req.RangeHigh)
	if errLow != nil {
		return nil, apierr.InvalidNote(fmt.Sprintf("Invalid note: %s", req.RangeLow), "range_low")
	}
	if errHigh != nil {
		return nil, apierr.InvalidNote(fmt.Sprintf("Invalid note: %s", req.RangeHigh), "range_high")
	}

	scalePitches, err := k.ScaleRealization(low, high)
	if err != nil {
		return nil, err
	}
	if len(scalePitches) < 3 {
		return nil, apierr.Unsatisfiable(fmt.Sprintf(
			"Range %s-%s is too narrow for key %s. Only %d scale tones available.",
			req.RangeLow, req.RangeHigh, req.Key, len(scalePitches)), "range_low")
	}

	ts, err := notation.ParseTimeSignature(req.TimeSignature)
	if err != nil {
		return nil, err
	}

	maxLeapSemis := -1
	if req.AvoidLeapsGreaterThan != "" {
		iv, err := theory.ParseInterval(req.AvoidLeapsGreaterThan)
		if err != nil {
			return nil, apierr.InvalidInterval(
				fmt.Sprintf("Invalid interval: %s", req.AvoidLeapsGreaterThan),
				"avoid_leaps_greater_than")
		}
		maxLeapSemis = iv.Semitones()
	}

	var seedUsed int64
	if req.Seed != nil {
		seedUsed = *req.Seed
	} else {
		seedUsed = rand.New(rand.NewSource(time.Now().UnixNano())).Int63()
	}
	rng := rand.New(rand.NewSource(seedUsed))

	rhythm := GenerateRhythm(req.RhythmicDensity, ts, req.LengthMeasures, rng)

	var warnings []models.Warning
	var best []Note
	bestScore := -1

	for attempt := 0; attempt < req.MaxAttempts; attempt++ {
		current, w := pickStartPitch(req, k, scalePitches, attempt == 0, rng)
		if w != nil {
			warnings = append(warnings, *w)
		}

		attemptNotes := make([]Note, 0, len(rhythm))
		for i, dur := range rhythm {
			attemptNotes = append(attemptNotes, Note{Pitch: current, Duration: dur})
			if i < len(rhythm)-1 {
				positionRatio := float64(i) / float64(len(rhythm))
				current = SelectNextPitch(current, scalePitches, positionRatio,
					req.Contour, *req.PreferStepwise, maxLeapSemis, rng)
			}
		}

		if req.EndNote != "" {
			if w := forceEndPitch(attemptNotes, req.EndNote, scalePitches, attempt == 0); w != nil {
				warnings = append(warnings, *w)
			}
		}

		score := scoreAttempt(attemptNotes, low, high, maxLeapSemis)
		if score > bestScore {
			bestScore = score
			best = attemptNotes
		}
		if score == 2 || (score == 1 && maxLeapSemis < 0) {
			break
		}
	}

	if best == nil {
		return nil, apierr.GenerationFailed("Could not generate melody satisfying constraints")
	}

	return &Result{
		Key:      k,
		TimeSig:  ts,
		Notes:    best,
		Warnings: warnings,
		SeedUsed: seedUsed,
	}, nil
}

// pickStartPitch resolves the first pitch of an attempt: the explicit start
// note snapped to the scale if needed, else a random tonic occurrence, else
// any scale pitch. The adjustment advisory is emitted only on the first
// attempt.
func pickStartPitch(
	req models.MelodyRequest,
	k theory.Key,
	scalePitches []theory.Pitch,
	firstAttempt bool,
	rng *rand.Rand,
) (theory.Pitch, *models.Warning) {
	if req.StartNote != "" {
		requested, err := theory.ParsePitch(req.StartNote)
		if err == nil {
			for _, p := range scalePitches {
				if p.MIDI() == requested.MIDI() {
					return p, nil
				}
			}
			nearest := nearestScalePitch(scalePitches, requested.MIDI())
			var w *models.Warning
			if firstAttempt {
				w = &models.Warning{
					Code:    "START_NOTE_ADJUSTED",
					Message: fmt.Sprintf("Start note adjusted to nearest scale tone: %s", nearest.Name()),
				}
			}
			return nearest, w
		}
	}

	var tonics []theory.Pitch
	for _, p := range scalePitches {
		if p.Class() == k.TonicPC {
			tonics = append(tonics, p)
		}
	}
	if len(tonics) > 0 {
		return tonics[rng.Intn(len(tonics))], nil
	}
	return scalePitches[rng.Intn(len(scalePitches))], nil
}

// forceEndPitch pins the final note to the requested end pitch, preferring
// an exact scale match, else the nearest scale tone with a one-time
// advisory.
func forceEndPitch(notes []Note, endNote string, scalePitches []theory.Pitch, firstAttempt bool) *models.Warning {
	target, err := theory.ParsePitch(endNote)
	if err != nil || len(notes) == 0 {
		return nil
	}
	last := &notes[len(notes)-1]
	if last.Pitch.MIDI() == target.MIDI() {
		return nil
	}

	for _, p := range scalePitches {
		if p.MIDI() == target.MIDI() {
			last.Pitch = p
			return nil
		}
	}

	nearest := nearestScalePitch(scalePitches, target.MIDI())
	last.Pitch = nearest
	if firstAttempt {
		return &models.Warning{
			Code:    "END_NOTE_ADJUSTED",
			Message: fmt.Sprintf("End note adjusted to nearest scale tone: %s", nearest.Name()),
		}
	}
	return nil
}

func nearestScalePitch(scalePitches []theory.Pitch, midi int) theory.Pitch {
	nearest := scalePitches[0]
	for _, p := range scalePitches[1:] {
		if abs(p.MIDI()-midi) < abs(nearest.MIDI()-midi) {
			nearest = p
		}
	}
	return nearest
}

// scoreAttempt awards one point for staying in range and one for honoring
// the leap bound (when one is active).
func scoreAttempt(notes []Note, low, high theory.Pitch, maxLeapSemis int) int {
	score := 0

	allInRange := true
	for _, n := range notes {
		if n.Pitch.MIDI() < low.MIDI() || n.Pitch.MIDI() > high.MIDI() {
			allInRange = false
			break
		}
	}
	if allInRange {
		score++
	}

	if maxLeapSemis >= 0 {
		leapsOK := true
		for i := 1; i < len(notes); i++ {
			if abs(notes[i].Pitch.MIDI()-notes[i-1].Pitch.MIDI()) > maxLeapSemis {
				leapsOK = false
				break
			}
		}
		if leapsOK {
			score++
		}
	}

	return score
}
