package harmonize

import (
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/cadenzalabs/composer-api/internal/apierr"
	"github.com/cadenzalabs/composer-api/internal/models"
	"github.com/cadenzalabs/composer-api/internal/notation"
	"github.com/cadenzalabs/composer-api/internal/theory"
)

// attemptSeed derives a deterministic per-attempt seed from the attempt
// index and the input melody, so identical requests reproduce identical
// attempt sequences while attempts differ from each other.
func attemptSeed(attempt int, melodyText string) int64 {
	h := fnv.New32a()
	h.Write([]byte(melodyText))
	return 1000*int64(attempt+1) + int64(h.Sum32()%10000)
}

type scoredAttempt struct {
	progression []string
	scores      models.HarmonizationScores
}

// Reharmonize generates ranked chord-progression options for a parsed
// melody. It runs five attempts per requested option, scores each full
// progression on voice leading, melody fit and style adherence, then
// deduplicates and keeps the best.
func Reharmonize(melody *notation.Stream, melodyText string, req models.ReharmonizeRequest) (*models.ReharmonizeResponseData, error) {
	if melody.NoteCount() == 0 {
		return nil, apierr.EmptyInput("Melody contains no notes", "melody")
	}

	k := notation.AnalyzeKey(melody)
	rules := RulesFor(req.Style)
	beatsPerMeasure := melody.TimeSig.Numerator
	if beatsPerMeasure == 0 {
		beatsPerMeasure = 4
	}

	points := ChordPoints(melody, req.ChordRhythm, beatsPerMeasure)
	numAttempts := req.NumOptions * 5

	attempts := make([]scoredAttempt, 0, numAttempts)
	for attempt := 0; attempt < numAttempts; attempt++ {
		rng := rand.New(rand.NewSource(attemptSeed(attempt, melodyText)))

		progression := make([]string, 0, len(points))
		for i, offset := range points {
			duration := float64(beatsPerMeasure)
			if i < len(points)-1 {
				duration = points[i+1] - offset
			}
			classes := melody.PitchClassesAt(offset, duration)
			isCadence := i >= len(points)-2

			previous := ""
			if len(progression) > 0 {
				previous = progression[len(progression)-1]
			}

			candidates := ScoreCandidates(classes, k, rules, previous, isCadence, rng)
			progression = append(progression, SelectChord(candidates, req.BassMotion, previous, k, rng))
		}

		vl := VoiceLeadingScore(progression, k, rules)
		cm := MelodyFitScore(progression, melody, points, k, beatsPerMeasure)
		st := StyleAdherenceScore(progression, rules)
		attempts = append(attempts, scoredAttempt{
			progression: progression,
			scores: models.HarmonizationScores{
				VoiceLeading:   round2(vl),
				ChordMelodyFit: round2(cm),
				StyleAdherence: round2(st),
				Overall:        round2((vl + cm + st) / 3),
			},
		})
	}

	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].scores.Overall > attempts[j].scores.Overall
	})

	seen := make(map[string]bool)
	var kept []scoredAttempt
	for _, a := range attempts {
		sig := strings.Join(a.progression, "|")
		if seen[sig] {
			continue
		}
		seen[sig] = true
		kept = append(kept, a)
		if len(kept) >= req.NumOptions {
			break
		}
	}

	harmonizations := make([]models.Harmonization, 0, len(kept))
	for rank, a := range kept {
		xml, err := progressionMusicXML(a.progression, points, k, beatsPerMeasure, melody.TimeSig)
		if err != nil {
			return nil, err
		}
		harmonizations = append(harmonizations, models.Harmonization{
			Rank:          rank + 1,
			Chords:        chordSymbols(a.progression, k),
			RomanNumerals: a.progression,
			MusicXML:      xml,
			Scores:        a.scores,
		})
	}

	return &models.ReharmonizeResponseData{
		DetectedKey:    k.String(),
		ChordRhythm:    req.ChordRhythm,
		Style:          req.Style,
		Harmonizations: harmonizations,
	}, nil
}

// chordSymbols maps each label to its chord-symbol name, keeping the
// label itself when it does not resolve.
func chordSymbols(progression []string, k theory.Key) []string {
	symbols := make([]string, len(progression))
	for i, numeral := range progression {
		if ch, ok := theory.ResolveRoman(numeral, k); ok {
			symbols[i] = ch.Symbol()
		} else {
			symbols[i] = numeral
		}
	}
	return symbols
}

// progressionMusicXML renders the chosen chords as a block-chord stream.
func progressionMusicXML(
	progression []string,
	points []float64,
	k theory.Key,
	beatsPerMeasure int,
	ts notation.TimeSignature,
) (string, error) {
	s := notation.NewStream()
	s.TimeSig = ts
	s.KeyName = k.String()

	for i, numeral := range progression {
		ch, ok := theory.ResolveRoman(numeral, k)
		if !ok {
			continue
		}
		duration := float64(beatsPerMeasure)
		if i < len(points)-1 {
			duration = points[i+1] - points[i]
		}
		s.InsertAt(points[i], ch.Pitches(4), duration)
	}

	return notation.ToMusicXML(s)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
