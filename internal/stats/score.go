// Package stats contains scoring calculations and history reporting.
package stats

import (
	"math"

	"github.com/hello97-gg/hallotype/internal/model"
)

// WPM converts a character count over a span of seconds into words per
// minute using the 5-characters-per-word convention. Non-positive spans
// yield 0.
func WPM(chars int, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return (float64(chars) / 5.0) / (seconds / 60.0)
}

// Score reduces frozen session state into the final ScoreResult. The
// configured time limit is always the denominator, so a race ended early
// still reports a rate normalized to the agreed duration.
func Score(cs model.CharStats, snaps []model.Snapshot, limitSeconds int, tier model.Tier) model.ScoreResult {
	typed := cs.Correct + cs.Incorrect + cs.Extra
	errors := cs.Incorrect + cs.Missed + cs.Extra

	limit := float64(limitSeconds)
	wpm := int(math.Round(WPM(cs.Correct, limit)))
	rawWpm := int(math.Round(WPM(typed, limit)))

	accuracy := 0
	if typed > 0 {
		accuracy = int(math.Round(float64(typed-errors) / float64(typed) * 100))
	}

	return model.ScoreResult{
		WPM:         clampNonNeg(wpm),
		RawWPM:      clampNonNeg(rawWpm),
		Accuracy:    clampPct(accuracy),
		Consistency: Consistency(snaps),
		CharStats:   cs,
		Snapshots:   snaps,
		Errors:      errors,
		TotalChars:  typed,
		TimeLimit:   limitSeconds,
		Tier:        tier,
	}
}

// Consistency scores the steadiness of the per-second WPM series: the
// inverse coefficient of variation on a 0-100 scale. Fewer than two
// snapshots or a zero mean yield 0.
func Consistency(snaps []model.Snapshot) int {
	if len(snaps) < 2 {
		return 0
	}
	var sum float64
	for _, s := range snaps {
		sum += float64(s.CorrectWPM)
	}
	avg := sum / float64(len(snaps))
	if avg <= 0 {
		return 0
	}
	var sq float64
	for _, s := range snaps {
		d := float64(s.CorrectWPM) - avg
		sq += d * d
	}
	stdDev := math.Sqrt(sq / float64(len(snaps)))
	c := int(math.Round(100 - (stdDev/avg)*100))
	return clampPct(c)
}

func clampNonNeg(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clampPct(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
