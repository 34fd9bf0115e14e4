package pipeline

import (
	"math"

	"github.com/jonathan/prose-humanizer/internal/types"
)

// Adaptive control constants. Scores are pre-transform artificiality scores (0-100).
const (
	NearNaturalThreshold = 15.0
	BorderlineThreshold  = 25.0
	LowThreshold         = 40.0
	HighThreshold        = 70.0

	BorderlineFactor = 0.5
	LowFactor        = 0.75
	HighFactor       = 1.25

	// RetryFactor scales the effective intensity of the graduated retry.
	RetryFactor = 0.5
)

// EffectiveIntensity scales the configured intensity by the pre-transform score. It reports true
// when the text is already near-natural and only typography should run.
func EffectiveIntensity(configured int, score float64) (float64, bool) {
	base := math.Max(0, math.Min(float64(configured), 100))
	switch {
	case score < NearNaturalThreshold:
		return base, true
	case score < BorderlineThreshold:
		return base * BorderlineFactor, false
	case score < LowThreshold:
		return base * LowFactor, false
	case score < HighThreshold:
		return base, false
	default:
		return math.Min(base*HighFactor, 100), false
	}
}

// QualityScore rates a result: 100 minus the remaining artificiality, 10 points per validation
// error and 2 per warning, clamped to [0, 100].
func QualityScore(artificialityAfter float64, report types.ValidationReport) float64 {
	q := 100 - artificialityAfter - 10*float64(len(report.Errors)) - 2*float64(len(report.Warnings))
	return math.Max(0, math.Min(q, 100))
}
