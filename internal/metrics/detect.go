package metrics

import (
	"math"

	"github.com/jonathan/prose-humanizer/internal/langdata"
	"github.com/jonathan/prose-humanizer/internal/types"
)

// Blend weights of the detector.
const (
	BlendWeighted = 0.5
	BlendStrong   = 0.3
	BlendVote     = 0.2
)

// Verdict boundaries on the combined 0-100 score.
const (
	MixedThreshold = 35.0
	AIThreshold    = 65.0
)

// threshold pairs the vote threshold of a metric with its strong-signal threshold.
type threshold struct {
	name   string
	vote   func(types.MetricSnapshot) bool
	strong func(types.MetricSnapshot) bool
}

var thresholds = []threshold{
	{
		name: "sentence_cv",
		vote: func(s types.MetricSnapshot) bool {
			return s.Sentences >= MinSentencesForCV && s.CV < CVStrongBand
		},
		strong: func(s types.MetricSnapshot) bool {
			return s.Sentences >= MinSentencesForCV && s.CV < 0.2
		},
	},
	{
		name:   "formulaic_density",
		vote:   func(s types.MetricSnapshot) bool { return s.FormulaicDensity >= FormulaicSaturation/2 },
		strong: func(s types.MetricSnapshot) bool { return s.FormulaicDensity >= 0.05 },
	},
	{
		name:   "connector_ratio",
		vote:   func(s types.MetricSnapshot) bool { return s.ConnectorRatio >= ConnectorSaturation/2 },
		strong: func(s types.MetricSnapshot) bool { return s.ConnectorRatio >= 0.6 },
	},
	{
		name:   "repetition",
		vote:   func(s types.MetricSnapshot) bool { return s.Repetition >= RepetitionSaturate/2 },
		strong: func(s types.MetricSnapshot) bool { return s.Repetition >= 0.5 },
	},
	{
		name:   "typography",
		vote:   func(s types.MetricSnapshot) bool { return s.Typography >= 0.4 },
		strong: func(s types.MetricSnapshot) bool { return s.Typography >= 0.8 },
	},
}

// Detect scores text and classifies it. The combined score blends the weighted sum, a strong-signal
// override that fires when any single metric is extreme, and the share of metrics over their own
// vote threshold.
func Detect(text string, pack *langdata.Pack) types.Detection {
	snap := Score(text, pack)
	weighted := snap.Artificiality

	strong := weighted
	votes := 0
	for _, th := range thresholds {
		if th.strong(snap) {
			strong = 100
		}
		if th.vote(snap) {
			votes++
		}
	}
	vote := 100 * float64(votes) / float64(len(thresholds))

	combined := BlendWeighted*weighted + BlendStrong*strong + BlendVote*vote
	combined = math.Max(0, math.Min(combined, 100))
	verdict := VerdictFor(combined)

	code := ""
	if pack != nil {
		code = pack.Code()
	}
	return types.Detection{
		Score:      combined,
		Verdict:    verdict,
		Confidence: confidence(combined, verdict),
		Language:   code,
		Metrics: map[string]float64{
			"sentence_cv":       snap.CV,
			"formulaic_density": snap.FormulaicDensity,
			"connector_ratio":   snap.ConnectorRatio,
			"repetition":        snap.Repetition,
			"typography":        snap.Typography,
			"artificiality":     weighted,
			"strong_signal":     strong,
			"vote_ratio":        vote / 100,
		},
	}
}

// VerdictFor maps a combined score to a verdict. 65 itself is ai_generated.
func VerdictFor(score float64) types.Verdict {
	switch {
	case score < MixedThreshold:
		return types.VerdictHuman
	case score < AIThreshold:
		return types.VerdictMixed
	default:
		return types.VerdictAI
	}
}

// confidence is the distance to the nearest boundary of the verdict's band, scaled to [0,1].
func confidence(score float64, verdict types.Verdict) float64 {
	var c float64
	switch verdict {
	case types.VerdictHuman:
		c = (MixedThreshold - score) / MixedThreshold
	case types.VerdictMixed:
		c = math.Min(score-MixedThreshold, AIThreshold-score) / ((AIThreshold - MixedThreshold) / 2)
	default:
		c = (score - AIThreshold) / (100 - AIThreshold)
	}
	return math.Max(0, math.Min(c, 1))
}
