// Package metrics computes the artificiality ensemble: five surface statistics combined into a
// 0-100 score, plus the blended detector built on top of it.
package metrics

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/prose-humanizer/internal/langdata"
	"github.com/jonathan/prose-humanizer/internal/textutil"
	"github.com/jonathan/prose-humanizer/internal/types"
)

// Point weights of the artificiality score. They sum to 100.
const (
	WeightCV         = 20.0
	WeightFormulaic  = 25.0
	WeightConnector  = 20.0
	WeightRepetition = 15.0
	WeightTypography = 20.0
)

// Scaling constants. A metric at or above its saturation value earns the full weight.
const (
	CVStrongBand        = 0.3
	CVWeakBand          = 0.5
	MinSentencesForCV   = 3
	FormulaicSaturation = 0.03
	ConnectorSaturation = 0.5
	RepetitionSaturate  = 0.6
	TypographyChecks    = 5
)

var afterTerminator = regexp.MustCompile(`[.!?…]["')\]”’»]*(\s+)`)

// Score computes the metric snapshot of text using the pack's vocabularies. Score never fails:
// empty text yields a zero snapshot.
func Score(text string, pack *langdata.Pack) types.MetricSnapshot {
	text = textutil.StripPlaceholders(text)
	words := textutil.LowerWords(text)
	sentences := textutil.Sentences(text)

	snap := types.MetricSnapshot{
		Words:     len(words),
		Sentences: len(sentences),
	}
	if len(words) == 0 {
		return snap
	}

	snap.SentenceLengths = make([]int, len(sentences))
	for i, s := range sentences {
		snap.SentenceLengths[i] = textutil.CountWords(s)
	}
	snap.MeanLength, snap.Variance, snap.CV = dispersion(snap.SentenceLengths)

	if pack != nil {
		snap.FormulaicHits = pack.Formulaic().Count(text)
		snap.ConnectorHits = pack.Connectors().Count(text)
	}
	snap.FormulaicDensity = float64(snap.FormulaicHits) / float64(len(words))
	if len(sentences) > 0 {
		snap.ConnectorRatio = float64(snap.ConnectorHits) / float64(len(sentences))
	}

	snap.Repetition = repetition(words, pack)
	snap.TypographyHits = typographyHits(text, len(sentences))
	snap.Typography = float64(snap.TypographyHits) / TypographyChecks

	snap.Breakdown = types.Breakdown{
		CV:         cvPoints(snap.CV, len(sentences)),
		Formulaic:  saturate(snap.FormulaicDensity, FormulaicSaturation) * WeightFormulaic,
		Connector:  saturate(snap.ConnectorRatio, ConnectorSaturation) * WeightConnector,
		Repetition: saturate(snap.Repetition, RepetitionSaturate) * WeightRepetition,
		Typography: snap.Typography * WeightTypography,
	}
	total := snap.Breakdown.CV + snap.Breakdown.Formulaic + snap.Breakdown.Connector +
		snap.Breakdown.Repetition + snap.Breakdown.Typography
	snap.Artificiality = math.Min(total, 100)
	return snap
}

func dispersion(lengths []int) (mean, variance, cv float64) {
	if len(lengths) == 0 {
		return 0, 0, 0
	}
	sum := 0
	for _, l := range lengths {
		sum += l
	}
	mean = float64(sum) / float64(len(lengths))
	for _, l := range lengths {
		d := float64(l) - mean
		variance += d * d
	}
	variance /= float64(len(lengths))
	if mean > 0 {
		cv = math.Sqrt(variance) / mean
	}
	return mean, variance, cv
}

// cvPoints uses two fixed bands rather than a continuous scale.
func cvPoints(cv float64, sentences int) float64 {
	switch {
	case sentences < MinSentencesForCV:
		return 0
	case cv < CVStrongBand:
		return WeightCV
	case cv < CVWeakBand:
		return WeightCV / 2
	default:
		return 0
	}
}

func saturate(value, at float64) float64 {
	if at <= 0 || value <= 0 {
		return 0
	}
	return math.Min(value/at, 1)
}

// isContentWord excludes function words, numbers and very short tokens.
func isContentWord(w string, pack *langdata.Pack) bool {
	if utf8.RuneCountInString(w) < 3 {
		return false
	}
	if pack != nil && pack.IsStopword(w) {
		return false
	}
	for _, r := range w {
		if r < '0' || r > '9' {
			return true
		}
	}
	return false
}

// repetition averages the content-word repeat rate and the repeated-bigram rate.
func repetition(words []string, pack *langdata.Pack) float64 {
	var content []string
	for _, w := range words {
		if isContentWord(w, pack) {
			content = append(content, w)
		}
	}

	wordRate := 0.0
	if len(content) > 0 {
		unique := make(map[string]struct{}, len(content))
		for _, w := range content {
			unique[w] = struct{}{}
		}
		wordRate = 1 - float64(len(unique))/float64(len(content))
	}

	bigramRate := 0.0
	if len(words) > 1 {
		total := len(words) - 1
		unique := make(map[string]struct{}, total)
		for i := 0; i < total; i++ {
			unique[words[i]+" "+words[i+1]] = struct{}{}
		}
		bigramRate = float64(total-len(unique)) / float64(total)
	}

	return 0.5*wordRate + 0.5*bigramRate
}

// typographyHits counts typographic tells: em dash, smart double quotes, smart single quotes,
// the ellipsis character and machine-regular spacing.
func typographyHits(text string, sentences int) int {
	hits := 0
	if strings.ContainsRune(text, '—') {
		hits++
	}
	if strings.ContainsAny(text, "“”„«»") {
		hits++
	}
	if strings.ContainsAny(text, "‘’") {
		hits++
	}
	if strings.ContainsRune(text, '…') {
		hits++
	}
	if regularSpacing(text, sentences) {
		hits++
	}
	return hits
}

func regularSpacing(text string, sentences int) bool {
	if sentences < MinSentencesForCV {
		return false
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(strings.TrimSpace(line), "  ") {
			return false
		}
	}
	for _, m := range afterTerminator.FindAllStringSubmatch(text, -1) {
		gap := m[1]
		if gap != " " && !strings.Contains(gap, "\n") {
			return false
		}
	}
	return true
}
