// Package validation compares a transformed text with its original and decides whether the result
// may be returned, returned with warnings, or must be rolled back.
package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/prose-humanizer/internal/segment"
	"github.com/jonathan/prose-humanizer/internal/textutil"
	"github.com/jonathan/prose-humanizer/internal/types"
)

// Fixed bounds of the checks.
const (
	ChangeRatioError   = 0.8
	ChangeRatioWarning = 0.5

	LengthRatioMinError   = 0.5
	LengthRatioMaxError   = 2.0
	LengthRatioMinWarning = 0.7
	LengthRatioMaxWarning = 1.5

	StructureRatioMin = 0.5
	StructureRatioMax = 2.0

	// DefaultRollbackThreshold is the number of errors that triggers a rollback.
	DefaultRollbackThreshold = 2
)

// Options provides optional parameters for validation
type Options struct {
	RollbackThreshold int          // Errors needed for ShouldRollback; DefaultRollbackThreshold when zero
	Placeholders      *segment.Map // When set, placeholders missing from or surviving in the text are errors
}

// NewOptions returns options with the given rollback threshold.
func NewOptions(rollbackThreshold int) (*Options, error) {
	if rollbackThreshold < 1 {
		return nil, &Error{Message: fmt.Sprintf("rollback threshold must be at least 1, got %d", rollbackThreshold)}
	}
	return &Options{RollbackThreshold: rollbackThreshold}, nil
}

func (o *Options) threshold() int {
	if o == nil || o.RollbackThreshold < 1 {
		return DefaultRollbackThreshold
	}
	return o.RollbackThreshold
}

// Validate runs every check on the restored transformed text. It never fails; problems are
// reported as errors or warnings on the returned report.
func Validate(original, transformed string, cfg types.PipelineConfig, opts *Options) types.ValidationReport {
	cfg = cfg.Normalized()
	report := types.ValidationReport{
		Errors:      []string{},
		Warnings:    []string{},
		ChangeRatio: ChangeRatio(original, transformed),
		LengthRatio: LengthRatio(original, transformed),
	}

	checkChangeRatio(&report, cfg.Constraints.MaxChangeRatio)
	checkLengthRatio(&report)
	report.Errors = append(report.Errors, CheckKeywords(transformed, cfg.Constraints.Keywords)...)
	if w := checkNumbers(original, transformed); w != "" {
		report.Warnings = append(report.Warnings, w)
	}
	report.Warnings = append(report.Warnings, checkStructure(original, transformed)...)
	report.Warnings = append(report.Warnings, checkShortSentences(original, transformed, cfg.Constraints.MinSentenceLength)...)

	var placeholders *segment.Map
	if opts != nil {
		placeholders = opts.Placeholders
	}
	report.Errors = append(report.Errors, CheckPlaceholders(transformed, placeholders)...)

	report.IsValid = len(report.Errors) == 0
	report.ShouldRollback = len(report.Errors) >= opts.threshold()
	return report
}

// ChangeRatio is 1 - 2*|overlap| / (|a| + |b|) over the lowercase word multisets of both texts.
// Identical texts give 0, texts without a shared word give 1.
func ChangeRatio(a, b string) float64 {
	wa := textutil.LowerWords(a)
	wb := textutil.LowerWords(b)
	if len(wa)+len(wb) == 0 {
		return 0
	}
	counts := make(map[string]int, len(wa))
	for _, w := range wa {
		counts[w]++
	}
	overlap := 0
	for _, w := range wb {
		if counts[w] > 0 {
			counts[w]--
			overlap++
		}
	}
	return 1 - 2*float64(overlap)/float64(len(wa)+len(wb))
}

// LengthRatio is the transformed length over the original length, in runes.
func LengthRatio(original, transformed string) float64 {
	o := len([]rune(original))
	t := len([]rune(transformed))
	if o == 0 {
		if t == 0 {
			return 1
		}
		return math.Inf(1)
	}
	return float64(t) / float64(o)
}

func checkChangeRatio(report *types.ValidationReport, maxRatio float64) {
	r := report.ChangeRatio
	switch {
	case r > ChangeRatioError:
		report.Errors = append(report.Errors, fmt.Sprintf("change ratio %.2f exceeds hard limit %.2f", r, ChangeRatioError))
	case r > maxRatio:
		report.Errors = append(report.Errors, fmt.Sprintf("change ratio %.2f exceeds configured maximum %.2f", r, maxRatio))
	case r > ChangeRatioWarning:
		report.Warnings = append(report.Warnings, fmt.Sprintf("change ratio %.2f is high", r))
	}
}

func checkLengthRatio(report *types.ValidationReport) {
	r := report.LengthRatio
	switch {
	case r < LengthRatioMinError || r > LengthRatioMaxError:
		report.Errors = append(report.Errors, fmt.Sprintf("length ratio %.2f outside [%.1f, %.1f]", r, LengthRatioMinError, LengthRatioMaxError))
	case r < LengthRatioMinWarning || r > LengthRatioMaxWarning:
		report.Warnings = append(report.Warnings, fmt.Sprintf("length ratio %.2f outside [%.1f, %.1f]", r, LengthRatioMinWarning, LengthRatioMaxWarning))
	}
}

// checkNumbers compares the numeric tokens of both texts as multisets.
func checkNumbers(original, transformed string) string {
	counts := make(map[string]int)
	for _, n := range textutil.Numbers(original) {
		counts[n]++
	}
	for _, n := range textutil.Numbers(transformed) {
		counts[n]--
	}
	var missing, added []string
	for n, c := range counts {
		switch {
		case c > 0:
			missing = append(missing, n)
		case c < 0:
			added = append(added, n)
		}
	}
	if len(missing) == 0 && len(added) == 0 {
		return ""
	}
	sortStrings(missing)
	sortStrings(added)
	return fmt.Sprintf("numbers changed: missing [%s], added [%s]", strings.Join(missing, ", "), strings.Join(added, ", "))
}

func checkStructure(original, transformed string) []string {
	var warnings []string
	if r, ok := ratio(len(textutil.Sentences(transformed)), len(textutil.Sentences(original))); ok && outside(r) {
		warnings = append(warnings, fmt.Sprintf("sentence count ratio %.2f outside [%.1f, %.1f]", r, StructureRatioMin, StructureRatioMax))
	}
	if r, ok := ratio(textutil.NonBlankLines(transformed), textutil.NonBlankLines(original)); ok && outside(r) {
		warnings = append(warnings, fmt.Sprintf("line count ratio %.2f outside [%.1f, %.1f]", r, StructureRatioMin, StructureRatioMax))
	}
	return warnings
}

func ratio(num, den int) (float64, bool) {
	if den == 0 {
		return 0, false
	}
	return float64(num) / float64(den), true
}

func outside(r float64) bool {
	return r < StructureRatioMin || r > StructureRatioMax
}

// checkShortSentences warns about sentences below the minimum length that the original did not have.
func checkShortSentences(original, transformed string, minWords int) []string {
	if minWords <= 0 {
		return nil
	}
	existing := make(map[string]bool)
	for _, s := range textutil.Sentences(original) {
		existing[s] = true
	}
	var warnings []string
	for _, s := range textutil.Sentences(transformed) {
		if existing[s] {
			continue
		}
		if n := textutil.CountWords(s); n < minWords {
			warnings = append(warnings, fmt.Sprintf("new sentence %q has %d words, minimum is %d", s, n, minWords))
		}
	}
	return warnings
}
