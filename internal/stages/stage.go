// Package stages implements the ordered text transformations of the pipeline. Every stage collects
// its edits against the unmodified input and applies them in a single pass, so an edit never sees
// the output of another edit from the same stage.
package stages

import (
	"math"

	"github.com/jonathan/prose-humanizer/internal/langdata"
	"github.com/jonathan/prose-humanizer/internal/rng"
	"github.com/jonathan/prose-humanizer/internal/textutil"
	"github.com/jonathan/prose-humanizer/internal/types"
)

// Stage names in default execution order.
const (
	NameTypography  = "typography"
	NameDeformalize = "deformalize"
	NameParaphrase  = "paraphrase"
	NameRepetition  = "repetition"
	NameStructure   = "structure"
	NameLiveliness  = "liveliness"
	NameNaturalize  = "naturalize"
)

// Stage is one transformation step. Apply must be a pure function of its arguments and the
// generator's state, and must never touch placeholder characters.
type Stage interface {
	Name() string
	// Universal reports whether the stage runs for languages without a deep pack.
	Universal() bool
	Apply(text string, pack *langdata.Pack, profile langdata.Profile, intensity float64, gen *rng.Generator) (string, []types.ChangeEntry)
}

// Default returns the stage sequence in execution order.
func Default() []Stage {
	return []Stage{
		Typography{},
		Deformalize{},
		Paraphrase{},
		Repetition{},
		Structure{},
		Liveliness{},
		Naturalize{},
	}
}

// Names returns the names of the default sequence.
func Names() []string {
	seq := Default()
	out := make([]string, len(seq))
	for i, s := range seq {
		out[i] = s.Name()
	}
	return out
}

// ByName returns the stage with the given name.
func ByName(name string) (Stage, bool) {
	for _, s := range Default() {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Probability is the per-candidate edit probability of a stage:
// intensity/100 * profile multiplier * stage weight, clamped to [0, 1].
func Probability(intensity float64, profile langdata.Profile, stage string, weight float64) float64 {
	p := intensity / 100 * profile.Multiplier(stage) * weight
	return math.Max(0, math.Min(p, 1))
}

// Budget caps the number of edits a stage may make: at least one, at most fraction of the words.
func Budget(words int, fraction float64) int {
	b := int(math.Ceil(float64(words) * fraction))
	if b < 1 {
		return 1
	}
	return b
}

// collector gathers non-overlapping edits for one stage run.
type collector struct {
	stage   string
	budget  int
	edits   []textutil.Edit
	changes []types.ChangeEntry
}

func newCollector(stage string, budget int) *collector {
	return &collector{stage: stage, budget: budget}
}

func (c *collector) full() bool {
	return c.budget >= 0 && len(c.edits) >= c.budget
}

// add records an edit unless the budget is spent or it overlaps an accepted edit.
func (c *collector) add(start, end int, replacement, kind, before string) bool {
	if c.full() {
		return false
	}
	if textutil.Overlaps(textutil.Span{Start: start, End: end}, c.edits) {
		return false
	}
	for _, e := range c.edits {
		if start == end && e.Start == start {
			return false
		}
	}
	c.edits = append(c.edits, textutil.Edit{Start: start, End: end, Text: replacement})
	c.changes = append(c.changes, types.ChangeEntry{Stage: c.stage, Kind: kind, Before: before, After: replacement})
	return true
}

func (c *collector) apply(text string) (string, []types.ChangeEntry) {
	if len(c.edits) == 0 {
		return text, nil
	}
	out, _ := textutil.ApplyEdits(text, c.edits)
	return out, c.changes
}

// replacementFor draws one alternative and shapes its case after the matched text. At a sentence
// start the result is capitalized.
func replacementFor(text string, m textutil.Match, options []string, gen *rng.Generator) string {
	choice := rng.Choice(gen, options)
	original := text[m.Start:m.End]
	out := textutil.MatchCase(original, choice)
	if textutil.IsSentenceStart(text, m.Start) {
		out = textutil.Capitalize(out)
	}
	return out
}
