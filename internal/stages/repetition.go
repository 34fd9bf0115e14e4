package stages

import (
	"strings"

	"github.com/jonathan/prose-humanizer/internal/langdata"
	"github.com/jonathan/prose-humanizer/internal/rng"
	"github.com/jonathan/prose-humanizer/internal/textutil"
	"github.com/jonathan/prose-humanizer/internal/types"
)

const (
	repetitionWeight = 1.0
	repetitionBudget = 0.15
)

// Repetition breaks up repeated content words: the first occurrence stays, later ones may be
// replaced by a synonym.
type Repetition struct{}

func (Repetition) Name() string    { return NameRepetition }
func (Repetition) Universal() bool { return false }

func (Repetition) Apply(text string, pack *langdata.Pack, profile langdata.Profile, intensity float64, gen *rng.Generator) (string, []types.ChangeEntry) {
	p := Probability(intensity, profile, NameRepetition, repetitionWeight)
	spans := textutil.WordSpans(text)
	c := newCollector(NameRepetition, Budget(len(spans), repetitionBudget))

	seen := make(map[string]int)
	for _, s := range spans {
		word := text[s.Start:s.End]
		lower := strings.ToLower(word)
		if pack.IsStopword(lower) {
			continue
		}
		seen[lower]++
		if seen[lower] < 2 {
			continue
		}
		options := pack.Synonyms(lower)
		if len(options) == 0 {
			continue
		}
		if !gen.Chance(p) {
			continue
		}
		choice := rng.Choice(gen, options)
		c.add(s.Start, s.End, textutil.MatchCase(word, choice), types.KindReplace, word)
	}
	return c.apply(text)
}
