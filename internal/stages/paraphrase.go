package stages

import (
	"github.com/jonathan/prose-humanizer/internal/langdata"
	"github.com/jonathan/prose-humanizer/internal/rng"
	"github.com/jonathan/prose-humanizer/internal/textutil"
	"github.com/jonathan/prose-humanizer/internal/types"
)

const (
	paraphraseWeight = 1.0
	paraphraseBudget = 0.2
)

// Paraphrase swaps stiff vocabulary and jargon for plain-language alternatives.
type Paraphrase struct{}

func (Paraphrase) Name() string    { return NameParaphrase }
func (Paraphrase) Universal() bool { return false }

func (Paraphrase) Apply(text string, pack *langdata.Pack, profile langdata.Profile, intensity float64, gen *rng.Generator) (string, []types.ChangeEntry) {
	p := Probability(intensity, profile, NameParaphrase, paraphraseWeight)
	c := newCollector(NameParaphrase, Budget(textutil.CountWords(text), paraphraseBudget))

	for _, m := range pack.Paraphrases().FindAll(text) {
		if !gen.Chance(p) {
			continue
		}
		options := pack.ParaphraseReplacements(m.Phrase)
		if len(options) == 0 {
			continue
		}
		c.add(m.Start, m.End, replacementFor(text, m, options, gen), types.KindReplace, text[m.Start:m.End])
	}
	return c.apply(text)
}
