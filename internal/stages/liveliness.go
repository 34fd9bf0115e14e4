package stages

import (
	"github.com/jonathan/prose-humanizer/internal/langdata"
	"github.com/jonathan/prose-humanizer/internal/rng"
	"github.com/jonathan/prose-humanizer/internal/textutil"
	"github.com/jonathan/prose-humanizer/internal/types"
)

const (
	livelinessWeight = 1.0
	livelinessBudget = 0.2
)

// Liveliness contracts expanded word pairs ("do not" to "don't").
type Liveliness struct{}

func (Liveliness) Name() string    { return NameLiveliness }
func (Liveliness) Universal() bool { return false }

func (Liveliness) Apply(text string, pack *langdata.Pack, profile langdata.Profile, intensity float64, gen *rng.Generator) (string, []types.ChangeEntry) {
	p := Probability(intensity, profile, NameLiveliness, livelinessWeight)
	c := newCollector(NameLiveliness, Budget(textutil.CountWords(text), livelinessBudget))

	for _, m := range pack.Contractions().FindAll(text) {
		if !gen.Chance(p) {
			continue
		}
		contracted, ok := pack.Contraction(m.Phrase)
		if !ok {
			continue
		}
		before := text[m.Start:m.End]
		c.add(m.Start, m.End, textutil.MatchCase(before, contracted), types.KindReplace, before)
	}
	return c.apply(text)
}
