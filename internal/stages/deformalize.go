package stages

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/prose-humanizer/internal/langdata"
	"github.com/jonathan/prose-humanizer/internal/rng"
	"github.com/jonathan/prose-humanizer/internal/textutil"
	"github.com/jonathan/prose-humanizer/internal/types"
)

const (
	deformalizeWeight = 1.5
	deformalizeBudget = 0.3
)

// Deformalize rewrites stiff sentence openers ("Furthermore,") and formal set phrases
// ("it is important to note that") into plainer wording.
type Deformalize struct{}

func (Deformalize) Name() string    { return NameDeformalize }
func (Deformalize) Universal() bool { return false }

type candidate struct {
	match  textutil.Match
	opener bool
}

func (Deformalize) Apply(text string, pack *langdata.Pack, profile langdata.Profile, intensity float64, gen *rng.Generator) (string, []types.ChangeEntry) {
	p := Probability(intensity, profile, NameDeformalize, deformalizeWeight)
	c := newCollector(NameDeformalize, Budget(textutil.CountWords(text), deformalizeBudget))

	var candidates []candidate
	for _, m := range pack.Openers().FindAll(text) {
		if m.End < len(text) && text[m.End] == ',' && textutil.IsSentenceStart(text, m.Start) {
			candidates = append(candidates, candidate{match: m, opener: true})
		}
	}
	for _, m := range pack.Phrases().FindAll(text) {
		candidates = append(candidates, candidate{match: m})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].match.Start < candidates[j].match.Start
	})

	for _, cand := range candidates {
		if !gen.Chance(p) {
			continue
		}
		if cand.opener {
			replaceOpener(c, text, cand.match, pack.OpenerReplacements(cand.match.Phrase), gen)
			continue
		}
		options := pack.PhraseReplacements(cand.match.Phrase)
		if len(options) == 0 {
			continue
		}
		before := text[cand.match.Start:cand.match.End]
		c.add(cand.match.Start, cand.match.End, replacementFor(text, cand.match, options, gen), types.KindReplace, before)
	}
	return c.apply(text)
}

// replaceOpener swaps an opener and its comma. An empty alternative removes the opener, the comma
// and the following spaces, and capitalizes the next word.
func replaceOpener(c *collector, text string, m textutil.Match, options []string, gen *rng.Generator) {
	if len(options) == 0 {
		return
	}
	choice := rng.Choice(gen, options)
	end := m.End + 1 // comma
	before := text[m.Start:end]

	if choice != "" {
		replacement := textutil.MatchCase(text[m.Start:m.End], choice) + ","
		c.add(m.Start, end, textutil.Capitalize(replacement), types.KindReplace, before)
		return
	}

	rest := text[end:]
	trimmed := strings.TrimLeft(rest, " \t")
	if trimmed == "" {
		return
	}
	next, size := utf8.DecodeRuneInString(trimmed)
	stop := end + (len(rest) - len(trimmed)) + size
	c.add(m.Start, stop, textutil.Capitalize(string(next)), types.KindRemove, text[m.Start:stop])
}
