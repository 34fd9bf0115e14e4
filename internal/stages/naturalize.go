package stages

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/prose-humanizer/internal/langdata"
	"github.com/jonathan/prose-humanizer/internal/rng"
	"github.com/jonathan/prose-humanizer/internal/textutil"
	"github.com/jonathan/prose-humanizer/internal/types"
)

const (
	naturalizeWeight = 0.5
	naturalizeBudget = 0.04

	minAsideSentenceWords = 5
)

// Naturalize drops an occasional casual aside ("Honestly, ...") at the start of a sentence.
// It runs for every language; packs without asides leave the text untouched.
type Naturalize struct{}

func (Naturalize) Name() string    { return NameNaturalize }
func (Naturalize) Universal() bool { return true }

func (Naturalize) Apply(text string, pack *langdata.Pack, profile langdata.Profile, intensity float64, gen *rng.Generator) (string, []types.ChangeEntry) {
	if pack == nil {
		return text, nil
	}
	asides := make([]string, 0, len(pack.Interjections())+len(pack.Hedges()))
	asides = append(asides, pack.Interjections()...)
	asides = append(asides, pack.Hedges()...)
	if len(asides) == 0 {
		return text, nil
	}

	p := Probability(intensity, profile, NameNaturalize, naturalizeWeight)
	c := newCollector(NameNaturalize, Budget(textutil.CountWords(text), naturalizeBudget))

	previousHadAside := false
	for _, s := range textutil.SentenceSpans(text) {
		sentence := text[s.Start:s.End]
		words := textutil.Words(sentence)
		if len(words) < minAsideSentenceWords || previousHadAside {
			previousHadAside = false
			continue
		}
		r, size := utf8.DecodeRuneInString(sentence)
		if !unicode.IsUpper(r) || introduced(sentence) {
			continue
		}
		if !gen.Chance(p) {
			continue
		}

		aside := textutil.Capitalize(rng.Choice(gen, asides))
		opening := string(r)
		if pack.IsStopword(strings.ToLower(words[0])) && words[0] != "I" {
			opening = textutil.Decapitalize(opening)
		}
		if c.add(s.Start, s.Start+size, aside+", "+opening, types.KindReplace, string(r)) {
			previousHadAside = true
		}
	}
	return c.apply(text)
}

// introduced reports whether the sentence already opens with a short introductory phrase, as in
// "Also, ..." or "On top of that, ...".
func introduced(sentence string) bool {
	idx := strings.IndexByte(sentence, ',')
	return idx >= 0 && textutil.CountWords(sentence[:idx]) <= 4
}
