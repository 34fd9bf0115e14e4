package stages

import (
	"strings"
	"unicode/utf8"

	"github.com/jonathan/prose-humanizer/internal/langdata"
	"github.com/jonathan/prose-humanizer/internal/rng"
	"github.com/jonathan/prose-humanizer/internal/textutil"
	"github.com/jonathan/prose-humanizer/internal/types"
)

const (
	structureWeight = 0.8
	structureBudget = 0.1

	longSentenceWords  = 18
	shortSentenceWords = 6
	minPartWords       = 4
)

// Structure varies sentence rhythm: long sentences are split at a clause boundary and pairs of
// short sentences are joined.
type Structure struct{}

func (Structure) Name() string    { return NameStructure }
func (Structure) Universal() bool { return false }

func (Structure) Apply(text string, pack *langdata.Pack, profile langdata.Profile, intensity float64, gen *rng.Generator) (string, []types.ChangeEntry) {
	p := Probability(intensity, profile, NameStructure, structureWeight)
	c := newCollector(NameStructure, Budget(textutil.CountWords(text), structureBudget))
	sentences := textutil.SentenceSpans(text)

	merged := -1
	for i, s := range sentences {
		if i == merged {
			continue
		}
		sentence := text[s.Start:s.End]
		words := textutil.CountWords(sentence)

		if words >= longSentenceWords && endsWithTerminator(sentence) {
			if !gen.Chance(p) {
				continue
			}
			splitSentence(c, text, s, pack.Splitters())
			continue
		}

		if i+1 >= len(sentences) || words > shortSentenceWords || words < 2 {
			continue
		}
		next := sentences[i+1]
		nextWords := textutil.CountWords(text[next.Start:next.End])
		if nextWords > shortSentenceWords || nextWords < 2 || !strings.HasSuffix(sentence, ".") {
			continue
		}
		gap := text[s.End:next.Start]
		if strings.Contains(gap, "\n") || !endsWithTerminator(text[next.Start:next.End]) {
			continue
		}
		if !gen.Chance(p) {
			continue
		}
		if mergeSentences(c, text, s, next, pack) {
			merged = i + 1
		}
	}
	return c.apply(text)
}

func endsWithTerminator(sentence string) bool {
	r, _ := utf8.DecodeLastRuneInString(strings.TrimRight(sentence, `"')]”’»`))
	return r == '.' || r == '!' || r == '?'
}

// splitSentence cuts at the splitter occurrence closest to the middle that leaves enough words
// on both sides.
func splitSentence(c *collector, text string, s textutil.Span, splitters []langdata.Splitter) {
	sentence := text[s.Start:s.End]
	mid := len(sentence) / 2

	bestAt, bestDist := -1, len(sentence)
	var best langdata.Splitter
	for _, sp := range splitters {
		if sp.Separator == "" {
			continue
		}
		offset := 0
		for {
			idx := strings.Index(sentence[offset:], sp.Separator)
			if idx < 0 {
				break
			}
			at := offset + idx
			offset = at + len(sp.Separator)
			if textutil.CountWords(sentence[:at]) < minPartWords || textutil.CountWords(sentence[offset:]) < minPartWords {
				continue
			}
			dist := at - mid
			if dist < 0 {
				dist = -dist
			}
			if dist < bestDist {
				bestAt, bestDist, best = at, dist, sp
			}
		}
	}
	if bestAt < 0 {
		return
	}

	start := s.Start + bestAt
	end := start + len(best.Separator)
	if best.Lead != "" {
		c.add(start, end, ". "+best.Lead+" ", types.KindSplit, text[start:end])
		return
	}
	next, size := utf8.DecodeRuneInString(text[end:])
	c.add(start, end+size, ". "+textutil.Capitalize(string(next)), types.KindSplit, text[start:end+size])
}

// mergeSentences joins two short sentences with the pack's joiner. The second sentence's first
// letter is lowered only when it opens with a function word, so names keep their capital.
func mergeSentences(c *collector, text string, first, second textutil.Span, pack *langdata.Pack) bool {
	joiner := pack.MergeJoiner()
	if joiner == "" {
		return false
	}
	start := first.End - 1 // the period
	lead := text[second.Start:second.End]
	firstWord := ""
	if words := textutil.Words(lead); len(words) > 0 {
		firstWord = words[0]
	}
	r, size := utf8.DecodeRuneInString(lead)
	end := second.Start + size

	opening := string(r)
	if pack.IsStopword(strings.ToLower(firstWord)) && firstWord != "I" {
		opening = textutil.Decapitalize(opening)
	}
	return c.add(start, end, joiner+opening, types.KindMerge, text[start:end])
}
