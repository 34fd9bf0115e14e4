// Package textutil provides the tokenization, sentence splitting and edit-application helpers shared by
// the metric ensemble, the transformation stages and the validator.
package textutil

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Placeholder delimiters used by the segment guard. Both are control characters that never occur in
// natural text.
const (
	PlaceholderOpen  = "\x02"
	PlaceholderClose = "\x03"
)

var (
	wordPattern        = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’\-][\p{L}\p{N}]+)*`)
	numberPattern      = regexp.MustCompile(`\d+(?:[.,]\d+)*%?`)
	placeholderPattern = regexp.MustCompile("\x02\\d+\x03")
)

// Span is a half-open byte range [Start, End) in a text.
type Span struct {
	Start int
	End   int
}

// Words returns the word tokens of text in order, placeholders excluded.
func Words(text string) []string {
	return wordPattern.FindAllString(StripPlaceholders(text), -1)
}

// LowerWords returns Words lowercased.
func LowerWords(text string) []string {
	words := Words(text)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return words
}

// WordSpans returns the byte spans of the word tokens of text. Placeholder digits are skipped.
func WordSpans(text string) []Span {
	var spans []Span
	for _, loc := range wordPattern.FindAllStringIndex(text, -1) {
		if loc[0] > 0 && text[loc[0]-1] == PlaceholderOpen[0] {
			continue
		}
		spans = append(spans, Span{Start: loc[0], End: loc[1]})
	}
	return spans
}

// CountWords returns the number of word tokens in text.
func CountWords(text string) int {
	return len(Words(text))
}

// StripPlaceholders replaces every segment-guard placeholder with a single space.
func StripPlaceholders(text string) string {
	if !strings.Contains(text, PlaceholderOpen) {
		return text
	}
	return placeholderPattern.ReplaceAllString(text, " ")
}

// Numbers returns the numeric tokens of text in order.
func Numbers(text string) []string {
	return numberPattern.FindAllString(StripPlaceholders(text), -1)
}

// NonBlankLines counts lines that contain something other than whitespace.
func NonBlankLines(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

// isTerminator reports whether r ends a sentence.
func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

// isCloser reports whether r may trail a terminator and still belong to the sentence.
func isCloser(r rune) bool {
	return r == '"' || r == '\'' || r == ')' || r == ']' || r == '”' || r == '’' || r == '»'
}

// SentenceSpans splits text into sentence spans. A sentence ends at a run of terminators followed by
// whitespace or end of text, or at a newline. Spans without any word are dropped.
func SentenceSpans(text string) []Span {
	var spans []Span
	start := 0
	emit := func(end int) {
		seg := text[start:end]
		trimmedLeft := len(seg) - len(strings.TrimLeftFunc(seg, unicode.IsSpace))
		s := Span{Start: start + trimmedLeft, End: start + len(strings.TrimRightFunc(seg, unicode.IsSpace))}
		if s.End > s.Start && wordPattern.MatchString(StripPlaceholders(text[s.Start:s.End])) {
			spans = append(spans, s)
		}
	}

	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case r == '\n':
			emit(i)
			start = i + size
			i += size
		case isTerminator(r):
			j := i + size
			for j < len(text) {
				r2, s2 := utf8.DecodeRuneInString(text[j:])
				if !isTerminator(r2) && !isCloser(r2) {
					break
				}
				j += s2
			}
			if j >= len(text) {
				emit(j)
				start = j
				i = j
				continue
			}
			next, _ := utf8.DecodeRuneInString(text[j:])
			if unicode.IsSpace(next) {
				emit(j)
				start = j
			}
			i = j
		default:
			i += size
		}
	}
	if start < len(text) {
		emit(len(text))
	}
	return spans
}

// Sentences returns the sentences of text.
func Sentences(text string) []string {
	spans := SentenceSpans(text)
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = text[s.Start:s.End]
	}
	return out
}

// IsSentenceStart reports whether byte offset i begins a sentence: only whitespace, list markers or
// heading marks separate it from the start of text, a newline or a sentence terminator.
func IsSentenceStart(text string, i int) bool {
	j := i
	for j > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:j])
		switch {
		case r == '\n':
			return true
		case r == ' ' || r == '\t' || r == '\u00a0':
			j -= size
		case isTerminator(r):
			return true
		case isCloser(r) || r == '“' || r == '«' || r == '(':
			j -= size
		case r == '-' || r == '*' || r == '>' || r == '#':
			k := j - size
			for k > 0 && (text[k-1] == '#' || text[k-1] == ' ' || text[k-1] == '\t') {
				k--
			}
			return k == 0 || text[k-1] == '\n'
		default:
			return false
		}
	}
	return true
}

// isWordRune reports whether r can be part of a word.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// AtWordBoundary reports whether span [start, end) is delimited by non-word runes on both sides.
func AtWordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// Decapitalize lower-cases the first rune of s.
func Decapitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

// MatchCase shapes replacement after the casing of source: all-caps sources (longer than one rune)
// produce all-caps replacements, capitalized sources produce capitalized replacements.
func MatchCase(source, replacement string) string {
	if source == "" || replacement == "" {
		return replacement
	}
	if utf8.RuneCountInString(source) > 1 && source == strings.ToUpper(source) && source != strings.ToLower(source) {
		return strings.ToUpper(replacement)
	}
	r, _ := utf8.DecodeRuneInString(source)
	if unicode.IsUpper(r) {
		return Capitalize(replacement)
	}
	return replacement
}

// Edit replaces the bytes [Start, End) of a text with Text.
type Edit struct {
	Start int
	End   int
	Text  string
}

// ApplyEdits builds a new string from text and a list of edits in a single pass. Edits are sorted by
// position; an edit overlapping an earlier accepted edit is dropped. It returns the new text and the
// edits that were applied.
func ApplyEdits(text string, edits []Edit) (string, []Edit) {
	if len(edits) == 0 {
		return text, nil
	}
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	var sb strings.Builder
	sb.Grow(len(text))
	applied := make([]Edit, 0, len(sorted))
	cursor := 0
	for _, e := range sorted {
		if e.Start < cursor || e.End < e.Start || e.End > len(text) {
			continue
		}
		sb.WriteString(text[cursor:e.Start])
		sb.WriteString(e.Text)
		cursor = e.End
		applied = append(applied, e)
	}
	sb.WriteString(text[cursor:])
	return sb.String(), applied
}

// Overlaps reports whether span s intersects any of the given edits.
func Overlaps(s Span, edits []Edit) bool {
	for _, e := range edits {
		if s.Start < e.End && e.Start < s.End {
			return true
		}
	}
	return false
}
