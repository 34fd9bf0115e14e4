package textutil

import (
	"regexp"
	"sort"
	"strings"
)

// PhraseMatcher finds case-insensitive, word-bounded occurrences of a fixed set of phrases.
// It is immutable after construction and safe for concurrent use.
type PhraseMatcher struct {
	pattern *regexp.Regexp
	phrases []string
}

// NewPhraseMatcher compiles a matcher for phrases. Longer phrases win over their prefixes.
// It returns nil when no usable phrase is given.
func NewPhraseMatcher(phrases []string) *PhraseMatcher {
	cleaned := make([]string, 0, len(phrases))
	seen := make(map[string]bool)
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		cleaned = append(cleaned, p)
	}
	if len(cleaned) == 0 {
		return nil
	}
	sort.Slice(cleaned, func(i, j int) bool {
		if len(cleaned[i]) != len(cleaned[j]) {
			return len(cleaned[i]) > len(cleaned[j])
		}
		return cleaned[i] < cleaned[j]
	})

	quoted := make([]string, len(cleaned))
	for i, p := range cleaned {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return &PhraseMatcher{
		pattern: regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`),
		phrases: cleaned,
	}
}

// Match is one phrase occurrence: its span in the text and the canonical (lowercase) phrase.
type Match struct {
	Span
	Phrase string
}

// FindAll returns every word-bounded occurrence, in text order, without overlaps.
func (m *PhraseMatcher) FindAll(text string) []Match {
	if m == nil {
		return nil
	}
	var out []Match
	for _, loc := range m.pattern.FindAllStringIndex(text, -1) {
		if !AtWordBoundary(text, loc[0], loc[1]) {
			continue
		}
		out = append(out, Match{
			Span:   Span{Start: loc[0], End: loc[1]},
			Phrase: strings.ToLower(text[loc[0]:loc[1]]),
		})
	}
	return out
}

// Count returns the number of occurrences in text.
func (m *PhraseMatcher) Count(text string) int {
	return len(m.FindAll(text))
}

// Contains reports whether the phrase appears in text, case-insensitively and word-bounded.
func Contains(text, phrase string) bool {
	m := NewPhraseMatcher([]string{phrase})
	return m != nil && len(m.FindAll(text)) > 0
}
