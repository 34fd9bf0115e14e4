package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/prose-humanizer/internal/segment"
	"github.com/jonathan/prose-humanizer/internal/textutil"
)

// CheckKeywords reports every must-keep keyword missing from the transformed text.
func CheckKeywords(transformed string, keywords []string) []string {
	var errs []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if !KeywordPresent(transformed, kw) {
			errs = append(errs, fmt.Sprintf("keyword %q was lost", kw))
		}
	}
	return errs
}

// KeywordPresent reports whether keyword occurs in text, ignoring case. "API" is present in "APIs".
func KeywordPresent(text, keyword string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(strings.TrimSpace(keyword)))
}

// KeywordsIn returns the keywords that occur in text, in their original order.
func KeywordsIn(text string, keywords []string) []string {
	var out []string
	for _, kw := range keywords {
		if strings.TrimSpace(kw) != "" && KeywordPresent(text, kw) {
			out = append(out, kw)
		}
	}
	return out
}

// CheckPlaceholders reports placeholders that survived restoration and placeholders of m that were
// lost before it. Any leftover placeholder delimiter counts as a survivor.
func CheckPlaceholders(restored string, m *segment.Map) []string {
	var errs []string
	if strings.Contains(restored, textutil.PlaceholderOpen) || strings.Contains(restored, textutil.PlaceholderClose) {
		errs = append(errs, "protected-span placeholder leaked into the output")
	}
	for _, e := range m.Lost(restored) {
		errs = append(errs, fmt.Sprintf("protected %s was lost", e.Describe()))
	}
	return errs
}

func sortStrings(s []string) {
	sort.Strings(s)
}
