// Package segment shields spans that must survive a transformation untouched (code, links, URLs,
// markup, handles and protected terms) by swapping them for opaque placeholders, and puts them back
// afterwards.
package segment

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/prose-humanizer/internal/textutil"
	"github.com/jonathan/prose-humanizer/internal/types"
)

// Category names the kind of span a placeholder stands for.
type Category string

const (
	CategoryCodeBlock  Category = "code_block"
	CategoryInlineCode Category = "inline_code"
	CategoryImage      Category = "markdown_image"
	CategoryLink       Category = "markdown_link"
	CategoryURL        Category = "url"
	CategoryEmail      Category = "email"
	CategoryHTML       Category = "html"
	CategoryHashtag    Category = "hashtag"
	CategoryMention    Category = "mention"
	CategoryTerm       Category = "term"
)

var (
	codeBlockPattern  = regexp.MustCompile("(?s)```.*?```|~~~.*?~~~")
	inlineCodePattern = regexp.MustCompile("`[^`\n]+`")
	imagePattern      = regexp.MustCompile(`!\[[^\]\n]*\]\([^)\s]*(?:\s+"[^"]*")?\)`)
	linkPattern       = regexp.MustCompile(`\[[^\]\n]+\]\([^)\s]*(?:\s+"[^"]*")?\)`)
	urlPattern        = regexp.MustCompile(`(?i)\b(?:https?://|ftp://|www\.)[^\s<>"'\x60]+[^\s<>"'\x60.,;:!?)\]]`)
	emailPattern      = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	htmlPattern       = regexp.MustCompile(`</?[A-Za-z][A-Za-z0-9\-]*(?:\s[^<>]*)?/?>`)
	hashtagPattern    = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_&#/])(#[\p{L}_][\p{L}\p{N}_]*)`)
	mentionPattern    = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_.@/])(@[A-Za-z0-9_][A-Za-z0-9_.]*[A-Za-z0-9_]|@[A-Za-z0-9_])`)
	placeholderFind   = regexp.MustCompile("\x02(\\d+)\x03")
)

// Options selects the categories to protect and the literal terms that must keep their exact form.
type Options struct {
	CodeBlocks bool
	InlineCode bool
	Markdown   bool
	URLs       bool
	Emails     bool
	HTML       bool
	Hashtags   bool
	Mentions   bool
	Terms      []string
}

// OptionsFromConfig derives guard options from a pipeline configuration: its preserve toggles plus
// brand terms and constraint keywords.
func OptionsFromConfig(cfg types.PipelineConfig) Options {
	p := cfg.Preserve
	return Options{
		CodeBlocks: p.CodeBlocks,
		InlineCode: p.InlineCode,
		Markdown:   p.Markdown,
		URLs:       p.URLs,
		Emails:     p.Emails,
		HTML:       p.HTML,
		Hashtags:   p.Hashtags,
		Mentions:   p.Mentions,
		Terms:      cfg.ProtectedTerms(),
	}
}

// Entry is one protected span.
type Entry struct {
	Placeholder string
	Original    string
	Category    Category
}

// Map records placeholders in creation order.
type Map struct {
	entries []Entry
}

// Len returns the number of protected spans.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns a copy of the recorded entries in creation order.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Map) add(original string, category Category) string {
	ph := textutil.PlaceholderOpen + strconv.Itoa(len(m.entries)) + textutil.PlaceholderClose
	m.entries = append(m.entries, Entry{Placeholder: ph, Original: original, Category: category})
	return ph
}

// Leaked returns the placeholders of this map that are missing from text, in creation order.
// Only placeholders that were not nested inside another protected span are checked.
func (m *Map) Leaked(text string) []string {
	if m == nil {
		return nil
	}
	nested := m.nested()
	var missing []string
	for _, e := range m.entries {
		if nested[e.Placeholder] {
			continue
		}
		if !strings.Contains(text, e.Placeholder) {
			missing = append(missing, e.Placeholder)
		}
	}
	return missing
}

// Lost returns the entries whose original span no longer occurs in restored text.
func (m *Map) Lost(restored string) []Entry {
	if m == nil {
		return nil
	}
	var lost []Entry
	for _, e := range m.entries {
		if !strings.Contains(restored, Restore(e.Original, m)) {
			lost = append(lost, e)
		}
	}
	return lost
}

func (m *Map) nested() map[string]bool {
	nested := make(map[string]bool)
	for _, e := range m.entries {
		for _, sub := range placeholderFind.FindAllString(e.Original, -1) {
			nested[sub] = true
		}
	}
	return nested
}

// Protect replaces every protected span with a placeholder. Categories are applied in a fixed order,
// so later categories only see text the earlier ones left unprotected.
func Protect(text string, opts Options) (string, *Map) {
	m := &Map{}
	if opts.CodeBlocks {
		text = replacePattern(text, codeBlockPattern, m, CategoryCodeBlock)
	}
	if opts.InlineCode {
		text = replacePattern(text, inlineCodePattern, m, CategoryInlineCode)
	}
	if opts.Markdown {
		text = replacePattern(text, imagePattern, m, CategoryImage)
		text = replacePattern(text, linkPattern, m, CategoryLink)
	}
	if opts.URLs {
		text = replacePattern(text, urlPattern, m, CategoryURL)
	}
	if opts.Emails {
		text = replacePattern(text, emailPattern, m, CategoryEmail)
	}
	if opts.HTML {
		text = replacePattern(text, htmlPattern, m, CategoryHTML)
	}
	if opts.Hashtags {
		text = replaceGroup(text, hashtagPattern, m, CategoryHashtag)
	}
	if opts.Mentions {
		text = replaceGroup(text, mentionPattern, m, CategoryMention)
	}
	if len(opts.Terms) > 0 {
		text = replaceTerms(text, opts.Terms, m)
	}
	return text, m
}

// Restore swaps placeholders back in reverse creation order, so spans protected inside other
// spans resolve correctly.
func Restore(text string, m *Map) string {
	if m == nil {
		return text
	}
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		text = strings.ReplaceAll(text, e.Placeholder, e.Original)
	}
	return text
}

func replacePattern(text string, re *regexp.Regexp, m *Map, category Category) string {
	return re.ReplaceAllStringFunc(text, func(match string) string {
		return m.add(match, category)
	})
}

// replaceGroup protects only capture group 1, leaving the leading boundary character in place.
func replaceGroup(text string, re *regexp.Regexp, m *Map, category Category) string {
	locs := re.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return text
	}
	var sb strings.Builder
	cursor := 0
	for _, loc := range locs {
		start, end := loc[2], loc[3]
		if start < 0 {
			continue
		}
		sb.WriteString(text[cursor:start])
		sb.WriteString(m.add(text[start:end], category))
		cursor = end
	}
	sb.WriteString(text[cursor:])
	return sb.String()
}

func replaceTerms(text string, terms []string, m *Map) string {
	matcher := textutil.NewPhraseMatcher(terms)
	matches := matcher.FindAll(text)
	if len(matches) == 0 {
		return text
	}
	edits := make([]textutil.Edit, 0, len(matches))
	for _, match := range matches {
		if match.Start > 0 && text[match.Start-1] == textutil.PlaceholderOpen[0] {
			continue
		}
		original := text[match.Start:match.End]
		edits = append(edits, textutil.Edit{Start: match.Start, End: match.End, Text: m.add(original, CategoryTerm)})
	}
	out, _ := textutil.ApplyEdits(text, edits)
	return out
}

// Spans returns the byte ranges of text that Protect would shield, merged and sorted. The chunker
// uses them to avoid cutting through code blocks or links.
func Spans(text string, opts Options) []textutil.Span {
	type rule struct {
		enabled bool
		re      *regexp.Regexp
		group   bool
	}
	rules := []rule{
		{opts.CodeBlocks, codeBlockPattern, false},
		{opts.InlineCode, inlineCodePattern, false},
		{opts.Markdown, imagePattern, false},
		{opts.Markdown, linkPattern, false},
		{opts.URLs, urlPattern, false},
		{opts.Emails, emailPattern, false},
		{opts.HTML, htmlPattern, false},
	}

	var spans []textutil.Span
	for _, r := range rules {
		if !r.enabled {
			continue
		}
		for _, loc := range r.re.FindAllStringIndex(text, -1) {
			spans = append(spans, textutil.Span{Start: loc[0], End: loc[1]})
		}
	}
	return mergeSpans(spans)
}

func mergeSpans(spans []textutil.Span) []textutil.Span {
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	merged := []textutil.Span{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// Inside reports whether byte offset i falls strictly inside one of spans.
func Inside(spans []textutil.Span, i int) bool {
	for _, s := range spans {
		if i > s.Start && i < s.End {
			return true
		}
	}
	return false
}

// Describe renders an entry for verbose logs.
func (e Entry) Describe() string {
	return fmt.Sprintf("%s %q", e.Category, e.Original)
}
