package stages

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/prose-humanizer/internal/langdata"
	"github.com/jonathan/prose-humanizer/internal/rng"
	"github.com/jonathan/prose-humanizer/internal/types"
)

var (
	spacedDash      = regexp.MustCompile(`\S([ \t]+(?:—|–|--)[ \t]+)`)
	spacedHyphen    = regexp.MustCompile(`\S([ \t]+(?:-|--|–)[ \t]+)`)
	threeDots       = regexp.MustCompile(`\.\.\.`)
	spaceRun        = regexp.MustCompile(`[ \t]{2,}`)
	trailingSpace   = regexp.MustCompile(`[ \t]+\n`)
	spaceBeforePunc = regexp.MustCompile(`[\p{L}\p{N}]([ \t]+)[,;:!?]`)
)

// Typography normalizes punctuation and spacing toward the profile's target style. It is
// deterministic and runs for every language.
type Typography struct{}

func (Typography) Name() string    { return NameTypography }
func (Typography) Universal() bool { return true }

func (Typography) Apply(text string, _ *langdata.Pack, profile langdata.Profile, _ float64, _ *rng.Generator) (string, []types.ChangeEntry) {
	c := newCollector(NameTypography, -1)
	target := profile.Typography

	add := func(start, end int, replacement string) {
		if text[start:end] == replacement {
			return
		}
		c.add(start, end, replacement, types.KindTypography, text[start:end])
	}

	for _, loc := range trailingSpace.FindAllStringIndex(text, -1) {
		add(loc[0], loc[1], "\n")
	}

	switch target.Dashes {
	case langdata.DashesEm:
		for _, loc := range spacedHyphen.FindAllStringSubmatchIndex(text, -1) {
			add(loc[2], loc[3], " — ")
		}
	default:
		for _, loc := range spacedDash.FindAllStringSubmatchIndex(text, -1) {
			add(loc[2], loc[3], " - ")
		}
		for i, r := range text {
			if r == '—' {
				add(i, i+utf8.RuneLen(r), " - ")
			}
		}
	}

	switch target.Ellipsis {
	case langdata.EllipsisChar:
		for _, loc := range threeDots.FindAllStringIndex(text, -1) {
			add(loc[0], loc[1], "…")
		}
	default:
		for i, r := range text {
			if r == '…' {
				add(i, i+utf8.RuneLen(r), "...")
			}
		}
	}

	switch target.Quotes {
	case langdata.QuotesSmart:
		smartenQuotes(text, add)
	default:
		straightenQuotes(text, add)
	}

	for _, loc := range spaceRun.FindAllStringIndex(text, -1) {
		if loc[0] == 0 || text[loc[0]-1] == '\n' || loc[1] == len(text) || text[loc[1]] == '\n' {
			continue
		}
		add(loc[0], loc[1], " ")
	}
	for _, loc := range spaceBeforePunc.FindAllStringSubmatchIndex(text, -1) {
		add(loc[2], loc[3], "")
	}
	for i, r := range text {
		if r == '\u00a0' {
			add(i, i+utf8.RuneLen(r), " ")
		}
	}

	return c.apply(text)
}

func straightenQuotes(text string, add func(start, end int, replacement string)) {
	for i, r := range text {
		switch r {
		case '“', '”', '„', '«', '»':
			add(i, i+utf8.RuneLen(r), `"`)
		case '‘', '’':
			add(i, i+utf8.RuneLen(r), "'")
		}
	}
}

// smartenQuotes turns straight quotes into curly ones. A quote opens after whitespace, an opening
// bracket or at the start of text, and closes otherwise.
func smartenQuotes(text string, add func(start, end int, replacement string)) {
	for i, r := range text {
		if r != '"' && r != '\'' {
			continue
		}
		opening := true
		if i > 0 {
			prev, _ := utf8.DecodeLastRuneInString(text[:i])
			opening = unicode.IsSpace(prev) || prev == '(' || prev == '[' || prev == '{'
		}
		switch {
		case r == '"' && opening:
			add(i, i+1, "“")
		case r == '"':
			add(i, i+1, "”")
		case opening:
			add(i, i+1, "‘")
		default:
			add(i, i+1, "’")
		}
	}
}
