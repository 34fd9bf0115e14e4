package validation

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prose-humanizer/internal/segment"
	"github.com/jonathan/prose-humanizer/internal/types"
)

func TestChangeRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "The cat sat.", "The cat sat.", 0},
		{"case insensitive", "The Cat sat.", "the cat SAT", 0},
		{"disjoint", "alpha beta", "gamma delta", 1},
		{"half", "one two three four", "one two five six", 0.5},
		{"multiset", "a a b", "a b b", 1 - 2*2.0/6},
		{"both empty", "", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ChangeRatio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestChangeRatio_Bounds(t *testing.T) {
	pairs := [][2]string{{"x", ""}, {"", "y"}, {"a b c", "a"}, {"a", "a b c d e f"}}
	for _, p := range pairs {
		r := ChangeRatio(p[0], p[1])
		assert.GreaterOrEqual(t, r, 0.0)
		assert.LessOrEqual(t, r, 1.0)
	}
}

func TestLengthRatio(t *testing.T) {
	assert.Equal(t, 1.0, LengthRatio("", ""))
	assert.True(t, math.IsInf(LengthRatio("", "x"), 1))
	assert.InDelta(t, 0.5, LengthRatio("привет", "при"), 1e-9)
}

func TestValidate_Identical(t *testing.T) {
	text := "The release shipped on 3 May. Users liked it. Support tickets dropped by 40%."
	report := Validate(text, text, types.DefaultConfig(), nil)

	assert.True(t, report.IsValid)
	assert.False(t, report.ShouldRollback)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, 0.0, report.ChangeRatio)
	assert.Equal(t, 1.0, report.LengthRatio)
}

func TestValidate_ChangeRatioBands(t *testing.T) {
	cfg := types.DefaultConfig()

	report := Validate("one two three four five six seven eight nine ten", "one two three four five six seven eight alpha beta", cfg, nil)
	assert.True(t, report.IsValid)
	assert.Empty(t, report.Warnings)

	report = Validate("one two three four five six", "one two three four seven eight", cfg, nil)
	assert.InDelta(t, 1.0/3, report.ChangeRatio, 1e-9)
	assert.True(t, report.IsValid)

	report = Validate("one two three four", "one five six seven", cfg, nil)
	assert.InDelta(t, 0.75, report.ChangeRatio, 1e-9)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "configured maximum")
	assert.False(t, report.ShouldRollback)

	cfg.Constraints.MaxChangeRatio = 0.9
	report = Validate("one two three four", "one two five six", cfg, nil)
	assert.True(t, report.IsValid)
	require.Len(t, report.Warnings, 0)

	report = Validate("one two three four five", "six seven eight nine ten", cfg, nil)
	require.NotEmpty(t, report.Errors)
	assert.Contains(t, report.Errors[0], "hard limit")
}

func TestValidate_LengthRatio(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Constraints.MaxChangeRatio = 1

	original := "alpha beta gamma delta epsilon zeta eta theta"
	report := Validate(original, "alpha beta", cfg, nil)
	assert.False(t, report.IsValid)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "length ratio")
	assert.False(t, report.ShouldRollback)

	report = Validate("alpha beta gamma delta", "alpha beta gamma delta omega sigma kappa", cfg, nil)
	assert.True(t, report.IsValid)
	hasLengthWarning := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "length ratio") {
			hasLengthWarning = true
		}
	}
	assert.True(t, hasLengthWarning)
}

func TestValidate_Keywords(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Constraints.Keywords = []string{"API", "latency"}

	report := Validate("The API keeps latency low.", "The interface keeps latency low.", cfg, nil)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], `"API"`)
	assert.False(t, report.IsValid)
	assert.False(t, report.ShouldRollback)

	cfg.Constraints.Keywords = []string{"absent"}
	report = Validate("The API keeps latency low.", "The API keeps latency low.", cfg, nil)
	assert.Equal(t, []string{`keyword "absent" was lost`}, report.Errors)
}

func TestValidate_KeywordInsideLongerWord(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Constraints.Keywords = []string{"API"}

	text := "Our APIs are simple. They are easy to learn."
	report := Validate(text, text, cfg, nil)
	assert.Empty(t, report.Errors)
	assert.True(t, report.IsValid)
}

func TestKeywordPresent(t *testing.T) {
	tests := []struct {
		text    string
		keyword string
		want    bool
	}{
		{"Our APIs are simple.", "API", true},
		{"the api is simple", "API", true},
		{"The SDK ships.", " sdk ", true},
		{"The interface is simple.", "API", false},
	}
	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.keyword, func(t *testing.T) {
			assert.Equal(t, tt.want, KeywordPresent(tt.text, tt.keyword))
		})
	}
}

func TestKeywordsIn(t *testing.T) {
	got := KeywordsIn("The API and the SDK ship together.", []string{"SDK", "", "latency", "api"})
	assert.Equal(t, []string{"SDK", "api"}, got)
	assert.Nil(t, KeywordsIn("nothing here", []string{"API"}))
}

func TestValidate_NumbersWarning(t *testing.T) {
	report := Validate("We sold 12 units in 2023 today.", "We sold 13 units in 2023 today.", types.DefaultConfig(), nil)
	assert.True(t, report.IsValid)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "missing [12], added [13]")
}

func TestValidate_StructureWarnings(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Constraints.MaxChangeRatio = 1
	original := "One long line of text here and more words to pad it out nicely for us."
	transformed := "One long. Line of. Text here. And more words. To pad it. Out nicely for us."
	report := Validate(original, transformed, cfg, nil)

	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "sentence count ratio") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_NewShortSentences(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Constraints.MaxChangeRatio = 1
	report := Validate("It works well for most teams today.", "It works well. For most teams today.", cfg, nil)

	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "new sentence") {
			found = true
		}
	}
	assert.False(t, found, "both parts meet the default minimum of three words")

	report = Validate("It works well for most teams today.", "It works. Well for most teams today.", cfg, nil)
	found = false
	for _, w := range report.Warnings {
		if strings.Contains(w, `"It works."`) {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_Placeholders(t *testing.T) {
	original := "Read https://example.com/docs before you start."
	masked, m := segment.Protect(original, segment.Options{URLs: true})

	report := Validate(original, segment.Restore(masked, m), types.DefaultConfig(), &Options{Placeholders: m})
	assert.True(t, report.IsValid)

	report = Validate(original, "Read before you start.", types.DefaultConfig(), &Options{Placeholders: m})
	assert.False(t, report.IsValid)
	found := false
	for _, e := range report.Errors {
		if strings.Contains(e, "was lost") {
			found = true
		}
	}
	assert.True(t, found)

	report = Validate(original, "Read \x020\x03 before you start.", types.DefaultConfig(), nil)
	assert.Contains(t, report.Errors, "protected-span placeholder leaked into the output")
}

func TestValidate_RollbackThreshold(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Constraints.Keywords = []string{"API"}

	opts, err := NewOptions(1)
	require.NoError(t, err)
	report := Validate("The API is stable.", "The interface is stable.", cfg, opts)
	assert.True(t, report.ShouldRollback)

	report = Validate("The API is stable.", "The interface is stable.", cfg, nil)
	assert.False(t, report.ShouldRollback)

	_, err = NewOptions(0)
	var vErr *Error
	assert.ErrorAs(t, err, &vErr)
}
