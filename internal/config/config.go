// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/jonathan/prose-humanizer/internal/langdata"
	"github.com/jonathan/prose-humanizer/internal/schemas"
	"github.com/jonathan/prose-humanizer/internal/types"
)

// Span categories that may be listed under "unprotect".
const (
	UnprotectCodeBlocks = "code_blocks"
	UnprotectInlineCode = "inline_code"
	UnprotectMarkdown   = "markdown"
	UnprotectURLs       = "urls"
	UnprotectEmails     = "emails"
	UnprotectHTML       = "html"
	UnprotectHashtags   = "hashtags"
	UnprotectMentions   = "mentions"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Transformation
	Language  string `json:"language,omitempty"`  // Language code or "auto"
	Profile   string `json:"profile,omitempty"`   // Style profile name
	Intensity *int   `json:"intensity,omitempty"` // 0-100; nil means the default (0 is a valid setting)
	Seed      *int64 `json:"seed,omitempty"`      // Fixed seed for reproducible output

	// Constraints
	MaxChangeRatio    float64  `json:"max_change_ratio,omitempty"`
	MinSentenceLength int      `json:"min_sentence_length,omitempty"`
	Keywords          []string `json:"keywords,omitempty"`    // Must survive verbatim
	BrandTerms        []string `json:"brand_terms,omitempty"` // Never rewritten
	Unprotect         []string `json:"unprotect,omitempty"`   // Span categories left unprotected

	// Execution
	ChunkSize         int `json:"chunk_size,omitempty"`         // Chunked processing above this many bytes
	Concurrency       int `json:"concurrency,omitempty"`        // Batch workers
	RollbackThreshold int `json:"rollback_threshold,omitempty"` // Validation errors that trigger rollback

	// Behavior
	UseBrowser  bool   `json:"use_browser,omitempty"`  // Use headless browser for SPA sites
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
}

// Error reports an invalid configuration value.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config error: '%s' %s", e.Field, e.Message)
}

// LoadConfig loads configuration from a JSON file and checks it against the embedded schema.
// Returns an error if the file cannot be read, parsed or does not match the schema.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := schemas.Validate(schemas.ConfigSchema, data); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Intensity != nil && (*c.Intensity < 0 || *c.Intensity > 100) {
		return &Error{Field: "intensity", Message: "must be between 0 and 100"}
	}
	if c.MaxChangeRatio < 0 || c.MaxChangeRatio > 1 {
		return &Error{Field: "max_change_ratio", Message: "must be between 0 and 1"}
	}
	if c.MinSentenceLength < 0 {
		return &Error{Field: "min_sentence_length", Message: "must be non-negative"}
	}
	if c.ChunkSize < 0 {
		return &Error{Field: "chunk_size", Message: "must be non-negative"}
	}
	if c.Concurrency < 0 {
		return &Error{Field: "concurrency", Message: "must be non-negative"}
	}
	if c.RollbackThreshold < 0 {
		return &Error{Field: "rollback_threshold", Message: "must be non-negative"}
	}

	if c.Profile != "" {
		if _, ok := langdata.Default().Profile(c.Profile); !ok {
			return &Error{Field: "profile", Message: fmt.Sprintf("unknown profile %q", c.Profile)}
		}
	}

	known := []string{
		UnprotectCodeBlocks, UnprotectInlineCode, UnprotectMarkdown, UnprotectURLs,
		UnprotectEmails, UnprotectHTML, UnprotectHashtags, UnprotectMentions,
	}
	for _, u := range c.Unprotect {
		if !slices.Contains(known, u) {
			return &Error{Field: "unprotect", Message: fmt.Sprintf("unknown span category %q", u)}
		}
	}

	pc := c.ToPipelineConfig()
	if err := pc.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Language == "" {
		result.Language = defaults.Language
	}
	if result.Profile == "" {
		result.Profile = defaults.Profile
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Pointer fields: use default if unset
	if result.Intensity == nil {
		result.Intensity = defaults.Intensity
	}
	if result.Seed == nil {
		result.Seed = defaults.Seed
	}

	// Numeric fields: use default if zero
	if result.MaxChangeRatio == 0 {
		result.MaxChangeRatio = defaults.MaxChangeRatio
	}
	if result.MinSentenceLength == 0 {
		result.MinSentenceLength = defaults.MinSentenceLength
	}
	if result.ChunkSize == 0 {
		result.ChunkSize = defaults.ChunkSize
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.RollbackThreshold == 0 {
		result.RollbackThreshold = defaults.RollbackThreshold
	}

	// Lists: use default if empty
	if len(result.Keywords) == 0 {
		result.Keywords = defaults.Keywords
	}
	if len(result.BrandTerms) == 0 {
		result.BrandTerms = defaults.BrandTerms
	}
	if len(result.Unprotect) == 0 {
		result.Unprotect = defaults.Unprotect
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ToPipelineConfig builds the immutable run configuration. Unset values take the defaults of
// types.DefaultConfig.
func (c *Config) ToPipelineConfig() types.PipelineConfig {
	pc := types.DefaultConfig()
	if c.Language != "" {
		pc.Language = c.Language
	}
	if c.Profile != "" {
		pc.Profile = c.Profile
	}
	if c.Intensity != nil {
		pc.Intensity = *c.Intensity
	}
	if c.Seed != nil {
		pc = pc.WithSeed(*c.Seed)
	}
	if c.MaxChangeRatio > 0 {
		pc.Constraints.MaxChangeRatio = c.MaxChangeRatio
	}
	if c.MinSentenceLength > 0 {
		pc.Constraints.MinSentenceLength = c.MinSentenceLength
	}
	pc.Constraints.Keywords = append([]string(nil), c.Keywords...)
	pc.Preserve.BrandTerms = append([]string(nil), c.BrandTerms...)

	for _, u := range c.Unprotect {
		switch u {
		case UnprotectCodeBlocks:
			pc.Preserve.CodeBlocks = false
		case UnprotectInlineCode:
			pc.Preserve.InlineCode = false
		case UnprotectMarkdown:
			pc.Preserve.Markdown = false
		case UnprotectURLs:
			pc.Preserve.URLs = false
		case UnprotectEmails:
			pc.Preserve.Emails = false
		case UnprotectHTML:
			pc.Preserve.HTML = false
		case UnprotectHashtags:
			pc.Preserve.Hashtags = false
		case UnprotectMentions:
			pc.Preserve.Mentions = false
		}
	}
	return pc
}
