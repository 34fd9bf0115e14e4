// Package types provides type definitions for structured data used throughout the humanizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// LanguageAuto asks the pipeline to detect the document language.
const LanguageAuto = "auto"

// Default configuration values
const (
	DefaultProfile           = "web"
	DefaultIntensity         = 50
	DefaultMaxChangeRatio    = 0.7
	DefaultMinSentenceLength = 3
)

// PreserveOptions selects which span categories the segment guard protects.
type PreserveOptions struct {
	CodeBlocks bool     `json:"code_blocks"`
	InlineCode bool     `json:"inline_code"`
	Markdown   bool     `json:"markdown"` // links and images
	URLs       bool     `json:"urls"`
	Emails     bool     `json:"emails"`
	HTML       bool     `json:"html"`
	Hashtags   bool     `json:"hashtags"`
	Mentions   bool     `json:"mentions"`
	BrandTerms []string `json:"brand_terms,omitempty"`
}

// Constraints bound how far a run may move away from the original text. Zero values mean "unset"
// and are filled by Normalized; Validate rejects them, so an explicit zero never passes silently.
type Constraints struct {
	MaxChangeRatio    float64  `json:"max_change_ratio" validate:"gt=0,lte=1"`
	MinSentenceLength int      `json:"min_sentence_length" validate:"gte=1,lte=50"`
	Keywords          []string `json:"keywords,omitempty" validate:"dive,required"`
}

// PipelineConfig is the immutable configuration of one pipeline run.
// Seed is optional: nil means a non-reproducible run.
type PipelineConfig struct {
	Language    string          `json:"language" validate:"omitempty,len=2|eq=auto"`
	Profile     string          `json:"profile" validate:"omitempty,alpha"`
	Intensity   int             `json:"intensity" validate:"gte=0,lte=100"`
	Seed        *int64          `json:"seed,omitempty"`
	Preserve    PreserveOptions `json:"preserve"`
	Constraints Constraints     `json:"constraints"`
}

// DefaultPreserve protects every span category.
func DefaultPreserve() PreserveOptions {
	return PreserveOptions{
		CodeBlocks: true,
		InlineCode: true,
		Markdown:   true,
		URLs:       true,
		Emails:     true,
		HTML:       true,
		Hashtags:   true,
		Mentions:   true,
	}
}

// DefaultConfig returns a configuration with every field set to its default.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		Language:  LanguageAuto,
		Profile:   DefaultProfile,
		Intensity: DefaultIntensity,
		Preserve:  DefaultPreserve(),
		Constraints: Constraints{
			MaxChangeRatio:    DefaultMaxChangeRatio,
			MinSentenceLength: DefaultMinSentenceLength,
		},
	}
}

// Validate validates the PipelineConfig using the validator.
func (c *PipelineConfig) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// WithSeed returns a copy of the config using the given seed.
func (c PipelineConfig) WithSeed(seed int64) PipelineConfig {
	s := seed
	c.Seed = &s
	c.Constraints.Keywords = append([]string(nil), c.Constraints.Keywords...)
	c.Preserve.BrandTerms = append([]string(nil), c.Preserve.BrandTerms...)
	return c
}

// Normalized fills unset (zero) values with defaults. Intensity is kept as-is since 0 is a valid setting.
func (c PipelineConfig) Normalized() PipelineConfig {
	if c.Language == "" {
		c.Language = LanguageAuto
	}
	if c.Profile == "" {
		c.Profile = DefaultProfile
	}
	if c.Constraints.MaxChangeRatio <= 0 {
		c.Constraints.MaxChangeRatio = DefaultMaxChangeRatio
	}
	if c.Constraints.MinSentenceLength <= 0 {
		c.Constraints.MinSentenceLength = DefaultMinSentenceLength
	}
	return c
}

// ProtectedTerms returns brand terms and must-keep keywords, in that order.
func (c *PipelineConfig) ProtectedTerms() []string {
	terms := make([]string, 0, len(c.Preserve.BrandTerms)+len(c.Constraints.Keywords))
	terms = append(terms, c.Preserve.BrandTerms...)
	terms = append(terms, c.Constraints.Keywords...)
	return terms
}
