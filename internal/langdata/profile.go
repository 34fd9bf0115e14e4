package langdata

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Typography target styles.
const (
	QuotesStraight = "straight"
	QuotesSmart    = "smart"
	DashesHyphen   = "hyphen"
	DashesEm       = "em"
	EllipsisDots   = "dots"
	EllipsisChar   = "char"
)

// TypographyTarget is the punctuation style a profile normalizes toward.
type TypographyTarget struct {
	Quotes   string `yaml:"quotes" json:"quotes" validate:"required,oneof=straight smart"`
	Dashes   string `yaml:"dashes" json:"dashes" validate:"required,oneof=hyphen em"`
	Ellipsis string `yaml:"ellipsis" json:"ellipsis" validate:"required,oneof=dots char"`
}

// Profile is a named tone preset: per-stage probability multipliers plus a typography target.
type Profile struct {
	Name        string             `yaml:"name" json:"name" validate:"required,alpha"`
	Description string             `yaml:"description" json:"description"`
	Multipliers map[string]float64 `yaml:"multipliers" json:"multipliers" validate:"dive,gte=0,lte=3"`
	Typography  TypographyTarget   `yaml:"typography" json:"typography"`
}

// Multiplier returns the profile's multiplier for a stage, 1.0 when unset.
func (p Profile) Multiplier(stage string) float64 {
	if m, ok := p.Multipliers[stage]; ok {
		return m
	}
	return 1.0
}

// ParseProfiles decodes and validates a profile list.
func ParseProfiles(data []byte) ([]Profile, error) {
	var profiles []Profile
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("langdata: decode profiles: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("langdata: no profiles defined")
	}
	seen := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("langdata: profile %q: %w", p.Name, err)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("langdata: duplicate profile %q", p.Name)
		}
		seen[p.Name] = true
	}
	return profiles, nil
}
