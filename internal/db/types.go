package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/prose-humanizer/internal/types"
)

// DefaultListLimit caps ListRuns when no limit is given
const DefaultListLimit = 50

// Run represents a stored transform run
type Run struct {
	ID           uuid.UUID             `json:"id"`
	Digest       string                `json:"digest,omitempty"`
	Language     string                `json:"language"`
	Profile      string                `json:"profile"`
	Intensity    int                   `json:"intensity"`
	Seed         *int64                `json:"seed,omitempty"`
	InputText    string                `json:"input_text"`
	OutputText   string                `json:"output_text"`
	ChangeRatio  float64               `json:"change_ratio"`
	QualityScore float64               `json:"quality_score"`
	RolledBack   bool                  `json:"rolled_back"`
	Result       *types.PipelineResult `json:"result,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

// RunSummary is a lightweight view of a run for listing
type RunSummary struct {
	ID           uuid.UUID `json:"id"`
	Language     string    `json:"language"`
	Profile      string    `json:"profile"`
	Intensity    int       `json:"intensity"`
	ChangeRatio  float64   `json:"change_ratio"`
	QualityScore float64   `json:"quality_score"`
	RolledBack   bool      `json:"rolled_back"`
	CreatedAt    time.Time `json:"created_at"`
}

// RunFilters holds optional filters for listing runs
type RunFilters struct {
	Language string
	Profile  string
	Limit    int
}

// DetectionRecord represents a stored detection result
type DetectionRecord struct {
	ID         uuid.UUID          `json:"id"`
	TextHash   string             `json:"text_hash"`
	Language   string             `json:"language"`
	Score      float64            `json:"score"`
	Verdict    types.Verdict      `json:"verdict"`
	Confidence float64            `json:"confidence"`
	Metrics    map[string]float64 `json:"metrics"`
	CreatedAt  time.Time          `json:"created_at"`
}
