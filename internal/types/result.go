//nolint:revive // types is a standard Go package name pattern
package types

// ValidationReport is derived from comparing a document with its transformed text.
type ValidationReport struct {
	IsValid        bool     `json:"is_valid"`
	ShouldRollback bool     `json:"should_rollback"`
	Errors         []string `json:"errors"`
	Warnings       []string `json:"warnings"`
	ChangeRatio    float64  `json:"change_ratio"`
	LengthRatio    float64  `json:"length_ratio"`
}

// PipelineResult is the final bundle returned to the caller.
type PipelineResult struct {
	RunID              string           `json:"run_id,omitempty"`
	Text               string           `json:"text"`
	Language           string           `json:"language"`
	Profile            string           `json:"profile"`
	Seed               int64            `json:"seed"`
	Intensity          int              `json:"intensity"`
	EffectiveIntensity float64          `json:"effective_intensity"`
	Changes            []ChangeEntry    `json:"changes"`
	MetricsBefore      MetricSnapshot   `json:"metrics_before"`
	MetricsAfter       MetricSnapshot   `json:"metrics_after"`
	ChangeRatio        float64          `json:"change_ratio"`
	QualityScore       float64          `json:"quality_score"`
	ShortCircuited     bool             `json:"short_circuited"`
	Retried            bool             `json:"retried"`
	RolledBack         bool             `json:"rolled_back"`
	Validation         ValidationReport `json:"validation"`
	ChunkSize          int              `json:"chunk_size,omitempty"` // Set when the text was processed in chunks
}
