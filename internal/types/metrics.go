//nolint:revive // types is a standard Go package name pattern
package types

// Verdict classifies a text by its AI-detection score.
type Verdict string

const (
	// VerdictHuman is assigned to scores below 35
	VerdictHuman Verdict = "human_written"
	// VerdictMixed is assigned to scores in [35, 65)
	VerdictMixed Verdict = "mixed"
	// VerdictAI is assigned to scores of 65 and above
	VerdictAI Verdict = "ai_generated"
)

// MetricSnapshot is a per-text measurement. It is a pure function of text and language data.
type MetricSnapshot struct {
	Words            int       `json:"words"`
	Sentences        int       `json:"sentences"`
	SentenceLengths  []int     `json:"sentence_lengths"`
	MeanLength       float64   `json:"mean_length"`
	Variance         float64   `json:"variance"`
	CV               float64   `json:"cv"`
	FormulaicHits    int       `json:"formulaic_hits"`
	FormulaicDensity float64   `json:"formulaic_density"`
	ConnectorHits    int       `json:"connector_hits"`
	ConnectorRatio   float64   `json:"connector_ratio"`
	Repetition       float64   `json:"repetition"`
	TypographyHits   int       `json:"typography_hits"`
	Typography       float64   `json:"typography"`
	Artificiality    float64   `json:"artificiality"`
	Breakdown        Breakdown `json:"breakdown"`
}

// Breakdown holds the points each metric contributed to the artificiality score.
type Breakdown struct {
	CV         float64 `json:"cv"`
	Formulaic  float64 `json:"formulaic"`
	Connector  float64 `json:"connector"`
	Repetition float64 `json:"repetition"`
	Typography float64 `json:"typography"`
}

// Detection is the result of the standalone AI-detection call.
type Detection struct {
	Score      float64            `json:"score"`
	Verdict    Verdict            `json:"verdict"`
	Confidence float64            `json:"confidence"`
	Language   string             `json:"language"`
	Metrics    map[string]float64 `json:"metrics"`
}
