package ingestion

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zeebo/blake3"

	"github.com/jonathan/prose-humanizer/internal/langdata"
	"github.com/jonathan/prose-humanizer/internal/textutil"
)

// Metadata describes an ingested document
type Metadata struct {
	URL       string `json:"url,omitempty"`
	Source    string `json:"source,omitempty"`   // File path, "-" for stdin
	Timestamp string `json:"timestamp"`          // RFC3339 format
	Hash      string `json:"hash"`               // BLAKE3-256 hex digest of the cleaned text
	Platform  string `json:"platform,omitempty"` // Detected publishing platform
	Language  string `json:"language"`           // Detected language code
	Words     int    `json:"words"`
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(content string, url string) *Metadata {
	return &Metadata{
		URL:       url,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
		Language:  langdata.DetectLanguage(content),
		Words:     textutil.CountWords(content),
	}
}

// computeHash computes the BLAKE3-256 hash of content and returns its hex string
func computeHash(content string) string {
	sum := blake3.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
