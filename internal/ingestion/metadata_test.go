package ingestion

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_JSONRoundTrip(t *testing.T) {
	metadata := &Metadata{
		URL:       "https://example.com/post",
		Timestamp: "2024-01-01T00:00:00Z",
		Hash:      "abcd1234",
		Platform:  "ghost",
		Language:  "en",
		Words:     120,
	}

	jsonBytes, err := metadata.ToJSON()
	require.NoError(t, err)

	var decoded Metadata
	require.NoError(t, json.Unmarshal(jsonBytes, &decoded))
	assert.Equal(t, *metadata, decoded)
	assert.NotContains(t, string(jsonBytes), `"source"`)
}

func TestComputeHash(t *testing.T) {
	hash1 := computeHash("test content")
	hash2 := computeHash("different content")

	assert.Len(t, hash1, 64)
	assert.NotEqual(t, hash1, hash2)
	assert.Equal(t, hash1, computeHash("test content"))
	// BLAKE3 of the empty input
	assert.Equal(t, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", computeHash(""))
}

func TestNewMetadata(t *testing.T) {
	content := "Some plain words here."
	metadata := NewMetadata(content, "https://example.com/post")

	assert.Equal(t, "https://example.com/post", metadata.URL)
	assert.Equal(t, computeHash(content), metadata.Hash)
	assert.Equal(t, "en", metadata.Language)
	assert.Equal(t, 4, metadata.Words)

	_, err := time.Parse(time.RFC3339, metadata.Timestamp)
	assert.NoError(t, err)
}
