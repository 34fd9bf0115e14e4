package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prose-humanizer/internal/types"
)

func TestDigest(t *testing.T) {
	cfg := types.DefaultConfig().WithSeed(42)

	d1, ok := Digest("Hello world.", cfg, 0)
	require.True(t, ok)
	assert.Len(t, d1, 64)

	d2, _ := Digest("Hello world.", cfg, 0)
	assert.Equal(t, d1, d2, "same text and config should give the same digest")

	d3, _ := Digest("Hello world!", cfg, 0)
	assert.NotEqual(t, d1, d3)

	d4, _ := Digest("Hello world.", cfg.WithSeed(43), 0)
	assert.NotEqual(t, d1, d4)

	other := cfg
	other.Intensity = 80
	d5, _ := Digest("Hello world.", other, 0)
	assert.NotEqual(t, d1, d5)

	d6, _ := Digest("Hello world.", cfg, 4000)
	assert.NotEqual(t, d1, d6, "chunked and whole-document runs should not share a digest")
	d7, _ := Digest("Hello world.", cfg, 2000)
	assert.NotEqual(t, d6, d7)
}

func TestDigest_NormalizesConfig(t *testing.T) {
	seed := int64(7)
	explicit := types.DefaultConfig()
	explicit.Seed = &seed
	sparse := types.PipelineConfig{Intensity: types.DefaultIntensity, Preserve: types.DefaultPreserve(), Seed: &seed}

	d1, _ := Digest("text", explicit, 0)
	d2, _ := Digest("text", sparse, 0)
	assert.Equal(t, d1, d2)
}

func TestDigest_Unseeded(t *testing.T) {
	d, ok := Digest("Hello world.", types.DefaultConfig(), 0)
	assert.False(t, ok)
	assert.Empty(t, d)
}

func TestTextHash(t *testing.T) {
	assert.Len(t, TextHash("abc"), 64)
	assert.Equal(t, TextHash("abc"), TextHash("abc"))
	assert.NotEqual(t, TextHash("abc"), TextHash("abd"))
}

func TestBuildListRunsQuery(t *testing.T) {
	tests := []struct {
		name      string
		filters   RunFilters
		wantArgs  []any
		wantParts []string
	}{
		{
			name:      "defaults",
			filters:   RunFilters{},
			wantArgs:  []any{DefaultListLimit},
			wantParts: []string{"ORDER BY created_at DESC LIMIT $1"},
		},
		{
			name:      "language",
			filters:   RunFilters{Language: "ru", Limit: 5},
			wantArgs:  []any{"ru", 5},
			wantParts: []string{"language = $1", "LIMIT $2"},
		},
		{
			name:      "language and profile",
			filters:   RunFilters{Language: "en", Profile: "formal", Limit: 10},
			wantArgs:  []any{"en", "formal", 10},
			wantParts: []string{"language = $1", "profile = $2", "LIMIT $3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListRunsQuery(tt.filters)
			assert.Equal(t, tt.wantArgs, args)
			for _, part := range tt.wantParts {
				assert.True(t, strings.Contains(query, part), "query %q should contain %q", query, part)
			}
		})
	}
}

func TestMigrationNames(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_init.sql", names[0])

	sql, err := migrations.ReadFile("migrations/" + names[0])
	require.NoError(t, err)
	assert.Contains(t, string(sql), "CREATE TABLE IF NOT EXISTS transform_runs")
	assert.Contains(t, string(sql), "CREATE TABLE IF NOT EXISTS detections")
}
