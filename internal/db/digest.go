package db

import (
	"encoding/hex"
	"encoding/json"
	"strconv"

	"github.com/zeebo/blake3"

	"github.com/jonathan/prose-humanizer/internal/types"
)

// Digest returns the cache key of a seeded run: a BLAKE3-256 hex digest over the normalized
// configuration, the chunk size (0 for a whole-document run) and the input text. Unseeded runs are
// not reproducible and have no digest.
func Digest(text string, cfg types.PipelineConfig, chunkSize int) (string, bool) {
	if cfg.Seed == nil {
		return "", false
	}
	cfgJSON, err := json.Marshal(cfg.Normalized())
	if err != nil {
		return "", false
	}
	h := blake3.New()
	_, _ = h.Write(cfgJSON)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(strconv.Itoa(chunkSize)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil)), true
}

// TextHash returns the BLAKE3-256 hex digest of text.
func TextHash(text string) string {
	sum := blake3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
