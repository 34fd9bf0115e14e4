package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/prose-humanizer/internal/types"
)

// SaveDetection stores a detection result keyed by the hash of the scored text
func (db *DB) SaveDetection(ctx context.Context, text string, d types.Detection) (uuid.UUID, error) {
	metricsJSON, err := json.Marshal(d.Metrics)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal detection metrics: %w", err)
	}

	id := uuid.New()
	_, err = db.pool.Exec(ctx,
		`INSERT INTO detections (id, text_hash, language, score, verdict, confidence, metrics)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, TextHash(text), d.Language, d.Score, string(d.Verdict), d.Confidence, metricsJSON,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save detection: %w", err)
	}
	return id, nil
}

// ListDetections returns the stored detections of a text, newest first
func (db *DB) ListDetections(ctx context.Context, text string) ([]DetectionRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, text_hash, language, score, verdict, confidence, metrics, created_at
		 FROM detections WHERE text_hash = $1 ORDER BY created_at DESC`,
		TextHash(text),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list detections: %w", err)
	}
	defer rows.Close()

	records := []DetectionRecord{}
	for rows.Next() {
		var r DetectionRecord
		var verdict string
		var metricsJSON []byte
		if err := rows.Scan(&r.ID, &r.TextHash, &r.Language, &r.Score, &verdict, &r.Confidence,
			&metricsJSON, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		r.Verdict = types.Verdict(verdict)
		if err := json.Unmarshal(metricsJSON, &r.Metrics); err != nil {
			return nil, fmt.Errorf("failed to decode detection metrics: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
