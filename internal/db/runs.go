package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/prose-humanizer/internal/types"
)

const runColumns = `id, COALESCE(digest, ''), language, profile, intensity, seed, input_text, output_text,
	change_ratio, quality_score, rolled_back, result, created_at`

// SaveRun stores a transform result and returns its ID. The result's RunID is reused when it is a
// valid UUID.
func (db *DB) SaveRun(ctx context.Context, input string, cfg types.PipelineConfig, result *types.PipelineResult) (uuid.UUID, error) {
	if result == nil {
		return uuid.Nil, fmt.Errorf("failed to save run: result is nil")
	}
	id, err := uuid.Parse(result.RunID)
	if err != nil {
		id = uuid.New()
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var digest *string
	if d, ok := Digest(input, cfg, result.ChunkSize); ok {
		digest = &d
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO transform_runs (id, digest, language, profile, intensity, seed, input_text, output_text,
		                             change_ratio, quality_score, rolled_back, result)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (id) DO UPDATE SET output_text = $8, change_ratio = $9, quality_score = $10,
		                               rolled_back = $11, result = $12`,
		id, digest, result.Language, result.Profile, result.Intensity, cfg.Seed, input, result.Text,
		result.ChangeRatio, result.QualityScore, result.RolledBack, resultJSON,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save run: %w", err)
	}
	return id, nil
}

// GetRun retrieves a run by ID. It returns nil when no run exists.
func (db *DB) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	run, err := scanRun(db.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM transform_runs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// FindRunByDigest returns the most recent run with the given digest, or nil.
func (db *DB) FindRunByDigest(ctx context.Context, digest string) (*Run, error) {
	if digest == "" {
		return nil, nil
	}
	run, err := scanRun(db.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM transform_runs WHERE digest = $1 ORDER BY created_at DESC LIMIT 1`, digest))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find run by digest: %w", err)
	}
	return run, nil
}

// ListRuns retrieves recent runs with optional filters, newest first
func (db *DB) ListRuns(ctx context.Context, filters RunFilters) ([]RunSummary, error) {
	query, args := buildListRunsQuery(filters)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.Language, &r.Profile, &r.Intensity, &r.ChangeRatio,
			&r.QualityScore, &r.RolledBack, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

func buildListRunsQuery(filters RunFilters) (string, []any) {
	if filters.Limit <= 0 {
		filters.Limit = DefaultListLimit
	}

	query := `SELECT id, language, profile, intensity, change_ratio, quality_score, rolled_back, created_at
		FROM transform_runs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Language != "" {
		query += fmt.Sprintf(" AND language = $%d", argNum)
		args = append(args, filters.Language)
		argNum++
	}
	if filters.Profile != "" {
		query += fmt.Sprintf(" AND profile = $%d", argNum)
		args = append(args, filters.Profile)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)
	return query, args
}

// DeleteRun deletes a stored run
func (db *DB) DeleteRun(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM transform_runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

func scanRun(row pgx.Row) (*Run, error) {
	var run Run
	var resultJSON []byte
	if err := row.Scan(&run.ID, &run.Digest, &run.Language, &run.Profile, &run.Intensity, &run.Seed,
		&run.InputText, &run.OutputText, &run.ChangeRatio, &run.QualityScore, &run.RolledBack,
		&resultJSON, &run.CreatedAt); err != nil {
		return nil, err
	}
	if len(resultJSON) > 0 {
		var result types.PipelineResult
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return nil, fmt.Errorf("failed to decode stored result: %w", err)
		}
		run.Result = &result
	}
	return &run, nil
}
