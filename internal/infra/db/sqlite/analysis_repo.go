package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
)

type AnalysisRepository struct{ db *sql.DB }

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository { return &AnalysisRepository{db: db} }

// Save bumps the counter, takes the new total as the record's block height and
// upserts the record, all in one transaction.
func (r *AnalysisRepository) Save(ctx context.Context, rec *domain.AnalysisRecord) (domain.SaveResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.SaveResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// the write takes the database lock before anything is read
	if _, err := tx.ExecContext(ctx,
		`UPDATE analysis_metadata SET total_analyses = total_analyses + 1 WHERE id = 1;`,
	); err != nil {
		return domain.SaveResult{}, fmt.Errorf("increment total: %w", err)
	}
	meta, err := scanMeta(tx.QueryRowContext(ctx, metaQuery))
	if err != nil {
		return domain.SaveResult{}, err
	}
	rec.BlockHeight = meta.Total()

	var existing int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM semantic_analyses WHERE id = ?;`, string(rec.ID),
	).Scan(&existing); err != nil {
		return domain.SaveResult{}, fmt.Errorf("lookup analysis: %w", err)
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return domain.SaveResult{}, fmt.Errorf("encode analysis: %w", err)
	}
	const upsert = `
INSERT INTO semantic_analyses (id, submitter, submitted_at, block_height, record_json)
VALUES (?,?,?,?,?)
ON CONFLICT (id) DO UPDATE SET
 submitter = excluded.submitter,
 submitted_at = excluded.submitted_at,
 block_height = excluded.block_height,
 record_json = excluded.record_json;`
	submitter := rec.Submitter
	if submitter == "" {
		submitter = "-"
	}
	if _, err := tx.ExecContext(ctx, upsert,
		string(rec.ID), submitter, int64(rec.Timestamp), int64(rec.BlockHeight), string(body),
	); err != nil {
		return domain.SaveResult{}, fmt.Errorf("upsert analysis: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.SaveResult{}, fmt.Errorf("commit: %w", err)
	}
	return domain.SaveResult{Replaced: existing > 0, Metadata: meta}, nil
}

func (r *AnalysisRepository) Get(ctx context.Context, id domain.AnalysisID) (*domain.AnalysisRecord, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT record_json FROM semantic_analyses WHERE id = ? LIMIT 1;`, string(id),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec domain.AnalysisRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *AnalysisRepository) All(ctx context.Context) ([]*domain.AnalysisRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT record_json FROM semantic_analyses ORDER BY seq ASC;`)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.AnalysisRecord, 0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		var rec domain.AnalysisRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decoding row: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *AnalysisRepository) Size(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM semantic_analyses;`).Scan(&n)
	return n, err
}

func (r *AnalysisRepository) Metadata(ctx context.Context) (domain.AggregateMetadata, error) {
	return scanMeta(r.db.QueryRowContext(ctx, metaQuery))
}

func (r *AnalysisRepository) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

const metaQuery = `
SELECT version, total_analyses, total_staked, consensus_threshold
FROM analysis_metadata WHERE id = 1;`

func scanMeta(row *sql.Row) (domain.AggregateMetadata, error) {
	var m domain.AggregateMetadata
	var total, staked int64
	if err := row.Scan(&m.Version, &total, &staked, &m.ConsensusThreshold); err != nil {
		return domain.AggregateMetadata{}, fmt.Errorf("read metadata: %w", err)
	}
	m.TotalAnalyses = uint64(total)
	m.TotalStaked = uint64(staked)
	return m, nil
}
