package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
)

// AnalysisRepository enumerates records by their first-insert sequence.
type AnalysisRepository struct{ db *sql.DB }

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository { return &AnalysisRepository{db: db} }

// Save bumps the counter, takes the new total as the record's block height and
// upserts the record, all in one transaction. The UPDATE locks the metadata row
// until commit, so concurrent writers from any process get distinct heights.
func (r *AnalysisRepository) Save(ctx context.Context, rec *domain.AnalysisRecord) (domain.SaveResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.SaveResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const bump = `
UPDATE analysis_metadata SET total_analyses = total_analyses + 1 WHERE id = 1
RETURNING version, total_analyses, total_staked, consensus_threshold;`
	meta, err := scanMeta(tx.QueryRowContext(ctx, bump))
	if err != nil {
		return domain.SaveResult{}, err
	}
	rec.BlockHeight = meta.Total()

	var existing int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM semantic_analyses WHERE id=$1;`, string(rec.ID),
	).Scan(&existing); err != nil {
		return domain.SaveResult{}, fmt.Errorf("lookup analysis: %w", err)
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return domain.SaveResult{}, fmt.Errorf("encode analysis: %w", err)
	}
	const upsert = `
INSERT INTO semantic_analyses (id, submitter, submitted_at, block_height, record_json)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET
 submitter = EXCLUDED.submitter,
 submitted_at = EXCLUDED.submitted_at,
 block_height = EXCLUDED.block_height,
 record_json = EXCLUDED.record_json;`
	if _, err := tx.ExecContext(ctx, upsert,
		string(rec.ID), stringOrDash(rec.Submitter), int64(rec.Timestamp), int64(rec.BlockHeight), string(body),
	); err != nil {
		return domain.SaveResult{}, fmt.Errorf("upsert analysis: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.SaveResult{}, fmt.Errorf("commit: %w", err)
	}
	return domain.SaveResult{Replaced: existing > 0, Metadata: meta}, nil
}

func (r *AnalysisRepository) Get(ctx context.Context, id domain.AnalysisID) (*domain.AnalysisRecord, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT record_json FROM semantic_analyses WHERE id=$1 LIMIT 1;`, string(id),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord(raw)
}

func (r *AnalysisRepository) All(ctx context.Context) ([]*domain.AnalysisRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT record_json FROM semantic_analyses ORDER BY seq ASC;`)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.AnalysisRecord, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		rec, err := decodeRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *AnalysisRepository) Size(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM semantic_analyses;`).Scan(&n)
	return n, err
}

func (r *AnalysisRepository) Metadata(ctx context.Context) (domain.AggregateMetadata, error) {
	return scanMeta(r.db.QueryRowContext(ctx, `
SELECT version, total_analyses, total_staked, consensus_threshold
FROM analysis_metadata WHERE id = 1;`))
}

func (r *AnalysisRepository) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

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
