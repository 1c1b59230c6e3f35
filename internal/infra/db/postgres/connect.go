package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	domain "github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// record_json is TEXT because jsonb rejects the \u0000 escape.
const schema = `
CREATE TABLE IF NOT EXISTS semantic_analyses (
  seq          BIGSERIAL PRIMARY KEY,
  id           TEXT   NOT NULL UNIQUE,
  submitter    TEXT   NOT NULL,
  submitted_at BIGINT NOT NULL,
  block_height BIGINT NOT NULL,
  record_json  TEXT   NOT NULL
);
CREATE TABLE IF NOT EXISTS analysis_metadata (
  id                  SMALLINT PRIMARY KEY,
  version             TEXT             NOT NULL,
  total_analyses      BIGINT           NOT NULL,
  total_staked        BIGINT           NOT NULL,
  consensus_threshold DOUBLE PRECISION NOT NULL
);`

// Migrate creates the tables and seeds the metadata row once.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	if err := convertLegacyJSONB(ctx, db); err != nil {
		return err
	}
	def := domain.DefaultMetadata()
	const seed = `
INSERT INTO analysis_metadata (id, version, total_analyses, total_staked, consensus_threshold)
VALUES (1, $1, 0, 0, $2)
ON CONFLICT (id) DO NOTHING;`
	if _, err := db.ExecContext(ctx, seed, def.Version, def.ConsensusThreshold); err != nil {
		return fmt.Errorf("seed metadata: %w", err)
	}
	return nil
}

// convertLegacyJSONB turns a record_json column created as JSONB into TEXT.
func convertLegacyJSONB(ctx context.Context, db *sql.DB) error {
	var dataType string
	err := db.QueryRowContext(ctx, `
SELECT data_type FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = 'semantic_analyses' AND column_name = 'record_json';`,
	).Scan(&dataType)
	if err != nil {
		return fmt.Errorf("inspect record_json: %w", err)
	}
	if dataType != "jsonb" {
		return nil
	}
	if _, err := db.ExecContext(ctx,
		`ALTER TABLE semantic_analyses ALTER COLUMN record_json TYPE TEXT USING record_json::text;`,
	); err != nil {
		return fmt.Errorf("convert record_json: %w", err)
	}
	return nil
}
