// Package sqlite is the single-file SQL backend. It follows the same table
// layout as the mysql and postgres packages.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	domain "github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
)

// Open opens (creating if needed) the database file at path and migrates it.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dir, err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// single writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS semantic_analyses (
  seq          INTEGER PRIMARY KEY AUTOINCREMENT,
  id           TEXT    NOT NULL UNIQUE,
  submitter    TEXT    NOT NULL,
  submitted_at INTEGER NOT NULL,
  block_height INTEGER NOT NULL,
  record_json  TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS analysis_metadata (
  id                  INTEGER PRIMARY KEY,
  version             TEXT    NOT NULL,
  total_analyses      INTEGER NOT NULL,
  total_staked        INTEGER NOT NULL,
  consensus_threshold REAL    NOT NULL
);`

func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	def := domain.DefaultMetadata()
	if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO analysis_metadata (id, version, total_analyses, total_staked, consensus_threshold)
VALUES (1, ?, 0, 0, ?);`, def.Version, def.ConsensusThreshold); err != nil {
		return fmt.Errorf("seed metadata: %w", err)
	}
	return nil
}
