package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	domain "github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Ids are compared byte for byte and have no length limit, so the unique key is
// sha256(id) rather than a collated VARCHAR.
var schema = []string{`
CREATE TABLE IF NOT EXISTS semantic_analyses (
  seq          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
  id_hash      BINARY(32)      NOT NULL,
  id           MEDIUMBLOB      NOT NULL,
  submitter    VARCHAR(255)    NOT NULL,
  submitted_at BIGINT UNSIGNED NOT NULL,
  block_height BIGINT UNSIGNED NOT NULL,
  record_json  JSON            NOT NULL,
  PRIMARY KEY (seq),
  UNIQUE KEY uq_semantic_analyses_id_hash (id_hash)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`, `
CREATE TABLE IF NOT EXISTS analysis_metadata (
  id                  TINYINT UNSIGNED NOT NULL PRIMARY KEY,
  version             VARCHAR(32)      NOT NULL,
  total_analyses      BIGINT UNSIGNED  NOT NULL,
  total_staked        BIGINT UNSIGNED  NOT NULL,
  consensus_threshold DOUBLE           NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`, `
INSERT IGNORE INTO analysis_metadata (id, version, total_analyses, total_staked, consensus_threshold)
VALUES (1, ?, 0, 0, ?);`,
}

// Migrate creates the tables and seeds the metadata row once.
func Migrate(ctx context.Context, db *sql.DB) error {
	def := domain.DefaultMetadata()
	for i, q := range schema {
		var err error
		if i == len(schema)-1 {
			_, err = db.ExecContext(ctx, q, def.Version, def.ConsensusThreshold)
		} else {
			_, err = db.ExecContext(ctx, q)
		}
		if err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
