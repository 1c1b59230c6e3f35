package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bryanwahyu/semantic-guard/internal/config"
	domain "github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
	badgerdb "github.com/bryanwahyu/semantic-guard/internal/infra/db/badger"
	"github.com/bryanwahyu/semantic-guard/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/semantic-guard/internal/infra/db/mysql"
	"github.com/bryanwahyu/semantic-guard/internal/infra/db/postgres"
	"github.com/bryanwahyu/semantic-guard/internal/infra/db/sqlite"
)

// openRepository picks the backend named by storage.driver. The returned
// func releases it.
func openRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domain.Repository, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage, records are lost on restart")
		return memory.NewAnalysisRepository(), func() {}, nil

	case config.DriverBadger:
		bc := badgerdb.DefaultConfig(cfg.Storage.Badger.Path)
		bc.InMemory = cfg.Storage.Badger.InMemory
		bc.SyncWrites = cfg.Storage.Badger.SyncWrites
		bc.Logger = logger
		db, err := badgerdb.Open(bc)
		if err != nil {
			return nil, nil, err
		}
		return badgerdb.NewAnalysisRepository(db), func() { db.Close() }, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Storage.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewAnalysisRepository(db), func() { db.Close() }, nil

	case config.DriverMySQL:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		if err := mysqlp.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return mysqlp.NewAnalysisRepository(db), func() { db.Close() }, nil

	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewAnalysisRepository(db), func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
