package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bryanwahyu/semantic-guard/internal/config"
	domain "github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
)

func TestOpenRepository_Embedded(t *testing.T) {
	ctx := context.Background()
	for _, driver := range []string{config.DriverMemory, config.DriverBadger, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Storage.Driver = driver
			cfg.Storage.Badger.Path = filepath.Join(t.TempDir(), "badger")
			cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "guard.db")

			repo, closeRepo, err := openRepository(ctx, cfg, zap.NewNop())
			require.NoError(t, err)
			defer closeRepo()

			_, err = repo.Save(ctx, &domain.AnalysisRecord{ID: "a"})
			require.NoError(t, err)
			meta, err := repo.Metadata(ctx)
			require.NoError(t, err)
			assert.Equal(t, uint64(1), meta.TotalAnalyses)
		})
	}
}

func TestOpenRepository_Unknown(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = "cassandra"
	_, _, err := openRepository(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
