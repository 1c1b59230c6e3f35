package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
	"github.com/bryanwahyu/semantic-guard/internal/domain/analyses/analysestest"
)

func newTestRepo(t *testing.T) *AnalysisRepository {
	t.Helper()
	db, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAnalysisRepository(db)
}

func TestAnalysisRepository_EmptyStore(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	meta, err := repo.Metadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMetadata(), meta)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, repo.Ping(ctx))
}

func TestAnalysisRepository_SaveAndUpsert(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	rec := &domain.AnalysisRecord{
		ID:        "b",
		Query:     "q",
		Submitter: "alice.testnet",
		SemanticAnalysis: domain.SemanticAnalysisResult{
			Outliers: []domain.SemanticOutlier{{ResultID: "r1", Severity: domain.SeverityHigh}},
		},
	}
	res, err := repo.Save(ctx, rec)
	require.NoError(t, err)
	assert.False(t, res.Replaced)
	assert.Equal(t, uint64(1), res.Metadata.TotalAnalyses)

	_, err = repo.Save(ctx, &domain.AnalysisRecord{ID: "a", Query: "other"})
	require.NoError(t, err)

	rec.Query = "q2"
	res, err = repo.Save(ctx, rec)
	require.NoError(t, err)
	assert.True(t, res.Replaced)
	assert.Equal(t, uint64(3), res.Metadata.TotalAnalyses)

	got, err := repo.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "q2", got.Query)
	assert.Equal(t, domain.SeverityHigh, got.SemanticAnalysis.Outliers[0].Severity)

	// lexicographic key order
	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, domain.AnalysisID("a"), all[0].ID)
	assert.Equal(t, domain.AnalysisID("b"), all[1].ID)

	size, err := repo.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, size)
}

func TestAnalysisRepository_FullRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	rec := analysestest.FullRecord("full")
	_, err := repo.Save(ctx, rec)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "full")
	require.NoError(t, err)
	assert.Equal(t, analysestest.FullRecord("full"), got)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, analysestest.FullRecord("full"), all[0])
}

func TestAnalysisRepository_AssignsBlockHeight(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for want := uint64(1); want <= 3; want++ {
		rec := &domain.AnalysisRecord{ID: "same", BlockHeight: 99}
		res, err := repo.Save(ctx, rec)
		require.NoError(t, err)
		assert.Equal(t, want, rec.BlockHeight)
		assert.Equal(t, want, res.Metadata.TotalAnalyses)

		got, err := repo.Get(ctx, "same")
		require.NoError(t, err)
		assert.Equal(t, want, got.BlockHeight)
	}
}
