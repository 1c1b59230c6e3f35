package analyses

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/semantic-guard/internal/application"
	domain "github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
	"github.com/bryanwahyu/semantic-guard/internal/domain/analyses/analysestest"
	"github.com/bryanwahyu/semantic-guard/internal/infra/db/memory"
)

var fixedTime = time.Unix(0, 1700000000000000000)

// stepClock advances by one nanosecond per call.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Nanosecond)
	return c.t
}

type fakeArchive struct {
	mu   sync.Mutex
	puts []domain.AnalysisID
	err  error
}

func (a *fakeArchive) Put(_ context.Context, rec *domain.AnalysisRecord) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return "", a.err
	}
	a.puts = append(a.puts, rec.ID)
	return "mem://" + string(rec.ID), nil
}

func newService(clock application.Clock) *Service {
	return &Service{Repo: memory.NewAnalysisRepository(), Clock: clock}
}

func outliers(sevs ...domain.Severity) domain.SemanticAnalysisResult {
	res := domain.SemanticAnalysisResult{}
	for _, s := range sevs {
		res.Outliers = append(res.Outliers, domain.SemanticOutlier{Severity: s})
	}
	return res
}

func TestService_SubmitRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newService(application.FixedClock{T: fixedTime})

	id, err := svc.Submit(ctx, SubmitCommand{
		Submitter: "alice.testnet",
		Query:     "test query",
		Results:   []domain.SearchResult{{ID: "r1", Title: "t", Rank: 1}},
		Analysis:  outliers(domain.SeverityHigh),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AnalysisID("887fW7gTYdUDSMr6vGVZXcDjayf1o8tqtt5Sfb5NV1uM"), id)

	rec, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "test query", rec.Query)
	assert.Equal(t, "alice.testnet", rec.Submitter)
	assert.Equal(t, uint64(fixedTime.UnixNano()), rec.Timestamp)
	assert.Equal(t, uint64(1), rec.BlockHeight)
	assert.Equal(t, domain.GenerateID(rec.Query, rec.Timestamp, rec.Submitter), rec.ID)

	total, err := svc.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
}

func TestService_SubmitStoresContentUnchanged(t *testing.T) {
	ctx := context.Background()
	svc := newService(application.FixedClock{T: fixedTime})

	in := analysestest.FullRecord("")
	id, err := svc.Submit(ctx, SubmitCommand{
		Submitter: in.Submitter,
		Query:     in.Query,
		Results:   in.Results,
		Analysis:  in.SemanticAnalysis,
		Metadata:  in.Metadata,
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)

	want := analysestest.FullRecord(id)
	want.Timestamp = uint64(fixedTime.UnixNano())
	want.BlockHeight = 1
	assert.Equal(t, want, got)
}

func TestService_GetMissing(t *testing.T) {
	svc := newService(application.FixedClock{T: fixedTime})
	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_CollisionsStillCount(t *testing.T) {
	ctx := context.Background()
	svc := newService(application.FixedClock{T: fixedTime})

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(ctx, SubmitCommand{Submitter: "bob", Query: "same"})
		require.NoError(t, err)
	}
	_, err := svc.Submit(ctx, SubmitCommand{Submitter: "bob", Query: "different"})
	require.NoError(t, err)

	total, err := svc.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), total)

	size, err := svc.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	rec, err := svc.Get(ctx, domain.GenerateID("same", uint64(fixedTime.UnixNano()), "bob"))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), rec.BlockHeight, "last write wins")
}

func TestService_BlockHeightFollowsCounter(t *testing.T) {
	ctx := context.Background()
	svc := newService(&stepClock{t: fixedTime})

	for i := 1; i <= 3; i++ {
		id, err := svc.Submit(ctx, SubmitCommand{Submitter: "bob", Query: "q"})
		require.NoError(t, err)
		rec, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), rec.BlockHeight)
	}
}

func TestService_SubmitDemo(t *testing.T) {
	ctx := context.Background()
	svc := newService(application.FixedClock{T: fixedTime})

	key, err := svc.SubmitDemo(ctx, DemoCommand{Submitter: "carol", Prefix: "semantic_guard", Seed: "demo_test", Payload: "{}"})
	require.NoError(t, err)
	assert.Equal(t, domain.AnalysisID("semantic_guard_demo_test_demo"), key)

	_, err = svc.SubmitDemo(ctx, DemoCommand{Submitter: "carol", Prefix: "semantic_guard", Seed: "demo_test", Payload: "ignored"})
	require.NoError(t, err)

	size, err := svc.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.TotalAnalyses)
	assert.Equal(t, domain.DefaultVersion, stats.Version)

	rec, err := svc.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Demo Query", rec.Query)
	assert.Equal(t, "carol", rec.Submitter)
	assert.Equal(t, uint64(2), rec.BlockHeight)
}

func TestService_RecentAndHighRisk(t *testing.T) {
	ctx := context.Background()
	svc := newService(&stepClock{t: fixedTime})

	var ids []domain.AnalysisID
	for _, sev := range []domain.Severity{domain.SeverityLow, domain.SeverityMedium, domain.SeverityCritical} {
		id, err := svc.Submit(ctx, SubmitCommand{Submitter: "bob", Query: string(sev), Analysis: outliers(sev)})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	recent, err := svc.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)
	assert.Equal(t, ids[1], recent[1].ID)

	none, err := svc.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	medium, err := svc.HighRisk(ctx, domain.SeverityMedium)
	require.NoError(t, err)
	assert.Len(t, medium, 2)

	critical, err := svc.HighRisk(ctx, domain.SeverityCritical)
	require.NoError(t, err)
	require.Len(t, critical, 1)
	assert.Equal(t, ids[2], critical[0].ID)
}

func TestService_ConcurrentSubmits(t *testing.T) {
	ctx := context.Background()
	svc := newService(&stepClock{t: fixedTime})

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(ctx, SubmitCommand{Submitter: "bob", Query: "q"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	total, err := svc.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(n), total)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	heights := make(map[uint64]bool)
	for _, rec := range all {
		assert.False(t, heights[rec.BlockHeight], "duplicate height %d", rec.BlockHeight)
		heights[rec.BlockHeight] = true
	}
}

func TestService_SharedRepositoryHeights(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAnalysisRepository()
	clock := &stepClock{t: fixedTime}
	// two processes sharing one database
	a := &Service{Repo: repo, Clock: clock}
	b := &Service{Repo: repo, Clock: clock}

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := a.Submit(ctx, SubmitCommand{Submitter: "a", Query: "q"})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := b.Submit(ctx, SubmitCommand{Submitter: "b", Query: "q"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := a.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2*n)
	heights := make(map[uint64]bool)
	for _, rec := range all {
		heights[rec.BlockHeight] = true
	}
	assert.Len(t, heights, 2*n)
	for h := uint64(1); h <= 2*n; h++ {
		assert.True(t, heights[h], "missing height %d", h)
	}
}

func TestService_ArchiveIsBestEffort(t *testing.T) {
	ctx := context.Background()

	arc := &fakeArchive{}
	svc := newService(application.FixedClock{T: fixedTime})
	svc.Archive = arc
	id, err := svc.Submit(ctx, SubmitCommand{Submitter: "bob", Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, []domain.AnalysisID{id}, arc.puts)

	failing := newService(application.FixedClock{T: fixedTime})
	failing.Archive = &fakeArchive{err: errors.New("bucket gone")}
	_, err = failing.Submit(ctx, SubmitCommand{Submitter: "bob", Query: "q"})
	require.NoError(t, err)
	total, err := failing.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
}

func TestService_HealthCheck(t *testing.T) {
	assert.True(t, (&Service{}).HealthCheck())
}
