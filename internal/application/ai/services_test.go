package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/semantic-guard/internal/application"
	domai "github.com/bryanwahyu/semantic-guard/internal/domain/ai"
	"github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
)

type fakeClient struct {
	text string
	err  error
	seen *analyses.AnalysisRecord
}

func (f *fakeClient) Explain(_ context.Context, rec *analyses.AnalysisRecord) (string, error) {
	f.seen = rec
	return f.text, f.err
}

type mapReader map[analyses.AnalysisID]*analyses.AnalysisRecord

func (m mapReader) Get(_ context.Context, id analyses.AnalysisID) (*analyses.AnalysisRecord, error) {
	rec, ok := m[id]
	if !ok {
		return nil, analyses.ErrNotFound
	}
	return rec, nil
}

func TestService_Disabled(t *testing.T) {
	svc := NewService(nil, mapReader{}, nil)
	assert.False(t, svc.Enabled())

	_, err := svc.Explain(context.Background(), "x")
	assert.ErrorIs(t, err, domai.ErrDisabled)

	var nilSvc *Service
	assert.False(t, nilSvc.Enabled())
}

func TestService_Explain(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := &analyses.AnalysisRecord{
		ID: "abc",
		SemanticAnalysis: analyses.SemanticAnalysisResult{
			Outliers: []analyses.SemanticOutlier{
				{ResultID: "r1", Severity: analyses.SeverityMedium},
				{ResultID: "r2", Severity: analyses.SeverityHigh},
			},
		},
	}
	client := &fakeClient{text: "r2 disagrees with the rest"}
	svc := NewService(client, mapReader{"abc": rec}, application.FixedClock{T: now})

	exp, err := svc.Explain(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, analyses.AnalysisID("abc"), exp.ID)
	assert.Equal(t, analyses.SeverityHigh, exp.MaxSeverity)
	assert.Equal(t, 2, exp.Outliers)
	assert.Equal(t, "r2 disagrees with the rest", exp.Text)
	assert.Equal(t, now, exp.CreatedAt)
	assert.Same(t, rec, client.seen)
}

func TestService_ExplainErrors(t *testing.T) {
	svc := NewService(&fakeClient{}, mapReader{}, nil)
	_, err := svc.Explain(context.Background(), "missing")
	assert.ErrorIs(t, err, analyses.ErrNotFound)

	quota := NewService(&fakeClient{err: domai.ErrQuotaExceeded}, mapReader{"a": {ID: "a"}}, nil)
	_, err = quota.Explain(context.Background(), "a")
	assert.ErrorIs(t, err, domai.ErrQuotaExceeded)
}
