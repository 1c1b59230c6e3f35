// Package memory holds the process-local repository. Records enumerate in the
// order their id was first inserted; an upsert keeps the original position.
package memory

import (
	"context"
	"sync"

	domain "github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
)

type AnalysisRepository struct {
	mu      sync.RWMutex
	index   map[domain.AnalysisID]int
	records []*domain.AnalysisRecord
	meta    domain.AggregateMetadata
}

func NewAnalysisRepository() *AnalysisRepository {
	return &AnalysisRepository{
		index: make(map[domain.AnalysisID]int),
		meta:  domain.DefaultMetadata(),
	}
}

// Save upserts rec and counts the submission under a single write lock.
// The stored value is a deep copy; later changes to rec do not reach it.
func (r *AnalysisRepository) Save(_ context.Context, rec *domain.AnalysisRecord) (domain.SaveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.meta.IncrementTotal()
	rec.BlockHeight = r.meta.Total()
	cp := rec.Clone()

	i, replaced := r.index[cp.ID]
	if replaced {
		r.records[i] = cp
	} else {
		r.index[cp.ID] = len(r.records)
		r.records = append(r.records, cp)
	}

	return domain.SaveResult{Replaced: replaced, Metadata: r.meta.Snapshot()}, nil
}

func (r *AnalysisRepository) Get(_ context.Context, id domain.AnalysisID) (*domain.AnalysisRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.records[i].Clone(), nil
}

func (r *AnalysisRepository) All(_ context.Context) ([]*domain.AnalysisRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.AnalysisRecord, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Clone()
	}
	return out, nil
}

func (r *AnalysisRepository) Size(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}

func (r *AnalysisRepository) Metadata(_ context.Context) (domain.AggregateMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.meta.Snapshot(), nil
}

func (r *AnalysisRepository) Ping(context.Context) error { return nil }
