package analyses

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repositories when no record exists under an id.
var ErrNotFound = errors.New("analysis not found")

// SaveResult describes a committed submission.
type SaveResult struct {
	// Replaced is true when an existing record under the same id was overwritten.
	Replaced bool
	// Metadata is the aggregate state right after the commit.
	Metadata AggregateMetadata
}

// Repository port (interface untuk persistence)
//
// Save must upsert the record and increment the submission counter in one
// transaction: either both are visible afterwards or neither is. Inside that
// transaction Save sets rec.BlockHeight to the incremented counter, so heights
// stay unique even when several processes share one database.
// All returns records in the backend's native enumeration order, which is
// stable between calls but not necessarily chronological.
type Repository interface {
	Save(ctx context.Context, rec *AnalysisRecord) (SaveResult, error)
	Get(ctx context.Context, id AnalysisID) (*AnalysisRecord, error)
	All(ctx context.Context) ([]*AnalysisRecord, error)
	Size(ctx context.Context) (int, error)
	Metadata(ctx context.Context) (AggregateMetadata, error)
	Ping(ctx context.Context) error
}

// Archive port (penyimpanan salinan record, mis. MinIO)
type Archive interface {
	Put(ctx context.Context, rec *AnalysisRecord) (string, error)
}
