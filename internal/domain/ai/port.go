package ai

import (
	"context"

	"github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
)

// Client produces a human-readable risk narrative for a stored record.
type Client interface {
	Explain(ctx context.Context, rec *analyses.AnalysisRecord) (string, error)
}
