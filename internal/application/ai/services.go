package ai

import (
	"context"
	"time"

	"github.com/bryanwahyu/semantic-guard/internal/application"
	"github.com/bryanwahyu/semantic-guard/internal/domain/ai"
	"github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
)

// RecordReader is the slice of the analyses service this package needs.
type RecordReader interface {
	Get(ctx context.Context, id analyses.AnalysisID) (*analyses.AnalysisRecord, error)
}

// Explanation is returned to API callers; it is not persisted.
type Explanation struct {
	ID          analyses.AnalysisID `json:"id"`
	MaxSeverity analyses.Severity   `json:"max_severity,omitempty"`
	Outliers    int                 `json:"outliers"`
	Text        string              `json:"text"`
	CreatedAt   time.Time           `json:"created_at"`
}

type Service struct {
	client  ai.Client
	records RecordReader
	clock   application.Clock
}

// NewService returns a Service. A nil client makes every call fail with ai.ErrDisabled.
func NewService(client ai.Client, records RecordReader, clock application.Clock) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Service{client: client, records: records, clock: clock}
}

func (s *Service) Enabled() bool { return s != nil && s.client != nil }

func (s *Service) Explain(ctx context.Context, id analyses.AnalysisID) (Explanation, error) {
	if !s.Enabled() {
		return Explanation{}, ai.ErrDisabled
	}
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return Explanation{}, err
	}
	text, err := s.client.Explain(ctx, rec)
	if err != nil {
		return Explanation{}, err
	}
	sev, _ := rec.MaxSeverity()
	return Explanation{
		ID:          rec.ID,
		MaxSeverity: sev,
		Outliers:    len(rec.SemanticAnalysis.Outliers),
		Text:        text,
		CreatedAt:   s.clock.Now(),
	}, nil
}
