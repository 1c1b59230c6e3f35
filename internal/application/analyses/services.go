package analyses

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/semantic-guard/internal/application"
	domain "github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
)

// Service implements use-cases untuk AnalysisRecord.
//
// Mutating calls are serialized by mu so that the clock reading and the commit
// happen in the same order. The block height is assigned by the repository
// inside its transaction. Reads go straight to the repository and only ever
// see committed state.
type Service struct {
	Repo    domain.Repository
	Archive domain.Archive // optional
	Clock   application.Clock
	Logger  *zap.Logger

	mu sync.Mutex
}

//
// ==== USE CASES ====
//

// SubmitCommand untuk submit hasil analisis
type SubmitCommand struct {
	Submitter string
	Query     string
	Results   []domain.SearchResult
	Analysis  domain.SemanticAnalysisResult
	Metadata  domain.AnalysisMetadata
	// AttachedDeposit is accepted from callers but has no effect.
	AttachedDeposit string
}

// DemoCommand untuk submit demo
type DemoCommand struct {
	Submitter string
	Prefix    string
	Seed      string
	Payload   string
}

// Submit stores an analysis under its derived id and returns that id.
// An existing record with the same id is replaced; the counter still advances.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (domain.AnalysisID, error) {
	if cmd.AttachedDeposit != "" {
		s.logger().Debug("attached deposit ignored",
			zap.String("submitter", cmd.Submitter),
			zap.String("deposit", cmd.AttachedDeposit))
	}

	rec, err := s.commit(ctx, kindFull, func(ts uint64) *domain.AnalysisRecord {
		id := domain.GenerateID(cmd.Query, ts, cmd.Submitter)
		return &domain.AnalysisRecord{
			ID:               id,
			Query:            cmd.Query,
			Results:          cmd.Results,
			SemanticAnalysis: cmd.Analysis,
			Submitter:        cmd.Submitter,
			Timestamp:        ts,
			Metadata:         cmd.Metadata,
		}
	})
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// SubmitDemo stores a placeholder record under prefix_seed_demo.
// The payload is not interpreted.
func (s *Service) SubmitDemo(ctx context.Context, cmd DemoCommand) (domain.AnalysisID, error) {
	key := domain.DemoKey(cmd.Prefix, cmd.Seed)
	rec, err := s.commit(ctx, kindDemo, func(ts uint64) *domain.AnalysisRecord {
		return domain.NewDemoRecord(key, cmd.Submitter, ts)
	})
	if err != nil {
		return "", err
	}
	s.logger().Debug("demo payload ignored", zap.String("key", string(key)), zap.Int("payload_bytes", len(cmd.Payload)))
	return rec.ID, nil
}

// Get ambil 1 record by id
func (s *Service) Get(ctx context.Context, id domain.AnalysisID) (*domain.AnalysisRecord, error) {
	return s.Repo.Get(ctx, id)
}

// All returns every record in the repository's enumeration order.
func (s *Service) All(ctx context.Context) ([]*domain.AnalysisRecord, error) {
	return s.Repo.All(ctx)
}

// Recent returns up to limit records from the reverse of All's order.
func (s *Service) Recent(ctx context.Context, limit int) ([]*domain.AnalysisRecord, error) {
	all, err := s.Repo.All(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Recent(all, limit), nil
}

// HighRisk returns records with at least one outlier at or above threshold.
func (s *Service) HighRisk(ctx context.Context, threshold domain.Severity) ([]*domain.AnalysisRecord, error) {
	all, err := s.Repo.All(ctx)
	if err != nil {
		return nil, err
	}
	return domain.HighRisk(all, threshold), nil
}

// Stats returns the aggregate metadata by value.
func (s *Service) Stats(ctx context.Context) (domain.AggregateMetadata, error) {
	meta, err := s.Repo.Metadata(ctx)
	if err != nil {
		return domain.AggregateMetadata{}, err
	}
	return meta.Snapshot(), nil
}

// Total returns the submission counter.
func (s *Service) Total(ctx context.Context) (uint64, error) {
	meta, err := s.Repo.Metadata(ctx)
	if err != nil {
		return 0, err
	}
	return meta.Total(), nil
}

// Size returns the number of distinct stored ids; it can trail Total after collisions.
func (s *Service) Size(ctx context.Context) (int, error) {
	return s.Repo.Size(ctx)
}

// HealthCheck is a liveness probe and is always true.
func (s *Service) HealthCheck() bool { return true }

func (s *Service) commit(ctx context.Context, kind string, build func(ts uint64) *domain.AnalysisRecord) (*domain.AnalysisRecord, error) {
	s.mu.Lock()
	rec := build(timestamp(s.clock().Now()))
	res, err := s.Repo.Save(ctx, rec)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("save analysis %s: %w", rec.ID, err)
	}

	submissionsTotal.WithLabelValues(kind).Inc()
	log := s.logger().With(
		zap.String("id", string(rec.ID)),
		zap.String("kind", kind),
		zap.String("submitter", rec.Submitter),
		zap.Uint64("block_height", rec.BlockHeight),
		zap.Uint64("total_analyses", res.Metadata.TotalAnalyses),
	)
	if res.Replaced {
		collisionsTotal.WithLabelValues(kind).Inc()
		log.Warn("analysis id collided, previous record replaced")
	} else {
		log.Info("analysis stored")
	}

	s.archive(ctx, rec)
	return rec, nil
}

// archive is best effort: the submission is already committed.
func (s *Service) archive(ctx context.Context, rec *domain.AnalysisRecord) {
	if s.Archive == nil {
		return
	}
	url, err := s.Archive.Put(ctx, rec)
	if err != nil {
		archiveFailures.Inc()
		s.logger().Warn("archive upload failed", zap.String("id", string(rec.ID)), zap.Error(err))
		return
	}
	s.logger().Debug("analysis archived", zap.String("id", string(rec.ID)), zap.String("url", url))
}

func (s *Service) clock() application.Clock {
	if s.Clock == nil {
		return application.SystemClock{}
	}
	return s.Clock
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// helper
func timestamp(t time.Time) uint64 {
	ns := t.UnixNano()
	if ns < 0 {
		return 0
	}
	return uint64(ns)
}
