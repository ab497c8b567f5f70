package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Ad0t/PMIS-Allocation/internal/adapters/mq/notify"
	"github.com/Ad0t/PMIS-Allocation/internal/adapters/repository"
	"github.com/Ad0t/PMIS-Allocation/internal/adapters/resultstore"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/ranking"
	"github.com/Ad0t/PMIS-Allocation/pkg/logger"
	"github.com/Ad0t/PMIS-Allocation/pkg/metrics"
)

const tracerName = "github.com/Ad0t/PMIS-Allocation/internal/app"

// State is where an internship sits in its allocation lifecycle.
type State string

// Allocation states.
const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePublished State = "published"
	StateFailed    State = "failed"
)

// Outcome is what Allocate hands back. A fresh run has Stale false. When
// the ranking strategy failed but an earlier result exists, Result is that
// earlier result, Stale is true and Cause says what went wrong.
type Outcome struct {
	Result model.AllocationResult
	Stale  bool
	Cause  error
}

// Allocate ranks, classifies and publishes the candidates for one
// internship. At most one run per internship executes at a time; a second
// caller joins it or gets model.ErrBusy depending on the flight mode.
// Cancelling ctx stops the wait, not the run.
func (s *Service) Allocate(ctx context.Context, internshipID string) (Outcome, error) {
	store, log, err := s.components()
	if err != nil {
		return Outcome{}, err
	}
	id := strings.TrimSpace(internshipID)
	if id == "" {
		return Outcome{}, fmt.Errorf("empty internship id: %w", model.ErrNotFound)
	}

	out, shared, err := s.flights.Do(ctx, id, func(runCtx context.Context) (Outcome, error) {
		return s.run(runCtx, store, log, id)
	})
	if shared {
		log.Debug(ctx, "joined in-flight allocation", logger.String("internship_id", id))
	}
	if err != nil {
		if errors.Is(err, model.ErrBusy) {
			metrics.RecordAllocationRun(s.strategy.Name(), "busy", 0)
		}
		return Outcome{}, err
	}
	out.Result = out.Result.Clone()
	return out, nil
}

// LastResult returns the most recently published result for an internship.
func (s *Service) LastResult(ctx context.Context, internshipID string) (model.AllocationResult, error) {
	store, _, err := s.components()
	if err != nil {
		return model.AllocationResult{}, err
	}
	return store.GetPublished(ctx, internshipID)
}

// State reports the lifecycle state of an internship's allocation.
func (s *Service) State(internshipID string) State {
	if v, ok := s.states.Load(internshipID); ok {
		return v.(State)
	}
	return StateIdle
}

func (s *Service) setState(id string, st State) {
	s.states.Store(id, st)
}

func (s *Service) stateCounts() map[State]int {
	counts := map[State]int{}
	s.states.Range(func(_, v any) bool {
		counts[v.(State)]++
		return true
	})
	return counts
}

func (s *Service) run(ctx context.Context, store resultstore.Store, log logger.Logger, id string) (Outcome, error) {
	start := time.Now()
	strategy := s.strategy.Name()
	s.setState(id, StateRunning)
	s.runs.Add(1)
	metrics.IncAllocationInFlight()
	defer metrics.DecAllocationInFlight()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "service.allocate", trace.WithAttributes(
		attribute.String("internship_id", id),
		attribute.String("strategy", strategy),
	))
	defer span.End()

	out, err := s.compute(ctx, store, log, id)

	label := "published"
	switch {
	case err != nil:
		label = "failed"
		s.setState(id, StateFailed)
		s.failed.Add(1)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn(ctx, "allocation failed", logger.String("internship_id", id), logger.Error(err))
	case out.Stale:
		label = "stale"
		s.setState(id, StateFailed)
		s.stale.Add(1)
		span.SetAttributes(attribute.Bool("stale", true))
		log.Warn(ctx, "allocation fell back to previous result",
			logger.String("internship_id", id),
			logger.Any("version", out.Result.Version),
			logger.Error(out.Cause),
		)
	default:
		s.setState(id, StatePublished)
		s.published.Add(1)
		span.SetAttributes(attribute.Int64("version", int64(out.Result.Version)))
		log.Info(ctx, "allocation published",
			logger.String("internship_id", id),
			logger.Any("version", out.Result.Version),
			logger.Int("entries", len(out.Result.Entries)),
		)
	}
	metrics.RecordAllocationRun(strategy, label, time.Since(start).Seconds())

	return out, err
}

func (s *Service) compute(ctx context.Context, store resultstore.Store, log logger.Logger, id string) (Outcome, error) {
	in, err := s.fetchInternship(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	if !in.Active() {
		return Outcome{}, fmt.Errorf("internship %s is %s: %w", id, in.State, model.ErrInternshipClosed)
	}

	pool, err := s.fetchPool(ctx, id)
	if err != nil {
		return Outcome{}, err
	}

	entries, err := s.strategy.Rank(ctx, in, pool)
	if err != nil {
		if errors.Is(err, model.ErrRemoteScoring) {
			return s.fallback(ctx, store, id, err)
		}
		return Outcome{}, fmt.Errorf("rank internship %s: %w", id, err)
	}

	s.classifier.Apply(entries)
	if err := ranking.Validate(id, entries); err != nil {
		metrics.RecordInvariantViolation()
		log.Error(ctx, "ranked list rejected", logger.String("internship_id", id), logger.Error(err))
		return Outcome{}, err
	}

	var version uint64
	prev, err := store.GetPublished(ctx, id)
	switch {
	case err == nil:
		version = prev.Version
	case errors.Is(err, model.ErrNoResult):
	default:
		return Outcome{}, fmt.Errorf("read previous result for %s: %w", id, err)
	}

	now := time.Now().UTC()
	result := model.AllocationResult{
		InternshipID: id,
		Version:      version + 1,
		RunID:        uuid.NewString(),
		Strategy:     s.strategy.Name(),
		ComputedAt:   now,
		Entries:      entries,
	}
	if err := store.Publish(ctx, result); err != nil {
		return Outcome{}, fmt.Errorf("publish result for %s: %w", id, err)
	}

	// The run is committed once Publish returns; a failed read-back falls
	// back to the result just written.
	published, err := store.GetPublished(ctx, id)
	if err != nil {
		log.Warn(ctx, "read back published result",
			logger.String("internship_id", id),
			logger.Any("version", result.Version),
			logger.Error(err),
		)
		published = result
	}
	metrics.RecordAllocationResult(len(published.Entries), len(published.Shortlist()))

	if err := s.notifier.Notify(ctx, notify.EventFor(published, now)); err != nil {
		log.Warn(ctx, "notify published result", logger.String("internship_id", id), logger.Error(err))
	}

	return Outcome{Result: published}, nil
}

// fallback serves the last published result after a ranking failure, or
// ErrUnavailable when there is none.
func (s *Service) fallback(ctx context.Context, store resultstore.Store, id string, cause error) (Outcome, error) {
	prev, err := store.GetPublished(ctx, id)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: internship %s: %w", model.ErrUnavailable, id, cause)
	}
	metrics.RecordStaleFallback()
	return Outcome{Result: prev, Stale: true, Cause: cause}, nil
}

func (s *Service) fetchInternship(ctx context.Context, id string) (model.Internship, error) {
	start := time.Now()
	defer observeRepository("get_internship", start)

	in, err := s.repo.GetInternship(ctx, id)
	if err != nil {
		return model.Internship{}, fmt.Errorf("fetch internship %s: %w", id, err)
	}
	return in, nil
}

func (s *Service) fetchPool(ctx context.Context, id string) ([]model.Candidate, error) {
	start := time.Now()
	defer observeRepository("get_candidates", start)

	filter := repository.CandidateFilter{}
	if s.poolMode == ranking.PoolApplied {
		filter.InternshipID = id
	}
	candidates, err := s.repo.GetCandidates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates for %s: %w", id, err)
	}
	return ranking.SelectPool(s.poolMode, id, candidates), nil
}

func observeRepository(op string, start time.Time) {
	metrics.RecordRepositoryQueryLatency(op, float64(time.Since(start).Microseconds())/1000)
}
