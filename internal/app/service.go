// Package service wires the allocation engine together: repository,
// ranking strategy, classifier, result store and the refresh worker pool.
package service

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/Ad0t/PMIS-Allocation/internal/adapters/mq/notify"
	eventqueue "github.com/Ad0t/PMIS-Allocation/internal/adapters/mq/queue"
	workerpool "github.com/Ad0t/PMIS-Allocation/internal/adapters/mq/worker"
	"github.com/Ad0t/PMIS-Allocation/internal/adapters/repository"
	"github.com/Ad0t/PMIS-Allocation/internal/adapters/resultstore"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/classify"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/dedupe"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/flight"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/ranking"
	"github.com/Ad0t/PMIS-Allocation/pkg/logger"
	"github.com/Ad0t/PMIS-Allocation/pkg/metrics"
)

// ErrNotStarted is returned by operations that need a running service.
var ErrNotStarted = errors.New("service not started")

// Service is the allocation orchestrator.
type Service struct {
	mu sync.RWMutex

	// Core components
	repo       repository.Repository
	strategy   ranking.Strategy
	classifier *classify.Classifier
	store      resultstore.Store
	notifier   notify.Notifier
	flights    *flight.Group[Outcome]
	deduper    dedupe.Deduper
	jobs       eventqueue.Queue
	workerPool *workerpool.Pool

	// Configuration
	flightMode    flight.Mode
	poolMode      ranking.PoolMode
	workerCount   int
	queueCapacity int
	ownsStore     bool

	// State
	started bool
	states  sync.Map // internship id -> State

	runs      atomic.Int64
	published atomic.Int64
	stale     atomic.Int64
	failed    atomic.Int64

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration. Unset
// components get in-process defaults: an unconfigured repository, the
// local strategy, the default classifier and a memory result store.
func New(opts ...Option) *Service {
	s := &Service{
		repo:          repository.Unconfigured{},
		classifier:    classify.New(),
		notifier:      notify.Nop{},
		flightMode:    flight.ModeJoin,
		poolMode:      ranking.PoolApplied,
		workerCount:   runtime.NumCPU(),
		queueCapacity: 1024,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.strategy == nil {
		s.strategy = ranking.NewLocal(nil)
	}
	s.flights = flight.New[Outcome](s.flightMode)

	return s
}

// Start initializes the result store and the refresh workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting allocation service...")

	if s.store == nil {
		s.store = resultstore.NewMemory(ctx)
		s.ownsStore = true
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.queueCapacity))
	s.jobs = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueCapacity))
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobs, workerpool.ProcessorFunc(s.process))
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "allocation service started",
		logger.String("strategy", s.strategy.Name()),
		logger.String("store", s.store.Backend()),
		logger.String("flight_mode", string(s.flightMode)),
		logger.String("pool_mode", string(s.poolMode)),
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queue_capacity", s.queueCapacity),
	)

	return nil
}

// Stop drains the workers and releases the store if the service created it.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	pool, log := s.workerPool, s.logger
	s.mu.Unlock()

	ctx := context.Background()
	log.Info(ctx, "stopping allocation service...")

	// workers call back into the service, so the lock is not held here
	if pool != nil {
		if err := pool.Shutdown(ctx); err != nil {
			log.Warn(ctx, "worker pool shutdown", logger.Error(err))
		}
	}

	s.mu.Lock()
	if s.ownsStore {
		if closer, ok := s.store.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		s.store = nil
		s.ownsStore = false
	}
	s.mu.Unlock()

	log.Info(ctx, "allocation service stopped")
}

// components returns the parts Allocate needs, or ErrNotStarted.
func (s *Service) components() (resultstore.Store, logger.Logger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.store, s.logger, nil
}

// Repository returns the configured repository.
func (s *Service) Repository() repository.Repository {
	return s.repo
}

// Strategy returns the name of the configured ranking strategy.
func (s *Service) Strategy() string {
	return s.strategy.Name()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"strategy":      s.strategy.Name(),
		"flightMode":    string(s.flightMode),
		"poolMode":      string(s.poolMode),
		"workerCount":   s.workerCount,
		"queueCapacity": s.queueCapacity,
		"runs":          s.runs.Load(),
		"published":     s.published.Load(),
		"stale":         s.stale.Load(),
		"failed":        s.failed.Load(),
	}

	if s.started {
		queueLen := s.jobs.Len(ctx)
		stats["store"] = s.store.Backend()
		stats["queueLength"] = queueLen
		stats["pendingRefresh"] = s.deduper.Size()
		stats["refreshProcessed"] = s.workerPool.Processed()
		stats["refreshFailed"] = s.workerPool.Failed()
		stats["states"] = s.stateCounts()

		metrics.UpdateQueueSize(queueLen)
	}

	return stats
}
