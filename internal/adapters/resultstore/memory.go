package resultstore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
	"github.com/Ad0t/PMIS-Allocation/pkg/metrics"
)

// Snapshot is an immutable view of every published result. A new snapshot
// replaces the old one on each publish; readers never take a lock.
type Snapshot struct {
	Results map[string]model.AllocationResult
}

// MemoryStore keeps results in process.
type MemoryStore struct {
	mu       sync.Mutex // serializes writers
	snapshot atomic.Pointer[Snapshot]

	metricsUpdateInterval time.Duration
	wg                    sync.WaitGroup
	stopChan              chan struct{}
	stopOnce              sync.Once
}

// NewMemory constructs a memory store and starts its metrics updater,
// which stops when ctx is done or Close is called.
func NewMemory(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(&Snapshot{Results: map[string]model.AllocationResult{}})
	s.startMetricsUpdater(ctx)
	return s
}

// Backend implements Store.
func (s *MemoryStore) Backend() string { return BackendMemory }

// Publish implements Store with a copy-on-write snapshot swap.
func (s *MemoryStore) Publish(ctx context.Context, r model.AllocationResult) (err error) {
	start := time.Now()
	defer func() { observePublish(BackendMemory, start, err) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(r); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snapshot.Load()
	if prev, ok := cur.Results[r.InternshipID]; ok && prev.Version >= r.Version {
		return staleError(r, prev.Version)
	}
	next := make(map[string]model.AllocationResult, len(cur.Results)+1)
	for k, v := range cur.Results {
		next[k] = v
	}
	next[r.InternshipID] = r.Clone()
	s.snapshot.Store(&Snapshot{Results: next})
	return nil
}

// GetPublished implements Store.
func (s *MemoryStore) GetPublished(ctx context.Context, internshipID string) (model.AllocationResult, error) {
	if err := ctx.Err(); err != nil {
		return model.AllocationResult{}, err
	}
	r, ok := s.snapshot.Load().Results[internshipID]
	if !ok {
		return model.AllocationResult{}, fmt.Errorf("internship %s: %w", internshipID, ErrNoResult)
	}
	return r.Clone(), nil
}

// Count returns the number of internships with a published result.
func (s *MemoryStore) Count() int {
	return len(s.snapshot.Load().Results)
}

// Close stops the metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateStoredResults(s.Count())
			}
		}
	}()
}
