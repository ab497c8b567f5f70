// Package dedupe tracks identifiers that already have work pending so the
// same internship is not queued for refresh twice.
package dedupe

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
)

// ErrFull is returned when a bounded tracker has no room for another id.
var ErrFull = errors.New("pending tracker is full")

// Deduper records pending identifiers.
type Deduper interface {
	// SeenAndRecord atomically checks if id is pending and records it if not.
	// Returns true if id was already pending, false if it was newly recorded.
	// A full tracker records nothing and returns ErrFull.
	SeenAndRecord(ctx context.Context, id string) (bool, error)

	// Unrecord clears id once its work finished or could not be queued.
	Unrecord(ctx context.Context, id string)

	// Pending returns the recorded identifiers in ascending order.
	Pending() []string

	Size() int64
}

type inMemoryDeduper struct {
	mu      sync.Mutex
	pending map[string]struct{}
	maxSize int // 0 or negative = unbounded
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		pending: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.pending[id]; ok {
		return true, nil
	}
	if d.maxSize > 0 && len(d.pending) >= d.maxSize {
		return false, ErrFull
	}
	d.pending[id] = struct{}{}
	d.size.Add(1)
	return false, nil
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.pending[id]; ok {
		delete(d.pending, id)
		d.size.Add(-1)
	}
}

func (d *inMemoryDeduper) Pending() []string {
	d.mu.Lock()
	out := make([]string, 0, len(d.pending))
	for id := range d.pending {
		out = append(out, id)
	}
	d.mu.Unlock()
	slices.Sort(out)
	return out
}

// Size returns the number of pending identifiers.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
