// Package flight collapses concurrent work on the same key into one call.
package flight

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
)

// Mode decides what a caller gets when its key is already in flight.
type Mode string

// Supported modes.
const (
	// ModeJoin shares the in-flight call's result with the new caller.
	ModeJoin Mode = "join"
	// ModeReject fails the new caller with model.ErrBusy.
	ModeReject Mode = "reject"
)

// ParseMode parses a configured mode. Empty means join.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeJoin, "":
		return ModeJoin, nil
	case ModeReject:
		return ModeReject, nil
	default:
		return "", fmt.Errorf("unknown single-flight mode %q", s)
	}
}

// Group runs at most one call per key at a time. Different keys never
// block each other.
type Group[T any] struct {
	mode Mode
	sf   singleflight.Group

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New creates a group in the given mode.
func New[T any](mode Mode) *Group[T] {
	if mode != ModeReject {
		mode = ModeJoin
	}
	return &Group[T]{mode: mode, inflight: make(map[string]struct{})}
}

// Mode returns the group's mode.
func (g *Group[T]) Mode() Mode {
	return g.mode
}

// InFlight reports whether a call for key is running.
func (g *Group[T]) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.inflight[key]
	return ok
}

// Do runs fn for key unless a call is already running. fn receives a
// context detached from ctx's cancellation, so a caller giving up never
// aborts work other callers may be sharing; ctx only bounds how long this
// caller waits. shared reports whether the result came from a call started
// by another caller.
func (g *Group[T]) Do(ctx context.Context, key string, fn func(context.Context) (T, error)) (v T, shared bool, err error) {
	detached := context.WithoutCancel(ctx)
	if g.mode == ModeReject {
		return g.doExclusive(ctx, detached, key, fn)
	}

	ch := g.sf.DoChan(key, func() (any, error) {
		g.acquire(key)
		defer g.release(key)
		return fn(detached)
	})
	select {
	case <-ctx.Done():
		return v, false, fmt.Errorf("waiting for %s: %w", key, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return v, res.Shared, res.Err
		}
		return res.Val.(T), res.Shared, nil
	}
}

type result[T any] struct {
	val T
	err error
}

func (g *Group[T]) doExclusive(ctx, detached context.Context, key string, fn func(context.Context) (T, error)) (v T, shared bool, err error) {
	g.mu.Lock()
	if _, busy := g.inflight[key]; busy {
		g.mu.Unlock()
		return v, false, fmt.Errorf("%w: %s", model.ErrBusy, key)
	}
	g.inflight[key] = struct{}{}
	g.mu.Unlock()

	ch := make(chan result[T], 1)
	go func() {
		defer g.release(key)
		val, err := fn(detached)
		ch <- result[T]{val: val, err: err}
	}()
	select {
	case <-ctx.Done():
		return v, false, fmt.Errorf("waiting for %s: %w", key, ctx.Err())
	case res := <-ch:
		return res.val, false, res.err
	}
}

func (g *Group[T]) acquire(key string) {
	g.mu.Lock()
	g.inflight[key] = struct{}{}
	g.mu.Unlock()
}

func (g *Group[T]) release(key string) {
	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()
}
