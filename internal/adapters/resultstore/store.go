// Package resultstore holds the published allocation result of every
// internship. Each backend replaces a result atomically: readers see either
// the previous complete result or the new complete result.
package resultstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
	"github.com/Ad0t/PMIS-Allocation/pkg/metrics"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendGorm   = "gorm"
	BackendRedis  = "redis"
)

// Sentinel kinds for result store errors.
var (
	// ErrStaleVersion means a result with an equal or newer version is already published.
	ErrStaleVersion = errors.New("result version is not newer than the published one")
	// ErrNoResult means nothing was published for the internship.
	ErrNoResult = model.ErrNoResult
	// ErrInvalidResult means the result cannot be stored.
	ErrInvalidResult = errors.New("invalid allocation result")
)

// Store provides atomic publication of allocation results.
type Store interface {
	// Publish replaces the internship's result with r in one step. It fails
	// with ErrStaleVersion when r.Version is not greater than the published one.
	Publish(ctx context.Context, r model.AllocationResult) error
	// GetPublished returns the internship's result or ErrNoResult.
	GetPublished(ctx context.Context, internshipID string) (model.AllocationResult, error)
	// Backend names the storage engine.
	Backend() string
}

func validate(r model.AllocationResult) error {
	if r.InternshipID == "" {
		return fmt.Errorf("%w: empty internship id", ErrInvalidResult)
	}
	if r.Version == 0 {
		return fmt.Errorf("%w: version must be positive", ErrInvalidResult)
	}
	return nil
}

func staleError(r model.AllocationResult, current uint64) error {
	return fmt.Errorf("%w: internship %s has version %d, got %d", ErrStaleVersion, r.InternshipID, current, r.Version)
}

func observePublish(backend string, start time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ErrStaleVersion):
		result = "stale"
	case err != nil:
		result = "error"
	}
	metrics.RecordStorePublish(backend, result, float64(time.Since(start).Microseconds())/1000)
}
