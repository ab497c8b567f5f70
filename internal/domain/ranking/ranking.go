// Package ranking orders scored candidates and defines the strategy
// contract shared by local and remote rankers.
package ranking

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
)

// Strategy produces a ranked list for one internship. Entries come back
// ordered with ranks 1..N assigned; Status is left for the classifier.
type Strategy interface {
	// Name identifies the strategy in results, logs and metrics.
	Name() string
	// Rank scores and orders pool for in, honoring ctx for cancellation.
	Rank(ctx context.Context, in model.Internship, pool []model.Candidate) ([]model.ScoredCandidate, error)
}

// Order sorts entries by descending score, breaking ties by ascending
// candidate identifier, then assigns ranks by position.
func Order(entries []model.ScoredCandidate) {
	slices.SortStableFunc(entries, compare)
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

func compare(a, b model.ScoredCandidate) int {
	switch {
	case a.Score > b.Score:
		return -1
	case a.Score < b.Score:
		return 1
	default:
		return model.CompareIDs(a.CandidateID, b.CandidateID)
	}
}

// Validate checks that entries form a complete ranking for internshipID:
// ranks exactly 1..N in order, no duplicate candidates, finite scores and
// descending score order with the identifier tie-break.
func Validate(internshipID string, entries []model.ScoredCandidate) error {
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if e.Rank != i+1 {
			return fmt.Errorf("%w: position %d has rank %d", model.ErrInvariantViolation, i+1, e.Rank)
		}
		if e.InternshipID != internshipID {
			return fmt.Errorf("%w: entry %q belongs to internship %q", model.ErrInvariantViolation, e.CandidateID, e.InternshipID)
		}
		if math.IsNaN(e.Score) || math.IsInf(e.Score, 0) {
			return fmt.Errorf("%w: candidate %q has non-finite score", model.ErrInvariantViolation, e.CandidateID)
		}
		if _, dup := seen[e.CandidateID]; dup {
			return fmt.Errorf("%w: candidate %q ranked twice", model.ErrInvariantViolation, e.CandidateID)
		}
		seen[e.CandidateID] = struct{}{}
		if i > 0 && compare(entries[i-1], e) >= 0 {
			return fmt.Errorf("%w: rank %d out of order", model.ErrInvariantViolation, e.Rank)
		}
	}
	return nil
}
