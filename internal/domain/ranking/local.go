package ranking

import (
	"context"
	"fmt"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/scoring"
)

// LocalName is the name of the in-process rule-based strategy.
const LocalName = "local"

// Local ranks candidates in process with the compatibility scorer.
type Local struct {
	scorer *scoring.Scorer
}

// NewLocal creates a local strategy. A nil scorer uses the defaults.
func NewLocal(scorer *scoring.Scorer) *Local {
	if scorer == nil {
		scorer = scoring.New()
	}
	return &Local{scorer: scorer}
}

// Name implements Strategy.
func (l *Local) Name() string { return LocalName }

// Rank implements Strategy. Duplicate candidate identifiers in the pool are
// scored once, keeping the first occurrence.
func (l *Local) Rank(ctx context.Context, in model.Internship, pool []model.Candidate) ([]model.ScoredCandidate, error) {
	out := make([]model.ScoredCandidate, 0, len(pool))
	seen := make(map[string]struct{}, len(pool))
	for _, c := range pool {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("local ranking cancelled: %w", err)
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, model.ScoredCandidate{
			CandidateID:  c.ID,
			InternshipID: in.ID,
			Name:         c.Name,
			Score:        l.scorer.Score(c, in),
		})
	}
	Order(out)
	return out, nil
}
