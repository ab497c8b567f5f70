package ranking

import (
	"fmt"
	"strings"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
)

// PoolMode decides which candidates compete for an internship.
type PoolMode string

// Pool modes.
const (
	// PoolApplied ranks only candidates who applied to the internship.
	PoolApplied PoolMode = "applied"
	// PoolAll ranks every known candidate.
	PoolAll PoolMode = "all"
)

// ParsePoolMode parses a configured pool mode.
func ParsePoolMode(s string) (PoolMode, error) {
	switch PoolMode(strings.ToLower(strings.TrimSpace(s))) {
	case PoolApplied, "":
		return PoolApplied, nil
	case PoolAll:
		return PoolAll, nil
	default:
		return "", fmt.Errorf("unknown pool mode %q", s)
	}
}

// SelectPool filters candidates according to mode. The input is not modified.
func SelectPool(mode PoolMode, internshipID string, candidates []model.Candidate) []model.Candidate {
	if mode == PoolAll {
		out := make([]model.Candidate, len(candidates))
		copy(out, candidates)
		return out
	}
	out := make([]model.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.AppliedTo(internshipID) {
			out = append(out, c)
		}
	}
	return out
}
