// Package remote implements ranking strategies that delegate scoring to an
// external capability: a JSON RPC endpoint or an LLM.
package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/ranking"
	"github.com/Ad0t/PMIS-Allocation/pkg/metrics"
)

const tracerName = "github.com/Ad0t/PMIS-Allocation/internal/adapters/remote"

// Score is one row returned by a remote ranker. Rank is optional; when
// present the ranks must form 1..N.
type Score struct {
	CandidateID string  `json:"candidate_id"`
	Score       float64 `json:"score"`
	Rank        int     `json:"rank,omitempty"`
}

// UnmarshalJSON accepts candidate_id as a JSON string or number. SQL
// backends that key candidates by integer return the latter.
func (s *Score) UnmarshalJSON(data []byte) error {
	var wire struct {
		CandidateID json.RawMessage `json:"candidate_id"`
		Score       float64         `json:"score"`
		Rank        int             `json:"rank"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	id, err := candidateID(wire.CandidateID)
	if err != nil {
		return err
	}
	*s = Score{CandidateID: id, Score: wire.Score, Rank: wire.Rank}
	return nil
}

func candidateID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return "", nil
	case raw[0] == '"':
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return "", err
		}
		return id, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("candidate_id must be a string or a number, got %s", raw)
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	return n.String(), nil
}

func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// malformed wraps a validation problem as a remote scoring failure.
func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrRemoteScoring, fmt.Sprintf(format, args...))
}

func fail(strategy string, span trace.Span, err error) error {
	metrics.RecordRemoteFailure(strategy)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// finalize checks remote output against the pool and turns it into an
// ordered list. Remote rankers may omit candidates but never invent them.
// Ranks are recomputed locally so ties break the same way for every strategy.
func finalize(in model.Internship, pool []model.Candidate, scores []Score, maxScore float64) ([]model.ScoredCandidate, error) {
	names := make(map[string]string, len(pool))
	for _, c := range pool {
		names[c.ID] = c.Name
	}

	ranked := false
	ranks := make(map[int]struct{}, len(scores))
	seen := make(map[string]struct{}, len(scores))
	out := make([]model.ScoredCandidate, 0, len(scores))
	for _, s := range scores {
		if s.CandidateID == "" {
			return nil, malformed("empty candidate id")
		}
		name, ok := names[s.CandidateID]
		if !ok {
			return nil, malformed("unknown candidate %q", s.CandidateID)
		}
		if _, dup := seen[s.CandidateID]; dup {
			return nil, malformed("candidate %q returned twice", s.CandidateID)
		}
		seen[s.CandidateID] = struct{}{}
		if math.IsNaN(s.Score) || math.IsInf(s.Score, 0) || s.Score < 0 || (maxScore > 0 && s.Score > maxScore) {
			return nil, malformed("candidate %q has score %v outside [0, %v]", s.CandidateID, s.Score, maxScore)
		}
		if s.Rank != 0 {
			ranked = true
			ranks[s.Rank] = struct{}{}
		}
		out = append(out, model.ScoredCandidate{
			CandidateID:  s.CandidateID,
			InternshipID: in.ID,
			Name:         name,
			Score:        s.Score,
		})
	}
	if ranked {
		for r := 1; r <= len(scores); r++ {
			if _, ok := ranks[r]; !ok {
				return nil, malformed("ranks are not contiguous: missing %d", r)
			}
		}
	}
	ranking.Order(out)
	return out, nil
}
