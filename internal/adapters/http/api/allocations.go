package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	service "github.com/Ad0t/PMIS-Allocation/internal/app"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
)

// maxWait caps the ?timeout a caller may ask for.
const maxWait = 2 * time.Minute

// AllocationHandler serves allocation runs and published results.
type AllocationHandler struct {
	deps Allocator
}

// NewAllocationHandler creates a new allocation handler.
func NewAllocationHandler(deps Allocator) *AllocationHandler {
	return &AllocationHandler{deps: deps}
}

type allocationResponse struct {
	model.AllocationResult
	State string `json:"state"`
	Stale bool   `json:"stale"`
	Cause string `json:"cause,omitempty"`
}

// legacyEntry is the row shape the older dashboard reads.
type legacyEntry struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Ranking int     `json:"ranking"`
	Status  string  `json:"status"`
}

type legacyShortlist struct {
	Data [][]legacyEntry `json:"data"`
}

// HandleAllocate handles POST /api/allocations/{id}. An optional ?timeout=
// bounds how long the caller waits; the run itself keeps going.
func (h *AllocationHandler) HandleAllocate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx, cancel, err := waitContext(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	defer cancel()

	out, err := h.deps.Allocate(ctx, id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	resp := allocationResponse{
		AllocationResult: out.Result,
		State:            string(h.deps.State(id)),
		Stale:            out.Stale,
	}
	if out.Cause != nil {
		resp.Cause = out.Cause.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetResult handles GET /api/allocations/{id}.
func (h *AllocationHandler) HandleGetResult(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.deps.LastResult(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, allocationResponse{
		AllocationResult: res,
		State:            string(h.deps.State(id)),
	})
}

// HandleRefresh handles POST /api/allocations/refresh.
func (h *AllocationHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	report, err := h.deps.RefreshActive(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, report)
}

// HandleShortlist handles GET /api/shortlist/{id} and answers in the nested
// {"data": [[...]]} shape. It serves the published result and only runs an
// allocation when the internship has none yet.
func (h *AllocationHandler) HandleShortlist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.deps.LastResult(r.Context(), id)
	if errors.Is(err, model.ErrNoResult) {
		var out service.Outcome
		out, err = h.deps.Allocate(r.Context(), id)
		res = out.Result
	}
	if err != nil {
		writeFailure(w, err)
		return
	}
	rows := make([]legacyEntry, 0, len(res.Entries))
	for _, e := range res.Entries {
		rows = append(rows, legacyEntry{
			ID:      e.CandidateID,
			Name:    e.Name,
			Score:   e.Score,
			Ranking: e.Rank,
			Status:  string(e.Status),
		})
	}
	writeJSON(w, http.StatusOK, legacyShortlist{Data: [][]legacyEntry{rows}})
}

func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing internship id", ErrBadRequest))
		return "", false
	}
	return id, true
}

func waitContext(r *http.Request) (context.Context, context.CancelFunc, error) {
	raw := r.URL.Query().Get("timeout")
	if raw == "" {
		ctx, cancel := context.WithCancel(r.Context())
		return ctx, cancel, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return nil, nil, fmt.Errorf("%w: invalid timeout %q", ErrBadRequest, raw)
	}
	ctx, cancel := context.WithTimeout(r.Context(), min(d, maxWait))
	return ctx, cancel, nil
}

var _ Dependencies = (*service.Service)(nil)
