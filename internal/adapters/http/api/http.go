// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Ad0t/PMIS-Allocation/internal/adapters/repository"
	service "github.com/Ad0t/PMIS-Allocation/internal/app"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
)

// Allocator is the engine surface the handlers drive.
type Allocator interface {
	Allocate(ctx context.Context, internshipID string) (service.Outcome, error)
	LastResult(ctx context.Context, internshipID string) (model.AllocationResult, error)
	State(internshipID string) service.State
	RefreshActive(ctx context.Context) (service.RefreshReport, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Allocator
	StatsProvider

	// Repository exposes the read-only catalog.
	Repository() repository.Repository
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	allocationHandler *AllocationHandler
	catalogHandler    *CatalogHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(deps),
		allocationHandler: NewAllocationHandler(deps),
		catalogHandler:    NewCatalogHandler(deps.Repository()),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /api/allocations/refresh", MetricsMiddleware(s.allocationHandler.HandleRefresh, "refresh"))
	mux.HandleFunc("POST /api/allocations/{id}", MetricsMiddleware(s.allocationHandler.HandleAllocate, "allocate"))
	mux.HandleFunc("GET /api/allocations/{id}", MetricsMiddleware(s.allocationHandler.HandleGetResult, "allocation"))
	mux.HandleFunc("GET /api/shortlist/{id}", MetricsMiddleware(s.allocationHandler.HandleShortlist, "shortlist"))

	mux.HandleFunc("GET /api/internships", MetricsMiddleware(s.catalogHandler.HandleListInternships, "internships"))
	mux.HandleFunc("GET /api/internships/{id}", MetricsMiddleware(s.catalogHandler.HandleGetInternship, "internship"))
	mux.HandleFunc("GET /api/internships/{id}/candidates", MetricsMiddleware(s.catalogHandler.HandleInternshipCandidates, "internship_candidates"))
	mux.HandleFunc("GET /api/candidates", MetricsMiddleware(s.catalogHandler.HandleListCandidates, "candidates"))
	mux.HandleFunc("GET /api/candidate_db", MetricsMiddleware(s.catalogHandler.HandleCandidateProfiles, "candidate_db"))
	mux.HandleFunc("GET /api/data/{table}", MetricsMiddleware(s.catalogHandler.HandleTable, "data"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps an engine error to its status code and error code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classifyError(err)
	writeError(w, status, code, err)
}

// classifyError is the one place engine error kinds become HTTP statuses.
// Unavailable is checked before the remote and repository kinds it may wrap.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvariantViolation):
		return http.StatusInternalServerError, "invariant_violation"
	case errors.Is(err, model.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, model.ErrRepositoryUnavailable):
		return http.StatusServiceUnavailable, "not_configured"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "not_started"
	case errors.Is(err, model.ErrRemoteScoring):
		return http.StatusBadGateway, "remote_scoring"
	case errors.Is(err, model.ErrBusy):
		return http.StatusTooManyRequests, "busy"
	case errors.Is(err, model.ErrInternshipClosed):
		return http.StatusConflict, "internship_closed"
	case errors.Is(err, model.ErrNoResult):
		return http.StatusNotFound, "no_result"
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
