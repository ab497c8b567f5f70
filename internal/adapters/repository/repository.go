// Package repository provides read access to candidates and internships.
package repository

import (
	"context"
	"slices"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
)

// Kinds of repository selectable by configuration.
const (
	KindMemory       = "memory"
	KindSQLite       = "sqlite"
	KindPostgres     = "postgres"
	KindUnconfigured = "unconfigured"
)

// InternshipFilter narrows ListInternships.
type InternshipFilter struct {
	// ActiveOnly drops closed internships.
	ActiveOnly bool
}

// CandidateFilter narrows GetCandidates.
type CandidateFilter struct {
	// InternshipID, when set, keeps only candidates who applied to it.
	InternshipID string
}

// Repository is the single source of candidates and internships. Every
// backend returns results ordered by identifier.
type Repository interface {
	// GetInternship returns one internship or ErrNotFound.
	GetInternship(ctx context.Context, id string) (model.Internship, error)
	// ListInternships returns internships matching f.
	ListInternships(ctx context.Context, f InternshipFilter) ([]model.Internship, error)
	// GetCandidates returns candidates matching f.
	GetCandidates(ctx context.Context, f CandidateFilter) ([]model.Candidate, error)
}

func sortInternships(in []model.Internship) {
	slices.SortFunc(in, func(a, b model.Internship) int { return model.CompareIDs(a.ID, b.ID) })
}

func sortCandidates(in []model.Candidate) {
	slices.SortFunc(in, func(a, b model.Candidate) int { return model.CompareIDs(a.ID, b.ID) })
}
