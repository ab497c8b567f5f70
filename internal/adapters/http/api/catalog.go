package api

import (
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Ad0t/PMIS-Allocation/internal/adapters/repository"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
)

// CatalogHandler serves the read-only internship and candidate listings.
type CatalogHandler struct {
	repo repository.Repository
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(repo repository.Repository) *CatalogHandler {
	return &CatalogHandler{repo: repo}
}

// HandleListInternships handles GET /api/internships. ?active=true limits
// the list to open postings.
func (h *CatalogHandler) HandleListInternships(w http.ResponseWriter, r *http.Request) {
	filter := repository.InternshipFilter{ActiveOnly: r.URL.Query().Get("active") == "true"}
	list, err := h.repo.ListInternships(r.Context(), filter)
	if err != nil {
		writeFailure(w, err)
		return
	}
	out := make([]model.Internship, 0, len(list))
	for _, in := range list {
		out = append(out, capitalizeInternship(in))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGetInternship handles GET /api/internships/{id}.
func (h *CatalogHandler) HandleGetInternship(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, err := h.repo.GetInternship(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, capitalizeInternship(in))
}

// HandleListCandidates handles GET /api/candidates.
func (h *CatalogHandler) HandleListCandidates(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.GetCandidates(r.Context(), repository.CandidateFilter{})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleInternshipCandidates handles GET /api/internships/{id}/candidates:
// the candidates who applied to the internship.
func (h *CatalogHandler) HandleInternshipCandidates(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	list, err := h.repo.GetCandidates(r.Context(), repository.CandidateFilter{InternshipID: id})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// candidateProfile is the reduced candidate row of /api/candidate_db.
type candidateProfile struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Education string   `json:"education"`
	Skills    []string `json:"skills"`
	Projects  string   `json:"projects"`
}

// HandleCandidateProfiles handles GET /api/candidate_db.
func (h *CatalogHandler) HandleCandidateProfiles(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.GetCandidates(r.Context(), repository.CandidateFilter{})
	if err != nil {
		writeFailure(w, err)
		return
	}
	out := make([]candidateProfile, 0, len(list))
	for _, c := range list {
		out = append(out, candidateProfile{
			ID:        c.ID,
			Name:      c.Name,
			Education: c.Education,
			Skills:    c.Skills,
			Projects:  c.Projects,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleTable handles GET /api/data/{table}: the raw rows of the
// internships or candidates table. Other names are 404.
func (h *CatalogHandler) HandleTable(w http.ResponseWriter, r *http.Request) {
	var (
		rows any
		err  error
	)
	switch table := r.PathValue("table"); table {
	case "internships":
		rows, err = h.repo.ListInternships(r.Context(), repository.InternshipFilter{})
	case "candidates":
		rows, err = h.repo.GetCandidates(r.Context(), repository.CandidateFilter{})
	default:
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("unknown table %q", table))
		return
	}
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// capitalizeInternship title-cases the display fields of an internship.
func capitalizeInternship(in model.Internship) model.Internship {
	in.Title = capitalizeWords(in.Title)
	in.Company = capitalizeWords(in.Company)
	in.Location = capitalizeWords(in.Location)
	skills := make([]string, len(in.RequiredSkills))
	for i, s := range in.RequiredSkills {
		skills[i] = capitalizeWords(s)
	}
	in.RequiredSkills = skills
	return in
}

// capitalizeWords upper-cases the first letter of every word and
// lower-cases the rest, collapsing runs of whitespace.
func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
