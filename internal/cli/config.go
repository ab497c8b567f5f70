package cli

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
)

// Config holds the settings shared by every command.
type Config struct {
	BaseURL string        // Base URL of the allocation service
	Timeout time.Duration // HTTP request timeout
	Wait    time.Duration // Server-side wait passed as ?timeout on allocate
	Workers int           // Number of concurrent bench workers
	Rounds  int           // Allocate calls issued per internship by bench
	JSON    bool          // Print raw JSON instead of tables
	Verbose bool          // Enable debug logging
}

// Allocation is an allocation result as the service returns it.
type Allocation struct {
	model.AllocationResult
	State string `json:"state"`
	Stale bool   `json:"stale"`
	Cause string `json:"cause,omitempty"`
}

// RefreshReport is the body of a refresh response.
type RefreshReport struct {
	Enqueued []string `json:"enqueued"`
	Pending  []string `json:"pending"`
	Dropped  []string `json:"dropped"`
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return "service returned " + strconv.Itoa(e.Status) + " " + http.StatusText(e.Status)
	}
	return e.Code + ": " + e.Message
}

// Stats holds bench statistics.
type Stats struct {
	Requests  int
	Succeeded int
	Stale     int
	Busy      int
	Failed    int
	Runs      int // distinct run ids observed
	Duration  time.Duration
}
