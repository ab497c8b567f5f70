package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
)

// Client talks to the allocation service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Health checks that the service answers /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// Allocate triggers a run for one internship. A positive wait is sent as
// ?timeout so the server stops waiting before the client gives up.
func (c *Client) Allocate(ctx context.Context, internshipID string, wait time.Duration) (Allocation, error) {
	var out Allocation
	q := url.Values{}
	if wait > 0 {
		q.Set("timeout", wait.String())
	}
	err := c.do(ctx, http.MethodPost, "/api/allocations/"+url.PathEscape(internshipID), q, &out)
	return out, err
}

// Result fetches the last published result.
func (c *Client) Result(ctx context.Context, internshipID string) (Allocation, error) {
	var out Allocation
	err := c.do(ctx, http.MethodGet, "/api/allocations/"+url.PathEscape(internshipID), nil, &out)
	return out, err
}

// Refresh schedules a background run for every active internship.
func (c *Client) Refresh(ctx context.Context) (RefreshReport, error) {
	var out RefreshReport
	err := c.do(ctx, http.MethodPost, "/api/allocations/refresh", nil, &out)
	return out, err
}

// Internships lists the catalog.
func (c *Client) Internships(ctx context.Context, activeOnly bool) ([]model.Internship, error) {
	var out []model.Internship
	q := url.Values{}
	if activeOnly {
		q.Set("active", "true")
	}
	err := c.do(ctx, http.MethodGet, "/api/internships", q, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_ = json.Unmarshal(body, apiErr)
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
