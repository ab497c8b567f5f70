package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/scoring"
)

// RPCName is the name of the JSON RPC strategy.
const RPCName = "rpc"

const (
	defaultRPCTimeout  = 10 * time.Second
	defaultRPCFunction = "rank_candidates"
	maxRPCBody         = 4 << 20
)

// RPC ranks by calling POST {baseURL}/rpc/{function} with the internship
// identifier and reading back [{candidate_id, score, rank}].
type RPC struct {
	baseURL  string
	function string
	apiKey   string
	timeout  time.Duration
	maxScore float64
	client   *http.Client
}

// RPCOption configures an RPC strategy.
type RPCOption func(*RPC)

// WithFunction sets the remote function name.
func WithFunction(name string) RPCOption {
	return func(r *RPC) {
		if name != "" {
			r.function = name
		}
	}
}

// WithAPIKey sets the key sent in the apikey and Authorization headers.
func WithAPIKey(key string) RPCOption {
	return func(r *RPC) { r.apiKey = key }
}

// WithTimeout bounds every remote call.
func WithTimeout(d time.Duration) RPCOption {
	return func(r *RPC) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) RPCOption {
	return func(r *RPC) {
		if c != nil {
			r.client = c
		}
	}
}

// WithMaxScore sets the upper bound accepted for remote scores.
func WithMaxScore(maxScore float64) RPCOption {
	return func(r *RPC) {
		if maxScore > 0 {
			r.maxScore = maxScore
		}
	}
}

// NewRPC creates an RPC strategy.
func NewRPC(baseURL string, opts ...RPCOption) (*RPC, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("rpc base url must not be empty")
	}
	r := &RPC{
		baseURL:  strings.TrimRight(baseURL, "/"),
		function: defaultRPCFunction,
		timeout:  defaultRPCTimeout,
		maxScore: scoring.DefaultMaxScore,
		client:   &http.Client{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Name implements ranking.Strategy.
func (r *RPC) Name() string { return RPCName }

type rpcRequest struct {
	InternshipID string `json:"internship_id"`
}

// Rank implements ranking.Strategy.
func (r *RPC) Rank(parent context.Context, in model.Internship, pool []model.Candidate) ([]model.ScoredCandidate, error) {
	ctx, span := tracer().Start(parent, "remote.rpc.rank", trace.WithAttributes(
		attribute.String("internship_id", in.ID),
		attribute.String("function", r.function),
		attribute.Int("pool_size", len(pool)),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	scores, err := r.call(ctx, in.ID)
	if err != nil {
		return nil, fail(RPCName, span, err)
	}
	out, err := finalize(in, pool, scores, r.maxScore)
	if err != nil {
		return nil, fail(RPCName, span, err)
	}
	span.SetAttributes(attribute.Int("ranked", len(out)))
	return out, nil
}

func (r *RPC) call(ctx context.Context, internshipID string) ([]Score, error) {
	body, err := json.Marshal(rpcRequest{InternshipID: internshipID})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", model.ErrRemoteScoring, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/rpc/"+r.function, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", model.ErrRemoteScoring, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if r.apiKey != "" {
		req.Header.Set("apikey", r.apiKey)
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrRemoteScoring, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRPCBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", model.ErrRemoteScoring, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, malformed("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var scores []Score
	if err := json.Unmarshal(raw, &scores); err != nil {
		return nil, malformed("decode response: %v", err)
	}
	return scores, nil
}
