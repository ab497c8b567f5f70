package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/scoring"
)

// OpenAIName is the name of the LLM strategy.
const OpenAIName = "openai"

// OpenAIConfig defines configuration options for the LLM strategy.
type OpenAIConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
	MaxScore float64
}

// OpenAI ranks a pool by asking a chat model to score every candidate.
type OpenAI struct {
	client *openai.Client
	cfg    OpenAIConfig
}

// NewOpenAI builds the strategy.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxScore <= 0 {
		cfg.MaxScore = scoring.DefaultMaxScore
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAI{client: openai.NewClientWithConfig(config), cfg: cfg}, nil
}

// Name implements ranking.Strategy.
func (o *OpenAI) Name() string { return OpenAIName }

type llmCandidate struct {
	ID        string   `json:"candidate_id"`
	Skills    []string `json:"skills"`
	Education string   `json:"education"`
	Location  string   `json:"location"`
	Projects  string   `json:"projects"`
}

type llmRequest struct {
	Title             string         `json:"title"`
	RequiredSkills    []string       `json:"required_skills"`
	EducationKeywords []string       `json:"education_keywords,omitempty"`
	Location          string         `json:"location"`
	Candidates        []llmCandidate `json:"candidates"`
}

type llmResponse struct {
	Ranking []Score `json:"ranking"`
}

// Rank implements ranking.Strategy.
func (o *OpenAI) Rank(parent context.Context, in model.Internship, pool []model.Candidate) ([]model.ScoredCandidate, error) {
	ctx, span := tracer().Start(parent, "remote.openai.rank", trace.WithAttributes(
		attribute.String("internship_id", in.ID),
		attribute.String("model", o.cfg.Model),
		attribute.Int("pool_size", len(pool)),
	))
	defer span.End()

	if len(pool) == 0 {
		return []model.ScoredCandidate{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	prompt, err := o.userPrompt(in, pool)
	if err != nil {
		return nil, fail(OpenAIName, span, fmt.Errorf("%w: %w", model.ErrRemoteScoring, err))
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.cfg.Model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: o.systemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, fail(OpenAIName, span, fmt.Errorf("%w: openai: %w", model.ErrRemoteScoring, err))
	}
	if len(resp.Choices) == 0 {
		return nil, fail(OpenAIName, span, malformed("no choices returned from openai"))
	}

	var parsed llmResponse
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fail(OpenAIName, span, malformed("decode openai content: %v", err))
	}
	// the model is asked for scores only; ranks are assigned locally
	for i := range parsed.Ranking {
		parsed.Ranking[i].Rank = 0
	}
	out, err := finalize(in, pool, parsed.Ranking, o.cfg.MaxScore)
	if err != nil {
		return nil, fail(OpenAIName, span, err)
	}
	span.SetAttributes(attribute.Int("ranked", len(out)), attribute.Int("total_tokens", resp.Usage.TotalTokens))
	return out, nil
}

func (o *OpenAI) systemPrompt() string {
	return fmt.Sprintf(`You rank internship applicants. Score every candidate from 0 to %g for how well
their skills, education and location fit the internship. Respond with JSON only:
{"ranking":[{"candidate_id":"<id>","score":<number>}]}. Use only the candidate ids you are given
and include each of them exactly once.`, o.cfg.MaxScore)
}

func (o *OpenAI) userPrompt(in model.Internship, pool []model.Candidate) (string, error) {
	req := llmRequest{
		Title:             in.Title,
		RequiredSkills:    in.RequiredSkills,
		EducationKeywords: in.EducationKeywords,
		Location:          in.Location,
		Candidates:        make([]llmCandidate, 0, len(pool)),
	}
	for _, c := range pool {
		req.Candidates = append(req.Candidates, llmCandidate{
			ID:        c.ID,
			Skills:    c.Skills,
			Education: c.Education,
			Location:  c.Location,
			Projects:  c.Projects,
		})
	}
	b, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode prompt: %w", err)
	}
	return string(b), nil
}
