package remote_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ad0t/PMIS-Allocation/internal/adapters/remote"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/ranking"
)

var devops = model.Internship{ID: "5", Title: "cloud devops intern", RequiredSkills: []string{"Python", "AWS", "Docker"}, State: model.InternshipActive}

var pool = []model.Candidate{
	{ID: "1", Name: "Priya Sharma", Skills: []string{"React"}},
	{ID: "4", Name: "Suresh Gupta", Skills: []string{"Python", "AWS", "Docker"}},
	{ID: "10", Name: "Extra", Skills: []string{"Python"}},
}

func rpcServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestRPC_Rank(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]string
	srv := rpcServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = fmt.Fprint(w, `[{"candidate_id":"4","score":0.9,"rank":1},{"candidate_id":"10","score":0.3,"rank":2},{"candidate_id":"1","score":0.3,"rank":3}]`)
	})

	rpc, err := remote.NewRPC(srv.URL+"/", remote.WithFunction("get_ranked_candidates"), remote.WithAPIKey("secret"))
	require.NoError(t, err)
	require.Equal(t, remote.RPCName, rpc.Name())

	out, err := rpc.Rank(context.Background(), devops, pool)
	require.NoError(t, err)
	require.Equal(t, "/rpc/get_ranked_candidates", gotPath)
	require.Equal(t, "secret", gotKey)
	require.Equal(t, "5", gotBody["internship_id"])

	require.Len(t, out, 3)
	require.NoError(t, ranking.Validate("5", out))
	require.Equal(t, "4", out[0].CandidateID)
	require.Equal(t, "Suresh Gupta", out[0].Name)
	// equal scores are re-ordered by identifier regardless of remote rank
	require.Equal(t, "1", out[1].CandidateID)
	require.Equal(t, "10", out[2].CandidateID)
}

func TestRPC_NumericCandidateIDs(t *testing.T) {
	srv := rpcServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `[{"candidate_id":4,"score":0.9,"rank":1},{"candidate_id":1,"score":0.2,"rank":2},{"candidate_id":10.0,"score":0.1,"rank":3}]`)
	})

	rpc, err := remote.NewRPC(srv.URL)
	require.NoError(t, err)

	out, err := rpc.Rank(context.Background(), devops, pool)
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.NoError(t, ranking.Validate("5", out))
	require.Equal(t, "4", out[0].CandidateID)
	require.Equal(t, "Suresh Gupta", out[0].Name)
	require.Equal(t, "1", out[1].CandidateID)
	require.Equal(t, "10", out[2].CandidateID)
}

func TestScore_UnmarshalJSON(t *testing.T) {
	var scores []remote.Score
	require.NoError(t, json.Unmarshal([]byte(`[{"candidate_id":"a-7","score":0.5},{"candidate_id":42,"score":0.4,"rank":2},{"score":0.1}]`), &scores))
	require.Equal(t, []remote.Score{
		{CandidateID: "a-7", Score: 0.5},
		{CandidateID: "42", Score: 0.4, Rank: 2},
		{Score: 0.1},
	}, scores)

	var bad remote.Score
	require.Error(t, json.Unmarshal([]byte(`{"candidate_id":true,"score":0.1}`), &bad))
}

func TestRPC_MalformedOutput(t *testing.T) {
	cases := map[string]string{
		"unknown candidate": `[{"candidate_id":"99","score":0.5,"rank":1}]`,
		"duplicate":         `[{"candidate_id":"4","score":0.5,"rank":1},{"candidate_id":"4","score":0.4,"rank":2}]`,
		"rank gap":          `[{"candidate_id":"4","score":0.5,"rank":1},{"candidate_id":"1","score":0.4,"rank":3}]`,
		"out of range":      `[{"candidate_id":"4","score":7,"rank":1}]`,
		"negative":          `[{"candidate_id":"4","score":-1}]`,
		"empty id":          `[{"candidate_id":"","score":0.1}]`,
		"boolean id":        `[{"candidate_id":true,"score":0.1}]`,
		"not json":          `<html>`,
		"wrong shape":       `{"ranking":[]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := rpcServer(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = fmt.Fprint(w, body)
			})
			rpc, err := remote.NewRPC(srv.URL)
			require.NoError(t, err)
			_, err = rpc.Rank(context.Background(), devops, pool)
			require.ErrorIs(t, err, model.ErrRemoteScoring)
		})
	}
}

func TestRPC_Failures(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := rpcServer(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
		rpc, err := remote.NewRPC(srv.URL)
		require.NoError(t, err)
		_, err = rpc.Rank(context.Background(), devops, pool)
		require.ErrorIs(t, err, model.ErrRemoteScoring)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := rpcServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		defer close(release)
		rpc, err := remote.NewRPC(srv.URL, remote.WithTimeout(20*time.Millisecond))
		require.NoError(t, err)

		start := time.Now()
		_, err = rpc.Rank(context.Background(), devops, pool)
		require.ErrorIs(t, err, model.ErrRemoteScoring)
		require.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("empty result", func(t *testing.T) {
		srv := rpcServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = fmt.Fprint(w, `[]`)
		})
		rpc, err := remote.NewRPC(srv.URL)
		require.NoError(t, err)
		out, err := rpc.Rank(context.Background(), devops, pool)
		require.NoError(t, err)
		require.Empty(t, out)
	})

	t.Run("no base url", func(t *testing.T) {
		_, err := remote.NewRPC("")
		require.Error(t, err)
	})
}

func chatResponse(content string) string {
	resp := map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func openaiServer(t *testing.T, content string, seen *map[string]any) *httptest.Server {
	t.Helper()
	return rpcServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, chatResponse(content))
	})
}

func TestOpenAI_Rank(t *testing.T) {
	var req map[string]any
	srv := openaiServer(t, `{"ranking":[{"candidate_id":"1","score":0.2},{"candidate_id":"4","score":0.95,"rank":7},{"candidate_id":"10","score":0.5}]}`, &req)

	llm, err := remote.NewOpenAI(remote.OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	require.Equal(t, remote.OpenAIName, llm.Name())

	out, err := llm.Rank(context.Background(), devops, pool)
	require.NoError(t, err)
	require.NoError(t, ranking.Validate("5", out))
	require.Equal(t, []string{"4", "10", "1"}, []string{out[0].CandidateID, out[1].CandidateID, out[2].CandidateID})
	require.Equal(t, "gpt-4o-mini", req["model"])
}

func TestOpenAI_Failures(t *testing.T) {
	_, err := remote.NewOpenAI(remote.OpenAIConfig{})
	require.Error(t, err)

	for name, content := range map[string]string{
		"not json":          "I think candidate 4 is best",
		"unknown candidate": `{"ranking":[{"candidate_id":"42","score":0.5}]}`,
		"score too high":    `{"ranking":[{"candidate_id":"4","score":3}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := openaiServer(t, content, nil)
			llm, err := remote.NewOpenAI(remote.OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})
			require.NoError(t, err)
			_, err = llm.Rank(context.Background(), devops, pool)
			require.ErrorIs(t, err, model.ErrRemoteScoring)
		})
	}

	t.Run("api error", func(t *testing.T) {
		srv := rpcServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = fmt.Fprint(w, `{"error":{"message":"rate limited","type":"rate_limit"}}`)
		})
		llm, err := remote.NewOpenAI(remote.OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})
		require.NoError(t, err)
		_, err = llm.Rank(context.Background(), devops, pool)
		require.ErrorIs(t, err, model.ErrRemoteScoring)
	})

	t.Run("empty pool skips the call", func(t *testing.T) {
		llm, err := remote.NewOpenAI(remote.OpenAIConfig{APIKey: "test", BaseURL: "http://127.0.0.1:1/v1"})
		require.NoError(t, err)
		out, err := llm.Rank(context.Background(), devops, nil)
		require.NoError(t, err)
		require.Empty(t, out)
	})
}
