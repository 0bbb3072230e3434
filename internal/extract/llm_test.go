package extract

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func llmResponse(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(body)
}

func TestCompleteSendsZeroTemperatureChat(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, llmResponse("model output"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-model", "secret", 4096, 5*time.Second)
	out, err := client.Complete("system instruction", "user chunk", 0)

	require.NoError(t, err)
	assert.Equal(t, "model output", out)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "test-model", gotReq.Model)
	assert.Zero(t, gotReq.Temperature)
	assert.Equal(t, 4096, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "system instruction", gotReq.Messages[0].Content)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
}

func TestCompleteFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-200 status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "not json at all")
		}},
		{"no choices", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"choices":[]}`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(server.URL, "m", "k", 512, 5*time.Second)
			_, err := client.Complete("sys", "user", 0)
			assert.Error(t, err)
		})
	}
}

func TestLLMCleanScrubsModelCommentary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, llmResponse("Here's the cleaned text:\nClean story text from the model.\nTAGS: one, two"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "m", "k", 4096, 5*time.Second)
	p := New(Config{Strategy: StrategyLLM}, client)

	got := p.CleanText(articlePage, "https://site.com/post")
	assert.Equal(t, "Clean story text from the model.", got)
}

func TestLLMCleanFallsBackOnRemoteFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "m", "k", 4096, 5*time.Second)
	p := New(Config{Strategy: StrategyLLM}, client)

	got := p.CleanText(articlePage, "https://site.com/post")
	assert.Contains(t, got, "First paragraph of the story.")
}

func TestLLMCleanWithoutClientUsesBasicFallback(t *testing.T) {
	p := New(Config{Strategy: StrategyLLM}, nil)
	got := p.CleanText(articlePage, "https://site.com/post")
	assert.Contains(t, got, "First paragraph of the story.")
}

func TestSummary(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, llmResponse("A short summary of the article."))
	}))
	defer server.Close()

	client := NewClient(server.URL, "m", "k", 4096, 5*time.Second)
	p := New(Config{Strategy: StrategyLLM}, client)

	got := p.Summary("Some cleaned article text.")
	assert.Equal(t, "A short summary of the article.", got)
	assert.Equal(t, 512, gotReq.MaxTokens)
}

func TestSummaryWithoutClient(t *testing.T) {
	p := New(Config{Strategy: StrategyLLM}, nil)
	assert.Empty(t, p.Summary("anything"))
}

func TestSummaryFailureIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "m", "k", 4096, 5*time.Second)
	p := New(Config{Strategy: StrategyLLM}, client)
	assert.Empty(t, p.Summary("anything"))
}
