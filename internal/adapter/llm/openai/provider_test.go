package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/difflens/difflens/internal/domain"
	"github.com/difflens/difflens/internal/usecase/review"
)

func completionWith(content string) ChatCompletionResponse {
	var resp ChatCompletionResponse
	resp.Choices = []struct {
		Index        int     `json:"index"`
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	}{
		{Message: Message{Role: "assistant", Content: content}, FinishReason: "stop"},
	}
	return resp
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p := NewProvider("test-key", "test-model")
	p.Client().SetBaseURL(server.URL)
	p.Client().SetMaxRetries(1)
	p.Client().SetInitialBackoff(time.Millisecond)
	return p
}

func TestProvider_ReviewParsesFindings(t *testing.T) {
	var gotReq ChatCompletionRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		content := "```json\n[{\"type\":\"bug\",\"severity\":\"high\",\"description\":\"off by one\",\"line_number\":3,\"confidence\":0.8}]\n```"
		json.NewEncoder(w).Encode(completionWith(content))
	})

	findings, err := p.Review(context.Background(), review.ProviderRequest{Prompt: "review this", MaxTokens: 500})
	require.NoError(t, err)

	require.Len(t, findings, 1)
	assert.Equal(t, domain.FindingBug, findings[0].Type)
	assert.Equal(t, 3, findings[0].LineNumber)

	assert.Equal(t, "test-model", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "review this", gotReq.Messages[1].Content)
	assert.Equal(t, 500, gotReq.MaxTokens)
}

func TestProvider_ReviewRetriesOn503(t *testing.T) {
	calls := 0
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(completionWith("[]"))
	})

	findings, err := p.Review(context.Background(), review.ProviderRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Empty(t, findings)
	assert.Equal(t, 2, calls)
}

func TestProvider_ReviewAuthFailureNotRetried(t *testing.T) {
	calls := 0
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid api key"},
		})
	})

	_, err := p.Review(context.Background(), review.ProviderRequest{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
	assert.Equal(t, 1, calls)
}

func TestProvider_ReviewEmptyChoices(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatCompletionResponse{})
	})

	_, err := p.Review(context.Background(), review.ProviderRequest{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
