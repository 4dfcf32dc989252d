package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteReturnsReply(t *testing.T) {
	var gotAuth string
	var gotBody chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Oxygen and glucose."}}],"usage":{"total_tokens":42}}`))
	}))
	defer server.Close()

	client := NewChatClient(ChatClientConfig{BaseURL: server.URL, APIKey: "key-123", Model: "gpt-4o-mini"})
	result, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "What does photosynthesis produce?"}})
	require.NoError(t, err)

	assert.Equal(t, "Oxygen and glucose.", result.Reply)
	assert.Equal(t, float64(42), result.Usage["total_tokens"])
	assert.Equal(t, "Bearer key-123", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody.Model)
	require.Len(t, gotBody.Messages, 1)
}

func TestCompleteSurfacesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	}))
	defer server.Close()

	client := NewChatClient(ChatClientConfig{BaseURL: server.URL})
	_, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestCompleteRejectsEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewChatClient(ChatClientConfig{BaseURL: server.URL})
	_, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	require.Error(t, err)
}
