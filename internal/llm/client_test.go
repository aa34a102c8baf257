package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8045/v1", normalizeBaseURL("http://localhost:8045"))
	assert.Equal(t, "http://localhost:8045/v1", normalizeBaseURL("http://localhost:8045/"))
	assert.Equal(t, "http://localhost:8045/v1", normalizeBaseURL("http://localhost:8045/v1"))
	assert.Equal(t, "http://localhost:8045/v1", normalizeBaseURL("http://localhost:8045/v1/"))
}

func TestChatComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "  hello  "}},
			},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "sk-test", "test-model")
	content, err := client.ChatComplete(context.Background(), []Message{
		{Role: "user", Content: "hi"},
	}, 0.3, 100)

	require.NoError(t, err)
	assert.Equal(t, "hello", content, "response content is trimmed")
}

func TestChatCompleteErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "sk-test", "test-model")
	_, err := client.ChatComplete(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0.3, 100)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestChatCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "invalid model"},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "sk-test", "bad-model")
	_, err := client.ChatComplete(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0.3, 100)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid model")
}

func TestChatCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "sk-test", "test-model")
	_, err := client.ChatComplete(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0.3, 100)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
