package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/siherrmann/eventrag/helper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestServer(t *testing.T, status int, body string, requests *[]chatRequest) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		assert.NoError(t, err)
		*requests = append(*requests, req)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

const completionBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1741000000,
	"model": "qwen/qwen-2.5-72b-instruct",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "  Event 1 was a fire alarm.  "}
	}]
}`

func TestNewOpenAIAnswerer(t *testing.T) {
	t.Run("Invalid configuration", func(t *testing.T) {
		_, err := NewOpenAIAnswerer(nil)
		assert.Error(t, err)

		_, err = NewOpenAIAnswerer(&helper.LLMConfiguration{BaseURL: "http://localhost", Model: "m"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "api key is empty")
	})

	t.Run("Answer is generated from the completion", func(t *testing.T) {
		var requests []chatRequest
		server := newTestServer(t, http.StatusOK, completionBody, &requests)

		answer, err := NewOpenAIAnswerer(&helper.LLMConfiguration{
			BaseURL: server.URL,
			APIKey:  "test-key",
			Model:   helper.DefaultLLMModel,
		})
		require.NoError(t, err)

		text, err := answer(context.Background(), "system text", "prompt text")
		require.NoError(t, err)
		assert.Equal(t, "Event 1 was a fire alarm.", text)

		require.Len(t, requests, 1)
		req := requests[0]
		assert.Equal(t, helper.DefaultLLMModel, req.Model)
		assert.Equal(t, 0.0, req.Temperature)
		assert.Equal(t, MaxTokens, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "system text", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "prompt text", req.Messages[1].Content)
	})

	t.Run("Server error is not retried", func(t *testing.T) {
		var requests []chatRequest
		server := newTestServer(t, http.StatusInternalServerError, `{"error": {"message": "boom"}}`, &requests)

		answer, err := NewOpenAIAnswerer(&helper.LLMConfiguration{BaseURL: server.URL, APIKey: "test-key", Model: "m"})
		require.NoError(t, err)

		_, err = answer(context.Background(), "s", "p")
		assert.ErrorIs(t, err, ErrAnswerUnavailable)
		assert.Len(t, requests, 1, "Expected exactly one request")
	})

	t.Run("Empty choices are an error", func(t *testing.T) {
		var requests []chatRequest
		server := newTestServer(t, http.StatusOK, `{"id": "x", "object": "chat.completion", "choices": []}`, &requests)

		answer, err := NewOpenAIAnswerer(&helper.LLMConfiguration{BaseURL: server.URL, APIKey: "test-key", Model: "m"})
		require.NoError(t, err)

		_, err = answer(context.Background(), "s", "p")
		assert.ErrorIs(t, err, ErrAnswerUnavailable)
		assert.Contains(t, err.Error(), "no choices")
	})
}
