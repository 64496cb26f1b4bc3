package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteSendsOptions(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  hello there \n"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(time.Second)
	out, err := client.Complete(context.Background(),
		ChatConfig{BaseURL: srv.URL + "/v1/", APIKey: "sk-test", Model: "m"},
		[]ChatMessage{{Role: "user", Content: "hi"}},
		CompletionOptions{MaxTokens: 150, Temperature: 0.7})

	require.NoError(t, err)
	assert.Equal(t, "hello there", out)
	assert.Equal(t, float64(150), got["max_tokens"])
	assert.Equal(t, 0.7, got["temperature"])
	assert.Equal(t, "m", got["model"])
}

func TestCompleteWithoutKeyFailsFast(t *testing.T) {
	client := NewOpenAICompatibleClient(time.Second)

	_, err := client.Complete(context.Background(), ChatConfig{BaseURL: "http://unused"}, nil, CompletionOptions{})

	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestEmbedSurfacesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(time.Second)
	_, err := client.Embed(context.Background(), EmbeddingConfig{BaseURL: srv.URL}, "text")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.True(t, statusErr.Retryable())
}

func TestEmbedBatchKeepsInputOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[2]},{"index":0,"embedding":[1]}]}`))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(time.Second)
	out, err := client.EmbedBatch(context.Background(), EmbeddingConfig{BaseURL: srv.URL}, []string{"a", "b"})

	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {2}}, out)
}
