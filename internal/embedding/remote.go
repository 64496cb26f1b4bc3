package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"path2prevention/internal/ai"
)

// RemoteEmbedder calls an OpenAI-compatible embeddings endpoint, retrying
// throttled and 5xx responses with exponential backoff.
type RemoteEmbedder struct {
	client       *ai.OpenAICompatibleClient
	cfg          ai.EmbeddingConfig
	dims         int
	maxRetries   int
	initialDelay time.Duration
}

func NewRemoteEmbedder(client *ai.OpenAICompatibleClient, cfg ai.EmbeddingConfig, dims, maxRetries int, initialDelay time.Duration) *RemoteEmbedder {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if initialDelay <= 0 {
		initialDelay = 200 * time.Millisecond
	}
	return &RemoteEmbedder{
		client:       client,
		cfg:          cfg,
		dims:         dims,
		maxRetries:   maxRetries,
		initialDelay: initialDelay,
	}
}

func (e *RemoteEmbedder) Dimensions() int {
	return e.dims
}

func (e *RemoteEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = Prepare(text)
	if text == "" {
		return nil, fmt.Errorf("embedding input is empty")
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.initialDelay
	policy.MaxInterval = 5 * time.Second

	vec, err := backoff.Retry(ctx, func() ([]float32, error) {
		vec, err := e.client.Embed(ctx, e.cfg, text)
		if err == nil {
			return vec, nil
		}
		var statusErr *ai.StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(uint(e.maxRetries+1)))
	if err != nil {
		return nil, err
	}

	if len(vec) != e.dims {
		return nil, fmt.Errorf("embedding has %d dimensions, want %d", len(vec), e.dims)
	}
	return Normalize(vec), nil
}
