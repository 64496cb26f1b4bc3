package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"path2prevention/internal/ai"
	"path2prevention/internal/config"
)

// Embedder turns text into an L2-normalized vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// New picks the configured provider: the local ONNX MiniLM model or an
// OpenAI-compatible embeddings endpoint.
func New(cfg config.EmbeddingConfig, client *ai.OpenAICompatibleClient) (Embedder, error) {
	switch cfg.Provider {
	case "onnx":
		return NewMiniLMEmbedder(cfg.ModelPath, cfg.VocabPath, cfg.ONNXSharedLibPath, cfg.MaxSequenceLength), nil
	case "openai":
		return NewRemoteEmbedder(client, ai.EmbeddingConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
		}, cfg.Dimensions, cfg.MaxRetries, 200*time.Millisecond), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// Prepare flattens newlines and trims, matching how stored texts were embedded.
func Prepare(text string) string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.TrimSpace(text)
}

// Normalize scales v to unit length in place. A zero vector is left as is.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return v
}

// Cosine returns the cosine similarity of a and b (0 when either is zero or
// the lengths differ).
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
