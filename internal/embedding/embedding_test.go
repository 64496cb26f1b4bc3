package embedding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"path2prevention/internal/ai"
)

func TestNormalizeProducesUnitVector(t *testing.T) {
	v := Normalize([]float32{3, 4})

	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)
	assert.Equal(t, []float32{0, 0}, Normalize([]float32{0, 0}))
}

func TestCosineOfIdenticalVectorsIsOne(t *testing.T) {
	v := Normalize([]float32{0.2, -0.5, 0.1, 0.9})

	assert.InDelta(t, 1.0, Cosine(v, v), 1e-6)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float32{1}, []float32{1, 2}))
}

func TestPrepareFlattensNewlines(t *testing.T) {
	assert.Equal(t, "a b c", Prepare("  a\nb\r\nc \n"))
}

func TestMeanPoolHonoursMask(t *testing.T) {
	tokens := []float32{
		1, 2,
		3, 4,
		100, 100,
	}

	got := MeanPool(tokens, []int64{1, 1, 0}, 2)

	assert.Equal(t, []float32{2, 3}, got)
}

func testVocab() []string {
	return []string{"[PAD]", "[UNK]", "[CLS]", "[SEP]", "diabetes", "prevent", "##ion", "program", ",", "cafe", "!"}
}

func TestWordPieceEncode(t *testing.T) {
	tok, err := NewWordPieceTokenizer(testVocab(), 16)
	require.NoError(t, err)

	ids := tok.Encode("Diabetes PREVENTION, program!")

	assert.Equal(t, []int64{2, 4, 5, 6, 8, 7, 10, 3}, ids)
}

func TestWordPieceUnknownAndAccents(t *testing.T) {
	tok, err := NewWordPieceTokenizer(testVocab(), 16)
	require.NoError(t, err)

	assert.Equal(t, []int64{2, 9, 1, 3}, tok.Encode("Café zebra"))
}

func TestWordPieceTruncates(t *testing.T) {
	tok, err := NewWordPieceTokenizer(testVocab(), 4)
	require.NoError(t, err)

	ids := tok.Encode(strings.Repeat("program ", 10))

	assert.Equal(t, []int64{2, 7, 7, 3}, ids)
}

func TestWordPieceRequiresSpecialTokens(t *testing.T) {
	_, err := NewWordPieceTokenizer([]string{"[PAD]", "hello"}, 8)

	assert.Error(t, err)
}

func TestRemoteEmbedderRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[3,4]}]}`))
	}))
	defer srv.Close()

	e := NewRemoteEmbedder(ai.NewOpenAICompatibleClient(time.Second), ai.EmbeddingConfig{BaseURL: srv.URL}, 2, 3, time.Millisecond)
	vec, err := e.Embed(context.Background(), "diabetes program")

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.InDelta(t, 0.6, vec[0], 1e-6)
}

func TestRemoteEmbedderDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	e := NewRemoteEmbedder(ai.NewOpenAICompatibleClient(time.Second), ai.EmbeddingConfig{BaseURL: srv.URL}, 2, 3, time.Millisecond)
	_, err := e.Embed(context.Background(), "diabetes program")

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRemoteEmbedderChecksDimensions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"embedding":[1,2,3]}]}`))
	}))
	defer srv.Close()

	e := NewRemoteEmbedder(ai.NewOpenAICompatibleClient(time.Second), ai.EmbeddingConfig{BaseURL: srv.URL}, 384, 0, time.Millisecond)
	_, err := e.Embed(context.Background(), "text")

	assert.ErrorContains(t, err, "3 dimensions")
}
