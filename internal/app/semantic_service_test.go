package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"path2prevention/internal/ai"
	"path2prevention/internal/model"
	"path2prevention/internal/search"
)

func semanticConfig() SemanticConfig {
	return SemanticConfig{
		Mode:                  SearchModeHybrid,
		VectorThreshold:       0.3,
		HybridVectorThreshold: 0.2,
		HybridWeight:          0.7,
		DefaultLimit:          5,
		MaxLimit:              20,
	}
}

func indexedStats() *model.VectorStats {
	return &model.VectorStats{TotalPrograms: 3, ProgramsWithEmbeddings: 3}
}

func TestSemanticSearchRequiresQuery(t *testing.T) {
	svc := NewSemanticService(&fakeVectorStore{}, &fakeProgramStore{}, &fakeEmbedder{}, nil, semanticConfig(), nil)
	_, err := svc.Search(context.Background(), SemanticInput{Query: "  "})
	require.ErrorIs(t, err, ErrQueryRequired)
}

func TestSemanticSearchFallsBackWhenNothingIndexed(t *testing.T) {
	programs := &fakeProgramStore{rows: []model.ProgramRow{
		row(1, "A", model.DeliveryHybrid, "GA"),
		row(2, "B", model.DeliveryHybrid, "GA"),
		row(3, "C", model.DeliveryHybrid, "GA"),
	}}
	vectors := &fakeVectorStore{stats: &model.VectorStats{}}
	svc := NewSemanticService(vectors, programs, &fakeEmbedder{}, nil, semanticConfig(), nil)

	got, err := svc.Search(context.Background(), SemanticInput{Query: "evening classes", Limit: 2})
	require.NoError(t, err)
	assert.True(t, got.Fallback)
	assert.Equal(t, []string{"A", "B"}, names(got.Results))
	assert.Equal(t, search.IntentSearchPrograms, got.Intent.Intent)
	assert.Equal(t, 0.5, got.Intent.Confidence)
}

func TestSemanticSearchFallsBackToStaticCatalogue(t *testing.T) {
	vectors := &fakeVectorStore{statsErr: errDBDown}
	svc := NewSemanticService(vectors, &fakeProgramStore{err: errDBDown}, &fakeEmbedder{}, nil, semanticConfig(), nil)

	got, err := svc.Search(context.Background(), SemanticInput{Query: "online"})
	require.NoError(t, err)
	assert.True(t, got.Fallback)
	assert.Len(t, got.Results, 4)
}

func TestSemanticSearchHybridMerge(t *testing.T) {
	vectors := &fakeVectorStore{
		stats: indexedStats(),
		vectorRows: []model.ProgramRow{
			func() model.ProgramRow { r := row(1, "Vector Only", model.DeliveryInPerson, "GA"); r.VectorSimilarity = fptr(0.9); return r }(),
		},
		textRows: []model.ProgramRow{
			func() model.ProgramRow { r := row(2, "Text Only", model.DeliveryHybrid, "FL"); r.TextRank = fptr(0.5); return r }(),
		},
	}
	svc := NewSemanticService(vectors, &fakeProgramStore{}, &fakeEmbedder{vec: []float32{1, 0}}, nil, semanticConfig(), nil)

	got, err := svc.Search(context.Background(), SemanticInput{Query: "diabetes class"})
	require.NoError(t, err)
	assert.False(t, got.Fallback)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "Vector Only", got.Results[0].OrganizationName)
	assert.InDelta(t, 0.63, *got.Results[0].Similarity, 1e-9)
	assert.InDelta(t, 0.15, *got.Results[1].Similarity, 1e-9)
	assert.Zero(t, vectors.semanticCalls)
	assert.NotEmpty(t, got.Intent.QuestionsToAsk)
}

func TestSemanticSearchHybridFailureUsesVectorSearch(t *testing.T) {
	vectors := &fakeVectorStore{
		stats:    indexedStats(),
		textErr:  errors.New("tsvector failed"),
		semantic: []model.ProgramRow{row(5, "Vector Hit", model.DeliveryHybrid, "GA")},
	}
	svc := NewSemanticService(vectors, &fakeProgramStore{}, &fakeEmbedder{vec: []float32{1, 0}}, nil, semanticConfig(), nil)

	got, err := svc.Search(context.Background(), SemanticInput{Query: "anything"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Vector Hit"}, names(got.Results))
	assert.Equal(t, 1, vectors.semanticCalls)
	assert.Equal(t, 0.3, vectors.lastThreshold)
}

func TestSemanticSearchIdenticalEmbeddingRanksFirst(t *testing.T) {
	query := []float32{0.6, 0.8}
	vectors := &fakeVectorStore{
		stats: indexedStats(),
		indexed: []indexedProgram{
			{row: row(1, "East Side", model.DeliveryInPerson, "GA"), vec: []float32{1, 0}},
			{row: row(2, "Exact Match", model.DeliveryVirtualLive, "GA"), vec: []float32{0.6, 0.8}},
			{row: row(3, "North Side", model.DeliveryHybrid, "GA"), vec: []float32{0, 1}},
			{row: row(4, "Opposite", model.DeliveryHybrid, "GA"), vec: []float32{-1, 0}},
		},
	}
	cfg := semanticConfig()
	cfg.Mode = SearchModeVector
	svc := NewSemanticService(vectors, &fakeProgramStore{}, &fakeEmbedder{vec: query}, nil, cfg, nil)

	got, err := svc.Search(context.Background(), SemanticInput{Query: "online classes"})
	require.NoError(t, err)
	assert.False(t, got.Fallback)
	assert.Equal(t, []string{"Exact Match", "North Side", "East Side"}, names(got.Results))
	require.NotNil(t, got.Results[0].Similarity)
	assert.InDelta(t, 1.0, *got.Results[0].Similarity, 1e-6)
}

func TestSemanticSearchEmbeddingFailureUsesTextOverlap(t *testing.T) {
	programs := &fakeProgramStore{rows: []model.ProgramRow{
		row(1, "Downtown Clinic", model.DeliveryInPerson, "GA"),
		row(2, "Online Coaching", model.DeliveryVirtualLive, "GA"),
	}}
	vectors := &fakeVectorStore{stats: indexedStats()}
	svc := NewSemanticService(vectors, programs, &fakeEmbedder{err: errors.New("model missing")}, nil, semanticConfig(), nil)

	got, err := svc.Search(context.Background(), SemanticInput{Query: "online coaching"})
	require.NoError(t, err)
	require.NotEmpty(t, got.Results)
	assert.Equal(t, "Online Coaching", got.Results[0].OrganizationName)
	assert.Zero(t, vectors.semanticCalls)
}

func TestSemanticSearchLimitClamp(t *testing.T) {
	rows := make([]model.ProgramRow, 0, 30)
	for i := 1; i <= 30; i++ {
		rows = append(rows, row(uint(i), "P", model.DeliveryHybrid, "GA"))
	}
	vectors := &fakeVectorStore{stats: &model.VectorStats{}}
	svc := NewSemanticService(vectors, &fakeProgramStore{rows: rows}, &fakeEmbedder{}, nil, semanticConfig(), nil)

	got, err := svc.Search(context.Background(), SemanticInput{Query: "x", Limit: 100})
	require.NoError(t, err)
	assert.Len(t, got.Results, 20)

	got, err = svc.Search(context.Background(), SemanticInput{Query: "x"})
	require.NoError(t, err)
	assert.Len(t, got.Results, 5)
}

func TestIntentAnalyzerParsesLLMReply(t *testing.T) {
	llm := &fakeCompleter{reply: "```json\n{\"intent\":\"compare_options\",\"preferences\":{\"delivery_mode\":\"virtual\",\"cost_sensitive\":true},\"questions_to_ask\":[\"Budget?\"],\"confidence\":1.4}\n```"}
	analyzer := NewIntentAnalyzer(llm, ai.ChatConfig{}, ai.CompletionOptions{MaxTokens: 300, Temperature: 0.3}, nil)

	got := analyzer.Analyze(context.Background(), "cheap online class", []string{"one", "two", "three", "four"})
	assert.Equal(t, "compare_options", got.Intent)
	assert.Equal(t, "virtual", got.Preferences.DeliveryMode)
	assert.True(t, got.Preferences.CostSensitive)
	assert.Equal(t, 1.0, got.Confidence)

	require.Len(t, llm.messages, 2)
	user := llm.messages[1].Content
	assert.True(t, strings.HasPrefix(user, "Previous conversation: two three four\n\n"))
	assert.Contains(t, user, `Current query: "cheap online class"`)
	assert.Equal(t, 300, llm.opts.MaxTokens)
}

func TestIntentAnalyzerFallsBackToKeywords(t *testing.T) {
	for name, llm := range map[string]*fakeCompleter{
		"error":     {err: ai.ErrNotConfigured},
		"not json":  {reply: "I think they want online classes."},
		"no intent": {reply: `{"confidence": 0.9}`},
	} {
		t.Run(name, func(t *testing.T) {
			analyzer := NewIntentAnalyzer(llm, ai.ChatConfig{}, ai.CompletionOptions{}, nil)
			got := analyzer.Analyze(context.Background(), "online and affordable", nil)
			assert.Equal(t, search.AnalyzeKeywords("online and affordable"), got)
		})
	}

	var nilAnalyzer *IntentAnalyzer
	assert.Equal(t, search.IntentSearchPrograms, nilAnalyzer.Analyze(context.Background(), "x", nil).Intent)
}
