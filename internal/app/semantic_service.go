package app

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"path2prevention/internal/embedding"
	"path2prevention/internal/model"
	"path2prevention/internal/platform/logger"
	"path2prevention/internal/repository"
	"path2prevention/internal/search"
)

var ErrQueryRequired = errors.New("search query required")

const (
	SearchModeHybrid = "hybrid"
	SearchModeVector = "vector"

	fallbackConfidence = 0.5
)

// VectorStore is the programs_vector read side.
type VectorStore interface {
	Stats(ctx context.Context) (*model.VectorStats, error)
	SemanticSearch(ctx context.Context, query []float32, limit int, threshold float64) ([]model.ProgramRow, error)
	VectorCandidates(ctx context.Context, query []float32, threshold float64) ([]model.ProgramRow, error)
	TextCandidates(ctx context.Context, query string) ([]model.ProgramRow, error)
}

type SemanticConfig struct {
	Mode                  string
	VectorThreshold       float64
	HybridVectorThreshold float64
	HybridWeight          float64
	DefaultLimit          int
	MaxLimit              int
}

type SemanticInput struct {
	Query   string
	History []string
	Limit   int
}

type SemanticResult struct {
	Query    string
	Intent   search.IntentAnalysis
	Results  []model.ProgramRow
	Fallback bool
}

type SemanticService struct {
	vectors  VectorStore
	programs ProgramStore
	embedder embedding.Embedder
	intent   *IntentAnalyzer
	cfg      SemanticConfig
	log      *logger.Logger
}

func NewSemanticService(vectors VectorStore, programs ProgramStore, embedder embedding.Embedder, intent *IntentAnalyzer, cfg SemanticConfig, log *logger.Logger) *SemanticService {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 5
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 50
	}
	if cfg.Mode == "" {
		cfg.Mode = SearchModeHybrid
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SemanticService{
		vectors:  vectors,
		programs: programs,
		embedder: embedder,
		intent:   intent,
		cfg:      cfg,
		log:      log,
	}
}

// Search ranks programs against a free-text query. When the vector store is
// empty or unreachable it returns the first programs from the relational
// store (or the static catalogue) flagged as a fallback.
func (s *SemanticService) Search(ctx context.Context, input SemanticInput) (*SemanticResult, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	limit := s.clampLimit(input.Limit)

	stats, err := s.vectors.Stats(ctx)
	if err != nil || stats == nil || stats.ProgramsWithEmbeddings == 0 {
		if err != nil {
			s.log.Warn("vector store unavailable, serving fallback", "cause", repository.Cause(err), "error", err)
		}
		return &SemanticResult{
			Query:    query,
			Intent:   search.IntentAnalysis{Intent: search.IntentSearchPrograms, QuestionsToAsk: []string{}, Confidence: fallbackConfidence},
			Results:  head(s.allPrograms(ctx), limit),
			Fallback: true,
		}, nil
	}

	var (
		intent  search.IntentAnalysis
		results []model.ProgramRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		intent = s.intent.Analyze(gctx, query, input.History)
		return nil
	})
	g.Go(func() error {
		results = s.rank(gctx, query, limit)
		return nil
	})
	_ = g.Wait()

	intent.QuestionsToAsk = search.FollowUpQuestions(results, intent.Preferences)
	return &SemanticResult{Query: query, Intent: intent, Results: results}, nil
}

// rank never fails: an embedding failure degrades to keyword overlap, and a
// failed hybrid query degrades to vector-only ranking.
func (s *SemanticService) rank(ctx context.Context, query string, limit int) []model.ProgramRow {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.log.Warn("query embedding failed, using text overlap", "error", err)
		return search.TextOverlapSearch(query, s.allPrograms(ctx), limit)
	}

	if s.cfg.Mode == SearchModeHybrid {
		rows, err := s.hybrid(ctx, query, vec, limit)
		if err == nil {
			return rows
		}
		s.log.Warn("hybrid search failed, using vector search", "cause", repository.Cause(err), "error", err)
	}

	rows, err := s.vectors.SemanticSearch(ctx, vec, limit, s.cfg.VectorThreshold)
	if err != nil {
		s.log.Warn("vector search failed, using text overlap", "cause", repository.Cause(err), "error", err)
		return search.TextOverlapSearch(query, s.allPrograms(ctx), limit)
	}
	return rows
}

func (s *SemanticService) hybrid(ctx context.Context, query string, vec []float32, limit int) ([]model.ProgramRow, error) {
	vectorRows, err := s.vectors.VectorCandidates(ctx, vec, s.cfg.HybridVectorThreshold)
	if err != nil {
		return nil, err
	}
	textRows, err := s.vectors.TextCandidates(ctx, query)
	if err != nil {
		return nil, err
	}
	return search.MergeHybrid(vectorRows, textRows, s.cfg.HybridWeight, limit), nil
}

func (s *SemanticService) allPrograms(ctx context.Context) []model.ProgramRow {
	rows, err := s.programs.ListAll(ctx)
	if err != nil {
		s.log.Warn("list programs failed, using static catalogue", "cause", repository.Cause(err), "error", err)
		return search.FallbackPrograms()
	}
	return rows
}

// Stats passes through the vector-store summary.
func (s *SemanticService) Stats(ctx context.Context) (*model.VectorStats, error) {
	return s.vectors.Stats(ctx)
}

func (s *SemanticService) clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return s.cfg.DefaultLimit
	case limit > s.cfg.MaxLimit:
		return s.cfg.MaxLimit
	default:
		return limit
	}
}

func head(rows []model.ProgramRow, n int) []model.ProgramRow {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
