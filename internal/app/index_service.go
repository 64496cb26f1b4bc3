package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"path2prevention/internal/embedding"
	"path2prevention/internal/model"
	"path2prevention/internal/platform/logger"
	"path2prevention/internal/search"
)

const indexProgressEvery = 10

// VectorWriter is the programs_vector write side.
type VectorWriter interface {
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, row *model.ProgramVector) error
}

type IndexReport struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// IndexService rebuilds programs_vector from the relational tables. Upserts
// are paced so a remote embedding provider is not flooded.
type IndexService struct {
	programs ProgramStore
	vectors  VectorWriter
	embedder embedding.Embedder
	interval time.Duration
	log      *logger.Logger
}

func NewIndexService(programs ProgramStore, vectors VectorWriter, embedder embedding.Embedder, interval time.Duration, log *logger.Logger) *IndexService {
	if log == nil {
		log = logger.Nop()
	}
	return &IndexService{
		programs: programs,
		vectors:  vectors,
		embedder: embedder,
		interval: interval,
		log:      log,
	}
}

// Reindex embeds every program and upserts its vector row. A program that
// fails to embed or store is counted and skipped.
func (s *IndexService) Reindex(ctx context.Context) (*IndexReport, error) {
	rows, err := s.programs.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load programs for indexing failed: %w", err)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if s.interval > 0 {
		limiter = rate.NewLimiter(rate.Every(s.interval), 1)
	}

	report := &IndexReport{Total: len(rows)}
	s.log.Info("program indexing started", "total", report.Total)
	for _, row := range rows {
		if err := limiter.Wait(ctx); err != nil {
			return report, fmt.Errorf("indexing interrupted: %w", err)
		}

		if err := s.indexOne(ctx, row); err != nil {
			report.Failed++
			s.log.Warn("index program failed", "program_id", row.ID, "error", err)
			continue
		}
		report.Processed++
		if report.Processed%indexProgressEvery == 0 {
			s.log.Info("program indexing progress", "processed", report.Processed, "total", report.Total)
		}
	}
	s.log.Info("program indexing finished", "processed", report.Processed, "failed", report.Failed)
	return report, nil
}

func (s *IndexService) indexOne(ctx context.Context, row model.ProgramRow) error {
	text := search.BuildSearchText(row)
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed program failed: %w", err)
	}
	return s.vectors.Upsert(ctx, model.NewProgramVector(row, text, vec))
}
