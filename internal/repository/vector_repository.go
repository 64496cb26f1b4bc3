package repository

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"path2prevention/internal/model"
)

const vectorColumns = `
program_id AS id, organization_name, description, city, state, zip_code,
delivery_mode, language, cost, duration_weeks, enrollment_status,
cdc_recognition_status, mdpp_supplier, contact_phone, contact_email,
website_url, class_schedule`

var vectorUpsertColumns = []string{
	"organization_name", "description", "city", "state", "zip_code",
	"delivery_mode", "language", "cost", "duration_weeks", "enrollment_status",
	"cdc_recognition_status", "mdpp_supplier", "contact_phone", "contact_email",
	"website_url", "class_schedule", "search_text", "embedding", "updated_at",
}

type VectorRepository struct {
	db *gorm.DB
}

func NewVectorRepository(db *gorm.DB) *VectorRepository {
	return &VectorRepository{db: db}
}

// EnsureSchema enables pgvector and creates programs_vector with its ANN and
// full-text indexes. Safe to call repeatedly.
func (r *VectorRepository) EnsureSchema(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("enable pgvector extension failed: %w", err)
	}
	if err := db.AutoMigrate(&model.ProgramVector{}); err != nil {
		return fmt.Errorf("migrate programs_vector failed: %w", err)
	}
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS programs_vector_embedding_idx
		   ON programs_vector USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
		`CREATE INDEX IF NOT EXISTS programs_vector_search_text_idx
		   ON programs_vector USING gin (to_tsvector('english', search_text))`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create programs_vector index failed: %w", err)
		}
	}
	return nil
}

// Upsert inserts or fully replaces the projection row of one program.
func (r *VectorRepository) Upsert(ctx context.Context, row *model.ProgramVector) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "program_id"}},
		DoUpdates: clause.AssignmentColumns(vectorUpsertColumns),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("upsert program vector failed: %w", err)
	}
	return nil
}

// SemanticSearch ranks by cosine similarity and keeps rows above threshold.
func (r *VectorRepository) SemanticSearch(ctx context.Context, query []float32, limit int, threshold float64) ([]model.ProgramRow, error) {
	vec := pgvector.NewVector(query)
	rows := make([]model.ProgramRow, 0)
	err := r.db.WithContext(ctx).Raw(`
SELECT`+vectorColumns+`,
       1 - (embedding <=> ?::vector) AS similarity
FROM programs_vector
WHERE embedding IS NOT NULL
  AND 1 - (embedding <=> ?::vector) > ?
ORDER BY embedding <=> ?::vector
LIMIT ?`, vec, vec, threshold, vec, limit).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("semantic search failed: %w", err)
	}
	return rows, nil
}

// VectorCandidates returns every row whose similarity exceeds threshold, with
// VectorSimilarity set.
func (r *VectorRepository) VectorCandidates(ctx context.Context, query []float32, threshold float64) ([]model.ProgramRow, error) {
	vec := pgvector.NewVector(query)
	rows := make([]model.ProgramRow, 0)
	err := r.db.WithContext(ctx).Raw(`
SELECT`+vectorColumns+`,
       1 - (embedding <=> ?::vector) AS vector_similarity
FROM programs_vector
WHERE embedding IS NOT NULL
  AND 1 - (embedding <=> ?::vector) > ?
ORDER BY embedding <=> ?::vector`, vec, vec, threshold, vec).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("vector candidates failed: %w", err)
	}
	return rows, nil
}

// TextCandidates returns rows matching the english full-text query with
// TextRank set.
func (r *VectorRepository) TextCandidates(ctx context.Context, query string) ([]model.ProgramRow, error) {
	rows := make([]model.ProgramRow, 0)
	err := r.db.WithContext(ctx).Raw(`
SELECT`+vectorColumns+`,
       ts_rank(to_tsvector('english', search_text), plainto_tsquery('english', ?)) AS text_rank
FROM programs_vector
WHERE to_tsvector('english', search_text) @@ plainto_tsquery('english', ?)
ORDER BY text_rank DESC`, query, query).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("text candidates failed: %w", err)
	}
	return rows, nil
}

func (r *VectorRepository) Stats(ctx context.Context) (*model.VectorStats, error) {
	var stats model.VectorStats
	err := r.db.WithContext(ctx).Raw(`
SELECT COUNT(*) AS total_programs,
       COUNT(embedding) AS programs_with_embeddings,
       COUNT(DISTINCT delivery_mode) AS delivery_modes,
       COUNT(DISTINCT state) AS states_covered,
       AVG(cost)::float8 AS avg_cost,
       MIN(created_at) AS oldest_program,
       MAX(updated_at) AS last_updated
FROM programs_vector`).Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("vector stats failed: %w", err)
	}
	return &stats, nil
}
