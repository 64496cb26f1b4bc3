package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"path2prevention/internal/model"
)

type AssessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

func (r *AssessmentRepository) Create(ctx context.Context, result *model.AssessmentResult) error {
	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		return fmt.Errorf("create assessment result failed: %w", err)
	}
	return nil
}
