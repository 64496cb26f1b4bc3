package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

type AssessmentResult struct {
	ID                      uint           `gorm:"primaryKey" json:"id"`
	SessionID               string         `gorm:"size:255;index" json:"session_id"`
	RiskLevel               string         `gorm:"size:20" json:"risk_level"`
	RecommendedProgramTypes pq.StringArray `gorm:"type:text[]" json:"recommended_program_types"`
	AssessmentData          datatypes.JSON `gorm:"type:jsonb" json:"assessment_data"`
	CreatedAt               time.Time      `json:"created_at"`
}
