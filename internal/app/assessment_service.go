package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"

	"path2prevention/internal/model"
	"path2prevention/internal/platform/logger"
)

var ErrInvalidRiskLevel = errors.New("risk level must be low, medium or high")

type AssessmentWriter interface {
	Create(ctx context.Context, result *model.AssessmentResult) error
}

type AssessmentPublisher interface {
	Publish(ctx context.Context, result model.AssessmentResult) error
}

type AssessmentInput struct {
	SessionID               string
	RiskLevel               string
	RecommendedProgramTypes []string
	AssessmentData          json.RawMessage
	State                   string
}

type AssessmentOutcome struct {
	Result      model.AssessmentResult
	Queued      bool
	Recommended *ProgramList
}

// AssessmentService stores risk assessment results. With a publisher the
// write is handed to the persist worker, otherwise it goes straight to the
// database.
type AssessmentService struct {
	writer    AssessmentWriter
	publisher AssessmentPublisher
	programs  *ProgramService
	log       *logger.Logger
}

func NewAssessmentService(writer AssessmentWriter, publisher AssessmentPublisher, programs *ProgramService, log *logger.Logger) *AssessmentService {
	if log == nil {
		log = logger.Nop()
	}
	return &AssessmentService{writer: writer, publisher: publisher, programs: programs, log: log}
}

func (s *AssessmentService) Submit(ctx context.Context, input AssessmentInput) (*AssessmentOutcome, error) {
	risk := strings.ToLower(strings.TrimSpace(input.RiskLevel))
	switch risk {
	case model.RiskLow, model.RiskMedium, model.RiskHigh:
	default:
		return nil, ErrInvalidRiskLevel
	}
	if len(input.AssessmentData) > 0 && !json.Valid(input.AssessmentData) {
		return nil, ErrInvalidInput
	}

	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	types := make(pq.StringArray, 0, len(input.RecommendedProgramTypes))
	for _, t := range input.RecommendedProgramTypes {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	result := model.AssessmentResult{
		SessionID:               sessionID,
		RiskLevel:               risk,
		RecommendedProgramTypes: types,
		AssessmentData:          datatypes.JSON(input.AssessmentData),
		CreatedAt:               time.Now(),
	}

	outcome := &AssessmentOutcome{}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, result); err != nil {
			return nil, fmt.Errorf("enqueue assessment failed: %w", err)
		}
		outcome.Queued = true
	} else {
		if err := s.writer.Create(ctx, &result); err != nil {
			return nil, err
		}
	}
	outcome.Result = result
	s.log.Info("assessment stored", "session_id", sessionID, "risk_level", risk, "queued", outcome.Queued)

	if s.programs != nil {
		recommended, err := s.programs.Recommended(ctx, types, input.State)
		if err != nil {
			return nil, err
		}
		outcome.Recommended = recommended
	}
	return outcome, nil
}
