package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"path2prevention/internal/app"
	"path2prevention/internal/model"
	"path2prevention/internal/transport/http/response"
)

type AssessmentHandler struct {
	assessments *app.AssessmentService
}

type SubmitAssessmentRequest struct {
	SessionID               string          `json:"session_id"`
	RiskLevel               string          `json:"risk_level" binding:"required"`
	RecommendedProgramTypes []string        `json:"recommended_program_types"`
	AssessmentData          json.RawMessage `json:"assessment_data"`
	State                   string          `json:"state"`
}

func NewAssessmentHandler(assessments *app.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

func (h *AssessmentHandler) Submit(c *gin.Context) {
	var req SubmitAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "risk_level is required")
		return
	}

	out, err := h.assessments.Submit(c.Request.Context(), app.AssessmentInput{
		SessionID:               req.SessionID,
		RiskLevel:               req.RiskLevel,
		RecommendedProgramTypes: req.RecommendedProgramTypes,
		AssessmentData:          req.AssessmentData,
		State:                   req.State,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidRiskLevel), errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Failure(c, http.StatusInternalServerError, "Failed to store assessment", err)
		}
		return
	}

	recommended := []model.ProgramRow{}
	fallback := false
	if out.Recommended != nil {
		if out.Recommended.Programs != nil {
			recommended = out.Recommended.Programs
		}
		fallback = out.Recommended.Fallback
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":              true,
		"assessment":           out.Result,
		"queued":               out.Queued,
		"recommended_programs": recommended,
		"count":                len(recommended),
		"fallback":             fallback,
	})
}
