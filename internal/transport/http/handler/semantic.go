package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"path2prevention/internal/app"
	"path2prevention/internal/model"
	"path2prevention/internal/transport/http/response"
)

type SemanticSearchRequest struct {
	Query               string   `json:"query"`
	ConversationHistory []string `json:"conversation_history"`
	Limit               int      `json:"limit"`
}

func (h *ProgramHandler) SemanticSearch(c *gin.Context) {
	var req SemanticSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Search query is required")
		return
	}

	result, err := h.semantic.Search(c.Request.Context(), app.SemanticInput{
		Query:   req.Query,
		History: req.ConversationHistory,
		Limit:   req.Limit,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrQueryRequired):
			response.Error(c, http.StatusBadRequest, "Search query is required")
		default:
			response.Failure(c, http.StatusInternalServerError, "Error performing semantic search", err)
		}
		return
	}

	results := result.Results
	if results == nil {
		results = []model.ProgramRow{}
	}
	body := gin.H{
		"success": true,
		"query":   result.Query,
		"results": results,
		"count":   len(results),
	}
	if result.Fallback {
		body["intent_analysis"] = gin.H{"intent": result.Intent.Intent, "confidence": result.Intent.Confidence}
		body["fallback"] = true
	} else {
		body["intent_analysis"] = result.Intent
		body["pgvector"] = true
	}
	c.JSON(http.StatusOK, body)
}
