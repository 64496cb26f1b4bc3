package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"path2prevention/internal/app"
	"path2prevention/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type SendMessageRequest struct {
	SessionID   string `json:"session_id"`
	Message     string `json:"message" binding:"required"`
	QuickOption bool   `json:"quick_option"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	session, err := h.chatService.StartSession(c.Request.Context())
	if err != nil {
		response.Failure(c, http.StatusInternalServerError, "create session failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "session": session})
}

func (h *ChatHandler) GetSession(c *gin.Context) {
	session, err := h.chatService.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeChatError(c, err, "get session failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": session})
}

func (h *ChatHandler) DeleteSession(c *gin.Context) {
	if err := h.chatService.EndSession(c.Request.Context(), c.Param("id")); err != nil {
		writeChatError(c, err, "delete session failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "message is required")
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), app.SendMessageInput{
		SessionID:   req.SessionID,
		Content:     req.Message,
		QuickOption: req.QuickOption,
	})
	if err != nil {
		writeChatError(c, err, "send message failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": result.SessionID,
		"reply":      result.Reply,
	})
}

func writeChatError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrMessageEmpty):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	default:
		response.Failure(c, http.StatusInternalServerError, message, err)
	}
}
