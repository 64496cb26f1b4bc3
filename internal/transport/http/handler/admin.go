package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"path2prevention/internal/app"
	"path2prevention/internal/transport/http/response"
)

type AdminHandler struct {
	admin *app.AdminService
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func NewAdminHandler(admin *app.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.admin.Login(app.LoginInput{Username: req.Username, Password: req.Password})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, app.ErrInvalidCredential):
			response.Error(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, app.ErrAdminDisabled):
			response.Error(c, http.StatusForbidden, err.Error())
		default:
			response.Failure(c, http.StatusInternalServerError, "login failed", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": result.Token, "expires_at": result.ExpiresAt})
}
