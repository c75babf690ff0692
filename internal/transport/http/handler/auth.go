package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sro-assistant/internal/app"
	"sro-assistant/internal/transport/http/response"
)

type AuthHandler struct {
	auth *app.AuthService
	log  *zap.Logger
}

func NewAuthHandler(auth *app.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type tokenRequest struct {
	ClientID     string `json:"client_id" binding:"required"`
	ClientSecret string `json:"client_secret" binding:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// IssueToken handles POST /api/v1/auth/token.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, 400, response.CodeBadRequest, "client_id and client_secret are required")
		return
	}

	token, err := h.auth.IssueToken(req.ClientID, req.ClientSecret)
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredential) || errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, 401, response.CodeInvalidCredentials, "invalid client id or secret")
			return
		}
		h.log.Error("token issue failed", zap.String("client_id", req.ClientID), zap.Error(err))
		response.Error(c, 500, response.CodeInternalServer, "internal server error")
		return
	}

	response.OK(c, tokenResponse{Token: token})
}
