package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sro-assistant/internal/app"
	"sro-assistant/internal/transport/http/response"
)

type UserHandler struct {
	users *app.UserService
	log   *zap.Logger
}

func NewUserHandler(users *app.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

type verifyINNRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	INN    string `json:"inn" binding:"required"`
}

type userProfileResponse struct {
	ID       int64  `json:"id"`
	INN      string `json:"inn,omitempty"`
	IsMember bool   `json:"is_member"`
	Role     string `json:"role"`
}

type verifyINNResponse struct {
	User       userProfileResponse `json:"user"`
	MemberName string              `json:"member_name,omitempty"`
	Status     string              `json:"status,omitempty"`
}

// VerifyINN handles POST /api/v1/users/verify-inn.
func (h *UserHandler) VerifyINN(c *gin.Context) {
	var req verifyINNRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, 400, response.CodeBadRequest, "user_id and inn are required")
		return
	}

	user, membership, err := h.users.VerifyINN(c.Request.Context(), req.UserID, req.INN)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidINN), errors.Is(err, app.ErrInvalidInput):
			response.Error(c, 400, response.CodeInvalidINN, "inn must be 10 or 12 digits")
		case errors.Is(err, app.ErrINNNotFound):
			response.Error(c, 404, response.CodeINNNotFound, "inn not found in registry")
		default:
			h.log.Error("verify inn failed", zap.Int64("user_id", req.UserID), zap.Error(err))
			response.Error(c, 500, response.CodeInternalServer, "internal server error")
		}
		return
	}

	resp := verifyINNResponse{
		User: userProfileResponse{
			ID:       user.ID,
			INN:      user.INN,
			IsMember: user.IsMember,
			Role:     user.Role,
		},
	}
	if membership != nil {
		resp.MemberName = membership.Name
		resp.Status = membership.Status
	}
	response.OK(c, resp)
}

// GetByID handles GET /api/v1/users/:id.
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, 400, response.CodeBadRequest, "id must be a positive integer")
		return
	}

	user, err := h.users.GetProfile(id)
	if err != nil {
		h.log.Error("get user profile failed", zap.Int64("user_id", id), zap.Error(err))
		response.Error(c, 500, response.CodeInternalServer, "internal server error")
		return
	}
	if user == nil {
		response.Error(c, 404, response.CodeUserNotFound, "user not found")
		return
	}

	response.OK(c, userProfileResponse{
		ID:       user.ID,
		INN:      user.INN,
		IsMember: user.IsMember,
		Role:     user.Role,
	})
}
