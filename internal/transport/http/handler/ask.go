package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sro-assistant/internal/app"
	"sro-assistant/internal/transport/http/response"
)

type AskHandler struct {
	answers *app.AnswerService
	log     *zap.Logger
}

func NewAskHandler(answers *app.AnswerService, log *zap.Logger) *AskHandler {
	return &AskHandler{answers: answers, log: log}
}

type askRequest struct {
	UserID   int64  `json:"user_id" binding:"required"`
	Question string `json:"question" binding:"required"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// Ask handles POST /api/v1/ask.
func (h *AskHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, 400, response.CodeBadRequest, "user_id and question are required")
		return
	}

	answer, err := h.answers.AnswerQuestion(c.Request.Context(), req.UserID, req.Question)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, 400, response.CodeBadRequest, "question must not be empty")
			return
		}
		h.log.Error("answer question failed", zap.Int64("user_id", req.UserID), zap.Error(err))
		response.Error(c, 500, response.CodeInternalServer, "internal server error")
		return
	}

	response.OK(c, askResponse{Answer: answer})
}
