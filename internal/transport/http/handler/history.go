package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sro-assistant/internal/repository"
	"sro-assistant/internal/transport/http/response"
)

type HistoryHandler struct {
	logs *repository.AnswerLogRepository
	log  *zap.Logger
}

func NewHistoryHandler(logs *repository.AnswerLogRepository, log *zap.Logger) *HistoryHandler {
	return &HistoryHandler{logs: logs, log: log}
}

type historyItem struct {
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	DocumentCount int    `json:"document_count"`
	CreatedAt     string `json:"created_at"`
}

// List handles GET /api/v1/users/:id/history.
func (h *HistoryHandler) List(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, 400, response.CodeBadRequest, "id must be a positive integer")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			response.Error(c, 400, response.CodeBadRequest, "limit must be a positive integer")
			return
		}
	}

	entries, err := h.logs.ListByUserID(id, limit)
	if err != nil {
		h.log.Error("list answer history failed", zap.Int64("user_id", id), zap.Error(err))
		response.Error(c, 500, response.CodeInternalServer, "internal server error")
		return
	}

	items := make([]historyItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, historyItem{
			Question:      e.Question,
			Answer:        e.Answer,
			DocumentCount: e.DocumentCount,
			CreatedAt:     e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	response.OK(c, items)
}
