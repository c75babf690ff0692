package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sro-assistant/internal/index"
	"sro-assistant/internal/transport/http/response"
)

type SearchHandler struct {
	idx  *index.Index
	topK int
	log  *zap.Logger
}

func NewSearchHandler(idx *index.Index, topK int, log *zap.Logger) *SearchHandler {
	if topK <= 0 {
		topK = 5
	}
	return &SearchHandler{idx: idx, topK: topK, log: log}
}

type searchResultItem struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type searchResponse struct {
	Query   string             `json:"query"`
	Results []searchResultItem `json:"results"`
}

// Search handles GET /api/v1/search.
func (h *SearchHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		response.Error(c, 400, response.CodeBadRequest, "query parameter q is required")
		return
	}

	topK := h.topK
	if raw := c.Query("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.Error(c, 400, response.CodeBadRequest, "top_k must be a positive integer")
			return
		}
		topK = n
	}

	results, err := h.idx.Search(c.Request.Context(), query, topK)
	if err != nil {
		h.log.Error("document search failed", zap.String("query", query), zap.Error(err))
		response.Error(c, 500, response.CodeInternalServer, "internal server error")
		return
	}

	items := make([]searchResultItem, 0, len(results))
	for _, r := range results {
		items = append(items, searchResultItem{Name: r.Name, Score: r.Score})
	}
	response.OK(c, searchResponse{Query: query, Results: items})
}
