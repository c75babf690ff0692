package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sro-assistant/internal/index"
	"sro-assistant/internal/transport/http/response"
)

type AdminHandler struct {
	idx *index.Index
	log *zap.Logger
}

func NewAdminHandler(idx *index.Index, log *zap.Logger) *AdminHandler {
	return &AdminHandler{idx: idx, log: log}
}

type reindexResponse struct {
	IndexedDocuments int `json:"indexed_documents"`
}

// Reindex handles POST /api/v1/admin/reindex. It rebuilds the document
// index from the configured directories; searches keep serving the old
// snapshot until the rebuild completes.
func (h *AdminHandler) Reindex(c *gin.Context) {
	if err := h.idx.Build(c.Request.Context()); err != nil {
		h.log.Error("index rebuild failed", zap.Error(err))
		response.Error(c, 500, response.CodeInternalServer, "index rebuild failed")
		return
	}
	h.log.Info("index rebuilt", zap.Int("documents", h.idx.Size()))
	response.OK(c, reindexResponse{IndexedDocuments: h.idx.Size()})
}
