package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat-relay/internal/app"
	"docchat-relay/internal/pkg/requestid"
	"docchat-relay/internal/transport/http/response"
)

type DocumentHandler struct {
	documentService *app.DocumentService
	logger          *slog.Logger
}

func NewDocumentHandler(documentService *app.DocumentService, logger *slog.Logger) *DocumentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentHandler{documentService: documentService, logger: logger}
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documentService.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list documents failed",
			"error", err,
			"request_id", requestid.FromContext(c.Request.Context()),
		)
		response.Error(c, http.StatusInternalServerError, "Failed to fetch documents")
		return
	}

	response.OK(c, gin.H{"documents": docs})
}
