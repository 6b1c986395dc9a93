package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat-relay/internal/app"
	"docchat-relay/internal/pkg/requestid"
	"docchat-relay/internal/transport/http/response"
	"docchat-relay/internal/webhook"
)

const (
	UploadUsage = `Document upload endpoint. Use POST with multipart/form-data including a single "file" (.txt, .pdf, .docx).`

	// room for multipart boundaries and part headers on top of the file itself
	multipartOverhead = 1 << 20
)

type UploadHandler struct {
	uploadService *app.UploadService
	maxBytes      int64
	logger        *slog.Logger
}

func NewUploadHandler(uploadService *app.UploadService, maxBytes int64, logger *slog.Logger) *UploadHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadHandler{uploadService: uploadService, maxBytes: maxBytes, logger: logger}
}

func (h *UploadHandler) Usage(c *gin.Context) {
	response.OK(c, gin.H{"message": UploadUsage})
}

func (h *UploadHandler) Upload(c *gin.Context) {
	if h.maxBytes > 0 {
		if c.Request.ContentLength > h.maxBytes+multipartOverhead {
			h.tooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.tooLarge(c)
			return
		}
		response.Error(c, http.StatusBadRequest, "No file provided")
		return
	}
	if h.maxBytes > 0 && fileHeader.Size > h.maxBytes {
		h.tooLarge(c)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "Failed to upload document")
		return
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "Failed to upload document")
		return
	}

	result, err := h.uploadService.Upload(c.Request.Context(), app.UploadInput{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Body:        body,
	})
	if err != nil {
		var upstreamErr *webhook.UpstreamError
		switch {
		case errors.As(err, &upstreamErr):
			response.ErrorWithDetails(c, http.StatusBadGateway,
				fmt.Sprintf("Upstream webhook error (%d)", upstreamErr.Status), upstreamErr.Body)
		case errors.Is(err, app.ErrFileMissing):
			response.Error(c, http.StatusBadRequest, "No file provided")
		default:
			_ = c.Error(err)
			h.logger.Error("upload relay failed", "error", err, "request_id", requestid.FromContext(c.Request.Context()))
			response.Error(c, http.StatusInternalServerError, "Failed to upload document")
		}
		return
	}

	response.OK(c, result)
}

func (h *UploadHandler) tooLarge(c *gin.Context) {
	response.Error(c, http.StatusRequestEntityTooLarge,
		fmt.Sprintf("File exceeds the %d byte upload limit", h.maxBytes))
}
