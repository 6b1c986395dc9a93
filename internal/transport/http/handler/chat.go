package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat-relay/internal/app"
	"docchat-relay/internal/pkg/requestid"
	"docchat-relay/internal/transport/http/response"
	"docchat-relay/internal/webhook"
)

type ChatHandler struct {
	chatService *app.ChatService
	logger      *slog.Logger
}

type ChatRequest struct {
	Question string `json:"question"`
}

func NewChatHandler(chatService *app.ChatService, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{chatService: chatService, logger: logger}
}

func (h *ChatHandler) Ask(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.chatService.Ask(c.Request.Context(), req.Question)
	if err != nil {
		var upstreamErr *webhook.UpstreamError
		switch {
		case errors.Is(err, app.ErrQuestionEmpty):
			response.Error(c, http.StatusBadRequest, "No question provided")
		case errors.As(err, &upstreamErr):
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, upstreamErr.Error())
		default:
			_ = c.Error(err)
			h.logger.Error("chat relay failed", "error", err, "request_id", requestid.FromContext(c.Request.Context()))
			response.Error(c, http.StatusInternalServerError, "Failed to get answer")
		}
		return
	}

	response.OK(c, result)
}
