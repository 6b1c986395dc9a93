package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"docchat-relay/internal/pkg/requestid"
)

// QuestionAsker sends one question to the chat workflow and returns its raw body.
type QuestionAsker interface {
	Ask(ctx context.Context, question string) ([]byte, error)
}

type ChatService struct {
	asker  QuestionAsker
	logger *slog.Logger
}

type ChatResult struct {
	Answer string `json:"answer"`
}

func NewChatService(asker QuestionAsker, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{asker: asker, logger: logger}
}

// Ask forwards question untouched. A question that is empty after trimming is rejected.
func (s *ChatService) Ask(ctx context.Context, question string) (*ChatResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrQuestionEmpty
	}

	start := time.Now()
	raw, err := s.asker.Ask(ctx, question)
	if err != nil {
		s.logger.Error("chat webhook call failed",
			"error", err,
			"request_id", requestid.FromContext(ctx),
			"elapsed", time.Since(start),
		)
		return nil, err
	}

	answer, err := ExtractAnswer(raw)
	if err != nil {
		s.logger.Error("chat webhook response unusable",
			"error", err,
			"request_id", requestid.FromContext(ctx),
		)
		return nil, err
	}
	if answer == NoAnswerFallback {
		s.logger.Warn("chat webhook returned no output", "request_id", requestid.FromContext(ctx))
	}
	return &ChatResult{Answer: answer}, nil
}
