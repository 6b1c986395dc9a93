package cli

import (
	"context"
	"log/slog"
	"strings"

	"docchat-relay/internal/model"
)

// ErrorReply stands in for the assistant when a question could not be answered.
const ErrorReply = "Sorry, I encountered an error. Please try again."

type QuestionAsker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Session is one interactive conversation. It lives only in memory and the
// relay never sees the history: every question is sent on its own.
type Session struct {
	asker    QuestionAsker
	logger   *slog.Logger
	messages []model.Message
}

func NewSession(asker QuestionAsker, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{asker: asker, logger: logger}
}

// Send records the question and the reply. Blank input is ignored and reports false.
func (s *Session) Send(ctx context.Context, question string) (model.Message, bool) {
	if strings.TrimSpace(question) == "" {
		return model.Message{}, false
	}
	s.messages = append(s.messages, model.Message{Role: model.RoleUser, Content: question})

	reply := model.Message{Role: model.RoleAssistant}
	answer, err := s.asker.Ask(ctx, question)
	if err != nil {
		s.logger.Warn("ask failed", "error", err)
		reply.Content = ErrorReply
	} else {
		reply.Content = answer
	}
	s.messages = append(s.messages, reply)
	return reply, true
}

func (s *Session) Messages() []model.Message {
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) Reset() {
	s.messages = nil
}
