package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"docchat-relay/internal/model"
	"docchat-relay/internal/pkg/requestid"
	"docchat-relay/internal/webhook"
)

const uploadEventTimeout = 3 * time.Second

var errUploadBodyNotJSON = errors.New("upload webhook declared JSON but sent an invalid body")

type DocumentUploader interface {
	Upload(ctx context.Context, input webhook.UploadRequest) (*webhook.UploadResponse, error)
}

// UploadEventPublisher announces successful uploads. Optional.
type UploadEventPublisher interface {
	PublishUploadEvent(ctx context.Context, event model.UploadEvent) error
}

type UploadService struct {
	uploader  DocumentUploader
	publisher UploadEventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

type UploadInput struct {
	Filename    string
	ContentType string
	Body        []byte
}

// UploadResult mirrors the upstream body: json.RawMessage when the upstream
// declared JSON, otherwise the body as a plain string.
type UploadResult struct {
	Success  bool `json:"success"`
	Upstream any  `json:"upstream"`
}

func NewUploadService(uploader DocumentUploader, publisher UploadEventPublisher, logger *slog.Logger) *UploadService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadService{
		uploader:  uploader,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *UploadService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if input.Filename == "" && len(input.Body) == 0 {
		return nil, ErrFileMissing
	}

	resp, err := s.uploader.Upload(ctx, webhook.UploadRequest{
		Filename:    input.Filename,
		ContentType: input.ContentType,
		Body:        input.Body,
	})
	if err != nil {
		s.logger.Error("upload webhook call failed",
			"error", err,
			"filename", input.Filename,
			"request_id", requestid.FromContext(ctx),
		)
		return nil, err
	}

	var upstream any
	if resp.IsJSON() {
		if !json.Valid(resp.Body) {
			return nil, errUploadBodyNotJSON
		}
		upstream = json.RawMessage(resp.Body)
	} else {
		upstream = string(resp.Body)
	}

	s.publish(ctx, input, resp.Status)
	return &UploadResult{Success: true, Upstream: upstream}, nil
}

// publish is best effort. The upload already succeeded upstream.
func (s *UploadService) publish(ctx context.Context, input UploadInput, status int) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uploadEventTimeout)
	defer cancel()

	event := model.UploadEvent{
		RequestID:      requestid.FromContext(ctx),
		Filename:       input.Filename,
		ContentType:    input.ContentType,
		Size:           int64(len(input.Body)),
		UpstreamStatus: status,
		UploadedAt:     s.now().UTC(),
	}
	if err := s.publisher.PublishUploadEvent(pubCtx, event); err != nil {
		s.logger.Warn("publish upload event failed", "error", err, "filename", input.Filename)
	}
}
