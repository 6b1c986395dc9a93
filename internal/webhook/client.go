package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"docchat-relay/internal/metrics"
	"docchat-relay/internal/pkg/requestid"
)

const (
	FilenameHeader     = "X-Filename"
	defaultContentType = "application/octet-stream"
)

// UpstreamError is returned when a webhook answers with a non-2xx status.
type UpstreamError struct {
	Target string
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Webhook returned %d: %s", e.Status, e.Body)
}

type Config struct {
	ChatURL   string
	UploadURL string
	Timeout   time.Duration
}

// Client talks to the two workflow webhooks. It is safe for concurrent use.
type Client struct {
	chatURL    string
	uploadURL  string
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	c := &Client{
		chatURL:    cfg.ChatURL,
		uploadURL:  cfg.UploadURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ask sends the question as a query parameter and returns the raw response body.
func (c *Client) Ask(ctx context.Context, question string) ([]byte, error) {
	target, err := chatRequestURL(c.chatURL, question)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build chat webhook request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	setRequestID(ctx, req)

	c.logger.Debug("sending question to chat webhook", "url", target, "request_id", requestid.FromContext(ctx))
	resp, raw, err := c.do(req, metrics.TargetChatWebhook)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("chat webhook responded", "status", resp.StatusCode, "bytes", len(raw))
	return raw, nil
}

type UploadRequest struct {
	Filename    string
	ContentType string
	Body        []byte
}

type UploadResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// IsJSON reports whether the upstream declared a JSON body.
func (r *UploadResponse) IsJSON() bool {
	return strings.Contains(strings.ToLower(r.ContentType), "application/json")
}

// Upload posts the file bytes unmodified as the request body.
func (c *Client) Upload(ctx context.Context, input UploadRequest) (*UploadResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, bytes.NewReader(input.Body))
	if err != nil {
		return nil, fmt.Errorf("build upload webhook request failed: %w", err)
	}
	contentType := input.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(FilenameHeader, EncodeURIComponent(input.Filename))
	setRequestID(ctx, req)

	c.logger.Debug("forwarding upload to webhook",
		"filename", input.Filename,
		"content_type", contentType,
		"size", len(input.Body),
		"request_id", requestid.FromContext(ctx),
	)
	resp, raw, err := c.do(req, metrics.TargetUploadWebhook)
	if err != nil {
		return nil, err
	}
	return &UploadResponse{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        raw,
	}, nil
}

// do executes req and reads the full body. Non-2xx statuses become *UpstreamError.
func (c *Client) do(req *http.Request, target string) (*http.Response, []byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(target, 0, err, time.Since(start))
		return nil, nil, fmt.Errorf("%s request failed: %w", target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.metrics.ObserveUpstream(target, resp.StatusCode, err, time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// best effort: the status alone is still reported if the body was unreadable
		return nil, nil, &UpstreamError{Target: target, Status: resp.StatusCode, Body: string(raw)}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read %s response failed: %w", target, err)
	}
	return resp, raw, nil
}

func chatRequestURL(base, question string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse chat webhook url failed: %w", err)
	}
	param := "question=" + EncodeURIComponent(question)
	if parsed.RawQuery == "" {
		parsed.RawQuery = param
	} else {
		parsed.RawQuery += "&" + param
	}
	return parsed.String(), nil
}

func setRequestID(ctx context.Context, req *http.Request) {
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}
}
