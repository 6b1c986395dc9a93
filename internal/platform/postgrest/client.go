// Package postgrest reads rows from a Supabase-style PostgREST endpoint.
package postgrest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"docchat-relay/internal/metrics"
	"docchat-relay/internal/model"
)

const (
	restPrefix     = "/rest/v1/"
	defaultTimeout = 15 * time.Second
)

// APIError carries a non-2xx PostgREST reply.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("postgrest returned %d", e.Status)
	}
	if e.Code == "" {
		return fmt.Sprintf("postgrest returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("postgrest returned %d (%s): %s", e.Status, e.Code, e.Message)
}

type Config struct {
	URL     string
	APIKey  string
	Table   string
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	apiKey     string
	table      string
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

func New(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	table := cfg.Table
	if table == "" {
		table = "documents"
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		table:      table,
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListDocuments selects id and metadata from the configured table, highest id first.
func (c *Client) ListDocuments(ctx context.Context) ([]model.DocumentRecord, error) {
	query := url.Values{}
	query.Set("select", "id,metadata")
	query.Set("order", "id.desc")
	// url.Values escapes the comma; PostgREST accepts both forms.
	endpoint := c.baseURL + restPrefix + url.PathEscape(c.table) + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build postgrest request failed: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(metrics.TargetTableStore, 0, err, time.Since(start))
		return nil, fmt.Errorf("postgrest request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.metrics.ObserveUpstream(metrics.TargetTableStore, resp.StatusCode, err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("read postgrest response failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return nil, apiErr
	}

	var docs []model.DocumentRecord
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decode postgrest rows failed: %w", err)
	}
	c.logger.Debug("listed documents", "table", c.table, "count", len(docs), "elapsed", time.Since(start))
	return docs, nil
}

// Ping fetches at most one id, which checks reachability, the key and the table in one call.
func (c *Client) Ping(ctx context.Context) error {
	endpoint := c.baseURL + restPrefix + url.PathEscape(c.table) + "?select=id&limit=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build postgrest ping failed: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("postgrest ping failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode}
	}
	return nil
}
