// Package client talks to a running docchat relay over its HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docchat-relay/internal/model"
	"docchat-relay/internal/pkg/requestid"
)

const defaultEndpoint = "http://localhost:8080"

// APIError is a non-2xx reply from the relay.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("relay returned %d", e.Status)
}

type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// New creates a client. An empty endpoint falls back to DOCCHAT_SERVER_URL and
// then localhost:8080; DOCCHAT_CLIENT_TIMEOUT overrides the 3 minute timeout.
func New(endpoint, token string) *Client {
	if endpoint == "" {
		endpoint = os.Getenv("DOCCHAT_SERVER_URL")
	}
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	timeout := 3 * time.Minute
	if t := os.Getenv("DOCCHAT_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	payload, err := json.Marshal(askRequest{Question: question})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	var out askResponse
	if err := c.do(ctx, http.MethodPost, "/chat", "application/json", bytes.NewReader(payload), &out); err != nil {
		return "", err
	}
	return out.Answer, nil
}

// UploadResult keeps the upstream payload raw; it may be JSON of any shape or a string.
type UploadResult struct {
	Success  bool            `json:"success"`
	Upstream json.RawMessage `json:"upstream"`
}

// UploadFile reads path and uploads it under its base name.
func (c *Client) UploadFile(ctx context.Context, path string) (*UploadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return c.Upload(ctx, filepath.Base(path), data)
}

func (c *Client) Upload(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		header.Set("Content-Type", ct)
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	var out UploadResult
	if err := c.do(ctx, http.MethodPost, "/upload", mw.FormDataContentType(), &buf, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type documentsResponse struct {
	Documents []model.DocumentRecord `json:"documents"`
}

func (c *Client) ListDocuments(ctx context.Context) ([]model.DocumentRecord, error) {
	var out documentsResponse
	if err := c.do(ctx, http.MethodGet, "/documents", "", nil, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestid.Header, uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if json.Unmarshal(raw, &errBody) == nil {
			apiErr.Message = errBody.Error
			apiErr.Details = errBody.Details
		}
		return apiErr
	}

	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
