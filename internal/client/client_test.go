package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello?", body["question"])
		_, _ = io.WriteString(w, `{"answer":"hi there"}`)
	}))
	defer srv.Close()

	answer, err := New(srv.URL+"/", "tok").Ask(context.Background(), "hello?")
	require.NoError(t, err)
	assert.Equal(t, "hi there", answer)
}

func TestAskError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"Webhook returned 500: boom"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Ask(context.Background(), "q")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Webhook returned 500: boom", err.Error())
}

func TestUploadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("some notes"), 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "notes.txt", header.Filename)
		assert.Contains(t, header.Header.Get("Content-Type"), "text/plain")
		assert.Equal(t, "some notes", string(data))
		_, _ = io.WriteString(w, `{"success":true,"upstream":{"chunks":1}}`)
	}))
	defer srv.Close()

	res, err := New(srv.URL, "").UploadFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.JSONEq(t, `{"chunks":1}`, string(res.Upstream))
}

func TestUploadUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"error":"Upstream webhook error (500)","details":"disk full"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Upload(context.Background(), "a.pdf", []byte("x"))
	require.Error(t, err)
	assert.Equal(t, "Upstream webhook error (500): disk full", err.Error())
}

func TestListDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = io.WriteString(w, `{"documents":[{"id":2,"metadata":{"source":"b.pdf"}},{"id":1,"metadata":null}]}`)
	}))
	defer srv.Close()

	docs, err := New(srv.URL, "").ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, int64(2), docs[0].ID)
	assert.JSONEq(t, `{"source":"b.pdf"}`, string(docs[0].Metadata))
}
