package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat-relay/internal/model"
	"docchat-relay/internal/pkg/requestid"
	"docchat-relay/internal/webhook"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAsker struct {
	calls     int
	questions []string
	body      []byte
	err       error
}

func (f *fakeAsker) Ask(_ context.Context, question string) ([]byte, error) {
	f.calls++
	f.questions = append(f.questions, question)
	return f.body, f.err
}

func TestChatServiceRejectsBlankQuestion(t *testing.T) {
	asker := &fakeAsker{}
	svc := NewChatService(asker, discardLogger())

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := svc.Ask(context.Background(), q)
		assert.ErrorIs(t, err, ErrQuestionEmpty)
	}
	assert.Zero(t, asker.calls)
}

func TestChatServiceForwardsQuestionUntrimmed(t *testing.T) {
	asker := &fakeAsker{body: []byte(`[{"output":"42"}]`)}
	svc := NewChatService(asker, discardLogger())

	res, err := svc.Ask(context.Background(), "  what is 6x7?  ")
	require.NoError(t, err)
	assert.Equal(t, "42", res.Answer)
	assert.Equal(t, []string{"  what is 6x7?  "}, asker.questions)
}

func TestChatServiceFallbackAndErrors(t *testing.T) {
	svc := NewChatService(&fakeAsker{body: []byte(`{}`)}, discardLogger())
	res, err := svc.Ask(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, NoAnswerFallback, res.Answer)

	upstream := &webhook.UpstreamError{Status: 500, Body: "boom"}
	svc = NewChatService(&fakeAsker{err: upstream}, discardLogger())
	_, err = svc.Ask(context.Background(), "hi")
	assert.ErrorIs(t, err, upstream)

	svc = NewChatService(&fakeAsker{body: []byte("not json")}, discardLogger())
	_, err = svc.Ask(context.Background(), "hi")
	assert.Error(t, err)
}

type fakeUploader struct {
	got  webhook.UploadRequest
	resp *webhook.UploadResponse
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, input webhook.UploadRequest) (*webhook.UploadResponse, error) {
	f.got = input
	return f.resp, f.err
}

type fakePublisher struct {
	events []model.UploadEvent
	err    error
}

func (f *fakePublisher) PublishUploadEvent(_ context.Context, event model.UploadEvent) error {
	f.events = append(f.events, event)
	return f.err
}

func TestUploadServiceJSONUpstream(t *testing.T) {
	uploader := &fakeUploader{resp: &webhook.UploadResponse{
		Status:      200,
		ContentType: "application/json",
		Body:        []byte(`{"chunks":3}`),
	}}
	publisher := &fakePublisher{}
	svc := NewUploadService(uploader, publisher, discardLogger())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	ctx := requestid.WithContext(context.Background(), "req-9")
	res, err := svc.Upload(ctx, UploadInput{Filename: "a.pdf", ContentType: "application/pdf", Body: []byte("%PDF")})
	require.NoError(t, err)

	assert.Equal(t, "a.pdf", uploader.got.Filename)
	assert.Equal(t, []byte("%PDF"), uploader.got.Body)

	encoded, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"upstream":{"chunks":3}}`, string(encoded))

	require.Len(t, publisher.events, 1)
	assert.Equal(t, model.UploadEvent{
		RequestID:      "req-9",
		Filename:       "a.pdf",
		ContentType:    "application/pdf",
		Size:           4,
		UpstreamStatus: 200,
		UploadedAt:     fixed,
	}, publisher.events[0])
}

func TestUploadServiceTextUpstream(t *testing.T) {
	uploader := &fakeUploader{resp: &webhook.UploadResponse{Status: 201, ContentType: "text/plain", Body: []byte("stored")}}
	svc := NewUploadService(uploader, nil, discardLogger())

	res, err := svc.Upload(context.Background(), UploadInput{Filename: "n.txt", Body: []byte("x")})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "stored", res.Upstream)
}

func TestUploadServicePublishFailureDoesNotFailUpload(t *testing.T) {
	uploader := &fakeUploader{resp: &webhook.UploadResponse{Status: 200, Body: []byte("ok")}}
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc := NewUploadService(uploader, publisher, discardLogger())

	res, err := svc.Upload(context.Background(), UploadInput{Filename: "n.txt", Body: []byte("x")})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, publisher.events, 1)
}

func TestUploadServiceErrors(t *testing.T) {
	upstream := &webhook.UpstreamError{Status: 502, Body: "bad"}
	publisher := &fakePublisher{}
	svc := NewUploadService(&fakeUploader{err: upstream}, publisher, discardLogger())
	_, err := svc.Upload(context.Background(), UploadInput{Filename: "a.txt", Body: []byte("x")})
	assert.ErrorIs(t, err, upstream)
	assert.Empty(t, publisher.events)

	svc = NewUploadService(&fakeUploader{resp: &webhook.UploadResponse{
		Status:      200,
		ContentType: "application/json",
		Body:        []byte("{broken"),
	}}, nil, discardLogger())
	_, err = svc.Upload(context.Background(), UploadInput{Filename: "a.txt", Body: []byte("x")})
	assert.ErrorIs(t, err, errUploadBodyNotJSON)

	for _, input := range []UploadInput{{}, {Body: []byte{}}} {
		_, err = svc.Upload(context.Background(), input)
		assert.ErrorIs(t, err, ErrFileMissing)
	}
}

type fakeLister struct {
	calls int
	docs  []model.DocumentRecord
	err   error
}

func (f *fakeLister) ListDocuments(context.Context) ([]model.DocumentRecord, error) {
	f.calls++
	return f.docs, f.err
}

type memoryCache struct {
	docs   []model.DocumentRecord
	hit    bool
	getErr error
	sets   int
}

func (c *memoryCache) GetDocuments(context.Context) ([]model.DocumentRecord, bool, error) {
	return c.docs, c.hit, c.getErr
}

func (c *memoryCache) SetDocuments(_ context.Context, docs []model.DocumentRecord) error {
	c.sets++
	c.docs = docs
	c.hit = true
	return nil
}

func TestDocumentServiceOrdersNewestFirst(t *testing.T) {
	store := &fakeLister{docs: []model.DocumentRecord{
		{ID: 3, Metadata: []byte(`{"source":"c.txt"}`)},
		{ID: 7, Metadata: []byte(`{"source":"a.pdf"}`)},
		{ID: 5, Metadata: []byte(`null`)},
	}}
	svc := NewDocumentService(store, nil, discardLogger())

	docs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []int64{7, 5, 3}, []int64{docs[0].ID, docs[1].ID, docs[2].ID})
	assert.JSONEq(t, `{"source":"a.pdf"}`, string(docs[0].Metadata))
}

func TestDocumentServiceEmptyIsNotNil(t *testing.T) {
	svc := NewDocumentService(&fakeLister{}, nil, discardLogger())
	docs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, docs)

	encoded, err := json.Marshal(docs)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(encoded))
}

func TestDocumentServiceStoreError(t *testing.T) {
	cause := errors.New("relation does not exist")
	svc := NewDocumentService(&fakeLister{err: cause}, nil, discardLogger())
	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, ErrDocumentStore)
	assert.ErrorIs(t, err, cause)
}

func TestDocumentServiceUsesCache(t *testing.T) {
	store := &fakeLister{docs: []model.DocumentRecord{{ID: 1}, {ID: 2}}}
	cache := &memoryCache{}
	svc := NewDocumentService(store, cache, discardLogger())

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	second, err := svc.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(2), second[0].ID)
}

func TestDocumentServiceCacheErrorFallsThrough(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	store := &fakeLister{docs: []model.DocumentRecord{{ID: 4}}}
	svc := NewDocumentService(store, &memoryCache{getErr: errors.New("redis down")}, logger)

	docs, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, 1, store.calls)
	assert.Contains(t, logs.String(), "document cache read failed")
}
