package app

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"docchat-relay/internal/model"
)

// DocumentLister reads id and metadata for every stored document.
type DocumentLister interface {
	ListDocuments(ctx context.Context) ([]model.DocumentRecord, error)
}

type DocumentCache interface {
	GetDocuments(ctx context.Context) ([]model.DocumentRecord, bool, error)
	SetDocuments(ctx context.Context, docs []model.DocumentRecord) error
}

type DocumentService struct {
	store  DocumentLister
	cache  DocumentCache
	logger *slog.Logger
}

// NewDocumentService accepts a nil cache.
func NewDocumentService(store DocumentLister, cache DocumentCache, logger *slog.Logger) *DocumentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentService{store: store, cache: cache, logger: logger}
}

// List returns documents ordered by id, newest first. The result is never nil.
func (s *DocumentService) List(ctx context.Context) ([]model.DocumentRecord, error) {
	if s.cache != nil {
		docs, ok, err := s.cache.GetDocuments(ctx)
		if err != nil {
			s.logger.Warn("document cache read failed", "error", err)
		} else if ok {
			return normalizeDocuments(docs), nil
		}
	}

	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocumentStore, err)
	}
	docs = normalizeDocuments(docs)

	if s.cache != nil {
		if err := s.cache.SetDocuments(ctx, docs); err != nil {
			s.logger.Warn("document cache write failed", "error", err)
		}
	}
	return docs, nil
}

func normalizeDocuments(docs []model.DocumentRecord) []model.DocumentRecord {
	if docs == nil {
		return []model.DocumentRecord{}
	}
	slices.SortStableFunc(docs, func(a, b model.DocumentRecord) int {
		return cmp.Compare(b.ID, a.ID)
	})
	return docs
}
