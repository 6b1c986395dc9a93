package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"docchat-relay/internal/model"
)

const documentsKey = "docchat:documents:list"

// DocumentCache keeps the last document listing for a short TTL so repeated
// page loads do not hit the table store.
type DocumentCache struct {
	client redisv9.Cmdable
	ttl    time.Duration
}

func NewDocumentCache(client redisv9.Cmdable, ttl time.Duration) *DocumentCache {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &DocumentCache{client: client, ttl: ttl}
}

func (c *DocumentCache) GetDocuments(ctx context.Context) ([]model.DocumentRecord, bool, error) {
	raw, err := c.client.Get(ctx, documentsKey).Bytes()
	if errors.Is(err, redisv9.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get documents failed: %w", err)
	}

	var docs []model.DocumentRecord
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached documents failed: %w", err)
	}
	return docs, true, nil
}

func (c *DocumentCache) SetDocuments(ctx context.Context, docs []model.DocumentRecord) error {
	payload, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("marshal documents cache failed: %w", err)
	}
	if err := c.client.Set(ctx, documentsKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set documents failed: %w", err)
	}
	return nil
}
