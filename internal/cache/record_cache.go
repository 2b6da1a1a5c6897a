package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"surveyhub/internal/model"
)

// RecordCache keeps stored respondent documents close to the API
type RecordCache interface {
	Set(ctx context.Context, doc *model.Document) error
	Get(ctx context.Context, respondentID string) (*model.Document, error)
	Delete(ctx context.Context, respondentID string) error
}

type recordCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRecordCache(client *redis.Client, ttl time.Duration) RecordCache {
	return &recordCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *recordCache) key(respondentID string) string {
	return fmt.Sprintf("record:%s", respondentID)
}

func (c *recordCache) Set(ctx context.Context, doc *model.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(doc.RespondentID), data, c.ttl).Err()
}

// Get returns nil, nil on a miss
func (c *recordCache) Get(ctx context.Context, respondentID string) (*model.Document, error) {
	data, err := c.client.Get(ctx, c.key(respondentID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *recordCache) Delete(ctx context.Context, respondentID string) error {
	return c.client.Del(ctx, c.key(respondentID)).Err()
}
