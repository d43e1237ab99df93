package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/guildledger/internal/domain"
	"github.com/iho/guildledger/internal/infrastructure/metrics"
)

const defaultBatchTTL = time.Hour

// BatchCache implements usecase.BatchCache using Redis. Batches never change
// after creation, so entries are only ever written once and expire by TTL.
type BatchCache struct {
	client  *redis.Client
	metrics *metrics.Metrics
	prefix  string
	ttl     time.Duration
}

// NewBatchCache creates a new BatchCache. A non-positive ttl falls back to
// one hour. m may be nil.
func NewBatchCache(client *redis.Client, ttl time.Duration, m *metrics.Metrics) *BatchCache {
	if ttl <= 0 {
		ttl = defaultBatchTTL
	}
	return &BatchCache{
		client:  client,
		metrics: m,
		prefix:  "batch:",
		ttl:     ttl,
	}
}

// GetBatch returns the cached detail, or nil without error on a miss.
func (c *BatchCache) GetBatch(ctx context.Context, batchID string) (*domain.BatchDetail, error) {
	raw, err := c.client.Get(ctx, c.prefix+batchID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		c.countError("get")
		return nil, fmt.Errorf("get cached batch: %w", err)
	}

	var detail domain.BatchDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		// A corrupt entry is treated as a miss and overwritten on the next read.
		return nil, nil
	}

	return &detail, nil
}

// SetBatch stores detail under its batch id.
func (c *BatchCache) SetBatch(ctx context.Context, detail *domain.BatchDetail) error {
	if detail == nil || detail.Batch == nil {
		return errors.New("set cached batch: empty detail")
	}

	raw, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("marshal batch detail: %w", err)
	}

	if err := c.client.Set(ctx, c.prefix+detail.Batch.ID, raw, c.ttl).Err(); err != nil {
		c.countError("set")
		return fmt.Errorf("set cached batch: %w", err)
	}

	return nil
}

func (c *BatchCache) countError(op string) {
	if c.metrics != nil {
		c.metrics.RedisErrors.WithLabelValues("batch_cache_" + op).Inc()
	}
}
