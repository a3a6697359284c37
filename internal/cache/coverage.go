package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plantops/supply-coverage/internal/config"
	"github.com/plantops/supply-coverage/internal/domain"
)

const (
	coverageKeyPrefix = "coverage:items"
	scanBatchSize     = 100
)

// CoverageCache fronts the coverage item queries. Entries are keyed by a
// hash of the filter and invalidated wholesale when a new run lands.
type CoverageCache interface {
	GetItems(ctx context.Context, filter domain.CoverageFilter) ([]domain.CoverageItem, bool, error)
	SetItems(ctx context.Context, filter domain.CoverageFilter, items []domain.CoverageItem) error
	InvalidateAll(ctx context.Context) error
}

type redisCoverageCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopCoverageCache struct{}

func NewCoverageCache(cfg config.CacheConfig) (CoverageCache, error) {
	if !cfg.Enabled {
		return &noopCoverageCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisCoverageCache{client: client, ttl: ttl}, nil
}

func NewNoopCoverageCache() CoverageCache {
	return &noopCoverageCache{}
}

func (c *redisCoverageCache) GetItems(ctx context.Context, filter domain.CoverageFilter) ([]domain.CoverageItem, bool, error) {
	key := buildCoverageKey(filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var items []domain.CoverageItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, false, fmt.Errorf("decode coverage cache: %w", err)
	}
	return items, true, nil
}

func (c *redisCoverageCache) SetItems(ctx context.Context, filter domain.CoverageFilter, items []domain.CoverageItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode coverage cache: %w", err)
	}

	if err := c.client.Set(ctx, buildCoverageKey(filter), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisCoverageCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, coverageKeyPrefix, scanBatchSize)
}

func buildCoverageKey(filter domain.CoverageFilter) string {
	raw := fmt.Sprintf("%d|%s|%s|%s|%t|%d|%d",
		filter.RunID, filter.LocationID, filter.Material, filter.Family,
		filter.ShortOnly, filter.Limit, filter.Offset)
	sum := sha1.Sum([]byte(raw))
	return coverageKeyPrefix + ":" + hex.EncodeToString(sum[:])
}

func (noopCoverageCache) GetItems(ctx context.Context, filter domain.CoverageFilter) ([]domain.CoverageItem, bool, error) {
	return nil, false, nil
}

func (noopCoverageCache) SetItems(ctx context.Context, filter domain.CoverageFilter, items []domain.CoverageItem) error {
	return nil
}

func (noopCoverageCache) InvalidateAll(ctx context.Context) error {
	return nil
}
