package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/domain"
)

func NewRedisImageCache(client *redis.Client, ttl time.Duration) *RedisImageCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisImageCache{
		client:  client,
		baseTTL: ttl,
	}
}

type RedisImageCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisImageCache) GetMany(ctx context.Context, ids []string) (map[string]domain.ProductImages, error) {
	out := make(map[string]domain.ProductImages, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis mget failed: %w", err)
	}
	for i, raw := range values {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		var entry domain.ProductImages
		if err := json.Unmarshal([]byte(s), &entry); err != nil {
			// A corrupt entry is treated as a miss and overwritten on the next fetch.
			continue
		}
		out[ids[i]] = entry
	}
	return out, nil
}

func (r *RedisImageCache) SetMany(ctx context.Context, entries []domain.ProductImages) error {
	if len(entries) == 0 {
		return nil
	}
	pipe := r.client.TxPipeline()
	for _, entry := range entries {
		payload, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal product images failed: %w", err)
		}
		jitter := time.Duration(rand.Intn(5)) * time.Minute
		pipe.Set(ctx, cacheKey(entry.ProductID), payload, r.baseTTL+jitter)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func cacheKey(productID string) string {
	return fmt.Sprintf("product-images:%s", productID)
}
