package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultBucketCacheTTL is used when NewBucketCache is given a non-positive TTL.
	DefaultBucketCacheTTL = 10 * time.Minute

	bucketCacheKeyPrefix = "menu:bucket"
)

// CachedMenuItem is the denormalized read model stored in Redis for one
// entry of a bucket listing.
type CachedMenuItem struct {
	ID        uuid.UUID `json:"id"`
	Bucket    string    `json:"bucket"`
	Order     int       `json:"order"`
	IsActive  bool      `json:"is_active"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Target    string    `json:"target"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BucketCache caches whole bucket listings, already sorted, under one key per bucket.
// Key format: "menu:bucket:{bucket}", with a generation counter at
// "menu:bucket:{bucket}:gen".
//
// Writers must call Invalidate after every mutation that touches a bucket;
// readers fall back to the store on redis.Nil and fill the cache with
// SetIfGeneration, using the generation read before the store query.
type BucketCache struct {
	client *RedisClient
	ttl    time.Duration
}

// NewBucketCache creates a BucketCache backed by the given RedisClient.
func NewBucketCache(r *RedisClient, ttl time.Duration) *BucketCache {
	if ttl <= 0 {
		ttl = DefaultBucketCacheTTL
	}
	return &BucketCache{client: r, ttl: ttl}
}

// Get returns the cached listing for bucket.
// Returns redis.Nil when the key does not exist or has expired.
func (c *BucketCache) Get(ctx context.Context, bucket string) ([]CachedMenuItem, error) {
	data, err := c.client.Client().Get(ctx, c.key(bucket)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, redis.Nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var items []CachedMenuItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("cache decode %s: %w", bucket, err)
	}
	return items, nil
}

// Generation returns the bucket's invalidation counter; zero if the bucket
// was never invalidated.
func (c *BucketCache) Generation(ctx context.Context, bucket string) (int64, error) {
	gen, err := c.client.Client().Get(ctx, c.genKey(bucket)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return gen, nil
}

// SetIfGeneration stores the listing with the configured TTL, but only if no
// Invalidate ran since gen was read. It reports whether the listing was
// stored. An empty listing is cached too, as an empty array.
func (c *BucketCache) SetIfGeneration(ctx context.Context, bucket string, gen int64, items []CachedMenuItem) (bool, error) {
	if items == nil {
		items = []CachedMenuItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return false, fmt.Errorf("cache encode %s: %w", bucket, err)
	}

	stored := false
	err = c.client.Client().Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, c.genKey(bucket)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, c.key(bucket), data, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, c.genKey(bucket))
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache set: %w", err)
	}
	return stored, nil
}

// Invalidate removes the cached listings for the given buckets and bumps
// their generations, so fills racing with the mutation are dropped.
func (c *BucketCache) Invalidate(ctx context.Context, buckets ...string) error {
	if len(buckets) == 0 {
		return nil
	}
	_, err := c.client.Client().TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, b := range buckets {
			p.Incr(ctx, c.genKey(b))
			p.Del(ctx, c.key(b))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// key builds the Redis key: "menu:bucket:{bucket}"
func (c *BucketCache) key(bucket string) string {
	return fmt.Sprintf("%s:%s", bucketCacheKeyPrefix, bucket)
}

func (c *BucketCache) genKey(bucket string) string {
	return c.key(bucket) + ":gen"
}
