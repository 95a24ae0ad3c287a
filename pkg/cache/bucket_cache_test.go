package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestBucketCache(t *testing.T, ttl time.Duration) (*BucketCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("redis close: %v", cerr)
		}
	})
	return NewBucketCache(Wrap(client), ttl), mr
}

func fill(ctx context.Context, c *BucketCache, bucket string, items []CachedMenuItem) error {
	gen, err := c.Generation(ctx, bucket)
	if err != nil {
		return err
	}
	ok, err := c.SetIfGeneration(ctx, bucket, gen, items)
	if err == nil && !ok {
		err = errors.New("fill dropped")
	}
	return err
}

func TestBucketCache_Miss(t *testing.T) {
	c, _ := newTestBucketCache(t, time.Minute)

	_, err := c.Get(context.Background(), "header")
	if !errors.Is(err, redis.Nil) {
		t.Fatalf("expected redis.Nil on miss, got %v", err)
	}
}

func TestBucketCache_SetGetPreservesOrder(t *testing.T) {
	c, _ := newTestBucketCache(t, time.Minute)
	ctx := context.Background()

	items := []CachedMenuItem{
		{ID: uuid.New(), Bucket: "header", Order: 0, Name: "Featured", URL: "/featured", Target: "_self"},
		{ID: uuid.New(), Bucket: "header", Order: 1, Name: "Home", URL: "/", Target: "_self", IsActive: true},
		{ID: uuid.New(), Bucket: "header", Order: 2, Name: "Categories", URL: "/categories", Target: "_blank"},
	}
	if err := fill(ctx, c, "header", items); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := c.Get(ctx, "header")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(got))
	}
	for i := range items {
		if got[i].ID != items[i].ID || got[i].Order != items[i].Order || got[i].Name != items[i].Name {
			t.Errorf("item %d: got %+v, want %+v", i, got[i], items[i])
		}
	}
	if !got[1].IsActive || got[2].Target != "_blank" {
		t.Errorf("payload fields not preserved: %+v", got)
	}
}

func TestBucketCache_EmptyListingIsCached(t *testing.T) {
	c, _ := newTestBucketCache(t, time.Minute)
	ctx := context.Background()

	if err := fill(ctx, c, "footer", nil); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := c.Get(ctx, "footer")
	if err != nil {
		t.Fatalf("expected cached empty listing, got error %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty listing, got %d items", len(got))
	}
}

func TestBucketCache_InvalidateIsPerBucket(t *testing.T) {
	c, _ := newTestBucketCache(t, time.Minute)
	ctx := context.Background()

	for _, b := range []string{"header", "footer"} {
		if err := fill(ctx, c, b, []CachedMenuItem{{ID: uuid.New(), Bucket: b}}); err != nil {
			t.Fatalf("set %s: %v", b, err)
		}
	}

	if err := c.Invalidate(ctx, "header"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	if _, err := c.Get(ctx, "header"); !errors.Is(err, redis.Nil) {
		t.Errorf("header should be gone, got %v", err)
	}
	if _, err := c.Get(ctx, "footer"); err != nil {
		t.Errorf("footer should survive, got %v", err)
	}
}

func TestBucketCache_TTL(t *testing.T) {
	c, mr := newTestBucketCache(t, 30*time.Second)
	ctx := context.Background()

	if err := fill(ctx, c, "header", []CachedMenuItem{{ID: uuid.New()}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("menu:bucket:header"); ttl != 30*time.Second {
		t.Fatalf("expected TTL 30s, got %v", ttl)
	}

	mr.FastForward(31 * time.Second)
	if _, err := c.Get(ctx, "header"); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestNewBucketCache_DefaultTTL(t *testing.T) {
	c := NewBucketCache(nil, 0)
	if c.ttl != DefaultBucketCacheTTL {
		t.Fatalf("expected default TTL, got %v", c.ttl)
	}
}

func TestBucketCache_SetIfGeneration(t *testing.T) {
	c, mr := newTestBucketCache(t, time.Minute)
	ctx := context.Background()
	items := []CachedMenuItem{{ID: uuid.New(), Bucket: "header"}}

	gen, err := c.Generation(ctx, "header")
	if err != nil {
		t.Fatalf("generation: %v", err)
	}
	if gen != 0 {
		t.Fatalf("fresh bucket generation = %d, want 0", gen)
	}

	ok, err := c.SetIfGeneration(ctx, "header", gen, items)
	if err != nil || !ok {
		t.Fatalf("fill at current generation: ok=%v err=%v", ok, err)
	}

	if err := c.Invalidate(ctx, "header"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	ok, err = c.SetIfGeneration(ctx, "header", gen, items)
	if err != nil {
		t.Fatalf("stale fill: %v", err)
	}
	if ok || mr.Exists("menu:bucket:header") {
		t.Fatal("fill read before an invalidation must be dropped")
	}

	next, err := c.Generation(ctx, "header")
	if err != nil {
		t.Fatalf("generation: %v", err)
	}
	if next != gen+1 {
		t.Fatalf("generation after invalidate = %d, want %d", next, gen+1)
	}
	if ok, err := c.SetIfGeneration(ctx, "header", next, items); err != nil || !ok {
		t.Fatalf("fill at new generation: ok=%v err=%v", ok, err)
	}
}
