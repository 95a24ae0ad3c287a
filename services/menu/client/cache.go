package client

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	domainsvcs "github.com/ghuser/bizdir/services/menu/domain/services"
)

// ErrNotCached is returned by Patch when the bucket has no entry yet.
var ErrNotCached = errors.New("bucket not cached")

// Lister fetches a bucket listing. *Client implements it.
type Lister interface {
	List(ctx context.Context, bucket string) ([]Item, error)
}

// Snapshot is one immutable view of a bucket. Version 0 is a server listing;
// patched snapshots carry the version Patch returned.
type Snapshot struct {
	Bucket  string
	Items   []Item
	Version uint64
}

// IDs returns the snapshot's item ids in display order.
func (s Snapshot) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(s.Items))
	for i, it := range s.Items {
		ids[i] = it.ID
	}
	return ids
}

func (s Snapshot) clone() Snapshot {
	s.Items = slices.Clone(s.Items)
	return s
}

type cacheEntry struct {
	confirmed Snapshot
	pending   *Snapshot
}

// OptimisticCache holds the last confirmed listing of each bucket plus at
// most one pending, locally patched snapshot. Readers see the pending
// snapshot when there is one. Snapshots are copied in and out, so callers
// never share slices with the cache.
type OptimisticCache struct {
	lister Lister

	mu      sync.Mutex
	entries map[string]*cacheEntry
	version uint64
}

// NewOptimisticCache returns an empty cache that fetches misses through lister.
func NewOptimisticCache(lister Lister) *OptimisticCache {
	return &OptimisticCache{lister: lister, entries: make(map[string]*cacheEntry)}
}

// Get returns the bucket's current view, fetching it on a miss.
func (c *OptimisticCache) Get(ctx context.Context, bucket string) (Snapshot, error) {
	c.mu.Lock()
	if e, ok := c.entries[bucket]; ok {
		s := e.view()
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()
	return c.fetch(ctx, bucket, false)
}

// Refresh refetches the bucket, replacing both snapshots.
func (c *OptimisticCache) Refresh(ctx context.Context, bucket string) (Snapshot, error) {
	return c.fetch(ctx, bucket, true)
}

func (c *OptimisticCache) fetch(ctx context.Context, bucket string, replace bool) (Snapshot, error) {
	items, err := c.lister.List(ctx, bucket)
	if err != nil {
		return Snapshot{}, err
	}
	fresh := Snapshot{Bucket: bucket, Items: items}

	c.mu.Lock()
	defer c.mu.Unlock()
	// A concurrent Get may have filled the entry while we were fetching.
	if e, ok := c.entries[bucket]; ok && !replace {
		return e.view(), nil
	}
	c.entries[bucket] = &cacheEntry{confirmed: fresh.clone()}
	return fresh, nil
}

// Patch records orderedIDs as the bucket's pending order and returns the
// pending snapshot's version. orderedIDs must be a permutation of the current
// view. Order fields are renumbered to the new index.
func (c *OptimisticCache) Patch(bucket string, orderedIDs []uuid.UUID) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[bucket]
	if !ok {
		return 0, ErrNotCached
	}
	current := e.view()
	items, err := domainsvcs.Arrange(current.Items, func(it Item) uuid.UUID { return it.ID }, orderedIDs)
	if err != nil {
		return 0, err
	}
	for i := range items {
		items[i].Order = i
	}

	c.version++
	e.pending = &Snapshot{Bucket: bucket, Items: items, Version: c.version}
	return c.version, nil
}

// Confirm promotes the pending snapshot to confirmed if it is still the one
// created with version. It reports whether a promotion happened.
func (c *OptimisticCache) Confirm(bucket string, version uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[bucket]
	if !ok || e.pending == nil || e.pending.Version != version {
		return false
	}
	e.confirmed = *e.pending
	e.pending = nil
	return true
}

// Discard drops the bucket's pending snapshot, if any.
func (c *OptimisticCache) Discard(bucket string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[bucket]; ok {
		e.pending = nil
	}
}

// Invalidate forgets the bucket entirely; the next Get refetches.
func (c *OptimisticCache) Invalidate(bucket string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, bucket)
}

// Pending reports whether the bucket has an unconfirmed patch.
func (c *OptimisticCache) Pending(bucket string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[bucket]
	return ok && e.pending != nil
}

func (e *cacheEntry) view() Snapshot {
	if e.pending != nil {
		return e.pending.clone()
	}
	return e.confirmed.clone()
}
