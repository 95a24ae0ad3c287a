package client

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

// fakeLister serves a fixed listing per bucket and counts calls.
type fakeLister struct {
	mu      sync.Mutex
	buckets map[string][]Item
	calls   int
	err     error
}

func (f *fakeLister) List(_ context.Context, bucket string) ([]Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]Item(nil), f.buckets[bucket]...), nil
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func makeItems(bucket string, labels ...string) []Item {
	items := make([]Item, len(labels))
	for i, l := range labels {
		items[i] = Item{ID: uuid.New(), Name: l, Bucket: bucket, Order: i}
	}
	return items
}

func snapshotNames(s Snapshot) []string { return names(s.Items) }

func TestOptimisticCache_GetFetchesOnce(t *testing.T) {
	l := &fakeLister{buckets: map[string][]Item{"header": makeItems("header", "Home", "Blog")}}
	c := NewOptimisticCache(l)

	for range 3 {
		s, err := c.Get(context.Background(), "header")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if diff := cmp.Diff([]string{"Home", "Blog"}, snapshotNames(s)); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	}
	if l.callCount() != 1 {
		t.Errorf("lister called %d times, want 1", l.callCount())
	}
}

func TestOptimisticCache_GetError(t *testing.T) {
	boom := errors.New("boom")
	c := NewOptimisticCache(&fakeLister{err: boom})
	if _, err := c.Get(context.Background(), "header"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestOptimisticCache_PatchConfirm(t *testing.T) {
	items := makeItems("header", "Home", "Categories", "Featured")
	c := NewOptimisticCache(&fakeLister{buckets: map[string][]Item{"header": items}})
	ctx := context.Background()

	if _, err := c.Patch("header", nil); !errors.Is(err, ErrNotCached) {
		t.Fatalf("patch before get: expected ErrNotCached, got %v", err)
	}
	if _, err := c.Get(ctx, "header"); err != nil {
		t.Fatalf("get: %v", err)
	}

	v1, err := c.Patch("header", []uuid.UUID{items[2].ID, items[0].ID, items[1].ID})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	s, _ := c.Get(ctx, "header")
	if diff := cmp.Diff([]string{"Featured", "Home", "Categories"}, snapshotNames(s)); diff != "" {
		t.Errorf("pending view (-want +got):\n%s", diff)
	}
	for i, it := range s.Items {
		if it.Order != i {
			t.Errorf("%s order = %d, want %d", it.Name, it.Order, i)
		}
	}
	if s.Version != v1 || !c.Pending("header") {
		t.Errorf("version = %d, want %d (pending %v)", s.Version, v1, c.Pending("header"))
	}

	v2, err := c.Patch("header", []uuid.UUID{items[0].ID, items[2].ID, items[1].ID})
	if err != nil {
		t.Fatalf("second patch: %v", err)
	}
	if v2 <= v1 {
		t.Errorf("versions not increasing: %d then %d", v1, v2)
	}
	if c.Confirm("header", v1) {
		t.Error("stale version was confirmed")
	}
	if !c.Confirm("header", v2) {
		t.Fatal("current version not confirmed")
	}
	if c.Pending("header") {
		t.Error("pending snapshot left after confirm")
	}
	s, _ = c.Get(ctx, "header")
	if diff := cmp.Diff([]string{"Home", "Featured", "Categories"}, snapshotNames(s)); diff != "" {
		t.Errorf("confirmed view (-want +got):\n%s", diff)
	}
}

func TestOptimisticCache_PatchRejectsNonPermutation(t *testing.T) {
	items := makeItems("header", "A", "B")
	c := NewOptimisticCache(&fakeLister{buckets: map[string][]Item{"header": items}})
	if _, err := c.Get(context.Background(), "header"); err != nil {
		t.Fatalf("get: %v", err)
	}

	tests := map[string][]uuid.UUID{
		"omission":  {items[0].ID},
		"stranger":  {items[0].ID, uuid.New()},
		"duplicate": {items[0].ID, items[0].ID},
	}
	for name, ids := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := c.Patch("header", ids); err == nil {
				t.Fatal("expected error")
			}
			if c.Pending("header") {
				t.Error("rejected patch left a pending snapshot")
			}
		})
	}
}

func TestOptimisticCache_DiscardInvalidateRefresh(t *testing.T) {
	items := makeItems("header", "A", "B")
	l := &fakeLister{buckets: map[string][]Item{"header": items}}
	c := NewOptimisticCache(l)
	ctx := context.Background()

	if _, err := c.Get(ctx, "header"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := c.Patch("header", []uuid.UUID{items[1].ID, items[0].ID}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	c.Discard("header")
	s, _ := c.Get(ctx, "header")
	if diff := cmp.Diff([]string{"A", "B"}, snapshotNames(s)); diff != "" {
		t.Errorf("after discard (-want +got):\n%s", diff)
	}

	c.Invalidate("header")
	if _, err := c.Get(ctx, "header"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if l.callCount() != 2 {
		t.Errorf("lister called %d times, want 2", l.callCount())
	}

	if _, err := c.Patch("header", []uuid.UUID{items[1].ID, items[0].ID}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if _, err := c.Refresh(ctx, "header"); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if c.Pending("header") {
		t.Error("refresh kept the pending snapshot")
	}
}

func TestOptimisticCache_SnapshotsAreCopies(t *testing.T) {
	c := NewOptimisticCache(&fakeLister{buckets: map[string][]Item{"header": makeItems("header", "A", "B")}})
	ctx := context.Background()

	s, _ := c.Get(ctx, "header")
	s.Items[0].Name = "mutated"

	again, _ := c.Get(ctx, "header")
	if again.Items[0].Name != "A" {
		t.Errorf("caller mutation leaked into cache: %q", again.Items[0].Name)
	}
}

func TestOptimisticCache_ConcurrentPatches(t *testing.T) {
	items := makeItems("header", "A", "B", "C")
	c := NewOptimisticCache(&fakeLister{buckets: map[string][]Item{"header": items}})
	if _, err := c.Get(context.Background(), "header"); err != nil {
		t.Fatalf("get: %v", err)
	}
	ids := []uuid.UUID{items[2].ID, items[1].ID, items[0].ID}

	var wg sync.WaitGroup
	versions := make([]uint64, 8)
	for i := range versions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Patch("header", ids)
			if err != nil {
				t.Errorf("patch: %v", err)
			}
			versions[i] = v
		}()
	}
	wg.Wait()

	seen := make(map[uint64]bool)
	for _, v := range versions {
		if seen[v] {
			t.Fatalf("version %d handed out twice", v)
		}
		seen[v] = true
	}
}
