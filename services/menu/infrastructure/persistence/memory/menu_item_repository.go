// Package memory is an in-process implementation of the menu item store.
// Every operation holds a single mutex, so each call is atomic with respect to
// the others. Items are copied on the way in and out.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	menudomain "github.com/ghuser/bizdir/services/menu/domain"
	"github.com/ghuser/bizdir/services/menu/domain/models"
	domainsvcs "github.com/ghuser/bizdir/services/menu/domain/services"
)

// MenuItemRepository implements repositories.MenuItemRepository in memory.
type MenuItemRepository struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.MenuItem
}

// NewMenuItemRepository returns an empty repository.
func NewMenuItemRepository() *MenuItemRepository {
	return &MenuItemRepository{items: make(map[uuid.UUID]models.MenuItem)}
}

// ListByBucket returns copies of the bucket's items ascending by Order, ties broken by ID.
func (r *MenuItemRepository) ListByBucket(_ context.Context, bucket models.Bucket) ([]*models.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bucketLocked(bucket), nil
}

// GetByID returns a copy of the item or ErrMenuItemNotFound.
func (r *MenuItemRepository) GetByID(_ context.Context, id uuid.UUID) (*models.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, menudomain.ErrMenuItemNotFound
	}
	return &it, nil
}

// Create stores item at the tail of its bucket and sets item.Order.
func (r *MenuItemRepository) Create(_ context.Context, item *models.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !item.Bucket.Valid() {
		return menudomain.ErrInvalidBucket
	}
	item.Order = domainsvcs.NextOrder(r.bucketLocked(item.Bucket))
	r.items[item.ID] = *item
	return nil
}

// Update writes the item's non-order fields and refreshes item from the
// stored copy. Bucket and Order are left alone.
func (r *MenuItemRepository) Update(_ context.Context, item *models.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[item.ID]
	if !ok {
		return menudomain.ErrMenuItemNotFound
	}
	stored.Name = item.Name
	stored.URL = item.URL
	stored.Target = item.Target
	stored.IsActive = item.IsActive
	stored.UpdatedAt = item.UpdatedAt
	r.items[item.ID] = stored
	*item = stored
	return nil
}

// Delete removes the item. Siblings keep their order values.
func (r *MenuItemRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return menudomain.ErrMenuItemNotFound
	}
	delete(r.items, id)
	return nil
}

// Move places the item last in bucket. Moving within the same bucket is a no-op.
func (r *MenuItemRepository) Move(_ context.Context, id uuid.UUID, bucket models.Bucket) (*models.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok {
		return nil, menudomain.ErrMenuItemNotFound
	}
	if stored.Bucket == bucket {
		return &stored, nil
	}
	stored.Order = domainsvcs.NextOrder(r.bucketLocked(bucket))
	stored.Bucket = bucket
	stored.UpdatedAt = time.Now().UTC()
	r.items[id] = stored
	return &stored, nil
}

// RewriteOrder sets order i on orderedIDs[i]. orderedIDs must be exactly the
// bucket's members; otherwise ErrOrderMismatch is returned and nothing changes.
func (r *MenuItemRepository) RewriteOrder(_ context.Context, bucket models.Bucket, orderedIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := domainsvcs.IDs(r.bucketLocked(bucket))
	if err := domainsvcs.CheckPermutation(current, orderedIDs); err != nil {
		return fmt.Errorf("%w: %w", menudomain.ErrOrderMismatch, err)
	}
	now := time.Now().UTC()
	for i, id := range orderedIDs {
		it := r.items[id]
		it.Order = i
		it.UpdatedAt = now
		r.items[id] = it
	}
	return nil
}

// bucketLocked returns sorted copies of the bucket's items. r.mu must be held.
func (r *MenuItemRepository) bucketLocked(bucket models.Bucket) []*models.MenuItem {
	out := make([]*models.MenuItem, 0)
	for _, it := range r.items {
		if it.Bucket == bucket {
			cp := it
			out = append(out, &cp)
		}
	}
	domainsvcs.SortByOrder(out)
	return out
}
