package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/bizdir/services/menu/domain/models"
)

// MenuItemRepository is the persistence interface for the MenuItem aggregate.
// The domain layer owns this interface; infrastructure implements it.
type MenuItemRepository interface {
	// ListByBucket returns the bucket's items ascending by Order, ties broken by ID.
	ListByBucket(ctx context.Context, bucket models.Bucket) ([]*models.MenuItem, error)

	// GetByID returns ErrMenuItemNotFound if no item has the given id.
	GetByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)

	// Create persists a new item at the tail of its bucket and writes the
	// assigned Order back onto item.
	Create(ctx context.Context, item *models.MenuItem) error

	// Update persists the non-order fields of an existing item.
	// Returns ErrMenuItemNotFound if the item does not exist.
	Update(ctx context.Context, item *models.MenuItem) error

	// Delete removes an item. Siblings keep their Order values.
	// Returns ErrMenuItemNotFound if the item does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// Move re-inserts an item at the tail of another bucket and returns it.
	Move(ctx context.Context, id uuid.UUID, bucket models.Bucket) (*models.MenuItem, error)

	// RewriteOrder atomically assigns Order = index to every id in orderedIDs.
	// Returns ErrOrderMismatch, without mutating anything, unless orderedIDs is
	// exactly the current membership of bucket.
	RewriteOrder(ctx context.Context, bucket models.Bucket, orderedIDs []uuid.UUID) error
}
