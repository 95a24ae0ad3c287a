package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/bizdir/pkg/database"
	"github.com/ghuser/bizdir/pkg/events"
	menudomain "github.com/ghuser/bizdir/services/menu/domain"
	domainevents "github.com/ghuser/bizdir/services/menu/domain/events"
	"github.com/ghuser/bizdir/services/menu/domain/models"
	domainsvcs "github.com/ghuser/bizdir/services/menu/domain/services"
	"github.com/ghuser/bizdir/services/menu/infrastructure/persistence/postgres/db"
)

const pgCheckViolation = "23514"

// MenuItemRepository implements repositories.MenuItemRepository against PostgreSQL.
type MenuItemRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewMenuItemRepository returns a MenuItemRepository backed by the given connection
// pool and event bus. The bus may be nil, in which case no events are published.
func NewMenuItemRepository(database *database.Database, bus *events.EventBus) *MenuItemRepository {
	return &MenuItemRepository{db: database, bus: bus}
}

// ListByBucket returns the bucket's items ordered by sort_order, then id.
func (r *MenuItemRepository) ListByBucket(ctx context.Context, bucket models.Bucket) ([]*models.MenuItem, error) {
	q := db.New(r.db.DB())
	rows, err := q.ListMenuItemsByBucket(ctx, bucket.String())
	if err != nil {
		return nil, fmt.Errorf("query menu items: %w", err)
	}
	items := make([]*models.MenuItem, len(rows))
	for i, row := range rows {
		items[i] = rowToMenuItem(row)
	}
	return items, nil
}

// GetByID retrieves a menu item. Returns ErrMenuItemNotFound if not found.
func (r *MenuItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	q := db.New(r.db.DB())
	row, err := q.GetMenuItem(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, menudomain.ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("query menu item: %w", err)
	}
	return rowToMenuItem(row), nil
}

// Create inserts the item at max(sort_order)+1 of its bucket in a single
// statement and publishes a created event in the same transaction.
func (r *MenuItemRepository) Create(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		order, err := q.InsertMenuItem(ctx, db.InsertMenuItemParams{
			ID:        item.ID,
			Bucket:    item.Bucket.String(),
			IsActive:  item.IsActive,
			Name:      item.Name,
			Url:       item.URL,
			Target:    item.Target,
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.UpdatedAt,
		})
		if err != nil {
			return mapWriteError("insert menu item", err)
		}
		item.Order = int(order)

		return r.publish(ctx, tx, domainevents.TopicMenuItemCreated, []uuid.UUID{item.ID}, item.Bucket)
	})
}

// Update persists the non-order fields of item. Bucket and order are left alone.
func (r *MenuItemRepository) Update(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		row, err := q.UpdateMenuItem(ctx, db.UpdateMenuItemParams{
			ID:        item.ID,
			Name:      item.Name,
			Url:       item.URL,
			Target:    item.Target,
			IsActive:  item.IsActive,
			UpdatedAt: item.UpdatedAt,
		})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return menudomain.ErrMenuItemNotFound
			}
			return mapWriteError("update menu item", err)
		}
		*item = *rowToMenuItem(row)

		return r.publish(ctx, tx, domainevents.TopicMenuItemUpdated, []uuid.UUID{item.ID}, item.Bucket)
	})
}

// Delete removes a menu item. Remaining items keep their sort_order values.
func (r *MenuItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		bucket, err := q.DeleteMenuItem(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return menudomain.ErrMenuItemNotFound
			}
			return fmt.Errorf("delete menu item: %w", err)
		}

		return r.publish(ctx, tx, domainevents.TopicMenuItemDeleted, []uuid.UUID{id}, models.Bucket(bucket))
	})
}

// Move re-inserts the item at the tail of bucket. Moving within the same
// bucket returns the item unchanged.
func (r *MenuItemRepository) Move(ctx context.Context, id uuid.UUID, bucket models.Bucket) (*models.MenuItem, error) {
	var moved *models.MenuItem
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		current, err := q.GetMenuItem(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return menudomain.ErrMenuItemNotFound
			}
			return fmt.Errorf("query menu item: %w", err)
		}
		if current.Bucket == bucket.String() {
			moved = rowToMenuItem(current)
			return nil
		}

		row, err := q.MoveMenuItem(ctx, db.MoveMenuItemParams{
			ID:        id,
			Bucket:    bucket.String(),
			UpdatedAt: time.Now().UTC(),
		})
		if err != nil {
			return mapWriteError("move menu item", err)
		}
		moved = rowToMenuItem(row)

		return r.publish(ctx, tx, domainevents.TopicMenuItemMoved, []uuid.UUID{id},
			models.Bucket(current.Bucket), bucket)
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// RewriteOrder locks the bucket's rows, checks that orderedIDs is exactly
// their id set, and writes sort_order = index for each. Any failure rolls
// back the whole transaction, so the bucket is either fully rewritten or untouched.
func (r *MenuItemRepository) RewriteOrder(ctx context.Context, bucket models.Bucket, orderedIDs []uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		current, err := q.LockBucketIDs(ctx, bucket.String())
		if err != nil {
			return fmt.Errorf("lock bucket: %w", err)
		}
		if err := domainsvcs.CheckPermutation(current, orderedIDs); err != nil {
			return fmt.Errorf("%w: %w", menudomain.ErrOrderMismatch, err)
		}

		now := time.Now().UTC()
		for i, id := range orderedIDs {
			if err := q.SetMenuItemOrder(ctx, db.SetMenuItemOrderParams{
				ID:        id,
				Bucket:    bucket.String(),
				SortOrder: int32(i),
				UpdatedAt: now,
			}); err != nil {
				return fmt.Errorf("set order for %s: %w", id, err)
			}
		}

		return r.publish(ctx, tx, domainevents.TopicMenuReordered, orderedIDs, bucket)
	})
}

func (r *MenuItemRepository) publish(ctx context.Context, tx *sql.Tx, topic string, ids []uuid.UUID, buckets ...models.Bucket) error {
	if r.bus == nil {
		return nil
	}
	names := make([]string, len(buckets))
	for i, b := range buckets {
		names[i] = b.String()
	}
	event := domainevents.BucketChangedEvent{
		EventID:    uuid.New(),
		Version:    1,
		ItemIDs:    ids,
		Buckets:    names,
		OccurredAt: time.Now().UTC(),
	}
	msg, err := events.NewMessage(ctx, event)
	if err != nil {
		return err
	}
	msg.Metadata.Set(events.MetadataEventID, event.EventID.String())
	return r.bus.PublishTx(tx, topic, msg)
}

// mapWriteError turns CHECK constraint violations (unknown bucket or target)
// into validation errors.
func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
		return fmt.Errorf("%w: %s", menudomain.ErrInvalidMenuItem, pgErr.ConstraintName)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// rowToMenuItem maps a db.MenuItem to a domain models.MenuItem.
func rowToMenuItem(row db.MenuItem) *models.MenuItem {
	return &models.MenuItem{
		ID:        row.ID,
		Bucket:    models.Bucket(row.Bucket),
		Order:     int(row.SortOrder),
		IsActive:  row.IsActive,
		Name:      row.Name,
		URL:       row.Url,
		Target:    row.Target,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
