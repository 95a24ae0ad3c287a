package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	pkgcache "github.com/ghuser/bizdir/pkg/cache"
	"github.com/ghuser/bizdir/pkg/logger"
	"github.com/ghuser/bizdir/pkg/telemetry"
	menudomain "github.com/ghuser/bizdir/services/menu/domain"
	"github.com/ghuser/bizdir/services/menu/domain/models"
	"github.com/ghuser/bizdir/services/menu/domain/repositories"
	domainsvcs "github.com/ghuser/bizdir/services/menu/domain/services"
)

// Reorder outcomes recorded on the menu.reorders counter.
const (
	ReorderResultOK       = "ok"
	ReorderResultRejected = "rejected"
	ReorderResultError    = "error"
)

// CreateInput is the payload for MenuService.Create.
type CreateInput struct {
	Bucket   string
	Name     string
	URL      string
	Target   string
	IsActive bool
}

// MenuService owns the menu item lifecycle and the full-bucket reorder.
// Bucket listings are read through the Redis cache when one is configured;
// every successful mutation deletes the affected bucket keys before returning.
type MenuService struct {
	repo     repositories.MenuItemRepository
	cache    *pkgcache.BucketCache
	log      logger.Logger
	reorders metric.Int64Counter
}

// NewMenuService wires a MenuService. bucketCache may be nil.
func NewMenuService(repo repositories.MenuItemRepository, bucketCache *pkgcache.BucketCache, log logger.Logger) (*MenuService, error) {
	reorders, err := telemetry.Meter().Int64Counter("menu.reorders",
		metric.WithDescription("Full-bucket reorder requests by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create reorder counter: %w", err)
	}
	return &MenuService{repo: repo, cache: bucketCache, log: log, reorders: reorders}, nil
}

// Buckets returns the valid bucket names.
func (s *MenuService) Buckets() []models.Bucket {
	return models.Buckets()
}

// List returns the bucket's items ascending by order.
func (s *MenuService) List(ctx context.Context, bucket string) ([]*models.MenuItem, error) {
	b, err := parseBucket(bucket)
	if err != nil {
		return nil, err
	}

	if s.cache == nil {
		items, err := s.repo.ListByBucket(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("list bucket %s: %w", b, err)
		}
		return items, nil
	}

	cached, err := s.cache.Get(ctx, b.String())
	if err == nil {
		return fromCached(cached), nil
	}
	if !errors.Is(err, redis.Nil) {
		s.log.WarnContext(ctx, "bucket cache read failed", "bucket", b, "error", err)
	}
	return s.loadAndFill(ctx, b)
}

// loadAndFill reads the bucket from the store and caches it unless a
// mutation invalidated the bucket while the store was being read.
func (s *MenuService) loadAndFill(ctx context.Context, b models.Bucket) ([]*models.MenuItem, error) {
	gen, genErr := s.cache.Generation(ctx, b.String())

	items, err := s.repo.ListByBucket(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("list bucket %s: %w", b, err)
	}

	if genErr != nil {
		s.log.WarnContext(ctx, "bucket cache fill skipped", "bucket", b, "error", genErr)
		return items, nil
	}
	stored, err := s.cache.SetIfGeneration(ctx, b.String(), gen, toCached(items))
	switch {
	case err != nil:
		s.log.WarnContext(ctx, "bucket cache fill failed", "bucket", b, "error", err)
	case !stored:
		s.log.DebugContext(ctx, "bucket cache fill dropped after concurrent write", "bucket", b)
	}
	return items, nil
}

// Get returns one item or ErrMenuItemNotFound.
func (s *MenuService) Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	return item, nil
}

// Create validates in and appends a new item to the tail of its bucket.
func (s *MenuService) Create(ctx context.Context, in CreateInput) (*models.MenuItem, error) {
	b, err := parseBucket(in.Bucket)
	if err != nil {
		return nil, err
	}
	item, err := models.NewMenuItem(b, in.Name, in.URL, in.Target, in.IsActive)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", menudomain.ErrInvalidMenuItem, err)
	}
	if err := domainsvcs.ValidateMenuItem(item); err != nil {
		return nil, fmt.Errorf("%w: %w", menudomain.ErrInvalidMenuItem, err)
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create menu item: %w", err)
	}
	s.invalidate(ctx, item.Bucket)

	s.log.InfoContext(ctx, "menu item created", "item_id", item.ID, "bucket", item.Bucket, "order", item.Order)
	return item, nil
}

// Update applies patch to the item's non-order fields. An empty patch
// returns the item unchanged.
func (s *MenuService) Update(ctx context.Context, id uuid.UUID, patch models.MenuItemPatch) (*models.MenuItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	if patch.Empty() {
		return item, nil
	}
	if err := item.Apply(patch); err != nil {
		return nil, fmt.Errorf("%w: %w", menudomain.ErrInvalidMenuItem, err)
	}
	if err := domainsvcs.ValidateMenuItem(item); err != nil {
		return nil, fmt.Errorf("%w: %w", menudomain.ErrInvalidMenuItem, err)
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update menu item: %w", err)
	}
	s.invalidate(ctx, item.Bucket)
	return item, nil
}

// Delete removes the item. Siblings keep their order values.
func (s *MenuService) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get menu item: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	s.invalidate(ctx, item.Bucket)

	s.log.InfoContext(ctx, "menu item deleted", "item_id", id, "bucket", item.Bucket)
	return nil
}

// Move re-inserts the item at the tail of bucket. Moving an item to the bucket
// it is already in changes nothing.
func (s *MenuService) Move(ctx context.Context, id uuid.UUID, bucket string) (*models.MenuItem, error) {
	b, err := parseBucket(bucket)
	if err != nil {
		return nil, err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	if current.Bucket == b {
		return current, nil
	}

	moved, err := s.repo.Move(ctx, id, b)
	if err != nil {
		return nil, fmt.Errorf("move menu item: %w", err)
	}
	s.invalidate(ctx, current.Bucket, b)

	s.log.InfoContext(ctx, "menu item moved", "item_id", id, "from", current.Bucket, "to", b, "order", moved.Order)
	return moved, nil
}

// Reorder rewrites the bucket so that orderedIDs[i] has order i. orderedIDs
// must be exactly the bucket's current members; otherwise nothing changes and
// a validation error is returned. Concurrent reorders of the same bucket are
// last-writer-wins.
func (s *MenuService) Reorder(ctx context.Context, bucket string, orderedIDs []uuid.UUID) (err error) {
	ctx, span := telemetry.Tracer().Start(ctx, "MenuService.Reorder")
	defer span.End()
	b, parseErr := parseBucket(bucket)
	bucketTag := b.String()
	if parseErr != nil {
		bucketTag = "invalid"
	}
	span.SetAttributes(attribute.String("menu.bucket", bucketTag), attribute.Int("menu.items", len(orderedIDs)))

	defer func() {
		result := ReorderResultOK
		switch {
		case menudomain.IsValidation(err):
			result = ReorderResultRejected
		case err != nil:
			result = ReorderResultError
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		s.reorders.Add(ctx, 1, metric.WithAttributes(
			attribute.String("bucket", bucketTag),
			attribute.String("result", result),
		))
	}()

	if parseErr != nil {
		return parseErr
	}
	if err := domainsvcs.CheckDistinct(orderedIDs); err != nil {
		return fmt.Errorf("%w: %w", menudomain.ErrOrderMismatch, err)
	}

	if err := s.repo.RewriteOrder(ctx, b, orderedIDs); err != nil {
		if menudomain.IsValidation(err) {
			s.log.WarnContext(ctx, "reorder rejected", "bucket", b, "error", err)
			return err
		}
		return fmt.Errorf("reorder bucket %s: %w", b, err)
	}
	s.invalidate(ctx, b)

	s.log.InfoContext(ctx, "bucket reordered", "bucket", b, "items", len(orderedIDs))
	return nil
}

// WarmBucket loads the bucket from the store into the cache.
func (s *MenuService) WarmBucket(ctx context.Context, bucket string) error {
	if s.cache == nil {
		return nil
	}
	b, err := parseBucket(bucket)
	if err != nil {
		return err
	}
	_, err = s.loadAndFill(ctx, b)
	return err
}

func (s *MenuService) invalidate(ctx context.Context, buckets ...models.Bucket) {
	if s.cache == nil {
		return
	}
	names := make([]string, len(buckets))
	for i, b := range buckets {
		names[i] = b.String()
	}
	if err := s.cache.Invalidate(ctx, names...); err != nil {
		s.log.ErrorContext(ctx, "bucket cache invalidation failed", "buckets", names, "error", err)
	}
}

func parseBucket(s string) (models.Bucket, error) {
	b, err := models.ParseBucket(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", menudomain.ErrInvalidBucket, err)
	}
	return b, nil
}

func toCached(items []*models.MenuItem) []pkgcache.CachedMenuItem {
	out := make([]pkgcache.CachedMenuItem, len(items))
	for i, it := range items {
		out[i] = pkgcache.CachedMenuItem{
			ID:        it.ID,
			Bucket:    it.Bucket.String(),
			Order:     it.Order,
			IsActive:  it.IsActive,
			Name:      it.Name,
			URL:       it.URL,
			Target:    it.Target,
			CreatedAt: it.CreatedAt,
			UpdatedAt: it.UpdatedAt,
		}
	}
	return out
}

func fromCached(cached []pkgcache.CachedMenuItem) []*models.MenuItem {
	out := make([]*models.MenuItem, len(cached))
	for i, c := range cached {
		out[i] = &models.MenuItem{
			ID:        c.ID,
			Bucket:    models.Bucket(c.Bucket),
			Order:     c.Order,
			IsActive:  c.IsActive,
			Name:      c.Name,
			URL:       c.URL,
			Target:    c.Target,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
	}
	return out
}
