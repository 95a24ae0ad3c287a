package services

import (
	"github.com/ghuser/bizdir/pkg/app"
	"github.com/ghuser/bizdir/pkg/cache"
	"github.com/ghuser/bizdir/services/menu/infrastructure/persistence/postgres"
)

// Services is the application-layer container for the menu bounded context.
type Services struct {
	Menu *MenuService
}

// New wires the menu services against Postgres and, when Redis is
// configured, the bucket cache.
func New(a *app.Application) (*Services, error) {
	repo := postgres.NewMenuItemRepository(a.Db, a.EventBus)

	var bucketCache *cache.BucketCache
	if a.Redis != nil {
		ttl := cache.DefaultBucketCacheTTL
		if a.Config != nil {
			ttl = a.Config.BucketCacheTTL
		}
		bucketCache = cache.NewBucketCache(a.Redis, ttl)
	}

	menu, err := NewMenuService(repo, bucketCache, a.Logger)
	if err != nil {
		return nil, err
	}
	return &Services{Menu: menu}, nil
}
