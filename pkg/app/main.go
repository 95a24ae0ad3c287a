// Package app carries the shared infrastructure handed to every bounded
// context when its routes or subscribers are registered.
package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/bizdir/pkg/cache"
	"github.com/ghuser/bizdir/pkg/config"
	"github.com/ghuser/bizdir/pkg/database"
	"github.com/ghuser/bizdir/pkg/events"
	"github.com/ghuser/bizdir/pkg/logger"
)

// Application holds the process-wide dependencies. Logger is trace-aware:
// use the Context methods while serving a request or handling a message.
//
// Redis and EventBus may be nil (the bucket cache and event publishing are
// then disabled). SessionStore is nil in the worker.
type Application struct {
	Config       *config.Config
	Db           *database.Database
	Logger       logger.Logger
	EventBus     *events.EventBus
	Redis        *cache.RedisClient
	SessionStore sessions.Store
}

// IsProduction reports whether error details must be hidden from clients.
func (a *Application) IsProduction() bool {
	return a.Config != nil && a.Config.Environment == config.EnvProduction
}
