package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/bizdir/pkg/app"
	"github.com/ghuser/bizdir/pkg/auth"
	"github.com/ghuser/bizdir/services/menu/application/handlers"
	appsvcs "github.com/ghuser/bizdir/services/menu/application/services"
)

// MenuRoutes wires the menu services from a and registers their endpoints on
// r. Unless the config turns it off, every endpoint requires an admin session.
func MenuRoutes(r chi.Router, a *app.Application) error {
	svcs, err := appsvcs.New(a)
	if err != nil {
		return err
	}

	var mw []func(http.Handler) http.Handler
	if a.Config == nil || a.Config.RequireAdmin {
		if a.SessionStore == nil {
			return errors.New("menu routes: admin gate enabled without a session store")
		}
		mw = append(mw, auth.RequireAdmin(a.SessionStore, a.Logger))
	}

	Mount(r, svcs, a.IsProduction(), mw...)
	return nil
}

// Mount registers the menu endpoints for svcs, behind middlewares.
func Mount(r chi.Router, svcs *appsvcs.Services, isProduction bool, middlewares ...func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(middlewares...)
		r.Get("/buckets", handlers.NewListBucketsHandler(svcs).Execute)
		r.Route("/items", func(r chi.Router) {
			r.Get("/", handlers.NewListItemsHandler(svcs, isProduction).Execute)
			r.Post("/", handlers.NewPostItemHandler(svcs, isProduction).Execute)
			r.Post("/reorder", handlers.NewReorderItemsHandler(svcs, isProduction).Execute)
			r.Get("/{id}", handlers.NewGetItemHandler(svcs, isProduction).Execute)
			r.Put("/{id}", handlers.NewPutItemHandler(svcs, isProduction).Execute)
			r.Delete("/{id}", handlers.NewDeleteItemHandler(svcs, isProduction).Execute)
			r.Post("/{id}/move", handlers.NewMoveItemHandler(svcs, isProduction).Execute)
		})
	})
}
