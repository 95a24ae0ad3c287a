package handlers

import (
	"net/http"

	"github.com/ghuser/bizdir/pkg/errhttp"
	"github.com/ghuser/bizdir/pkg/httpx"
	appsvcs "github.com/ghuser/bizdir/services/menu/application/services"
)

// GetItemHandler handles GET /items/{id}.
type GetItemHandler struct {
	svc          *appsvcs.Services
	isProduction bool
}

// NewGetItemHandler returns a GetItemHandler backed by the given services.
func NewGetItemHandler(svc *appsvcs.Services, isProduction bool) *GetItemHandler {
	return &GetItemHandler{svc: svc, isProduction: isProduction}
}

// Execute returns one menu item.
//
//	@Summary	Get menu item
//	@Tags		menu
//	@Produce	json
//	@Param		id	path		string	true	"Item ID"	Format(uuid)
//	@Success	200	{object}	ItemResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/items/{id} [get]
func (h *GetItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.svc.Menu.Get(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err, h.isProduction)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(item))
}
