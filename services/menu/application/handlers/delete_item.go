package handlers

import (
	"net/http"

	"github.com/ghuser/bizdir/pkg/errhttp"
	"github.com/ghuser/bizdir/pkg/httpx"
	appsvcs "github.com/ghuser/bizdir/services/menu/application/services"
)

// DeleteItemHandler handles DELETE /items/{id}.
type DeleteItemHandler struct {
	svc          *appsvcs.Services
	isProduction bool
}

// NewDeleteItemHandler returns a DeleteItemHandler backed by the given services.
func NewDeleteItemHandler(svc *appsvcs.Services, isProduction bool) *DeleteItemHandler {
	return &DeleteItemHandler{svc: svc, isProduction: isProduction}
}

// Execute deletes a menu item. The remaining items keep their order values.
//
//	@Summary	Delete menu item
//	@Tags		menu
//	@Param		id	path	string	true	"Item ID"	Format(uuid)
//	@Success	204
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/items/{id} [delete]
func (h *DeleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Menu.Delete(r.Context(), id); err != nil {
		errhttp.WriteError(w, err, h.isProduction)
		return
	}
	httpx.NoContent(w)
}
