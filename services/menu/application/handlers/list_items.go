package handlers

import (
	"net/http"

	"github.com/ghuser/bizdir/pkg/errhttp"
	"github.com/ghuser/bizdir/pkg/httpx"
	appsvcs "github.com/ghuser/bizdir/services/menu/application/services"
)

// ListItemsHandler handles GET /items?bucket=.
type ListItemsHandler struct {
	svc          *appsvcs.Services
	isProduction bool
}

// NewListItemsHandler returns a ListItemsHandler backed by the given services.
func NewListItemsHandler(svc *appsvcs.Services, isProduction bool) *ListItemsHandler {
	return &ListItemsHandler{svc: svc, isProduction: isProduction}
}

// Execute lists one bucket in display order.
//
//	@Summary		List menu items
//	@Description	Returns the items of one bucket ascending by order
//	@Tags			menu
//	@Produce		json
//	@Param			bucket	query		string	true	"Bucket name"	Enums(header, footer, footer-column-1, footer-column-2)
//	@Success		200		{array}		ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/items [get]
func (h *ListItemsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Menu.List(r.Context(), r.URL.Query().Get("bucket"))
	if err != nil {
		errhttp.WriteError(w, err, h.isProduction)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponses(items))
}
