package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ghuser/bizdir/pkg/errhttp"
	pkgvalidator "github.com/ghuser/bizdir/pkg/validator"
	appsvcs "github.com/ghuser/bizdir/services/menu/application/services"
)

// ReorderRequest is the request body for POST /items/reorder. OrderedIDs must
// list every item of the bucket exactly once.
type ReorderRequest struct {
	Bucket     string      `json:"bucket"     validate:"required,menubucket" example:"header"`
	OrderedIDs []uuid.UUID `json:"orderedIds" validate:"required"`
} // @name ReorderRequest

// ReorderItemsHandler handles POST /items/reorder.
type ReorderItemsHandler struct {
	svc          *appsvcs.Services
	isProduction bool
}

// NewReorderItemsHandler returns a ReorderItemsHandler backed by the given services.
func NewReorderItemsHandler(svc *appsvcs.Services, isProduction bool) *ReorderItemsHandler {
	return &ReorderItemsHandler{svc: svc, isProduction: isProduction}
}

// Execute rewrites the order of a whole bucket in one transaction.
//
//	@Summary		Reorder bucket
//	@Description	Sets order = index for every id. The list must be an exact permutation of the bucket's members.
//	@Tags			menu
//	@Accept			json
//	@Param			request	body	ReorderRequest	true	"New order"
//	@Success		200
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/items/reorder [post]
func (h *ReorderItemsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[ReorderRequest](w, r)
	if !ok {
		return
	}
	if err := h.svc.Menu.Reorder(r.Context(), req.Bucket, req.OrderedIDs); err != nil {
		errhttp.WriteError(w, err, h.isProduction)
		return
	}
	w.WriteHeader(http.StatusOK)
}
