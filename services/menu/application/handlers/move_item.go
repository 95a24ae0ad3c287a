package handlers

import (
	"net/http"

	"github.com/ghuser/bizdir/pkg/errhttp"
	"github.com/ghuser/bizdir/pkg/httpx"
	pkgvalidator "github.com/ghuser/bizdir/pkg/validator"
	appsvcs "github.com/ghuser/bizdir/services/menu/application/services"
)

// MoveItemRequest is the request body for POST /items/{id}/move.
type MoveItemRequest struct {
	Bucket string `json:"bucket" validate:"required,menubucket" example:"footer"`
} // @name MoveItemRequest

// MoveItemHandler handles POST /items/{id}/move.
type MoveItemHandler struct {
	svc          *appsvcs.Services
	isProduction bool
}

// NewMoveItemHandler returns a MoveItemHandler backed by the given services.
func NewMoveItemHandler(svc *appsvcs.Services, isProduction bool) *MoveItemHandler {
	return &MoveItemHandler{svc: svc, isProduction: isProduction}
}

// Execute moves an item to the tail of another bucket.
//
//	@Summary	Move menu item to another bucket
//	@Tags		menu
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Item ID"	Format(uuid)
//	@Param		request	body		MoveItemRequest	true	"Target bucket"
//	@Success	200		{object}	ItemResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/items/{id}/move [post]
func (h *MoveItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[MoveItemRequest](w, r)
	if !ok {
		return
	}
	item, err := h.svc.Menu.Move(r.Context(), id, req.Bucket)
	if err != nil {
		errhttp.WriteError(w, err, h.isProduction)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(item))
}
