package handlers

import (
	"net/http"

	"github.com/ghuser/bizdir/pkg/errhttp"
	"github.com/ghuser/bizdir/pkg/httpx"
	pkgvalidator "github.com/ghuser/bizdir/pkg/validator"
	appsvcs "github.com/ghuser/bizdir/services/menu/application/services"
	"github.com/ghuser/bizdir/services/menu/domain/models"
)

// UpdateItemRequest is the request body for PUT /items/{id}. Omitted fields
// are left unchanged; bucket and order cannot be set here.
type UpdateItemRequest struct {
	Name     *string `json:"name,omitempty"     validate:"omitempty,min=1,max=255"              example:"Categories"`
	URL      *string `json:"url,omitempty"      validate:"omitempty,min=1,max=2048,menuurl"     example:"/categories"`
	IsActive *bool   `json:"isActive,omitempty"                                                  example:"false"`
	Target   *string `json:"target,omitempty"   validate:"omitempty,oneof=_self _blank"         example:"_blank"`
} // @name UpdateItemRequest

// PutItemHandler handles PUT /items/{id}.
type PutItemHandler struct {
	svc          *appsvcs.Services
	isProduction bool
}

// NewPutItemHandler returns a PutItemHandler backed by the given services.
func NewPutItemHandler(svc *appsvcs.Services, isProduction bool) *PutItemHandler {
	return &PutItemHandler{svc: svc, isProduction: isProduction}
}

// Execute updates the non-order fields of a menu item.
//
//	@Summary	Update menu item
//	@Tags		menu
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Item ID"	Format(uuid)
//	@Param		request	body		UpdateItemRequest	true	"Fields to change"
//	@Success	200		{object}	ItemResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/items/{id} [put]
func (h *PutItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Menu.Update(r.Context(), id, models.MenuItemPatch{
		Name:     req.Name,
		URL:      req.URL,
		Target:   req.Target,
		IsActive: req.IsActive,
	})
	if err != nil {
		errhttp.WriteError(w, err, h.isProduction)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(item))
}
