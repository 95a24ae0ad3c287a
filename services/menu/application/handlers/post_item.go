package handlers

import (
	"net/http"

	"github.com/ghuser/bizdir/pkg/errhttp"
	"github.com/ghuser/bizdir/pkg/httpx"
	pkgvalidator "github.com/ghuser/bizdir/pkg/validator"
	appsvcs "github.com/ghuser/bizdir/services/menu/application/services"
)

// CreateItemRequest is the request body for POST /items. IsActive defaults
// to true and Target to "_self".
type CreateItemRequest struct {
	Name     string `json:"name"     validate:"required,max=255"           example:"Categories"`
	URL      string `json:"url"      validate:"required,max=2048,menuurl"  example:"/categories"`
	Bucket   string `json:"bucket"   validate:"required,menubucket"        example:"header"`
	IsActive *bool  `json:"isActive"                                       example:"true"`
	Target   string `json:"target"   validate:"omitempty,oneof=_self _blank" example:"_self"`
} // @name CreateItemRequest

// PostItemHandler handles POST /items.
type PostItemHandler struct {
	svc          *appsvcs.Services
	isProduction bool
}

// NewPostItemHandler returns a PostItemHandler backed by the given services.
func NewPostItemHandler(svc *appsvcs.Services, isProduction bool) *PostItemHandler {
	return &PostItemHandler{svc: svc, isProduction: isProduction}
}

// Execute creates a menu item at the tail of its bucket.
//
//	@Summary		Create menu item
//	@Description	Appends a new item to the bucket (order = max + 1, or 0 when empty)
//	@Tags			menu
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateItemRequest	true	"Menu item"
//	@Success		201		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/items [post]
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateItemRequest](w, r)
	if !ok {
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	item, err := h.svc.Menu.Create(r.Context(), appsvcs.CreateInput{
		Bucket:   req.Bucket,
		Name:     req.Name,
		URL:      req.URL,
		Target:   req.Target,
		IsActive: isActive,
	})
	if err != nil {
		errhttp.WriteError(w, err, h.isProduction)
		return
	}

	httpx.JSON(w, http.StatusCreated, toResponse(item))
}
