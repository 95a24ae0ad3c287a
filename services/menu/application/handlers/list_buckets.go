package handlers

import (
	"net/http"

	"github.com/ghuser/bizdir/pkg/httpx"
	appsvcs "github.com/ghuser/bizdir/services/menu/application/services"
)

// BucketsResponse lists the menu positions items can be placed in.
type BucketsResponse struct {
	Buckets []string `json:"buckets" example:"header,footer"`
} // @name BucketsResponse

// ListBucketsHandler handles GET /buckets.
type ListBucketsHandler struct {
	svc *appsvcs.Services
}

// NewListBucketsHandler returns a ListBucketsHandler backed by the given services.
func NewListBucketsHandler(svc *appsvcs.Services) *ListBucketsHandler {
	return &ListBucketsHandler{svc: svc}
}

// Execute returns the valid bucket names.
//
//	@Summary	List buckets
//	@Tags		menu
//	@Produce	json
//	@Success	200	{object}	BucketsResponse
//	@Router		/buckets [get]
func (h *ListBucketsHandler) Execute(w http.ResponseWriter, _ *http.Request) {
	buckets := h.svc.Menu.Buckets()
	names := make([]string, len(buckets))
	for i, b := range buckets {
		names[i] = b.String()
	}
	httpx.JSON(w, http.StatusOK, BucketsResponse{Buckets: names})
}
