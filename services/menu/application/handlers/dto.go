package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/bizdir/pkg/httpx"
	"github.com/ghuser/bizdir/services/menu/domain/models"
)

// ItemResponse is the wire form of a menu item.
type ItemResponse struct {
	ID        uuid.UUID `json:"id"        example:"123e4567-e89b-12d3-a456-426614174000"`
	Name      string    `json:"name"      example:"Categories"`
	URL       string    `json:"url"       example:"/categories"`
	Bucket    string    `json:"bucket"    example:"header"`
	Order     int       `json:"order"     example:"1"`
	IsActive  bool      `json:"isActive"  example:"true"`
	Target    string    `json:"target"    example:"_self"`
	CreatedAt time.Time `json:"createdAt" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time `json:"updatedAt" example:"2024-01-15T10:30:00Z"`
} // @name MenuItem

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error   string            `json:"error"             example:"menu item not found"`
	Details map[string]string `json:"details,omitempty"`
} // @name ErrorResponse

func toResponse(item *models.MenuItem) ItemResponse {
	return ItemResponse{
		ID:        item.ID,
		Name:      item.Name,
		URL:       item.URL,
		Bucket:    item.Bucket.String(),
		Order:     item.Order,
		IsActive:  item.IsActive,
		Target:    item.Target,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func toResponses(items []*models.MenuItem) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, it := range items {
		out[i] = toResponse(it)
	}
	return out
}

// pathID parses the {id} URL parameter, writing a 400 when it is not a uuid.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
