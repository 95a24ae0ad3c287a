// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/bizdir/pkg/httpx"
	menudomain "github.com/ghuser/bizdir/services/menu/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors; in production
// the 500 message is replaced with the generic status text.
func WriteError(w http.ResponseWriter, err error, isProduction bool) {
	status := mapErrorToStatus(err)
	httpx.JSONError(w, status, httpx.SafeError(err, status, isProduction))
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, menudomain.ErrMenuItemNotFound):
		return http.StatusNotFound // 404
	case menudomain.IsValidation(err):
		return http.StatusBadRequest // 400
	default:
		return http.StatusInternalServerError // 500
	}
}
