package domain

import "errors"

// Sentinel errors for the menu domain. Use errors.Is() to check these.
var (
	// ErrMenuItemNotFound indicates the requested menu item does not exist.
	ErrMenuItemNotFound = errors.New("menu item not found")

	// ErrInvalidMenuItem indicates a create or update payload violates domain constraints.
	ErrInvalidMenuItem = errors.New("invalid menu item")

	// ErrInvalidBucket indicates a bucket name outside the closed set of menu positions.
	ErrInvalidBucket = errors.New("invalid bucket")

	// ErrOrderMismatch indicates a reorder request whose ids are not exactly the
	// current members of the bucket.
	ErrOrderMismatch = errors.New("ordered ids do not match bucket members")
)

// IsValidation reports whether err belongs to the validation class: the request
// was rejected before any mutation took place.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidMenuItem) ||
		errors.Is(err, ErrInvalidBucket) ||
		errors.Is(err, ErrOrderMismatch)
}
