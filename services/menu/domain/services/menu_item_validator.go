package services

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/ghuser/bizdir/services/menu/domain/models"
)

// ValidateName enforces business rules for a menu label beyond the length
// limits checked by the model.
//
// Business rules:
//   - No leading or trailing whitespace
//   - No control characters (Unicode category Cc)
//   - Must not be only whitespace characters
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name must not be only whitespace")
	}

	if name != strings.TrimSpace(name) {
		return fmt.Errorf("name must not have leading or trailing whitespace")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("name must not contain control characters")
		}
	}

	return nil
}

// ValidateURL accepts site-relative paths ("/categories") and absolute
// http, https, mailto or tel links.
func ValidateURL(raw string) error {
	if strings.ContainsAny(raw, " \t\r\n") {
		return fmt.Errorf("url must not contain whitespace")
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("url is malformed: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("url must include a host")
		}
		return nil
	case "mailto", "tel":
		if u.Opaque == "" {
			return fmt.Errorf("url must include an address")
		}
		return nil
	default:
		return fmt.Errorf("url must be a relative path or use http, https, mailto or tel")
	}
}

// ValidateMenuItem performs cross-field validation on a fully-constructed
// MenuItem before it is persisted, on create and on update alike.
func ValidateMenuItem(item *models.MenuItem) error {
	if item == nil {
		return fmt.Errorf("menu item cannot be nil")
	}

	if item.ID == uuid.Nil {
		return fmt.Errorf("id must be set")
	}

	if !item.Bucket.Valid() {
		return fmt.Errorf("unknown bucket %q", item.Bucket)
	}

	if err := ValidateName(item.Name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	if err := ValidateURL(item.URL); err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if item.Order < 0 {
		return fmt.Errorf("order must not be negative")
	}

	return nil
}
