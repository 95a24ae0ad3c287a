package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/ghuser/bizdir/services/menu/domain/models"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid name", "Categories", false},
		{"valid with spaces", "About us", false},
		{"valid unicode", "Über uns", false},
		{"leading whitespace", " Home", true},
		{"trailing whitespace", "Home ", true},
		{"only whitespace", "   ", true},
		{"tab character", "Ho\tme", true},
		{"newline", "Ho\nme", true},
		{"null byte", "Home\x00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateName(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"/", false},
		{"/categories", false},
		{"/search?q=coffee", false},
		{"https://example.com/about", false},
		{"http://example.com", false},
		{"mailto:hello@example.com", false},
		{"tel:+15551234567", false},
		{"//evil.example.com", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
		{"https://", true},
		{"mailto:", true},
		{"categories", true},
		{"/with space", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateURL(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMenuItem(t *testing.T) {
	valid := func() *models.MenuItem {
		return &models.MenuItem{
			ID:     uuid.New(),
			Bucket: models.BucketHeader,
			Name:   "Home",
			URL:    "/",
			Target: models.TargetSelf,
		}
	}

	t.Run("nil item returns error", func(t *testing.T) {
		if err := ValidateMenuItem(nil); err == nil {
			t.Fatal("expected error for nil item")
		}
	})

	t.Run("valid item returns nil", func(t *testing.T) {
		if err := ValidateMenuItem(valid()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*models.MenuItem)
	}{
		{"nil id", func(m *models.MenuItem) { m.ID = uuid.Nil }},
		{"unknown bucket", func(m *models.MenuItem) { m.Bucket = "aside" }},
		{"padded name", func(m *models.MenuItem) { m.Name = " Home" }},
		{"bad url", func(m *models.MenuItem) { m.URL = "javascript:void(0)" }},
		{"negative order", func(m *models.MenuItem) { m.Order = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := valid()
			tt.mutate(item)
			if err := ValidateMenuItem(item); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
