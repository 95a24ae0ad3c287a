package models

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Link target modes for a menu item.
const (
	TargetSelf  = "_self"
	TargetBlank = "_blank"
)

const (
	maxNameLength = 255
	maxURLLength  = 2048
)

// MenuItem is the core aggregate for this bounded context: one entry in a
// navigation menu, ranked by Order within its Bucket.
type MenuItem struct {
	ID       uuid.UUID
	Bucket   Bucket
	Order    int // rank within Bucket only; assigned by the store
	IsActive bool
	Name     string
	URL      string
	Target   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMenuItem constructs a MenuItem with a generated ID and current timestamps.
// Order is left at zero; the store assigns the trailing position on save.
// An empty target defaults to TargetSelf.
func NewMenuItem(bucket Bucket, name, url, target string, isActive bool) (*MenuItem, error) {
	if !bucket.Valid() {
		return nil, fmt.Errorf("unknown bucket %q", bucket)
	}
	if target == "" {
		target = TargetSelf
	}
	now := time.Now().UTC()
	item := &MenuItem{
		ID:        uuid.New(),
		Bucket:    bucket,
		IsActive:  isActive,
		Name:      name,
		URL:       url,
		Target:    target,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := item.validateFields(); err != nil {
		return nil, err
	}
	return item, nil
}

// MenuItemPatch carries the non-order fields of an update. Nil means unchanged.
type MenuItemPatch struct {
	Name     *string
	URL      *string
	Target   *string
	IsActive *bool
}

// Empty reports whether the patch changes nothing.
func (p MenuItemPatch) Empty() bool {
	return p.Name == nil && p.URL == nil && p.Target == nil && p.IsActive == nil
}

// Apply writes the patch onto the item and bumps UpdatedAt. Bucket and Order
// are never touched here.
func (m *MenuItem) Apply(p MenuItemPatch) error {
	next := *m
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.URL != nil {
		next.URL = *p.URL
	}
	if p.Target != nil {
		next.Target = *p.Target
	}
	if p.IsActive != nil {
		next.IsActive = *p.IsActive
	}
	if err := next.validateFields(); err != nil {
		return err
	}
	next.UpdatedAt = time.Now().UTC()
	*m = next
	return nil
}

func (m *MenuItem) validateFields() error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if utf8.RuneCountInString(m.Name) > maxNameLength {
		return fmt.Errorf("name must not exceed %d characters", maxNameLength)
	}
	if m.URL == "" {
		return fmt.Errorf("url is required")
	}
	if utf8.RuneCountInString(m.URL) > maxURLLength {
		return fmt.Errorf("url must not exceed %d characters", maxURLLength)
	}
	if !IsValidTarget(m.Target) {
		return fmt.Errorf("target must be one of %s, %s", TargetSelf, TargetBlank)
	}
	return nil
}

// IsValidTarget checks if a target value is valid.
func IsValidTarget(target string) bool {
	return target == TargetSelf || target == TargetBlank
}
