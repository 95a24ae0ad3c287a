package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics published by the menu repository.
const (
	TopicMenuItemCreated = "menu.item_created"
	TopicMenuItemUpdated = "menu.item_updated"
	TopicMenuItemDeleted = "menu.item_deleted"
	TopicMenuItemMoved   = "menu.item_moved"
	TopicMenuReordered   = "menu.reordered"
)

// Topics lists every menu topic, for subscribers that handle them uniformly.
func Topics() []string {
	return []string{
		TopicMenuItemCreated,
		TopicMenuItemUpdated,
		TopicMenuItemDeleted,
		TopicMenuItemMoved,
		TopicMenuReordered,
	}
}

// BucketChangedEvent is published whenever the contents or order of one or
// more buckets change. Consumers use Buckets to invalidate read models.
type BucketChangedEvent struct {
	EventID    uuid.UUID   `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int         `json:"version"`  // Schema version; increment on breaking changes
	ItemIDs    []uuid.UUID `json:"item_ids"`
	Buckets    []string    `json:"buckets"`
	OccurredAt time.Time   `json:"occurred_at"`
}
