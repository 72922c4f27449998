package models

import (
	"time"
)

// Document statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

type Document struct {
	ID          string             `json:"id" db:"id"`
	Collection  string             `json:"collection,omitempty"` // Owning collection, set by the repository; not a column
	FolderID    *string            `json:"folderId" db:"folder_id"` // NULL = root level
	Title       string             `json:"title" db:"title"`
	PageSegment string             `json:"pageSegment" db:"page_segment"` // URL segment; derived from Title when empty
	Slug        string             `json:"slug" db:"slug"`                 // Full URL path, owned by the slug builder
	SlugHistory []SlugHistoryEntry `json:"slugHistory" db:"slug_history"`
	SortOrder   int                `json:"sortOrder" db:"sort_order"`
	Status      string             `json:"_status" db:"status"`
	CreatedAt   time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" db:"updated_at"`
}

// SlugHistoryEntry records a previous slug of a document.
// The history is most-recent-first and bounded (see config.MaxSlugHistoryEntries).
type SlugHistoryEntry struct {
	Slug      string       `json:"slug"`
	ChangedAt time.Time    `json:"changedAt"`
	Reason    ChangeReason `json:"reason"`
}
