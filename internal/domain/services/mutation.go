package services

import (
	"context"
)

// Tree item types accepted by the mutation endpoints
const (
	ItemTypeFolder   = "folder"
	ItemTypeDocument = "document"
)

// MoveRequest relocates a folder or document to a new parent and/or index.
type MoveRequest struct {
	Type        string  `json:"type"`
	ID          string  `json:"id"`
	NewParentID *string `json:"newParentId"`
	NewIndex    *int    `json:"newIndex,omitempty"`
	UpdateSlugs bool    `json:"updateSlugs"`
	Collection  string  `json:"collection,omitempty"` // documents only; empty = search all
}

// ReorderItem is one (id, sortOrder) assignment within a reorder batch.
type ReorderItem struct {
	ID        string `json:"id"`
	SortOrder int    `json:"sortOrder"`
}

// ReorderRequest reassigns sibling sort orders.
type ReorderRequest struct {
	Type       string        `json:"type"`
	Collection string        `json:"collection,omitempty"`
	Items      []ReorderItem `json:"items"`
}

// CreateRequest constructs a new folder or document under a parent.
type CreateRequest struct {
	Type       string  `json:"type"`
	ParentID   *string `json:"parentId"`
	Name       string  `json:"name"`
	Collection string  `json:"collection,omitempty"` // documents only
}

// CreateResult reports the created item.
type CreateResult struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// DuplicateResult reports the cloned document.
type DuplicateResult struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// DeleteRequest removes a folder or document.
type DeleteRequest struct {
	Type           string
	ID             string
	Collection     string // documents only; empty = search all
	DeleteChildren bool   // folders only
}

// RenameRequest changes a display name, optionally regenerating slugs.
type RenameRequest struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Collection  string `json:"collection,omitempty"`
	UpdateSlugs bool   `json:"updateSlugs"`
}

// StatusRequest flips a document between draft and published.
type StatusRequest struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
	Status     string `json:"status"`
}

// SegmentRequest sets a folder's pathSegment or a document's pageSegment.
type SegmentRequest struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Segment    string `json:"segment"`
	Collection string `json:"collection,omitempty"`
}

// MigratedFolder is one folder backfilled by Migrate.
type MigratedFolder struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PathSegment string `json:"pathSegment"`
}

// MigrateResult reports a migration run.
type MigrateResult struct {
	Count   int              `json:"count"`
	Folders []MigratedFolder `json:"folders"`
}

// MutationService orchestrates tree mutations and drives the slug policy
// from caller intent.
type MutationService interface {
	Move(ctx context.Context, req *MoveRequest) error
	Reorder(ctx context.Context, req *ReorderRequest) error
	Create(ctx context.Context, req *CreateRequest) (*CreateResult, error)
	Duplicate(ctx context.Context, collection, id string) (*DuplicateResult, error)
	Delete(ctx context.Context, req *DeleteRequest) error
	Rename(ctx context.Context, req *RenameRequest) error
	SetStatus(ctx context.Context, req *StatusRequest) error
	EditSegment(ctx context.Context, req *SegmentRequest) error

	// Regenerate recomputes slugs for every document under folderID
	// (nil = every document in every collection). Returns the count updated.
	Regenerate(ctx context.Context, folderID *string) (int, error)

	// Migrate backfills missing folder pathSegments from names, then
	// regenerates every document slug.
	Migrate(ctx context.Context) (*MigrateResult, error)

	// RestoreSlug sets a document's slug to a value from its history.
	// Returns the restored slug.
	RestoreSlug(ctx context.Context, collection, id, slug string) (string, error)
}
