package services

import (
	"context"

	"slugtree/internal/domain/models"
)

// FolderIndex is an in-memory snapshot of every folder, keyed by ID.
// It is loaded once per operation so path resolution and descendant
// enumeration never issue per-node queries during a cascade.
type FolderIndex map[string]*models.Folder

// PathResolver resolves folder URL paths from parent-pointer records
type PathResolver interface {
	// Load fetches all folders into an index for one operation
	Load(ctx context.Context) (FolderIndex, error)

	// Path returns the '/'-joined ancestor segments for a folder.
	// Returns "" for a nil, unknown, or cyclic folder reference (fail-soft).
	Path(idx FolderIndex, folderID *string) string

	// Descendants returns the IDs of every folder transitively under folderID,
	// excluding folderID itself.
	Descendants(idx FolderIndex, folderID string) []string
}
