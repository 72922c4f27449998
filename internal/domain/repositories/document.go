package repositories

import (
	"context"

	"slugtree/internal/domain/models"
)

// DocumentRepository defines data access operations for documents.
// Every method is scoped by collection name; the repository maps collection
// names to their backing tables.
type DocumentRepository interface {
	// Collections returns the configured collections present in the store.
	Collections() []string

	// HasCollection reports whether the named collection is configured.
	HasCollection(collection string) bool

	// Create creates a new document
	Create(ctx context.Context, collection string, doc *models.Document) error

	// GetByID retrieves a document by ID
	GetByID(ctx context.Context, collection, id string) (*models.Document, error)

	// Update updates a document
	Update(ctx context.Context, collection string, doc *models.Document) error

	// Delete deletes a document
	Delete(ctx context.Context, collection, id string) error

	// ListByFolder lists documents directly inside a folder (nil = root)
	ListByFolder(ctx context.Context, collection string, folderID *string) ([]models.Document, error)

	// ListByFolderIDs lists documents whose folder is any of the given IDs
	ListByFolderIDs(ctx context.Context, collection string, folderIDs []string) ([]models.Document, error)

	// GetAll retrieves every document in the collection
	GetAll(ctx context.Context, collection string) ([]models.Document, error)

	// ListWithSlugHistory lists documents with at least one slug history entry
	ListWithSlugHistory(ctx context.Context, collection string) ([]models.Document, error)
}
