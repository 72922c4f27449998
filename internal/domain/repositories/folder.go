package repositories

import (
	"context"

	"slugtree/internal/domain/models"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create creates a new folder
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// Update updates a folder
	Update(ctx context.Context, folder *models.Folder) error

	// Delete deletes a folder
	Delete(ctx context.Context, id string) error

	// ListChildren lists immediate child folders
	ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error)

	// GetAll retrieves every folder (flat list)
	GetAll(ctx context.Context) ([]models.Folder, error)
}
