package services

import (
	"context"

	"slugtree/internal/domain/models"
)

// TreeService assembles the nested folder/document tree from flat records
type TreeService interface {
	// GetTree builds and returns the full tree across all collections
	GetTree(ctx context.Context) (*models.TreeNode, error)
}
