package services

import (
	"context"

	"slugtree/internal/domain/models"
)

// CascadeService propagates folder identity/position changes to the slugs of
// every document in the affected subtree.
type CascadeService interface {
	// FolderChanged is invoked after a folder write commits. prior is the
	// folder's state before the write. updateSlugs is the caller's opt-in;
	// without it no descendant URL is touched. Returns the number of
	// documents whose slug was recomputed.
	FolderChanged(ctx context.Context, folder, prior *models.Folder, updateSlugs bool, policy models.WritePolicy) (int, error)
}
