package services

import (
	"context"

	"slugtree/internal/domain/models"
)

// WriteOperation distinguishes create from update writes for the slug builder.
type WriteOperation string

const (
	OpCreate WriteOperation = "create"
	OpUpdate WriteOperation = "update"
)

// SlugService computes and maintains document slugs.
type SlugService interface {
	// Apply runs the slug policy against a proposed write, mutating doc in
	// place: it may set Slug, PageSegment, and prepend to SlugHistory.
	// prior is the stored state before the write (nil on create).
	// Reports whether the slug changed. Apply never fails: path resolution
	// gaps degrade to empty segments rather than blocking the write.
	Apply(ctx context.Context, idx FolderIndex, doc, prior *models.Document, op WriteOperation, policy models.WritePolicy) bool
}
