package services

import (
	"context"

	"slugtree/internal/domain/models"
)

// RedirectService derives old-URL to current-URL pairs from slug history
type RedirectService interface {
	// BuildRedirectMap scans a collection's slug history and emits a
	// {from, to} pair for every recorded slug that differs from the
	// document's current slug. No cross-document deduplication.
	BuildRedirectMap(ctx context.Context, collection string) ([]models.Redirect, error)
}
