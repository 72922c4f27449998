package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"slugtree/internal/domain"
	"slugtree/internal/domain/models"
	"slugtree/internal/domain/repositories"
	"slugtree/internal/domain/services"
)

type redirectService struct {
	docRepo repositories.DocumentRepository
	logger  *slog.Logger
}

// NewRedirectService creates a new redirect service
func NewRedirectService(docRepo repositories.DocumentRepository, logger *slog.Logger) services.RedirectService {
	return &redirectService{
		docRepo: docRepo,
		logger:  logger,
	}
}

// BuildRedirectMap emits a {from, to} pair for every slug-history entry whose
// recorded slug differs from the document's current slug. Multiple old URLs
// may map to the same current URL; duplicates across documents are kept.
func (s *redirectService) BuildRedirectMap(ctx context.Context, collection string) ([]models.Redirect, error) {
	if !s.docRepo.HasCollection(collection) {
		return nil, fmt.Errorf("%w: collection %q is not configured", domain.ErrValidation, collection)
	}

	docs, err := s.docRepo.ListWithSlugHistory(ctx, collection)
	if err != nil {
		return nil, err
	}

	redirects := make([]models.Redirect, 0)
	for _, doc := range docs {
		if doc.Slug == "" {
			continue
		}
		for _, entry := range doc.SlugHistory {
			if entry.Slug == "" || entry.Slug == doc.Slug {
				continue
			}
			redirects = append(redirects, models.Redirect{
				From: leadingSlash(entry.Slug),
				To:   leadingSlash(doc.Slug),
			})
		}
	}

	s.logger.Info("redirect map built",
		"collection", collection,
		"count", len(redirects),
	)

	return redirects, nil
}

func leadingSlash(slug string) string {
	return "/" + strings.TrimPrefix(slug, "/")
}
