package service

import (
	"context"
	"log/slog"
	"time"

	"slugtree/internal/config"
	"slugtree/internal/domain/models"
	"slugtree/internal/domain/services"
)

type slugService struct {
	resolver services.PathResolver
	logger   *slog.Logger
	now      func() time.Time
}

// NewSlugService creates a new slug service
func NewSlugService(resolver services.PathResolver, logger *slog.Logger) services.SlugService {
	return &slugService{
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
	}
}

// Apply runs the slug policy for one write. It is the only code that assigns
// Document.Slug or appends to SlugHistory.
//
// The stability rule: an ordinary update (no force flag, folder unchanged,
// segment unchanged) never rewrites an existing slug. Content edits must not
// silently break live URLs.
func (s *slugService) Apply(ctx context.Context, idx services.FolderIndex, doc, prior *models.Document, op services.WriteOperation, policy models.WritePolicy) bool {
	if policy.SkipGeneration {
		return false
	}

	if op == services.OpUpdate && prior != nil {
		folderChanged := !sameFolderRef(doc.FolderID, prior.FolderID)
		segmentChanged := doc.PageSegment != prior.PageSegment

		if !policy.ForceRegenerate && !folderChanged && !segmentChanged && prior.Slug != "" {
			doc.Slug = prior.Slug
			return false
		}
	}

	// Local segment: explicit pageSegment, else derived from title.
	segment := NormalizeSegment(doc.PageSegment)
	if segment == "" {
		segment = NormalizeSegment(doc.Title)
	}
	if segment == "" {
		// Nothing to build from. Not an error: leave the slug untouched
		// rather than block the save.
		s.logger.Debug("slug build skipped: no resolvable segment", "doc_id", doc.ID)
		return false
	}

	// Write back the normalized segment so later stability checks compare
	// like with like.
	doc.PageSegment = segment

	path := s.resolver.Path(idx, doc.FolderID)
	newSlug := JoinPath(path, segment)

	priorSlug := ""
	if prior != nil {
		priorSlug = prior.Slug
	}

	doc.Slug = newSlug
	if newSlug == priorSlug {
		return false
	}

	// Record the outgoing slug, most-recent-first, bounded window.
	if op == services.OpUpdate && priorSlug != "" {
		doc.SlugHistory = prependHistory(doc.SlugHistory, models.SlugHistoryEntry{
			Slug:      priorSlug,
			ChangedAt: s.now(),
			Reason:    policy.Reason(),
		})
	}

	s.logger.Debug("slug computed",
		"doc_id", doc.ID,
		"slug", newSlug,
		"prior_slug", priorSlug,
		"reason", policy.Reason(),
	)

	return true
}

// prependHistory inserts an entry at the front and truncates to the bounded
// window, dropping the oldest entries first.
func prependHistory(history []models.SlugHistoryEntry, entry models.SlugHistoryEntry) []models.SlugHistoryEntry {
	updated := make([]models.SlugHistoryEntry, 0, len(history)+1)
	updated = append(updated, entry)
	updated = append(updated, history...)
	if len(updated) > config.MaxSlugHistoryEntries {
		updated = updated[:config.MaxSlugHistoryEntries]
	}
	return updated
}

// sameFolderRef compares two nullable folder references.
func sameFolderRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
