package service

import (
	"context"
	"log/slog"
	"sync"

	"slugtree/internal/config"
	"slugtree/internal/domain/models"
	"slugtree/internal/domain/repositories"
	"slugtree/internal/domain/services"
)

type cascadeService struct {
	resolver services.PathResolver
	slugSvc  services.SlugService
	docRepo  repositories.DocumentRepository
	logger   *slog.Logger
}

// NewCascadeService creates a new cascade service
func NewCascadeService(
	resolver services.PathResolver,
	slugSvc services.SlugService,
	docRepo repositories.DocumentRepository,
	logger *slog.Logger,
) services.CascadeService {
	return &cascadeService{
		resolver: resolver,
		slugSvc:  slugSvc,
		docRepo:  docRepo,
		logger:   logger,
	}
}

// FolderChanged recomputes slugs for every document transitively under a
// changed folder. Writes issued here carry Cascading=true, so a cascade can
// never re-trigger itself.
//
// Per-document failures are logged and skipped: the batch has no atomicity,
// and a partially-applied cascade is recoverable via Regenerate.
func (s *cascadeService) FolderChanged(ctx context.Context, folder, prior *models.Folder, updateSlugs bool, policy models.WritePolicy) (int, error) {
	// Guard 1: a cascading write never starts another cascade.
	if policy.Cascading {
		return 0, nil
	}

	// Guard 2: descendant URLs are only rewritten on explicit opt-in.
	if !updateSlugs {
		return 0, nil
	}

	// Trigger only on identity/position change. A pure display rename or a
	// sortOrder shuffle leaves every URL alone.
	if prior == nil {
		return 0, nil
	}
	if folder.PathSegment == prior.PathSegment && sameFolderRef(folder.ParentID, prior.ParentID) {
		return 0, nil
	}

	idx, err := s.resolver.Load(ctx)
	if err != nil {
		return 0, err
	}

	affected := append(s.resolver.Descendants(idx, folder.ID), folder.ID)

	s.logger.Info("cascade started",
		"folder_id", folder.ID,
		"affected_folders", len(affected),
		"reason", policy.Reason(),
	)

	total := 0
	for _, collection := range s.docRepo.Collections() {
		docs, err := s.docRepo.ListByFolderIDs(ctx, collection, affected)
		if err != nil {
			// One collection failing must not stop the others.
			s.logger.Warn("cascade: listing documents failed",
				"collection", collection,
				"error", err,
			)
			continue
		}

		total += s.rebuildBatch(ctx, idx, collection, docs, policy.Reason())
	}

	s.logger.Info("cascade finished", "folder_id", folder.ID, "updated", total)
	return total, nil
}

// rebuildBatch forces a slug rebuild for each document in bounded concurrent
// waves. Wave sizing keeps individual storage writes short; ordering across
// documents is not significant.
func (s *cascadeService) rebuildBatch(ctx context.Context, idx services.FolderIndex, collection string, docs []models.Document, reason models.ChangeReason) int {
	updated := 0
	var mu sync.Mutex

	for start := 0; start < len(docs); start += config.CascadeBatchSize {
		end := start + config.CascadeBatchSize
		if end > len(docs) {
			end = len(docs)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(doc models.Document) {
				defer wg.Done()

				prior := doc
				changed := s.slugSvc.Apply(ctx, idx, &doc, &prior, services.OpUpdate, models.WritePolicy{
					ForceRegenerate: true,
					Cascading:       true,
					ChangeReason:    reason,
				})
				if !changed {
					return
				}

				if err := s.docRepo.Update(ctx, collection, &doc); err != nil {
					s.logger.Warn("cascade: document update failed",
						"collection", collection,
						"doc_id", doc.ID,
						"error", err,
					)
					return
				}

				mu.Lock()
				updated++
				mu.Unlock()
			}(docs[i])
		}
		wg.Wait()
	}

	return updated
}
