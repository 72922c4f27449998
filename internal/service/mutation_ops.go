package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"slugtree/internal/config"
	"slugtree/internal/domain"
	"slugtree/internal/domain/models"
	"slugtree/internal/domain/services"
)

// Delete removes a document or a folder. Destroying a folder's contents
// requires the explicit deleteChildren opt-in; otherwise a non-empty folder
// fails loudly.
func (s *mutationService) Delete(ctx context.Context, req *services.DeleteRequest) error {
	if req.Type != services.ItemTypeFolder && req.Type != services.ItemTypeDocument {
		return fmt.Errorf("%w: type must be folder or document", domain.ErrValidation)
	}
	if req.ID == "" {
		return fmt.Errorf("%w: id is required", domain.ErrValidation)
	}

	if req.Type == services.ItemTypeDocument {
		collection, doc, err := s.findDocument(ctx, req.Collection, req.ID)
		if err != nil {
			return err
		}
		if err := s.docRepo.Delete(ctx, collection, doc.ID); err != nil {
			return err
		}
		s.logger.Info("document deleted", "collection", collection, "id", doc.ID)
		return nil
	}

	return s.deleteFolder(ctx, req.ID, req.DeleteChildren)
}

func (s *mutationService) deleteFolder(ctx context.Context, id string, deleteChildren bool) error {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	idx, err := s.resolver.Load(ctx)
	if err != nil {
		return err
	}
	descendants := s.resolver.Descendants(idx, id)
	affected := append([]string{id}, descendants...)

	if !deleteChildren {
		if len(descendants) > 0 {
			return fmt.Errorf("%w: folder contains %d subfolders", domain.ErrValidation, len(descendants))
		}
		docCount := 0
		for _, collection := range s.docRepo.Collections() {
			docs, err := s.docRepo.ListByFolder(ctx, collection, &id)
			if err != nil {
				return fmt.Errorf("failed to check documents: %w", err)
			}
			docCount += len(docs)
		}
		if docCount > 0 {
			return fmt.Errorf("%w: folder contains %d documents", domain.ErrValidation, docCount)
		}
	} else {
		// Delete every document under the subtree first, in small concurrent
		// waves so no single wave outlives a storage statement timeout.
		for _, collection := range s.docRepo.Collections() {
			docs, err := s.docRepo.ListByFolderIDs(ctx, collection, affected)
			if err != nil {
				return fmt.Errorf("failed to list documents in %s: %w", collection, err)
			}

			for start := 0; start < len(docs); start += config.DeleteBatchSize {
				end := start + config.DeleteBatchSize
				if end > len(docs) {
					end = len(docs)
				}

				var wg sync.WaitGroup
				for i := start; i < end; i++ {
					wg.Add(1)
					go func(docID string) {
						defer wg.Done()
						if err := s.docRepo.Delete(ctx, collection, docID); err != nil {
							s.logger.Warn("recursive delete: document delete failed",
								"collection", collection,
								"doc_id", docID,
								"error", err,
							)
						}
					}(docs[i].ID)
				}
				wg.Wait()
			}
		}
	}

	// Folders go deepest-first so child rows never outlive their parent.
	for _, descID := range orderByDepthDesc(idx, descendants) {
		if err := s.folderRepo.Delete(ctx, descID); err != nil {
			return fmt.Errorf("failed to delete descendant folder %s: %w", descID, err)
		}
	}
	if err := s.folderRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("folder deleted",
		"id", id,
		"name", folder.Name,
		"descendant_folders", len(descendants),
		"delete_children", deleteChildren,
	)
	return nil
}

// Regenerate forces a slug rebuild for every document under folderID, or for
// every document in every collection when folderID is nil. The bulk recovery
// path after interrupted cascades or data migrations.
func (s *mutationService) Regenerate(ctx context.Context, folderID *string) (int, error) {
	idx, err := s.resolver.Load(ctx)
	if err != nil {
		return 0, err
	}

	var affected []string
	if folderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *folderID); err != nil {
			return 0, err
		}
		affected = append([]string{*folderID}, s.resolver.Descendants(idx, *folderID)...)
	}

	total := 0
	for _, collection := range s.docRepo.Collections() {
		var docs []models.Document
		var err error
		if folderID == nil {
			docs, err = s.docRepo.GetAll(ctx, collection)
		} else {
			docs, err = s.docRepo.ListByFolderIDs(ctx, collection, affected)
		}
		if err != nil {
			s.logger.Warn("regenerate: listing documents failed",
				"collection", collection,
				"error", err,
			)
			continue
		}

		for i := range docs {
			doc := docs[i]
			prior := doc
			changed := s.slugSvc.Apply(ctx, idx, &doc, &prior, services.OpUpdate, models.WritePolicy{
				ForceRegenerate: true,
				ChangeReason:    models.ReasonRegenerate,
			})
			if !changed {
				continue
			}
			doc.UpdatedAt = time.Now()
			if err := s.docRepo.Update(ctx, collection, &doc); err != nil {
				s.logger.Warn("regenerate: document update failed",
					"collection", collection,
					"doc_id", doc.ID,
					"error", err,
				)
				continue
			}
			total++
		}
	}

	s.logger.Info("slugs regenerated", "count", total, "folder_id", folderID)
	return total, nil
}

// Migrate backfills missing folder pathSegments from display names, then
// regenerates every document slug. Intended for adopting an existing tree
// that predates URL segments.
func (s *mutationService) Migrate(ctx context.Context) (*services.MigrateResult, error) {
	folders, err := s.folderRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	migrated := make([]services.MigratedFolder, 0)
	for i := range folders {
		folder := folders[i]
		if folder.PathSegment != "" {
			continue
		}
		segment := NormalizeSegment(folder.Name)
		if segment == "" {
			s.logger.Warn("migrate: folder name yields empty segment, skipped",
				"folder_id", folder.ID,
				"name", folder.Name,
			)
			continue
		}
		folder.PathSegment = segment
		folder.UpdatedAt = time.Now()
		if err := s.folderRepo.Update(ctx, &folder); err != nil {
			return nil, fmt.Errorf("failed to backfill folder %s: %w", folder.ID, err)
		}
		migrated = append(migrated, services.MigratedFolder{
			ID:          folder.ID,
			Name:        folder.Name,
			PathSegment: folder.PathSegment,
		})
	}

	count, err := s.Regenerate(ctx, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("migration complete",
		"folders_backfilled", len(migrated),
		"documents_regenerated", count,
	)

	return &services.MigrateResult{Count: count, Folders: migrated}, nil
}

// RestoreSlug sets a document's slug back to a value recorded in its history.
// The slug builder is bypassed: the desired value is fully known and must not
// be recomputed.
func (s *mutationService) RestoreSlug(ctx context.Context, collection, id, slug string) (string, error) {
	if collection == "" || id == "" || slug == "" {
		return "", fmt.Errorf("%w: id, collection and slug are required", domain.ErrValidation)
	}

	doc, err := s.docRepo.GetByID(ctx, collection, id)
	if err != nil {
		return "", err
	}

	found := false
	remaining := make([]models.SlugHistoryEntry, 0, len(doc.SlugHistory))
	for _, entry := range doc.SlugHistory {
		if entry.Slug == slug {
			found = true
			continue // drop every occurrence of the restored slug
		}
		remaining = append(remaining, entry)
	}
	if !found {
		return "", fmt.Errorf("%w: slug %q is not in this document's history", domain.ErrValidation, slug)
	}

	if doc.Slug != "" && doc.Slug != slug {
		remaining = prependHistory(remaining, models.SlugHistoryEntry{
			Slug:      doc.Slug,
			ChangedAt: time.Now(),
			Reason:    models.ReasonRestore,
		})
	}

	doc.SlugHistory = remaining
	doc.Slug = slug
	doc.PageSegment = LastSegment(slug)
	doc.UpdatedAt = time.Now()

	if err := s.docRepo.Update(ctx, collection, doc); err != nil {
		return "", err
	}

	s.logger.Info("slug restored",
		"collection", collection,
		"id", doc.ID,
		"slug", slug,
	)
	return slug, nil
}

// orderByDepthDesc sorts folder IDs deepest-first using the index's parent
// chains, so deletions respect child-to-parent foreign keys.
func orderByDepthDesc(idx services.FolderIndex, ids []string) []string {
	depth := func(id string) int {
		d := 0
		visited := map[string]bool{}
		for f := idx[id]; f != nil && f.ParentID != nil && !visited[f.ID]; f = idx[*f.ParentID] {
			visited[f.ID] = true
			d++
			if d >= config.MaxPathDepth {
				break
			}
		}
		return d
	}

	ordered := make([]string, len(ids))
	copy(ordered, ids)
	sort.SliceStable(ordered, func(i, j int) bool {
		return depth(ordered[i]) > depth(ordered[j])
	})
	return ordered
}
