package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"slugtree/internal/config"
	"slugtree/internal/domain"
	"slugtree/internal/domain/models"
	"slugtree/internal/domain/repositories"
	"slugtree/internal/domain/services"
)

var noSlashName = regexp.MustCompile(`^[^/]+$`)

type mutationService struct {
	folderRepo repositories.FolderRepository
	docRepo    repositories.DocumentRepository
	resolver   services.PathResolver
	slugSvc    services.SlugService
	cascadeSvc services.CascadeService
	txManager  repositories.TransactionManager
	logger     *slog.Logger
}

// NewMutationService creates a new mutation service
func NewMutationService(
	folderRepo repositories.FolderRepository,
	docRepo repositories.DocumentRepository,
	resolver services.PathResolver,
	slugSvc services.SlugService,
	cascadeSvc services.CascadeService,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.MutationService {
	return &mutationService{
		folderRepo: folderRepo,
		docRepo:    docRepo,
		resolver:   resolver,
		slugSvc:    slugSvc,
		cascadeSvc: cascadeSvc,
		txManager:  txManager,
		logger:     logger,
	}
}

// Move relocates a folder or document to a new parent and/or sibling index.
// updateSlugs=false is an organizational move: URLs stay stable even though
// the folder reference changes.
func (s *mutationService) Move(ctx context.Context, req *services.MoveRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Type, validation.Required, validation.In(services.ItemTypeFolder, services.ItemTypeDocument)),
		validation.Field(&req.ID, validation.Required),
	); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.Type == services.ItemTypeFolder {
		return s.moveFolder(ctx, req)
	}
	return s.moveDocument(ctx, req)
}

func (s *mutationService) moveFolder(ctx context.Context, req *services.MoveRequest) error {
	folder, err := s.folderRepo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	prior := *folder

	idx, err := s.resolver.Load(ctx)
	if err != nil {
		return err
	}

	if req.NewParentID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *req.NewParentID); err != nil {
			return fmt.Errorf("target folder: %w", err)
		}
		if err := s.validateNoCircularReference(idx, req.ID, *req.NewParentID); err != nil {
			return err
		}
	}

	folder.ParentID = req.NewParentID
	folder.UpdatedAt = time.Now()
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return err
	}

	if req.NewIndex != nil {
		if err := s.placeFolderAt(ctx, folder, *req.NewIndex); err != nil {
			return err
		}
	}

	updated, err := s.cascadeSvc.FolderChanged(ctx, folder, &prior, req.UpdateSlugs, models.WritePolicy{
		ChangeReason: models.ReasonMove,
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder moved",
		"id", folder.ID,
		"new_parent_id", folder.ParentID,
		"update_slugs", req.UpdateSlugs,
		"slugs_updated", updated,
	)
	return nil
}

func (s *mutationService) moveDocument(ctx context.Context, req *services.MoveRequest) error {
	collection, doc, err := s.findDocument(ctx, req.Collection, req.ID)
	if err != nil {
		return err
	}
	prior := *doc

	idx, err := s.resolver.Load(ctx)
	if err != nil {
		return err
	}

	if req.NewParentID != nil {
		target := folderByID(idx, req.NewParentID)
		if target == nil {
			return fmt.Errorf("target folder %s: %w", *req.NewParentID, domain.ErrNotFound)
		}
		if !target.AllowsCollection(collection) {
			return fmt.Errorf("%w: folder %q does not accept %s documents", domain.ErrValidation, target.Name, collection)
		}
	}

	doc.FolderID = req.NewParentID
	doc.UpdatedAt = time.Now()

	// The explicit move operation owns the slug decision: without the opt-in,
	// the folder-changed trigger is suppressed entirely.
	policy := models.WritePolicy{SkipGeneration: true}
	if req.UpdateSlugs {
		policy = models.WritePolicy{ForceRegenerate: true, ChangeReason: models.ReasonMove}
	}
	s.slugSvc.Apply(ctx, idx, doc, &prior, services.OpUpdate, policy)

	if err := s.docRepo.Update(ctx, collection, doc); err != nil {
		return err
	}

	if req.NewIndex != nil {
		if err := s.placeDocumentAt(ctx, collection, doc, *req.NewIndex); err != nil {
			return err
		}
	}

	s.logger.Info("document moved",
		"collection", collection,
		"id", doc.ID,
		"folder_id", doc.FolderID,
		"update_slugs", req.UpdateSlugs,
		"slug", doc.Slug,
	)
	return nil
}

// Reorder reassigns sibling sort orders in one batch.
func (s *mutationService) Reorder(ctx context.Context, req *services.ReorderRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Type, validation.Required, validation.In(services.ItemTypeFolder, services.ItemTypeDocument)),
		validation.Field(&req.Items, validation.Required),
	); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for _, item := range req.Items {
			if req.Type == services.ItemTypeFolder {
				folder, err := s.folderRepo.GetByID(txCtx, item.ID)
				if err != nil {
					return err
				}
				folder.SortOrder = item.SortOrder
				folder.UpdatedAt = time.Now()
				if err := s.folderRepo.Update(txCtx, folder); err != nil {
					return err
				}
			} else {
				collection, doc, err := s.findDocument(txCtx, req.Collection, item.ID)
				if err != nil {
					return err
				}
				doc.SortOrder = item.SortOrder
				doc.UpdatedAt = time.Now()
				if err := s.docRepo.Update(txCtx, collection, doc); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Create constructs a new folder or document under a parent, auto-resolving
// name collisions with a "(copy)" / "(copy N)" suffix.
func (s *mutationService) Create(ctx context.Context, req *services.CreateRequest) (*services.CreateResult, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Type, validation.Required, validation.In(services.ItemTypeFolder, services.ItemTypeDocument)),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxNameLength),
			validation.Match(noSlashName).Error("name cannot contain slashes"),
		),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	if req.Type == services.ItemTypeFolder {
		return s.createFolder(ctx, req)
	}
	return s.createDocument(ctx, req)
}

func (s *mutationService) createFolder(ctx context.Context, req *services.CreateRequest) (*services.CreateResult, error) {
	if req.ParentID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *req.ParentID); err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
	}

	siblings, err := s.folderRepo.ListChildren(ctx, req.ParentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check sibling names: %w", err)
	}
	taken := make([]string, 0, len(siblings))
	for _, sib := range siblings {
		taken = append(taken, sib.Name)
	}

	name := uniquifyName(strings.TrimSpace(req.Name), taken)

	folder := &models.Folder{
		ID:          uuid.NewString(),
		ParentID:    req.ParentID,
		Name:        name,
		PathSegment: NormalizeSegment(name),
		SortOrder:   len(siblings),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"path_segment", folder.PathSegment,
		"parent_id", folder.ParentID,
	)

	return &services.CreateResult{ID: folder.ID, Type: services.ItemTypeFolder, Name: folder.Name}, nil
}

func (s *mutationService) createDocument(ctx context.Context, req *services.CreateRequest) (*services.CreateResult, error) {
	collection := req.Collection
	if collection == "" {
		return nil, fmt.Errorf("%w: collection is required for documents", domain.ErrValidation)
	}
	if !s.docRepo.HasCollection(collection) {
		return nil, fmt.Errorf("%w: collection %q is not configured", domain.ErrValidation, collection)
	}

	idx, err := s.resolver.Load(ctx)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent := folderByID(idx, req.ParentID)
		if parent == nil {
			return nil, fmt.Errorf("parent folder %s: %w", *req.ParentID, domain.ErrNotFound)
		}
		if !parent.AllowsCollection(collection) {
			return nil, fmt.Errorf("%w: folder %q does not accept %s documents", domain.ErrValidation, parent.Name, collection)
		}
	}

	siblings, err := s.docRepo.ListByFolder(ctx, collection, req.ParentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check sibling titles: %w", err)
	}
	taken := make([]string, 0, len(siblings))
	for _, sib := range siblings {
		taken = append(taken, sib.Title)
	}

	title := uniquifyName(strings.TrimSpace(req.Name), taken)

	doc := &models.Document{
		ID:        uuid.NewString(),
		FolderID:  req.ParentID,
		Title:     title,
		Status:    models.StatusDraft,
		SortOrder: len(siblings),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	s.slugSvc.Apply(ctx, idx, doc, nil, services.OpCreate, models.WritePolicy{})

	if err := s.docRepo.Create(ctx, collection, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"collection", collection,
		"id", doc.ID,
		"title", doc.Title,
		"slug", doc.Slug,
	)

	return &services.CreateResult{ID: doc.ID, Type: services.ItemTypeDocument, Name: doc.Title}, nil
}

// Duplicate clones a document as a fresh draft. Identity, timestamps, slug,
// segment, and history are regenerated from the uniquified title.
func (s *mutationService) Duplicate(ctx context.Context, collection, id string) (*services.DuplicateResult, error) {
	if collection == "" || id == "" {
		return nil, fmt.Errorf("%w: id and collection are required", domain.ErrValidation)
	}

	source, err := s.docRepo.GetByID(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	siblings, err := s.docRepo.ListByFolder(ctx, collection, source.FolderID)
	if err != nil {
		return nil, fmt.Errorf("failed to check sibling titles: %w", err)
	}
	taken := make([]string, 0, len(siblings))
	for _, sib := range siblings {
		taken = append(taken, sib.Title)
	}

	idx, err := s.resolver.Load(ctx)
	if err != nil {
		return nil, err
	}

	clone := &models.Document{
		ID:        uuid.NewString(),
		FolderID:  source.FolderID,
		Title:     uniquifyName(source.Title, taken),
		Status:    models.StatusDraft,
		SortOrder: len(siblings),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	s.slugSvc.Apply(ctx, idx, clone, nil, services.OpCreate, models.WritePolicy{})

	if err := s.docRepo.Create(ctx, collection, clone); err != nil {
		return nil, err
	}

	s.logger.Info("document duplicated",
		"collection", collection,
		"source_id", source.ID,
		"id", clone.ID,
		"title", clone.Title,
	)

	return &services.DuplicateResult{ID: clone.ID, Title: clone.Title}, nil
}

// Rename changes a display name. Sibling collisions are a user-facing error,
// never a silent dedup. With updateSlugs the URL segment follows the name and
// slugs regenerate.
func (s *mutationService) Rename(ctx context.Context, req *services.RenameRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Type, validation.Required, validation.In(services.ItemTypeFolder, services.ItemTypeDocument)),
		validation.Field(&req.ID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxNameLength),
			validation.Match(noSlashName).Error("name cannot contain slashes"),
		),
	); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	name := strings.TrimSpace(req.Name)

	if req.Type == services.ItemTypeFolder {
		folder, err := s.folderRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		prior := *folder

		siblings, err := s.folderRepo.ListChildren(ctx, folder.ParentID)
		if err != nil {
			return fmt.Errorf("failed to check sibling names: %w", err)
		}
		for _, sib := range siblings {
			if sib.ID != folder.ID && sib.Name == name {
				return fmt.Errorf("%w: a folder named %q already exists in this location", domain.ErrValidation, name)
			}
		}

		folder.Name = name
		if req.UpdateSlugs {
			folder.PathSegment = NormalizeSegment(name)
		}
		folder.UpdatedAt = time.Now()

		if err := s.folderRepo.Update(ctx, folder); err != nil {
			return err
		}

		updated, err := s.cascadeSvc.FolderChanged(ctx, folder, &prior, req.UpdateSlugs, models.WritePolicy{
			ChangeReason: models.ReasonRename,
		})
		if err != nil {
			return err
		}

		s.logger.Info("folder renamed",
			"id", folder.ID,
			"name", folder.Name,
			"update_slugs", req.UpdateSlugs,
			"slugs_updated", updated,
		)
		return nil
	}

	collection, doc, err := s.findDocument(ctx, req.Collection, req.ID)
	if err != nil {
		return err
	}
	prior := *doc

	siblings, err := s.docRepo.ListByFolder(ctx, collection, doc.FolderID)
	if err != nil {
		return fmt.Errorf("failed to check sibling titles: %w", err)
	}
	for _, sib := range siblings {
		if sib.ID != doc.ID && sib.Title == name {
			return fmt.Errorf("%w: a document titled %q already exists in this location", domain.ErrValidation, name)
		}
	}

	idx, err := s.resolver.Load(ctx)
	if err != nil {
		return err
	}

	doc.Title = name
	policy := models.WritePolicy{}
	if req.UpdateSlugs {
		doc.PageSegment = NormalizeSegment(name)
		policy = models.WritePolicy{ForceRegenerate: true, ChangeReason: models.ReasonRename}
	}
	doc.UpdatedAt = time.Now()

	s.slugSvc.Apply(ctx, idx, doc, &prior, services.OpUpdate, policy)

	if err := s.docRepo.Update(ctx, collection, doc); err != nil {
		return err
	}

	s.logger.Info("document renamed",
		"collection", collection,
		"id", doc.ID,
		"title", doc.Title,
		"update_slugs", req.UpdateSlugs,
		"slug", doc.Slug,
	)
	return nil
}

// SetStatus flips a document between draft and published.
func (s *mutationService) SetStatus(ctx context.Context, req *services.StatusRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ID, validation.Required),
		validation.Field(&req.Collection, validation.Required),
		validation.Field(&req.Status, validation.Required, validation.In(models.StatusDraft, models.StatusPublished)),
	); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if !s.docRepo.HasCollection(req.Collection) {
		return fmt.Errorf("%w: collection %q is not configured", domain.ErrValidation, req.Collection)
	}

	doc, err := s.docRepo.GetByID(ctx, req.Collection, req.ID)
	if err != nil {
		return err
	}

	doc.Status = req.Status
	doc.UpdatedAt = time.Now()
	if err := s.docRepo.Update(ctx, req.Collection, doc); err != nil {
		return err
	}

	s.logger.Info("document status changed",
		"collection", req.Collection,
		"id", doc.ID,
		"status", doc.Status,
	)
	return nil
}

// EditSegment sets a folder's pathSegment or a document's pageSegment
// directly. Editing a URL segment always regenerates the affected slugs;
// that is the point of the operation.
func (s *mutationService) EditSegment(ctx context.Context, req *services.SegmentRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Type, validation.Required, validation.In(services.ItemTypeFolder, services.ItemTypeDocument)),
		validation.Field(&req.ID, validation.Required),
		validation.Field(&req.Segment, validation.Required, validation.Length(1, config.MaxSegmentLength)),
	); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	segment := NormalizeSegment(req.Segment)
	if segment == "" {
		return fmt.Errorf("%w: segment %q has no URL-safe characters", domain.ErrValidation, req.Segment)
	}

	if req.Type == services.ItemTypeFolder {
		folder, err := s.folderRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		prior := *folder

		folder.PathSegment = segment
		folder.UpdatedAt = time.Now()
		if err := s.folderRepo.Update(ctx, folder); err != nil {
			return err
		}

		updated, err := s.cascadeSvc.FolderChanged(ctx, folder, &prior, true, models.WritePolicy{
			ChangeReason: models.ReasonRename,
		})
		if err != nil {
			return err
		}

		s.logger.Info("folder segment edited",
			"id", folder.ID,
			"path_segment", segment,
			"slugs_updated", updated,
		)
		return nil
	}

	collection, doc, err := s.findDocument(ctx, req.Collection, req.ID)
	if err != nil {
		return err
	}
	prior := *doc

	idx, err := s.resolver.Load(ctx)
	if err != nil {
		return err
	}

	doc.PageSegment = segment
	doc.UpdatedAt = time.Now()
	s.slugSvc.Apply(ctx, idx, doc, &prior, services.OpUpdate, models.WritePolicy{
		ForceRegenerate: true,
		ChangeReason:    models.ReasonManual,
	})

	if err := s.docRepo.Update(ctx, collection, doc); err != nil {
		return err
	}

	s.logger.Info("document segment edited",
		"collection", collection,
		"id", doc.ID,
		"page_segment", segment,
		"slug", doc.Slug,
	)
	return nil
}

// findDocument locates a document by ID. With an empty collection it searches
// every configured collection; "not in this collection" is expected and falls
// through rather than erroring.
func (s *mutationService) findDocument(ctx context.Context, collection, id string) (string, *models.Document, error) {
	if collection != "" {
		if !s.docRepo.HasCollection(collection) {
			return "", nil, fmt.Errorf("%w: collection %q is not configured", domain.ErrValidation, collection)
		}
		doc, err := s.docRepo.GetByID(ctx, collection, id)
		if err != nil {
			return "", nil, err
		}
		return collection, doc, nil
	}

	for _, c := range s.docRepo.Collections() {
		doc, err := s.docRepo.GetByID(ctx, c, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return "", nil, err
		}
		return c, doc, nil
	}
	return "", nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
}

// validateNoCircularReference rejects moving a folder into itself or any of
// its own descendants.
func (s *mutationService) validateNoCircularReference(idx services.FolderIndex, folderID, newParentID string) error {
	if folderID == newParentID {
		return fmt.Errorf("%w: cannot move a folder into itself", domain.ErrValidation)
	}
	for _, descID := range s.resolver.Descendants(idx, folderID) {
		if descID == newParentID {
			return fmt.Errorf("%w: cannot move a folder into its own descendant", domain.ErrValidation)
		}
	}
	return nil
}

// placeFolderAt inserts a folder at the given index among its siblings and
// rewrites the displaced siblings' sort orders.
func (s *mutationService) placeFolderAt(ctx context.Context, folder *models.Folder, index int) error {
	siblings, err := s.folderRepo.ListChildren(ctx, folder.ParentID)
	if err != nil {
		return err
	}

	ordered := make([]*models.Folder, 0, len(siblings))
	for i := range siblings {
		if siblings[i].ID != folder.ID {
			ordered = append(ordered, &siblings[i])
		}
	}
	index = clampIndex(index, len(ordered))
	ordered = append(ordered[:index], append([]*models.Folder{folder}, ordered[index:]...)...)

	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for i, f := range ordered {
			if f.SortOrder == i {
				continue
			}
			f.SortOrder = i
			f.UpdatedAt = time.Now()
			if err := s.folderRepo.Update(txCtx, f); err != nil {
				return err
			}
		}
		return nil
	})
}

// placeDocumentAt does the same for a document within its collection.
func (s *mutationService) placeDocumentAt(ctx context.Context, collection string, doc *models.Document, index int) error {
	siblings, err := s.docRepo.ListByFolder(ctx, collection, doc.FolderID)
	if err != nil {
		return err
	}

	ordered := make([]*models.Document, 0, len(siblings))
	for i := range siblings {
		if siblings[i].ID != doc.ID {
			ordered = append(ordered, &siblings[i])
		}
	}
	index = clampIndex(index, len(ordered))
	ordered = append(ordered[:index], append([]*models.Document{doc}, ordered[index:]...)...)

	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for i, d := range ordered {
			if d.SortOrder == i {
				continue
			}
			d.SortOrder = i
			d.UpdatedAt = time.Now()
			if err := s.docRepo.Update(txCtx, collection, d); err != nil {
				return err
			}
		}
		return nil
	})
}

func clampIndex(index, length int) int {
	if index < 0 {
		return 0
	}
	if index > length {
		return length
	}
	return index
}

// uniquifyName appends "(copy)" / "(copy N)" until the name no longer
// collides with an existing sibling name (case-insensitive).
func uniquifyName(name string, existing []string) string {
	taken := make(map[string]bool, len(existing))
	for _, e := range existing {
		taken[strings.ToLower(e)] = true
	}

	if !taken[strings.ToLower(name)] {
		return name
	}

	candidate := name + " (copy)"
	for n := 2; taken[strings.ToLower(candidate)]; n++ {
		candidate = fmt.Sprintf("%s (copy %d)", name, n)
	}
	return candidate
}
