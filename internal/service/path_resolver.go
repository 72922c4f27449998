package service

import (
	"context"
	"log/slog"

	"slugtree/internal/config"
	"slugtree/internal/domain/models"
	"slugtree/internal/domain/repositories"
	"slugtree/internal/domain/services"
)

type pathResolver struct {
	folderRepo repositories.FolderRepository
	logger     *slog.Logger
}

// NewPathResolver creates a new path resolver
func NewPathResolver(folderRepo repositories.FolderRepository, logger *slog.Logger) services.PathResolver {
	return &pathResolver{
		folderRepo: folderRepo,
		logger:     logger,
	}
}

// Load fetches all folders once into an in-memory index. Cascades and slug
// rebuilds walk this snapshot instead of issuing a query per tree level.
func (r *pathResolver) Load(ctx context.Context) (services.FolderIndex, error) {
	folders, err := r.folderRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	idx := make(services.FolderIndex, len(folders))
	for i := range folders {
		idx[folders[i].ID] = &folders[i]
	}
	return idx, nil
}

// Path walks parent pointers upward from folderID, joining non-empty
// pathSegments root-first. Fail-soft: a nil or dangling reference
// yields "", a folder without a segment contributes nothing, and a cycle or
// over-deep chain stops the walk with the path accumulated so far. A document
// write must never be blocked by broken folder data.
func (r *pathResolver) Path(idx services.FolderIndex, folderID *string) string {
	if folderID == nil || *folderID == "" {
		return ""
	}

	folder, ok := idx[*folderID]
	if !ok {
		r.logger.Warn("path resolution: folder not found, treating as empty", "folder_id", *folderID)
		return ""
	}

	// Collect segments leaf-to-root, guarded against cycles and unbounded depth
	visited := make(map[string]bool)
	var segments []string
	for depth := 0; folder != nil; depth++ {
		if depth >= config.MaxPathDepth || visited[folder.ID] {
			r.logger.Warn("path resolution: cycle or excessive depth, truncating",
				"folder_id", folder.ID,
				"depth", depth,
			)
			break
		}
		visited[folder.ID] = true

		if seg := folder.PathSegment; seg != "" {
			segments = append(segments, seg)
		}

		if folder.ParentID == nil {
			break
		}
		parent, ok := idx[*folder.ParentID]
		if !ok {
			r.logger.Warn("path resolution: dangling parent reference",
				"folder_id", folder.ID,
				"parent_id", *folder.ParentID,
			)
			break
		}
		folder = parent
	}

	// Reverse into root-first order and join
	path := ""
	for i := len(segments) - 1; i >= 0; i-- {
		path = JoinPath(path, segments[i])
	}
	return path
}

// Descendants returns every folder transitively under folderID via BFS over
// the index, excluding folderID itself. Visited tracking keeps the walk
// bounded even if corrupted data forms a cycle.
func (r *pathResolver) Descendants(idx services.FolderIndex, folderID string) []string {
	children := make(map[string][]string, len(idx))
	for id, f := range idx {
		if f.ParentID != nil {
			children[*f.ParentID] = append(children[*f.ParentID], id)
		}
	}

	var result []string
	visited := map[string]bool{folderID: true}
	queue := []string{folderID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, childID := range children[current] {
			if visited[childID] {
				continue
			}
			visited[childID] = true
			result = append(result, childID)
			queue = append(queue, childID)
		}
	}
	return result
}

// folderByID is a small helper shared by services that already hold an index.
func folderByID(idx services.FolderIndex, id *string) *models.Folder {
	if id == nil {
		return nil
	}
	return idx[*id]
}
