package service

import (
	"context"
	"log/slog"
	"sort"

	"slugtree/internal/domain/models"
	"slugtree/internal/domain/repositories"
	"slugtree/internal/domain/services"
)

// treeService implements the TreeService interface
type treeService struct {
	folderRepo repositories.FolderRepository
	docRepo    repositories.DocumentRepository
	logger     *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	folderRepo repositories.FolderRepository,
	docRepo repositories.DocumentRepository,
	logger *slog.Logger,
) services.TreeService {
	return &treeService{
		folderRepo: folderRepo,
		docRepo:    docRepo,
		logger:     logger,
	}
}

// GetTree builds and returns the nested folder/document tree across all
// configured collections, using a multi-pass build over the flat records.
func (s *treeService) GetTree(ctx context.Context) (*models.TreeNode, error) {
	allFolders, err := s.folderRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	// First pass: create all folder nodes
	folderMap := make(map[string]*models.FolderTreeNode)
	var rootFolderIDs []string
	for _, folder := range allFolders {
		folderMap[folder.ID] = &models.FolderTreeNode{
			ID:          folder.ID,
			Name:        folder.Name,
			PathSegment: folder.PathSegment,
			ParentID:    folder.ParentID,
			SortOrder:   folder.SortOrder,
			FolderTypes: folder.FolderTypes,
			CreatedAt:   folder.CreatedAt,
			Folders:     []*models.FolderTreeNode{},
			Documents:   []models.DocumentTreeNode{},
		}
	}

	// Second pass: nest folders by connecting children to parents
	for _, folder := range allFolders {
		node := folderMap[folder.ID]
		if folder.ParentID == nil {
			rootFolderIDs = append(rootFolderIDs, folder.ID)
		} else if parent, exists := folderMap[*folder.ParentID]; exists {
			parent.Folders = append(parent.Folders, node)
		}
	}

	// Third pass: add documents from every collection to their folders
	rootDocuments := make([]models.DocumentTreeNode, 0)
	docCount := 0
	for _, collection := range s.docRepo.Collections() {
		docs, err := s.docRepo.GetAll(ctx, collection)
		if err != nil {
			return nil, err
		}
		docCount += len(docs)

		for _, doc := range docs {
			docNode := models.DocumentTreeNode{
				ID:         doc.ID,
				Collection: collection,
				Title:      doc.Title,
				Slug:       doc.Slug,
				FolderID:   doc.FolderID,
				SortOrder:  doc.SortOrder,
				Status:     doc.Status,
				UpdatedAt:  doc.UpdatedAt,
			}

			if doc.FolderID == nil {
				rootDocuments = append(rootDocuments, docNode)
			} else if parent, exists := folderMap[*doc.FolderID]; exists {
				parent.Documents = append(parent.Documents, docNode)
			}
		}
	}

	// Final pass: sibling ordering by sortOrder (ties by name) and derived
	// subtree document counts.
	rootFolders := make([]*models.FolderTreeNode, 0, len(rootFolderIDs))
	for _, folderID := range rootFolderIDs {
		if node, exists := folderMap[folderID]; exists {
			rootFolders = append(rootFolders, node)
		}
	}
	sortFolderNodes(rootFolders)
	sortDocumentNodes(rootDocuments)
	for _, node := range rootFolders {
		finishNode(node)
	}

	tree := &models.TreeNode{
		Folders:   rootFolders,
		Documents: rootDocuments,
	}

	s.logger.Info("tree built",
		"folder_count", len(allFolders),
		"document_count", docCount,
	)

	return tree, nil
}

// finishNode recursively sorts children and computes subtree document counts.
func finishNode(node *models.FolderTreeNode) int {
	sortFolderNodes(node.Folders)
	sortDocumentNodes(node.Documents)

	count := len(node.Documents)
	for _, child := range node.Folders {
		count += finishNode(child)
	}
	node.DocumentCount = count
	return count
}

func sortFolderNodes(nodes []*models.FolderTreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].Name < nodes[j].Name
	})
}

func sortDocumentNodes(nodes []models.DocumentTreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].Title < nodes[j].Title
	})
}
