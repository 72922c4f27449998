package models

import "time"

// TreeNode represents the root of the folder/document tree
type TreeNode struct {
	Folders   []*FolderTreeNode  `json:"folders"`
	Documents []DocumentTreeNode `json:"documents"`
}

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	PathSegment   string             `json:"pathSegment"`
	ParentID      *string            `json:"parentId"`
	SortOrder     int                `json:"sortOrder"`
	FolderTypes   []string           `json:"folderTypes,omitempty"`
	DocumentCount int                `json:"documentCount"` // documents in this subtree, all collections
	CreatedAt     time.Time          `json:"createdAt"`
	Folders       []*FolderTreeNode  `json:"folders"` // Pointers for proper nesting
	Documents     []DocumentTreeNode `json:"documents"`
}

// DocumentTreeNode represents a document in the tree (metadata only)
type DocumentTreeNode struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	FolderID   *string   `json:"folderId"`
	SortOrder  int       `json:"sortOrder"`
	Status     string    `json:"_status"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
