package models

import (
	"time"
)

type Folder struct {
	ID          string    `json:"id" db:"id"`
	ParentID    *string   `json:"parentId" db:"parent_id"` // NULL = root level
	Name        string    `json:"name" db:"name"`
	PathSegment string    `json:"pathSegment" db:"path_segment"` // URL segment; derived from Name when empty
	SortOrder   int       `json:"sortOrder" db:"sort_order"`
	FolderTypes []string  `json:"folderTypes,omitempty" db:"folder_types"` // collections allowed inside; empty = unrestricted
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// AllowsCollection reports whether documents of the given collection may be
// placed inside this folder. An empty FolderTypes list means unrestricted.
func (f *Folder) AllowsCollection(collection string) bool {
	if len(f.FolderTypes) == 0 {
		return true
	}
	for _, t := range f.FolderTypes {
		if t == collection {
			return true
		}
	}
	return false
}
