package service

import (
	"context"
	"testing"

	"slugtree/internal/domain/models"
)

func cascadeFixture() (*fakeFolderRepo, *fakeDocRepo) {
	folderRepo := newFakeFolderRepo(
		models.Folder{ID: "appeals", Name: "Appeals", PathSegment: "appeals"},
		models.Folder{ID: "y2024", ParentID: strptr("appeals"), Name: "2024", PathSegment: "2024"},
		models.Folder{ID: "archive", ParentID: strptr("y2024"), Name: "Archive", PathSegment: "archive"},
		models.Folder{ID: "services", Name: "Services", PathSegment: "services"},
	)
	docRepo := newFakeDocRepo("pages", "posts")
	docRepo.add("pages", models.Document{ID: "spring", FolderID: strptr("y2024"), Title: "Spring", PageSegment: "spring", Slug: "appeals/2024/spring"})
	docRepo.add("pages", models.Document{ID: "old", FolderID: strptr("archive"), Title: "Old", PageSegment: "old", Slug: "appeals/2024/archive/old"})
	docRepo.add("posts", models.Document{ID: "update", FolderID: strptr("y2024"), Title: "Update", PageSegment: "update", Slug: "appeals/2024/update"})
	docRepo.add("pages", models.Document{ID: "pantry", FolderID: strptr("services"), Title: "Pantry", PageSegment: "pantry", Slug: "services/pantry"})
	return folderRepo, docRepo
}

func TestCascade_SegmentChangeRewritesSubtree(t *testing.T) {
	folderRepo, docRepo := cascadeFixture()
	stack := newTestStack(folderRepo, docRepo)

	// Rename the 2024 segment to 2025 and persist it before cascading, the
	// same order the mutation layer uses.
	folder, _ := folderRepo.GetByID(context.Background(), "y2024")
	prior := *folder
	folder.PathSegment = "2025"
	if err := folderRepo.Update(context.Background(), folder); err != nil {
		t.Fatal(err)
	}

	updated, err := stack.cascade.FolderChanged(context.Background(), folder, &prior, true, models.WritePolicy{
		ChangeReason: models.ReasonRename,
	})
	if err != nil {
		t.Fatalf("FolderChanged: %v", err)
	}
	if updated != 3 {
		t.Errorf("updated = %d, want 3 (both collections, full subtree)", updated)
	}

	tests := []struct {
		collection string
		id         string
		wantSlug   string
	}{
		{collection: "pages", id: "spring", wantSlug: "appeals/2025/spring"},
		{collection: "pages", id: "old", wantSlug: "appeals/2025/archive/old"},
		{collection: "posts", id: "update", wantSlug: "appeals/2025/update"},
	}
	for _, tt := range tests {
		doc := docRepo.get(tt.collection, tt.id)
		if doc.Slug != tt.wantSlug {
			t.Errorf("%s/%s slug = %q, want %q", tt.collection, tt.id, doc.Slug, tt.wantSlug)
		}
		if len(doc.SlugHistory) != 1 {
			t.Errorf("%s/%s history entries = %d, want 1", tt.collection, tt.id, len(doc.SlugHistory))
			continue
		}
		if doc.SlugHistory[0].Reason != models.ReasonRename {
			t.Errorf("%s/%s history reason = %q, want %q", tt.collection, tt.id, doc.SlugHistory[0].Reason, models.ReasonRename)
		}
	}

	// Documents outside the subtree are untouched.
	if doc := docRepo.get("pages", "pantry"); doc.Slug != "services/pantry" {
		t.Errorf("unrelated doc slug = %q, want unchanged", doc.Slug)
	}
}

func TestCascade_Guards(t *testing.T) {
	tests := []struct {
		name        string
		updateSlugs bool
		policy      models.WritePolicy
		mutate      func(f *models.Folder)
	}{
		{
			name:        "already cascading",
			updateSlugs: true,
			policy:      models.WritePolicy{Cascading: true},
			mutate:      func(f *models.Folder) { f.PathSegment = "changed" },
		},
		{
			name:        "no opt-in",
			updateSlugs: false,
			mutate:      func(f *models.Folder) { f.PathSegment = "changed" },
		},
		{
			name:        "identity unchanged",
			updateSlugs: true,
			mutate:      func(f *models.Folder) { f.Name = "Display Only"; f.SortOrder = 9 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folderRepo, docRepo := cascadeFixture()
			stack := newTestStack(folderRepo, docRepo)

			folder, _ := folderRepo.GetByID(context.Background(), "y2024")
			prior := *folder
			tt.mutate(folder)

			updated, err := stack.cascade.FolderChanged(context.Background(), folder, &prior, tt.updateSlugs, tt.policy)
			if err != nil {
				t.Fatalf("FolderChanged: %v", err)
			}
			if updated != 0 {
				t.Errorf("updated = %d, want 0", updated)
			}

			if doc := docRepo.get("pages", "spring"); doc.Slug != "appeals/2024/spring" {
				t.Errorf("slug = %q, want unchanged", doc.Slug)
			}
		})
	}
}

func TestCascade_ParentChangeRewritesSubtree(t *testing.T) {
	folderRepo, docRepo := cascadeFixture()
	stack := newTestStack(folderRepo, docRepo)

	folder, _ := folderRepo.GetByID(context.Background(), "y2024")
	prior := *folder
	folder.ParentID = strptr("services")
	if err := folderRepo.Update(context.Background(), folder); err != nil {
		t.Fatal(err)
	}

	updated, err := stack.cascade.FolderChanged(context.Background(), folder, &prior, true, models.WritePolicy{
		ChangeReason: models.ReasonMove,
	})
	if err != nil {
		t.Fatalf("FolderChanged: %v", err)
	}
	if updated != 3 {
		t.Errorf("updated = %d, want 3", updated)
	}

	if doc := docRepo.get("pages", "spring"); doc.Slug != "services/2024/spring" {
		t.Errorf("slug = %q, want %q", doc.Slug, "services/2024/spring")
	}
}
