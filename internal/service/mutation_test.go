package service

import (
	"context"
	"errors"
	"testing"

	"slugtree/internal/domain"
	"slugtree/internal/domain/models"
	"slugtree/internal/domain/services"
)

func mutationFixture() (*fakeFolderRepo, *fakeDocRepo, *testStack) {
	folderRepo := newFakeFolderRepo(
		models.Folder{ID: "appeals", Name: "Appeals", PathSegment: "appeals", SortOrder: 0},
		models.Folder{ID: "y2024", ParentID: strptr("appeals"), Name: "2024", PathSegment: "2024", SortOrder: 0},
		models.Folder{ID: "services", Name: "Services", PathSegment: "services", SortOrder: 1},
	)
	docRepo := newFakeDocRepo("pages", "posts")
	stack := newTestStack(folderRepo, docRepo)
	return folderRepo, docRepo, stack
}

func TestCreate_FolderUniquifiesSiblingNames(t *testing.T) {
	_, _, stack := mutationFixture()
	ctx := context.Background()

	first, err := stack.mutations.Create(ctx, &services.CreateRequest{
		Type:     services.ItemTypeFolder,
		ParentID: strptr("appeals"),
		Name:     "Notes",
	})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if first.Name != "Notes" {
		t.Errorf("first name = %q, want %q", first.Name, "Notes")
	}

	second, err := stack.mutations.Create(ctx, &services.CreateRequest{
		Type:     services.ItemTypeFolder,
		ParentID: strptr("appeals"),
		Name:     "Notes",
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.Name != "Notes (copy)" {
		t.Errorf("second name = %q, want %q", second.Name, "Notes (copy)")
	}

	folder, err := stack.folderRepo.GetByID(ctx, second.ID)
	if err != nil {
		t.Fatal(err)
	}
	if folder.PathSegment != "notes-copy" {
		t.Errorf("PathSegment = %q, want %q", folder.PathSegment, "notes-copy")
	}

	third, err := stack.mutations.Create(ctx, &services.CreateRequest{
		Type:     services.ItemTypeFolder,
		ParentID: strptr("appeals"),
		Name:     "Notes",
	})
	if err != nil {
		t.Fatalf("create third: %v", err)
	}
	if third.Name != "Notes (copy 2)" {
		t.Errorf("third name = %q, want %q", third.Name, "Notes (copy 2)")
	}
}

func TestCreate_Document(t *testing.T) {
	_, docRepo, stack := mutationFixture()
	ctx := context.Background()

	result, err := stack.mutations.Create(ctx, &services.CreateRequest{
		Type:       services.ItemTypeDocument,
		ParentID:   strptr("y2024"),
		Name:       "Spring Campaign",
		Collection: "pages",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	doc := docRepo.get("pages", result.ID)
	if doc.Slug != "appeals/2024/spring-campaign" {
		t.Errorf("Slug = %q, want %q", doc.Slug, "appeals/2024/spring-campaign")
	}
	if doc.Status != models.StatusDraft {
		t.Errorf("Status = %q, want draft", doc.Status)
	}
}

func TestCreate_DocumentValidation(t *testing.T) {
	folderRepo, _, _ := mutationFixture()
	folderRepo.folders["appeals"].FolderTypes = []string{"posts"}
	docRepo := newFakeDocRepo("pages", "posts")
	stack := newTestStack(folderRepo, docRepo)
	ctx := context.Background()

	tests := []struct {
		name string
		req  services.CreateRequest
	}{
		{
			name: "missing collection",
			req:  services.CreateRequest{Type: services.ItemTypeDocument, Name: "Doc"},
		},
		{
			name: "unknown collection",
			req:  services.CreateRequest{Type: services.ItemTypeDocument, Name: "Doc", Collection: "nope"},
		},
		{
			name: "folder type restriction",
			req:  services.CreateRequest{Type: services.ItemTypeDocument, Name: "Doc", Collection: "pages", ParentID: strptr("appeals")},
		},
		{
			name: "slash in name",
			req:  services.CreateRequest{Type: services.ItemTypeDocument, Name: "a/b", Collection: "pages"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := stack.mutations.Create(ctx, &tt.req); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestMove_FolderIntoDescendantRejected(t *testing.T) {
	_, _, stack := mutationFixture()
	ctx := context.Background()

	err := stack.mutations.Move(ctx, &services.MoveRequest{
		Type:        services.ItemTypeFolder,
		ID:          "appeals",
		NewParentID: strptr("y2024"),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("move into descendant: err = %v, want ErrValidation", err)
	}

	err = stack.mutations.Move(ctx, &services.MoveRequest{
		Type:        services.ItemTypeFolder,
		ID:          "appeals",
		NewParentID: strptr("appeals"),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("move into self: err = %v, want ErrValidation", err)
	}
}

func TestMove_DocumentKeepsSlugWithoutOptIn(t *testing.T) {
	_, docRepo, stack := mutationFixture()
	ctx := context.Background()
	docRepo.add("pages", models.Document{ID: "spring", FolderID: strptr("y2024"), Title: "Spring", PageSegment: "spring", Slug: "appeals/2024/spring"})

	err := stack.mutations.Move(ctx, &services.MoveRequest{
		Type:        services.ItemTypeDocument,
		ID:          "spring",
		NewParentID: strptr("services"),
		UpdateSlugs: false,
	})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}

	doc := docRepo.get("pages", "spring")
	if !sameRef(doc.FolderID, strptr("services")) {
		t.Errorf("FolderID = %v, want services", doc.FolderID)
	}
	if doc.Slug != "appeals/2024/spring" {
		t.Errorf("Slug = %q, want preserved", doc.Slug)
	}
	if len(doc.SlugHistory) != 0 {
		t.Errorf("history entries = %d, want 0", len(doc.SlugHistory))
	}
}

func TestMove_DocumentUpdatesSlugWithOptIn(t *testing.T) {
	_, docRepo, stack := mutationFixture()
	ctx := context.Background()
	docRepo.add("pages", models.Document{ID: "spring", FolderID: strptr("y2024"), Title: "Spring", PageSegment: "spring", Slug: "appeals/2024/spring"})

	err := stack.mutations.Move(ctx, &services.MoveRequest{
		Type:        services.ItemTypeDocument,
		ID:          "spring",
		NewParentID: strptr("services"),
		UpdateSlugs: true,
	})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}

	doc := docRepo.get("pages", "spring")
	if doc.Slug != "services/spring" {
		t.Errorf("Slug = %q, want %q", doc.Slug, "services/spring")
	}
	if len(doc.SlugHistory) != 1 || doc.SlugHistory[0].Reason != models.ReasonMove {
		t.Errorf("history = %+v, want one 'move' entry", doc.SlugHistory)
	}
}

func TestMove_FolderCascades(t *testing.T) {
	_, docRepo, stack := mutationFixture()
	ctx := context.Background()
	docRepo.add("pages", models.Document{ID: "spring", FolderID: strptr("y2024"), Title: "Spring", PageSegment: "spring", Slug: "appeals/2024/spring"})

	err := stack.mutations.Move(ctx, &services.MoveRequest{
		Type:        services.ItemTypeFolder,
		ID:          "y2024",
		NewParentID: strptr("services"),
		UpdateSlugs: true,
	})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}

	doc := docRepo.get("pages", "spring")
	if doc.Slug != "services/2024/spring" {
		t.Errorf("Slug = %q, want %q", doc.Slug, "services/2024/spring")
	}
}

func TestMove_NewIndexReordersSiblings(t *testing.T) {
	folderRepo, _, stack := mutationFixture()
	ctx := context.Background()
	folderRepo.Create(ctx, &models.Folder{ID: "f1", ParentID: strptr("services"), Name: "F1", SortOrder: 0})
	folderRepo.Create(ctx, &models.Folder{ID: "f2", ParentID: strptr("services"), Name: "F2", SortOrder: 1})

	err := stack.mutations.Move(ctx, &services.MoveRequest{
		Type:        services.ItemTypeFolder,
		ID:          "y2024",
		NewParentID: strptr("services"),
		NewIndex:    intptr(0),
	})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}

	moved, _ := folderRepo.GetByID(ctx, "y2024")
	if moved.SortOrder != 0 {
		t.Errorf("moved SortOrder = %d, want 0", moved.SortOrder)
	}
	f1, _ := folderRepo.GetByID(ctx, "f1")
	f2, _ := folderRepo.GetByID(ctx, "f2")
	if f1.SortOrder != 1 || f2.SortOrder != 2 {
		t.Errorf("siblings = (%d, %d), want (1, 2)", f1.SortOrder, f2.SortOrder)
	}
}

func TestRename_SiblingCollisionRejected(t *testing.T) {
	folderRepo, _, stack := mutationFixture()
	ctx := context.Background()
	folderRepo.Create(ctx, &models.Folder{ID: "y2025", ParentID: strptr("appeals"), Name: "2025", PathSegment: "2025"})

	err := stack.mutations.Rename(ctx, &services.RenameRequest{
		Type: services.ItemTypeFolder,
		ID:   "y2025",
		Name: "2024",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation on collision", err)
	}
}

func TestRename_FolderWithUpdateSlugsCascades(t *testing.T) {
	folderRepo, docRepo, stack := mutationFixture()
	ctx := context.Background()
	docRepo.add("pages", models.Document{ID: "spring", FolderID: strptr("y2024"), Title: "Spring", PageSegment: "spring", Slug: "appeals/2024/spring"})

	err := stack.mutations.Rename(ctx, &services.RenameRequest{
		Type:        services.ItemTypeFolder,
		ID:          "y2024",
		Name:        "2025",
		UpdateSlugs: true,
	})
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}

	folder, _ := folderRepo.GetByID(ctx, "y2024")
	if folder.Name != "2025" || folder.PathSegment != "2025" {
		t.Errorf("folder = %q/%q, want 2025/2025", folder.Name, folder.PathSegment)
	}

	doc := docRepo.get("pages", "spring")
	if doc.Slug != "appeals/2025/spring" {
		t.Errorf("Slug = %q, want %q", doc.Slug, "appeals/2025/spring")
	}
	if len(doc.SlugHistory) != 1 || doc.SlugHistory[0].Reason != models.ReasonRename {
		t.Errorf("history = %+v, want one 'rename' entry", doc.SlugHistory)
	}
}

func TestRename_FolderWithoutUpdateSlugsKeepsURLs(t *testing.T) {
	folderRepo, docRepo, stack := mutationFixture()
	ctx := context.Background()
	docRepo.add("pages", models.Document{ID: "spring", FolderID: strptr("y2024"), Title: "Spring", PageSegment: "spring", Slug: "appeals/2024/spring"})

	err := stack.mutations.Rename(ctx, &services.RenameRequest{
		Type: services.ItemTypeFolder,
		ID:   "y2024",
		Name: "2025",
	})
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}

	folder, _ := folderRepo.GetByID(ctx, "y2024")
	if folder.Name != "2025" {
		t.Errorf("Name = %q, want 2025", folder.Name)
	}
	if folder.PathSegment != "2024" {
		t.Errorf("PathSegment = %q, want unchanged 2024", folder.PathSegment)
	}
	if doc := docRepo.get("pages", "spring"); doc.Slug != "appeals/2024/spring" {
		t.Errorf("Slug = %q, want unchanged", doc.Slug)
	}
}

func TestSetStatus(t *testing.T) {
	_, docRepo, stack := mutationFixture()
	ctx := context.Background()
	docRepo.add("pages", models.Document{ID: "d1", Title: "Doc", Status: models.StatusDraft})

	if err := stack.mutations.SetStatus(ctx, &services.StatusRequest{ID: "d1", Collection: "pages", Status: models.StatusPublished}); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if doc := docRepo.get("pages", "d1"); doc.Status != models.StatusPublished {
		t.Errorf("Status = %q, want published", doc.Status)
	}

	err := stack.mutations.SetStatus(ctx, &services.StatusRequest{ID: "d1", Collection: "pages", Status: "archived"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("invalid status: err = %v, want ErrValidation", err)
	}
}

func TestEditSegment_Document(t *testing.T) {
	_, docRepo, stack := mutationFixture()
	ctx := context.Background()
	docRepo.add("pages", models.Document{ID: "spring", FolderID: strptr("y2024"), Title: "Spring", PageSegment: "spring", Slug: "appeals/2024/spring"})

	err := stack.mutations.EditSegment(ctx, &services.SegmentRequest{
		Type:       services.ItemTypeDocument,
		ID:         "spring",
		Segment:    "Spring Appeal!",
		Collection: "pages",
	})
	if err != nil {
		t.Fatalf("EditSegment: %v", err)
	}

	doc := docRepo.get("pages", "spring")
	if doc.PageSegment != "spring-appeal" {
		t.Errorf("PageSegment = %q, want %q", doc.PageSegment, "spring-appeal")
	}
	if doc.Slug != "appeals/2024/spring-appeal" {
		t.Errorf("Slug = %q, want %q", doc.Slug, "appeals/2024/spring-appeal")
	}
}

func TestEditSegment_FolderCascades(t *testing.T) {
	_, docRepo, stack := mutationFixture()
	ctx := context.Background()
	docRepo.add("pages", models.Document{ID: "spring", FolderID: strptr("y2024"), Title: "Spring", PageSegment: "spring", Slug: "appeals/2024/spring"})

	err := stack.mutations.EditSegment(ctx, &services.SegmentRequest{
		Type:    services.ItemTypeFolder,
		ID:      "y2024",
		Segment: "2025",
	})
	if err != nil {
		t.Fatalf("EditSegment: %v", err)
	}

	if doc := docRepo.get("pages", "spring"); doc.Slug != "appeals/2025/spring" {
		t.Errorf("Slug = %q, want cascaded %q", doc.Slug, "appeals/2025/spring")
	}
}

func TestEditSegment_RejectsUnusableSegment(t *testing.T) {
	_, _, stack := mutationFixture()

	err := stack.mutations.EditSegment(context.Background(), &services.SegmentRequest{
		Type:    services.ItemTypeFolder,
		ID:      "y2024",
		Segment: "***",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestDelete_NonEmptyFolderRequiresOptIn(t *testing.T) {
	_, docRepo, stack := mutationFixture()
	ctx := context.Background()
	docRepo.add("pages", models.Document{ID: "spring", FolderID: strptr("y2024"), Title: "Spring"})

	err := stack.mutations.Delete(ctx, &services.DeleteRequest{
		Type: services.ItemTypeFolder,
		ID:   "appeals",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation for non-empty folder", err)
	}
}

func TestDelete_RecursiveRemovesSubtree(t *testing.T) {
	folderRepo, docRepo, stack := mutationFixture()
	ctx := context.Background()
	docRepo.add("pages", models.Document{ID: "spring", FolderID: strptr("y2024"), Title: "Spring"})
	docRepo.add("posts", models.Document{ID: "news", FolderID: strptr("appeals"), Title: "News"})
	docRepo.add("pages", models.Document{ID: "pantry", FolderID: strptr("services"), Title: "Pantry"})

	err := stack.mutations.Delete(ctx, &services.DeleteRequest{
		Type:           services.ItemTypeFolder,
		ID:             "appeals",
		DeleteChildren: true,
	})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := folderRepo.GetByID(ctx, "appeals"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("appeals folder still present")
	}
	if _, err := folderRepo.GetByID(ctx, "y2024"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("descendant folder still present")
	}
	if _, err := docRepo.GetByID(ctx, "pages", "spring"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("nested document still present")
	}
	if _, err := docRepo.GetByID(ctx, "posts", "news"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("document in other collection still present")
	}

	// Unrelated subtree survives.
	if _, err := folderRepo.GetByID(ctx, "services"); err != nil {
		t.Error("unrelated folder was deleted")
	}
	if _, err := docRepo.GetByID(ctx, "pages", "pantry"); err != nil {
		t.Error("unrelated document was deleted")
	}
}

func TestDelete_DocumentSearchesCollections(t *testing.T) {
	_, docRepo, stack := mutationFixture()
	ctx := context.Background()
	docRepo.add("posts", models.Document{ID: "news", Title: "News"})

	// No collection given: the owning collection is found by search.
	err := stack.mutations.Delete(ctx, &services.DeleteRequest{
		Type: services.ItemTypeDocument,
		ID:   "news",
	})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}

	err = stack.mutations.Delete(ctx, &services.DeleteRequest{
		Type: services.ItemTypeDocument,
		ID:   "nowhere",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound when absent everywhere", err)
	}
}

func TestReorder(t *testing.T) {
	_, docRepo, stack := mutationFixture()
	ctx := context.Background()
	docRepo.add("pages", models.Document{ID: "a", Title: "A", SortOrder: 0})
	docRepo.add("pages", models.Document{ID: "b", Title: "B", SortOrder: 1})

	err := stack.mutations.Reorder(ctx, &services.ReorderRequest{
		Type:       services.ItemTypeDocument,
		Collection: "pages",
		Items: []services.ReorderItem{
			{ID: "a", SortOrder: 1},
			{ID: "b", SortOrder: 0},
		},
	})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	if doc := docRepo.get("pages", "a"); doc.SortOrder != 1 {
		t.Errorf("a.SortOrder = %d, want 1", doc.SortOrder)
	}
	if doc := docRepo.get("pages", "b"); doc.SortOrder != 0 {
		t.Errorf("b.SortOrder = %d, want 0", doc.SortOrder)
	}
}

func TestDuplicate(t *testing.T) {
	_, docRepo, stack := mutationFixture()
	ctx := context.Background()
	docRepo.add("pages", models.Document{
		ID: "spring", FolderID: strptr("y2024"), Title: "Spring", PageSegment: "spring",
		Slug:        "appeals/2024/spring",
		Status:      models.StatusPublished,
		SlugHistory: []models.SlugHistoryEntry{{Slug: "old/spring"}},
	})

	result, err := stack.mutations.Duplicate(ctx, "pages", "spring")
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if result.Title != "Spring (copy)" {
		t.Errorf("Title = %q, want %q", result.Title, "Spring (copy)")
	}

	clone := docRepo.get("pages", result.ID)
	if clone.ID == "spring" {
		t.Error("clone kept the source identity")
	}
	if clone.Status != models.StatusDraft {
		t.Errorf("clone Status = %q, want draft", clone.Status)
	}
	if clone.Slug != "appeals/2024/spring-copy" {
		t.Errorf("clone Slug = %q, want %q", clone.Slug, "appeals/2024/spring-copy")
	}
	if len(clone.SlugHistory) != 0 {
		t.Errorf("clone inherited history: %+v", clone.SlugHistory)
	}
}

func TestRegenerate(t *testing.T) {
	folderRepo, docRepo, stack := mutationFixture()
	ctx := context.Background()

	// Stale slugs left behind by a rename without cascade.
	folderRepo.folders["y2024"].PathSegment = "2025"
	docRepo.add("pages", models.Document{ID: "spring", FolderID: strptr("y2024"), Title: "Spring", PageSegment: "spring", Slug: "appeals/2024/spring"})
	docRepo.add("pages", models.Document{ID: "pantry", FolderID: strptr("services"), Title: "Pantry", PageSegment: "pantry", Slug: "services/pantry"})

	count, err := stack.mutations.Regenerate(ctx, strptr("y2024"))
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (only the stale doc changes)", count)
	}
	if doc := docRepo.get("pages", "spring"); doc.Slug != "appeals/2025/spring" {
		t.Errorf("Slug = %q, want %q", doc.Slug, "appeals/2025/spring")
	}
	if doc := docRepo.get("pages", "pantry"); doc.Slug != "services/pantry" {
		t.Errorf("doc outside scope changed: %q", doc.Slug)
	}
}

func TestMigrate_BackfillsSegments(t *testing.T) {
	folderRepo := newFakeFolderRepo(
		models.Folder{ID: "legacy", Name: "Legacy Folder"}, // predates URL segments
		models.Folder{ID: "done", Name: "Done", PathSegment: "done"},
	)
	docRepo := newFakeDocRepo("pages")
	docRepo.add("pages", models.Document{ID: "d1", FolderID: strptr("legacy"), Title: "Doc One"})
	stack := newTestStack(folderRepo, docRepo)
	ctx := context.Background()

	result, err := stack.mutations.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	if len(result.Folders) != 1 || result.Folders[0].PathSegment != "legacy-folder" {
		t.Errorf("migrated folders = %+v, want one with segment legacy-folder", result.Folders)
	}
	if result.Count != 1 {
		t.Errorf("regenerated count = %d, want 1", result.Count)
	}
	if doc := docRepo.get("pages", "d1"); doc.Slug != "legacy-folder/doc-one" {
		t.Errorf("Slug = %q, want %q", doc.Slug, "legacy-folder/doc-one")
	}
}

func TestRestoreSlug(t *testing.T) {
	_, docRepo, stack := mutationFixture()
	ctx := context.Background()
	docRepo.add("pages", models.Document{
		ID: "spring", FolderID: strptr("y2024"), Title: "Spring", PageSegment: "spring",
		Slug: "appeals/2025/spring",
		SlugHistory: []models.SlugHistoryEntry{
			{Slug: "appeals/2024/spring", Reason: models.ReasonRename},
			{Slug: "other/spring", Reason: models.ReasonMove},
		},
	})

	restored, err := stack.mutations.RestoreSlug(ctx, "pages", "spring", "appeals/2024/spring")
	if err != nil {
		t.Fatalf("RestoreSlug: %v", err)
	}
	if restored != "appeals/2024/spring" {
		t.Errorf("restored = %q, want %q", restored, "appeals/2024/spring")
	}

	doc := docRepo.get("pages", "spring")
	if doc.Slug != "appeals/2024/spring" {
		t.Errorf("Slug = %q, want restored value", doc.Slug)
	}
	if doc.PageSegment != "spring" {
		t.Errorf("PageSegment = %q, want %q", doc.PageSegment, "spring")
	}

	// The replaced slug entered history with reason restore; the restored
	// value is gone from history.
	if len(doc.SlugHistory) != 2 {
		t.Fatalf("history = %+v, want 2 entries", doc.SlugHistory)
	}
	if doc.SlugHistory[0].Slug != "appeals/2025/spring" || doc.SlugHistory[0].Reason != models.ReasonRestore {
		t.Errorf("history[0] = %+v, want replaced slug with reason restore", doc.SlugHistory[0])
	}
	for _, entry := range doc.SlugHistory {
		if entry.Slug == "appeals/2024/spring" {
			t.Error("restored slug still present in history")
		}
	}
}

func TestRestoreSlug_NotInHistory(t *testing.T) {
	_, docRepo, stack := mutationFixture()
	ctx := context.Background()
	docRepo.add("pages", models.Document{ID: "d1", Title: "Doc", Slug: "doc"})

	_, err := stack.mutations.RestoreSlug(ctx, "pages", "d1", "never/was")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestURLStabilityWorkedExample(t *testing.T) {
	// The full lifecycle: create, cascade rename, silent move, restore,
	// redirect map.
	_, docRepo, stack := mutationFixture()
	ctx := context.Background()

	created, err := stack.mutations.Create(ctx, &services.CreateRequest{
		Type:       services.ItemTypeDocument,
		ParentID:   strptr("y2024"),
		Name:       "Spring Campaign",
		Collection: "pages",
	})
	if err != nil {
		t.Fatal(err)
	}
	if doc := docRepo.get("pages", created.ID); doc.Slug != "appeals/2024/spring-campaign" {
		t.Fatalf("step 1: slug = %q", doc.Slug)
	}

	// Step 2: rename the 2024 segment to 2025 with updateSlugs.
	if err := stack.mutations.EditSegment(ctx, &services.SegmentRequest{
		Type: services.ItemTypeFolder, ID: "y2024", Segment: "2025",
	}); err != nil {
		t.Fatal(err)
	}
	doc := docRepo.get("pages", created.ID)
	if doc.Slug != "appeals/2025/spring-campaign" {
		t.Fatalf("step 2: slug = %q", doc.Slug)
	}
	if doc.SlugHistory[0].Slug != "appeals/2024/spring-campaign" {
		t.Fatalf("step 2: history[0] = %+v", doc.SlugHistory[0])
	}

	// Step 3: move to services without updating slugs.
	if err := stack.mutations.Move(ctx, &services.MoveRequest{
		Type: services.ItemTypeDocument, ID: created.ID, NewParentID: strptr("services"),
	}); err != nil {
		t.Fatal(err)
	}
	doc = docRepo.get("pages", created.ID)
	if doc.Slug != "appeals/2025/spring-campaign" {
		t.Fatalf("step 3: slug = %q, want preserved", doc.Slug)
	}
	if len(doc.SlugHistory) != 1 {
		t.Fatalf("step 3: history grew on a silent move: %+v", doc.SlugHistory)
	}

	// Redirect map before the restore.
	redirects, err := stack.redirects.BuildRedirectMap(ctx, "pages")
	if err != nil {
		t.Fatal(err)
	}
	if len(redirects) != 1 || redirects[0].From != "/appeals/2024/spring-campaign" || redirects[0].To != "/appeals/2025/spring-campaign" {
		t.Fatalf("redirects = %+v", redirects)
	}

	// Step 4: restore the original slug.
	if _, err := stack.mutations.RestoreSlug(ctx, "pages", created.ID, "appeals/2024/spring-campaign"); err != nil {
		t.Fatal(err)
	}
	doc = docRepo.get("pages", created.ID)
	if doc.Slug != "appeals/2024/spring-campaign" {
		t.Fatalf("step 4: slug = %q", doc.Slug)
	}
	if doc.SlugHistory[0].Slug != "appeals/2025/spring-campaign" || doc.SlugHistory[0].Reason != models.ReasonRestore {
		t.Fatalf("step 4: history[0] = %+v", doc.SlugHistory[0])
	}
}
