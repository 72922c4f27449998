package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"slugtree/internal/domain"
	"slugtree/internal/domain/models"
	"slugtree/internal/domain/repositories"
	"slugtree/internal/domain/services"
)

// In-memory repository fakes shared by the service tests. Mutex-guarded
// because cascade and delete issue concurrent writes.

type fakeFolderRepo struct {
	mu      sync.Mutex
	folders map[string]*models.Folder
}

func newFakeFolderRepo(folders ...models.Folder) *fakeFolderRepo {
	r := &fakeFolderRepo{folders: make(map[string]*models.Folder)}
	for i := range folders {
		f := folders[i]
		r.folders[f.ID] = &f
	}
	return r
}

func (r *fakeFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[folder.ID]; ok {
		return &domain.ConflictError{Message: "folder exists", ResourceType: "folder", ResourceID: folder.ID}
	}
	f := *folder
	r.folders[f.ID] = &f
	return nil
}

func (r *fakeFolderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	copied := *f
	return &copied, nil
}

func (r *fakeFolderRepo) Update(ctx context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[folder.ID]; !ok {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	f := *folder
	r.folders[f.ID] = &f
	return nil
}

func (r *fakeFolderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[id]; !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	delete(r.folders, id)
	return nil
}

func (r *fakeFolderRepo) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Folder
	for _, f := range r.folders {
		if sameRef(f.ParentID, parentID) {
			result = append(result, *f)
		}
	}
	sortFolders(result)
	return result, nil
}

func (r *fakeFolderRepo) GetAll(ctx context.Context) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Folder
	for _, f := range r.folders {
		result = append(result, *f)
	}
	sortFolders(result)
	return result, nil
}

func sortFolders(folders []models.Folder) {
	sort.SliceStable(folders, func(i, j int) bool {
		if folders[i].SortOrder != folders[j].SortOrder {
			return folders[i].SortOrder < folders[j].SortOrder
		}
		return folders[i].Name < folders[j].Name
	})
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type fakeDocRepo struct {
	mu    sync.Mutex
	names []string
	docs  map[string]map[string]*models.Document // collection -> id -> doc
}

func newFakeDocRepo(collections ...string) *fakeDocRepo {
	r := &fakeDocRepo{
		names: collections,
		docs:  make(map[string]map[string]*models.Document),
	}
	for _, c := range collections {
		r.docs[c] = make(map[string]*models.Document)
	}
	return r
}

func (r *fakeDocRepo) add(collection string, doc models.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[collection][doc.ID] = &doc
}

func (r *fakeDocRepo) get(collection, id string) models.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.docs[collection][id]
}

func (r *fakeDocRepo) Collections() []string {
	return r.names
}

func (r *fakeDocRepo) HasCollection(collection string) bool {
	_, ok := r.docs[collection]
	return ok
}

func (r *fakeDocRepo) Create(ctx context.Context, collection string, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	coll, ok := r.docs[collection]
	if !ok {
		return fmt.Errorf("%w: unknown collection '%s'", domain.ErrValidation, collection)
	}
	copied := *doc
	coll[copied.ID] = &copied
	return nil
}

func (r *fakeDocRepo) GetByID(ctx context.Context, collection, id string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	coll, ok := r.docs[collection]
	if !ok {
		return nil, fmt.Errorf("%w: unknown collection '%s'", domain.ErrValidation, collection)
	}
	doc, ok := coll[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	copied := *doc
	return &copied, nil
}

func (r *fakeDocRepo) Update(ctx context.Context, collection string, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	coll, ok := r.docs[collection]
	if !ok {
		return fmt.Errorf("%w: unknown collection '%s'", domain.ErrValidation, collection)
	}
	if _, ok := coll[doc.ID]; !ok {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}
	copied := *doc
	coll[copied.ID] = &copied
	return nil
}

func (r *fakeDocRepo) Delete(ctx context.Context, collection, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	coll, ok := r.docs[collection]
	if !ok {
		return fmt.Errorf("%w: unknown collection '%s'", domain.ErrValidation, collection)
	}
	if _, ok := coll[id]; !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	delete(coll, id)
	return nil
}

func (r *fakeDocRepo) ListByFolder(ctx context.Context, collection string, folderID *string) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	coll, ok := r.docs[collection]
	if !ok {
		return nil, fmt.Errorf("%w: unknown collection '%s'", domain.ErrValidation, collection)
	}
	var result []models.Document
	for _, d := range coll {
		if sameRef(d.FolderID, folderID) {
			result = append(result, *d)
		}
	}
	sortDocs(result)
	return result, nil
}

func (r *fakeDocRepo) ListByFolderIDs(ctx context.Context, collection string, folderIDs []string) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	coll, ok := r.docs[collection]
	if !ok {
		return nil, fmt.Errorf("%w: unknown collection '%s'", domain.ErrValidation, collection)
	}
	wanted := make(map[string]bool, len(folderIDs))
	for _, id := range folderIDs {
		wanted[id] = true
	}
	var result []models.Document
	for _, d := range coll {
		if d.FolderID != nil && wanted[*d.FolderID] {
			result = append(result, *d)
		}
	}
	sortDocs(result)
	return result, nil
}

func (r *fakeDocRepo) GetAll(ctx context.Context, collection string) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	coll, ok := r.docs[collection]
	if !ok {
		return nil, fmt.Errorf("%w: unknown collection '%s'", domain.ErrValidation, collection)
	}
	var result []models.Document
	for _, d := range coll {
		result = append(result, *d)
	}
	sortDocs(result)
	return result, nil
}

func (r *fakeDocRepo) ListWithSlugHistory(ctx context.Context, collection string) ([]models.Document, error) {
	docs, err := r.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	var result []models.Document
	for _, d := range docs {
		if len(d.SlugHistory) > 0 {
			result = append(result, d)
		}
	}
	return result, nil
}

func sortDocs(docs []models.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].SortOrder != docs[j].SortOrder {
			return docs[i].SortOrder < docs[j].SortOrder
		}
		return docs[i].Title < docs[j].Title
	})
}

type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testStack wires the full service graph over the fakes.
type testStack struct {
	folderRepo *fakeFolderRepo
	docRepo    *fakeDocRepo
	resolver   services.PathResolver
	slugs      services.SlugService
	cascade    services.CascadeService
	mutations  services.MutationService
	tree       services.TreeService
	redirects  services.RedirectService
}

func newTestStack(folderRepo *fakeFolderRepo, docRepo *fakeDocRepo) *testStack {
	logger := testLogger()
	resolver := NewPathResolver(folderRepo, logger)
	slugs := NewSlugService(resolver, logger)
	cascade := NewCascadeService(resolver, slugs, docRepo, logger)
	return &testStack{
		folderRepo: folderRepo,
		docRepo:    docRepo,
		resolver:   resolver,
		slugs:      slugs,
		cascade:    cascade,
		mutations:  NewMutationService(folderRepo, docRepo, resolver, slugs, cascade, fakeTxManager{}, logger),
		tree:       NewTreeService(folderRepo, docRepo, logger),
		redirects:  NewRedirectService(docRepo, logger),
	}
}

func strptr(s string) *string {
	return &s
}

func intptr(i int) *int {
	return &i
}
