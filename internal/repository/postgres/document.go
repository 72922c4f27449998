package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"slugtree/internal/domain"
	"slugtree/internal/domain/models"
	"slugtree/internal/domain/repositories"
)

// PostgresDocumentRepository implements the DocumentRepository interface.
// Each configured collection maps to its own table; all tables share the
// same document schema.
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables map[string]string // collection name -> prefixed table name
	names  []string          // configured order, for stable iteration
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	tables := make(map[string]string, len(config.Collections))
	names := make([]string, 0, len(config.Collections))
	for _, c := range config.Collections {
		tables[c.Name] = config.TablePrefix + c.Table
		names = append(names, c.Name)
	}
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: tables,
		names:  names,
	}
}

// Collections returns the configured collection names
func (r *PostgresDocumentRepository) Collections() []string {
	return r.names
}

// HasCollection reports whether the named collection is configured
func (r *PostgresDocumentRepository) HasCollection(collection string) bool {
	_, ok := r.tables[collection]
	return ok
}

func (r *PostgresDocumentRepository) tableFor(collection string) (string, error) {
	table, ok := r.tables[collection]
	if !ok {
		return "", fmt.Errorf("%w: unknown collection '%s'", domain.ErrValidation, collection)
	}
	return table, nil
}

// Create creates a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, collection string, doc *models.Document) error {
	table, err := r.tableFor(collection)
	if err != nil {
		return err
	}

	history, err := marshalSlugHistory(doc.SlugHistory)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, folder_id, title, page_segment, slug, slug_history, sort_order, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, table)

	_, err = GetExecutor(ctx, r.pool).Exec(ctx, query,
		doc.ID,
		doc.FolderID,
		doc.Title,
		doc.PageSegment,
		doc.Slug,
		history,
		doc.SortOrder,
		doc.Status,
		doc.CreatedAt,
		doc.UpdatedAt,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("document '%s' already exists", doc.Title),
				ResourceType: collection,
				ResourceID:   doc.ID,
			}
		}
		return fmt.Errorf("create document: %w", err)
	}

	doc.Collection = collection
	return nil
}

// GetByID retrieves a document by ID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, collection, id string) (*models.Document, error) {
	table, err := r.tableFor(collection)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, folder_id, title, page_segment, slug, slug_history, sort_order, status, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, table)

	doc, err := scanDocument(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id), collection)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Update updates a document
func (r *PostgresDocumentRepository) Update(ctx context.Context, collection string, doc *models.Document) error {
	table, err := r.tableFor(collection)
	if err != nil {
		return err
	}

	history, err := marshalSlugHistory(doc.SlugHistory)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, title = $2, page_segment = $3, slug = $4, slug_history = $5, sort_order = $6, status = $7, updated_at = $8
		WHERE id = $9
	`, table)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		doc.FolderID,
		doc.Title,
		doc.PageSegment,
		doc.Slug,
		history,
		doc.SortOrder,
		doc.Status,
		doc.UpdatedAt,
		doc.ID,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("document '%s' already exists", doc.Title),
				ResourceType: collection,
				ResourceID:   doc.ID,
			}
		}
		return fmt.Errorf("update document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a document
func (r *PostgresDocumentRepository) Delete(ctx context.Context, collection, id string) error {
	table, err := r.tableFor(collection)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
	`, table)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByFolder lists documents directly inside a folder (nil = root level)
func (r *PostgresDocumentRepository) ListByFolder(ctx context.Context, collection string, folderID *string) ([]models.Document, error) {
	table, err := r.tableFor(collection)
	if err != nil {
		return nil, err
	}

	var query string
	var args []interface{}

	if folderID == nil {
		query = fmt.Sprintf(`
			SELECT id, folder_id, title, page_segment, slug, slug_history, sort_order, status, created_at, updated_at
			FROM %s
			WHERE folder_id IS NULL
			ORDER BY sort_order ASC, title ASC
		`, table)
	} else {
		query = fmt.Sprintf(`
			SELECT id, folder_id, title, page_segment, slug, slug_history, sort_order, status, created_at, updated_at
			FROM %s
			WHERE folder_id = $1
			ORDER BY sort_order ASC, title ASC
		`, table)
		args = append(args, *folderID)
	}

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows, collection)
}

// ListByFolderIDs lists documents whose folder is any of the given IDs
func (r *PostgresDocumentRepository) ListByFolderIDs(ctx context.Context, collection string, folderIDs []string) ([]models.Document, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}

	table, err := r.tableFor(collection)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, folder_id, title, page_segment, slug, slug_history, sort_order, status, created_at, updated_at
		FROM %s
		WHERE folder_id = ANY($1)
		ORDER BY sort_order ASC, title ASC
	`, table)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, folderIDs)
	if err != nil {
		return nil, fmt.Errorf("list documents by folders: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows, collection)
}

// GetAll retrieves every document in the collection
func (r *PostgresDocumentRepository) GetAll(ctx context.Context, collection string) ([]models.Document, error) {
	table, err := r.tableFor(collection)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, folder_id, title, page_segment, slug, slug_history, sort_order, status, created_at, updated_at
		FROM %s
		ORDER BY sort_order ASC, title ASC
	`, table)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows, collection)
}

// ListWithSlugHistory lists documents carrying at least one slug history entry
func (r *PostgresDocumentRepository) ListWithSlugHistory(ctx context.Context, collection string) ([]models.Document, error) {
	table, err := r.tableFor(collection)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, folder_id, title, page_segment, slug, slug_history, sort_order, status, created_at, updated_at
		FROM %s
		WHERE jsonb_array_length(slug_history) > 0
		ORDER BY sort_order ASC, title ASC
	`, table)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents with slug history: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows, collection)
}

func marshalSlugHistory(history []models.SlugHistoryEntry) ([]byte, error) {
	if history == nil {
		history = []models.SlugHistoryEntry{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("marshal slug history: %w", err)
	}
	return data, nil
}

func scanDocument(row pgx.Row, collection string) (*models.Document, error) {
	var doc models.Document
	var history []byte
	if err := row.Scan(
		&doc.ID,
		&doc.FolderID,
		&doc.Title,
		&doc.PageSegment,
		&doc.Slug,
		&history,
		&doc.SortOrder,
		&doc.Status,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &doc.SlugHistory); err != nil {
			return nil, fmt.Errorf("unmarshal slug history: %w", err)
		}
	}
	doc.Collection = collection
	return &doc, nil
}

func scanDocuments(rows pgx.Rows, collection string) ([]models.Document, error) {
	var docs []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows, collection)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}
