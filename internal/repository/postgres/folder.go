package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"slugtree/internal/domain"
	"slugtree/internal/domain/models"
	"slugtree/internal/domain/repositories"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool  *pgxpool.Pool
	table string
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:  config.Pool,
		table: config.TablePrefix + "folders",
	}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, parent_id, name, path_segment, sort_order, folder_types, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.table)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		folder.ID,
		folder.ParentID,
		folder.Name,
		folder.PathSegment,
		folder.SortOrder,
		folder.FolderTypes,
		folder.CreatedAt,
		folder.UpdatedAt,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder '%s' already exists", folder.Name),
				ResourceType: "folder",
				ResourceID:   folder.ID,
			}
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, parent_id, name, path_segment, sort_order, folder_types, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.table)

	var folder models.Folder
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&folder.ID,
		&folder.ParentID,
		&folder.Name,
		&folder.PathSegment,
		&folder.SortOrder,
		&folder.FolderTypes,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// Update updates a folder
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, path_segment = $3, sort_order = $4, folder_types = $5, updated_at = $6
		WHERE id = $7
	`, r.table)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		folder.ParentID,
		folder.Name,
		folder.PathSegment,
		folder.SortOrder,
		folder.FolderTypes,
		folder.UpdatedAt,
		folder.ID,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder '%s' already exists", folder.Name),
				ResourceType: "folder",
				ResourceID:   folder.ID,
			}
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a folder
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
	`, r.table)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		if isPgForeignKeyError(err) {
			return &domain.ConflictError{
				Message:      "cannot delete folder with children",
				ResourceType: "folder",
				ResourceID:   id,
			}
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListChildren lists immediate child folders
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT id, parent_id, name, path_segment, sort_order, folder_types, created_at, updated_at
			FROM %s
			WHERE parent_id IS NULL
			ORDER BY sort_order ASC, name ASC
		`, r.table)
	} else {
		query = fmt.Sprintf(`
			SELECT id, parent_id, name, path_segment, sort_order, folder_types, created_at, updated_at
			FROM %s
			WHERE parent_id = $1
			ORDER BY sort_order ASC, name ASC
		`, r.table)
		args = append(args, *parentID)
	}

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list child folders: %w", err)
	}
	defer rows.Close()

	return scanFolders(rows)
}

// GetAll retrieves every folder as a flat list
func (r *PostgresFolderRepository) GetAll(ctx context.Context) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, parent_id, name, path_segment, sort_order, folder_types, created_at, updated_at
		FROM %s
		ORDER BY sort_order ASC, name ASC
	`, r.table)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	return scanFolders(rows)
}

func scanFolders(rows pgx.Rows) ([]models.Folder, error) {
	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		if err := rows.Scan(
			&folder.ID,
			&folder.ParentID,
			&folder.Name,
			&folder.PathSegment,
			&folder.SortOrder,
			&folder.FolderTypes,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}
	return folders, nil
}
