package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prototypeforge/aicxo/internal/types"
)

// FileDAO provides database operations for uploaded company files
type FileDAO interface {
	// Create stores a new company file
	Create(ctx context.Context, file *CompanyFile) error

	// GetByID retrieves a file by ID, including its raw bytes
	GetByID(ctx context.Context, id types.ID) (*CompanyFile, error)

	// ListByUser lists a user's files without raw bytes, newest first
	ListByUser(ctx context.Context, userID int64) ([]*CompanyFile, error)

	// Delete deletes a file
	Delete(ctx context.Context, id types.ID) error
}

// fileDAO implements FileDAO
type fileDAO struct {
	db *DB
}

// NewFileDAO creates a new file DAO
func NewFileDAO(db *DB) FileDAO {
	return &fileDAO{db: db}
}

// Create stores a new company file
func (d *fileDAO) Create(ctx context.Context, file *CompanyFile) error {
	if file.ID.IsZero() {
		file.ID = types.NewID()
	}
	if file.ExtractionStatus == "" {
		file.ExtractionStatus = ExtractionStatusSuccess
	}

	query := `
		INSERT INTO company_files (
			id, user_id, filename, category, mime_type, content, description,
			extraction_status, raw_data, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`

	_, err := d.db.conn.ExecContext(
		ctx, query,
		file.ID,
		file.UserID,
		file.Filename,
		file.Category,
		file.MIMEType,
		file.Content,
		file.Description,
		file.ExtractionStatus,
		file.RawData,
	)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to create file", err)
	}

	return nil
}

// GetByID retrieves a file by ID, including its raw bytes
func (d *fileDAO) GetByID(ctx context.Context, id types.ID) (*CompanyFile, error) {
	query := `
		SELECT id, user_id, filename, category, mime_type, content, description,
			extraction_status, raw_data, created_at
		FROM company_files WHERE id = ?
	`

	var file CompanyFile
	err := d.db.conn.QueryRowContext(ctx, query, id).Scan(
		&file.ID,
		&file.UserID,
		&file.Filename,
		&file.Category,
		&file.MIMEType,
		&file.Content,
		&file.Description,
		&file.ExtractionStatus,
		&file.RawData,
		&file.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, types.NewError(types.FILE_NOT_FOUND, fmt.Sprintf("file not found: %s", id))
	}
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to get file", err)
	}

	return &file, nil
}

// ListByUser lists a user's files without raw bytes, newest first
func (d *fileDAO) ListByUser(ctx context.Context, userID int64) ([]*CompanyFile, error) {
	query := `
		SELECT id, user_id, filename, category, mime_type, content, description,
			extraction_status, created_at
		FROM company_files
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := d.db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to list files", err)
	}
	defer rows.Close()

	var files []*CompanyFile
	for rows.Next() {
		var file CompanyFile
		if err := rows.Scan(
			&file.ID,
			&file.UserID,
			&file.Filename,
			&file.Category,
			&file.MIMEType,
			&file.Content,
			&file.Description,
			&file.ExtractionStatus,
			&file.CreatedAt,
		); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan file", err)
		}
		files = append(files, &file)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "error iterating files", err)
	}

	return files, nil
}

// Delete deletes a file
func (d *fileDAO) Delete(ctx context.Context, id types.ID) error {
	result, err := d.db.conn.ExecContext(ctx, "DELETE FROM company_files WHERE id = ?", id)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to delete file", err)
	}

	return requireRowAffected(result, types.FILE_NOT_FOUND, fmt.Sprintf("file not found: %s", id))
}
