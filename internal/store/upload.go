package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/profilehub/apiserver/types"
)

// UploadRepository records ownership of stored profile pictures.
type UploadRepository struct {
	db *sql.DB
}

func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Create(ctx context.Context, upload types.Upload) (types.Upload, error) {
	upload.CreatedAt = time.Now()

	const query = `
		INSERT INTO uploads (filename, owner_id, content_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		upload.Filename,
		upload.OwnerID,
		upload.ContentType,
		upload.SizeBytes,
		upload.CreatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return types.Upload{}, ErrConflict
		}
		return types.Upload{}, err
	}
	return upload, nil
}

func (r *UploadRepository) Get(ctx context.Context, filename string) (types.Upload, error) {
	const query = `
		SELECT filename, owner_id, content_type, size_bytes, created_at
		FROM uploads
		WHERE filename = $1`
	var upload types.Upload
	err := r.db.QueryRowContext(ctx, query, filename).Scan(
		&upload.Filename,
		&upload.OwnerID,
		&upload.ContentType,
		&upload.SizeBytes,
		&upload.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Upload{}, ErrNotFound
		}
		return types.Upload{}, err
	}
	return upload, nil
}

func (r *UploadRepository) Delete(ctx context.Context, filename string) error {
	const query = `DELETE FROM uploads WHERE filename = $1`
	result, err := r.db.ExecContext(ctx, query, filename)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
