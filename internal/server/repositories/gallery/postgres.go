// Package gallery persists references to hosted gallery images.
package gallery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/alumnihub/internal/common"
	"github.com/dmitrijs2005/alumnihub/internal/dbx"
	"github.com/dmitrijs2005/alumnihub/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements gallery storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create stores an image reference and fills ID and CreatedAt.
func (r *PostgresRepository) Create(ctx context.Context, img *models.GalleryImage) (*models.GalleryImage, error) {
	query :=
		`INSERT INTO gallery_images (url, storage_key)
		 VALUES ($1, $2)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, img.URL, img.StorageKey).Scan(&img.ID, &img.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return img, nil
}

// List returns all images, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.GalleryImage, error) {
	query := `SELECT id, url, storage_key, created_at FROM gallery_images ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.GalleryImage, 0)
	for rows.Next() {
		img := &models.GalleryImage{}
		if err := rows.Scan(&img.ID, &img.URL, &img.StorageKey, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Get returns the image or common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.GalleryImage, error) {
	if uuid.Validate(id) != nil {
		return nil, common.ErrorNotFound
	}

	query := `SELECT id, url, storage_key, created_at FROM gallery_images WHERE id = $1`

	img := &models.GalleryImage{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&img.ID, &img.URL, &img.StorageKey, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return img, nil
}

// Delete removes the image reference; it does not touch the hosted object.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return common.ErrorNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM gallery_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
