package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/homefinder/api/internal/database"
	"github.com/stwalsh4118/homefinder/api/internal/models"
)

// ImageRepository defines data access for property images.
type ImageRepository interface {
	// Create inserts img. Returns ErrForeignKey if the property does not exist.
	Create(ctx context.Context, img *models.PropertyImage) error

	// FindByID returns nil, nil if the image does not exist.
	FindByID(ctx context.Context, id int64) (*models.PropertyImage, error)

	// Delete removes the image row. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error
}

type imageRepository struct {
	db database.Querier
}

// NewImageRepository creates a new instance of ImageRepository.
func NewImageRepository(db database.Querier) ImageRepository {
	return &imageRepository{db: db}
}

const imageColumns = `id, property_id, image, object_key, is_primary, created_at`

func scanImage(row pgx.Row) (*models.PropertyImage, error) {
	var img models.PropertyImage
	if err := row.Scan(&img.ID, &img.PropertyID, &img.Image, &img.ObjectKey, &img.IsPrimary, &img.CreatedAt); err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *imageRepository) Create(ctx context.Context, img *models.PropertyImage) error {
	query := `
		INSERT INTO property_images (property_id, image, object_key, is_primary)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, img.PropertyID, img.Image, img.ObjectKey, img.IsPrimary).
		Scan(&img.ID, &img.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert image for property %d: %w", img.PropertyID, translate(err))
	}
	return nil
}

func (r *imageRepository) FindByID(ctx context.Context, id int64) (*models.PropertyImage, error) {
	img, err := scanImage(r.db.QueryRow(ctx, `SELECT `+imageColumns+` FROM property_images WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query image %d: %w", id, err)
	}
	return img, nil
}

func (r *imageRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM property_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete image %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete image %d: %w", id, ErrNotFound)
	}
	return nil
}
