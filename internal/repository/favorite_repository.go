package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/homefinder/api/internal/database"
	"github.com/stwalsh4118/homefinder/api/internal/models"
)

// FavoriteRepository defines data access for saved properties.
type FavoriteRepository interface {
	// Create inserts f. The (user, property) unique constraint is the only
	// duplicate check: a second insert returns ErrDuplicate.
	// Returns ErrForeignKey if the property does not exist.
	Create(ctx context.Context, f *models.Favorite) error

	// FindByID returns nil, nil if the favorite does not exist.
	FindByID(ctx context.Context, id int64) (*models.Favorite, error)

	// ListByUser returns the user's favorites, newest first.
	ListByUser(ctx context.Context, userID int64) ([]models.Favorite, error)

	// Delete removes the favorite. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error
}

type favoriteRepository struct {
	db database.Querier
}

// NewFavoriteRepository creates a new instance of FavoriteRepository.
func NewFavoriteRepository(db database.Querier) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(ctx context.Context, f *models.Favorite) error {
	query := `
		INSERT INTO favorites (user_id, property_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	if err := r.db.QueryRow(ctx, query, f.UserID, f.PropertyID).Scan(&f.ID, &f.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert favorite (user=%d, property=%d): %w",
			f.UserID, f.PropertyID, translate(err))
	}
	return nil
}

func (r *favoriteRepository) FindByID(ctx context.Context, id int64) (*models.Favorite, error) {
	var f models.Favorite
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, property_id, created_at FROM favorites WHERE id = $1`, id,
	).Scan(&f.ID, &f.UserID, &f.PropertyID, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query favorite %d: %w", id, err)
	}
	return &f, nil
}

func (r *favoriteRepository) ListByUser(ctx context.Context, userID int64) ([]models.Favorite, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, property_id, created_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites for user %d: %w", userID, err)
	}
	defer rows.Close()

	favorites := []models.Favorite{}
	for rows.Next() {
		var f models.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.PropertyID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite row: %w", err)
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorite rows: %w", err)
	}
	return favorites, nil
}

func (r *favoriteRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM favorites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete favorite %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete favorite %d: %w", id, ErrNotFound)
	}
	return nil
}
