package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/homefinder/api/internal/database"
	"github.com/stwalsh4118/homefinder/api/internal/models"
)

// ReviewRepository defines data access for property ratings.
type ReviewRepository interface {
	// Create inserts r in a single conditional statement. If the user has
	// already reviewed the property, nothing is written and ErrDuplicate is
	// returned. Returns ErrForeignKey if the property does not exist.
	Create(ctx context.Context, r *models.Review) error

	// FindByID returns nil, nil if the review does not exist.
	FindByID(ctx context.Context, id int64) (*models.Review, error)

	// List returns reviews newest first, optionally restricted to one property.
	List(ctx context.Context, propertyID *int64) ([]models.Review, error)
}

type reviewRepository struct {
	db database.Querier
}

// NewReviewRepository creates a new instance of ReviewRepository.
func NewReviewRepository(db database.Querier) ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewColumns = `id, property_id, user_id, rating, created_at, updated_at`

func scanReview(row pgx.Row) (*models.Review, error) {
	var rv models.Review
	if err := row.Scan(&rv.ID, &rv.PropertyID, &rv.UserID, &rv.Rating, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *reviewRepository) Create(ctx context.Context, rv *models.Review) error {
	// ON CONFLICT DO NOTHING makes the insert and the duplicate check one
	// statement; concurrent duplicates resolve to exactly one row.
	query := `
		INSERT INTO reviews (property_id, user_id, rating)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT reviews_property_user_key DO NOTHING
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, rv.PropertyID, rv.UserID, rv.Rating).
		Scan(&rv.ID, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to insert review (property=%d, user=%d): %w",
				rv.PropertyID, rv.UserID, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert review (property=%d, user=%d): %w",
			rv.PropertyID, rv.UserID, translate(err))
	}
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id int64) (*models.Review, error) {
	rv, err := scanReview(r.db.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query review %d: %w", id, err)
	}
	return rv, nil
}

func (r *reviewRepository) List(ctx context.Context, propertyID *int64) ([]models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews
		WHERE ($1::BIGINT IS NULL OR property_id = $1)
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review rows: %w", err)
	}
	return reviews, nil
}
