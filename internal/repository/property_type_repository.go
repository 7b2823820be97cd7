package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/homefinder/api/internal/database"
	"github.com/stwalsh4118/homefinder/api/internal/models"
)

// PropertyTypeRepository defines data access for property categories.
type PropertyTypeRepository interface {
	// List returns every type ordered by name.
	List(ctx context.Context) ([]models.PropertyType, error)

	// FindByID returns nil, nil if the type does not exist.
	FindByID(ctx context.Context, id int64) (*models.PropertyType, error)

	// Create inserts a type. Returns ErrDuplicate if the name is taken.
	Create(ctx context.Context, t *models.PropertyType) error
}

type propertyTypeRepository struct {
	db database.Querier
}

// NewPropertyTypeRepository creates a new instance of PropertyTypeRepository.
func NewPropertyTypeRepository(db database.Querier) PropertyTypeRepository {
	return &propertyTypeRepository{db: db}
}

func (r *propertyTypeRepository) List(ctx context.Context) ([]models.PropertyType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM property_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list property types: %w", err)
	}
	defer rows.Close()

	types := []models.PropertyType{}
	for rows.Next() {
		var t models.PropertyType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan property type row: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating property type rows: %w", err)
	}
	return types, nil
}

func (r *propertyTypeRepository) FindByID(ctx context.Context, id int64) (*models.PropertyType, error) {
	var t models.PropertyType
	err := r.db.QueryRow(ctx, `SELECT id, name FROM property_types WHERE id = $1`, id).Scan(&t.ID, &t.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query property type %d: %w", id, err)
	}
	return &t, nil
}

func (r *propertyTypeRepository) Create(ctx context.Context, t *models.PropertyType) error {
	err := r.db.QueryRow(ctx, `INSERT INTO property_types (name) VALUES ($1) RETURNING id`, t.Name).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to insert property type %q: %w", t.Name, translate(err))
	}
	return nil
}
