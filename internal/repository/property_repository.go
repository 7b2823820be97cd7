package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/homefinder/api/internal/database"
	"github.com/stwalsh4118/homefinder/api/internal/filters"
	"github.com/stwalsh4118/homefinder/api/internal/models"
)

// PropertyRepository defines data access for listings.
// Reads populate PropertyType, Owner and Images.
type PropertyRepository interface {
	// List returns the properties matching f, newest first.
	// Returns an empty slice if nothing matches.
	List(ctx context.Context, f filters.PropertyFilter) ([]models.Property, error)

	// FindByID returns nil, nil if the property does not exist.
	FindByID(ctx context.Context, id int64) (*models.Property, error)

	// FindByIDs returns the existing properties among ids, keyed by ID.
	FindByIDs(ctx context.Context, ids []int64) (map[int64]models.Property, error)

	// Create inserts p and fills in its ID, status and timestamps.
	// Returns ErrForeignKey if the property type or owner does not exist.
	Create(ctx context.Context, p *models.Property) error

	// Update overwrites the mutable columns of p. OwnerID is never changed.
	// Returns ErrNotFound if the row is gone and ErrForeignKey for an unknown type.
	Update(ctx context.Context, p *models.Property) error

	// Delete removes the property; images, favorites and reviews cascade.
	// Returns ErrNotFound if the row does not exist.
	Delete(ctx context.Context, id int64) error
}

type propertyRepository struct {
	db database.Querier
}

// NewPropertyRepository creates a new instance of PropertyRepository.
func NewPropertyRepository(db database.Querier) PropertyRepository {
	return &propertyRepository{db: db}
}

// propertySelect reads a property with its type and owner. The filter package
// renders conditions against the p and pt aliases.
const propertySelect = `
	SELECT
		p.id, p.title, p.description, p.price, p.listing_type, p.property_type_id,
		p.bedrooms, p.bathrooms, p.square_feet, p.address, p.city, p.state, p.zip_code,
		p.latitude, p.longitude, p.status, p.is_verified, p.owner_id,
		p.created_at, p.updated_at,
		pt.id, pt.name,
		u.id, u.username, u.email, u.first_name, u.last_name, u.phone_number,
		u.role, u.profile_picture, u.bio, u.is_verified, u.created_at, u.updated_at
	FROM properties p
	LEFT JOIN property_types pt ON pt.id = p.property_type_id
	JOIN users u ON u.id = p.owner_id`

func scanProperty(row pgx.Row) (*models.Property, error) {
	var (
		p        models.Property
		owner    models.User
		typeID   *int64
		typeName *string
	)
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Price,
		&p.ListingType,
		&p.PropertyTypeID,
		&p.Bedrooms,
		&p.Bathrooms,
		&p.SquareFeet,
		&p.Address,
		&p.City,
		&p.State,
		&p.ZipCode,
		&p.Latitude,
		&p.Longitude,
		&p.Status,
		&p.IsVerified,
		&p.OwnerID,
		&p.CreatedAt,
		&p.UpdatedAt,
		&typeID,
		&typeName,
		&owner.ID,
		&owner.Username,
		&owner.Email,
		&owner.FirstName,
		&owner.LastName,
		&owner.PhoneNumber,
		&owner.Role,
		&owner.ProfilePicture,
		&owner.Bio,
		&owner.IsVerified,
		&owner.CreatedAt,
		&owner.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if typeID != nil && typeName != nil {
		p.PropertyType = &models.PropertyType{ID: *typeID, Name: *typeName}
	}
	p.Owner = &owner
	p.Images = []models.PropertyImage{}
	return &p, nil
}

func (r *propertyRepository) List(ctx context.Context, f filters.PropertyFilter) ([]models.Property, error) {
	where, args := f.Where(1)
	query := propertySelect + ` WHERE ` + where + ` ORDER BY p.created_at DESC, p.id DESC`

	props, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return props, nil
}

func (r *propertyRepository) FindByID(ctx context.Context, id int64) (*models.Property, error) {
	p, err := scanProperty(r.db.QueryRow(ctx, propertySelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query property %d: %w", id, err)
	}

	props := []models.Property{*p}
	if err := r.attachImages(ctx, props); err != nil {
		return nil, err
	}
	return &props[0], nil
}

func (r *propertyRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]models.Property, error) {
	result := make(map[int64]models.Property, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	props, err := r.query(ctx, propertySelect+` WHERE p.id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties %v: %w", ids, err)
	}
	for _, p := range props {
		result[p.ID] = p
	}
	return result, nil
}

// query runs a propertySelect query and attaches images to the results.
func (r *propertyRepository) query(ctx context.Context, query string, args ...any) ([]models.Property, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	props := []models.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}
		props = append(props, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating property rows: %w", err)
	}

	if err := r.attachImages(ctx, props); err != nil {
		return nil, err
	}
	return props, nil
}

// attachImages loads the images of every property in one query.
func (r *propertyRepository) attachImages(ctx context.Context, props []models.Property) error {
	if len(props) == 0 {
		return nil
	}

	ids := make([]int64, len(props))
	index := make(map[int64]int, len(props))
	for i := range props {
		ids[i] = props[i].ID
		index[props[i].ID] = i
	}

	rows, err := r.db.Query(ctx, `SELECT `+imageColumns+` FROM property_images
		WHERE property_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("failed to query property images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return fmt.Errorf("failed to scan property image row: %w", err)
		}
		i := index[img.PropertyID]
		props[i].Images = append(props[i].Images, *img)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating property image rows: %w", err)
	}
	return nil
}

func (r *propertyRepository) Create(ctx context.Context, p *models.Property) error {
	query := `
		INSERT INTO properties (
			title, description, price, listing_type, property_type_id,
			bedrooms, bathrooms, square_feet, address, city, state, zip_code,
			latitude, longitude, status, owner_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, is_verified, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		p.Title,
		p.Description,
		p.Price,
		p.ListingType,
		p.PropertyTypeID,
		p.Bedrooms,
		p.Bathrooms,
		p.SquareFeet,
		p.Address,
		p.City,
		p.State,
		p.ZipCode,
		p.Latitude,
		p.Longitude,
		p.Status,
		p.OwnerID,
	).Scan(&p.ID, &p.IsVerified, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert property: %w", translate(err))
	}
	return nil
}

func (r *propertyRepository) Update(ctx context.Context, p *models.Property) error {
	query := `
		UPDATE properties SET
			title = $2,
			description = $3,
			price = $4,
			listing_type = $5,
			property_type_id = $6,
			bedrooms = $7,
			bathrooms = $8,
			square_feet = $9,
			address = $10,
			city = $11,
			state = $12,
			zip_code = $13,
			latitude = $14,
			longitude = $15,
			status = $16,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		p.ID,
		p.Title,
		p.Description,
		p.Price,
		p.ListingType,
		p.PropertyTypeID,
		p.Bedrooms,
		p.Bathrooms,
		p.SquareFeet,
		p.Address,
		p.City,
		p.State,
		p.ZipCode,
		p.Latitude,
		p.Longitude,
		p.Status,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to update property %d: %w", p.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to update property %d: %w", p.ID, translate(err))
	}
	return nil
}

func (r *propertyRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete property %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete property %d: %w", id, ErrNotFound)
	}
	return nil
}
