package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/homefinder/api/internal/database"
	"github.com/stwalsh4118/homefinder/api/internal/models"
)

// UserRepository defines data access for user accounts.
type UserRepository interface {
	// Create inserts u and fills in its ID and timestamps.
	// Returns ErrDuplicate if the username is taken.
	Create(ctx context.Context, u *models.User) error

	// FindByID returns nil, nil if no user has the given ID.
	FindByID(ctx context.Context, id int64) (*models.User, error)

	// FindByUsername returns nil, nil if no user has the given username.
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type userRepository struct {
	db database.Querier
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db database.Querier) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `
	id, username, email, password_hash, first_name, last_name, phone_number,
	role, profile_picture, bio, is_verified, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.PhoneNumber,
		&u.Role,
		&u.ProfilePicture,
		&u.Bio,
		&u.IsVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, first_name, last_name,
			phone_number, role, profile_picture, bio)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, is_verified, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.PhoneNumber,
		u.Role,
		u.ProfilePicture,
		u.Bio,
	).Scan(&u.ID, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user %q: %w", u.Username, translate(err))
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user %d: %w", id, err)
	}
	return u, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user %q: %w", username, err)
	}
	return u, nil
}
