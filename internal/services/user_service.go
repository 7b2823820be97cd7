package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/stwalsh4118/homefinder/api/internal/events"
	"github.com/stwalsh4118/homefinder/api/internal/logger"
	"github.com/stwalsh4118/homefinder/api/internal/models"
	"github.com/stwalsh4118/homefinder/api/internal/repository"
)

// Password length bounds accepted by Register. bcrypt hashes at most 72 bytes.
const (
	MinPasswordLength = 8
	MaxPasswordBytes  = 72
)

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	ProfilePicture *string
	Username       string
	Email          string
	Password       string
	FirstName      string
	LastName       string
	PhoneNumber    string
	Role           string
	Bio            string
}

// UserService manages accounts.
type UserService interface {
	// Register creates an account with a bcrypt-hashed password.
	// Returns ErrUsernameTaken if the username is in use.
	Register(ctx context.Context, in RegisterInput) (*models.User, error)

	// Get returns ErrUserNotFound if the user does not exist.
	Get(ctx context.Context, id int64) (*models.User, error)
}

type userService struct {
	repo     repository.UserRepository
	events   events.Publisher
	log      *logger.Logger
	hashCost int
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo repository.UserRepository, publisher events.Publisher, log *logger.Logger) UserService {
	return &userService{
		repo:     repo,
		events:   publisher,
		log:      log,
		hashCost: bcrypt.DefaultCost,
	}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	switch {
	case in.Username == "":
		return nil, invalid("username", "This field may not be blank.")
	case len(in.Password) < MinPasswordLength:
		return nil, invalid("password", fmt.Sprintf("Ensure this field has at least %d characters.", MinPasswordLength))
	case len(in.Password) > MaxPasswordBytes:
		return nil, invalid("password", fmt.Sprintf("Ensure this field has no more than %d bytes.", MaxPasswordBytes))
	case strings.TrimSpace(in.FirstName) == "":
		return nil, invalid("first_name", "This field may not be blank.")
	case strings.TrimSpace(in.LastName) == "":
		return nil, invalid("last_name", "This field may not be blank.")
	}

	role := in.Role
	if role == "" {
		role = models.RoleBuyer
	}
	if !models.ValidRole(role) {
		return nil, invalid("role", fmt.Sprintf("%q is not a valid choice.", role))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.User{
		Username:       in.Username,
		Email:          in.Email,
		PasswordHash:   string(hash),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		PhoneNumber:    in.PhoneNumber,
		Role:           role,
		ProfilePicture: in.ProfilePicture,
		Bio:            in.Bio,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		s.log.Error("Failed to create user", err, map[string]interface{}{"username": in.Username})
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("User registered", map[string]interface{}{"user_id": u.ID, "role": u.Role})
	if err := s.events.Publish(ctx, events.UserRegistered, map[string]interface{}{
		"user_id":  u.ID,
		"username": u.Username,
		"role":     u.Role,
	}); err != nil {
		s.log.Warn("Failed to publish event", map[string]interface{}{
			"subject": events.UserRegistered,
			"error":   err.Error(),
		})
	}

	return u, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to query user", err, map[string]interface{}{"user_id": id})
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
