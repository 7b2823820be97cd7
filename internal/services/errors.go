package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stwalsh4118/homefinder/api/internal/filters"
)

// Service-level errors
var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrNotOwner               = errors.New("caller does not own this resource")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidFilter          = errors.New("invalid listing filter")

	ErrPropertyNotFound     = errors.New("property not found")
	ErrPropertyTypeNotFound = errors.New("property type not found")
	ErrImageNotFound        = errors.New("property image not found")
	ErrFavoriteNotFound     = errors.New("favorite not found")
	ErrReviewNotFound       = errors.New("review not found")
	ErrUserNotFound         = errors.New("user not found")

	ErrDuplicateFavorite = errors.New("property already in favorites")
	ErrDuplicateReview   = errors.New("property already rated by this user")
	ErrUsernameTaken     = errors.New("a user with that username already exists")

	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	ErrInvalidToken       = errors.New("token is invalid or expired")
	ErrStorageUnavailable = errors.New("image storage is not available")
)

// FilterError lists the listing filters that failed to parse in strict mode.
type FilterError struct {
	Fields []filters.FieldError
}

func (e *FilterError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidFilter, strings.Join(parts, "; "))
}

func (e *FilterError) Unwrap() error { return ErrInvalidFilter }

// InputError reports a single invalid field.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, e.Field, e.Message)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

func invalid(field, message string) error {
	return &InputError{Field: field, Message: message}
}

// requireCaller rejects anonymous callers. A zero user ID means no identity.
func requireCaller(callerID int64) error {
	if callerID == 0 {
		return ErrAuthenticationRequired
	}
	return nil
}

// requireOwner is the ownership guard for mutating owned records.
func requireOwner(callerID, ownerID int64) error {
	if err := requireCaller(callerID); err != nil {
		return err
	}
	if callerID != ownerID {
		return ErrNotOwner
	}
	return nil
}
