package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Errors returned by mutating repository methods. Lookups report a missing
// row as nil, nil instead of ErrNotFound.
var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("record violates a unique constraint")
	ErrForeignKey = errors.New("referenced record does not exist")
)

// PostgreSQL SQLSTATE codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translate maps constraint violations onto the package sentinels and leaves
// every other error untouched. The original error stays in the chain.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return &constraintError{sentinel: ErrDuplicate, constraint: pgErr.ConstraintName, err: err}
	case pgForeignKeyViolation:
		return &constraintError{sentinel: ErrForeignKey, constraint: pgErr.ConstraintName, err: err}
	}
	return err
}

type constraintError struct {
	sentinel   error
	constraint string
	err        error
}

func (e *constraintError) Error() string {
	if e.constraint == "" {
		return e.sentinel.Error()
	}
	return e.sentinel.Error() + " (" + e.constraint + ")"
}

func (e *constraintError) Unwrap() []error { return []error{e.sentinel, e.err} }

// ConstraintName returns the violated constraint carried by err, if any.
func ConstraintName(err error) string {
	var ce *constraintError
	if errors.As(err, &ce) {
		return ce.constraint
	}
	return ""
}
