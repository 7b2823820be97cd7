package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/homefinder/api/internal/database"
	"github.com/stwalsh4118/homefinder/api/internal/models"
)

// TokenRepository persists the lifecycle state of issued tokens by jti.
type TokenRepository interface {
	// Transition moves rec.JTI to the target state in one statement and
	// returns the state actually stored afterwards. Recording an already
	// blacklisted token leaves it blacklisted. Blacklisting a token that was
	// never recorded inserts it directly in the blacklisted state.
	Transition(ctx context.Context, rec models.TokenRecord, to models.TokenState) (models.TokenState, error)

	// State returns TokenIssued for a jti with no stored record.
	State(ctx context.Context, jti string) (models.TokenState, error)

	// DeleteExpired removes records whose token expired before cutoff.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type tokenRepository struct {
	db database.Querier
}

// NewTokenRepository creates a new instance of TokenRepository.
func NewTokenRepository(db database.Querier) TokenRepository {
	return &tokenRepository{db: db}
}

// ErrUnsupportedTransition is returned for a target state that is not stored.
var ErrUnsupportedTransition = errors.New("unsupported token state transition")

func (r *tokenRepository) Transition(ctx context.Context, rec models.TokenRecord, to models.TokenState) (models.TokenState, error) {
	var query string
	switch to {
	case models.TokenOutstanding:
		// The no-op update makes RETURNING report the existing state on conflict.
		query = `
			INSERT INTO tokens (jti, user_id, kind, state, expires_at)
			VALUES ($1, $2, $3, 'outstanding', $4)
			ON CONFLICT (jti) DO UPDATE SET state = tokens.state
			RETURNING state
		`
	case models.TokenBlacklisted:
		query = `
			INSERT INTO tokens (jti, user_id, kind, state, expires_at, blacklisted_at)
			VALUES ($1, $2, $3, 'blacklisted', $4, NOW())
			ON CONFLICT (jti) DO UPDATE SET
				state = 'blacklisted',
				blacklisted_at = COALESCE(tokens.blacklisted_at, EXCLUDED.blacklisted_at)
			RETURNING state
		`
	default:
		return "", fmt.Errorf("token %s to %q: %w", rec.JTI, to, ErrUnsupportedTransition)
	}

	var state models.TokenState
	if err := r.db.QueryRow(ctx, query, rec.JTI, rec.UserID, rec.Kind, rec.ExpiresAt).Scan(&state); err != nil {
		return "", fmt.Errorf("failed to move token %s to %s: %w", rec.JTI, to, translate(err))
	}
	return state, nil
}

func (r *tokenRepository) State(ctx context.Context, jti string) (models.TokenState, error) {
	var state models.TokenState
	err := r.db.QueryRow(ctx, `SELECT state FROM tokens WHERE jti = $1`, jti).Scan(&state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.TokenIssued, nil
		}
		return "", fmt.Errorf("failed to query token %s: %w", jti, err)
	}
	return state, nil
}

func (r *tokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM tokens WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
