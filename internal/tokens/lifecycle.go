package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stwalsh4118/homefinder/api/internal/logger"
	"github.com/stwalsh4118/homefinder/api/internal/models"
)

// Store persists token state. repository.TokenRepository satisfies it.
type Store interface {
	Transition(ctx context.Context, rec models.TokenRecord, to models.TokenState) (models.TokenState, error)
	State(ctx context.Context, jti string) (models.TokenState, error)
}

// Denylist is a fast lookup of blacklisted jtis. Entries may expire once the
// token itself has expired.
type Denylist interface {
	Add(ctx context.Context, jti string, ttl time.Duration) error
	Contains(ctx context.Context, jti string) (bool, error)
}

// ErrIllegalTransition is returned for a move the state machine forbids.
var ErrIllegalTransition = errors.New("illegal token state transition")

// Lifecycle drives the Issued -> Outstanding -> Blacklisted state machine.
// The store is authoritative; the denylist is a cache in front of it.
type Lifecycle struct {
	store    Store
	denylist Denylist
	log      *logger.Logger
	now      func() time.Time
}

// NewLifecycle creates a Lifecycle. denylist may be nil.
func NewLifecycle(store Store, denylist Denylist, log *logger.Logger) *Lifecycle {
	if denylist == nil {
		denylist = NopDenylist{}
	}
	return &Lifecycle{store: store, denylist: denylist, log: log, now: time.Now}
}

// Transition moves a token to the target state in one atomic store write.
// Any state may be blacklisted, including a token that was never recorded.
// The current state is never read here: the store's upsert keeps a
// blacklisted token blacklisted and returns the state actually reached.
func (l *Lifecycle) Transition(ctx context.Context, c *Claims, to models.TokenState) (models.TokenState, error) {
	if !to.IsTarget() {
		return "", fmt.Errorf("%w: to %s", ErrIllegalTransition, to)
	}

	state, err := l.store.Transition(ctx, c.Record(), to)
	if err != nil {
		return "", err
	}

	if state == models.TokenBlacklisted {
		if err := l.denylist.Add(ctx, c.ID, c.Remaining(l.now())); err != nil {
			// The store already holds the revocation; a cache miss falls back to it.
			l.log.Warn("Failed to cache revoked token", map[string]interface{}{
				"jti":   c.ID,
				"error": err.Error(),
			})
		}
	}
	return state, nil
}

// Record marks a freshly issued token as outstanding.
func (l *Lifecycle) Record(ctx context.Context, c *Claims) error {
	state, err := l.Transition(ctx, c, models.TokenOutstanding)
	if err != nil {
		return fmt.Errorf("failed to record %s token: %w", c.Type, err)
	}
	if state == models.TokenBlacklisted {
		return fmt.Errorf("failed to record %s token: %w", c.Type, ErrRevoked)
	}
	return nil
}

// Revoke blacklists a token. Revoking twice is a no-op.
func (l *Lifecycle) Revoke(ctx context.Context, c *Claims) error {
	if _, err := l.Transition(ctx, c, models.TokenBlacklisted); err != nil {
		return fmt.Errorf("failed to revoke %s token: %w", c.Type, err)
	}
	return nil
}

// IsRevoked reports whether jti is blacklisted, checking the denylist first.
func (l *Lifecycle) IsRevoked(ctx context.Context, jti string) (bool, error) {
	hit, err := l.denylist.Contains(ctx, jti)
	if err != nil {
		l.log.Warn("Denylist lookup failed, falling back to database", map[string]interface{}{
			"jti":   jti,
			"error": err.Error(),
		})
	} else if hit {
		return true, nil
	}

	state, err := l.store.State(ctx, jti)
	if err != nil {
		return false, fmt.Errorf("failed to check token state: %w", err)
	}
	return state == models.TokenBlacklisted, nil
}
