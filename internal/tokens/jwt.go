// Package tokens issues and validates JWT access/refresh pairs and tracks the
// revocation state of each token by its jti.
package tokens

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stwalsh4118/homefinder/api/internal/config"
	"github.com/stwalsh4118/homefinder/api/internal/models"
)

var (
	// ErrInvalidToken covers bad signatures, malformed tokens and expired tokens.
	ErrInvalidToken = errors.New("token is invalid or expired")
	// ErrWrongTokenType is returned when a refresh token is used as an access token or vice versa.
	ErrWrongTokenType = errors.New("token has wrong type")
	// ErrRevoked is returned for a token whose jti has been blacklisted.
	ErrRevoked = errors.New("token is blacklisted")
)

// Claims is the JWT payload. The subject holds the user ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64            `json:"user_id"`
	Type   models.TokenKind `json:"token_type"`
}

// Record converts the claims into the persisted token record.
func (c *Claims) Record() models.TokenRecord {
	rec := models.TokenRecord{
		JTI:    c.ID,
		Kind:   c.Type,
		UserID: c.UserID,
	}
	if c.ExpiresAt != nil {
		rec.ExpiresAt = c.ExpiresAt.Time
	}
	return rec
}

// Remaining returns how long until the token expires, never negative.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(c.ExpiresAt.Sub(now), 0)
}

// Manager signs and parses HS256 tokens.
type Manager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewManager creates a Manager from the JWT configuration.
func NewManager(cfg config.JWTConfig) *Manager {
	return &Manager{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
}

// Issue signs a new token of the given kind for userID.
// Every token gets a fresh jti, so it starts in the Issued state.
func (m *Manager) Issue(userID int64, kind models.TokenKind) (string, *Claims, error) {
	ttl := m.accessTTL
	if kind == models.TokenRefresh {
		ttl = m.refreshTTL
	}

	now := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Type:   kind,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign %s token: %w", kind, err)
	}
	return signed, claims, nil
}

// Parse verifies the signature, issuer and expiry of raw and checks that it
// is of the expected kind. It does not consult revocation state.
func (m *Manager) Parse(raw string, kind models.TokenKind) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" || claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing jti or user", ErrInvalidToken)
	}
	if claims.Type != kind {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrWrongTokenType, kind, claims.Type)
	}
	return claims, nil
}

// ParseAny verifies raw as either an access or a refresh token.
func (m *Manager) ParseAny(raw string) (*Claims, error) {
	claims, err := m.Parse(raw, models.TokenAccess)
	if errors.Is(err, ErrWrongTokenType) {
		return m.Parse(raw, models.TokenRefresh)
	}
	return claims, err
}
