package services

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/stwalsh4118/homefinder/api/internal/logger"
	"github.com/stwalsh4118/homefinder/api/internal/metrics"
	"github.com/stwalsh4118/homefinder/api/internal/models"
	"github.com/stwalsh4118/homefinder/api/internal/repository"
	"github.com/stwalsh4118/homefinder/api/internal/tokens"
)

// Login outcome labels for the logins metric.
const (
	loginSuccess = "success"
	loginFailure = "failure"
)

// dummyHash is compared against when the username is unknown, so a miss
// costs the same as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("homefinder-timing"), bcrypt.DefaultCost)

// Session is the result of a successful login.
type Session struct {
	User    *models.User
	Access  string
	Refresh string
}

// AuthService issues, refreshes, verifies and revokes tokens.
type AuthService interface {
	// Login checks the credentials and issues an outstanding token pair.
	Login(ctx context.Context, username, password string) (*Session, error)

	// Refresh issues a new access token from a valid refresh token.
	// The refresh token itself is not rotated.
	Refresh(ctx context.Context, refresh string) (string, error)

	// Verify reports ErrInvalidToken unless raw is a valid, unrevoked token
	// of either kind.
	Verify(ctx context.Context, raw string) error

	// VerifyAccess validates a bearer access token and returns its user.
	VerifyAccess(ctx context.Context, raw string) (int64, error)

	// Logout blacklists the caller's refresh token and the access token the
	// request was authenticated with.
	Logout(ctx context.Context, callerID int64, access, refresh string) error
}

type authService struct {
	users     repository.UserRepository
	manager   *tokens.Manager
	lifecycle *tokens.Lifecycle
	metrics   *metrics.Metrics
	log       *logger.Logger
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(
	users repository.UserRepository,
	manager *tokens.Manager,
	lifecycle *tokens.Lifecycle,
	m *metrics.Metrics,
	log *logger.Logger,
) AuthService {
	return &authService{
		users:     users,
		manager:   manager,
		lifecycle: lifecycle,
		metrics:   m,
		log:       log,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		s.log.Error("Failed to query user", err, map[string]interface{}{"username": username})
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	hash := dummyHash
	if u != nil {
		hash = []byte(u.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || u == nil {
		s.metrics.LoginsTotal.WithLabelValues(loginFailure).Inc()
		s.log.Info("Login rejected", map[string]interface{}{"username": username})
		return nil, ErrInvalidCredentials
	}

	access, err := s.issue(ctx, u.ID, models.TokenAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issue(ctx, u.ID, models.TokenRefresh)
	if err != nil {
		return nil, err
	}

	s.metrics.LoginsTotal.WithLabelValues(loginSuccess).Inc()
	s.log.Info("User logged in", map[string]interface{}{"user_id": u.ID})

	return &Session{User: u, Access: access, Refresh: refresh}, nil
}

func (s *authService) Refresh(ctx context.Context, refresh string) (string, error) {
	claims, err := s.validate(ctx, refresh, models.TokenRefresh)
	if err != nil {
		return "", err
	}

	access, err := s.issue(ctx, claims.UserID, models.TokenAccess)
	if err != nil {
		return "", err
	}

	s.log.Debug("Access token refreshed", map[string]interface{}{"user_id": claims.UserID})
	return access, nil
}

func (s *authService) Verify(ctx context.Context, raw string) error {
	claims, err := s.manager.ParseAny(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return s.checkRevoked(ctx, claims)
}

func (s *authService) VerifyAccess(ctx context.Context, raw string) (int64, error) {
	claims, err := s.validate(ctx, raw, models.TokenAccess)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

func (s *authService) Logout(ctx context.Context, callerID int64, access, refresh string) error {
	if err := requireCaller(callerID); err != nil {
		return err
	}

	refreshClaims, err := s.manager.Parse(refresh, models.TokenRefresh)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if refreshClaims.UserID != callerID {
		s.log.Warn("Logout with another user's refresh token", map[string]interface{}{
			"caller_id":  callerID,
			"token_user": refreshClaims.UserID,
		})
		return ErrInvalidToken
	}

	accessClaims, err := s.manager.Parse(access, models.TokenAccess)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	// Each revocation is a single upsert, so neither depends on the token
	// having been recorded first.
	for _, c := range []*tokens.Claims{refreshClaims, accessClaims} {
		if err := s.lifecycle.Revoke(ctx, c); err != nil {
			s.log.Error("Failed to revoke token", err, map[string]interface{}{
				"user_id": callerID,
				"jti":     c.ID,
			})
			return err
		}
	}

	s.metrics.TokensRevoked.Add(2)
	s.log.Info("User logged out", map[string]interface{}{"user_id": callerID})
	return nil
}

// issue signs a token and records it as outstanding.
func (s *authService) issue(ctx context.Context, userID int64, kind models.TokenKind) (string, error) {
	raw, claims, err := s.manager.Issue(userID, kind)
	if err != nil {
		s.log.Error("Failed to issue token", err, map[string]interface{}{"user_id": userID, "kind": kind})
		return "", err
	}
	if err := s.lifecycle.Record(ctx, claims); err != nil {
		s.log.Error("Failed to record token", err, map[string]interface{}{"user_id": userID, "kind": kind})
		return "", err
	}
	return raw, nil
}

func (s *authService) validate(ctx context.Context, raw string, kind models.TokenKind) (*tokens.Claims, error) {
	claims, err := s.manager.Parse(raw, kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *authService) checkRevoked(ctx context.Context, claims *tokens.Claims) error {
	revoked, err := s.lifecycle.IsRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return fmt.Errorf("%w: %w", ErrInvalidToken, tokens.ErrRevoked)
	}
	return nil
}

