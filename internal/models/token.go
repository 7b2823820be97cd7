package models

import "time"

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// TokenState is the lifecycle state of a token identified by its jti.
//
// A signed token starts Issued. Recording it makes it Outstanding.
// Blacklisted is terminal and may be entered from either state.
type TokenState string

const (
	TokenIssued      TokenState = "issued"
	TokenOutstanding TokenState = "outstanding"
	TokenBlacklisted TokenState = "blacklisted"
)

// CanTransition reports whether a token may move from s to next.
func (s TokenState) CanTransition(next TokenState) bool {
	switch s {
	case TokenIssued:
		return next == TokenOutstanding || next == TokenBlacklisted
	case TokenOutstanding:
		return next == TokenBlacklisted
	case TokenBlacklisted:
		return next == TokenBlacklisted
	}
	return false
}

// IsTarget reports whether s is a state a transition may end in. It says
// nothing about the current state; the store resolves that atomically.
func (s TokenState) IsTarget() bool {
	return s == TokenOutstanding || s == TokenBlacklisted
}

// TokenRecord is the persisted state of one token.
type TokenRecord struct {
	ExpiresAt     time.Time
	CreatedAt     time.Time
	BlacklistedAt *time.Time
	JTI           string
	Kind          TokenKind
	State         TokenState
	UserID        int64
}
