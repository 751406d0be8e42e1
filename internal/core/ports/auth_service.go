package ports

import (
	"context"
	"time"

	"github.com/siteworks/records-api/internal/core/domain"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// AuthService issues, resolves and revokes bearer tokens.
type AuthService interface {
	// Login verifies the password and issues a token with a fixed TTL.
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// Resolve maps a presented token back to an identity. Read-only: it never
	// extends the token's lifetime.
	Resolve(ctx context.Context, token string) (*domain.Identity, error)
	// Logout revokes the token. Idempotent; revoking an already-revoked or
	// expired token is not an error.
	Logout(ctx context.Context, token string) error
}
