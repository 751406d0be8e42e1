package ports

import (
	"context"

	"github.com/siteworks/records-api/internal/core/domain"
)

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	// CountByRole is used to enforce the at-least-one-admin invariant.
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
}

// RevocationList tracks tokens that were explicitly logged out before their
// expiry. Entries may be dropped once the underlying token has expired.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, ttlSeconds int64) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
