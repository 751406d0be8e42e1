package ports

import (
	"context"

	"github.com/siteworks/records-api/internal/core/domain"
)

// CreateUserInput carries the fields for an admin-created account.
type CreateUserInput struct {
	Username string
	Password string
	Role     domain.Role
}

// UserService is the admin-only account management surface. The at-least-one-
// admin invariant is enforced here: admin accounts are never deleted, and the
// last admin is never demoted.
type UserService interface {
	Create(ctx context.Context, caller domain.Identity, in CreateUserInput) (*domain.User, error)
	List(ctx context.Context, caller domain.Identity) ([]*domain.User, error)
	Delete(ctx context.Context, caller domain.Identity, userID string) error
	ChangeRole(ctx context.Context, caller domain.Identity, userID string, role domain.Role) (*domain.User, error)
}
