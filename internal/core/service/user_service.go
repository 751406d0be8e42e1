package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/siteworks/records-api/internal/core/domain"
	"github.com/siteworks/records-api/internal/core/policy"
	"github.com/siteworks/records-api/internal/core/ports"
)

// UserService implements admin account management. Admin accounts are never
// deleted, and the last admin is never demoted, so at least one admin always
// exists.
type UserService struct {
	users ports.UserRepository
	log   zerolog.Logger
}

func NewUserService(users ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{users: users, log: log}
}

func (s *UserService) Create(ctx context.Context, caller domain.Identity, in ports.CreateUserInput) (*domain.User, error) {
	if !policy.Allows(caller.Role, policy.ActionManageUsers) {
		return nil, domain.ErrForbidden
	}
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" || !in.Role.Valid() {
		return nil, domain.ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user created")
	return created, nil
}

func (s *UserService) List(ctx context.Context, caller domain.Identity) ([]*domain.User, error) {
	if !policy.Allows(caller.Role, policy.ActionManageUsers) {
		return nil, domain.ErrForbidden
	}
	return s.users.List(ctx)
}

func (s *UserService) Delete(ctx context.Context, caller domain.Identity, userID string) error {
	if !policy.Allows(caller.Role, policy.ActionManageUsers) {
		return domain.ErrForbidden
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == domain.RoleAdmin {
		return domain.ErrAdminRequired
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Str("deleted_by", caller.UserID).Msg("user deleted")
	return nil
}

func (s *UserService) ChangeRole(ctx context.Context, caller domain.Identity, userID string, role domain.Role) (*domain.User, error) {
	if !policy.Allows(caller.Role, policy.ActionManageUsers) {
		return nil, domain.ErrForbidden
	}
	if !role.Valid() {
		return nil, domain.ErrValidation
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}

	// Demoting an admin is allowed only while another admin remains.
	if user.Role == domain.RoleAdmin {
		admins, err := s.users.CountByRole(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, domain.ErrAdminRequired
		}
	}

	updated, err := s.users.UpdateRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", userID).Str("role", string(role)).Msg("user role changed")
	return updated, nil
}
