package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/equiseed/equiseed/internal/shared"
)

// RoleAssigner grants the founder role on signup.
type RoleAssigner interface {
	AssignRole(ctx context.Context, userID int64, roleName string) error
}

// Service wraps authentication business rules.
type Service struct {
	repo        Repository
	roles       RoleAssigner
	founderRole string
}

// NewService constructs a new Service.
func NewService(repo Repository, roles RoleAssigner, founderRole string) *Service {
	return &Service{repo: repo, roles: roles, founderRole: founderRole}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Register creates a founder account and grants it the founder role.
func (s *Service) Register(ctx context.Context, reg Registration) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("auth: hash password: %w", err)
	}
	userID, err := s.repo.CreateUser(ctx, reg, string(hash))
	if err != nil {
		return 0, err
	}
	if s.roles != nil {
		if err := s.roles.AssignRole(ctx, userID, s.founderRole); err != nil {
			return 0, fmt.Errorf("auth: assign founder role: %w", err)
		}
	}
	return userID, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// PurgeExpiredSessions removes sessions past their expiry and reports how
// many were deleted.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx)
}
