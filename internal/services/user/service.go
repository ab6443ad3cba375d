// Package user covers account administration and the caller's own profile.
package user

import (
	"context"
	"fmt"
	"time"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/db/models"
	"github.com/terraconstructs/sandaran/internal/repository"
	"github.com/terraconstructs/sandaran/internal/services/validation"
)

// RoleInput carries the global role for approve and set-role.
type RoleInput struct {
	Role auth.GlobalRole `mapstructure:"role"`
}

// ProfileInput changes the caller's own name or image.
type ProfileInput struct {
	Name  *string `mapstructure:"name"`
	Image *string `mapstructure:"image"`
}

// SessionRevoker ends every session of a user.
type SessionRevoker interface {
	RevokeUserSessions(ctx context.Context, userID string) error
}

// Service administers accounts.
type Service struct {
	users    repository.UserRepository
	sessions SessionRevoker
	now      func() time.Time
}

// NewService constructs a user service.
func NewService(users repository.UserRepository, sessions SessionRevoker) *Service {
	return &Service{users: users, sessions: sessions, now: time.Now}
}

// List returns every account.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

// ListPending returns accounts that are inactive or have no role yet.
func (s *Service) ListPending(ctx context.Context) ([]models.User, error) {
	return s.users.ListPending(ctx)
}

// Approve activates an account with a role other than NONE. approver is nil
// when the account is approved from the command line.
func (s *Service) Approve(ctx context.Context, approver *auth.Principal, userID string, role auth.GlobalRole) (*models.User, error) {
	if !role.Known() || role == auth.RoleNone {
		return nil, &validation.Error{Path: "$.role", Message: fmt.Sprintf("cannot approve with role %q", role)}
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user.Role = role
	user.IsActive = true
	user.ApprovedAt = &now
	if approver != nil {
		user.ApprovedByID = &approver.ID
	}
	if err := s.users.Update(ctx, user, "role_global", "is_active", "approved_at", "approved_by_id"); err != nil {
		return nil, err
	}
	return user, nil
}

// Deactivate disables an account, clears its role and ends its sessions.
func (s *Service) Deactivate(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.IsActive = false
	user.Role = auth.RoleNone
	if err := s.users.Update(ctx, user, "is_active", "role_global"); err != nil {
		return nil, err
	}
	if err := s.sessions.RevokeUserSessions(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("revoke sessions of %s: %w", user.ID, err)
	}
	return user, nil
}

// SetRole changes an account's global role.
func (s *Service) SetRole(ctx context.Context, userID string, role auth.GlobalRole) (*models.User, error) {
	if !role.Known() {
		return nil, &validation.Error{Path: "$.role", Message: fmt.Sprintf("unknown role %q", role)}
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.users.Update(ctx, user, "role_global"); err != nil {
		return nil, err
	}
	return user, nil
}

// Profile returns the caller's account.
func (s *Service) Profile(ctx context.Context, p *auth.Principal) (*models.User, error) {
	return s.users.GetByID(ctx, p.ID)
}

// UpdateProfile changes the caller's own name or image.
func (s *Service) UpdateProfile(ctx context.Context, p *auth.Principal, in ProfileInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	var columns []string
	if in.Name != nil {
		user.Name = *in.Name
		columns = append(columns, "name")
	}
	if in.Image != nil {
		user.Image = in.Image
		columns = append(columns, "image")
	}
	if len(columns) == 0 {
		return user, nil
	}
	if err := s.users.Update(ctx, user, columns...); err != nil {
		return nil, err
	}
	return user, nil
}
