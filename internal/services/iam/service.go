package iam

import (
	"context"
	"errors"
	"time"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/db/models"
)

var (
	// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrWeakPassword is returned when a password is shorter than MinPasswordLength.
	ErrWeakPassword = errors.New("password too short")
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 8

// Service provides authentication and session lifecycle operations.
type Service interface {
	// AuthenticateRequest tries the configured authenticators in order and
	// returns the first principal found, or (nil, nil) when none matched.
	AuthenticateRequest(ctx context.Context, req AuthRequest) (*auth.Principal, error)

	// Register creates an inactive account with role NONE awaiting approval.
	Register(ctx context.Context, in RegisterInput) (*models.User, error)

	// Login checks credentials and opens a session. Inactive accounts may log
	// in; the gates keep them out of everything else.
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)

	// Logout revokes a session.
	Logout(ctx context.Context, sessionID string) error

	// RevokeUserSessions revokes every session of a user.
	RevokeUserSessions(ctx context.Context, userID string) error

	// CreateUser provisions an account directly, bypassing approval.
	CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error)

	// PurgeSessions deletes expired and revoked sessions.
	PurgeSessions(ctx context.Context) (int64, error)
}

// RegisterInput is the self-service signup payload.
type RegisterInput struct {
	Name     string `json:"name" mapstructure:"name"`
	Email    string `json:"email" mapstructure:"email"`
	Password string `json:"password" mapstructure:"password"`
}

// LoginInput is the credentials payload.
type LoginInput struct {
	Email     string `json:"email" mapstructure:"email"`
	Password  string `json:"password" mapstructure:"password"`
	UserAgent string `json:"-" mapstructure:"-"`
	IPAddress string `json:"-" mapstructure:"-"`
}

// LoginResult carries everything a client needs after logging in.
type LoginResult struct {
	User *models.User
	// SessionToken is the opaque cookie value.
	SessionToken string
	// BearerToken is a signed JWT bound to the same session.
	BearerToken string
	Session     *models.Session
	ExpiresAt   time.Time
}

// CreateUserInput provisions an account from the CLI.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     auth.GlobalRole
}
