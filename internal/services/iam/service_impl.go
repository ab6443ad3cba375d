package iam

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/db/models"
	"github.com/terraconstructs/sandaran/internal/repository"
	"github.com/terraconstructs/sandaran/internal/telemetry"
)

const tracerName = "sandaran/services/iam"

// iamService implements the Service interface.
type iamService struct {
	users          repository.UserRepository
	sessions       SessionStore
	signer         *auth.TokenSigner
	sessionTTL     time.Duration
	logger         logrus.FieldLogger
	authenticators []Authenticator
	now            func() time.Time
}

// Dependencies contains everything the IAM service needs at construction.
type Dependencies struct {
	Users    repository.UserRepository
	Sessions SessionStore
	Signer   *auth.TokenSigner
	Logger   logrus.FieldLogger
}

// Options tune the IAM service.
type Options struct {
	SessionTTL time.Duration
}

// NewService creates the IAM service with the session cookie authenticator
// first and the bearer token authenticator second.
func NewService(deps Dependencies, opts Options) (Service, error) {
	if deps.Users == nil || deps.Sessions == nil {
		return nil, fmt.Errorf("iam: users and sessions are required")
	}
	if deps.Signer == nil {
		return nil, fmt.Errorf("iam: token signer is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &iamService{
		users:      deps.Users,
		sessions:   deps.Sessions,
		signer:     deps.Signer,
		sessionTTL: opts.SessionTTL,
		logger:     logger,
		authenticators: []Authenticator{
			NewSessionAuthenticator(deps.Users, deps.Sessions, logger),
			NewJWTAuthenticator(deps.Signer, deps.Users, deps.Sessions, logger),
		},
		now: time.Now,
	}, nil
}

// AuthenticateRequest tries all registered authenticators in order.
//   - (nil, nil) from an authenticator: try the next one
//   - (nil, error): storage failure, stop
//   - (principal, nil): done
func (s *iamService) AuthenticateRequest(ctx context.Context, req AuthRequest) (*auth.Principal, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "iam.AuthenticateRequest",
		attribute.Int("authenticator_count", len(s.authenticators)),
	)
	defer span.End()

	for i, authenticator := range s.authenticators {
		principal, err := authenticator.Authenticate(ctx, req)
		if err != nil {
			telemetry.Fail(span, err)
			return nil, err
		}
		if principal != nil {
			span.SetAttributes(
				attribute.String(telemetry.AttrPrincipalID, principal.ID),
				attribute.String(telemetry.AttrPrincipalRole, principal.Role.String()),
				attribute.Int("authenticator_index", i),
			)
			return principal, nil
		}
	}

	span.AddEvent("authentication.no_credentials")
	return nil, nil
}

func (s *iamService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if len(in.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         auth.RoleNone,
		IsActive:     false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("registered account awaiting approval")
	return user, nil
}

func (s *iamService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if user.PasswordHash == "" || !auth.CheckPassword(user.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}

	token, tokenHash, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	session := &models.Session{
		UserID:    user.ID,
		TokenHash: tokenHash,
		CreatedAt: now,
		ExpiresAt: auth.CalculateExpiry(now, s.sessionTTL),
	}
	if in.UserAgent != "" {
		session.UserAgent = &in.UserAgent
	}
	if in.IPAddress != "" {
		session.IPAddress = &in.IPAddress
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	bearer, err := s.signer.Issue(user.ID, session.ID, now, session.ExpiresAt)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:         user,
		SessionToken: token,
		BearerToken:  bearer,
		Session:      session,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

func (s *iamService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *iamService) RevokeUserSessions(ctx context.Context, userID string) error {
	if err := s.sessions.RevokeByUserID(ctx, userID); err != nil {
		return fmt.Errorf("revoke user sessions: %w", err)
	}
	return nil
}

func (s *iamService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if len(in.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	if !in.Role.Known() {
		return nil, fmt.Errorf("create user: unknown role %q", in.Role)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     in.Role != auth.RoleNone,
	}
	if user.IsActive {
		user.ApprovedAt = &now
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *iamService) PurgeSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}
