package iam

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/db/models"
	"github.com/terraconstructs/sandaran/internal/repository"
)

// SessionAuthenticator authenticates requests carrying the session cookie.
//
//  1. Read the session cookie, no cookie means no credentials
//  2. Hash it and look the session up
//  3. Reject revoked or expired sessions
//  4. Load the account fresh so role and activation changes apply immediately
type SessionAuthenticator struct {
	users    repository.UserRepository
	sessions SessionStore
	logger   logrus.FieldLogger
	now      func() time.Time
}

// NewSessionAuthenticator creates a new session cookie authenticator.
func NewSessionAuthenticator(users repository.UserRepository, sessions SessionStore, logger logrus.FieldLogger) *SessionAuthenticator {
	return &SessionAuthenticator{users: users, sessions: sessions, logger: logger, now: time.Now}
}

// Authenticate implements Authenticator.
func (a *SessionAuthenticator) Authenticate(ctx context.Context, req AuthRequest) (*auth.Principal, error) {
	token := req.Cookie(auth.SessionCookieName)
	if token == "" {
		return nil, nil
	}

	session, err := a.sessions.GetByTokenHash(ctx, auth.HashSessionToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	return resolveSessionPrincipal(ctx, a.users, a.sessions, a.logger, session, "", a.now())
}

// resolveSessionPrincipal validates a stored session and loads its account.
// subject, when set, must match the session owner.
func resolveSessionPrincipal(
	ctx context.Context,
	users repository.UserRepository,
	sessions SessionStore,
	logger logrus.FieldLogger,
	session *models.Session,
	subject string,
	now time.Time,
) (*auth.Principal, error) {
	if !session.Live(now) {
		return nil, nil
	}
	if subject != "" && subject != session.UserID {
		return nil, nil
	}

	user, err := users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}

	if err := sessions.UpdateLastUsed(ctx, session.ID); err != nil {
		logger.WithError(err).WithField("session_id", session.ID).Warn("failed to update session last used")
	}

	return user.Principal(session.ID), nil
}
