package iam

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/repository"
)

// JWTAuthenticator authenticates "Authorization: Bearer" tokens issued at login.
// Every token is bound to a stored session through its sid claim, so logging
// out or deactivating the account revokes outstanding tokens as well.
type JWTAuthenticator struct {
	signer   *auth.TokenSigner
	users    repository.UserRepository
	sessions SessionStore
	logger   logrus.FieldLogger
	now      func() time.Time
}

// NewJWTAuthenticator creates a new bearer token authenticator.
func NewJWTAuthenticator(signer *auth.TokenSigner, users repository.UserRepository, sessions SessionStore, logger logrus.FieldLogger) *JWTAuthenticator {
	return &JWTAuthenticator{signer: signer, users: users, sessions: sessions, logger: logger, now: time.Now}
}

// Authenticate implements Authenticator.
func (a *JWTAuthenticator) Authenticate(ctx context.Context, req AuthRequest) (*auth.Principal, error) {
	token := req.BearerToken()
	if token == "" {
		return nil, nil
	}

	claims, err := a.signer.Parse(token)
	if err != nil {
		a.logger.WithError(err).Debug("rejected bearer token")
		return nil, nil
	}

	session, err := a.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup token session: %w", err)
	}

	return resolveSessionPrincipal(ctx, a.users, a.sessions, a.logger, session, claims.Subject, a.now())
}
