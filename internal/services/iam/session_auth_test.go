package iam

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/db/models"
)

func quietLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func cookieRequest(token string) AuthRequest {
	return AuthRequest{
		Headers: http.Header{},
		Cookies: []*http.Cookie{{Name: auth.SessionCookieName, Value: token}},
	}
}

func TestSessionAuthenticator(t *testing.T) {
	now := time.Now()
	active := &models.User{ID: "u-active", Name: "Sari", Email: "sari@example.com", Role: auth.RoleUser, IsActive: true}
	pending := &models.User{ID: "u-pending", Name: "Budi", Email: "budi@example.com", Role: auth.RoleNone}

	sessions := newMockSessions()
	for _, s := range []*models.Session{
		{ID: "s-live", UserID: active.ID, TokenHash: auth.HashSessionToken("live"), ExpiresAt: now.Add(time.Hour)},
		{ID: "s-expired", UserID: active.ID, TokenHash: auth.HashSessionToken("expired"), ExpiresAt: now.Add(-time.Minute)},
		{ID: "s-revoked", UserID: active.ID, TokenHash: auth.HashSessionToken("revoked"), ExpiresAt: now.Add(time.Hour), Revoked: true},
		{ID: "s-pending", UserID: pending.ID, TokenHash: auth.HashSessionToken("pending"), ExpiresAt: now.Add(time.Hour)},
		{ID: "s-orphan", UserID: "gone", TokenHash: auth.HashSessionToken("orphan"), ExpiresAt: now.Add(time.Hour)},
	} {
		require.NoError(t, sessions.Create(context.Background(), s))
	}

	authenticator := NewSessionAuthenticator(newMockUsers(active, pending), sessions, quietLogger())

	tests := []struct {
		name     string
		req      AuthRequest
		wantUser string
	}{
		{name: "no cookie", req: AuthRequest{Headers: http.Header{}}},
		{name: "unknown token", req: cookieRequest("nope")},
		{name: "expired session", req: cookieRequest("expired")},
		{name: "revoked session", req: cookieRequest("revoked")},
		{name: "account deleted", req: cookieRequest("orphan")},
		{name: "live session", req: cookieRequest("live"), wantUser: active.ID},
		{name: "inactive account still resolves", req: cookieRequest("pending"), wantUser: pending.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := authenticator.Authenticate(context.Background(), tt.req)
			require.NoError(t, err)
			if tt.wantUser == "" {
				assert.Nil(t, p)
				return
			}
			require.NotNil(t, p)
			assert.Equal(t, tt.wantUser, p.ID)
		})
	}

	t.Run("principal reflects stored account", func(t *testing.T) {
		p, err := authenticator.Authenticate(context.Background(), cookieRequest("pending"))
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.False(t, p.Active)
		assert.Equal(t, auth.RoleNone, p.Role)
		assert.Equal(t, "s-pending", p.SessionID)
	})
}

func TestSessionAuthenticator_StoreFailure(t *testing.T) {
	sessions := newMockSessions()
	sessions.err = errors.New("redis: connection refused")

	authenticator := NewSessionAuthenticator(newMockUsers(), sessions, quietLogger())
	p, err := authenticator.Authenticate(context.Background(), cookieRequest("anything"))
	require.Error(t, err)
	assert.Nil(t, p)
}
