package iam

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/db/models"
)

func bearerRequest(token string) AuthRequest {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return AuthRequest{Headers: h}
}

func TestJWTAuthenticator(t *testing.T) {
	now := time.Now()
	signer, err := auth.NewTokenSigner("test-secret")
	require.NoError(t, err)
	otherSigner, err := auth.NewTokenSigner("other-secret")
	require.NoError(t, err)

	ceo := &models.User{ID: "u-ceo", Email: "ceo@example.com", Role: auth.RoleCEO, IsActive: true}
	users := newMockUsers(ceo)
	sessions := newMockSessions()
	require.NoError(t, sessions.Create(context.Background(), &models.Session{ID: "s-1", UserID: ceo.ID, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, sessions.Create(context.Background(), &models.Session{ID: "s-revoked", UserID: ceo.ID, ExpiresAt: now.Add(time.Hour), Revoked: true}))

	issue := func(s *auth.TokenSigner, subject, sid string) string {
		token, err := s.Issue(subject, sid, now, now.Add(time.Hour))
		require.NoError(t, err)
		return token
	}

	authenticator := NewJWTAuthenticator(signer, users, sessions, quietLogger())

	tests := []struct {
		name     string
		req      AuthRequest
		wantUser string
	}{
		{name: "no header", req: AuthRequest{Headers: http.Header{}}},
		{name: "garbage token", req: bearerRequest("not-a-jwt")},
		{name: "wrong signature", req: bearerRequest(issue(otherSigner, ceo.ID, "s-1"))},
		{name: "unknown session", req: bearerRequest(issue(signer, ceo.ID, "s-missing"))},
		{name: "revoked session", req: bearerRequest(issue(signer, ceo.ID, "s-revoked"))},
		{name: "subject mismatch", req: bearerRequest(issue(signer, "u-other", "s-1"))},
		{name: "valid token", req: bearerRequest(issue(signer, ceo.ID, "s-1")), wantUser: ceo.ID},
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
			assert.Equal(t, auth.RoleCEO, p.Role)
		})
	}
}

func TestAuthRequest_BearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		h := http.Header{}
		if tt.header != "" {
			h.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, AuthRequest{Headers: h}.BearerToken(), tt.header)
	}
}
