package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/db/models"
)

func TestBunSessionRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunSessionRepository(db)
	ctx := context.Background()
	user := seedUser(t, db, "mandor@example.com", auth.RoleUser)
	now := time.Now().UTC()

	live := &models.Session{UserID: user.ID, TokenHash: auth.HashSessionToken("live"), ExpiresAt: now.Add(time.Hour)}
	expired := &models.Session{UserID: user.ID, TokenHash: auth.HashSessionToken("old"), ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-2 * time.Hour)}
	revoked := &models.Session{UserID: user.ID, TokenHash: auth.HashSessionToken("revoked"), ExpiresAt: now.Add(time.Hour)}
	for _, s := range []*models.Session{live, expired, revoked} {
		require.NoError(t, repo.Create(ctx, s))
	}
	require.NoError(t, repo.Revoke(ctx, revoked.ID))

	t.Run("lookup by token hash", func(t *testing.T) {
		got, err := repo.GetByTokenHash(ctx, auth.HashSessionToken("live"))
		require.NoError(t, err)
		assert.Equal(t, live.ID, got.ID)
		assert.True(t, got.Live(time.Now()))

		_, err = repo.GetByTokenHash(ctx, auth.HashSessionToken("nope"))
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete expired removes expired and revoked", func(t *testing.T) {
		n, err := repo.DeleteExpired(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		_, err = repo.GetByID(ctx, live.ID)
		require.NoError(t, err)
		_, err = repo.GetByID(ctx, expired.ID)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("revoke by user", func(t *testing.T) {
		require.NoError(t, repo.RevokeByUserID(ctx, user.ID))
		got, err := repo.GetByID(ctx, live.ID)
		require.NoError(t, err)
		assert.True(t, got.Revoked)
		assert.False(t, got.Live(time.Now()))
	})
}
