package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/db/dbtest"
	"github.com/terraconstructs/sandaran/internal/db/models"
)

// setupTestDB opens a private in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()
	return dbtest.Open(t)
}

func seedUser(t *testing.T, db *bun.DB, email string, role auth.GlobalRole) *models.User {
	t.Helper()
	user := &models.User{Name: email, Email: email, Role: role, IsActive: true}
	require.NoError(t, NewBunUserRepository(db).Create(context.Background(), user))
	return user
}

func seedProject(t *testing.T, db *bun.DB, slug string) *models.Project {
	t.Helper()
	project := &models.Project{Name: slug, Slug: slug, StartDate: time.Now().UTC()}
	require.NoError(t, NewBunProjectRepository(db).Create(context.Background(), project))
	return project
}

func seedMember(t *testing.T, db *bun.DB, userID, projectID string, role auth.ProjectRole) *models.ProjectMember {
	t.Helper()
	member := &models.ProjectMember{UserID: userID, ProjectID: projectID, Role: role}
	require.NoError(t, NewBunMemberRepository(db).Add(context.Background(), member))
	return member
}

func testNow() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}
