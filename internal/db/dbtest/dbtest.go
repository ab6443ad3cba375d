// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/db/bunx"
	"github.com/terraconstructs/sandaran/internal/db/models"
	"github.com/terraconstructs/sandaran/internal/migrations"
)

// Open returns a private in-memory database with the full schema. The
// database is named after the test so parallel tests do not share state.
func Open(t testing.TB) *bun.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := bunx.NewDB("file:"+name+"?mode=memory&cache=shared", bunx.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	return db
}

// User inserts an active account with the given global role.
func User(t testing.TB, db bun.IDB, email string, role auth.GlobalRole) *models.User {
	t.Helper()
	now := time.Now().UTC()
	user := &models.User{
		ID:        bunx.NewUUIDv7(),
		Name:      email,
		Email:     email,
		Role:      role,
		IsActive:  role != auth.RoleNone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := db.NewInsert().Model(user).Exec(context.Background())
	require.NoError(t, err)
	return user
}

// Project inserts an active project.
func Project(t testing.TB, db bun.IDB, slug string) *models.Project {
	t.Helper()
	now := time.Now().UTC()
	project := &models.Project{
		ID:        bunx.NewUUIDv7(),
		Name:      slug,
		Slug:      slug,
		StartDate: now,
		Status:    models.ProjectStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := db.NewInsert().Model(project).Exec(context.Background())
	require.NoError(t, err)
	return project
}

// Member binds a user to a project.
func Member(t testing.TB, db bun.IDB, userID, projectID string, role auth.ProjectRole) *models.ProjectMember {
	t.Helper()
	member := &models.ProjectMember{
		ID:        bunx.NewUUIDv7(),
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.NewInsert().Model(member).Exec(context.Background())
	require.NoError(t, err)
	return member
}
