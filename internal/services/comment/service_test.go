package comment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/db/dbtest"
	"github.com/terraconstructs/sandaran/internal/db/models"
	"github.com/terraconstructs/sandaran/internal/repository"
)

func TestComments(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	reports := repository.NewBunReportRepository(db)
	svc := NewService(repository.NewBunCommentRepository(db), reports)

	project := dbtest.Project(t, db, "tower")
	bridge := dbtest.Project(t, db, "bridge")
	mandor := dbtest.User(t, db, "mandor@example.com", auth.RoleUser).Principal("")
	ceo := dbtest.User(t, db, "ceo@example.com", auth.RoleCEO).Principal("")
	admin := dbtest.User(t, db, "admin@example.com", auth.RoleAdmin).Principal("")

	report := &models.DailyReport{
		Slug:            "report-2026-03-01-1",
		ProjectID:       project.ID,
		UserID:          mandor.ID,
		ReportDate:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		TaskDescription: "Pour slab",
	}
	require.NoError(t, reports.Create(ctx, report))

	comment, err := svc.Create(ctx, ceo, project.ID, report.ID, Input{Content: "Looks good"})
	require.NoError(t, err)
	assert.Equal(t, ceo.ID, comment.UserID)

	_, err = svc.Create(ctx, ceo, bridge.ID, report.ID, Input{Content: "wrong project"})
	require.ErrorIs(t, err, auth.ErrNotFound)

	_, err = svc.Create(ctx, ceo, project.ID, "missing", Input{Content: "x"})
	require.ErrorIs(t, err, auth.ErrNotFound)

	_, err = svc.Update(ctx, mandor, project.ID, comment.ID, Input{Content: "hijack"})
	require.ErrorIs(t, err, auth.ErrNotOwner)

	updated, err := svc.Update(ctx, ceo, project.ID, comment.ID, Input{Content: "Looks great"})
	require.NoError(t, err)
	assert.Equal(t, "Looks great", updated.Content)

	_, err = svc.Update(ctx, ceo, bridge.ID, comment.ID, Input{Content: "x"})
	require.ErrorIs(t, err, auth.ErrNotFound)

	list, err := svc.List(ctx, project.ID, report.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Looks great", list[0].Content)
	require.NotNil(t, list[0].User)

	require.ErrorIs(t, svc.Delete(ctx, mandor, project.ID, comment.ID), auth.ErrNotOwner)
	require.NoError(t, svc.Delete(ctx, admin, project.ID, comment.ID))
	require.ErrorIs(t, svc.Delete(ctx, admin, project.ID, comment.ID), auth.ErrNotFound)
}
