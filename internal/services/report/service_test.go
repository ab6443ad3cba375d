package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/db/dbtest"
	"github.com/terraconstructs/sandaran/internal/db/models"
	"github.com/terraconstructs/sandaran/internal/repository"
)

type fakeObjects struct {
	deleted []string
	err     error
}

func (f *fakeObjects) DeleteObject(_ context.Context, publicID string) error {
	f.deleted = append(f.deleted, publicID)
	return f.err
}

type fixture struct {
	svc     *Service
	db      *bun.DB
	objects *fakeObjects
	project *models.Project
	author  *auth.Principal
	other   *auth.Principal
	admin   *auth.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	objects := &fakeObjects{}
	logger, _ := test.NewNullLogger()

	svc := NewService(repository.NewBunReportRepository(db)).WithObjectStore(objects, logger)
	svc.now = func() time.Time { return time.UnixMilli(1767225600000) }

	return &fixture{
		svc:     svc,
		db:      db,
		objects: objects,
		project: dbtest.Project(t, db, "tower"),
		author:  dbtest.User(t, db, "author@example.com", auth.RoleUser).Principal(""),
		other:   dbtest.User(t, db, "other@example.com", auth.RoleUser).Principal(""),
		admin:   dbtest.User(t, db, "admin@example.com", auth.RoleAdmin).Principal(""),
	}
}

func (f *fixture) file(t *testing.T) *models.DailyReport {
	t.Helper()
	report, err := f.svc.Create(context.Background(), f.author, f.project.ID, CreateInput{
		ReportDate:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		TaskDescription: "Pour slab",
		Tasks:           []TaskInput{{TaskName: "rebar", WorkerCount: 3}},
	})
	require.NoError(t, err)
	return report
}

func TestSlug(t *testing.T) {
	got := Slug(time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC), time.UnixMilli(1767225600000))
	assert.Equal(t, "report-2026-03-01-1767225600000", got)
}

func TestCreate_WithTasks(t *testing.T) {
	f := newFixture(t)
	report := f.file(t)

	assert.Equal(t, "report-2026-03-01-1767225600000", report.Slug)
	assert.Equal(t, f.author.ID, report.UserID)

	got, err := f.svc.GetBySlug(context.Background(), f.project.ID, report.Slug)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, "rebar", got.Tasks[0].TaskName)
}

func TestGet_OtherProjectIsNotFound(t *testing.T) {
	f := newFixture(t)
	report := f.file(t)
	bridge := dbtest.Project(t, f.db, "bridge")

	_, err := f.svc.Get(context.Background(), bridge.ID, report.ID)
	require.ErrorIs(t, err, auth.ErrNotFound)

	_, err = f.svc.GetBySlug(context.Background(), bridge.ID, report.Slug)
	require.ErrorIs(t, err, auth.ErrNotFound)
}

func TestUpdate_Ownership(t *testing.T) {
	f := newFixture(t)
	report := f.file(t)
	issues := "late delivery"

	tests := []struct {
		name      string
		principal *auth.Principal
		reportID  string
		wantErr   error
	}{
		{"author", f.author, report.ID, nil},
		{"other member", f.other, report.ID, auth.ErrNotOwner},
		{"admin override", f.admin, report.ID, nil},
		{"missing report", f.author, "missing", auth.ErrNotFound},
		{"missing report for admin", f.admin, "missing", auth.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := f.svc.Update(context.Background(), tt.principal, f.project.ID, tt.reportID, UpdateInput{Issues: &issues})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, issues, *updated.Issues)
		})
	}
}

func TestTasks_OwnedThroughReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	report := f.file(t)

	task, err := f.svc.CreateTask(ctx, f.author, f.project.ID, report.ID, TaskInput{TaskName: "formwork"})
	require.NoError(t, err)

	_, err = f.svc.CreateTask(ctx, f.other, f.project.ID, report.ID, TaskInput{TaskName: "x"})
	require.ErrorIs(t, err, auth.ErrNotOwner)

	progress := 80.0
	_, err = f.svc.UpdateTask(ctx, f.other, f.project.ID, task.ID, TaskUpdate{Progress: &progress})
	require.ErrorIs(t, err, auth.ErrNotOwner)

	updated, err := f.svc.UpdateTask(ctx, f.author, f.project.ID, task.ID, TaskUpdate{Progress: &progress})
	require.NoError(t, err)
	assert.Equal(t, 80.0, updated.Progress)

	require.ErrorIs(t, f.svc.DeleteTask(ctx, f.author, f.project.ID, "missing"), auth.ErrNotFound)
	require.NoError(t, f.svc.DeleteTask(ctx, f.author, f.project.ID, task.ID))
}

func TestMedia_DeleteRemovesObject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	report := f.file(t)

	media, err := f.svc.AttachMedia(ctx, f.author, f.project.ID, report.ID, MediaInput{PublicID: "uploads/tower/reports/a.jpg", URL: "https://cdn/a.jpg"})
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.DeleteMedia(ctx, f.other, f.project.ID, media.ID), auth.ErrNotOwner)
	assert.Empty(t, f.objects.deleted)

	f.objects.err = errors.New("bucket unavailable")
	require.NoError(t, f.svc.DeleteMedia(ctx, f.author, f.project.ID, media.ID))
	assert.Equal(t, []string{"uploads/tower/reports/a.jpg"}, f.objects.deleted)

	require.ErrorIs(t, f.svc.DeleteMedia(ctx, f.author, f.project.ID, media.ID), auth.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	report := f.file(t)

	require.ErrorIs(t, f.svc.Delete(ctx, f.other, f.project.ID, report.ID), auth.ErrNotOwner)
	require.NoError(t, f.svc.Delete(ctx, f.admin, f.project.ID, report.ID))

	page, err := f.svc.List(ctx, f.project.ID, "", 0)
	require.NoError(t, err)
	assert.Empty(t, page.Reports)
}
