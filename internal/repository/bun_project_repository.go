package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/terraconstructs/sandaran/internal/db/bunx"
	"github.com/terraconstructs/sandaran/internal/db/models"
)

// BunProjectRepository implements ProjectRepository using Bun ORM
type BunProjectRepository struct {
	db bun.IDB
}

// NewBunProjectRepository creates a new Bun-based project repository
func NewBunProjectRepository(db bun.IDB) *BunProjectRepository {
	return &BunProjectRepository{db: db}
}

// Create inserts a project. A duplicate slug yields ErrConflict.
func (r *BunProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		project.ID = bunx.NewUUIDv7()
	}
	if project.Status == "" {
		project.Status = models.ProjectStatusActive
	}
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err := r.db.NewInsert().Model(project).Exec(ctx)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("project with slug '%s': %w", project.Slug, ErrConflict)
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// GetByID fetches a project with its members and their accounts.
func (r *BunProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	project := new(models.Project)
	err := r.db.NewSelect().
		Model(project).
		Relation("Members", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("pm.created_at ASC")
		}).
		Relation("Members.User").
		Where("p.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "get project %s", id)
	}
	return project, nil
}

// List returns all projects, newest first.
func (r *BunProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}
	err := r.db.NewSelect().
		Model(&projects).
		Order("p.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// ListForUser returns the projects userID is a member of.
func (r *BunProjectRepository) ListForUser(ctx context.Context, userID string) ([]models.Project, error) {
	projects := []models.Project{}
	err := r.db.NewSelect().
		Model(&projects).
		Join("JOIN project_members AS pm ON pm.project_id = p.id").
		Where("pm.user_id = ?", userID).
		Order("p.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects for user: %w", err)
	}
	return projects, nil
}

// Update writes the given columns (all columns when none are named).
func (r *BunProjectRepository) Update(ctx context.Context, project *models.Project, columns ...string) error {
	project.UpdatedAt = time.Now().UTC()
	q := r.db.NewUpdate().Model(project).WherePK()
	if len(columns) > 0 {
		q = q.Column(append(columns, "updated_at")...)
	} else {
		q = q.ExcludeColumn("id", "created_at")
	}
	res, err := q.Exec(ctx)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("project with slug '%s': %w", project.Slug, ErrConflict)
		}
		return fmt.Errorf("update project: %w", err)
	}
	return expectAffected(res, "update project "+project.ID)
}

// Delete removes a project. Members, reports, documents, fund and
// logistics go with it through ON DELETE CASCADE.
func (r *BunProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*models.Project)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return expectAffected(res, "delete project "+id)
}

// Stats counts the records attached to a project.
func (r *BunProjectRepository) Stats(ctx context.Context, id string) (ProjectStats, error) {
	var stats ProjectStats
	counts := []struct {
		model any
		dst   *int
	}{
		{(*models.ProjectMember)(nil), &stats.Members},
		{(*models.DailyReport)(nil), &stats.Reports},
		{(*models.ProjectDocument)(nil), &stats.Documents},
		{(*models.LogisticItem)(nil), &stats.LogisticItems},
	}
	for _, c := range counts {
		n, err := r.db.NewSelect().
			Model(c.model).
			Where("project_id = ?", id).
			Count(ctx)
		if err != nil {
			return ProjectStats{}, fmt.Errorf("count project records: %w", err)
		}
		*c.dst = n
	}
	return stats, nil
}
