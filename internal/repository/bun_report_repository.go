package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/terraconstructs/sandaran/internal/db/bunx"
	"github.com/terraconstructs/sandaran/internal/db/models"
)

const (
	// DefaultPageSize is used when a list request gives no limit.
	DefaultPageSize = 20
	// MaxPageSize caps a single page.
	MaxPageSize = 100
)

// BunReportRepository implements ReportRepository using Bun ORM
type BunReportRepository struct {
	db bun.IDB
}

// NewBunReportRepository creates a new Bun-based report repository
func NewBunReportRepository(db bun.IDB) *BunReportRepository {
	return &BunReportRepository{db: db}
}

// Create inserts a report with any tasks attached to it.
func (r *BunReportRepository) Create(ctx context.Context, report *models.DailyReport) error {
	if report.ID == "" {
		report.ID = bunx.NewUUIDv7()
	}
	now := time.Now().UTC()
	report.CreatedAt = now
	report.UpdatedAt = now
	report.ReportDate = report.ReportDate.UTC()

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(report).Exec(ctx); err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("report with slug '%s': %w", report.Slug, ErrConflict)
			}
			return fmt.Errorf("insert report: %w", err)
		}
		for _, task := range report.Tasks {
			task.ReportID = report.ID
			if err := NewBunReportRepository(tx).CreateTask(ctx, task); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *BunReportRepository) detailQuery(report *models.DailyReport) *bun.SelectQuery {
	return r.db.NewSelect().
		Model(report).
		Relation("User").
		Relation("Tasks", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("drt.created_at ASC")
		}).
		Relation("Media", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("rm.created_at ASC")
		}).
		Relation("Comments", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("rc.created_at ASC")
		}).
		Relation("Comments.User")
}

// GetByID fetches a report with tasks, media and comments.
func (r *BunReportRepository) GetByID(ctx context.Context, id string) (*models.DailyReport, error) {
	report := new(models.DailyReport)
	if err := r.detailQuery(report).Where("dr.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "get report %s", id)
	}
	return report, nil
}

// GetBySlug fetches a report by its slug with tasks, media and comments.
func (r *BunReportRepository) GetBySlug(ctx context.Context, slug string) (*models.DailyReport, error) {
	report := new(models.DailyReport)
	if err := r.detailQuery(report).Where("dr.slug = ?", slug).Scan(ctx); err != nil {
		return nil, notFound(err, "get report by slug %s", slug)
	}
	return report, nil
}

// List pages through a project's reports, newest report date first.
// cursor is the ID of the last report of the previous page.
func (r *BunReportRepository) List(ctx context.Context, projectID, cursor string, limit int) (*ReportPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	var reports []models.DailyReport
	q := r.db.NewSelect().
		Model(&reports).
		Relation("User").
		Where("dr.project_id = ?", projectID)

	if cursor != "" {
		anchor := new(models.DailyReport)
		err := r.db.NewSelect().
			Model(anchor).
			Column("id", "report_date").
			Where("id = ?", cursor).
			Where("project_id = ?", projectID).
			Scan(ctx)
		if err != nil {
			return nil, notFound(err, "resolve report cursor %s", cursor)
		}
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("dr.report_date < ?", anchor.ReportDate).
				WhereOr("dr.report_date = ? AND dr.id < ?", anchor.ReportDate, anchor.ID)
		})
	}

	err := q.
		Order("dr.report_date DESC", "dr.id DESC").
		Limit(limit + 1).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	if reports == nil {
		reports = []models.DailyReport{}
	}
	page := &ReportPage{Reports: reports}
	if len(reports) > limit {
		page.Reports = reports[:limit]
		page.NextCursor = reports[limit-1].ID
	}
	return page, nil
}

// Update writes the given columns (all columns when none are named).
func (r *BunReportRepository) Update(ctx context.Context, report *models.DailyReport, columns ...string) error {
	report.UpdatedAt = time.Now().UTC()
	report.ReportDate = report.ReportDate.UTC()
	q := r.db.NewUpdate().Model(report).WherePK()
	if len(columns) > 0 {
		q = q.Column(append(columns, "updated_at")...)
	} else {
		q = q.ExcludeColumn("id", "slug", "project_id", "user_id", "created_at")
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	return expectAffected(res, "update report "+report.ID)
}

// Delete removes a report with its tasks, media and comments.
func (r *BunReportRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*models.DailyReport)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return expectAffected(res, "delete report "+id)
}

// CreateTask inserts a task under its report.
func (r *BunReportRepository) CreateTask(ctx context.Context, task *models.ReportTask) error {
	if task.ID == "" {
		task.ID = bunx.NewUUIDv7()
	}
	task.CreatedAt = time.Now().UTC()
	if _, err := r.db.NewInsert().Model(task).Exec(ctx); err != nil {
		return fmt.Errorf("insert report task: %w", err)
	}
	return nil
}

// GetTask fetches a single task.
func (r *BunReportRepository) GetTask(ctx context.Context, id string) (*models.ReportTask, error) {
	task := new(models.ReportTask)
	if err := r.db.NewSelect().Model(task).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "get report task %s", id)
	}
	return task, nil
}

// UpdateTask writes the given columns of a task.
func (r *BunReportRepository) UpdateTask(ctx context.Context, task *models.ReportTask, columns ...string) error {
	q := r.db.NewUpdate().Model(task).WherePK()
	if len(columns) > 0 {
		q = q.Column(columns...)
	} else {
		q = q.ExcludeColumn("id", "report_id", "created_at")
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("update report task: %w", err)
	}
	return expectAffected(res, "update report task "+task.ID)
}

// DeleteTask removes a task.
func (r *BunReportRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().Model((*models.ReportTask)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete report task: %w", err)
	}
	return expectAffected(res, "delete report task "+id)
}

// AddMedia attaches an uploaded object to a report.
func (r *BunReportRepository) AddMedia(ctx context.Context, media *models.ReportMedia) error {
	if media.ID == "" {
		media.ID = bunx.NewUUIDv7()
	}
	media.CreatedAt = time.Now().UTC()
	if _, err := r.db.NewInsert().Model(media).Exec(ctx); err != nil {
		return fmt.Errorf("insert report media: %w", err)
	}
	return nil
}

// GetMedia fetches a single media row.
func (r *BunReportRepository) GetMedia(ctx context.Context, id string) (*models.ReportMedia, error) {
	media := new(models.ReportMedia)
	if err := r.db.NewSelect().Model(media).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "get report media %s", id)
	}
	return media, nil
}

// DeleteMedia detaches a media row. The stored object is removed by the caller.
func (r *BunReportRepository) DeleteMedia(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().Model((*models.ReportMedia)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete report media: %w", err)
	}
	return expectAffected(res, "delete report media "+id)
}
