// Package report manages daily field reports with their tasks and media.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/authz"
	"github.com/terraconstructs/sandaran/internal/db/models"
	"github.com/terraconstructs/sandaran/internal/repository"
)

// TaskInput is one task line of a report.
type TaskInput struct {
	TaskName    string  `mapstructure:"taskName"`
	WorkerCount int     `mapstructure:"workerCount"`
	Progress    float64 `mapstructure:"progress"`
	Notes       *string `mapstructure:"notes"`
}

// CreateInput is the payload for filing a report.
type CreateInput struct {
	ReportDate      time.Time   `mapstructure:"reportDate"`
	TaskDescription string      `mapstructure:"taskDescription"`
	ProgressPercent float64     `mapstructure:"progressPercent"`
	Weather         *string     `mapstructure:"weather"`
	TotalWorkers    int         `mapstructure:"totalWorkers"`
	Location        *string     `mapstructure:"location"`
	Issues          *string     `mapstructure:"issues"`
	Tasks           []TaskInput `mapstructure:"tasks"`
}

// UpdateInput changes the report fields that are set.
type UpdateInput struct {
	ReportDate      *time.Time `mapstructure:"reportDate"`
	TaskDescription *string    `mapstructure:"taskDescription"`
	ProgressPercent *float64   `mapstructure:"progressPercent"`
	Weather         *string    `mapstructure:"weather"`
	TotalWorkers    *int       `mapstructure:"totalWorkers"`
	Location        *string    `mapstructure:"location"`
	Issues          *string    `mapstructure:"issues"`
}

// TaskUpdate changes the task fields that are set.
type TaskUpdate struct {
	TaskName    *string  `mapstructure:"taskName"`
	WorkerCount *int     `mapstructure:"workerCount"`
	Progress    *float64 `mapstructure:"progress"`
	Notes       *string  `mapstructure:"notes"`
}

// MediaInput references an object uploaded through a signed URL.
type MediaInput struct {
	PublicID string `mapstructure:"publicId"`
	URL      string `mapstructure:"url"`
}

// ObjectDeleter removes uploaded objects from blob storage.
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, publicID string) error
}

// Service manages reports. Mutations are restricted to the report's author.
type Service struct {
	reports repository.ReportRepository
	objects ObjectDeleter
	logger  logrus.FieldLogger
	now     func() time.Time
}

// NewService constructs a report service.
func NewService(reports repository.ReportRepository) *Service {
	return &Service{
		reports: reports,
		logger:  logrus.StandardLogger(),
		now:     time.Now,
	}
}

// WithObjectStore removes the stored object when media is detached.
func (s *Service) WithObjectStore(objects ObjectDeleter, logger logrus.FieldLogger) *Service {
	s.objects = objects
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Slug builds the public identifier of a report filed at createdAt.
func Slug(reportDate, createdAt time.Time) string {
	return fmt.Sprintf("report-%s-%d", reportDate.UTC().Format(time.DateOnly), createdAt.UnixMilli())
}

// Create files a report authored by p.
func (s *Service) Create(ctx context.Context, p *auth.Principal, projectID string, in CreateInput) (*models.DailyReport, error) {
	report := &models.DailyReport{
		Slug:            Slug(in.ReportDate, s.now()),
		ProjectID:       projectID,
		UserID:          p.ID,
		ReportDate:      in.ReportDate.UTC(),
		TaskDescription: in.TaskDescription,
		ProgressPercent: in.ProgressPercent,
		Weather:         in.Weather,
		TotalWorkers:    in.TotalWorkers,
		Location:        in.Location,
		Issues:          in.Issues,
	}
	for _, t := range in.Tasks {
		report.Tasks = append(report.Tasks, &models.ReportTask{
			TaskName:    t.TaskName,
			WorkerCount: t.WorkerCount,
			Progress:    t.Progress,
			Notes:       t.Notes,
		})
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// List pages through a project's reports.
func (s *Service) List(ctx context.Context, projectID, cursor string, limit int) (*repository.ReportPage, error) {
	return s.reports.List(ctx, projectID, cursor, limit)
}

// Get returns a report of the project with tasks, media and comments.
func (s *Service) Get(ctx context.Context, projectID, id string) (*models.DailyReport, error) {
	report, err := s.scoped(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, auth.ErrNotFound
	}
	return report, nil
}

// GetBySlug looks a report up by slug.
func (s *Service) GetBySlug(ctx context.Context, projectID, slug string) (*models.DailyReport, error) {
	report, err := s.reports.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if report.ProjectID != projectID {
		return nil, auth.ErrNotFound
	}
	return report, nil
}

// Update changes a report owned by p.
func (s *Service) Update(ctx context.Context, p *auth.Principal, projectID, id string, in UpdateInput) (*models.DailyReport, error) {
	report, err := s.owned(ctx, p, projectID, id)
	if err != nil {
		return nil, err
	}

	var columns []string
	if in.ReportDate != nil {
		report.ReportDate = in.ReportDate.UTC()
		columns = append(columns, "report_date")
	}
	if in.TaskDescription != nil {
		report.TaskDescription = *in.TaskDescription
		columns = append(columns, "task_description")
	}
	if in.ProgressPercent != nil {
		report.ProgressPercent = *in.ProgressPercent
		columns = append(columns, "progress_percent")
	}
	if in.Weather != nil {
		report.Weather = in.Weather
		columns = append(columns, "weather")
	}
	if in.TotalWorkers != nil {
		report.TotalWorkers = *in.TotalWorkers
		columns = append(columns, "total_workers")
	}
	if in.Location != nil {
		report.Location = in.Location
		columns = append(columns, "location")
	}
	if in.Issues != nil {
		report.Issues = in.Issues
		columns = append(columns, "issues")
	}
	if len(columns) == 0 {
		return report, nil
	}
	if err := s.reports.Update(ctx, report, columns...); err != nil {
		return nil, err
	}
	return report, nil
}

// Delete removes a report owned by p together with its children.
func (s *Service) Delete(ctx context.Context, p *auth.Principal, projectID, id string) error {
	report, err := s.owned(ctx, p, projectID, id)
	if err != nil {
		return err
	}
	if err := s.reports.Delete(ctx, report.ID); err != nil {
		return err
	}
	for _, media := range report.Media {
		s.deleteObject(ctx, media.PublicID)
	}
	return nil
}

// CreateTask adds a task to a report owned by p.
func (s *Service) CreateTask(ctx context.Context, p *auth.Principal, projectID, reportID string, in TaskInput) (*models.ReportTask, error) {
	report, err := s.owned(ctx, p, projectID, reportID)
	if err != nil {
		return nil, err
	}
	task := &models.ReportTask{
		ReportID:    report.ID,
		TaskName:    in.TaskName,
		WorkerCount: in.WorkerCount,
		Progress:    in.Progress,
		Notes:       in.Notes,
	}
	if err := s.reports.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask changes a task whose report is owned by p.
func (s *Service) UpdateTask(ctx context.Context, p *auth.Principal, projectID, taskID string, in TaskUpdate) (*models.ReportTask, error) {
	task, err := s.ownedTask(ctx, p, projectID, taskID)
	if err != nil {
		return nil, err
	}

	var columns []string
	if in.TaskName != nil {
		task.TaskName = *in.TaskName
		columns = append(columns, "task_name")
	}
	if in.WorkerCount != nil {
		task.WorkerCount = *in.WorkerCount
		columns = append(columns, "worker_count")
	}
	if in.Progress != nil {
		task.Progress = *in.Progress
		columns = append(columns, "progress")
	}
	if in.Notes != nil {
		task.Notes = in.Notes
		columns = append(columns, "notes")
	}
	if len(columns) == 0 {
		return task, nil
	}
	if err := s.reports.UpdateTask(ctx, task, columns...); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task whose report is owned by p.
func (s *Service) DeleteTask(ctx context.Context, p *auth.Principal, projectID, taskID string) error {
	task, err := s.ownedTask(ctx, p, projectID, taskID)
	if err != nil {
		return err
	}
	return s.reports.DeleteTask(ctx, task.ID)
}

// AttachMedia records an uploaded photo on a report owned by p.
func (s *Service) AttachMedia(ctx context.Context, p *auth.Principal, projectID, reportID string, in MediaInput) (*models.ReportMedia, error) {
	report, err := s.owned(ctx, p, projectID, reportID)
	if err != nil {
		return nil, err
	}
	media := &models.ReportMedia{ReportID: report.ID, PublicID: in.PublicID, URL: in.URL}
	if err := s.reports.AddMedia(ctx, media); err != nil {
		return nil, err
	}
	return media, nil
}

// DeleteMedia detaches a photo from a report owned by p and removes the object.
func (s *Service) DeleteMedia(ctx context.Context, p *auth.Principal, projectID, mediaID string) error {
	media, err := s.reports.GetMedia(ctx, mediaID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return auth.ErrNotFound
		}
		return err
	}
	if _, err := s.owned(ctx, p, projectID, media.ReportID); err != nil {
		return err
	}
	if err := s.reports.DeleteMedia(ctx, media.ID); err != nil {
		return err
	}
	s.deleteObject(ctx, media.PublicID)
	return nil
}

func (s *Service) deleteObject(ctx context.Context, publicID string) {
	if s.objects == nil || publicID == "" {
		return
	}
	if err := s.objects.DeleteObject(ctx, publicID); err != nil {
		s.logger.WithError(err).WithField("public_id", publicID).Warn("failed to delete stored object")
	}
}

// scoped returns the report when it exists and belongs to projectID, else nil.
func (s *Service) scoped(ctx context.Context, projectID, id string) (*models.DailyReport, error) {
	report, err := s.reports.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if report.ProjectID != projectID {
		return nil, nil
	}
	return report, nil
}

// owned resolves a report of the project and checks that p may modify it.
func (s *Service) owned(ctx context.Context, p *auth.Principal, projectID, id string) (*models.DailyReport, error) {
	report, err := s.scoped(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, auth.ErrNotFound
	}
	if err := authz.CheckOwnership(p, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Service) ownedTask(ctx context.Context, p *auth.Principal, projectID, taskID string) (*models.ReportTask, error) {
	task, err := s.reports.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}
	if _, err := s.owned(ctx, p, projectID, task.ReportID); err != nil {
		return nil, err
	}
	return task, nil
}
