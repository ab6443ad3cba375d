// Package comment manages remarks left on daily reports.
package comment

import (
	"context"
	"errors"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/authz"
	"github.com/terraconstructs/sandaran/internal/db/models"
	"github.com/terraconstructs/sandaran/internal/repository"
)

// Input is the comment payload for create and update.
type Input struct {
	Content string `mapstructure:"content"`
}

// Service manages comments. Only the author may edit or delete a comment.
type Service struct {
	comments repository.CommentRepository
	reports  repository.ReportRepository
}

// NewService constructs a comment service.
func NewService(comments repository.CommentRepository, reports repository.ReportRepository) *Service {
	return &Service{comments: comments, reports: reports}
}

// Create comments on a report of the project as p.
func (s *Service) Create(ctx context.Context, p *auth.Principal, projectID, reportID string, in Input) (*models.ReportComment, error) {
	if err := s.checkReport(ctx, projectID, reportID); err != nil {
		return nil, err
	}
	comment := &models.ReportComment{ReportID: reportID, UserID: p.ID, Content: in.Content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// List returns the comments of a report, oldest first.
func (s *Service) List(ctx context.Context, projectID, reportID string) ([]models.ReportComment, error) {
	if err := s.checkReport(ctx, projectID, reportID); err != nil {
		return nil, err
	}
	return s.comments.ListByReport(ctx, reportID)
}

// Update edits a comment authored by p.
func (s *Service) Update(ctx context.Context, p *auth.Principal, projectID, id string, in Input) (*models.ReportComment, error) {
	comment, err := s.owned(ctx, p, projectID, id)
	if err != nil {
		return nil, err
	}
	comment.Content = in.Content
	if err := s.comments.Update(ctx, comment, "content"); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes a comment authored by p.
func (s *Service) Delete(ctx context.Context, p *auth.Principal, projectID, id string) error {
	comment, err := s.owned(ctx, p, projectID, id)
	if err != nil {
		return err
	}
	return s.comments.Delete(ctx, comment.ID)
}

func (s *Service) checkReport(ctx context.Context, projectID, reportID string) error {
	report, err := s.reports.GetByID(ctx, reportID)
	if errors.Is(err, repository.ErrNotFound) {
		return auth.ErrNotFound
	}
	if err != nil {
		return err
	}
	if report.ProjectID != projectID {
		return auth.ErrNotFound
	}
	return nil
}

func (s *Service) owned(ctx context.Context, p *auth.Principal, projectID, id string) (*models.ReportComment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.checkReport(ctx, projectID, comment.ReportID); err != nil {
		return nil, err
	}
	if err := authz.CheckOwnership(p, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
