// Package project manages projects and memberships.
package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/db/models"
	"github.com/terraconstructs/sandaran/internal/repository"
	"github.com/terraconstructs/sandaran/internal/services/validation"
)

// CreateInput is the payload for creating a project.
type CreateInput struct {
	Name        string               `mapstructure:"name"`
	Slug        string               `mapstructure:"slug"`
	Description *string              `mapstructure:"description"`
	Location    *string              `mapstructure:"location"`
	StartDate   time.Time            `mapstructure:"startDate"`
	EndDate     *time.Time           `mapstructure:"endDate"`
	Status      models.ProjectStatus `mapstructure:"status"`
}

// UpdateInput changes the fields that are set.
type UpdateInput struct {
	Name        *string               `mapstructure:"name"`
	Description *string               `mapstructure:"description"`
	Location    *string               `mapstructure:"location"`
	StartDate   *time.Time            `mapstructure:"startDate"`
	EndDate     *time.Time            `mapstructure:"endDate"`
	Status      *models.ProjectStatus `mapstructure:"status"`
}

// AddMemberInput assigns a user to a project.
type AddMemberInput struct {
	UserID string           `mapstructure:"userId"`
	Role   auth.ProjectRole `mapstructure:"role"`
}

// FundSummary is the emergency fund position shown on the project page.
type FundSummary struct {
	Balance         float64 `json:"balance"`
	PendingRequests int     `json:"pendingRequests"`
}

// Detail is a project with its members, fund summary and record counts.
type Detail struct {
	*models.Project
	Fund  FundSummary             `json:"fund"`
	Stats repository.ProjectStats `json:"stats"`
}

// Service manages projects and their memberships.
type Service struct {
	projects repository.ProjectRepository
	members  repository.MemberRepository
	users    repository.UserRepository
	funds    repository.EmergencyRepository
}

// NewService constructs a project service.
func NewService(projects repository.ProjectRepository, members repository.MemberRepository, users repository.UserRepository, funds repository.EmergencyRepository) *Service {
	return &Service{projects: projects, members: members, users: users, funds: funds}
}

// List returns every project to ADMIN and CEO and only member projects to USER.
func (s *Service) List(ctx context.Context, p *auth.Principal) ([]models.Project, error) {
	if p.Role.Elevated() {
		return s.projects.List(ctx)
	}
	return s.projects.ListForUser(ctx, p.ID)
}

// Create inserts a project. A duplicate slug yields repository.ErrConflict.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Project, error) {
	status := in.Status
	if status == "" {
		status = models.ProjectStatusActive
	}
	if !status.Valid() {
		return nil, &validation.Error{Path: "$.status", Message: fmt.Sprintf("unknown project status %q", status)}
	}
	project := &models.Project{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Location:    in.Location,
		StartDate:   in.StartDate.UTC(),
		EndDate:     utcPtr(in.EndDate),
		Status:      status,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Get returns the project page: members, fund summary and counts.
func (s *Service) Get(ctx context.Context, id string) (*Detail, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.projects.Stats(ctx, id)
	if err != nil {
		return nil, err
	}
	fund, err := s.fundSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Project: project, Fund: fund, Stats: stats}, nil
}

func (s *Service) fundSummary(ctx context.Context, projectID string) (FundSummary, error) {
	var summary FundSummary
	fund, err := s.funds.GetFund(ctx, projectID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return summary, nil
	case err != nil:
		return summary, err
	}
	summary.Balance = fund.CurrentBalance
	for _, txn := range fund.Transactions {
		if txn.Status == models.TransactionPending {
			summary.PendingRequests++
		}
	}
	return summary, nil
}

// Update applies the set fields of in.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var columns []string
	if in.Name != nil {
		project.Name = *in.Name
		columns = append(columns, "name")
	}
	if in.Description != nil {
		project.Description = in.Description
		columns = append(columns, "description")
	}
	if in.Location != nil {
		project.Location = in.Location
		columns = append(columns, "location")
	}
	if in.StartDate != nil {
		project.StartDate = in.StartDate.UTC()
		columns = append(columns, "start_date")
	}
	if in.EndDate != nil {
		project.EndDate = utcPtr(in.EndDate)
		columns = append(columns, "end_date")
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, &validation.Error{Path: "$.status", Message: fmt.Sprintf("unknown project status %q", *in.Status)}
		}
		project.Status = *in.Status
		columns = append(columns, "status")
	}
	if len(columns) == 0 {
		return project, nil
	}

	if err := s.projects.Update(ctx, project, columns...); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes a project and everything attached to it.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.projects.Delete(ctx, id)
}

// ListMembers returns the members of a project with their accounts.
func (s *Service) ListMembers(ctx context.Context, projectID string) ([]models.ProjectMember, error) {
	return s.members.ListByProject(ctx, projectID)
}

// AddMember assigns a user to a project. Both must exist; an existing
// membership yields repository.ErrConflict.
func (s *Service) AddMember(ctx context.Context, projectID string, in AddMemberInput) (*models.ProjectMember, error) {
	if !in.Role.Known() {
		return nil, &validation.Error{Path: "$.role", Message: fmt.Sprintf("unknown project role %q", in.Role)}
	}
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	member := &models.ProjectMember{ProjectID: projectID, UserID: user.ID, Role: in.Role}
	if err := s.members.Add(ctx, member); err != nil {
		return nil, err
	}
	member.User = user
	return member, nil
}

// UpdateMemberRole changes a membership's project role in place.
func (s *Service) UpdateMemberRole(ctx context.Context, memberID string, role auth.ProjectRole) (*models.ProjectMember, error) {
	if !role.Known() {
		return nil, &validation.Error{Path: "$.role", Message: fmt.Sprintf("unknown project role %q", role)}
	}
	if err := s.members.UpdateRole(ctx, memberID, role); err != nil {
		return nil, err
	}
	return s.members.GetByID(ctx, memberID)
}

// RemoveMember deletes a membership.
func (s *Service) RemoveMember(ctx context.Context, memberID string) error {
	return s.members.Remove(ctx, memberID)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
