package models

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/terraconstructs/sandaran/internal/auth"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusActive ProjectStatus = "ACTIVE"
	ProjectStatusDone   ProjectStatus = "DONE"
	ProjectStatusPaused ProjectStatus = "PAUSED"
)

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusDone, ProjectStatusPaused:
		return true
	}
	return false
}

// Project is a construction project. Everything else hangs off it.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID          string        `bun:"id,pk,type:uuid" json:"id"`
	Name        string        `bun:"name,notnull" json:"name"`
	Slug        string        `bun:"slug,notnull,unique" json:"slug"`
	Description *string       `bun:"description" json:"description,omitempty"`
	Location    *string       `bun:"location" json:"location,omitempty"`
	StartDate   time.Time     `bun:"start_date,notnull" json:"startDate"`
	EndDate     *time.Time    `bun:"end_date" json:"endDate,omitempty"`
	Status      ProjectStatus `bun:"status,notnull,default:'ACTIVE'" json:"status"`
	CreatedAt   time.Time     `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time     `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	Members []*ProjectMember `bun:"rel:has-many,join:id=project_id" json:"members,omitempty"`
}

// ProjectMember binds one user to one project with a single project role.
// (user_id, project_id) is unique.
type ProjectMember struct {
	bun.BaseModel `bun:"table:project_members,alias:pm"`

	ID        string           `bun:"id,pk,type:uuid" json:"id"`
	ProjectID string           `bun:"project_id,notnull,type:uuid" json:"projectId"`
	UserID    string           `bun:"user_id,notnull,type:uuid" json:"userId"`
	Role      auth.ProjectRole `bun:"role,notnull" json:"role"`
	CreatedAt time.Time        `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`

	User    *User    `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Project *Project `bun:"rel:belongs-to,join:project_id=id" json:"project,omitempty"`
}
