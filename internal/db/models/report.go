package models

import (
	"time"

	"github.com/uptrace/bun"
)

// DailyReport is a field report filed for one project and one day.
type DailyReport struct {
	bun.BaseModel `bun:"table:daily_reports,alias:dr"`

	ID              string    `bun:"id,pk,type:uuid" json:"id"`
	Slug            string    `bun:"slug,notnull,unique" json:"slug"`
	ProjectID       string    `bun:"project_id,notnull,type:uuid" json:"projectId"`
	UserID          string    `bun:"user_id,notnull,type:uuid" json:"userId"`
	ReportDate      time.Time `bun:"report_date,notnull" json:"reportDate"`
	TaskDescription string    `bun:"task_description,notnull" json:"taskDescription"`
	ProgressPercent float64   `bun:"progress_percent,notnull,default:0" json:"progressPercent"`
	Weather         *string   `bun:"weather" json:"weather,omitempty"`
	TotalWorkers    int       `bun:"total_workers,notnull,default:0" json:"totalWorkers"`
	Location        *string   `bun:"location" json:"location,omitempty"`
	Issues          *string   `bun:"issues" json:"issues,omitempty"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	User     *User            `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Tasks    []*ReportTask    `bun:"rel:has-many,join:id=report_id" json:"tasks,omitempty"`
	Media    []*ReportMedia   `bun:"rel:has-many,join:id=report_id" json:"media,omitempty"`
	Comments []*ReportComment `bun:"rel:has-many,join:id=report_id" json:"comments,omitempty"`
}

// OwnerID returns the user that filed the report.
func (r *DailyReport) OwnerID() string { return r.UserID }

// ReportTask is one line of work inside a daily report. Owned through its report.
type ReportTask struct {
	bun.BaseModel `bun:"table:daily_report_tasks,alias:drt"`

	ID          string    `bun:"id,pk,type:uuid" json:"id"`
	ReportID    string    `bun:"report_id,notnull,type:uuid" json:"reportId"`
	TaskName    string    `bun:"task_name,notnull" json:"taskName"`
	WorkerCount int       `bun:"worker_count,notnull,default:0" json:"workerCount"`
	Progress    float64   `bun:"progress,notnull,default:0" json:"progress"`
	Notes       *string   `bun:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// ReportMedia is an uploaded photo attached to a report. Owned through its report.
type ReportMedia struct {
	bun.BaseModel `bun:"table:report_media,alias:rm"`

	ID        string    `bun:"id,pk,type:uuid" json:"id"`
	ReportID  string    `bun:"report_id,notnull,type:uuid" json:"reportId"`
	PublicID  string    `bun:"public_id,notnull" json:"publicId"`
	URL       string    `bun:"url,notnull" json:"url"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// ReportComment is a remark left on a report.
type ReportComment struct {
	bun.BaseModel `bun:"table:report_comments,alias:rc"`

	ID        string    `bun:"id,pk,type:uuid" json:"id"`
	ReportID  string    `bun:"report_id,notnull,type:uuid" json:"reportId"`
	UserID    string    `bun:"user_id,notnull,type:uuid" json:"userId"`
	Content   string    `bun:"content,notnull" json:"content"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
}

// OwnerID returns the comment author.
func (c *ReportComment) OwnerID() string { return c.UserID }
