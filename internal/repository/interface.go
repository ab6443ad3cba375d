package repository

import (
	"context"
	"time"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/db/models"
)

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListPending(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User, columns ...string) error
}

// SessionRepository persists login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	UpdateLastUsed(ctx context.Context, id string) error
	Revoke(ctx context.Context, id string) error
	RevokeByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ProjectStats counts the records hanging off a project.
type ProjectStats struct {
	Members       int `json:"members"`
	Reports       int `json:"reports"`
	Documents     int `json:"documents"`
	LogisticItems int `json:"logisticItems"`
}

// ProjectRepository persists projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	ListForUser(ctx context.Context, userID string) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project, columns ...string) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, id string) (ProjectStats, error)
}

// MemberRepository persists project memberships.
type MemberRepository interface {
	Add(ctx context.Context, member *models.ProjectMember) error
	GetByID(ctx context.Context, id string) (*models.ProjectMember, error)
	ListByProject(ctx context.Context, projectID string) ([]models.ProjectMember, error)
	FindProjectRole(ctx context.Context, userID, projectID string) (auth.ProjectRole, bool, error)
	UpdateRole(ctx context.Context, id string, role auth.ProjectRole) error
	Remove(ctx context.Context, id string) error
}

// ReportPage is one page of reports ordered newest report date first.
type ReportPage struct {
	Reports    []models.DailyReport `json:"reports"`
	NextCursor string               `json:"nextCursor,omitempty"`
}

// ReportRepository persists daily reports with their tasks and media.
type ReportRepository interface {
	Create(ctx context.Context, report *models.DailyReport) error
	GetByID(ctx context.Context, id string) (*models.DailyReport, error)
	GetBySlug(ctx context.Context, slug string) (*models.DailyReport, error)
	List(ctx context.Context, projectID, cursor string, limit int) (*ReportPage, error)
	Update(ctx context.Context, report *models.DailyReport, columns ...string) error
	Delete(ctx context.Context, id string) error

	CreateTask(ctx context.Context, task *models.ReportTask) error
	GetTask(ctx context.Context, id string) (*models.ReportTask, error)
	UpdateTask(ctx context.Context, task *models.ReportTask, columns ...string) error
	DeleteTask(ctx context.Context, id string) error

	AddMedia(ctx context.Context, media *models.ReportMedia) error
	GetMedia(ctx context.Context, id string) (*models.ReportMedia, error)
	DeleteMedia(ctx context.Context, id string) error
}

// CommentRepository persists report comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.ReportComment) error
	GetByID(ctx context.Context, id string) (*models.ReportComment, error)
	ListByReport(ctx context.Context, reportID string) ([]models.ReportComment, error)
	Update(ctx context.Context, comment *models.ReportComment, columns ...string) error
	Delete(ctx context.Context, id string) error
}

// DocumentRepository persists project documents.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.ProjectDocument) error
	GetByID(ctx context.Context, id string) (*models.ProjectDocument, error)
	List(ctx context.Context, projectID string, fileType models.DocumentType) ([]models.ProjectDocument, error)
	Update(ctx context.Context, doc *models.ProjectDocument, columns ...string) error
	Delete(ctx context.Context, id string) error
}

// EmergencyRepository persists emergency funds. Balance changes are atomic.
type EmergencyRepository interface {
	GetFund(ctx context.Context, projectID string) (*models.EmergencyFund, error)
	AddBalance(ctx context.Context, projectID string, txn *models.EmergencyTransaction) (*models.EmergencyFund, error)
	CreateRequest(ctx context.Context, projectID string, txn *models.EmergencyTransaction) error
	Verify(ctx context.Context, projectID, transactionID, verifierID string, status models.TransactionStatus) (*models.EmergencyTransaction, error)
	ListTransactions(ctx context.Context, projectID string, status models.TransactionStatus) ([]models.EmergencyTransaction, error)
}

// LogisticRepository persists inventory items and stock movements.
type LogisticRepository interface {
	CreateItem(ctx context.Context, item *models.LogisticItem) error
	GetItem(ctx context.Context, id string) (*models.LogisticItem, error)
	ListItems(ctx context.Context, projectID string) ([]models.LogisticItem, error)
	UpdateItem(ctx context.Context, item *models.LogisticItem, columns ...string) error
	DeleteItem(ctx context.Context, id string) error

	CreateTransaction(ctx context.Context, txn *models.LogisticTransaction) error
	ListTransactions(ctx context.Context, projectID, itemID string, movement models.MovementType) ([]models.LogisticTransaction, error)
	Stock(ctx context.Context, projectID string) ([]models.StockLevel, error)
}
