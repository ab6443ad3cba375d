package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/terraconstructs/sandaran/internal/db/bunx"
	"github.com/terraconstructs/sandaran/internal/db/models"
)

// BunCommentRepository implements CommentRepository using Bun ORM
type BunCommentRepository struct {
	db bun.IDB
}

// NewBunCommentRepository creates a new Bun-based comment repository
func NewBunCommentRepository(db bun.IDB) *BunCommentRepository {
	return &BunCommentRepository{db: db}
}

// Create inserts a comment.
func (r *BunCommentRepository) Create(ctx context.Context, comment *models.ReportComment) error {
	if comment.ID == "" {
		comment.ID = bunx.NewUUIDv7()
	}
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	if _, err := r.db.NewInsert().Model(comment).Exec(ctx); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// GetByID fetches a comment with its author.
func (r *BunCommentRepository) GetByID(ctx context.Context, id string) (*models.ReportComment, error) {
	comment := new(models.ReportComment)
	err := r.db.NewSelect().
		Model(comment).
		Relation("User").
		Where("rc.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "get comment %s", id)
	}
	return comment, nil
}

// ListByReport returns a report's comments, oldest first.
func (r *BunCommentRepository) ListByReport(ctx context.Context, reportID string) ([]models.ReportComment, error) {
	comments := []models.ReportComment{}
	err := r.db.NewSelect().
		Model(&comments).
		Relation("User").
		Where("rc.report_id = ?", reportID).
		Order("rc.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Update writes the given columns (content when none are named).
func (r *BunCommentRepository) Update(ctx context.Context, comment *models.ReportComment, columns ...string) error {
	if len(columns) == 0 {
		columns = []string{"content"}
	}
	comment.UpdatedAt = time.Now().UTC()
	res, err := r.db.NewUpdate().
		Model(comment).
		Column(append(columns, "updated_at")...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return expectAffected(res, "update comment "+comment.ID)
}

// Delete removes a comment.
func (r *BunCommentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().Model((*models.ReportComment)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return expectAffected(res, "delete comment "+id)
}
