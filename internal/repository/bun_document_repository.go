package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/terraconstructs/sandaran/internal/db/bunx"
	"github.com/terraconstructs/sandaran/internal/db/models"
)

// BunDocumentRepository implements DocumentRepository using Bun ORM
type BunDocumentRepository struct {
	db bun.IDB
}

// NewBunDocumentRepository creates a new Bun-based document repository
func NewBunDocumentRepository(db bun.IDB) *BunDocumentRepository {
	return &BunDocumentRepository{db: db}
}

// Create inserts a document at version 1.
func (r *BunDocumentRepository) Create(ctx context.Context, doc *models.ProjectDocument) error {
	if doc.ID == "" {
		doc.ID = bunx.NewUUIDv7()
	}
	if doc.Version == 0 {
		doc.Version = 1
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if _, err := r.db.NewInsert().Model(doc).Exec(ctx); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetByID fetches a document with its uploader.
func (r *BunDocumentRepository) GetByID(ctx context.Context, id string) (*models.ProjectDocument, error) {
	doc := new(models.ProjectDocument)
	err := r.db.NewSelect().
		Model(doc).
		Relation("User").
		Where("pd.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "get document %s", id)
	}
	return doc, nil
}

// List returns a project's documents, newest first, optionally of one type.
func (r *BunDocumentRepository) List(ctx context.Context, projectID string, fileType models.DocumentType) ([]models.ProjectDocument, error) {
	docs := []models.ProjectDocument{}
	q := r.db.NewSelect().
		Model(&docs).
		Relation("User").
		Where("pd.project_id = ?", projectID)
	if fileType != "" {
		q = q.Where("pd.file_type = ?", fileType)
	}
	if err := q.Order("pd.created_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Update writes the given columns (all mutable columns when none are named).
func (r *BunDocumentRepository) Update(ctx context.Context, doc *models.ProjectDocument, columns ...string) error {
	doc.UpdatedAt = time.Now().UTC()
	q := r.db.NewUpdate().Model(doc).WherePK()
	if len(columns) > 0 {
		q = q.Column(append(columns, "updated_at")...)
	} else {
		q = q.ExcludeColumn("id", "project_id", "user_id", "created_at")
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return expectAffected(res, "update document "+doc.ID)
}

// Delete removes a document row. The stored object is removed by the caller.
func (r *BunDocumentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().Model((*models.ProjectDocument)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return expectAffected(res, "delete document "+id)
}
