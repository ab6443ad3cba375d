// Package document manages design files, drawings and specifications.
package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/authz"
	"github.com/terraconstructs/sandaran/internal/db/models"
	"github.com/terraconstructs/sandaran/internal/repository"
	"github.com/terraconstructs/sandaran/internal/services/validation"
)

// CreateInput registers an uploaded document.
type CreateInput struct {
	FileName    string              `mapstructure:"fileName"`
	FileType    models.DocumentType `mapstructure:"fileType"`
	PublicID    string              `mapstructure:"publicId"`
	URL         string              `mapstructure:"url"`
	FileSize    int64               `mapstructure:"fileSize"`
	MimeType    string              `mapstructure:"mimeType"`
	Title       *string             `mapstructure:"title"`
	Description *string             `mapstructure:"description"`
}

// UpdateInput changes the fields that are set. A new PublicID replaces the
// stored file and bumps the version.
type UpdateInput struct {
	FileName    *string              `mapstructure:"fileName"`
	FileType    *models.DocumentType `mapstructure:"fileType"`
	PublicID    *string              `mapstructure:"publicId"`
	URL         *string              `mapstructure:"url"`
	FileSize    *int64               `mapstructure:"fileSize"`
	MimeType    *string              `mapstructure:"mimeType"`
	Title       *string              `mapstructure:"title"`
	Description *string              `mapstructure:"description"`
}

// ObjectDeleter removes uploaded objects from blob storage.
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, publicID string) error
}

// Service manages documents. Only the uploader may change or delete one.
type Service struct {
	docs    repository.DocumentRepository
	objects ObjectDeleter
	logger  logrus.FieldLogger
}

// NewService constructs a document service.
func NewService(docs repository.DocumentRepository) *Service {
	return &Service{docs: docs, logger: logrus.StandardLogger()}
}

// WithObjectStore removes replaced and deleted files from blob storage.
func (s *Service) WithObjectStore(objects ObjectDeleter, logger logrus.FieldLogger) *Service {
	s.objects = objects
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Create registers a document uploaded by p.
func (s *Service) Create(ctx context.Context, p *auth.Principal, projectID string, in CreateInput) (*models.ProjectDocument, error) {
	if !in.FileType.Valid() {
		return nil, &validation.Error{Path: "$.fileType", Message: fmt.Sprintf("unknown document type %q", in.FileType)}
	}
	doc := &models.ProjectDocument{
		ProjectID:   projectID,
		UserID:      p.ID,
		FileName:    in.FileName,
		FileType:    in.FileType,
		PublicID:    in.PublicID,
		URL:         in.URL,
		FileSize:    in.FileSize,
		MimeType:    in.MimeType,
		Title:       in.Title,
		Description: in.Description,
		Version:     1,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns the project's documents, optionally of one type.
func (s *Service) List(ctx context.Context, projectID string, fileType models.DocumentType) ([]models.ProjectDocument, error) {
	if fileType != "" && !fileType.Valid() {
		return nil, &validation.Error{Path: "$.fileType", Message: fmt.Sprintf("unknown document type %q", fileType)}
	}
	return s.docs.List(ctx, projectID, fileType)
}

// Get returns a document of the project.
func (s *Service) Get(ctx context.Context, projectID, id string) (*models.ProjectDocument, error) {
	doc, err := s.scoped(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, auth.ErrNotFound
	}
	return doc, nil
}

// Update changes a document uploaded by p.
func (s *Service) Update(ctx context.Context, p *auth.Principal, projectID, id string, in UpdateInput) (*models.ProjectDocument, error) {
	doc, err := s.owned(ctx, p, projectID, id)
	if err != nil {
		return nil, err
	}

	var columns []string
	var replaced string
	if in.FileName != nil {
		doc.FileName = *in.FileName
		columns = append(columns, "file_name")
	}
	if in.FileType != nil {
		if !in.FileType.Valid() {
			return nil, &validation.Error{Path: "$.fileType", Message: fmt.Sprintf("unknown document type %q", *in.FileType)}
		}
		doc.FileType = *in.FileType
		columns = append(columns, "file_type")
	}
	if in.PublicID != nil && *in.PublicID != doc.PublicID {
		replaced = doc.PublicID
		doc.PublicID = *in.PublicID
		doc.Version++
		columns = append(columns, "public_id", "version")
	}
	if in.URL != nil {
		doc.URL = *in.URL
		columns = append(columns, "url")
	}
	if in.FileSize != nil {
		doc.FileSize = *in.FileSize
		columns = append(columns, "file_size")
	}
	if in.MimeType != nil {
		doc.MimeType = *in.MimeType
		columns = append(columns, "mime_type")
	}
	if in.Title != nil {
		doc.Title = in.Title
		columns = append(columns, "title")
	}
	if in.Description != nil {
		doc.Description = in.Description
		columns = append(columns, "description")
	}
	if len(columns) == 0 {
		return doc, nil
	}

	if err := s.docs.Update(ctx, doc, columns...); err != nil {
		return nil, err
	}
	s.deleteObject(ctx, replaced)
	return doc, nil
}

// Delete removes a document uploaded by p along with its stored file.
func (s *Service) Delete(ctx context.Context, p *auth.Principal, projectID, id string) error {
	doc, err := s.owned(ctx, p, projectID, id)
	if err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, doc.ID); err != nil {
		return err
	}
	s.deleteObject(ctx, doc.PublicID)
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

func (s *Service) scoped(ctx context.Context, projectID, id string) (*models.ProjectDocument, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if doc.ProjectID != projectID {
		return nil, nil
	}
	return doc, nil
}

func (s *Service) owned(ctx context.Context, p *auth.Principal, projectID, id string) (*models.ProjectDocument, error) {
	doc, err := s.scoped(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, auth.ErrNotFound
	}
	if err := authz.CheckOwnership(p, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
