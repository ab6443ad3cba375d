package models

import (
	"time"

	"github.com/uptrace/bun"
)

// DocumentType classifies project documents.
type DocumentType string

const (
	DocumentDesign        DocumentType = "DESIGN"
	DocumentDrawing       DocumentType = "DRAWING"
	DocumentReference     DocumentType = "REFERENCE"
	DocumentSpecification DocumentType = "SPECIFICATION"
	DocumentOther         DocumentType = "OTHER"
)

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentDesign, DocumentDrawing, DocumentReference, DocumentSpecification, DocumentOther:
		return true
	}
	return false
}

// ProjectDocument is an uploaded design file, drawing or specification.
type ProjectDocument struct {
	bun.BaseModel `bun:"table:project_documents,alias:pd"`

	ID          string       `bun:"id,pk,type:uuid" json:"id"`
	ProjectID   string       `bun:"project_id,notnull,type:uuid" json:"projectId"`
	UserID      string       `bun:"user_id,notnull,type:uuid" json:"userId"`
	FileName    string       `bun:"file_name,notnull" json:"fileName"`
	FileType    DocumentType `bun:"file_type,notnull" json:"fileType"`
	PublicID    string       `bun:"public_id,notnull" json:"publicId"`
	URL         string       `bun:"url,notnull" json:"url"`
	FileSize    int64        `bun:"file_size,notnull" json:"fileSize"`
	MimeType    string       `bun:"mime_type,notnull" json:"mimeType"`
	Title       *string      `bun:"title" json:"title,omitempty"`
	Description *string      `bun:"description" json:"description,omitempty"`
	Version     int          `bun:"version,notnull,default:1" json:"version"`
	CreatedAt   time.Time    `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time    `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
}

// OwnerID returns the uploader.
func (d *ProjectDocument) OwnerID() string { return d.UserID }
