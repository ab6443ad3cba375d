package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/db/bunx"
	"github.com/terraconstructs/sandaran/internal/db/models"
)

// BunMemberRepository implements MemberRepository using Bun ORM.
// It also serves as the membership lookup for the project gates.
type BunMemberRepository struct {
	db bun.IDB
}

// NewBunMemberRepository creates a new Bun-based membership repository
func NewBunMemberRepository(db bun.IDB) *BunMemberRepository {
	return &BunMemberRepository{db: db}
}

// Add inserts a membership. An existing (user, project) pair yields ErrConflict.
func (r *BunMemberRepository) Add(ctx context.Context, member *models.ProjectMember) error {
	if member.ID == "" {
		member.ID = bunx.NewUUIDv7()
	}
	member.CreatedAt = time.Now().UTC()

	_, err := r.db.NewInsert().Model(member).Exec(ctx)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("user %s in project %s: %w", member.UserID, member.ProjectID, ErrConflict)
		}
		return fmt.Errorf("insert project member: %w", err)
	}
	return nil
}

// GetByID fetches a membership with its account.
func (r *BunMemberRepository) GetByID(ctx context.Context, id string) (*models.ProjectMember, error) {
	member := new(models.ProjectMember)
	err := r.db.NewSelect().
		Model(member).
		Relation("User").
		Where("pm.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "get project member %s", id)
	}
	return member, nil
}

// ListByProject returns the members of a project in join order.
func (r *BunMemberRepository) ListByProject(ctx context.Context, projectID string) ([]models.ProjectMember, error) {
	members := []models.ProjectMember{}
	err := r.db.NewSelect().
		Model(&members).
		Relation("User").
		Where("pm.project_id = ?", projectID).
		Order("pm.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list project members: %w", err)
	}
	return members, nil
}

// FindProjectRole returns the role userID holds in projectID. found is false
// when there is no membership row; err is reserved for storage failures.
func (r *BunMemberRepository) FindProjectRole(ctx context.Context, userID, projectID string) (auth.ProjectRole, bool, error) {
	var role string
	err := r.db.NewSelect().
		Model((*models.ProjectMember)(nil)).
		Column("role").
		Where("user_id = ?", userID).
		Where("project_id = ?", projectID).
		Limit(1).
		Scan(ctx, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("find project role: %w", err)
	}
	return auth.ProjectRole(role), true, nil
}

// UpdateRole changes the role of a membership.
func (r *BunMemberRepository) UpdateRole(ctx context.Context, id string, role auth.ProjectRole) error {
	res, err := r.db.NewUpdate().
		Model((*models.ProjectMember)(nil)).
		Set("role = ?", role).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update member role: %w", err)
	}
	return expectAffected(res, "update member "+id)
}

// Remove deletes a membership.
func (r *BunMemberRepository) Remove(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*models.ProjectMember)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("remove project member: %w", err)
	}
	return expectAffected(res, "remove member "+id)
}
