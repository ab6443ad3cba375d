package models

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/terraconstructs/sandaran/internal/auth"
)

// User is a registered account. Accounts start inactive with role NONE until
// an administrator approves them.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string          `bun:"id,pk,type:uuid" json:"id"`
	Name         string          `bun:"name,notnull" json:"name"`
	Email        string          `bun:"email,notnull,unique" json:"email"`
	PasswordHash string          `bun:"password_hash" json:"-"` // bcrypt hash
	Image        *string         `bun:"image" json:"image,omitempty"`
	Role         auth.GlobalRole `bun:"role_global,notnull,default:'NONE'" json:"roleGlobal"`
	IsActive     bool            `bun:"is_active,notnull,default:false" json:"isActive"`
	ApprovedAt   *time.Time      `bun:"approved_at" json:"approvedAt,omitempty"`
	ApprovedByID *string         `bun:"approved_by_id,type:uuid" json:"approvedById,omitempty"`
	CreatedAt    time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt    time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// Principal converts the stored account into the identity used by the gates.
func (u *User) Principal(sessionID string) *auth.Principal {
	p := &auth.Principal{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Active:    u.IsActive,
		Role:      u.Role,
		SessionID: sessionID,
	}
	if u.Image != nil {
		p.Image = *u.Image
	}
	return p
}

// Session tracks a login. The token itself is never stored, only its SHA-256 hash.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:sess"`

	ID         string    `bun:"id,pk,type:uuid" json:"id"`
	UserID     string    `bun:"user_id,notnull,type:uuid" json:"userId"`
	TokenHash  string    `bun:"token_hash,notnull,unique" json:"-"`
	ExpiresAt  time.Time `bun:"expires_at,notnull" json:"expiresAt"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	LastUsedAt time.Time `bun:"last_used_at,nullzero,notnull,default:current_timestamp" json:"lastUsedAt"`
	UserAgent  *string   `bun:"user_agent" json:"userAgent,omitempty"`
	IPAddress  *string   `bun:"ip_address" json:"ipAddress,omitempty"`
	Revoked    bool      `bun:"revoked,notnull,default:false" json:"revoked"`
}

// Live reports whether the session can still authenticate requests at now.
func (s *Session) Live(now time.Time) bool {
	return s != nil && !s.Revoked && now.Before(s.ExpiresAt)
}
