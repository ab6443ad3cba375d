package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TransactionStatus is the verification state of an emergency fund transaction.
type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "PENDING"
	TransactionApproved TransactionStatus = "APPROVED"
	TransactionRejected TransactionStatus = "REJECTED"
)

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionPending, TransactionApproved, TransactionRejected:
		return true
	}
	return false
}

// EmergencyFund is the petty cash balance of a project. One per project.
type EmergencyFund struct {
	bun.BaseModel `bun:"table:emergency_funds,alias:ef"`

	ID             string    `bun:"id,pk,type:uuid" json:"id"`
	ProjectID      string    `bun:"project_id,notnull,unique,type:uuid" json:"projectId"`
	CurrentBalance float64   `bun:"current_balance,notnull,default:0" json:"currentBalance"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	Transactions []*EmergencyTransaction `bun:"rel:has-many,join:id=fund_id" json:"transactions"`
}

// EmergencyTransaction is a top-up (created approved) or a withdrawal request
// (created pending, then verified by finance).
type EmergencyTransaction struct {
	bun.BaseModel `bun:"table:emergency_transactions,alias:et"`

	ID            string            `bun:"id,pk,type:uuid" json:"id"`
	FundID        string            `bun:"fund_id,notnull,type:uuid" json:"fundId"`
	RequestedByID string            `bun:"requested_by_id,notnull,type:uuid" json:"requestedById"`
	VerifiedByID  *string           `bun:"verified_by_id,type:uuid" json:"verifiedById,omitempty"`
	Amount        float64           `bun:"amount,notnull" json:"amount"`
	Description   string            `bun:"description,notnull" json:"description"`
	ProofPublicID *string           `bun:"proof_public_id" json:"proofPublicId,omitempty"`
	Status        TransactionStatus `bun:"status,notnull,default:'PENDING'" json:"status"`
	VerifiedAt    *time.Time        `bun:"verified_at" json:"verifiedAt,omitempty"`
	CreatedAt     time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`

	RequestedBy *User `bun:"rel:belongs-to,join:requested_by_id=id" json:"requestedBy,omitempty"`
	VerifiedBy  *User `bun:"rel:belongs-to,join:verified_by_id=id" json:"verifiedBy,omitempty"`
}
