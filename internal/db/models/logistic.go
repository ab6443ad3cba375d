package models

import (
	"time"

	"github.com/uptrace/bun"
)

// MovementType is the direction of a stock movement.
type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	return t == MovementIn || t == MovementOut
}

// LogisticItem is a material tracked in a project's inventory.
type LogisticItem struct {
	bun.BaseModel `bun:"table:logistic_items,alias:li"`

	ID        string    `bun:"id,pk,type:uuid" json:"id"`
	ProjectID string    `bun:"project_id,notnull,type:uuid" json:"projectId"`
	Name      string    `bun:"name,notnull" json:"name"`
	Unit      string    `bun:"unit,notnull" json:"unit"`
	Slug      string    `bun:"slug,notnull,unique" json:"slug"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	TransactionCount int `bun:"transaction_count,scanonly" json:"transactionCount"`
}

// LogisticTransaction records material moving in or out of the site.
type LogisticTransaction struct {
	bun.BaseModel `bun:"table:logistic_transactions,alias:lt"`

	ID        string       `bun:"id,pk,type:uuid" json:"id"`
	ItemID    string       `bun:"item_id,notnull,type:uuid" json:"itemId"`
	UserID    string       `bun:"user_id,notnull,type:uuid" json:"userId"`
	Type      MovementType `bun:"type,notnull" json:"type"`
	Quantity  float64      `bun:"quantity,notnull" json:"quantity"`
	Notes     *string      `bun:"notes" json:"notes,omitempty"`
	CreatedAt time.Time    `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`

	Item *LogisticItem `bun:"rel:belongs-to,join:item_id=id" json:"item,omitempty"`
	User *User         `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
}

// StockLevel is the computed inventory position of one item.
type StockLevel struct {
	ItemID   string  `bun:"item_id" json:"itemId"`
	Name     string  `bun:"name" json:"name"`
	Unit     string  `bun:"unit" json:"unit"`
	TotalIn  float64 `bun:"total_in" json:"totalIn"`
	TotalOut float64 `bun:"total_out" json:"totalOut"`
	Stock    float64 `bun:"stock" json:"stock"`
}
