package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/terraconstructs/sandaran/internal/db/bunx"
	"github.com/terraconstructs/sandaran/internal/db/models"
)

// BunEmergencyRepository implements EmergencyRepository using Bun ORM.
// Balance changes use conditional updates inside a transaction so two
// concurrent approvals can never drive a fund negative.
type BunEmergencyRepository struct {
	db bun.IDB
}

// NewBunEmergencyRepository creates a new Bun-based emergency fund repository
func NewBunEmergencyRepository(db bun.IDB) *BunEmergencyRepository {
	return &BunEmergencyRepository{db: db}
}

// GetFund fetches a project's fund with its transactions, newest first.
func (r *BunEmergencyRepository) GetFund(ctx context.Context, projectID string) (*models.EmergencyFund, error) {
	return getFund(ctx, r.db, projectID, true)
}

func getFund(ctx context.Context, db bun.IDB, projectID string, withTransactions bool) (*models.EmergencyFund, error) {
	fund := new(models.EmergencyFund)
	q := db.NewSelect().
		Model(fund).
		Where("ef.project_id = ?", projectID)
	if withTransactions {
		q = q.Relation("Transactions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("et.created_at DESC")
		}).
			Relation("Transactions.RequestedBy").
			Relation("Transactions.VerifiedBy")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, notFound(err, "get emergency fund for project %s", projectID)
	}
	return fund, nil
}

// AddBalance tops up a project's fund, creating the fund on first use, and
// records txn as an approved transaction.
func (r *BunEmergencyRepository) AddBalance(ctx context.Context, projectID string, txn *models.EmergencyTransaction) (*models.EmergencyFund, error) {
	var fund *models.EmergencyFund
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()
		seed := &models.EmergencyFund{
			ID:        bunx.NewUUIDv7(),
			ProjectID: projectID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := tx.NewInsert().Model(seed).On("CONFLICT (project_id) DO NOTHING").Exec(ctx); err != nil {
			return fmt.Errorf("ensure emergency fund: %w", err)
		}

		current, err := getFund(ctx, tx, projectID, false)
		if err != nil {
			return err
		}

		_, err = tx.NewUpdate().
			Model((*models.EmergencyFund)(nil)).
			Set("current_balance = current_balance + ?", txn.Amount).
			Set("updated_at = ?", now).
			Where("id = ?", current.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("increment balance: %w", err)
		}

		txn.ID = bunx.NewUUIDv7()
		txn.FundID = current.ID
		txn.Status = models.TransactionApproved
		txn.VerifiedByID = &txn.RequestedByID
		txn.VerifiedAt = &now
		txn.CreatedAt = now
		if _, err := tx.NewInsert().Model(txn).Exec(ctx); err != nil {
			return fmt.Errorf("insert emergency transaction: %w", err)
		}

		fund, err = getFund(ctx, tx, projectID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fund, nil
}

// CreateRequest records a pending withdrawal. The fund must exist and its
// current balance must cover the amount.
func (r *BunEmergencyRepository) CreateRequest(ctx context.Context, projectID string, txn *models.EmergencyTransaction) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		fund, err := getFund(ctx, tx, projectID, false)
		if err != nil {
			return err
		}
		if fund.CurrentBalance < txn.Amount {
			return fmt.Errorf("request %.2f from balance %.2f: %w", txn.Amount, fund.CurrentBalance, ErrInsufficientBalance)
		}

		txn.ID = bunx.NewUUIDv7()
		txn.FundID = fund.ID
		txn.Status = models.TransactionPending
		txn.VerifiedByID = nil
		txn.VerifiedAt = nil
		txn.CreatedAt = time.Now().UTC()
		if _, err := tx.NewInsert().Model(txn).Exec(ctx); err != nil {
			return fmt.Errorf("insert emergency transaction: %w", err)
		}
		return nil
	})
}

// Verify approves or rejects a pending transaction of projectID. Approval
// deducts the amount from the fund.
func (r *BunEmergencyRepository) Verify(ctx context.Context, projectID, transactionID, verifierID string, status models.TransactionStatus) (*models.EmergencyTransaction, error) {
	if status != models.TransactionApproved && status != models.TransactionRejected {
		return nil, fmt.Errorf("verify with status %q: %w", status, ErrInvalidState)
	}

	txn := new(models.EmergencyTransaction)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(txn).
			Join("JOIN emergency_funds AS ef ON ef.id = et.fund_id").
			Where("et.id = ?", transactionID).
			Where("ef.project_id = ?", projectID).
			Scan(ctx)
		if err != nil {
			return notFound(err, "get emergency transaction %s", transactionID)
		}
		if txn.Status != models.TransactionPending {
			return fmt.Errorf("transaction %s is %s: %w", txn.ID, txn.Status, ErrInvalidState)
		}

		now := time.Now().UTC()
		if status == models.TransactionApproved {
			res, err := tx.NewUpdate().
				Model((*models.EmergencyFund)(nil)).
				Set("current_balance = current_balance - ?", txn.Amount).
				Set("updated_at = ?", now).
				Where("id = ?", txn.FundID).
				Where("current_balance >= ?", txn.Amount).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("deduct balance: %w", err)
			}
			if n, err := res.RowsAffected(); err != nil {
				return fmt.Errorf("deduct balance: rows affected: %w", err)
			} else if n == 0 {
				return fmt.Errorf("approve %.2f: %w", txn.Amount, ErrInsufficientBalance)
			}
		}

		txn.Status = status
		txn.VerifiedByID = &verifierID
		txn.VerifiedAt = &now
		res, err := tx.NewUpdate().
			Model(txn).
			Column("status", "verified_by_id", "verified_at").
			WherePK().
			Where("status = ?", models.TransactionPending).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update emergency transaction: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("update emergency transaction: rows affected: %w", err)
		} else if n == 0 {
			return fmt.Errorf("transaction %s already verified: %w", txn.ID, ErrInvalidState)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// ListTransactions returns a project's fund transactions, newest first,
// optionally of one status. A project without a fund has none.
func (r *BunEmergencyRepository) ListTransactions(ctx context.Context, projectID string, status models.TransactionStatus) ([]models.EmergencyTransaction, error) {
	txns := []models.EmergencyTransaction{}
	q := r.db.NewSelect().
		Model(&txns).
		Relation("RequestedBy").
		Relation("VerifiedBy").
		Join("JOIN emergency_funds AS ef ON ef.id = et.fund_id").
		Where("ef.project_id = ?", projectID)
	if status != "" {
		q = q.Where("et.status = ?", status)
	}
	if err := q.Order("et.created_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list emergency transactions: %w", err)
	}
	return txns, nil
}
