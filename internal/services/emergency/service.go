// Package emergency manages project petty-cash funds: top-ups by finance,
// withdrawal requests by the site foreman and their verification.
package emergency

import (
	"context"
	"errors"
	"fmt"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/db/models"
	"github.com/terraconstructs/sandaran/internal/repository"
	"github.com/terraconstructs/sandaran/internal/services/validation"
)

// BalanceInput tops up a fund.
type BalanceInput struct {
	Amount      float64 `mapstructure:"amount"`
	Description string  `mapstructure:"description"`
}

// RequestInput asks for a withdrawal.
type RequestInput struct {
	Amount        float64 `mapstructure:"amount"`
	Description   string  `mapstructure:"description"`
	ProofPublicID *string `mapstructure:"proofPublicId"`
}

// VerifyInput approves or rejects a pending request.
type VerifyInput struct {
	Status models.TransactionStatus `mapstructure:"status"`
}

// Recorder counts fund transactions by resulting status.
type Recorder interface {
	RecordFundTransaction(status string)
}

// Service manages emergency funds.
type Service struct {
	funds    repository.EmergencyRepository
	recorder Recorder
}

// NewService constructs an emergency fund service. recorder may be nil.
func NewService(funds repository.EmergencyRepository, recorder Recorder) *Service {
	return &Service{funds: funds, recorder: recorder}
}

// Get returns the project's fund with its transactions. A project that never
// received a top-up reports a zero balance.
func (s *Service) Get(ctx context.Context, projectID string) (*models.EmergencyFund, error) {
	fund, err := s.funds.GetFund(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.EmergencyFund{
			ProjectID:    projectID,
			Transactions: []*models.EmergencyTransaction{},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	if fund.Transactions == nil {
		fund.Transactions = []*models.EmergencyTransaction{}
	}
	return fund, nil
}

// AddBalance tops up the fund, creating it on first use.
func (s *Service) AddBalance(ctx context.Context, p *auth.Principal, projectID string, in BalanceInput) (*models.EmergencyFund, error) {
	if err := checkAmount(in.Amount); err != nil {
		return nil, err
	}
	txn := &models.EmergencyTransaction{
		RequestedByID: p.ID,
		Amount:        in.Amount,
		Description:   in.Description,
	}
	fund, err := s.funds.AddBalance(ctx, projectID, txn)
	if err != nil {
		return nil, err
	}
	s.record(models.TransactionApproved)
	fund.Transactions = []*models.EmergencyTransaction{txn}
	return fund, nil
}

// Request records a pending withdrawal. The fund must exist and cover the amount.
func (s *Service) Request(ctx context.Context, p *auth.Principal, projectID string, in RequestInput) (*models.EmergencyTransaction, error) {
	if err := checkAmount(in.Amount); err != nil {
		return nil, err
	}
	txn := &models.EmergencyTransaction{
		RequestedByID: p.ID,
		Amount:        in.Amount,
		Description:   in.Description,
		ProofPublicID: in.ProofPublicID,
	}
	if err := s.funds.CreateRequest(ctx, projectID, txn); err != nil {
		return nil, err
	}
	s.record(models.TransactionPending)
	return txn, nil
}

// Verify approves or rejects a pending request as p. Approval deducts the
// amount atomically and fails with repository.ErrInsufficientBalance when the
// fund no longer covers it.
func (s *Service) Verify(ctx context.Context, p *auth.Principal, projectID, transactionID string, in VerifyInput) (*models.EmergencyTransaction, error) {
	if in.Status != models.TransactionApproved && in.Status != models.TransactionRejected {
		return nil, &validation.Error{Path: "$.status", Message: fmt.Sprintf("status must be APPROVED or REJECTED, got %q", in.Status)}
	}
	txn, err := s.funds.Verify(ctx, projectID, transactionID, p.ID, in.Status)
	if err != nil {
		return nil, err
	}
	s.record(in.Status)
	return txn, nil
}

// ListTransactions returns the project's transactions, optionally of one status.
func (s *Service) ListTransactions(ctx context.Context, projectID string, status models.TransactionStatus) ([]models.EmergencyTransaction, error) {
	if status != "" && !status.Valid() {
		return nil, &validation.Error{Path: "$.status", Message: fmt.Sprintf("unknown status %q", status)}
	}
	return s.funds.ListTransactions(ctx, projectID, status)
}

func (s *Service) record(status models.TransactionStatus) {
	if s.recorder != nil {
		s.recorder.RecordFundTransaction(string(status))
	}
}

func checkAmount(amount float64) error {
	if amount <= 0 {
		return &validation.Error{Path: "$.amount", Message: "amount must be greater than zero"}
	}
	return nil
}
