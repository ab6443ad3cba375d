// Package logistic tracks project materials and their stock movements.
package logistic

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/db/models"
	"github.com/terraconstructs/sandaran/internal/repository"
	"github.com/terraconstructs/sandaran/internal/services/validation"
)

// ItemInput creates an inventory item.
type ItemInput struct {
	Name string `mapstructure:"name"`
	Unit string `mapstructure:"unit"`
}

// ItemUpdate changes the item fields that are set.
type ItemUpdate struct {
	Name *string `mapstructure:"name"`
	Unit *string `mapstructure:"unit"`
}

// MovementInput records material moving in or out.
type MovementInput struct {
	ItemID   string              `mapstructure:"itemId"`
	Type     models.MovementType `mapstructure:"type"`
	Quantity float64             `mapstructure:"quantity"`
	Notes    *string             `mapstructure:"notes"`
}

// Service manages inventory items and movements.
type Service struct {
	repo repository.LogisticRepository
	now  func() time.Time
}

// NewService constructs a logistics service.
func NewService(repo repository.LogisticRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

var nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives an item slug from its name and creation time.
func Slug(name string, createdAt time.Time) string {
	s := strings.ToLower(name)
	s = nonAlphanumericRegex.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "item"
	}
	return fmt.Sprintf("%s-%d", s, createdAt.UnixMilli())
}

// CreateItem adds an item to the project's inventory.
func (s *Service) CreateItem(ctx context.Context, projectID string, in ItemInput) (*models.LogisticItem, error) {
	item := &models.LogisticItem{
		ProjectID: projectID,
		Name:      in.Name,
		Unit:      in.Unit,
		Slug:      Slug(in.Name, s.now()),
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems returns the project's items with transaction counts.
func (s *Service) ListItems(ctx context.Context, projectID string) ([]models.LogisticItem, error) {
	return s.repo.ListItems(ctx, projectID)
}

// UpdateItem renames an item or changes its unit.
func (s *Service) UpdateItem(ctx context.Context, projectID, id string, in ItemUpdate) (*models.LogisticItem, error) {
	item, err := s.item(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	var columns []string
	if in.Name != nil {
		item.Name = *in.Name
		columns = append(columns, "name")
	}
	if in.Unit != nil {
		item.Unit = *in.Unit
		columns = append(columns, "unit")
	}
	if len(columns) == 0 {
		return item, nil
	}
	if err := s.repo.UpdateItem(ctx, item, columns...); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item with its movements.
func (s *Service) DeleteItem(ctx context.Context, projectID, id string) error {
	item, err := s.item(ctx, projectID, id)
	if err != nil {
		return err
	}
	return s.repo.DeleteItem(ctx, item.ID)
}

// CreateTransaction records a movement of an item of the project by p.
func (s *Service) CreateTransaction(ctx context.Context, p *auth.Principal, projectID string, in MovementInput) (*models.LogisticTransaction, error) {
	if !in.Type.Valid() {
		return nil, &validation.Error{Path: "$.type", Message: fmt.Sprintf("type must be IN or OUT, got %q", in.Type)}
	}
	if in.Quantity <= 0 {
		return nil, &validation.Error{Path: "$.quantity", Message: "quantity must be greater than zero"}
	}
	item, err := s.item(ctx, projectID, in.ItemID)
	if err != nil {
		return nil, err
	}
	txn := &models.LogisticTransaction{
		ItemID:   item.ID,
		UserID:   p.ID,
		Type:     in.Type,
		Quantity: in.Quantity,
		Notes:    in.Notes,
	}
	if err := s.repo.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	txn.Item = item
	return txn, nil
}

// ListTransactions returns the project's movements, optionally narrowed.
func (s *Service) ListTransactions(ctx context.Context, projectID, itemID string, movement models.MovementType) ([]models.LogisticTransaction, error) {
	if movement != "" && !movement.Valid() {
		return nil, &validation.Error{Path: "$.type", Message: fmt.Sprintf("type must be IN or OUT, got %q", movement)}
	}
	return s.repo.ListTransactions(ctx, projectID, itemID, movement)
}

// Stock returns the current stock of every item of the project.
func (s *Service) Stock(ctx context.Context, projectID string) ([]models.StockLevel, error) {
	return s.repo.Stock(ctx, projectID)
}

func (s *Service) item(ctx context.Context, projectID, id string) (*models.LogisticItem, error) {
	item, err := s.repo.GetItem(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if item.ProjectID != projectID {
		return nil, auth.ErrNotFound
	}
	return item, nil
}
