package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/terraconstructs/sandaran/internal/db/bunx"
	"github.com/terraconstructs/sandaran/internal/db/models"
)

// BunLogisticRepository implements LogisticRepository using Bun ORM
type BunLogisticRepository struct {
	db bun.IDB
}

// NewBunLogisticRepository creates a new Bun-based logistics repository
func NewBunLogisticRepository(db bun.IDB) *BunLogisticRepository {
	return &BunLogisticRepository{db: db}
}

// CreateItem inserts an inventory item. A duplicate slug yields ErrConflict.
func (r *BunLogisticRepository) CreateItem(ctx context.Context, item *models.LogisticItem) error {
	if item.ID == "" {
		item.ID = bunx.NewUUIDv7()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	if _, err := r.db.NewInsert().Model(item).Exec(ctx); err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("logistic item with slug '%s': %w", item.Slug, ErrConflict)
		}
		return fmt.Errorf("insert logistic item: %w", err)
	}
	return nil
}

// GetItem fetches a single item.
func (r *BunLogisticRepository) GetItem(ctx context.Context, id string) (*models.LogisticItem, error) {
	item := new(models.LogisticItem)
	if err := r.db.NewSelect().Model(item).Where("li.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "get logistic item %s", id)
	}
	return item, nil
}

// ListItems returns a project's items by name with their transaction counts.
func (r *BunLogisticRepository) ListItems(ctx context.Context, projectID string) ([]models.LogisticItem, error) {
	items := []models.LogisticItem{}
	err := r.db.NewSelect().
		Model(&items).
		ColumnExpr("li.*").
		ColumnExpr("(SELECT COUNT(*) FROM logistic_transactions AS lt WHERE lt.item_id = li.id) AS transaction_count").
		Where("li.project_id = ?", projectID).
		Order("li.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list logistic items: %w", err)
	}
	return items, nil
}

// UpdateItem writes the given columns (name and unit when none are named).
func (r *BunLogisticRepository) UpdateItem(ctx context.Context, item *models.LogisticItem, columns ...string) error {
	if len(columns) == 0 {
		columns = []string{"name", "unit"}
	}
	item.UpdatedAt = time.Now().UTC()
	res, err := r.db.NewUpdate().
		Model(item).
		Column(append(columns, "updated_at")...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update logistic item: %w", err)
	}
	return expectAffected(res, "update logistic item "+item.ID)
}

// DeleteItem removes an item and its movements.
func (r *BunLogisticRepository) DeleteItem(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().Model((*models.LogisticItem)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete logistic item: %w", err)
	}
	return expectAffected(res, "delete logistic item "+id)
}

// CreateTransaction records a stock movement.
func (r *BunLogisticRepository) CreateTransaction(ctx context.Context, txn *models.LogisticTransaction) error {
	if txn.ID == "" {
		txn.ID = bunx.NewUUIDv7()
	}
	txn.CreatedAt = time.Now().UTC()
	if _, err := r.db.NewInsert().Model(txn).Exec(ctx); err != nil {
		return fmt.Errorf("insert logistic transaction: %w", err)
	}
	return nil
}

// ListTransactions returns a project's movements, newest first, optionally
// narrowed to one item and one direction.
func (r *BunLogisticRepository) ListTransactions(ctx context.Context, projectID, itemID string, movement models.MovementType) ([]models.LogisticTransaction, error) {
	txns := []models.LogisticTransaction{}
	q := r.db.NewSelect().
		Model(&txns).
		Relation("Item").
		Relation("User").
		Where("item.project_id = ?", projectID)
	if itemID != "" {
		q = q.Where("lt.item_id = ?", itemID)
	}
	if movement != "" {
		q = q.Where("lt.type = ?", movement)
	}
	if err := q.Order("lt.created_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list logistic transactions: %w", err)
	}
	return txns, nil
}

// stockSumExpr totals one movement direction. The cast keeps the column a
// float on SQLite, where a sum over no rows is the integer 0.
const stockSumExpr = "CAST(COALESCE(SUM(CASE WHEN lt.type = ? THEN lt.quantity ELSE 0.0 END), 0.0) AS DOUBLE PRECISION)"

// Stock computes total in, total out and the current stock of every item.
func (r *BunLogisticRepository) Stock(ctx context.Context, projectID string) ([]models.StockLevel, error) {
	levels := []models.StockLevel{}
	err := r.db.NewSelect().
		TableExpr("logistic_items AS li").
		ColumnExpr("li.id AS item_id").
		ColumnExpr("li.name AS name").
		ColumnExpr("li.unit AS unit").
		ColumnExpr(stockSumExpr+" AS total_in", models.MovementIn).
		ColumnExpr(stockSumExpr+" AS total_out", models.MovementOut).
		Join("LEFT JOIN logistic_transactions AS lt ON lt.item_id = li.id").
		Where("li.project_id = ?", projectID).
		GroupExpr("li.id, li.name, li.unit").
		OrderExpr("li.name ASC").
		Scan(ctx, &levels)
	if err != nil {
		return nil, fmt.Errorf("compute stock: %w", err)
	}
	for i := range levels {
		levels[i].Stock = levels[i].TotalIn - levels[i].TotalOut
	}
	return levels, nil
}
