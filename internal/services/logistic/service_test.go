package logistic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/db/dbtest"
	"github.com/terraconstructs/sandaran/internal/db/models"
	"github.com/terraconstructs/sandaran/internal/repository"
	"github.com/terraconstructs/sandaran/internal/services/validation"
)

func TestSlug(t *testing.T) {
	at := time.UnixMilli(1767225600000)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Cement", "cement-1767225600000"},
		{"spaces and symbols", "  Rebar Ø12 (SNI) ", "rebar-12-sni-1767225600000"},
		{"no letters", "!!!", "item-1767225600000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.in, at))
		})
	}
}

func TestInventory(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	svc := NewService(repository.NewBunLogisticRepository(db))

	project := dbtest.Project(t, db, "tower")
	bridge := dbtest.Project(t, db, "bridge")
	mandor := dbtest.User(t, db, "mandor@example.com", auth.RoleUser).Principal("")

	cement, err := svc.CreateItem(ctx, project.ID, ItemInput{Name: "Cement", Unit: "sack"})
	require.NoError(t, err)

	_, err = svc.CreateTransaction(ctx, mandor, project.ID, MovementInput{ItemID: cement.ID, Type: models.MovementIn, Quantity: 50})
	require.NoError(t, err)
	_, err = svc.CreateTransaction(ctx, mandor, project.ID, MovementInput{ItemID: cement.ID, Type: models.MovementOut, Quantity: 20})
	require.NoError(t, err)

	_, err = svc.CreateTransaction(ctx, mandor, bridge.ID, MovementInput{ItemID: cement.ID, Type: models.MovementIn, Quantity: 1})
	require.ErrorIs(t, err, auth.ErrNotFound)

	_, err = svc.CreateTransaction(ctx, mandor, project.ID, MovementInput{ItemID: cement.ID, Type: "LOST", Quantity: 1})
	require.ErrorIs(t, err, validation.ErrValidationFailed)

	_, err = svc.CreateTransaction(ctx, mandor, project.ID, MovementInput{ItemID: cement.ID, Type: models.MovementOut, Quantity: 0})
	require.ErrorIs(t, err, validation.ErrValidationFailed)

	items, err := svc.ListItems(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].TransactionCount)

	outs, err := svc.ListTransactions(ctx, project.ID, cement.ID, models.MovementOut)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, 20.0, outs[0].Quantity)

	stock, err := svc.Stock(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, stock, 1)
	assert.Equal(t, 50.0, stock[0].TotalIn)
	assert.Equal(t, 20.0, stock[0].TotalOut)
	assert.Equal(t, 30.0, stock[0].Stock)

	unit := "bag"
	updated, err := svc.UpdateItem(ctx, project.ID, cement.ID, ItemUpdate{Unit: &unit})
	require.NoError(t, err)
	assert.Equal(t, "bag", updated.Unit)

	_, err = svc.UpdateItem(ctx, bridge.ID, cement.ID, ItemUpdate{Unit: &unit})
	require.ErrorIs(t, err, auth.ErrNotFound)

	require.NoError(t, svc.DeleteItem(ctx, project.ID, cement.ID))
	stock, err = svc.Stock(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, stock)
}
