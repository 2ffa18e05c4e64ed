package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_AddItem_MergesExistingLine(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()
	userID := uuid.New()

	product := seedProduct(t, db, "Whey Protein 1kg", 450000)

	require.NoError(t, svc.AddItem(ctx, userID, product, 2))
	require.NoError(t, svc.AddItem(ctx, userID, product, 3))

	items, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.True(t, items[0].Selected)
}

func TestCartService_AddItem_NonPositiveQuantityIsNoOp(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()
	userID := uuid.New()

	product := seedProduct(t, db, "Shaker Bottle", 90000)

	require.NoError(t, svc.AddItem(ctx, userID, product, 0))
	require.NoError(t, svc.AddItem(ctx, userID, product, -3))

	items, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartService_UpdateQuantityZeroEqualsRemove(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()
	userID := uuid.New()

	product := seedProduct(t, db, "Resistance Band", 120000)
	require.NoError(t, svc.AddItem(ctx, userID, product, 2))

	require.NoError(t, svc.UpdateQuantity(ctx, userID, product.ID, 0))

	items, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)

	// Removing again is harmless.
	require.NoError(t, svc.UpdateQuantity(ctx, userID, product.ID, 0))
	require.NoError(t, svc.RemoveItem(ctx, userID, product.ID))
}

func TestCartService_SelectedSubtotalTracksSelectionOnly(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()
	userID := uuid.New()

	gloves := seedProduct(t, db, "Lifting Gloves", 150000)
	belt := seedProduct(t, db, "Lifting Belt", 350000)

	require.NoError(t, svc.AddItem(ctx, userID, gloves, 2))
	require.NoError(t, svc.AddItem(ctx, userID, belt, 1))

	summary, err := svc.Summary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 650000.0, summary.Subtotal)
	assert.Equal(t, 650000.0, summary.SelectedSubtotal)
	assert.Equal(t, 3, summary.SelectedTotalItems)

	// Deselecting the belt drops it from the selected aggregates only.
	require.NoError(t, svc.ToggleSelect(ctx, userID, belt.ID))

	summary, err = svc.Summary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 650000.0, summary.Subtotal)
	assert.Equal(t, 300000.0, summary.SelectedSubtotal)
	assert.Equal(t, 2, summary.SelectedTotalItems)

	// Removing a line removes it from every aggregate.
	require.NoError(t, svc.RemoveItem(ctx, userID, gloves.ID))

	summary, err = svc.Summary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 350000.0, summary.Subtotal)
	assert.Equal(t, 0.0, summary.SelectedSubtotal)
}

func TestCartService_SelectAllAndDeselectAll(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()
	userID := uuid.New()

	a := seedProduct(t, db, "Creatine", 300000)
	b := seedProduct(t, db, "BCAA", 280000)
	require.NoError(t, svc.AddItem(ctx, userID, a, 1))
	require.NoError(t, svc.AddItem(ctx, userID, b, 1))

	require.NoError(t, svc.DeselectAll(ctx, userID))
	summary, err := svc.Summary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.SelectedSubtotal)
	assert.Equal(t, 2, summary.TotalItems)

	require.NoError(t, svc.SelectAll(ctx, userID))
	summary, err = svc.Summary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 580000.0, summary.SelectedSubtotal)
}

func TestCartService_ClearSelectedLeavesUnselected(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()
	userID := uuid.New()

	keep := seedProduct(t, db, "Foam Roller", 200000)
	drop := seedProduct(t, db, "Jump Rope", 80000)
	require.NoError(t, svc.AddItem(ctx, userID, keep, 1))
	require.NoError(t, svc.AddItem(ctx, userID, drop, 2))

	require.NoError(t, svc.ToggleSelect(ctx, userID, keep.ID))

	require.NoError(t, svc.ClearSelected(ctx, userID))

	items, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, keep.ID, items[0].ProductID)
}

func TestCartService_UpdateQuantityUnknownLine(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewCartService(db)

	err := svc.UpdateQuantity(context.Background(), uuid.New(), uuid.New(), 3)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}
