package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/fitzone/internal/models"
)

func paymentEnvForTest(t *testing.T, window time.Duration) (*gorm.DB, *CartService, *PaymentService) {
	t.Helper()

	db := newTestDB(t)
	carts := NewCartService(db)
	payments := NewPaymentService(db, carts, nil, nil, window)
	t.Cleanup(payments.Shutdown)

	return db, carts, payments
}

func beginPaymentForTest(t *testing.T, db *gorm.DB, payments *PaymentService, userID uuid.UUID) *models.BankTransferPayment {
	t.Helper()

	order := seedOrder(t, db, userID, models.OrderStatusPending, models.PaymentStatusUnpaid)
	payment, err := payments.Begin(context.Background(), &order)
	require.NoError(t, err)
	require.Equal(t, models.TransferStatusAwaiting, payment.Status)
	return payment
}

func TestPaymentService_ConfirmClearsSelectedCartLines(t *testing.T) {
	t.Parallel()

	db, carts, payments := paymentEnvForTest(t, time.Minute)
	ctx := context.Background()
	userID := uuid.New()

	selected := seedProduct(t, db, "Whey Protein", 450000)
	kept := seedProduct(t, db, "Shaker", 80000)
	require.NoError(t, carts.AddItem(ctx, userID, selected, 1))
	require.NoError(t, carts.AddItem(ctx, userID, kept, 1))
	require.NoError(t, carts.ToggleSelect(ctx, userID, kept.ID))

	payment := beginPaymentForTest(t, db, payments, userID)

	confirmed, err := payments.Confirm(ctx, userID, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)

	items, err := carts.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, kept.ID, items[0].ProductID)
}

func TestPaymentService_ConfirmIsIdempotent(t *testing.T) {
	t.Parallel()

	db, _, payments := paymentEnvForTest(t, time.Minute)
	ctx := context.Background()
	userID := uuid.New()
	payment := beginPaymentForTest(t, db, payments, userID)

	first, err := payments.Confirm(ctx, userID, payment.ID)
	require.NoError(t, err)

	second, err := payments.Confirm(ctx, userID, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusConfirmed, second.Status)
	require.NotNil(t, second.ConfirmedAt)
	assert.Equal(t, first.ConfirmedAt.Unix(), second.ConfirmedAt.Unix())
}

func TestPaymentService_ConfirmIsOwnerScoped(t *testing.T) {
	t.Parallel()

	db, _, payments := paymentEnvForTest(t, time.Minute)
	payment := beginPaymentForTest(t, db, payments, uuid.New())

	_, err := payments.Confirm(context.Background(), uuid.New(), payment.ID)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestPaymentService_CountdownExpiryCompletes(t *testing.T) {
	t.Parallel()

	db, carts, payments := paymentEnvForTest(t, 30*time.Millisecond)
	ctx := context.Background()
	userID := uuid.New()

	product := seedProduct(t, db, "Resistance Band", 120000)
	require.NoError(t, carts.AddItem(ctx, userID, product, 2))

	payment := beginPaymentForTest(t, db, payments, userID)

	require.Eventually(t, func() bool {
		var reloaded models.BankTransferPayment
		if err := db.First(&reloaded, "id = ?", payment.ID).Error; err != nil {
			return false
		}
		return reloaded.Status == models.TransferStatusConfirmed
	}, time.Second, 5*time.Millisecond)

	items, err := carts.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPaymentService_CancelStopsCountdown(t *testing.T) {
	t.Parallel()

	db, carts, payments := paymentEnvForTest(t, 30*time.Millisecond)
	ctx := context.Background()
	userID := uuid.New()

	product := seedProduct(t, db, "Lifting Straps", 95000)
	require.NoError(t, carts.AddItem(ctx, userID, product, 1))

	payment := beginPaymentForTest(t, db, payments, userID)
	require.NoError(t, payments.CancelForOrder(ctx, payment.OrderID))

	var reloaded models.BankTransferPayment
	require.NoError(t, db.First(&reloaded, "id = ?", payment.ID).Error)
	assert.Equal(t, models.TransferStatusCancelled, reloaded.Status)
	assert.Nil(t, reloaded.ConfirmedAt)

	// The stopped timer must not fire the completion path.
	time.Sleep(80 * time.Millisecond)
	require.NoError(t, db.First(&reloaded, "id = ?", payment.ID).Error)
	assert.Equal(t, models.TransferStatusCancelled, reloaded.Status)

	items, err := carts.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestPaymentService_ConfirmCancelledRejected(t *testing.T) {
	t.Parallel()

	db, _, payments := paymentEnvForTest(t, time.Minute)
	ctx := context.Background()
	userID := uuid.New()
	payment := beginPaymentForTest(t, db, payments, userID)

	require.NoError(t, payments.CancelForOrder(ctx, payment.OrderID))

	_, err := payments.Confirm(ctx, userID, payment.ID)
	assert.ErrorIs(t, err, ErrPaymentClosed)
}

func TestPaymentService_RearmCompletesOverduePayments(t *testing.T) {
	t.Parallel()

	db, carts, payments := paymentEnvForTest(t, time.Minute)
	ctx := context.Background()
	userID := uuid.New()

	product := seedProduct(t, db, "Foam Roller", 210000)
	require.NoError(t, carts.AddItem(ctx, userID, product, 1))

	order := seedOrder(t, db, userID, models.OrderStatusPending, models.PaymentStatusUnpaid)
	overdue := models.BankTransferPayment{
		OrderID:   order.ID,
		UserID:    userID,
		Amount:    order.TotalAmount,
		Reference: order.OrderNumber,
		Status:    models.TransferStatusAwaiting,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, db.Create(&overdue).Error)

	require.NoError(t, payments.Rearm(ctx))

	var reloaded models.BankTransferPayment
	require.NoError(t, db.First(&reloaded, "id = ?", overdue.ID).Error)
	assert.Equal(t, models.TransferStatusConfirmed, reloaded.Status)

	items, err := carts.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPaymentService_RearmReschedulesFuturePayments(t *testing.T) {
	t.Parallel()

	db, _, payments := paymentEnvForTest(t, time.Minute)
	ctx := context.Background()

	order := seedOrder(t, db, uuid.New(), models.OrderStatusPending, models.PaymentStatusUnpaid)
	future := models.BankTransferPayment{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Amount:    order.TotalAmount,
		Reference: order.OrderNumber,
		Status:    models.TransferStatusAwaiting,
		ExpiresAt: time.Now().Add(50 * time.Millisecond),
	}
	require.NoError(t, db.Create(&future).Error)

	require.NoError(t, payments.Rearm(ctx))

	require.Eventually(t, func() bool {
		var reloaded models.BankTransferPayment
		if err := db.First(&reloaded, "id = ?", future.ID).Error; err != nil {
			return false
		}
		return reloaded.Status == models.TransferStatusConfirmed
	}, time.Second, 5*time.Millisecond)
}
