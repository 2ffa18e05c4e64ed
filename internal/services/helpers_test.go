package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/example/fitzone/internal/database"
	"github.com/example/fitzone/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64) models.Product {
	t.Helper()

	product := models.Product{
		Name:     name,
		Price:    price,
		Stock:    100,
		IsActive: true,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func seedVoucher(t *testing.T, db *gorm.DB, voucher models.Voucher) models.Voucher {
	t.Helper()

	if voucher.ValidFrom.IsZero() {
		voucher.ValidFrom = time.Now().Add(-time.Hour)
	}
	if voucher.ValidUntil.IsZero() {
		voucher.ValidUntil = time.Now().Add(time.Hour)
	}
	require.NoError(t, db.Create(&voucher).Error)
	return voucher
}

func validShippingForm() ShippingForm {
	return ShippingForm{
		RecipientName: "Tran Van An",
		Phone:         "0912345678",
		AddressLine:   "12 Nguyen Trai",
		District:      "Thanh Xuan",
		City:          "Hanoi",
	}
}

func checkoutEnvForTest(t *testing.T) (*gorm.DB, *CartService, *VoucherService, *PaymentService, *CheckoutService, uuid.UUID) {
	t.Helper()

	db := newTestDB(t)
	carts := NewCartService(db)
	vouchers := NewVoucherService(db)
	payments := NewPaymentService(db, carts, nil, nil, time.Minute)
	t.Cleanup(payments.Shutdown)
	checkout := NewCheckoutService(db, carts, vouchers, payments, nil, nil)

	return db, carts, vouchers, payments, checkout, uuid.New()
}
