package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/fitzone/internal/models"
)

func TestVoucherService_ApplyFullPercentageDiscount(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewVoucherService(db)

	seedVoucher(t, db, models.Voucher{
		Code:          "FREE100",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 100,
		IsActive:      true,
	})

	applied, err := svc.Apply(context.Background(), "free100", 200000)
	require.NoError(t, err)
	assert.Equal(t, 200000.0, applied.DiscountAmount)
	assert.Equal(t, 0.0, applied.FinalAmount)
}

func TestVoucherService_PercentageCappedByMaxDiscount(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewVoucherService(db)

	maxDiscount := 50000.0
	seedVoucher(t, db, models.Voucher{
		Code:          "HALF",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 50,
		MaxDiscount:   &maxDiscount,
		IsActive:      true,
	})

	applied, err := svc.Apply(context.Background(), "HALF", 400000)
	require.NoError(t, err)
	assert.Equal(t, 50000.0, applied.DiscountAmount)
	assert.Equal(t, 350000.0, applied.FinalAmount)
}

func TestVoucherService_FixedDiscountNeverExceedsOrderValue(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewVoucherService(db)

	seedVoucher(t, db, models.Voucher{
		Code:          "BIGOFF",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 500000,
		IsActive:      true,
	})

	applied, err := svc.Apply(context.Background(), "BIGOFF", 120000)
	require.NoError(t, err)
	assert.Equal(t, 120000.0, applied.DiscountAmount)
	assert.Equal(t, 0.0, applied.FinalAmount)
}

func TestVoucherService_Rejections(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewVoucherService(db)
	ctx := context.Background()

	usageLimit := 1
	seedVoucher(t, db, models.Voucher{
		Code:          "MIN50",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 10000,
		MinOrderValue: 50000,
		IsActive:      true,
	})
	seedVoucher(t, db, models.Voucher{
		Code:          "SLEEPY",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 10000,
		IsActive:      false,
	})
	seedVoucher(t, db, models.Voucher{
		Code:          "EXPIRED",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 10000,
		ValidFrom:     time.Now().Add(-48 * time.Hour),
		ValidUntil:    time.Now().Add(-24 * time.Hour),
		IsActive:      true,
	})
	seedVoucher(t, db, models.Voucher{
		Code:          "USEDUP",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 10000,
		UsageLimit:    &usageLimit,
		UsedCount:     1,
		IsActive:      true,
	})

	_, err := svc.Apply(ctx, "NOPE", 100000)
	assert.ErrorIs(t, err, ErrVoucherNotFound)

	_, err = svc.Apply(ctx, "MIN50", 40000)
	assert.ErrorIs(t, err, ErrVoucherMinOrder)

	_, err = svc.Apply(ctx, "SLEEPY", 100000)
	assert.ErrorIs(t, err, ErrVoucherInactive)

	_, err = svc.Apply(ctx, "EXPIRED", 100000)
	assert.ErrorIs(t, err, ErrVoucherExpired)

	_, err = svc.Apply(ctx, "USEDUP", 100000)
	assert.ErrorIs(t, err, ErrVoucherExhausted)
}

func TestVoucherService_ApplyDoesNotConsumeUsage(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewVoucherService(db)
	ctx := context.Background()

	voucher := seedVoucher(t, db, models.Voucher{
		Code:          "KEEP",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 5000,
		IsActive:      true,
	})

	_, err := svc.Apply(ctx, "KEEP", 100000)
	require.NoError(t, err)

	var reloaded models.Voucher
	require.NoError(t, db.First(&reloaded, "id = ?", voucher.ID).Error)
	assert.Equal(t, 0, reloaded.UsedCount)
}

func TestVoucherService_UseStopsAtLimit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewVoucherService(db)
	ctx := context.Background()

	usageLimit := 2
	voucher := seedVoucher(t, db, models.Voucher{
		Code:          "TWICE",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 5000,
		UsageLimit:    &usageLimit,
		IsActive:      true,
	})

	require.NoError(t, svc.Use(ctx, voucher.ID))
	require.NoError(t, svc.Use(ctx, voucher.ID))
	assert.ErrorIs(t, svc.Use(ctx, voucher.ID), ErrVoucherExhausted)

	var reloaded models.Voucher
	require.NoError(t, db.First(&reloaded, "id = ?", voucher.ID).Error)
	assert.Equal(t, 2, reloaded.UsedCount)
}
