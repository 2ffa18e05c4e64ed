package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fitzone/internal/models"
)

// Voucher rejection reasons, surfaced to the member as-is.
var (
	ErrVoucherNotFound  = errors.New("voucher code not found")
	ErrVoucherInactive  = errors.New("voucher is no longer active")
	ErrVoucherNotYet    = errors.New("voucher is not valid yet")
	ErrVoucherExpired   = errors.New("voucher has expired")
	ErrVoucherMinOrder  = errors.New("order value is below the voucher minimum")
	ErrVoucherExhausted = errors.New("voucher usage limit reached")
)

// VoucherService validates discount codes and applies them to order values.
type VoucherService struct {
	db *gorm.DB
}

func NewVoucherService(db *gorm.DB) *VoucherService {
	return &VoucherService{db: db}
}

// AppliedVoucher is the result of a successful application.
type AppliedVoucher struct {
	VoucherID      uuid.UUID `json:"voucher_id"`
	VoucherCode    string    `json:"voucher_code"`
	DiscountAmount float64   `json:"discount_amount"`
	FinalAmount    float64   `json:"final_amount"`
}

// NormalizeCode upper-cases and trims a voucher code before lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Apply validates the code against the given pre-discount order value and
// computes the discount. It never mutates the voucher; usage is counted
// separately via Use once the consuming order exists.
func (s *VoucherService) Apply(ctx context.Context, code string, orderValue float64) (*AppliedVoucher, error) {
	var voucher models.Voucher
	err := s.db.WithContext(ctx).
		Where("code = ?", NormalizeCode(code)).
		First(&voucher).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, err
	}

	if !voucher.IsActive {
		return nil, ErrVoucherInactive
	}

	now := time.Now()
	if now.Before(voucher.ValidFrom) {
		return nil, ErrVoucherNotYet
	}
	if now.After(voucher.ValidUntil) {
		return nil, ErrVoucherExpired
	}
	if orderValue < voucher.MinOrderValue {
		return nil, ErrVoucherMinOrder
	}
	if voucher.UsageLimit != nil && voucher.UsedCount >= *voucher.UsageLimit {
		return nil, ErrVoucherExhausted
	}

	discount := computeDiscount(voucher, orderValue)

	return &AppliedVoucher{
		VoucherID:      voucher.ID,
		VoucherCode:    voucher.Code,
		DiscountAmount: discount,
		FinalAmount:    orderValue - discount,
	}, nil
}

// Use atomically increments the voucher's used count, refusing once the
// usage limit is reached. Called after the consuming order is created;
// there is no compensating decrement for abandoned checkouts.
func (s *VoucherService) Use(ctx context.Context, voucherID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Model(&models.Voucher{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", voucherID).
		Update("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVoucherExhausted
	}
	return nil
}

func computeDiscount(voucher models.Voucher, orderValue float64) float64 {
	var discount float64
	switch voucher.DiscountType {
	case models.DiscountTypePercentage:
		discount = orderValue * voucher.DiscountValue / 100
		if voucher.MaxDiscount != nil && discount > *voucher.MaxDiscount {
			discount = *voucher.MaxDiscount
		}
	case models.DiscountTypeFixed:
		discount = voucher.DiscountValue
	}

	// The discount never exceeds the order value and is never negative.
	if discount > orderValue {
		discount = orderValue
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
