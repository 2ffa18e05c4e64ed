package models

import "time"

// Voucher discount types.
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// Voucher is an admin-managed discount code. Codes are stored upper-case.
type Voucher struct {
	BaseModel
	Code          string     `gorm:"uniqueIndex" json:"code"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue float64    `json:"discount_value"`
	MaxDiscount   *float64   `json:"max_discount"`
	MinOrderValue float64    `json:"min_order_value"`
	UsageLimit    *int       `json:"usage_limit"`
	UsedCount     int        `json:"used_count"`
	ValidFrom     time.Time  `json:"valid_from"`
	ValidUntil    time.Time  `json:"valid_until"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
}
