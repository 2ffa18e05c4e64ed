package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. Happy path runs pending -> confirmed -> processing ->
// shipped -> delivered; cancelled is reachable from pending/confirmed only.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment statuses.
const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// Payment methods on the wire, submitted upper-case.
const (
	PaymentMethodCOD          = "COD"
	PaymentMethodBankTransfer = "BANK_TRANSFER"
)

type Order struct {
	BaseModel
	UserID         uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User           *User     `json:"user,omitempty"`
	OrderNumber    string    `gorm:"uniqueIndex" json:"order_number"`
	IdempotencyKey *string   `gorm:"uniqueIndex" json:"-"`
	Status         string    `json:"status"`
	PaymentStatus  string    `json:"payment_status"`
	PaymentMethod  string    `json:"payment_method"`
	PlacedAt       time.Time `json:"placed_at"`

	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	AddressLine   string `json:"address_line"`
	Ward          string `json:"ward"`
	District      string `json:"district"`
	City          string `json:"city"`

	Subtotal       float64 `json:"subtotal"`
	ShippingFee    float64 `json:"shipping_fee"`
	DiscountAmount float64 `json:"discount_amount"`
	VoucherCode    string  `json:"voucher_code,omitempty"`
	TotalAmount    float64 `json:"total_amount"`
	Notes          string  `json:"notes"`

	Items []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	Name      string     `json:"name"`
	Image     string     `json:"image"`
	UnitPrice float64    `json:"unit_price"`
	Quantity  int        `json:"quantity"`
	LineTotal float64    `json:"line_total"`
}

// Cancellable reports whether the owner may still cancel the order.
func (o Order) Cancellable() bool {
	if o.PaymentStatus == PaymentStatusPaid {
		return false
	}
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}
