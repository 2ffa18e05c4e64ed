package models

import (
	"time"

	"github.com/google/uuid"
)

// Bank transfer confirmation states. A payment enters awaiting_payment
// when its order is created and leaves it exactly once: either the member
// confirms the transfer explicitly or the countdown expires, both landing
// on confirmed. Cancelled is reached only when the order itself is cancelled.
const (
	TransferStatusAwaiting  = "awaiting_payment"
	TransferStatusConfirmed = "confirmed"
	TransferStatusCancelled = "cancelled"
)

// BankTransferPayment tracks the manual bank-transfer confirmation flow
// for a single order.
type BankTransferPayment struct {
	BaseModel
	OrderID     uuid.UUID  `gorm:"type:uuid;uniqueIndex" json:"order_id"`
	Order       *Order     `json:"order,omitempty"`
	UserID      uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	Amount      float64    `json:"amount"`
	Reference   string     `json:"reference"`
	Status      string     `json:"status"`
	ExpiresAt   time.Time  `json:"expires_at"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
}
