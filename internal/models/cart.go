package models

import "github.com/google/uuid"

// CartItem is one cart line: a product snapshot with quantity and a
// selection flag marking whether the line participates in checkout.
// Quantity is always >= 1; dropping to zero removes the row.
type CartItem struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index:idx_cart_user_product,unique" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;index:idx_cart_user_product,unique" json:"product_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	Selected  bool      `json:"selected"`
}

// LineTotal returns unit price times quantity.
func (i CartItem) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}
