package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fitzone/internal/models"
)

var (
	// ErrCartItemNotFound is returned when a cart line does not exist for the user.
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartService owns the per-member cart: line items plus their selection
// flags. Every mutation is written through to the database immediately.
type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// CartSummary aggregates the cart with totals recomputed from current lines.
type CartSummary struct {
	Items              []models.CartItem `json:"items"`
	Subtotal           float64           `json:"subtotal"`
	TotalItems         int               `json:"total_items"`
	SelectedSubtotal   float64           `json:"selected_subtotal"`
	SelectedTotalItems int               `json:"selected_total_items"`
}

// GetCart loads all cart lines for the user.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&items).Error
	return items, err
}

// Summary recomputes cart aggregates from the stored lines. Values are
// always derived fresh, never cached.
func (s *CartService) Summary(ctx context.Context, userID uuid.UUID) (*CartSummary, error) {
	items, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &CartSummary{Items: items}
	for _, item := range items {
		summary.Subtotal += item.LineTotal()
		summary.TotalItems += item.Quantity
		if item.Selected {
			summary.SelectedSubtotal += item.LineTotal()
			summary.SelectedTotalItems += item.Quantity
		}
	}

	return summary, nil
}

// SelectedItems returns only the lines marked for checkout.
func (s *CartService) SelectedItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND selected = ?", userID, true).
		Order("created_at asc").
		Find(&items).Error
	return items, err
}

// AddItem merges the product into an existing line (summing quantities) or
// inserts a new selected line. Non-positive quantities are a no-op.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, product models.Product, qty int) error {
	if qty <= 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.CartItem
		err := tx.Where("user_id = ? AND product_id = ?", userID, product.ID).First(&existing).Error
		if err == nil {
			return tx.Model(&existing).
				Update("quantity", existing.Quantity+qty).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		item := models.CartItem{
			UserID:    userID,
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			UnitPrice: product.Price,
			Quantity:  qty,
			Selected:  true,
		}
		return tx.Create(&item).Error
	})
}

// RemoveItem deletes a cart line; its selection entry goes with it.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{}).Error
}

// UpdateQuantity sets the line quantity. A quantity of zero or less
// behaves exactly as RemoveItem.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	result := s.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", qty)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// ToggleSelect flips the selection flag on one line without touching quantities.
func (s *CartService) ToggleSelect(ctx context.Context, userID, productID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("selected", gorm.Expr("NOT selected"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// SelectAll marks every line for checkout.
func (s *CartService) SelectAll(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ?", userID).
		Update("selected", true).Error
}

// DeselectAll clears the selection set.
func (s *CartService) DeselectAll(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ?", userID).
		Update("selected", false).Error
}

// ClearCart empties the cart entirely.
func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}

// ClearSelected removes only the selected lines, leaving unselected ones untouched.
func (s *CartService) ClearSelected(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND selected = ?", userID, true).
		Delete(&models.CartItem{}).Error
}
