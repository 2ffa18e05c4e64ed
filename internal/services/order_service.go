package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fitzone/internal/models"
)

var (
	// ErrOrderNotFound is returned when the order does not exist for the caller.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderNotCancellable is returned when cancellation is requested
	// outside pending/confirmed or after payment.
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
	// ErrInvalidTransition is returned for a status change the state machine forbids.
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// orderTransitions is the allowed status graph. delivered and cancelled
// are terminal.
var orderTransitions = map[string][]string{
	models.OrderStatusPending:    {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed:  {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
}

// CanTransition reports whether the status change is allowed.
func CanTransition(from, to string) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// OrderService reads and advances persisted orders.
type OrderService struct {
	db       *gorm.DB
	payments *PaymentService
	events   *EventProducer
}

func NewOrderService(db *gorm.DB, payments *PaymentService, events *EventProducer) *OrderService {
	return &OrderService{db: db, payments: payments, events: events}
}

// ListForUser returns the member's orders, newest first, optionally
// filtered by status.
func (s *OrderService) ListForUser(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("placed_at desc").
		Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// GetForUser returns one order owned by the member.
func (s *OrderService) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Cancel lets the owner cancel a still-cancellable order. Any awaiting
// bank transfer payment is closed with its timer stopped, no completion
// side effects.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Cancellable() {
		return nil, ErrOrderNotCancellable
	}

	result := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status IN ? AND payment_status <> ?",
			orderID,
			[]string{models.OrderStatusPending, models.OrderStatusConfirmed},
			models.PaymentStatusPaid).
		Update("status", models.OrderStatusCancelled)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrOrderNotCancellable
	}

	if err := s.payments.CancelForOrder(ctx, orderID); err != nil {
		log.Printf("[Order] closing payment for cancelled order %s failed: %v", order.OrderNumber, err)
	}

	order.Status = models.OrderStatusCancelled
	s.publishStatusChange(ctx, order)
	return order, nil
}

// ListAll returns all orders for administrators.
func (s *OrderService) ListAll(ctx context.Context, status string, limit, offset int) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("User").
		Order("placed_at desc").
		Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateStatus performs an administrative status transition.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus string) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if !CanTransition(order.Status, newStatus) {
		return nil, ErrInvalidTransition
	}
	if newStatus == models.OrderStatusCancelled && order.PaymentStatus == models.PaymentStatusPaid {
		return nil, ErrOrderNotCancellable
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", newStatus).Error; err != nil {
		return nil, err
	}

	if newStatus == models.OrderStatusCancelled {
		if err := s.payments.CancelForOrder(ctx, orderID); err != nil {
			log.Printf("[Order] closing payment for cancelled order %s failed: %v", order.OrderNumber, err)
		}
	}

	order.Status = newStatus
	s.publishStatusChange(ctx, &order)
	return &order, nil
}

// UpdatePaymentStatus records an administrative payment-status change.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, paymentStatus string) (*models.Order, error) {
	if paymentStatus != models.PaymentStatusPaid && paymentStatus != models.PaymentStatusUnpaid {
		return nil, ErrInvalidTransition
	}

	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_status", paymentStatus).Error; err != nil {
		return nil, err
	}

	order.PaymentStatus = paymentStatus
	return &order, nil
}

func (s *OrderService) publishStatusChange(ctx context.Context, order *models.Order) {
	if err := s.events.Publish(ctx, order.OrderNumber, OrderEvent{
		Type:        EventOrderStatusChanged,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		OccurredAt:  time.Now(),
	}); err != nil {
		log.Printf("[Order] event publish failed for %s: %v", order.OrderNumber, err)
	}
}
