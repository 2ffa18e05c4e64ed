package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fitzone/internal/models"
)

var (
	// ErrPaymentNotFound is returned when no payment exists for the caller.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrPaymentClosed is returned when confirming a cancelled payment.
	ErrPaymentClosed = errors.New("payment is no longer open")
)

// PaymentService runs the bank-transfer confirmation flow. Each awaiting
// payment owns a single cancellable timer; explicit confirmation and
// natural expiry share one completion path, and completion happens at most
// once per payment regardless of which path wins.
type PaymentService struct {
	db       *gorm.DB
	carts    *CartService
	events   *EventProducer
	telegram *TelegramService
	window   time.Duration

	mu     sync.Mutex
	timers map[uuid.UUID]*time.Timer
}

func NewPaymentService(db *gorm.DB, carts *CartService, events *EventProducer, telegram *TelegramService, window time.Duration) *PaymentService {
	return &PaymentService{
		db:       db,
		carts:    carts,
		events:   events,
		telegram: telegram,
		window:   window,
		timers:   map[uuid.UUID]*time.Timer{},
	}
}

// Begin opens an awaiting_payment record for a freshly created bank
// transfer order and arms its countdown.
func (s *PaymentService) Begin(ctx context.Context, order *models.Order) (*models.BankTransferPayment, error) {
	payment := models.BankTransferPayment{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Amount:    order.TotalAmount,
		Reference: order.OrderNumber,
		Status:    models.TransferStatusAwaiting,
		ExpiresAt: time.Now().Add(s.window),
	}

	if err := s.db.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, err
	}

	s.schedule(payment.ID, s.window)
	return &payment, nil
}

// Get returns a payment owned by the given member.
func (s *PaymentService) Get(ctx context.Context, userID, paymentID uuid.UUID) (*models.BankTransferPayment, error) {
	var payment models.BankTransferPayment
	err := s.db.WithContext(ctx).
		Preload("Order").
		Where("id = ? AND user_id = ?", paymentID, userID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// GetByOrder returns the payment attached to an order, if any.
func (s *PaymentService) GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.BankTransferPayment, error) {
	var payment models.BankTransferPayment
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// Confirm is the explicit "I have transferred" path. Confirming an
// already-confirmed payment is a no-op returning current state.
func (s *PaymentService) Confirm(ctx context.Context, userID, paymentID uuid.UUID) (*models.BankTransferPayment, error) {
	payment, err := s.Get(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}

	if payment.Status == models.TransferStatusCancelled {
		return nil, ErrPaymentClosed
	}

	if payment.Status == models.TransferStatusAwaiting {
		if err := s.complete(ctx, payment.ID); err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, userID, paymentID)
}

// CancelForOrder closes an awaiting payment without running completion
// side effects, used when the order itself is cancelled.
func (s *PaymentService) CancelForOrder(ctx context.Context, orderID uuid.UUID) error {
	var payment models.BankTransferPayment
	err := s.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, models.TransferStatusAwaiting).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	s.stopTimer(payment.ID)

	return s.db.WithContext(ctx).
		Model(&models.BankTransferPayment{}).
		Where("id = ? AND status = ?", payment.ID, models.TransferStatusAwaiting).
		Update("status", models.TransferStatusCancelled).Error
}

// Rearm reloads awaiting payments after a restart: overdue ones complete
// immediately, the rest get their countdown rescheduled.
func (s *PaymentService) Rearm(ctx context.Context) error {
	var pending []models.BankTransferPayment
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.TransferStatusAwaiting).
		Find(&pending).Error; err != nil {
		return err
	}

	now := time.Now()
	for _, payment := range pending {
		remaining := payment.ExpiresAt.Sub(now)
		if remaining <= 0 {
			if err := s.complete(ctx, payment.ID); err != nil {
				log.Printf("[Payment] overdue completion failed for %s: %v", payment.ID, err)
			}
			continue
		}
		s.schedule(payment.ID, remaining)
	}

	return nil
}

// Shutdown stops every armed timer without side effects.
func (s *PaymentService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

func (s *PaymentService) schedule(paymentID uuid.UUID, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.timers[paymentID]; exists {
		return
	}
	s.timers[paymentID] = time.AfterFunc(d, func() {
		if err := s.complete(context.Background(), paymentID); err != nil {
			log.Printf("[Payment] countdown completion failed for %s: %v", paymentID, err)
		}
	})
}

func (s *PaymentService) stopTimer(paymentID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[paymentID]; ok {
		timer.Stop()
		delete(s.timers, paymentID)
	}
}

// complete runs the shared completion path: flip awaiting -> confirmed
// exactly once, clear the member's selected cart lines, and notify. The
// guarded update makes the explicit and timer paths race-safe.
func (s *PaymentService) complete(ctx context.Context, paymentID uuid.UUID) error {
	now := time.Now()
	result := s.db.WithContext(ctx).
		Model(&models.BankTransferPayment{}).
		Where("id = ? AND status = ?", paymentID, models.TransferStatusAwaiting).
		Updates(map[string]any{
			"status":       models.TransferStatusConfirmed,
			"confirmed_at": &now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return nil
	}

	s.stopTimer(paymentID)

	var payment models.BankTransferPayment
	if err := s.db.WithContext(ctx).First(&payment, "id = ?", paymentID).Error; err != nil {
		return err
	}

	if err := s.carts.ClearSelected(ctx, payment.UserID); err != nil {
		log.Printf("[Payment] clearing selected cart lines failed for user %s: %v", payment.UserID, err)
	}

	if err := s.events.Publish(ctx, payment.Reference, OrderEvent{
		Type:        EventPaymentConfirmed,
		OrderID:     payment.OrderID,
		OrderNumber: payment.Reference,
		UserID:      payment.UserID,
		TotalAmount: payment.Amount,
		OccurredAt:  now,
	}); err != nil {
		log.Printf("[Payment] event publish failed for %s: %v", payment.Reference, err)
	}

	if s.telegram != nil {
		go func() {
			if err := s.telegram.NotifyPaymentConfirmed(PaymentNotification{
				OrderNumber: payment.Reference,
				Amount:      payment.Amount,
			}); err != nil {
				log.Printf("[Payment] telegram notification failed for %s: %v", payment.Reference, err)
			}
		}()
	}

	return nil
}
