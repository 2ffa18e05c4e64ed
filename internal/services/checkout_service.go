package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fitzone/internal/models"
)

// Shipping fee policy: flat fee unless the selected subtotal clears the
// free-shipping threshold.
const (
	FreeShippingThreshold = 500000.0
	FlatShippingFee       = 30000.0
)

// ErrEmptySelection is returned when checkout is attempted with no cart
// lines selected; the client redirects back to the cart.
var ErrEmptySelection = errors.New("no cart items selected for checkout")

var phonePattern = regexp.MustCompile(`^[0-9]{10,11}$`)

// ShippingFee returns the fee for the given selected subtotal.
func ShippingFee(selectedSubtotal float64) float64 {
	if selectedSubtotal > FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

// ShippingForm carries the recipient details collected at checkout.
type ShippingForm struct {
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	AddressLine   string `json:"address_line"`
	Ward          string `json:"ward"`
	District      string `json:"district"`
	City          string `json:"city"`
}

// ValidationError carries field-scoped messages; nothing is persisted
// while it is non-nil.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "checkout validation failed"
}

// Validate checks the form and returns field-scoped errors, or nil.
func (f ShippingForm) Validate() *ValidationError {
	fields := map[string]string{}

	if strings.TrimSpace(f.RecipientName) == "" {
		fields["recipient_name"] = "recipient name is required"
	}
	phone := strings.Join(strings.Fields(f.Phone), "")
	if !phonePattern.MatchString(phone) {
		fields["phone"] = "phone must be 10-11 digits"
	}
	if strings.TrimSpace(f.AddressLine) == "" {
		fields["address_line"] = "address is required"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// CheckoutRequest is the full order submission.
type CheckoutRequest struct {
	ShippingForm
	PaymentMethod  string `json:"payment_method"`
	VoucherCode    string `json:"voucher_code"`
	Notes          string `json:"notes"`
	IdempotencyKey string `json:"idempotency_key"`
}

// CheckoutService turns the selected cart lines, shipping form and an
// optional voucher into a persisted order, then branches per payment method.
type CheckoutService struct {
	db       *gorm.DB
	carts    *CartService
	vouchers *VoucherService
	payments *PaymentService
	events   *EventProducer
	telegram *TelegramService
}

func NewCheckoutService(db *gorm.DB, carts *CartService, vouchers *VoucherService, payments *PaymentService, events *EventProducer, telegram *TelegramService) *CheckoutService {
	return &CheckoutService{
		db:       db,
		carts:    carts,
		vouchers: vouchers,
		payments: payments,
		events:   events,
		telegram: telegram,
	}
}

// CreateOrder validates and submits the order. For COD orders the selected
// cart lines are cleared immediately; for bank transfers a payment record
// is opened and the countdown started, and the cart is cleared when the
// confirmation flow completes. Submissions carrying an idempotency key are
// replay-safe: a repeated key returns the already-created order.
func (s *CheckoutService) CreateOrder(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*models.Order, *models.BankTransferPayment, error) {
	if req.IdempotencyKey != "" {
		var existing models.Order
		err := s.db.WithContext(ctx).
			Preload("Items").
			Where("user_id = ? AND idempotency_key = ?", userID, req.IdempotencyKey).
			First(&existing).Error
		if err == nil {
			payment, _ := s.payments.GetByOrder(ctx, existing.ID)
			return &existing, payment, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
	}

	if verr := req.ShippingForm.Validate(); verr != nil {
		return nil, nil, verr
	}
	if req.PaymentMethod != models.PaymentMethodCOD && req.PaymentMethod != models.PaymentMethodBankTransfer {
		return nil, nil, &ValidationError{Fields: map[string]string{
			"payment_method": "payment method must be COD or BANK_TRANSFER",
		}}
	}

	selected, err := s.carts.SelectedItems(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(selected) == 0 {
		return nil, nil, ErrEmptySelection
	}

	var subtotal float64
	for _, line := range selected {
		subtotal += line.LineTotal()
	}

	shippingFee := ShippingFee(subtotal)
	orderValue := subtotal + shippingFee

	var applied *AppliedVoucher
	if req.VoucherCode != "" {
		applied, err = s.vouchers.Apply(ctx, req.VoucherCode, orderValue)
		if err != nil {
			return nil, nil, err
		}
	}

	var discount float64
	var voucherCode string
	if applied != nil {
		discount = applied.DiscountAmount
		voucherCode = applied.VoucherCode
	}

	total := orderValue - discount
	if total < 0 {
		total = 0
	}

	order := models.Order{
		UserID:         userID,
		OrderNumber:    generateOrderNumber(),
		Status:         models.OrderStatusPending,
		PaymentStatus:  models.PaymentStatusUnpaid,
		PaymentMethod:  req.PaymentMethod,
		PlacedAt:       time.Now(),
		RecipientName:  strings.TrimSpace(req.RecipientName),
		Phone:          strings.Join(strings.Fields(req.Phone), ""),
		AddressLine:    strings.TrimSpace(req.AddressLine),
		Ward:           req.Ward,
		District:       req.District,
		City:           req.City,
		Subtotal:       subtotal,
		ShippingFee:    shippingFee,
		DiscountAmount: discount,
		VoucherCode:    voucherCode,
		TotalAmount:    total,
		Notes:          req.Notes,
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		order.IdempotencyKey = &key
	}

	for _, line := range selected {
		productID := line.ProductID
		order.Items = append(order.Items, models.OrderItem{
			ProductID: &productID,
			Name:      line.Name,
			Image:     line.Image,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal(),
		})
	}

	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, nil, err
	}

	// Usage is counted only after the consuming order exists, so abandoned
	// checkouts never burn a use. A failed increment is logged, not rolled back.
	if applied != nil {
		if err := s.vouchers.Use(ctx, applied.VoucherID); err != nil {
			log.Printf("[Checkout] voucher %s usage increment failed for order %s: %v",
				applied.VoucherCode, order.OrderNumber, err)
		}
	}

	var payment *models.BankTransferPayment
	if req.PaymentMethod == models.PaymentMethodBankTransfer {
		payment, err = s.payments.Begin(ctx, &order)
		if err != nil {
			return nil, nil, err
		}
	} else {
		if err := s.carts.ClearSelected(ctx, userID); err != nil {
			return nil, nil, err
		}
	}

	go s.notifyOrderCreated(order)

	return &order, payment, nil
}

func (s *CheckoutService) notifyOrderCreated(order models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.events.Publish(ctx, order.OrderNumber, OrderEvent{
		Type:        EventOrderCreated,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		OccurredAt:  time.Now(),
	}); err != nil {
		log.Printf("[Checkout] order event publish failed for %s: %v", order.OrderNumber, err)
	}

	if s.telegram != nil {
		items := make([]OrderItemNotification, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, OrderItemNotification{
				Name:     item.Name,
				Quantity: item.Quantity,
				Price:    item.UnitPrice,
			})
		}
		if err := s.telegram.NotifyNewOrder(OrderNotification{
			OrderNumber:   order.OrderNumber,
			Items:         items,
			TotalAmount:   order.TotalAmount,
			RecipientName: order.RecipientName,
			Phone:         order.Phone,
			PaymentMethod: order.PaymentMethod,
		}); err != nil {
			log.Printf("[Checkout] telegram notification failed for %s: %v", order.OrderNumber, err)
		}
	}
}

func generateOrderNumber() string {
	return fmt.Sprintf("FZ-%09d", time.Now().UnixNano()%1000000000)
}
