package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/fitzone/internal/config"
	"github.com/example/fitzone/internal/middleware"
	"github.com/example/fitzone/internal/services"
)

// PaymentHandler exposes the bank-transfer confirmation flow.
type PaymentHandler struct {
	payments *services.PaymentService
	cfg      *config.Config
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *services.PaymentService, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{payments: payments, cfg: cfg}
}

// GetPayment returns the transfer details and countdown deadline for a
// pending payment owned by the member.
func (h *PaymentHandler) GetPayment(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	payment, err := h.payments.Get(c.Context(), userID, id)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "payment not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":           payment.ID,
			"order_id":     payment.OrderID,
			"status":       payment.Status,
			"amount":       payment.Amount,
			"reference":    payment.Reference,
			"expires_at":   payment.ExpiresAt,
			"confirmed_at": payment.ConfirmedAt,
			"bank": fiber.Map{
				"name":           h.cfg.BankName,
				"account_number": h.cfg.BankAccountNumber,
				"account_name":   h.cfg.BankAccountName,
			},
		},
	})
}

// ConfirmPayment is the explicit "I have transferred" action. The response
// carries everything the success view needs; the countdown expiring on its
// own produces the same state.
func (h *PaymentHandler) ConfirmPayment(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	payment, err := h.payments.Confirm(c.Context(), userID, id)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "payment not found")
		}
		if errors.Is(err, services.ErrPaymentClosed) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return err
	}

	data := fiber.Map{
		"id":           payment.ID,
		"order_id":     payment.OrderID,
		"status":       payment.Status,
		"amount":       payment.Amount,
		"order_number": payment.Reference,
		"confirmed_at": payment.ConfirmedAt,
	}
	if payment.Order != nil {
		data["payment_method"] = payment.Order.PaymentMethod
		data["total_amount"] = payment.Order.TotalAmount
	}

	return c.JSON(fiber.Map{"success": true, "data": data})
}
