package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fitzone/internal/config"
	"github.com/example/fitzone/internal/middleware"
	"github.com/example/fitzone/internal/models"
	"github.com/example/fitzone/internal/services"
	"github.com/example/fitzone/internal/utils"
)

// OrderHandler manages order creation and the member's order history.
type OrderHandler struct {
	db       *gorm.DB
	checkout *services.CheckoutService
	orders   *services.OrderService
	cfg      *config.Config
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, checkout *services.CheckoutService, orders *services.OrderService, cfg *config.Config) *OrderHandler {
	return &OrderHandler{db: db, checkout: checkout, orders: orders, cfg: cfg}
}

// CreateOrder submits the selected cart lines as an order. Bank transfer
// orders additionally return the transfer instructions and countdown deadline.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req services.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if key := c.Get("Idempotency-Key"); key != "" {
		req.IdempotencyKey = key
	}

	order, payment, err := h.checkout.CreateOrder(c.Context(), userID, req)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"success": false,
				"message": "validation failed",
				"errors":  verr.Fields,
			})
		}
		if errors.Is(err, services.ErrEmptySelection) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if isVoucherRejection(err) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	data := fiber.Map{
		"id":             order.ID,
		"order_number":   order.OrderNumber,
		"status":         order.Status,
		"placed_at":      order.PlacedAt,
		"total_amount":   order.TotalAmount,
		"payment_method": order.PaymentMethod,
	}

	if payment != nil {
		data["payment"] = fiber.Map{
			"id":         payment.ID,
			"status":     payment.Status,
			"amount":     payment.Amount,
			"reference":  payment.Reference,
			"expires_at": payment.ExpiresAt,
			"bank": fiber.Map{
				"name":           h.cfg.BankName,
				"account_number": h.cfg.BankAccountNumber,
				"account_name":   h.cfg.BankAccountName,
			},
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}

// ListMyOrders returns the member's orders with optional status filter.
func (h *OrderHandler) ListMyOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	orders, total, err := h.orders.ListForUser(c.Context(), userID, c.Query("status"), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetMyOrder returns a single order owned by the member.
func (h *OrderHandler) GetMyOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.orders.GetForUser(c.Context(), userID, id)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// CancelMyOrder cancels a still-cancellable order owned by the member.
func (h *OrderHandler) CancelMyOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.orders.Cancel(c.Context(), userID, id)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		if errors.Is(err, services.ErrOrderNotCancellable) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// Admin endpoints

// ListOrders returns all orders for administrators.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	orders, total, err := h.orders.ListAll(c.Context(), c.Query("status"), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus performs an administrative status transition.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.orders.UpdateStatus(c.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		if errors.Is(err, services.ErrInvalidTransition) || errors.Is(err, services.ErrOrderNotCancellable) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type updatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
}

// UpdatePaymentStatus records an administrative payment-status change.
func (h *OrderHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updatePaymentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.PaymentStatus != models.PaymentStatusPaid && req.PaymentStatus != models.PaymentStatusUnpaid {
		return fiber.NewError(fiber.StatusBadRequest, "payment_status must be paid or unpaid")
	}

	order, err := h.orders.UpdatePaymentStatus(c.Context(), id, req.PaymentStatus)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}
