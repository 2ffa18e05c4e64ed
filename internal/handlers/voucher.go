package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fitzone/internal/models"
	"github.com/example/fitzone/internal/services"
	"github.com/example/fitzone/internal/utils"
)

// VoucherHandler manages voucher application and admin CRUD.
type VoucherHandler struct {
	db       *gorm.DB
	vouchers *services.VoucherService
}

// NewVoucherHandler constructs VoucherHandler.
func NewVoucherHandler(db *gorm.DB, vouchers *services.VoucherService) *VoucherHandler {
	return &VoucherHandler{db: db, vouchers: vouchers}
}

type applyVoucherRequest struct {
	Code       string  `json:"code"`
	OrderValue float64 `json:"order_value"`
}

// Apply validates a voucher code against the given pre-discount order value.
// Rejections come back as a 400 with a single human-readable message.
func (h *VoucherHandler) Apply(c *fiber.Ctx) error {
	var req applyVoucherRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "code is required")
	}
	if req.OrderValue < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order value")
	}

	applied, err := h.vouchers.Apply(c.Context(), req.Code, req.OrderValue)
	if err != nil {
		if isVoucherRejection(err) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": applied})
}

// Use increments a voucher's usage counter. Issued by the checkout flow
// after the consuming order has been created.
func (h *VoucherHandler) Use(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.vouchers.Use(c.Context(), id); err != nil {
		if errors.Is(err, services.ErrVoucherExhausted) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}

func isVoucherRejection(err error) bool {
	return errors.Is(err, services.ErrVoucherNotFound) ||
		errors.Is(err, services.ErrVoucherInactive) ||
		errors.Is(err, services.ErrVoucherNotYet) ||
		errors.Is(err, services.ErrVoucherExpired) ||
		errors.Is(err, services.ErrVoucherMinOrder) ||
		errors.Is(err, services.ErrVoucherExhausted)
}

// Admin CRUD

func (h *VoucherHandler) List(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	var total int64
	if err := h.db.Model(&models.Voucher{}).Count(&total).Error; err != nil {
		return err
	}

	var vouchers []models.Voucher
	if err := h.db.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&vouchers).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": vouchers, "pagination": fiber.Map{
		"current_page":   pg.Page,
		"items_per_page": pg.Limit,
		"total_items":    total,
	}})
}

func (h *VoucherHandler) Create(c *fiber.Ctx) error {
	var voucher models.Voucher
	if err := c.BodyParser(&voucher); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	voucher.Code = services.NormalizeCode(voucher.Code)
	if voucher.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "code is required")
	}
	if voucher.DiscountType != models.DiscountTypePercentage && voucher.DiscountType != models.DiscountTypeFixed {
		return fiber.NewError(fiber.StatusBadRequest, "discount_type must be percentage or fixed")
	}
	if voucher.DiscountType == models.DiscountTypePercentage &&
		(voucher.DiscountValue < 0 || voucher.DiscountValue > 100) {
		return fiber.NewError(fiber.StatusBadRequest, "percentage discount must be between 0 and 100")
	}
	if voucher.DiscountValue < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "discount value must not be negative")
	}
	voucher.UsedCount = 0

	if err := h.db.Create(&voucher).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": voucher})
}

func (h *VoucherHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var voucher models.Voucher
	if err := h.db.First(&voucher, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "voucher not found")
		}
		return err
	}

	if err := c.BodyParser(&voucher); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	voucher.ID = id
	voucher.Code = services.NormalizeCode(voucher.Code)

	if err := h.db.Save(&voucher).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": voucher})
}

func (h *VoucherHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.Voucher{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
