package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fitzone/internal/middleware"
	"github.com/example/fitzone/internal/models"
	"github.com/example/fitzone/internal/utils"
)

// GymHandler manages trainers, classes and class bookings.
type GymHandler struct {
	db *gorm.DB
}

// NewGymHandler constructs GymHandler.
func NewGymHandler(db *gorm.DB) *GymHandler {
	return &GymHandler{db: db}
}

// Trainers

func (h *GymHandler) ListTrainers(c *fiber.Ctx) error {
	var trainers []models.Trainer
	if err := h.db.Where("is_active = ?", true).Find(&trainers).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": trainers})
}

func (h *GymHandler) CreateTrainer(c *fiber.Ctx) error {
	var trainer models.Trainer
	if err := c.BodyParser(&trainer); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if trainer.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	if err := h.db.Create(&trainer).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": trainer})
}

func (h *GymHandler) UpdateTrainer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	var trainer models.Trainer
	if err := h.db.First(&trainer, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "trainer not found")
		}
		return err
	}
	if err := c.BodyParser(&trainer); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	trainer.ID = id
	if err := h.db.Save(&trainer).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": trainer})
}

func (h *GymHandler) DeleteTrainer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Delete(&models.Trainer{}, "id = ?", id).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Classes

func (h *GymHandler) ListClasses(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	query := h.db.Model(&models.GymClass{}).Where("is_active = ?", true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var classes []models.GymClass
	if err := query.Preload("Trainer").
		Order("weekday asc, start_time asc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&classes).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": classes, "pagination": fiber.Map{
		"current_page":   pg.Page,
		"items_per_page": pg.Limit,
		"total_items":    total,
	}})
}

func (h *GymHandler) CreateClass(c *fiber.Ctx) error {
	var class models.GymClass
	if err := c.BodyParser(&class); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if class.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	if class.Capacity <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "capacity must be positive")
	}
	if err := h.db.Create(&class).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": class})
}

func (h *GymHandler) UpdateClass(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	var class models.GymClass
	if err := h.db.First(&class, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "class not found")
		}
		return err
	}
	if err := c.BodyParser(&class); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	class.ID = id
	if err := h.db.Save(&class).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": class})
}

func (h *GymHandler) DeleteClass(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Delete(&models.GymClass{}, "id = ?", id).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Bookings

// BookClass reserves a spot for the member, enforcing class capacity.
func (h *GymHandler) BookClass(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	classID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var booking models.ClassBooking
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var class models.GymClass
		if err := tx.First(&class, "id = ? AND is_active = ?", classID, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "class not found")
			}
			return err
		}

		var booked int64
		if err := tx.Model(&models.ClassBooking{}).
			Where("class_id = ? AND status = ?", classID, "booked").
			Count(&booked).Error; err != nil {
			return err
		}
		if booked >= int64(class.Capacity) {
			return fiber.NewError(fiber.StatusConflict, "class is full")
		}

		booking = models.ClassBooking{
			UserID:   userID,
			ClassID:  classID,
			Status:   "booked",
			BookedAt: time.Now(),
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": booking})
}

// ListMyBookings returns the member's class bookings.
func (h *GymHandler) ListMyBookings(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var bookings []models.ClassBooking
	if err := h.db.Preload("Class").
		Where("user_id = ?", userID).
		Order("booked_at desc").
		Find(&bookings).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": bookings})
}

// CancelBooking releases the member's spot.
func (h *GymHandler) CancelBooking(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.ClassBooking{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "booking cancelled"})
}
