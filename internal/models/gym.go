package models

import (
	"time"

	"github.com/google/uuid"
)

type Trainer struct {
	BaseModel
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Photo     string `json:"photo"`
	Bio       string `json:"bio"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`
}

// GymClass is a recurring scheduled class led by a trainer.
type GymClass struct {
	BaseModel
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	TrainerID       *uuid.UUID `gorm:"type:uuid" json:"trainer_id"`
	Trainer         *Trainer   `json:"trainer,omitempty"`
	Weekday         int        `json:"weekday"`
	StartTime       string     `json:"start_time"`
	DurationMinutes int        `json:"duration_minutes"`
	Capacity        int        `json:"capacity"`
	Price           float64    `json:"price"`
	IsActive        bool       `gorm:"default:true" json:"is_active"`
}

// ClassBooking reserves a member's spot in a class.
type ClassBooking struct {
	BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;index:idx_booking_user_class,unique" json:"user_id"`
	ClassID  uuid.UUID `gorm:"type:uuid;index:idx_booking_user_class,unique" json:"class_id"`
	Class    *GymClass `json:"class,omitempty"`
	Status   string    `gorm:"default:booked" json:"status"`
	BookedAt time.Time `json:"booked_at"`
}
