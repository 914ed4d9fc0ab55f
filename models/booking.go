package models

import (
	"time"

	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

const (
	BookingRequested = "requested"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// Now is the clock used for write-time checks.
var Now = time.Now

type Booking struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          *uint     `gorm:"index" json:"userId,omitempty"`
	User            *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-" validate:"-"`
	Name            string    `gorm:"type:varchar(255)" json:"name" validate:"max=255"`
	Email           string    `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Phone           string    `gorm:"type:varchar(32);not null" json:"phone" validate:"required,max=32"`
	Date            time.Time `gorm:"not null;index" json:"date" validate:"required"`
	Time            string    `gorm:"type:varchar(5);not null" json:"time" validate:"required,hhmm"`
	PartySize       int       `gorm:"not null" json:"partySize" validate:"required,min=1,max=20"`
	SpecialRequests string    `gorm:"type:text" json:"specialRequests,omitempty" validate:"max=1000"`
	Status          string    `gorm:"type:varchar(20);not null;default:'requested';index" json:"status" validate:"required,oneof=requested confirmed cancelled completed"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ValidateForCreate checks the record constraints plus the rule that a new
// booking cannot be dated before now.
func (b *Booking) ValidateForCreate(now time.Time) error {
	if b.Status == "" {
		b.Status = BookingRequested
	}
	if err := validateRecord(b); err != nil {
		return err
	}
	if b.Date.Before(now) {
		return utils.NewValidationError("date", "date must not be in the past")
	}
	return nil
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	return b.ValidateForCreate(Now())
}
