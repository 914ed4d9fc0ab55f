package models

import (
	"time"

	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

type MenuVariant struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gt=0"`
}

type MenuItem struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	Description string        `gorm:"type:text" json:"description"`
	Category    string        `gorm:"type:varchar(100);not null;index" json:"category" validate:"required,max=100"`
	Price       float64       `gorm:"type:decimal(10,2);not null;default:0" json:"price" validate:"gte=0"`
	Variants    []MenuVariant `gorm:"serializer:json" json:"variants,omitempty" validate:"omitempty,dive"`
	IsVeg       bool          `gorm:"not null;default:false" json:"isVeg"`
	IsAvailable bool          `gorm:"not null" json:"isAvailable"`
	SpiceLevel  int           `gorm:"not null;default:0" json:"spiceLevel" validate:"gte=0,lte=5"`
	Tags        []string      `gorm:"serializer:json" json:"tags,omitempty"`
	ImageURL    string        `gorm:"type:varchar(512)" json:"imageUrl,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func (m *MenuItem) BeforeSave(tx *gorm.DB) error {
	if err := validateRecord(m); err != nil {
		return err
	}
	if m.Price <= 0 && len(m.Variants) == 0 {
		return utils.NewValidationError("price", "price must be greater than 0 when no variants are given")
	}
	return nil
}

// PriceFor returns the unit price of the named variant, or the base price
// when variant is empty.
func (m *MenuItem) PriceFor(variant string) (float64, bool) {
	if variant == "" {
		if m.Price > 0 {
			return m.Price, true
		}
		if len(m.Variants) == 1 {
			return m.Variants[0].Price, true
		}
		return 0, false
	}
	for _, v := range m.Variants {
		if v.Name == variant {
			return v.Price, true
		}
	}
	return 0, false
}
