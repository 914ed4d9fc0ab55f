package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Name                string     `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	Email               string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password            string     `gorm:"type:varchar(255);not null" json:"-" validate:"required"`
	Role                string     `gorm:"type:varchar(20);not null;default:'customer'" json:"role" validate:"required,oneof=customer admin"`
	Phone               string     `gorm:"type:varchar(32)" json:"phone"`
	Address             string     `gorm:"type:text" json:"address"`
	ResetTokenHash      *string    `gorm:"type:varchar(64);index" json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	return validateRecord(u)
}
