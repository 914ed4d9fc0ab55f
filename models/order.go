package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderPreparing = "preparing"
	OrderReady     = "ready"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
	PaymentExpired  = "expired"
)

type OrderItem struct {
	MenuItemID uint    `json:"menuItemId" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Variant    string  `json:"variant,omitempty"`
	Quantity   int     `json:"quantity" validate:"min=1,max=50"`
	Price      float64 `json:"price" validate:"gte=0"`
}

type CustomerInfo struct {
	Name    string `gorm:"type:varchar(255)" json:"name" validate:"max=255"`
	Email   string `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Phone   string `gorm:"type:varchar(32)" json:"phone" validate:"max=32"`
	Address string `gorm:"type:text" json:"address,omitempty"`
}

type Order struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	UserID           *uint        `gorm:"index" json:"userId,omitempty"`
	User             *User        `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-" validate:"-"`
	Items            []OrderItem  `gorm:"serializer:json;not null" json:"items" validate:"required,min=1,dive"`
	Total            float64      `gorm:"type:decimal(10,2);not null;default:0" json:"total" validate:"gte=0"`
	Status           string       `gorm:"type:varchar(20);not null;default:'pending';index" json:"status" validate:"required,oneof=pending confirmed preparing ready delivered cancelled"`
	PaymentStatus    string       `gorm:"type:varchar(20);not null;default:'pending';index" json:"paymentStatus" validate:"required,oneof=pending paid failed refunded expired"`
	PaymentMethod    string       `gorm:"type:varchar(20);not null;default:'cash'" json:"paymentMethod" validate:"required,oneof=cash card upi"`
	PaymentReference string       `gorm:"type:varchar(255)" json:"paymentReference,omitempty"`
	PaidAt           *time.Time   `json:"paidAt,omitempty"`
	CustomerInfo     CustomerInfo `gorm:"embedded;embeddedPrefix:customer_" json:"customerInfo"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

func (o *Order) BeforeSave(tx *gorm.DB) error {
	if o.Status == "" {
		o.Status = OrderPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = PaymentPending
	}
	if o.PaymentMethod == "" {
		o.PaymentMethod = "cash"
	}
	return validateRecord(o)
}

// Subtotal sums price * quantity over the order lines.
func Subtotal(items []OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
