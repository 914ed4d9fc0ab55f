package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/yeremiapane/restaurant-booking/database"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

// CartLine is one line of a checkout request.
type CartLine struct {
	MenuItemID uint   `json:"menuItemId" validate:"required"`
	Variant    string `json:"variant"`
	Quantity   int    `json:"quantity" validate:"min=1,max=50"`
}

type CheckoutRequest struct {
	UserID        *uint
	Lines         []CartLine
	Customer      models.CustomerInfo
	PaymentMethod string
}

// StatusUpdate changes an order. Nil fields are left untouched.
type StatusUpdate struct {
	Status           *string
	PaymentStatus    *string
	PaymentReference *string
}

type OrderService struct {
	store *database.Gateway
	now   func() time.Time
}

func NewOrderService(store *database.Gateway) *OrderService {
	return &OrderService{store: store, now: time.Now}
}

// Checkout prices every cart line from the menu store and persists the
// order with payment pending.
func (s *OrderService) Checkout(ctx context.Context, req CheckoutRequest) (*models.Order, error) {
	if len(req.Lines) == 0 {
		return nil, utils.NewValidationError("items", "cart is empty")
	}

	db, err := s.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:        req.UserID,
		CustomerInfo:  req.Customer,
		PaymentMethod: req.PaymentMethod,
		Status:        models.OrderPending,
		PaymentStatus: models.PaymentPending,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		items := make([]models.OrderItem, 0, len(req.Lines))
		for i, line := range req.Lines {
			field := fmt.Sprintf("items[%d]", i)
			if line.Quantity < 1 {
				return utils.NewValidationError(field+".quantity", "quantity must be at least 1")
			}

			var menuItem models.MenuItem
			if err := tx.First(&menuItem, line.MenuItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return utils.NewValidationError(field+".menuItemId", fmt.Sprintf("menu item %d does not exist", line.MenuItemID))
				}
				return err
			}
			if !menuItem.IsAvailable {
				return utils.NewValidationError(field+".menuItemId", fmt.Sprintf("%s is currently unavailable", menuItem.Name))
			}

			price, ok := menuItem.PriceFor(line.Variant)
			if !ok {
				return utils.NewValidationError(field+".variant", fmt.Sprintf("%s has no variant %q", menuItem.Name, line.Variant))
			}

			items = append(items, models.OrderItem{
				MenuItemID: menuItem.ID,
				Name:       menuItem.Name,
				Variant:    line.Variant,
				Quantity:   line.Quantity,
				Price:      price,
			})
		}

		order.Items = items
		order.Total = roundCents(models.Subtotal(items))
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Order %d placed (%d lines, total=%.2f)", order.ID, len(order.Items), order.Total)
	return order, nil
}

// UpdateStatus applies an admin change to an order. Marking an order paid
// stamps PaidAt.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, upd StatusUpdate) (*models.Order, error) {
	db, err := s.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	var order models.Order
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFound("order")
			}
			return err
		}

		if upd.Status != nil {
			order.Status = *upd.Status
		}
		if upd.PaymentReference != nil {
			order.PaymentReference = *upd.PaymentReference
		}
		if upd.PaymentStatus != nil && *upd.PaymentStatus != order.PaymentStatus {
			order.PaymentStatus = *upd.PaymentStatus
			if order.PaymentStatus == models.PaymentPaid {
				paidAt := s.now()
				order.PaidAt = &paidAt
			}
		}
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
