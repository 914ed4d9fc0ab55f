package services

import (
	"context"
	"time"

	"github.com/yeremiapane/restaurant-booking/database"
	"github.com/yeremiapane/restaurant-booking/hub"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
)

// PaymentExpiryMonitor cancels orders whose payment stayed pending longer
// than Timeout.
type PaymentExpiryMonitor struct {
	Store    *database.Gateway
	Hub      *hub.Hub
	Timeout  time.Duration
	Interval time.Duration
	now      func() time.Time
}

func NewPaymentExpiryMonitor(store *database.Gateway, h *hub.Hub, timeout time.Duration) *PaymentExpiryMonitor {
	return &PaymentExpiryMonitor{
		Store:    store,
		Hub:      h,
		Timeout:  timeout,
		Interval: time.Minute,
		now:      time.Now,
	}
}

// Run checks for expired payments every Interval until ctx is done.
func (m *PaymentExpiryMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	utils.InfoLogger.Printf("Payment expiry monitor started (timeout=%s)", m.Timeout)
	for {
		select {
		case <-ctx.Done():
			utils.InfoLogger.Println("Payment expiry monitor stopped")
			return
		case <-ticker.C:
			if _, err := m.ExpireStale(ctx); err != nil {
				utils.ErrorLogger.Printf("Error expiring stale payments: %v", err)
			}
		}
	}
}

// ExpireStale marks stale pending payments expired and cancels their orders.
// It returns the number of orders changed.
func (m *PaymentExpiryMonitor) ExpireStale(ctx context.Context) (int, error) {
	db, err := m.Store.DB(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := m.now().Add(-m.Timeout)
	var stale []models.Order
	if err := db.Where("payment_status = ? AND status = ? AND created_at < ?",
		models.PaymentPending, models.OrderPending, cutoff).
		Limit(100).
		Find(&stale).Error; err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		order := &stale[i]
		// Only a row still pending is expired; a payment recorded since the
		// read above wins.
		res := db.Model(order).
			Where("payment_status = ? AND status = ?", models.PaymentPending, models.OrderPending).
			Updates(map[string]interface{}{
				"payment_status": models.PaymentExpired,
				"status":         models.OrderCancelled,
			})
		if res.Error != nil {
			utils.ErrorLogger.Printf("Error expiring order %d: %v", order.ID, res.Error)
			continue
		}
		if res.RowsAffected != 1 {
			continue
		}
		order.PaymentStatus = models.PaymentExpired
		order.Status = models.OrderCancelled
		expired++
		m.Hub.Broadcast(hub.EventOrderUpdated, order)
	}

	if expired > 0 {
		utils.InfoLogger.Printf("Expired %d orders with pending payment", expired)
	}
	return expired, nil
}
