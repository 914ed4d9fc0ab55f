package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/models"
	"gorm.io/gorm"
)

func TestExpireStaleCancelsOldPendingOrders(t *testing.T) {
	gw, db := newStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	line := []models.OrderItem{{MenuItemID: 1, Name: "Samosa", Quantity: 1, Price: 5}}
	stale := models.Order{Items: line, Total: 5, CreatedAt: now.Add(-2 * time.Hour)}
	fresh := models.Order{Items: line, Total: 5, CreatedAt: now.Add(-5 * time.Minute)}
	paid := models.Order{Items: line, Total: 5, PaymentStatus: models.PaymentPaid, CreatedAt: now.Add(-2 * time.Hour)}
	for _, o := range []*models.Order{&stale, &fresh, &paid} {
		require.NoError(t, db.Create(o).Error)
	}

	m := NewPaymentExpiryMonitor(gw, nil, 30*time.Minute)
	m.now = func() time.Time { return now }

	n, err := m.ExpireStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var got models.Order
	require.NoError(t, db.First(&got, stale.ID).Error)
	assert.Equal(t, models.PaymentExpired, got.PaymentStatus)
	assert.Equal(t, models.OrderCancelled, got.Status)

	require.NoError(t, db.First(&got, fresh.ID).Error)
	assert.Equal(t, models.PaymentPending, got.PaymentStatus)

	require.NoError(t, db.First(&got, paid.ID).Error)
	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)

	n, err = m.ExpireStale(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExpireStaleKeepsPaymentRecordedAfterRead(t *testing.T) {
	gw, db := newStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	line := []models.OrderItem{{MenuItemID: 1, Name: "Samosa", Quantity: 1, Price: 5}}
	order := models.Order{Items: line, Total: 5, CreatedAt: now.Add(-2 * time.Hour)}
	require.NoError(t, db.Create(&order).Error)

	// An admin marks the order paid right after the monitor loads it.
	paidOnce := false
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:pay_after_read", func(tx *gorm.DB) {
		if paidOnce {
			return
		}
		paidOnce = true
		err := tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE orders SET payment_status = ?, status = ? WHERE id = ?",
				models.PaymentPaid, models.OrderConfirmed, order.ID).Error
		require.NoError(t, err)
	}))

	m := NewPaymentExpiryMonitor(gw, nil, 30*time.Minute)
	m.now = func() time.Time { return now }

	n, err := m.ExpireStale(context.Background())
	require.NoError(t, err)
	assert.True(t, paidOnce)
	assert.Zero(t, n)

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, models.OrderConfirmed, got.Status)
}

func TestRunStopsWithContext(t *testing.T) {
	gw, _ := newStore(t)
	m := NewPaymentExpiryMonitor(gw, nil, time.Minute)
	m.Interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
