package controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/models"
)

func TestAdminBookingsAccess(t *testing.T) {
	app := newTestApp(t)
	_, customerToken := app.createUser("Cust", "cust@example.com", models.RoleCustomer)
	_, adminToken := app.createUser("Boss", "boss@example.com", models.RoleAdmin)

	w := app.do(http.MethodGet, "/api/admin/bookings", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(http.MethodGet, "/api/admin/bookings", nil, "forged-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(http.MethodGet, "/api/admin/bookings", nil, customerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])

	w = app.do(http.MethodGet, "/api/admin/bookings", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Empty(t, body["bookings"])
}

func TestAdminBookingsContactFallbacks(t *testing.T) {
	app := newTestApp(t)
	member, _ := app.createUser("Kiran", "kiran@example.com", models.RoleCustomer)
	_, adminToken := app.createUser("Boss", "boss@example.com", models.RoleAdmin)

	when := time.Now().Add(48 * time.Hour)
	guest := models.Booking{Phone: "555-0001", Date: when, Time: "18:00", PartySize: 2}
	named := models.Booking{Name: "Leela", Phone: "555-0002", Date: when.Add(time.Hour), Time: "19:00", PartySize: 3}
	linked := models.Booking{UserID: &member.ID, Phone: "555-0003", Date: when.Add(2 * time.Hour), Time: "20:00", PartySize: 4}
	for _, b := range []*models.Booking{&guest, &named, &linked} {
		require.NoError(t, app.db.Create(b).Error)
	}

	w := app.do(http.MethodGet, "/api/admin/bookings", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	bookings := decode(t, w)["bookings"].([]interface{})
	require.Len(t, bookings, 3)

	user := func(i int) map[string]interface{} {
		return bookings[i].(map[string]interface{})["user"].(map[string]interface{})
	}

	assert.Equal(t, "Guest User", user(0)["name"])
	assert.Equal(t, "N/A", user(0)["email"])
	assert.Equal(t, "555-0001", user(0)["phone"])
	assert.Nil(t, user(0)["id"])

	assert.Equal(t, "Leela", user(1)["name"])
	assert.Equal(t, "N/A", user(1)["email"])

	assert.Equal(t, "Kiran", user(2)["name"])
	assert.Equal(t, "kiran@example.com", user(2)["email"])
	assert.Equal(t, float64(member.ID), user(2)["id"])

	w = app.do(http.MethodGet, "/api/admin/bookings?status=confirmed", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["bookings"])
}

func TestAdminBookingStatusTransitions(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := app.createUser("Boss", "boss@example.com", models.RoleAdmin)
	_, customerToken := app.createUser("Cust", "cust@example.com", models.RoleCustomer)

	booking := models.Booking{Phone: "555-0004", Date: time.Now().Add(24 * time.Hour), Time: "13:00", PartySize: 2}
	require.NoError(t, app.db.Create(&booking).Error)
	path := fmt.Sprintf("/api/admin/bookings/%d/status", booking.ID)

	w := app.do(http.MethodPatch, path, map[string]string{"status": "confirmed"}, customerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(http.MethodPatch, path, map[string]string{"status": "completed"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodPatch, path, map[string]string{"status": "seated"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, status := range []string{"confirmed", "completed"} {
		w = app.do(http.MethodPatch, path, map[string]string{"status": status}, adminToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	var stored models.Booking
	require.NoError(t, app.db.First(&stored, booking.ID).Error)
	assert.Equal(t, models.BookingCompleted, stored.Status)

	w = app.do(http.MethodPatch, path, map[string]string{"status": "cancelled"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodPatch, "/api/admin/bookings/999/status", map[string]string{"status": "confirmed"}, adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminOrdersAndStats(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := app.createUser("Boss", "boss@example.com", models.RoleAdmin)

	w := app.do(http.MethodPost, "/api/orders", map[string]interface{}{
		"items": []map[string]interface{}{{"menuItemId": 1, "quantity": 2}},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orderID := int(decode(t, w)["order"].(map[string]interface{})["id"].(float64))

	w = app.do(http.MethodGet, "/api/admin/orders", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	orders := decode(t, w)["orders"].([]interface{})
	require.Len(t, orders, 1)
	customer := orders[0].(map[string]interface{})["customer"].(map[string]interface{})
	assert.Equal(t, "Guest User", customer["name"])
	assert.Equal(t, "N/A", customer["email"])
	assert.Equal(t, "N/A", customer["phone"])

	path := fmt.Sprintf("/api/admin/orders/%d/status", orderID)
	w = app.do(http.MethodPatch, path, map[string]string{}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodPatch, path, map[string]string{"paymentStatus": "bogus"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodPatch, path, map[string]string{"status": "confirmed", "paymentStatus": "paid"}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	order := decode(t, w)["order"].(map[string]interface{})
	assert.Equal(t, "paid", order["paymentStatus"])
	assert.NotEmpty(t, order["paidAt"])

	w = app.do(http.MethodGet, "/api/admin/stats", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["orders"].(map[string]interface{})["confirmed"])
	assert.InDelta(t, 25.0, stats["paidRevenue"], 0.001)
}
