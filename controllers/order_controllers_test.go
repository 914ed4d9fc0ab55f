package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/models"
)

func TestCheckoutPricesFromMenu(t *testing.T) {
	app := newTestApp(t)
	user, token := app.createUser("Dev", "dev@example.com", models.RoleCustomer)

	var biryani models.MenuItem
	require.NoError(t, app.db.Where("name = ?", "Vegetable Biryani").First(&biryani).Error)

	w := app.do(http.MethodPost, "/api/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"menuItemId": biryani.ID, "variant": "Full", "quantity": 2, "price": 0.01},
		},
		"paymentMethod": "upi",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	order := decode(t, w)["order"].(map[string]interface{})
	assert.Equal(t, 26.0, order["total"])
	assert.Equal(t, float64(user.ID), order["userId"])
	assert.Equal(t, "pending", order["paymentStatus"])
	assert.Equal(t, "Dev", order["customerInfo"].(map[string]interface{})["name"])
}

func TestCheckoutRejectsUnavailableItems(t *testing.T) {
	app := newTestApp(t)

	var special models.MenuItem
	require.NoError(t, app.db.Where("name = ?", "Seasonal Fish Special").First(&special).Error)

	w := app.do(http.MethodPost, "/api/orders", map[string]interface{}{
		"items": []map[string]interface{}{{"menuItemId": special.ID, "quantity": 1}},
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "items[0].menuItemId", decode(t, w)["field"])

	w = app.do(http.MethodPost, "/api/orders", map[string]interface{}{"items": []interface{}{}}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodPost, "/api/orders", map[string]interface{}{
		"items":         []map[string]interface{}{{"menuItemId": 1, "quantity": 1}},
		"paymentMethod": "bitcoin",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "paymentMethod", decode(t, w)["field"])
}

func TestPaymentStatusOwnership(t *testing.T) {
	app := newTestApp(t)
	_, ownerToken := app.createUser("Owner", "owner@example.com", models.RoleCustomer)
	_, otherToken := app.createUser("Other", "other@example.com", models.RoleCustomer)
	_, adminToken := app.createUser("Boss", "boss@example.com", models.RoleAdmin)

	w := app.do(http.MethodPost, "/api/orders", map[string]interface{}{
		"items": []map[string]interface{}{{"menuItemId": 1, "quantity": 1}},
	}, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := int(decode(t, w)["order"].(map[string]interface{})["id"].(float64))
	path := fmt.Sprintf("/api/payments/status/%d", id)

	w = app.do(http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(http.MethodGet, path, nil, ownerToken)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(id), body["orderId"])
	assert.Equal(t, "pending", body["paymentStatus"])
	assert.Equal(t, "cash", body["paymentMethod"])
	assert.Nil(t, body["paidAt"])

	w = app.do(http.MethodGet, path, nil, otherToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(http.MethodGet, path, nil, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodGet, "/api/payments/status/424242", nil, ownerToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(http.MethodGet, "/api/orders", nil, otherToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["orders"])

	w = app.do(http.MethodGet, fmt.Sprintf("/api/orders/%d", id), nil, ownerToken)
	assert.Equal(t, http.StatusOK, w.Code)
}
