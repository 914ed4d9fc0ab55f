package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/config"
	"github.com/yeremiapane/restaurant-booking/database"
	"github.com/yeremiapane/restaurant-booking/hub"
	"github.com/yeremiapane/restaurant-booking/middlewares"
	"github.com/yeremiapane/restaurant-booking/router"
	"github.com/yeremiapane/restaurant-booking/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger("warn")
	utils.InfoLogger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// TestEndToEndBookingAndOrder walks the main flows through the real stack:
// lazy gateway open with seeding and admin bootstrap, signup, booking,
// checkout, admin handling and logout.
func TestEndToEndBookingAndOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		DBDriver:            config.DriverSQLite,
		DBDSN:               database.MemoryDSN(),
		AdminName:           "Head Chef",
		AdminEmail:          "admin@restaurant.test",
		AdminPassword:       "admin-password",
		AuthRateLimit:       100,
		OrderPaymentTimeout: 30 * time.Minute,
	}
	store := database.NewGateway(database.Opener(cfg))
	t.Cleanup(func() { _ = store.Close() })

	r := router.SetupRouter(router.Deps{
		Config:    cfg,
		Store:     store,
		Creds:     utils.NewCredentialService([]byte("integration-secret-0123456789ab")),
		Blacklist: utils.NewMemoryBlacklist(),
		Hub:       hub.New(),
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	call := func(method, path, token string, body interface{}) (int, map[string]interface{}) {
		t.Helper()
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req, err := http.NewRequest(method, srv.URL+path, &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		var out map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return resp.StatusCode, out
	}

	code, body := call(http.MethodGet, "/ping", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pong", body["message"])

	// 1. Customer signs up.
	code, body = call(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Farah", "email": "farah@example.com", "password": "farah-password", "phone": "555-0123",
	})
	require.Equal(t, http.StatusCreated, code, body)
	customerToken := body["token"].(string)

	// 2. Customer books a table and orders from the seeded menu.
	code, body = call(http.MethodPost, "/api/bookings", customerToken, map[string]interface{}{
		"phone": "555-0123", "date": time.Now().AddDate(0, 0, 10).Format("2006-01-02"), "time": "19:45", "partySize": 6,
	})
	require.Equal(t, http.StatusCreated, code, body)
	bookingID := int(body["booking"].(map[string]interface{})["id"].(float64))

	code, body = call(http.MethodGet, "/api/menu?category=Drinks", "", nil)
	require.Equal(t, http.StatusOK, code)
	lassi := body["items"].([]interface{})[0].(map[string]interface{})

	code, body = call(http.MethodPost, "/api/orders", customerToken, map[string]interface{}{
		"items": []map[string]interface{}{{"menuItemId": lassi["id"], "quantity": 3}},
	})
	require.Equal(t, http.StatusCreated, code, body)
	order := body["order"].(map[string]interface{})
	orderID := int(order["id"].(float64))
	assert.Equal(t, lassi["price"].(float64)*3, order["total"])

	// 3. The bootstrap admin confirms both.
	code, body = call(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "admin@restaurant.test", "password": "admin-password",
	})
	require.Equal(t, http.StatusOK, code, body)
	adminToken := body["token"].(string)

	code, body = call(http.MethodGet, "/api/admin/bookings", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	bookings := body["bookings"].([]interface{})
	require.Len(t, bookings, 1)
	assert.Equal(t, "Farah", bookings[0].(map[string]interface{})["user"].(map[string]interface{})["name"])

	code, _ = call(http.MethodPatch, fmt.Sprintf("/api/admin/bookings/%d/status", bookingID), adminToken, map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusOK, code)

	code, _ = call(http.MethodPatch, fmt.Sprintf("/api/admin/orders/%d/status", orderID), adminToken, map[string]string{"paymentStatus": "paid"})
	assert.Equal(t, http.StatusOK, code)

	code, body = call(http.MethodGet, fmt.Sprintf("/api/payments/status/%d", orderID), customerToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "paid", body["paymentStatus"])
	assert.NotNil(t, body["paidAt"])

	// 4. Logging out revokes the token.
	code, _ = call(http.MethodPost, "/api/auth/logout", customerToken, nil)
	require.Equal(t, http.StatusOK, code)
	code, body = call(http.MethodGet, "/api/bookings", customerToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "authentication required", body["error"])
}

func TestPageRedirects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := database.OpenMemory()
	require.NoError(t, err)

	r := router.SetupRouter(router.Deps{
		Config: &config.Config{AuthRateLimit: 10},
		Store:  database.NewStaticGateway(db),
		Creds:  utils.NewCredentialService([]byte("integration-secret-0123456789ab")),
		Hub:    hub.New(),
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, middlewares.AdminLoginPath, w.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/signup", nil)
	req.AddCookie(&http.Cookie{Name: middlewares.SessionCookieName, Value: "anything"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, middlewares.LandingPath, w.Header().Get("Location"))
}
