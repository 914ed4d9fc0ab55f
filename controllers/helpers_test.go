package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/config"
	"github.com/yeremiapane/restaurant-booking/controllers"
	"github.com/yeremiapane/restaurant-booking/database"
	"github.com/yeremiapane/restaurant-booking/hub"
	"github.com/yeremiapane/restaurant-booking/middlewares"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/router"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

type testApp struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	creds  *utils.CredentialService

	resetTokens map[string]string // email -> last reset token
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithBlacklist(t, utils.NewMemoryBlacklist())
}

func newTestAppWithBlacklist(t *testing.T, blacklist utils.TokenBlacklist) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenMemory()
	require.NoError(t, err)
	require.NoError(t, database.SeedMenu(db, ""))

	store := database.NewStaticGateway(db)
	t.Cleanup(func() { _ = store.Close() })

	app := &testApp{
		t:           t,
		db:          db,
		creds:       utils.NewCredentialService([]byte("controller-test-secret-0123456789")),
		resetTokens: map[string]string{},
	}
	app.router = router.SetupRouter(router.Deps{
		Config: &config.Config{
			AuthRateLimit:       1000,
			OrderPaymentTimeout: time.Minute,
		},
		Store:     store,
		Creds:     app.creds,
		Blacklist: blacklist,
		Hub:       hub.New(),
		NotifyReset: controllers.ResetNotifier(func(user models.User, token string) {
			app.resetTokens[user.Email] = token
		}),
	})
	return app
}

// createUser stores a user directly and returns it with a session token.
func (a *testApp) createUser(name, email, role string) (models.User, string) {
	a.t.Helper()
	hashed, err := utils.HashPassword("password123")
	require.NoError(a.t, err)

	user := models.User{Name: name, Email: email, Password: hashed, Role: role, Phone: "555-0100"}
	require.NoError(a.t, a.db.Create(&user).Error)

	token, err := a.creds.SignToken(utils.SessionPayload{ID: user.ID, Email: user.Email, Role: user.Role, Name: user.Name})
	require.NoError(a.t, err)
	return user, token
}

// do sends a request with an optional JSON body and session cookie.
func (a *testApp) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middlewares.SessionCookieName, Value: token})
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}
