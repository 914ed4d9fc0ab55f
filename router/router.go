package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/config"
	"github.com/yeremiapane/restaurant-booking/controllers"
	"github.com/yeremiapane/restaurant-booking/database"
	"github.com/yeremiapane/restaurant-booking/hub"
	"github.com/yeremiapane/restaurant-booking/middlewares"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
)

// Deps are the shared services the HTTP layer is built on.
type Deps struct {
	Config      *config.Config
	Store       *database.Gateway
	Creds       *utils.CredentialService
	Blacklist   utils.TokenBlacklist
	Hub         *hub.Hub
	Orders      *services.OrderService
	AuthLimiter *middlewares.RateLimiter

	// NotifyReset, when set, replaces the default reset token delivery.
	NotifyReset controllers.ResetNotifier
}

func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if d.Orders == nil {
		d.Orders = services.NewOrderService(d.Store)
	}
	if d.AuthLimiter == nil {
		d.AuthLimiter = middlewares.NewRateLimiter(cfg.AuthRateLimit)
	}

	r := gin.New()
	// ClientIP feeds the auth rate limiter, so forwarded headers only count
	// when they come from a configured proxy.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		utils.ErrorLogger.Printf("Invalid trusted proxies %v, trusting none: %v", cfg.TrustedProxies, err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders(cfg.CookieSecure))
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigin))
	r.Use(middlewares.EdgeGuard())

	guard := middlewares.NewAuthGuard(d.Creds, d.Blacklist)

	authCtrl := controllers.NewAuthController(d.Store, d.Creds, d.Blacklist, cfg.CookieSecure)
	if d.NotifyReset != nil {
		authCtrl.NotifyReset = d.NotifyReset
	}
	menuCtrl := controllers.NewMenuController(d.Store)
	bookingCtrl := controllers.NewBookingController(d.Store, d.Hub)
	orderCtrl := controllers.NewOrderController(d.Store, d.Orders, d.Hub)
	adminCtrl := controllers.NewAdminController(d.Store, d.Hub, cfg.CORSOrigin)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := r.Group("/api")

	// ----------------------------------------------------------------
	//                      AUTH
	// ----------------------------------------------------------------
	auth := api.Group("/auth")
	{
		limited := auth.Group("/", d.AuthLimiter.RateLimit())
		limited.POST("/signup", authCtrl.Signup)
		limited.POST("/login", authCtrl.Login)
		limited.POST("/forgot-password", authCtrl.ForgotPassword)
		limited.POST("/reset-password", authCtrl.ResetPassword)

		auth.POST("/logout", authCtrl.Logout)
		auth.GET("/me", guard.Require(""), authCtrl.Me)
	}

	// ----------------------------------------------------------------
	//                      MENU (public)
	// ----------------------------------------------------------------
	api.GET("/menu", menuCtrl.GetMenu)
	api.GET("/menu/categories", menuCtrl.GetCategories)
	api.GET("/menu/:id", menuCtrl.GetMenuItem)

	// ----------------------------------------------------------------
	//                      BOOKINGS & ORDERS
	// ----------------------------------------------------------------
	api.POST("/bookings", guard.Optional(), bookingCtrl.CreateBooking)
	api.POST("/orders", guard.Optional(), orderCtrl.CreateOrder)

	customer := api.Group("/", guard.Require(""))
	{
		customer.GET("/bookings", bookingCtrl.ListBookings)
		customer.PATCH("/bookings/:id/cancel", bookingCtrl.CancelBooking)

		customer.GET("/orders", orderCtrl.ListOrders)
		customer.GET("/orders/:id", orderCtrl.GetOrder)

		customer.GET("/payments/status/:orderId", orderCtrl.GetPaymentStatus)
	}

	// ----------------------------------------------------------------
	//                      ADMIN
	// ----------------------------------------------------------------
	api.GET("/admin/ws", middlewares.WebSocketToken(), guard.Require(models.RoleAdmin), adminCtrl.LiveFeed)

	admin := api.Group("/admin", guard.Require(models.RoleAdmin))
	{
		admin.GET("/bookings", adminCtrl.GetBookings)
		admin.PATCH("/bookings/:id/status", bookingCtrl.UpdateStatus)

		admin.GET("/orders", adminCtrl.GetOrders)
		admin.PATCH("/orders/:id/status", orderCtrl.UpdateStatus)

		admin.GET("/stats", adminCtrl.GetDashboardStats)
	}

	if cfg.WebRoot != "" {
		servePages(r, cfg.WebRoot)
	}

	return r
}

// servePages maps the page routes onto HTML files under root. Page routes
// have already passed EdgeGuard.
func servePages(r *gin.Engine, root string) {
	if _, err := os.Stat(root); err != nil {
		utils.ErrorLogger.Printf("WARNING: web root %s not usable: %v", root, err)
		return
	}
	utils.InfoLogger.Printf("Serving pages from %s", root)

	page := func(name string) gin.HandlerFunc {
		file := filepath.Join(root, name)
		return func(c *gin.Context) { c.File(file) }
	}

	r.GET("/", page("index.html"))
	r.GET("/login", page("login.html"))
	r.GET("/signup", page("signup.html"))
	r.GET("/admin/login", page(filepath.Join("admin", "login.html")))
	r.Static("/assets", filepath.Join(root, "assets"))

	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		switch {
		case path == "/app" || strings.HasPrefix(path, "/app/"):
			c.File(filepath.Join(root, "app.html"))
		case path == "/admin" || strings.HasPrefix(path, "/admin/"):
			c.File(filepath.Join(root, "admin", "index.html"))
		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
		}
	})
}
