package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-booking/database"
	"github.com/yeremiapane/restaurant-booking/hub"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
)

type AdminController struct {
	Store    *database.Gateway
	Hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewAdminController builds the admin endpoints. allowedOrigin is accepted
// for websocket upgrades in addition to same-origin requests.
func NewAdminController(store *database.Gateway, h *hub.Hub, allowedOrigin string) *AdminController {
	return &AdminController{
		Store: store,
		Hub:   h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || (allowedOrigin != "" && origin == allowedOrigin) {
					return true
				}
				return origin == "http://"+r.Host || origin == "https://"+r.Host
			},
		},
	}
}

// contactView is the user summary attached to admin listings. Missing data
// is filled with display fallbacks rather than left empty.
type contactView struct {
	ID    *uint  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type adminBooking struct {
	models.Booking
	User contactView `json:"user"`
}

type adminOrder struct {
	models.Order
	Customer contactView `json:"customer"`
}

func bookingContact(b *models.Booking) contactView {
	var name, email, phone string
	if b.User != nil {
		name, email, phone = b.User.Name, b.User.Email, b.User.Phone
	}
	return contactView{
		ID:    b.UserID,
		Name:  firstNonEmpty(name, b.Name, guestName),
		Email: firstNonEmpty(email, b.Email, unavailable),
		Phone: firstNonEmpty(phone, b.Phone, unavailable),
	}
}

func orderContact(o *models.Order) contactView {
	var name, email, phone string
	if o.User != nil {
		name, email, phone = o.User.Name, o.User.Email, o.User.Phone
	}
	return contactView{
		ID:    o.UserID,
		Name:  firstNonEmpty(o.CustomerInfo.Name, name, guestName),
		Email: firstNonEmpty(o.CustomerInfo.Email, email, unavailable),
		Phone: firstNonEmpty(o.CustomerInfo.Phone, phone, unavailable),
	}
}

// GetBookings lists every booking, optionally filtered by ?status=, with
// the booking's user contact details.
func (ac *AdminController) GetBookings(c *gin.Context) {
	db, err := ac.Store.DB(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	query := db.Preload("User").Order("date asc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	out := make([]adminBooking, 0, len(bookings))
	for i := range bookings {
		out = append(out, adminBooking{Booking: bookings[i], User: bookingContact(&bookings[i])})
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"bookings": out})
}

func (ac *AdminController) GetOrders(c *gin.Context) {
	db, err := ac.Store.DB(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	query := db.Preload("User").Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if paymentStatus := c.Query("paymentStatus"); paymentStatus != "" {
		query = query.Where("payment_status = ?", paymentStatus)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	out := make([]adminOrder, 0, len(orders))
	for i := range orders {
		out = append(out, adminOrder{Order: orders[i], Customer: orderContact(&orders[i])})
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"orders": out})
}

// GetDashboardStats summarizes bookings and orders by status and the paid
// revenue.
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	db, err := ac.Store.DB(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	type statusCount struct {
		Status string
		Count  int64
	}

	var bookingRows, orderRows []statusCount
	if err := db.Model(&models.Booking{}).Select("status, count(*) as count").Group("status").Scan(&bookingRows).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := db.Model(&models.Order{}).Select("status, count(*) as count").Group("status").Scan(&orderRows).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	var revenue float64
	if err := db.Model(&models.Order{}).
		Where("payment_status = ?", models.PaymentPaid).
		Select("COALESCE(SUM(total), 0)").
		Scan(&revenue).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	toMap := func(rows []statusCount) map[string]int64 {
		m := make(map[string]int64, len(rows))
		for _, r := range rows {
			m[r.Status] = r.Count
		}
		return m
	}

	utils.RespondJSON(c, http.StatusOK, gin.H{
		"stats": gin.H{
			"bookings":    toMap(bookingRows),
			"orders":      toMap(orderRows),
			"paidRevenue": revenue,
			"liveClients": ac.Hub.Clients(),
		},
	})
}

// LiveFeed upgrades to a websocket that receives booking and order events.
func (ac *AdminController) LiveFeed(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}

	conn, err := ac.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Websocket upgrade failed: %v", err)
		return
	}

	utils.InfoLogger.Printf("Admin %d connected to live feed", session.SessionPayload.ID)
	ac.Hub.Serve(conn, session.SessionPayload.ID)
	utils.InfoLogger.Printf("Admin %d disconnected from live feed", session.SessionPayload.ID)
}
