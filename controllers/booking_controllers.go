package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/database"
	"github.com/yeremiapane/restaurant-booking/hub"
	"github.com/yeremiapane/restaurant-booking/middlewares"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/statemachine"
	"github.com/yeremiapane/restaurant-booking/utils"
)

type BookingController struct {
	Store *database.Gateway
	Hub   *hub.Hub
}

func NewBookingController(store *database.Gateway, h *hub.Hub) *BookingController {
	return &BookingController{Store: store, Hub: h}
}

type bookingRequest struct {
	Name            string `json:"name" validate:"max=255"`
	Email           string `json:"email" validate:"omitempty,email"`
	Phone           string `json:"phone" validate:"required,max=32"`
	Date            string `json:"date" validate:"required"`
	Time            string `json:"time" validate:"required,hhmm"`
	PartySize       int    `json:"partySize" validate:"required,min=1,max=20"`
	SpecialRequests string `json:"specialRequests" validate:"max=1000"`
}

// bookingInstant combines a calendar date (YYYY-MM-DD or RFC 3339, whose
// date part is used) with an HH:MM time in the server's local zone.
func bookingInstant(date, clock string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		ts, rfcErr := time.Parse(time.RFC3339, date)
		if rfcErr != nil {
			return time.Time{}, utils.NewValidationError("date", "date must be a YYYY-MM-DD calendar date")
		}
		y, m, d := ts.Date()
		day = time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	}

	hh, mm, _ := strings.Cut(clock, ":")
	hour, _ := strconv.Atoi(hh)
	minute, _ := strconv.Atoi(mm)
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), nil
}

// CreateBooking records a table request. Signed-in callers are linked to
// the booking and their name and email fill in blank contact fields.
func (bc *BookingController) CreateBooking(c *gin.Context) {
	var req bookingRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	at, err := bookingInstant(req.Date, req.Time)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	booking := models.Booking{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Date:            at,
		Time:            req.Time,
		PartySize:       req.PartySize,
		SpecialRequests: req.SpecialRequests,
		Status:          models.BookingRequested,
	}
	if session, ok := middlewares.CurrentSession(c); ok {
		booking.UserID = sessionUserID(session)
		booking.Name = firstNonEmpty(booking.Name, session.Name)
		booking.Email = firstNonEmpty(booking.Email, session.Email)
	}

	db, err := bc.Store.DB(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := db.Create(&booking).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.InfoLogger.Printf("Booking %d requested for %s (party of %d)", booking.ID, booking.Date.Format(time.RFC3339), booking.PartySize)
	bc.Hub.Broadcast(hub.EventBookingCreated, booking)
	utils.RespondJSON(c, http.StatusCreated, gin.H{"booking": booking})
}

// ListBookings returns the caller's bookings, or every booking for admins.
func (bc *BookingController) ListBookings(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}

	db, err := bc.Store.DB(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var bookings []models.Booking
	if err := scopeToCaller(db, session).Order("date asc").Find(&bookings).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"bookings": bookings})
}

// CancelBooking cancels a booking owned by the caller. Admins may cancel
// any booking.
func (bc *BookingController) CancelBooking(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	bc.transition(c, session, models.BookingCancelled)
}

// UpdateStatus moves a booking to the requested status for an admin.
func (bc *BookingController) UpdateStatus(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=requested confirmed cancelled completed"`
	}
	if err := bindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	bc.transition(c, session, req.Status)
}

func (bc *BookingController) transition(c *gin.Context, session *utils.SessionClaims, to string) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	db, err := bc.Store.DB(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var booking models.Booking
	if err := scopeToCaller(db, session).First(&booking, id).Error; err != nil {
		utils.RespondError(c, notFoundAs(err, "booking"))
		return
	}

	if err := statemachine.CanTransitionBooking(booking.Status, to, session.Role); err != nil {
		utils.RespondError(c, err)
		return
	}

	from := booking.Status
	if err := db.Model(&booking).Update("status", to).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	booking.Status = to

	utils.InfoLogger.Printf("Booking %d: %s -> %s by user %d", booking.ID, from, to, session.SessionPayload.ID)
	bc.Hub.Broadcast(hub.EventBookingUpdated, booking)
	utils.RespondJSON(c, http.StatusOK, gin.H{"booking": booking})
}
