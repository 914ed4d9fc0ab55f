package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/database"
	"github.com/yeremiapane/restaurant-booking/hub"
	"github.com/yeremiapane/restaurant-booking/middlewares"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
)

type OrderController struct {
	Store  *database.Gateway
	Orders *services.OrderService
	Hub    *hub.Hub
}

func NewOrderController(store *database.Gateway, orders *services.OrderService, h *hub.Hub) *OrderController {
	return &OrderController{Store: store, Orders: orders, Hub: h}
}

// CreateOrder checks out a cart. Prices come from the menu, never from the
// client.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req struct {
		Items         []services.CartLine `json:"items" validate:"required,min=1,max=50,dive"`
		CustomerInfo  models.CustomerInfo `json:"customerInfo"`
		PaymentMethod string              `json:"paymentMethod" validate:"omitempty,oneof=cash card upi"`
	}
	if err := bindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	checkout := services.CheckoutRequest{
		Lines:         req.Items,
		Customer:      req.CustomerInfo,
		PaymentMethod: req.PaymentMethod,
	}
	if session, ok := middlewares.CurrentSession(c); ok {
		checkout.UserID = sessionUserID(session)
		checkout.Customer.Name = firstNonEmpty(checkout.Customer.Name, session.Name)
		checkout.Customer.Email = firstNonEmpty(checkout.Customer.Email, session.Email)
	}

	order, err := oc.Orders.Checkout(c.Request.Context(), checkout)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	oc.Hub.Broadcast(hub.EventOrderCreated, order)
	utils.RespondJSON(c, http.StatusCreated, gin.H{"order": order})
}

// ListOrders returns the caller's orders, newest first. Admins see all.
func (oc *OrderController) ListOrders(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}

	db, err := oc.Store.DB(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var orders []models.Order
	if err := scopeToCaller(db, session).Order("created_at desc").Find(&orders).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"orders": orders})
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}

	order, err := oc.findOrder(c, session, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"order": order})
}

// GetPaymentStatus reports the payment state of one order. Orders the
// caller does not own are reported as missing.
func (oc *OrderController) GetPaymentStatus(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}

	order, err := oc.findOrder(c, session, "orderId")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, gin.H{
		"orderId":       order.ID,
		"paymentStatus": order.PaymentStatus,
		"paymentMethod": order.PaymentMethod,
		"total":         order.Total,
		"paidAt":        order.PaidAt,
		"status":        order.Status,
	})
}

// UpdateStatus lets an admin change an order's status or payment status.
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req struct {
		Status           *string `json:"status" validate:"omitempty,oneof=pending confirmed preparing ready delivered cancelled"`
		PaymentStatus    *string `json:"paymentStatus" validate:"omitempty,oneof=pending paid failed refunded expired"`
		PaymentReference *string `json:"paymentReference" validate:"omitempty,max=255"`
	}
	if err := bindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	if req.Status == nil && req.PaymentStatus == nil && req.PaymentReference == nil {
		utils.RespondError(c, utils.NewValidationError("status", "status or paymentStatus is required"))
		return
	}

	order, err := oc.Orders.UpdateStatus(c.Request.Context(), id, services.StatusUpdate{
		Status:           req.Status,
		PaymentStatus:    req.PaymentStatus,
		PaymentReference: req.PaymentReference,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order %d updated: status=%s payment=%s", order.ID, order.Status, order.PaymentStatus)
	oc.Hub.Broadcast(hub.EventOrderUpdated, order)
	utils.RespondJSON(c, http.StatusOK, gin.H{"order": order})
}

func (oc *OrderController) findOrder(c *gin.Context, session *utils.SessionClaims, param string) (*models.Order, error) {
	id, err := paramID(c, param)
	if err != nil {
		return nil, err
	}

	db, err := oc.Store.DB(c.Request.Context())
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := scopeToCaller(db, session).First(&order, id).Error; err != nil {
		return nil, notFoundAs(err, "order")
	}
	return &order, nil
}
