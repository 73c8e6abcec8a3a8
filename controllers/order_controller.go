package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"shopmart/models"
	"shopmart/repositories"
	"shopmart/services"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orderService *services.OrderService
	cartService  *services.CartService
}

func NewOrderController(orderService *services.OrderService, cartService *services.CartService) *OrderController {
	return &OrderController{orderService: orderService, cartService: cartService}
}

func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

// loadOrder fetches the order from the path id. When ownOnly is set, the
// order must belong to the authenticated user.
func (ctrl *OrderController) loadOrder(c *gin.Context, ownOnly bool) (*models.Order, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid order ID"})
		return nil, false
	}

	order, err := ctrl.orderService.GetOrder(id)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Order not found"})
		} else {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		}
		return nil, false
	}

	if ownOnly && order.UserID != c.GetInt("user_id") {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Order not found"})
		return nil, false
	}
	return order, true
}

// Checkout godoc
// @Summary Create an order from the current cart
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CheckoutRequest true "Checkout"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /orders/checkout [post]
func (ctrl *OrderController) Checkout(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	cart, err := ctrl.cartService.GetCurrentCart(&userID, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	problems, err := ctrl.cartService.ValidateCartStock(cart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}
	if len(problems) > 0 {
		c.JSON(http.StatusConflict, models.ErrorResponse{Success: false, Message: "Some items are out of stock", Errors: problems})
		return
	}

	order, err := ctrl.orderService.CreateOrderFromCart(cart, userID, req.BillingAddress, req.ShippingAddress, req.PaymentMethod, req.ShippingMethod)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Cart is empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Order created", Data: order})
}

// GetMyOrders godoc
// @Summary List own orders
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} models.PaginationResponse
// @Router /orders [get]
func (ctrl *OrderController) GetMyOrders(c *gin.Context) {
	userID := c.GetInt("user_id")
	page, limit := pagination(c)

	orders, total, err := ctrl.orderService.GetUserOrders(userID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.PaginationResponse{
		Success: true,
		Message: "Orders retrieved",
		Data:    orders,
		Meta:    models.NewMetaData(page, limit, total),
	})
}

// GetOrder godoc
// @Summary Get one of your orders
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Response
// @Router /orders/{id} [get]
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	order, ok := ctrl.loadOrder(c, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Order retrieved", Data: order})
}

// CancelOrder godoc
// @Summary Cancel a pending or confirmed order
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body models.CancelOrderRequest false "Reason"
// @Success 200 {object} models.Response
// @Failure 409 {object} models.ErrorResponse
// @Router /orders/{id}/cancel [post]
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	order, ok := ctrl.loadOrder(c, true)
	if !ok {
		return
	}

	var req models.CancelOrderRequest
	c.ShouldBindJSON(&req)

	if err := ctrl.orderService.CancelOrder(order, req.Reason); err != nil {
		if errors.Is(err, services.ErrOrderNotCancellable) {
			c.JSON(http.StatusConflict, models.ErrorResponse{Success: false, Message: "Order can no longer be cancelled"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Order cancelled", Data: order})
}

// GetAllOrders godoc
// @Summary List all orders (admin)
// @Tags Admin Orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param status query string false "Filter by status"
// @Param search query string false "Search order number"
// @Success 200 {object} models.PaginationResponse
// @Router /admin/orders [get]
func (ctrl *OrderController) GetAllOrders(c *gin.Context) {
	page, limit := pagination(c)
	status := c.Query("status")
	search := c.Query("search")

	orders, total, err := ctrl.orderService.GetAllOrders(page, limit, status, search)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.PaginationResponse{
		Success: true,
		Message: "Orders retrieved",
		Data:    orders,
		Meta:    models.NewMetaData(page, limit, total),
	})
}

// UpdateStatus godoc
// @Summary Update order status (admin)
// @Tags Admin Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body models.UpdateOrderStatusRequest true "Status"
// @Success 200 {object} models.Response
// @Router /admin/orders/{id}/status [put]
func (ctrl *OrderController) UpdateStatus(c *gin.Context) {
	order, ok := ctrl.loadOrder(c, false)
	if !ok {
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	sendEmail := req.SendEmail == nil || *req.SendEmail
	if err := ctrl.orderService.UpdateOrderStatus(order, req.Status, sendEmail); err != nil {
		if errors.Is(err, services.ErrUnknownOrderStatus) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Order status updated", Data: order})
}

// UpdatePayment godoc
// @Summary Update payment status (admin)
// @Description Marking a pending order paid auto-confirms it.
// @Tags Admin Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body models.UpdatePaymentStatusRequest true "Payment status"
// @Success 200 {object} models.Response
// @Router /admin/orders/{id}/payment [put]
func (ctrl *OrderController) UpdatePayment(c *gin.Context) {
	order, ok := ctrl.loadOrder(c, false)
	if !ok {
		return
	}

	var req models.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	if err := ctrl.orderService.UpdatePaymentStatus(order, req.Status, req.TransactionID); err != nil {
		if errors.Is(err, services.ErrUnknownPaymentStatus) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Payment status updated", Data: order})
}

// AddTracking godoc
// @Summary Add tracking number (admin)
// @Description A processing order auto-advances to shipped.
// @Tags Admin Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body models.TrackingNumberRequest true "Tracking"
// @Success 200 {object} models.Response
// @Router /admin/orders/{id}/tracking [put]
func (ctrl *OrderController) AddTracking(c *gin.Context) {
	order, ok := ctrl.loadOrder(c, false)
	if !ok {
		return
	}

	var req models.TrackingNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	if err := ctrl.orderService.AddTrackingNumber(order, req.TrackingNumber); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Tracking number added", Data: order})
}

// Refund godoc
// @Summary Refund an order (admin)
// @Description Omit amount to refund in full.
// @Tags Admin Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body models.RefundRequest false "Amount"
// @Success 200 {object} models.Response
// @Router /admin/orders/{id}/refund [post]
func (ctrl *OrderController) Refund(c *gin.Context) {
	order, ok := ctrl.loadOrder(c, false)
	if !ok {
		return
	}

	var req models.RefundRequest
	c.ShouldBindJSON(&req)

	if err := ctrl.orderService.ProcessRefund(order, req.Amount); err != nil {
		if errors.Is(err, services.ErrRefundExceedsTotal) || errors.Is(err, services.ErrInvalidRefundAmount) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Refund processed", Data: order})
}
