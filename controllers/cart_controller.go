package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"shopmart/models"
	"shopmart/services"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	cartService *services.CartService
}

func NewCartController(cartService *services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// cartOwner resolves the cart identity: the authenticated user when a valid
// token was presented, otherwise the X-Session-Id header.
func cartOwner(c *gin.Context) (*int, string) {
	if id, exists := c.Get("user_id"); exists {
		userID := id.(int)
		return &userID, ""
	}
	return nil, c.GetHeader("X-Session-Id")
}

func (ctrl *CartController) currentCart(c *gin.Context) (*models.Cart, bool) {
	userID, sessionID := cartOwner(c)
	cart, err := ctrl.cartService.GetCurrentCart(userID, sessionID)
	if err != nil {
		if errors.Is(err, services.ErrCartOwnerRequired) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Login or provide an X-Session-Id header"})
		} else {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		}
		return nil, false
	}
	return cart, true
}

// GetCart godoc
// @Summary Get current cart
// @Tags Cart
// @Produce json
// @Param X-Session-Id header string false "Anonymous cart session"
// @Success 200 {object} models.Response
// @Router /cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	cart, ok := ctrl.currentCart(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart retrieved", Data: cart})
}

// AddItem godoc
// @Summary Add product to cart
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body models.AddToCartRequest true "Item"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	cart, ok := ctrl.currentCart(c)
	if !ok {
		return
	}

	// The service snapshots the price but never checks stock; availability
	// is gated here so an oversized request fails before the cart changes.
	if err := ctrl.cartService.CheckAvailability(cart, req.ProductID, req.VariantID, req.Quantity); err != nil {
		c.JSON(http.StatusConflict, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	cart, err := ctrl.cartService.AddToCart(cart, req.ProductID, req.VariantID, req.Quantity, req.CustomOptions)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Item added to cart", Data: cart})
}

// UpdateItem godoc
// @Summary Update cart item quantity
// @Description Quantity zero or less removes the line.
// @Tags Cart
// @Accept json
// @Produce json
// @Param id path int true "Cart item ID"
// @Param request body models.UpdateCartItemRequest true "Quantity"
// @Success 200 {object} models.Response
// @Router /cart/items/{id} [put]
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid item ID"})
		return
	}

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	cart, err := ctrl.cartService.UpdateItemQuantity(itemID, req.Quantity)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart updated", Data: cart})
}

// RemoveItem godoc
// @Summary Remove item from cart
// @Tags Cart
// @Produce json
// @Param id path int true "Cart item ID"
// @Success 200 {object} models.Response
// @Router /cart/items/{id} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid item ID"})
		return
	}

	cart, err := ctrl.cartService.RemoveFromCart(itemID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Item removed", Data: cart})
}

// ClearCart godoc
// @Summary Empty the cart
// @Tags Cart
// @Produce json
// @Success 200 {object} models.Response
// @Router /cart [delete]
func (ctrl *CartController) ClearCart(c *gin.Context) {
	cart, ok := ctrl.currentCart(c)
	if !ok {
		return
	}

	if err := ctrl.cartService.ClearCart(cart); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart cleared", Data: cart})
}

// ApplyCoupon godoc
// @Summary Apply a coupon code
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body models.ApplyCouponRequest true "Coupon"
// @Success 200 {object} models.Response
// @Router /cart/coupon [post]
func (ctrl *CartController) ApplyCoupon(c *gin.Context) {
	var req models.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	cart, ok := ctrl.currentCart(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.ApplyCoupon(cart, req.Code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Coupon applied", Data: cart})
}

// RemoveCoupon godoc
// @Summary Remove the coupon
// @Tags Cart
// @Produce json
// @Success 200 {object} models.Response
// @Router /cart/coupon [delete]
func (ctrl *CartController) RemoveCoupon(c *gin.Context) {
	cart, ok := ctrl.currentCart(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.RemoveCoupon(cart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Coupon removed", Data: cart})
}

// ValidateStock godoc
// @Summary Check cart lines against current stock
// @Tags Cart
// @Produce json
// @Success 200 {object} models.Response
// @Router /cart/validate [get]
func (ctrl *CartController) ValidateStock(c *gin.Context) {
	cart, ok := ctrl.currentCart(c)
	if !ok {
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
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "All items in stock"})
}

// MergeCart godoc
// @Summary Merge the anonymous cart into the user's cart
// @Description Called after login with the pre-login session id.
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Param X-Session-Id header string true "Anonymous cart session"
// @Success 200 {object} models.Response
// @Router /cart/merge [post]
func (ctrl *CartController) MergeCart(c *gin.Context) {
	userID := c.GetInt("user_id")
	sessionID := c.GetHeader("X-Session-Id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "X-Session-Id header required"})
		return
	}

	cart, err := ctrl.cartService.MergeSessionCart(userID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Carts merged", Data: cart})
}
