package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"shopmart/models"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart            = errors.New("cannot create an order from an empty cart")
	ErrOrderNotCancellable  = errors.New("order can no longer be cancelled")
	ErrUnknownOrderStatus   = errors.New("unknown order status")
	ErrUnknownPaymentStatus = errors.New("unknown payment status")
	ErrRefundExceedsTotal   = errors.New("refund amount exceeds order total")
	ErrInvalidRefundAmount  = errors.New("refund amount must be positive")
)

type OrderStore interface {
	Create(order *models.Order) error
	FindByID(id int) (*models.Order, error)
	FindByUser(userID, page, limit int) ([]models.Order, int, error)
	FindAll(page, limit int, status, search string) ([]models.Order, int, error)
	Update(order *models.Order) error
}

// Mailer sends a rendered named template; implemented by EmailService.
type Mailer interface {
	SendTemplate(name, locale, to string, variables map[string]string) error
}

type RecipientLookup interface {
	GetUserWithProfile(id int) (*models.UserWithProfile, error)
}

type CartClearer interface {
	ClearCart(cart *models.Cart) error
}

type OrderService struct {
	orders OrderStore
	users  RecipientLookup
	carts  CartClearer
	mailer Mailer
	locale string
}

func NewOrderService(orders OrderStore, users RecipientLookup, carts CartClearer, mailer Mailer, locale string) *OrderService {
	return &OrderService{orders: orders, users: users, carts: carts, mailer: mailer, locale: locale}
}

var paymentStatuses = map[string]bool{
	models.PaymentStatusPending:       true,
	models.PaymentStatusPaid:          true,
	models.PaymentStatusRefunded:      true,
	models.PaymentStatusPartialRefund: true,
}

// CreateOrderFromCart snapshots the cart into an immutable order: addresses,
// totals and one OrderItem per cart line. The source cart is cleared and a
// confirmation email is attempted; email failure never fails the order.
func (s *OrderService) CreateOrderFromCart(cart *models.Cart, userID int, billingAddress, shippingAddress, paymentMethod, shippingMethod string) (*models.Order, error) {
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if shippingAddress == "" {
		shippingAddress = billingAddress
	}

	order := &models.Order{
		OrderNumber:     newOrderNumber(),
		UserID:          userID,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentMethod:   paymentMethod,
		ShippingMethod:  shippingMethod,
		BillingAddress:  billingAddress,
		ShippingAddress: shippingAddress,
		Subtotal:        cart.Subtotal,
		TaxAmount:       cart.TaxAmount,
		ShippingCost:    cart.ShippingCost,
		DiscountAmount:  cart.DiscountAmount,
		Total:           cart.Total,
	}
	for i := range cart.Items {
		item := &cart.Items[i]
		order.Items = append(order.Items, models.OrderItem{
			ProductID:     item.ProductID,
			VariantID:     item.VariantID,
			ProductName:   item.ProductName,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			CustomOptions: item.CustomOptions,
		})
	}

	if err := s.orders.Create(order); err != nil {
		return nil, err
	}

	if err := s.carts.ClearCart(cart); err != nil {
		log.Printf("failed to clear cart %d after checkout: %v", cart.ID, err)
	}

	s.sendOrderEmail(order, "order_confirmation", map[string]string{
		"order_number": order.OrderNumber,
		"total":        fmt.Sprintf("%.2f", order.Total),
	})

	return order, nil
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

// UpdatePaymentStatus records the gateway's verdict. A successful payment on
// a still-pending order implicitly confirms it.
func (s *OrderService) UpdatePaymentStatus(order *models.Order, status string, transactionID *string) error {
	if !paymentStatuses[status] {
		return fmt.Errorf("%w: %s", ErrUnknownPaymentStatus, status)
	}

	order.PaymentStatus = status
	if transactionID != nil {
		order.TransactionID = transactionID
	}

	autoConfirmed := false
	if status == models.PaymentStatusPaid && order.Status == models.OrderStatusPending {
		order.Status = models.OrderStatusConfirmed
		autoConfirmed = true
	}

	if err := s.orders.Update(order); err != nil {
		return err
	}

	if autoConfirmed {
		s.sendOrderEmail(order, "order_status_changed", map[string]string{
			"order_number": order.OrderNumber,
			"old_status":   models.OrderStatusPending,
			"new_status":   order.Status,
		})
	}
	return nil
}

func (s *OrderService) UpdateOrderStatus(order *models.Order, newStatus string, sendEmail bool) error {
	if !models.IsValidOrderStatus(newStatus) {
		return fmt.Errorf("%w: %s", ErrUnknownOrderStatus, newStatus)
	}

	oldStatus := order.Status
	order.Status = newStatus
	if err := s.orders.Update(order); err != nil {
		return err
	}

	if oldStatus != newStatus && sendEmail {
		s.sendOrderEmail(order, "order_status_changed", map[string]string{
			"order_number": order.OrderNumber,
			"old_status":   oldStatus,
			"new_status":   newStatus,
		})
	}
	return nil
}

// CancelOrder is only permitted while the order is pending or confirmed.
func (s *OrderService) CancelOrder(order *models.Order, reason string) error {
	if !order.IsCancellable() {
		return ErrOrderNotCancellable
	}

	order.Status = models.OrderStatusCancelled
	if reason != "" {
		appendNote(order, "Cancellation reason: "+reason)
	}
	if err := s.orders.Update(order); err != nil {
		return err
	}

	s.sendOrderEmail(order, "order_cancelled", map[string]string{
		"order_number": order.OrderNumber,
		"reason":       reason,
	})
	return nil
}

// AddTrackingNumber stores the carrier's tracking id. A processing order
// auto-advances to shipped.
func (s *OrderService) AddTrackingNumber(order *models.Order, trackingNumber string) error {
	order.TrackingNumber = &trackingNumber
	if order.Status == models.OrderStatusProcessing {
		order.Status = models.OrderStatusShipped
	}
	if err := s.orders.Update(order); err != nil {
		return err
	}

	s.sendOrderEmail(order, "order_shipped", map[string]string{
		"order_number":    order.OrderNumber,
		"tracking_number": trackingNumber,
	})
	return nil
}

// ProcessRefund defaults to the full order total. A full refund moves both
// statuses to refunded; a partial one only marks the payment.
func (s *OrderService) ProcessRefund(order *models.Order, amount *float64) error {
	refund := order.Total
	if amount != nil {
		refund = *amount
	}
	if refund <= 0 {
		return ErrInvalidRefundAmount
	}
	if refund > order.Total {
		return ErrRefundExceedsTotal
	}

	if refund == order.Total {
		order.PaymentStatus = models.PaymentStatusRefunded
		order.Status = models.OrderStatusRefunded
	} else {
		order.PaymentStatus = models.PaymentStatusPartialRefund
	}
	appendNote(order, fmt.Sprintf("Refunded %.2f", refund))

	if err := s.orders.Update(order); err != nil {
		return err
	}

	s.sendOrderEmail(order, "order_refunded", map[string]string{
		"order_number": order.OrderNumber,
		"amount":       fmt.Sprintf("%.2f", refund),
	})
	return nil
}

func (s *OrderService) GetOrder(id int) (*models.Order, error) {
	return s.orders.FindByID(id)
}

func (s *OrderService) GetUserOrders(userID, page, limit int) ([]models.Order, int, error) {
	return s.orders.FindByUser(userID, page, limit)
}

func (s *OrderService) GetAllOrders(page, limit int, status, search string) ([]models.Order, int, error) {
	return s.orders.FindAll(page, limit, status, search)
}

func appendNote(order *models.Order, note string) {
	if order.Notes == nil || *order.Notes == "" {
		order.Notes = &note
		return
	}
	combined := *order.Notes + "\n" + note
	order.Notes = &combined
}

// sendOrderEmail is best effort: failures are logged and swallowed so the
// state mutation that triggered the email always sticks.
func (s *OrderService) sendOrderEmail(order *models.Order, template string, variables map[string]string) {
	user, err := s.users.GetUserWithProfile(order.UserID)
	if err != nil {
		log.Printf("order %s: could not resolve recipient: %v", order.OrderNumber, err)
		return
	}
	variables["customer_name"] = user.FullName

	if err := s.mailer.SendTemplate(template, s.locale, user.Email, variables); err != nil {
		log.Printf("order %s: %s email failed: %v", order.OrderNumber, template, err)
	}
}
