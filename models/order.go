package models

import "time"

const (
	OrderStatusPending       = "pending"
	OrderStatusConfirmed     = "confirmed"
	OrderStatusProcessing    = "processing"
	OrderStatusShipped       = "shipped"
	OrderStatusDelivered     = "delivered"
	OrderStatusCancelled     = "cancelled"
	OrderStatusRefunded      = "refunded"
	OrderStatusPartialRefund = "partial_refund"

	PaymentStatusPending       = "pending"
	PaymentStatusPaid          = "paid"
	PaymentStatusRefunded      = "refunded"
	PaymentStatusPartialRefund = "partial_refund"
)

var orderStatuses = map[string]bool{
	OrderStatusPending:       true,
	OrderStatusConfirmed:     true,
	OrderStatusProcessing:    true,
	OrderStatusShipped:       true,
	OrderStatusDelivered:     true,
	OrderStatusCancelled:     true,
	OrderStatusRefunded:      true,
	OrderStatusPartialRefund: true,
}

func IsValidOrderStatus(status string) bool {
	return orderStatuses[status]
}

type Order struct {
	ID              int         `json:"id"`
	OrderNumber     string      `json:"order_number"`
	UserID          int         `json:"user_id"`
	Status          string      `json:"status"`
	PaymentStatus   string      `json:"payment_status"`
	PaymentMethod   string      `json:"payment_method"`
	ShippingMethod  string      `json:"shipping_method"`
	TransactionID   *string     `json:"transaction_id,omitempty"`
	TrackingNumber  *string     `json:"tracking_number,omitempty"`
	BillingAddress  string      `json:"billing_address"`
	ShippingAddress string      `json:"shipping_address"`
	Subtotal        float64     `json:"subtotal"`
	TaxAmount       float64     `json:"tax_amount"`
	ShippingCost    float64     `json:"shipping_cost"`
	DiscountAmount  float64     `json:"discount_amount"`
	Total           float64     `json:"total"`
	Notes           *string     `json:"notes,omitempty"`
	Items           []OrderItem `json:"items,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// IsCancellable reports whether the order may still be cancelled.
// Once an order is processing or beyond, cancellation requires a refund flow.
func (o *Order) IsCancellable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

type OrderItem struct {
	ID            int               `json:"id"`
	OrderID       int               `json:"order_id"`
	ProductID     int               `json:"product_id"`
	VariantID     *int              `json:"variant_id,omitempty"`
	ProductName   string            `json:"product_name"`
	Quantity      int               `json:"quantity"`
	UnitPrice     float64           `json:"unit_price"`
	CustomOptions map[string]string `json:"custom_options,omitempty"`
}

func (i *OrderItem) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}
