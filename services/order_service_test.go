package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmart/models"
)

func newOrderFixture(t *testing.T) (*OrderService, *memOrderStore, *recordingMailer, *stubCartClearer) {
	t.Helper()
	store := newMemOrderStore()
	mailer := &recordingMailer{}
	clearer := &stubCartClearer{}
	users := &stubUsers{user: &models.UserWithProfile{ID: 3, Email: "jo@example.com", FullName: "Jo Doe"}}
	return NewOrderService(store, users, clearer, mailer, "en"), store, mailer, clearer
}

func filledCart() *models.Cart {
	return &models.Cart{
		ID: 11,
		Items: []models.CartItem{
			{ID: 1, ProductID: 1, ProductName: "Mug", Quantity: 2, UnitPrice: 10.00},
			{ID: 2, ProductID: 2, ProductName: "Poster", Quantity: 1, UnitPrice: 25.00},
		},
		Subtotal:     45.00,
		TaxAmount:    4.50,
		ShippingCost: 9.99,
		Total:        59.49,
	}
}

func TestCreateOrderFromCart(t *testing.T) {
	t.Run("empty cart is rejected", func(t *testing.T) {
		svc, _, _, _ := newOrderFixture(t)
		_, err := svc.CreateOrderFromCart(&models.Cart{}, 3, "addr", "", "card", "standard")
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("snapshots items and totals", func(t *testing.T) {
		svc, store, mailer, clearer := newOrderFixture(t)
		cart := filledCart()

		order, err := svc.CreateOrderFromCart(cart, 3, "12 Main St", "", "card", "standard")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
		assert.Equal(t, "12 Main St", order.ShippingAddress)
		assert.Equal(t, 59.49, order.Total)
		require.Len(t, order.Items, 2)
		assert.Equal(t, "Mug", order.Items[0].ProductName)
		assert.Equal(t, 2, order.Items[0].Quantity)
		assert.Equal(t, 10.00, order.Items[0].UnitPrice)

		assert.Equal(t, []int{11}, clearer.cleared)

		stored, err := store.FindByID(order.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Items, 2)

		require.Len(t, mailer.calls, 1)
		assert.Equal(t, "order_confirmation", mailer.calls[0].Template)
		assert.Equal(t, "jo@example.com", mailer.calls[0].To)
		assert.Equal(t, "59.49", mailer.calls[0].Variables["total"])
		assert.Equal(t, "Jo Doe", mailer.calls[0].Variables["customer_name"])
	})

	t.Run("email failure does not fail the order", func(t *testing.T) {
		svc, store, mailer, _ := newOrderFixture(t)
		mailer.err = errors.New("smtp down")

		order, err := svc.CreateOrderFromCart(filledCart(), 3, "addr", "", "card", "standard")
		require.NoError(t, err)
		_, err = store.FindByID(order.ID)
		assert.NoError(t, err)
	})
}

func TestUpdatePaymentStatus(t *testing.T) {
	t.Run("paid confirms a pending order", func(t *testing.T) {
		svc, store, mailer, _ := newOrderFixture(t)
		order, err := svc.CreateOrderFromCart(filledCart(), 3, "addr", "", "card", "standard")
		require.NoError(t, err)
		mailer.calls = nil

		txn := "txn-123"
		require.NoError(t, svc.UpdatePaymentStatus(order, models.PaymentStatusPaid, &txn))
		assert.Equal(t, models.OrderStatusConfirmed, order.Status)
		require.NotNil(t, order.TransactionID)
		assert.Equal(t, "txn-123", *order.TransactionID)

		stored, _ := store.FindByID(order.ID)
		assert.Equal(t, models.OrderStatusConfirmed, stored.Status)
		assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)

		require.Len(t, mailer.calls, 1)
		assert.Equal(t, "order_status_changed", mailer.calls[0].Template)
		assert.Equal(t, models.OrderStatusConfirmed, mailer.calls[0].Variables["new_status"])
	})

	t.Run("paid on a shipped order does not touch the status", func(t *testing.T) {
		svc, _, mailer, _ := newOrderFixture(t)
		order, err := svc.CreateOrderFromCart(filledCart(), 3, "addr", "", "card", "standard")
		require.NoError(t, err)
		order.Status = models.OrderStatusShipped
		mailer.calls = nil

		require.NoError(t, svc.UpdatePaymentStatus(order, models.PaymentStatusPaid, nil))
		assert.Equal(t, models.OrderStatusShipped, order.Status)
		assert.Empty(t, mailer.calls)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		svc, _, _, _ := newOrderFixture(t)
		order := &models.Order{Status: models.OrderStatusPending}
		err := svc.UpdatePaymentStatus(order, "settled", nil)
		assert.ErrorIs(t, err, ErrUnknownPaymentStatus)
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	svc, _, mailer, _ := newOrderFixture(t)
	order, err := svc.CreateOrderFromCart(filledCart(), 3, "addr", "", "card", "standard")
	require.NoError(t, err)
	mailer.calls = nil

	require.NoError(t, svc.UpdateOrderStatus(order, models.OrderStatusProcessing, true))
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	require.Len(t, mailer.calls, 1)
	assert.Equal(t, models.OrderStatusPending, mailer.calls[0].Variables["old_status"])

	mailer.calls = nil
	require.NoError(t, svc.UpdateOrderStatus(order, models.OrderStatusProcessing, true))
	assert.Empty(t, mailer.calls, "unchanged status should not notify")

	err = svc.UpdateOrderStatus(order, "archived", true)
	assert.ErrorIs(t, err, ErrUnknownOrderStatus)
}

func TestCancelOrder(t *testing.T) {
	t.Run("pending and confirmed orders cancel", func(t *testing.T) {
		for _, status := range []string{models.OrderStatusPending, models.OrderStatusConfirmed} {
			svc, _, mailer, _ := newOrderFixture(t)
			order, err := svc.CreateOrderFromCart(filledCart(), 3, "addr", "", "card", "standard")
			require.NoError(t, err)
			order.Status = status
			mailer.calls = nil

			require.NoError(t, svc.CancelOrder(order, "changed my mind"))
			assert.Equal(t, models.OrderStatusCancelled, order.Status)
			require.NotNil(t, order.Notes)
			assert.Contains(t, *order.Notes, "Cancellation reason: changed my mind")
			require.Len(t, mailer.calls, 1)
			assert.Equal(t, "order_cancelled", mailer.calls[0].Template)
		}
	})

	t.Run("shipped orders cannot cancel", func(t *testing.T) {
		svc, _, _, _ := newOrderFixture(t)
		order := &models.Order{Status: models.OrderStatusShipped}
		err := svc.CancelOrder(order, "")
		assert.ErrorIs(t, err, ErrOrderNotCancellable)
		assert.Equal(t, models.OrderStatusShipped, order.Status)
	})
}

func TestAddTrackingNumber(t *testing.T) {
	svc, _, mailer, _ := newOrderFixture(t)
	order, err := svc.CreateOrderFromCart(filledCart(), 3, "addr", "", "card", "standard")
	require.NoError(t, err)
	order.Status = models.OrderStatusProcessing
	mailer.calls = nil

	require.NoError(t, svc.AddTrackingNumber(order, "TRACK-9"))
	assert.Equal(t, models.OrderStatusShipped, order.Status)
	require.NotNil(t, order.TrackingNumber)
	assert.Equal(t, "TRACK-9", *order.TrackingNumber)
	require.Len(t, mailer.calls, 1)
	assert.Equal(t, "order_shipped", mailer.calls[0].Template)
	assert.Equal(t, "TRACK-9", mailer.calls[0].Variables["tracking_number"])
}

func TestProcessRefund(t *testing.T) {
	newPaidOrder := func(t *testing.T) (*OrderService, *models.Order, *recordingMailer) {
		svc, _, mailer, _ := newOrderFixture(t)
		order, err := svc.CreateOrderFromCart(filledCart(), 3, "addr", "", "card", "standard")
		require.NoError(t, err)
		order.Status = models.OrderStatusDelivered
		order.PaymentStatus = models.PaymentStatusPaid
		mailer.calls = nil
		return svc, order, mailer
	}

	t.Run("nil amount refunds in full", func(t *testing.T) {
		svc, order, mailer := newPaidOrder(t)
		require.NoError(t, svc.ProcessRefund(order, nil))
		assert.Equal(t, models.PaymentStatusRefunded, order.PaymentStatus)
		assert.Equal(t, models.OrderStatusRefunded, order.Status)
		require.NotNil(t, order.Notes)
		assert.Contains(t, *order.Notes, "Refunded 59.49")
		require.Len(t, mailer.calls, 1)
		assert.Equal(t, "order_refunded", mailer.calls[0].Template)
	})

	t.Run("partial refund only marks the payment", func(t *testing.T) {
		svc, order, _ := newPaidOrder(t)
		amount := 10.00
		require.NoError(t, svc.ProcessRefund(order, &amount))
		assert.Equal(t, models.PaymentStatusPartialRefund, order.PaymentStatus)
		assert.Equal(t, models.OrderStatusDelivered, order.Status)
	})

	t.Run("refund above the total is rejected", func(t *testing.T) {
		svc, order, mailer := newPaidOrder(t)
		amount := order.Total + 0.01
		err := svc.ProcessRefund(order, &amount)
		assert.ErrorIs(t, err, ErrRefundExceedsTotal)
		assert.Empty(t, mailer.calls)
	})

	t.Run("zero and negative amounts are rejected", func(t *testing.T) {
		svc, order, mailer := newPaidOrder(t)
		for _, amount := range []float64{0, -5.00} {
			err := svc.ProcessRefund(order, &amount)
			assert.ErrorIs(t, err, ErrInvalidRefundAmount)
		}
		assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
		assert.Nil(t, order.Notes)
		assert.Empty(t, mailer.calls)
	})
}
