package repositories

import (
	"context"
	"errors"
	"time"

	"shopmart/config"
	"shopmart/models"

	"github.com/jackc/pgx/v5"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

// Create persists the order and its items in one transaction.
func (r *OrderRepository) Create(order *models.Order) error {
	ctx := context.Background()
	tx, err := config.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	query := `
		INSERT INTO orders (order_number, user_id, status, payment_status, payment_method, shipping_method,
		                    billing_address, shipping_address, subtotal, tax_amount, shipping_cost,
		                    discount_amount, total, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		order.OrderNumber, order.UserID, order.Status, order.PaymentStatus,
		order.PaymentMethod, order.ShippingMethod, order.BillingAddress, order.ShippingAddress,
		order.Subtotal, order.TaxAmount, order.ShippingCost, order.DiscountAmount, order.Total,
		order.Notes, now, now,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, variant_id, product_name, quantity, unit_price, custom_options)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		if err := tx.QueryRow(ctx, itemQuery,
			order.ID, item.ProductID, item.VariantID, item.ProductName,
			item.Quantity, item.UnitPrice, item.CustomOptions,
		).Scan(&item.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

const orderColumns = `id, order_number, user_id, status, payment_status, payment_method, shipping_method,
	transaction_id, tracking_number, billing_address, shipping_address,
	subtotal, tax_amount, shipping_cost, discount_amount, total, notes, created_at, updated_at`

func (r *OrderRepository) scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.PaymentStatus,
		&o.PaymentMethod, &o.ShippingMethod, &o.TransactionID, &o.TrackingNumber,
		&o.BillingAddress, &o.ShippingAddress,
		&o.Subtotal, &o.TaxAmount, &o.ShippingCost, &o.DiscountAmount, &o.Total,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) FindByID(id int) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := r.scanOrder(config.DB.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, err
	}
	order.Items, err = r.GetItems(order.ID)
	return order, err
}

func (r *OrderRepository) GetItems(orderID int) ([]models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, variant_id, product_name, quantity, unit_price,
		       COALESCE(custom_options, '{}'::jsonb)
		FROM order_items WHERE order_id = $1 ORDER BY id
	`
	rows, err := config.DB.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.VariantID,
			&item.ProductName, &item.Quantity, &item.UnitPrice, &item.CustomOptions); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *OrderRepository) FindByUser(userID, page, limit int) ([]models.Order, int, error) {
	offset := (page - 1) * limit

	var total int
	if err := config.DB.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := config.DB.Query(context.Background(), query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *order)
	}
	return orders, total, rows.Err()
}

func (r *OrderRepository) FindAll(page, limit int, status, search string) ([]models.Order, int, error) {
	offset := (page - 1) * limit

	countQuery := `
		SELECT COUNT(*) FROM orders
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR order_number ILIKE '%' || $2 || '%')
	`
	var total int
	if err := config.DB.QueryRow(context.Background(), countQuery, status, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR order_number ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`

	rows, err := config.DB.Query(context.Background(), query, status, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *order)
	}
	return orders, total, rows.Err()
}

// Update writes the mutable order fields; the financial snapshot and the
// item rows are immutable after creation.
func (r *OrderRepository) Update(order *models.Order) error {
	query := `
		UPDATE orders
		SET status = $1, payment_status = $2, transaction_id = $3, tracking_number = $4,
		    notes = $5, updated_at = $6
		WHERE id = $7
	`
	_, err := config.DB.Exec(context.Background(), query,
		order.Status, order.PaymentStatus, order.TransactionID, order.TrackingNumber,
		order.Notes, time.Now(), order.ID)
	return err
}
