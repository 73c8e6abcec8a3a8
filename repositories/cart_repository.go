package repositories

import (
	"context"
	"errors"
	"time"

	"shopmart/config"
	"shopmart/models"

	"github.com/jackc/pgx/v5"
)

var ErrCartNotFound = errors.New("cart not found")

type CartRepository struct{}

func NewCartRepository() *CartRepository {
	return &CartRepository{}
}

const cartColumns = `id, user_id, session_id, coupon_code, subtotal, tax_amount, shipping_cost, discount_amount, total, created_at, updated_at`

func (r *CartRepository) scanCart(row pgx.Row) (*models.Cart, error) {
	var c models.Cart
	err := row.Scan(&c.ID, &c.UserID, &c.SessionID, &c.CouponCode,
		&c.Subtotal, &c.TaxAmount, &c.ShippingCost, &c.DiscountAmount, &c.Total,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CartRepository) FindByUserID(userID int) (*models.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE user_id = $1`
	cart, err := r.scanCart(config.DB.QueryRow(context.Background(), query, userID))
	if err != nil {
		return nil, err
	}
	cart.Items, err = r.GetItems(cart.ID)
	return cart, err
}

func (r *CartRepository) FindBySessionID(sessionID string) (*models.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE session_id = $1`
	cart, err := r.scanCart(config.DB.QueryRow(context.Background(), query, sessionID))
	if err != nil {
		return nil, err
	}
	cart.Items, err = r.GetItems(cart.ID)
	return cart, err
}

func (r *CartRepository) FindByID(id int) (*models.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE id = $1`
	cart, err := r.scanCart(config.DB.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, err
	}
	cart.Items, err = r.GetItems(cart.ID)
	return cart, err
}

func (r *CartRepository) Create(cart *models.Cart) error {
	query := `
		INSERT INTO carts (user_id, session_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	now := time.Now()
	return config.DB.QueryRow(context.Background(), query,
		cart.UserID, cart.SessionID, now, now,
	).Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
}

func (r *CartRepository) GetItems(cartID int) ([]models.CartItem, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.variant_id, p.name,
		       ci.quantity, ci.unit_price, COALESCE(ci.custom_options, '{}'::jsonb),
		       ci.created_at, ci.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at, ci.id
	`
	rows, err := config.DB.Query(context.Background(), query, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.VariantID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.CustomOptions,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *CartRepository) GetItemByID(itemID int) (*models.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, variant_id, quantity, unit_price,
		       COALESCE(custom_options, '{}'::jsonb), created_at, updated_at
		FROM cart_items WHERE id = $1
	`
	var item models.CartItem
	err := config.DB.QueryRow(context.Background(), query, itemID).Scan(
		&item.ID, &item.CartID, &item.ProductID, &item.VariantID,
		&item.Quantity, &item.UnitPrice, &item.CustomOptions,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CartRepository) InsertItem(item *models.CartItem) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, variant_id, quantity, unit_price, custom_options, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	now := time.Now()
	return config.DB.QueryRow(context.Background(), query,
		item.CartID, item.ProductID, item.VariantID, item.Quantity, item.UnitPrice, item.CustomOptions, now, now,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *CartRepository) UpdateItem(item *models.CartItem) error {
	query := `UPDATE cart_items SET quantity = $1, custom_options = $2, updated_at = $3 WHERE id = $4`
	_, err := config.DB.Exec(context.Background(), query,
		item.Quantity, item.CustomOptions, time.Now(), item.ID)
	return err
}

func (r *CartRepository) DeleteItem(itemID int) error {
	_, err := config.DB.Exec(context.Background(), `DELETE FROM cart_items WHERE id = $1`, itemID)
	return err
}

func (r *CartRepository) DeleteItems(cartID int) error {
	_, err := config.DB.Exec(context.Background(), `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

// MoveItems reassigns every item of one cart to another, used when a session
// cart is merged into the user's cart at login.
func (r *CartRepository) MoveItems(fromCartID, toCartID int) error {
	query := `UPDATE cart_items SET cart_id = $1, updated_at = $2 WHERE cart_id = $3`
	_, err := config.DB.Exec(context.Background(), query, toCartID, time.Now(), fromCartID)
	return err
}

func (r *CartRepository) UpdateTotals(cart *models.Cart) error {
	query := `
		UPDATE carts
		SET coupon_code = $1, subtotal = $2, tax_amount = $3, shipping_cost = $4,
		    discount_amount = $5, total = $6, updated_at = $7
		WHERE id = $8
	`
	_, err := config.DB.Exec(context.Background(), query,
		cart.CouponCode, cart.Subtotal, cart.TaxAmount, cart.ShippingCost,
		cart.DiscountAmount, cart.Total, time.Now(), cart.ID)
	return err
}

func (r *CartRepository) Delete(cartID int) error {
	_, err := config.DB.Exec(context.Background(), `DELETE FROM carts WHERE id = $1`, cartID)
	return err
}

// DeleteAbandoned removes carts untouched since the cutoff that hold no items.
func (r *CartRepository) DeleteAbandoned(cutoff time.Time) (int, error) {
	query := `
		DELETE FROM carts c
		WHERE c.updated_at < $1
		  AND NOT EXISTS (SELECT 1 FROM cart_items ci WHERE ci.cart_id = c.id)
	`
	tag, err := config.DB.Exec(context.Background(), query, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
