package repositories

import (
	"context"
	"time"

	"shopmart/config"
	"shopmart/models"
)

type ProductRepository struct{}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

func (r *ProductRepository) GetAllCategories() ([]models.Category, error) {
	query := `SELECT id, name, is_active, created_at FROM categories WHERE is_active = true ORDER BY name`

	rows, err := config.DB.Query(context.Background(), query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.IsActive, &cat.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

func (r *ProductRepository) CreateProduct(product *models.Product) error {
	query := `
		INSERT INTO products (name, description, category_id, price, stock, image_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, true, $7, $8)
		RETURNING id, created_at, updated_at
	`
	now := time.Now()
	return config.DB.QueryRow(context.Background(), query,
		product.Name, product.Description, product.CategoryID, product.Price, product.Stock, product.ImageURL, now, now,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

func (r *ProductRepository) GetAllProducts(page, limit int, search string) ([]models.Product, int, error) {
	offset := (page - 1) * limit

	countQuery := `SELECT COUNT(*) FROM products WHERE is_active = true AND ($1 = '' OR name ILIKE '%' || $1 || '%')`
	var total int
	if err := config.DB.QueryRow(context.Background(), countQuery, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, name, description, category_id, price, stock, image_url, is_active, created_at, updated_at
	          FROM products
	          WHERE is_active = true AND ($1 = '' OR name ILIKE '%' || $1 || '%')
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := config.DB.Query(context.Background(), query, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.Price, &p.Stock,
			&p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// ListActiveProducts returns a lightweight listing (id, name, updated_at) of
// every active product, used for sitemap generation.
func (r *ProductRepository) ListActiveProducts() ([]models.Product, error) {
	query := `SELECT id, name, updated_at FROM products WHERE is_active = true ORDER BY id`

	rows, err := config.DB.Query(context.Background(), query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) GetProductByID(id int) (*models.Product, error) {
	query := `SELECT id, name, description, category_id, price, stock, image_url, is_active, created_at, updated_at
	          FROM products WHERE id = $1`

	var p models.Product
	err := config.DB.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.Price, &p.Stock,
		&p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) GetVariantByID(id int) (*models.ProductVariant, error) {
	query := `SELECT id, product_id, name, price, stock, is_active, created_at
	          FROM product_variants WHERE id = $1`

	var v models.ProductVariant
	err := config.DB.QueryRow(context.Background(), query, id).Scan(
		&v.ID, &v.ProductID, &v.Name, &v.Price, &v.Stock, &v.IsActive, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ProductRepository) GetVariantsByProduct(productID int) ([]models.ProductVariant, error) {
	query := `SELECT id, product_id, name, price, stock, is_active, created_at
	          FROM product_variants WHERE product_id = $1 AND is_active = true ORDER BY name`

	rows, err := config.DB.Query(context.Background(), query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	variants := []models.ProductVariant{}
	for rows.Next() {
		var v models.ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.Price, &v.Stock, &v.IsActive, &v.CreatedAt); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

func (r *ProductRepository) UpdateProduct(product *models.Product) error {
	query := `UPDATE products SET name = $1, description = $2, category_id = $3, price = $4,
	          stock = $5, image_url = $6, is_active = $7, updated_at = $8 WHERE id = $9`
	_, err := config.DB.Exec(context.Background(), query,
		product.Name, product.Description, product.CategoryID, product.Price,
		product.Stock, product.ImageURL, product.IsActive, time.Now(), product.ID,
	)
	return err
}

func (r *ProductRepository) DeleteProduct(id int) error {
	query := `UPDATE products SET is_active = false WHERE id = $1`
	_, err := config.DB.Exec(context.Background(), query, id)
	return err
}
