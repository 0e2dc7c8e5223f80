package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/storefront-api/internal/domain/product"
)

const (
	productColumns = `id, name, description, price, stock, COALESCE(category_id, ''), image_url`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY id`

	listProductsByCategorySQL = `SELECT ` + productColumns + ` FROM products
		WHERE category_id = $1 ORDER BY id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getRandomProductSQL = `SELECT ` + productColumns + ` FROM products ORDER BY random() LIMIT 1`

	listCategoriesSQL = `SELECT id, name FROM categories ORDER BY id`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	db DB
}

// NewProductRepository returns a ProductRepository that uses the given connection.
func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// List returns all products ordered by ID, restricted to categoryID when it
// is not empty.
func (r *ProductRepository) List(ctx context.Context, categoryID string) ([]product.Product, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if categoryID == "" {
		rows, err = r.db.Query(ctx, listProductsSQL)
	} else {
		rows, err = r.db.Query(ctx, listProductsByCategorySQL, categoryID)
	}
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.db.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return collectOneProduct(rows, fmt.Sprintf("getting product %q", id))
}

// Random returns an arbitrary product, or product.ErrNotFound for an empty
// catalog.
func (r *ProductRepository) Random(ctx context.Context) (*product.Product, error) {
	rows, err := r.db.Query(ctx, getRandomProductSQL)
	if err != nil {
		return nil, fmt.Errorf("getting random product: %w", err)
	}
	return collectOneProduct(rows, "getting random product")
}

// ListCategories returns every category ordered by ID.
func (r *ProductRepository) ListCategories(ctx context.Context) ([]product.Category, error) {
	rows, err := r.db.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (product.Category, error) {
		var c product.Category
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

func collectOneProduct(rows pgx.Rows, op string) (*product.Product, error) {
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CategoryID, &p.ImageURL,
	)
	return p, err
}
