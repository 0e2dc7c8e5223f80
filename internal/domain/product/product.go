package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  string
	ImageURL    string
}

// Category groups products in the catalog.
type Category struct {
	ID   string
	Name string
}

// Repository defines read operations for the product catalog.
type Repository interface {
	// List returns every product, or only those in categoryID when it is
	// not empty.
	List(ctx context.Context, categoryID string) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	// Random returns an arbitrary product. The distribution is up to the store.
	Random(ctx context.Context) (*Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
}
