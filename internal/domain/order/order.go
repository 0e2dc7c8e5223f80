package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order lookups and writes.
var (
	ErrNotFound  = errors.New("order not found")
	ErrMissingID = errors.New("order id required")
)

// Order is a customer order together with the line items it owns.
// An order with no items is valid and is not the same as a missing order.
type Order struct {
	ID          string
	UserID      string
	TotalAmount decimal.Decimal
	Items       []LineItem
}

// LineItem is one product and quantity entry owned by exactly one order.
type LineItem struct {
	ProductID string
	Quantity  int
}

// Repository defines persistence operations for orders.
type Repository interface {
	List(ctx context.Context) ([]Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// GetByID returns ErrNotFound when no order header matches id.
	GetByID(ctx context.Context, id string) (*Order, error)
	Create(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id string) error
}
