package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/storefront-api/internal/domain/order"
)

const (
	orderJoinSQL = `SELECT o.id, o.user_id, o.total_amount, oi.product_id, oi.quantity
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id`

	listOrdersSQL = orderJoinSQL + `
		ORDER BY o.id, oi.position`

	listOrdersByUserSQL = orderJoinSQL + `
		WHERE o.user_id = $1
		ORDER BY o.id, oi.position`

	getOrderByIDSQL = orderJoinSQL + `
		WHERE o.id = $1
		ORDER BY oi.position`

	insertOrderSQL = `INSERT INTO orders (id, user_id, total_amount) VALUES ($1, $2, $3)`

	insertOrderItemSQL = `INSERT INTO order_items (id, order_id, position, product_id, quantity)
		VALUES ($1, $2, $3, $4, $5)`

	deleteOrderItemsSQL = `DELETE FROM order_items WHERE order_id = $1`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderConfig controls how multi-statement order writes are executed.
type OrderConfig struct {
	// AtomicWrites runs Create and Delete inside a single transaction.
	// When false, statements are issued one by one and a failure part way
	// leaves the earlier statements applied.
	AtomicWrites bool
}

// OrderRepository implements order.Repository backed by PostgreSQL. Orders
// are stored as one orders row plus one order_items row per line item.
type OrderRepository struct {
	db     DB
	atomic bool
}

// NewOrderRepository returns an OrderRepository that uses the given connection.
func NewOrderRepository(db DB, cfg OrderConfig) *OrderRepository {
	return &OrderRepository{db: db, atomic: cfg.AtomicWrites}
}

// List returns every order ordered by ID.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.queryRows(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return order.Decode(rows), nil
}

// ListByUser returns the orders placed by userID ordered by ID.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.queryRows(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders of user %q: %w", userID, err)
	}
	return order.Decode(rows), nil
}

// GetByID returns the order with its items, or order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.queryRows(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	o, ok := order.DecodeOne(rows)
	if !ok {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

// Create inserts the order header and then each item in list order. The
// first failing statement stops the sequence and its error is returned.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	if o.ID == "" {
		return order.ErrMissingID
	}
	plan := order.Plan(o)
	return inTx(ctx, r.db, r.atomic, func(db DB) error {
		return applyPlan(ctx, db, plan)
	})
}

// Delete removes the order's items and then the order row. Deleting an
// unknown order is not an error.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	return inTx(ctx, r.db, r.atomic, func(db DB) error {
		if _, err := db.Exec(ctx, deleteOrderItemsSQL, id); err != nil {
			return fmt.Errorf("deleting items of order %q: %w", id, err)
		}
		if _, err := db.Exec(ctx, deleteOrderSQL, id); err != nil {
			return fmt.Errorf("deleting order %q: %w", id, err)
		}
		return nil
	})
}

func (r *OrderRepository) queryRows(ctx context.Context, sql string, args ...any) ([]order.Row, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanOrderRow)
}

func applyPlan(ctx context.Context, db DB, plan []order.Write) error {
	for _, w := range plan {
		switch w := w.(type) {
		case order.HeaderInsert:
			if _, err := db.Exec(ctx, insertOrderSQL, w.OrderID, w.UserID, w.TotalAmount); err != nil {
				return fmt.Errorf("inserting order %q: %w", w.OrderID, err)
			}
		case order.ItemInsert:
			if _, err := db.Exec(ctx, insertOrderItemSQL,
				w.ID, w.OrderID, w.Position, w.ProductID, w.Quantity,
			); err != nil {
				return fmt.Errorf("inserting order item %q: %w", w.ID, err)
			}
		default:
			return errors.Errorf("unexpected write %T", w)
		}
	}
	return nil
}

func scanOrderRow(row pgx.CollectableRow) (order.Row, error) {
	var r order.Row
	err := row.Scan(&r.ID, &r.UserID, &r.TotalAmount, &r.ProductID, &r.Quantity)
	return r, err
}
