package order

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Write is a single relational insert produced by Plan. It is either a
// HeaderInsert or an ItemInsert.
type Write interface {
	write()
}

// HeaderInsert inserts the orders row.
type HeaderInsert struct {
	OrderID     string
	UserID      string
	TotalAmount decimal.Decimal
}

// ItemInsert inserts one order_items row.
type ItemInsert struct {
	ID        string
	OrderID   string
	Position  int
	ProductID string
	Quantity  int
}

func (HeaderInsert) write() {}
func (ItemInsert) write()   {}

// ItemID returns the synthesized identifier of the item at position pos.
// It is positional, so rewriting an order requires deleting its items first.
func ItemID(orderID string, pos int) string {
	return orderID + "_" + strconv.Itoa(pos)
}

// Plan decomposes o into the inserts that persist it: the header first,
// then one insert per item in list order.
func Plan(o *Order) []Write {
	plan := make([]Write, 0, 1+len(o.Items))
	plan = append(plan, HeaderInsert{
		OrderID:     o.ID,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount,
	})
	for i, it := range o.Items {
		plan = append(plan, ItemInsert{
			ID:        ItemID(o.ID, i),
			OrderID:   o.ID,
			Position:  i,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return plan
}
