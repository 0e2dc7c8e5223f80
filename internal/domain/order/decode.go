package order

import "github.com/shopspring/decimal"

// Row is one row of the orders LEFT JOIN order_items result. ProductID and
// Quantity are both nil when the order has no items.
type Row struct {
	ID          string
	UserID      string
	TotalAmount decimal.Decimal
	ProductID   *string
	Quantity    *int32
}

func (r Row) header() Order {
	return Order{
		ID:          r.ID,
		UserID:      r.UserID,
		TotalAmount: r.TotalAmount,
		Items:       []LineItem{},
	}
}

func (r Row) item() (LineItem, bool) {
	if r.ProductID == nil {
		return LineItem{}, false
	}
	it := LineItem{ProductID: *r.ProductID}
	if r.Quantity != nil {
		it.Quantity = int(*r.Quantity)
	}
	return it, true
}

// Decode groups flat join rows into orders. Orders come out in the order
// their id was first seen and items keep their row order. Rows of one order
// need not be adjacent.
func Decode(rows []Row) []Order {
	orders := make([]Order, 0)
	index := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.ID]
		if !ok {
			i = len(orders)
			index[r.ID] = i
			orders = append(orders, r.header())
		}
		if it, ok := r.item(); ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return orders
}

// DecodeOne builds a single order from rows already scoped to one order id.
// The header comes from the first row. It reports false when rows is empty.
func DecodeOne(rows []Row) (Order, bool) {
	if len(rows) == 0 {
		return Order{}, false
	}
	o := rows[0].header()
	for _, r := range rows {
		if it, ok := r.item(); ok {
			o.Items = append(o.Items, it)
		}
	}
	return o, true
}
