package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

func itemRow(id, userID string, total int64, productID string, qty int32) Row {
	return Row{
		ID:          id,
		UserID:      userID,
		TotalAmount: decimal.NewFromInt(total),
		ProductID:   &productID,
		Quantity:    &qty,
	}
}

func emptyRow(id, userID string, total int64) Row {
	return Row{
		ID:          id,
		UserID:      userID,
		TotalAmount: decimal.NewFromInt(total),
	}
}

// flatten is the inverse of Decode: one row per item, one null row per
// order without items.
func flatten(orders []Order) []Row {
	var rows []Row
	for _, o := range orders {
		if len(o.Items) == 0 {
			rows = append(rows, Row{ID: o.ID, UserID: o.UserID, TotalAmount: o.TotalAmount})
			continue
		}
		for _, it := range o.Items {
			productID := it.ProductID
			qty := int32(it.Quantity)
			rows = append(rows, Row{
				ID:          o.ID,
				UserID:      o.UserID,
				TotalAmount: o.TotalAmount,
				ProductID:   &productID,
				Quantity:    &qty,
			})
		}
	}
	return rows
}

type triple struct {
	orderID   string
	productID string
	quantity  int
}

func triples(rows []Row) []triple {
	out := make([]triple, 0, len(rows))
	for _, r := range rows {
		tr := triple{orderID: r.ID}
		if r.ProductID != nil {
			tr.productID = *r.ProductID
		}
		if r.Quantity != nil {
			tr.quantity = int(*r.Quantity)
		}
		out = append(out, tr)
	}
	return out
}

// --- Tests ---

func TestDecode_Empty(t *testing.T) {
	orders := Decode(nil)
	require.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestDecode_GroupsItemsPerOrder(t *testing.T) {
	rows := []Row{
		itemRow("o1", "u1", 30, "p1", 2),
		itemRow("o1", "u1", 30, "p2", 1),
		itemRow("o2", "u2", 5, "p3", 4),
	}

	orders := Decode(rows)
	require.Len(t, orders, 2)

	assert.Equal(t, "o1", orders[0].ID)
	assert.Equal(t, "u1", orders[0].UserID)
	assert.True(t, decimal.NewFromInt(30).Equal(orders[0].TotalAmount))
	assert.Equal(t, []LineItem{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}}, orders[0].Items)

	assert.Equal(t, "o2", orders[1].ID)
	assert.Equal(t, []LineItem{{ProductID: "p3", Quantity: 4}}, orders[1].Items)
}

func TestDecode_OrderWithoutItems(t *testing.T) {
	orders := Decode([]Row{emptyRow("o1", "u1", 0)})

	require.Len(t, orders, 1)
	assert.Equal(t, "o1", orders[0].ID)
	require.NotNil(t, orders[0].Items)
	assert.Empty(t, orders[0].Items)
}

func TestDecode_ItemCountsMatchRowCounts(t *testing.T) {
	rows := []Row{
		itemRow("a", "u1", 1, "p1", 1),
		itemRow("a", "u1", 1, "p2", 1),
		itemRow("a", "u1", 1, "p3", 1),
		itemRow("b", "u1", 1, "p1", 1),
		itemRow("c", "u2", 1, "p9", 7),
		itemRow("c", "u2", 1, "p8", 8),
	}

	orders := Decode(rows)
	require.Len(t, orders, 3)
	assert.Len(t, orders[0].Items, 3)
	assert.Len(t, orders[1].Items, 1)
	assert.Len(t, orders[2].Items, 2)
}

func TestDecode_FirstSeenOrder(t *testing.T) {
	rows := []Row{
		itemRow("z", "u1", 1, "p1", 1),
		emptyRow("a", "u1", 2),
		itemRow("m", "u1", 3, "p2", 1),
	}

	orders := Decode(rows)
	require.Len(t, orders, 3)
	assert.Equal(t, "z", orders[0].ID)
	assert.Equal(t, "a", orders[1].ID)
	assert.Equal(t, "m", orders[2].ID)
}

func TestDecode_MergesNonAdjacentRows(t *testing.T) {
	rows := []Row{
		itemRow("o1", "u1", 10, "p1", 1),
		itemRow("o2", "u1", 20, "p2", 2),
		itemRow("o1", "u1", 10, "p3", 3),
	}

	orders := Decode(rows)
	require.Len(t, orders, 2)
	assert.Equal(t, "o1", orders[0].ID)
	assert.Equal(t, []LineItem{{ProductID: "p1", Quantity: 1}, {ProductID: "p3", Quantity: 3}}, orders[0].Items)
	assert.Equal(t, []LineItem{{ProductID: "p2", Quantity: 2}}, orders[1].Items)
}

func TestDecode_NoCrossContamination(t *testing.T) {
	rows := []Row{
		itemRow("o1", "u1", 10, "p1", 1),
		emptyRow("o2", "u1", 0),
		itemRow("o3", "u2", 10, "p1", 5),
	}

	orders := Decode(rows)
	require.Len(t, orders, 3)
	assert.Equal(t, []LineItem{{ProductID: "p1", Quantity: 1}}, orders[0].Items)
	assert.Empty(t, orders[1].Items)
	assert.Equal(t, []LineItem{{ProductID: "p1", Quantity: 5}}, orders[2].Items)
}

func TestDecode_FlattenRoundTrip(t *testing.T) {
	rows := []Row{
		itemRow("o1", "u1", 30, "p1", 2),
		itemRow("o1", "u1", 30, "p2", 1),
		emptyRow("o2", "u1", 0),
		itemRow("o3", "u2", 12, "p5", 3),
		emptyRow("o4", "u3", 9),
	}

	orders := Decode(rows)
	assert.Len(t, orders, 4)
	assert.ElementsMatch(t, triples(rows), triples(flatten(orders)))
}

func TestDecodeOne(t *testing.T) {
	t.Run("empty is not found", func(t *testing.T) {
		_, ok := DecodeOne(nil)
		assert.False(t, ok)
	})

	t.Run("single null row is found with no items", func(t *testing.T) {
		o, ok := DecodeOne([]Row{emptyRow("o1", "u1", 0)})
		require.True(t, ok)
		assert.Equal(t, "o1", o.ID)
		require.NotNil(t, o.Items)
		assert.Empty(t, o.Items)
	})

	t.Run("collects items from every row", func(t *testing.T) {
		o, ok := DecodeOne([]Row{
			itemRow("o1", "u1", 30, "p1", 2),
			itemRow("o1", "u1", 30, "p2", 1),
		})
		require.True(t, ok)
		assert.Equal(t, "u1", o.UserID)
		assert.Equal(t, []LineItem{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}}, o.Items)
	})
}
