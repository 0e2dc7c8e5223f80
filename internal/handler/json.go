package handler

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/product"
	"github.com/xenking/storefront-api/internal/domain/user"
)

func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}

func encodeOrder(e *jx.Encoder, o order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("userId", func(e *jx.Encoder) { e.Str(o.UserID) })
		e.Field("totalAmount", func(e *jx.Encoder) { encodeDecimal(e, o.TotalAmount) })
		e.Field("products", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, it := range o.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("productId", func(e *jx.Encoder) { e.Str(it.ProductID) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
					})
				}
			})
		})
	})
}

func encodeOrders(e *jx.Encoder, orders []order.Order) {
	e.Arr(func(e *jx.Encoder) {
		for _, o := range orders {
			encodeOrder(e, o)
		}
	})
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		e.Field("price", func(e *jx.Encoder) { encodeDecimal(e, p.Price) })
		e.Field("stock", func(e *jx.Encoder) { e.Int(p.Stock) })
		e.Field("categoryId", func(e *jx.Encoder) { e.Str(p.CategoryID) })
		e.Field("imageUrl", func(e *jx.Encoder) { e.Str(p.ImageURL) })
	})
}

func encodeCategory(e *jx.Encoder, c product.Category) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(c.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(c.Name) })
	})
}

func encodeUser(e *jx.Encoder, u user.User) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(u.ID) })
		e.Field("email", func(e *jx.Encoder) { e.Str(u.Email) })
		e.Field("name", func(e *jx.Encoder) { e.Str(u.Name) })
	})
}

// skipNull consumes a JSON null and reports whether it did.
func skipNull(d *jx.Decoder) (bool, error) {
	if d.Next() != jx.Null {
		return false, nil
	}
	return true, d.Null()
}

// decodeDecimal accepts a JSON number or a numeric string.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(string(n))
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	case jx.Null:
		return decimal.Zero, d.Null()
	default:
		return decimal.Zero, errors.Errorf("expected number, got %s", d.Next())
	}
}

func decodeLineItem(d *jx.Decoder) (order.LineItem, error) {
	var it order.LineItem
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "productId":
			v, err := d.Str()
			it.ProductID = v
			return err
		case "quantity":
			if null, err := skipNull(d); null || err != nil {
				return err
			}
			v, err := d.Int()
			it.Quantity = v
			return err
		default:
			return d.Skip()
		}
	})
	return it, err
}

func decodeOrder(d *jx.Decoder) (order.Order, error) {
	o := order.Order{Items: []order.LineItem{}}
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "id":
			v, err := d.Str()
			o.ID = v
			return errors.Wrap(err, "id")
		case "userId":
			v, err := d.Str()
			o.UserID = v
			return errors.Wrap(err, "userId")
		case "totalAmount":
			v, err := decodeDecimal(d)
			o.TotalAmount = v
			return errors.Wrap(err, "totalAmount")
		case "products":
			if null, err := skipNull(d); null || err != nil {
				return err
			}
			return d.Arr(func(d *jx.Decoder) error {
				it, err := decodeLineItem(d)
				if err != nil {
					return errors.Wrap(err, "products")
				}
				o.Items = append(o.Items, it)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	return o, err
}

// decodeUserPatch reads {"email"?, "password"?}. A null value counts as absent.
func decodeUserPatch(d *jx.Decoder) (user.Patch, error) {
	var p user.Patch
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var field **string
		switch string(key) {
		case "email":
			field = &p.Email
		case "password":
			field = &p.Password
		default:
			return d.Skip()
		}
		if null, err := skipNull(d); null || err != nil {
			return err
		}
		v, err := d.Str()
		if err != nil {
			return errors.Wrap(err, string(key))
		}
		*field = &v
		return nil
	})
	return p, err
}
