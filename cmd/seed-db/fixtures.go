package main

import (
	"io"
	"os"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/product"
)

const bloomFPR = 0.001

// seedUser is a fixture user. Password is plain text and hashed on insert.
type seedUser struct {
	ID       string
	Email    string
	Name     string
	Password string
}

// fixtures is the content of a seed file.
type fixtures struct {
	Categories []product.Category
	Products   []product.Product
	Users      []seedUser
	Orders     []order.Order
}

// readFixtures loads path, transparently decompressing it when the name ends
// in ".gz".
func readFixtures(path string) (*fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	fx, err := decodeFixtures(jx.DecodeBytes(data))
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return fx, nil
}

func decodeFixtures(d *jx.Decoder) (*fixtures, error) {
	var fx fixtures
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "categories":
			return d.Arr(func(d *jx.Decoder) error {
				c, err := decodeCategory(d)
				fx.Categories = append(fx.Categories, c)
				return errors.Wrap(err, "categories")
			})
		case "products":
			return d.Arr(func(d *jx.Decoder) error {
				p, err := decodeProduct(d)
				fx.Products = append(fx.Products, p)
				return errors.Wrap(err, "products")
			})
		case "users":
			return d.Arr(func(d *jx.Decoder) error {
				u, err := decodeUser(d)
				fx.Users = append(fx.Users, u)
				return errors.Wrap(err, "users")
			})
		case "orders":
			return d.Arr(func(d *jx.Decoder) error {
				o, err := decodeOrder(d)
				fx.Orders = append(fx.Orders, o)
				return errors.Wrap(err, "orders")
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, err
	}
	return &fx, nil
}

func decodeCategory(d *jx.Decoder) (product.Category, error) {
	var c product.Category
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "id":
			return str(d, &c.ID)
		case "name":
			return str(d, &c.Name)
		default:
			return d.Skip()
		}
	})
	return c, err
}

func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var p product.Product
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "id":
			return str(d, &p.ID)
		case "name":
			return str(d, &p.Name)
		case "description":
			return str(d, &p.Description)
		case "price":
			return num(d, &p.Price)
		case "stock":
			v, err := d.Int()
			p.Stock = v
			return err
		case "categoryId":
			return str(d, &p.CategoryID)
		case "imageUrl":
			return str(d, &p.ImageURL)
		default:
			return d.Skip()
		}
	})
	return p, err
}

func decodeUser(d *jx.Decoder) (seedUser, error) {
	var u seedUser
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "id":
			return str(d, &u.ID)
		case "email":
			return str(d, &u.Email)
		case "name":
			return str(d, &u.Name)
		case "password":
			return str(d, &u.Password)
		default:
			return d.Skip()
		}
	})
	return u, err
}

func decodeOrder(d *jx.Decoder) (order.Order, error) {
	o := order.Order{Items: []order.LineItem{}}
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "id":
			return str(d, &o.ID)
		case "userId":
			return str(d, &o.UserID)
		case "totalAmount":
			return num(d, &o.TotalAmount)
		case "products":
			return d.Arr(func(d *jx.Decoder) error {
				var it order.LineItem
				err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
					switch string(key) {
					case "productId":
						return str(d, &it.ProductID)
					case "quantity":
						v, err := d.Int()
						it.Quantity = v
						return err
					default:
						return d.Skip()
					}
				})
				o.Items = append(o.Items, it)
				return err
			})
		default:
			return d.Skip()
		}
	})
	return o, err
}

func str(d *jx.Decoder, dst *string) error {
	v, err := d.Str()
	*dst = v
	return err
}

// num reads a decimal written either as a JSON number or as a string.
func num(d *jx.Decoder, dst *decimal.Decimal) error {
	var (
		s   string
		err error
	)
	if d.Next() == jx.String {
		s, err = d.Str()
	} else {
		var n jx.Num
		n, err = d.Num()
		s = string(n)
	}
	if err != nil {
		return err
	}
	v, err := decimal.NewFromString(s)
	*dst = v
	return err
}

// idSet detects repeated ids. The bloom filter answers most lookups; only
// ids it reports as present are confirmed against the exact set.
type idSet struct {
	filter *bloom.BloomFilter
	seen   map[string]struct{}
}

func newIDSet(n int) *idSet {
	return &idSet{
		filter: bloom.NewWithEstimates(uint(max(n, 1)), bloomFPR),
		seen:   make(map[string]struct{}, n),
	}
}

// add records id and reports whether it was new.
func (s *idSet) add(id string) bool {
	if s.filter.TestAndAddString(id) {
		if _, ok := s.seen[id]; ok {
			return false
		}
	}
	s.seen[id] = struct{}{}
	return true
}

// unique drops items whose id was already seen, keeping the first
// occurrence, and returns the dropped ids.
func unique[T any](items []T, id func(T) string) (kept []T, dups []string) {
	set := newIDSet(len(items))
	kept = items[:0:0]
	for _, it := range items {
		if !set.add(id(it)) {
			dups = append(dups, id(it))
			continue
		}
		kept = append(kept, it)
	}
	return kept, dups
}
