package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// ErrCorrupt marks a snapshot that fails structural or referential
// validation. A corrupt snapshot aborts the whole load; nothing from it is
// ever applied partially.
var ErrCorrupt = errors.New("corrupt snapshot")

// Snapshot document: customers and products are stringified-id maps, orders
// an array in their original insertion order. Prices serialize as bare JSON
// numbers, timestamps as RFC 3339 text.
type document struct {
	Customers map[string]customerRecord `json:"customers"`
	Products  map[string]productRecord  `json:"products"`
	Orders    []orderRecord             `json:"orders"`
}

type customerRecord struct {
	Name       *string `json:"name"`
	NationalID string  `json:"national_id"`
	Email      string  `json:"email"`
}

type productRecord struct {
	Name  *string     `json:"name"`
	Price json.Number `json:"price"`
	Stock *int64      `json:"stock"`
}

type orderRecord struct {
	ID         int64        `json:"id"`
	CustomerID int64        `json:"customer_id"`
	CreatedAt  string       `json:"created_at"`
	Status     string       `json:"status"`
	Items      []lineRecord `json:"items"`
}

type lineRecord struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// Encode writes the full state to w. The sink is opaque: a file, a buffer,
// anything that takes bytes.
func Encode(w io.Writer, customers []domain.Customer, products []domain.Product, orders []domain.Order) error {
	doc := document{
		Customers: lo.SliceToMap(customers, func(c domain.Customer) (string, customerRecord) {
			return strconv.FormatInt(c.ID, 10), customerRecord{
				Name:       &c.Person.Name,
				NationalID: c.Person.NationalID,
				Email:      c.Person.Email,
			}
		}),
		Products: lo.SliceToMap(products, func(p domain.Product) (string, productRecord) {
			return strconv.FormatInt(p.ID, 10), productRecord{
				Name:  &p.Name,
				Price: json.Number(p.Price.String()),
				Stock: &p.Stock,
			}
		}),
		Orders: lo.Map(orders, func(o domain.Order, _ int) orderRecord {
			return orderRecord{
				ID:         o.ID,
				CustomerID: o.CustomerID,
				CreatedAt:  o.CreatedAt.Format(time.RFC3339Nano),
				Status:     string(o.Status),
				Items: lo.Map(o.Lines, func(l domain.OrderLine, _ int) lineRecord {
					return lineRecord{ProductID: l.ProductID, Quantity: l.Quantity}
				}),
			}
		}),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Decode reads a snapshot back and validates it completely: structure,
// field shapes, and every order-to-customer and line-to-product reference
// against the maps in the same document. Any failure wraps ErrCorrupt and
// nothing is returned.
func Decode(r io.Reader) ([]domain.Customer, []domain.Product, []domain.Order, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	customersByID := make(map[int64]domain.Customer, len(doc.Customers))
	for key, rec := range doc.Customers {
		id, err := parseID(key)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: customer id %q: %v", ErrCorrupt, key, err)
		}
		if rec.Name == nil {
			return nil, nil, nil, fmt.Errorf("%w: customer %d: missing name", ErrCorrupt, id)
		}
		customersByID[id] = domain.Customer{
			ID: id,
			Person: domain.Person{
				Name:       *rec.Name,
				NationalID: rec.NationalID,
				Email:      rec.Email,
			},
		}
	}

	productsByID := make(map[int64]domain.Product, len(doc.Products))
	for key, rec := range doc.Products {
		id, err := parseID(key)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: product id %q: %v", ErrCorrupt, key, err)
		}
		if rec.Name == nil || rec.Stock == nil || rec.Price == "" {
			return nil, nil, nil, fmt.Errorf("%w: product %d: missing fields", ErrCorrupt, id)
		}
		price, err := decimal.NewFromString(rec.Price.String())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: product %d: price %q", ErrCorrupt, id, rec.Price)
		}
		if price.IsNegative() || *rec.Stock < 0 {
			return nil, nil, nil, fmt.Errorf("%w: product %d: negative price or stock", ErrCorrupt, id)
		}
		productsByID[id] = domain.Product{ID: id, Name: *rec.Name, Price: price, Stock: *rec.Stock}
	}

	orders := make([]domain.Order, 0, len(doc.Orders))
	for i, rec := range doc.Orders {
		o, err := decodeOrder(rec, customersByID, productsByID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: order #%d: %v", ErrCorrupt, i, err)
		}
		orders = append(orders, o)
	}

	customers := lo.Values(customersByID)
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })
	products := lo.Values(productsByID)
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return customers, products, orders, nil
}

func decodeOrder(rec orderRecord, customers map[int64]domain.Customer, products map[int64]domain.Product) (domain.Order, error) {
	if rec.ID <= 0 {
		return domain.Order{}, fmt.Errorf("invalid id %d", rec.ID)
	}
	if _, ok := customers[rec.CustomerID]; !ok {
		return domain.Order{}, fmt.Errorf("unknown customer %d", rec.CustomerID)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, rec.CreatedAt)
	if err != nil {
		return domain.Order{}, fmt.Errorf("timestamp %q: %v", rec.CreatedAt, err)
	}
	status := domain.OrderStatus(rec.Status)
	if status != domain.OrderStatusPending && status != domain.OrderStatusFinalized {
		return domain.Order{}, fmt.Errorf("unknown status %q", rec.Status)
	}
	if len(rec.Items) == 0 {
		return domain.Order{}, errors.New("no items")
	}
	lines := make([]domain.OrderLine, 0, len(rec.Items))
	for _, it := range rec.Items {
		if _, ok := products[it.ProductID]; !ok {
			return domain.Order{}, fmt.Errorf("unknown product %d", it.ProductID)
		}
		if it.Quantity <= 0 {
			return domain.Order{}, fmt.Errorf("product %d: invalid quantity %d", it.ProductID, it.Quantity)
		}
		lines = append(lines, domain.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return domain.Order{
		ID:         rec.ID,
		CustomerID: rec.CustomerID,
		CreatedAt:  createdAt,
		Status:     status,
		Lines:      lines,
	}, nil
}

func parseID(key string) (int64, error) {
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return 0, errors.New("not numeric")
	}
	if id <= 0 {
		return 0, errors.New("not positive")
	}
	return id, nil
}
