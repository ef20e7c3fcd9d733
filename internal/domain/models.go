package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Person holds the personal data of a customer. It has no identity of its
// own; it is owned by exactly one Customer. National id and email are kept
// as opaque strings.
type Person struct {
	Name       string `json:"name"`
	NationalID string `json:"national_id"`
	Email      string `json:"email"`
}

// Customer is a registered buyer
type Customer struct {
	ID     int64  `json:"id"`
	Person Person `json:"person"`
}

// Product is a catalog item with live stock
type Product struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int64           `json:"stock"`
}

// OrderStatus lifecycle state of an order; transitions one way,
// Pending -> Finalized
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusFinalized OrderStatus = "Finalized"
)

// OrderLine is one product/quantity pairing within an order. The product is
// referenced by id, never owned: subtotals are computed on demand by
// resolving the id through the catalog, so the live price is always observed.
type OrderLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// Order references one customer and carries an append-only sequence of
// lines; line order is insertion order. A Finalized order never changes.
type Order struct {
	ID         int64       `json:"id"`
	CustomerID int64       `json:"customer_id"`
	CreatedAt  time.Time   `json:"created_at"`
	Status     OrderStatus `json:"status"`
	Lines      []OrderLine `json:"lines"`
}
