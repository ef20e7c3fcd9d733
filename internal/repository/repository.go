package repository

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

// ErrNotFound is returned when an entity is not in the store
var ErrNotFound = errors.New("not found")

// ErrInsufficientStock is returned when a decrement would take a product's
// stock below zero
var ErrInsufficientStock = errors.New("insufficient stock")

// CustomerRepository holds registered customers, keyed by id
type CustomerRepository interface {
	RegisterCustomer(ctx context.Context, c *domain.Customer) error
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
}

// ProductRepository holds the product catalog. Stock only ever changes
// through DecrementStock, a single compare-and-decrement per product.
type ProductRepository interface {
	RegisterProduct(ctx context.Context, p *domain.Product) error
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	// DecrementStock atomically subtracts qty from the product's stock.
	// It returns the stock remaining after the call: the new level on
	// success, the unchanged level alongside ErrInsufficientStock when
	// qty exceeds it.
	DecrementStock(ctx context.Context, productID, qty int64) (int64, error)
}

// OrderRepository keeps finalized orders in insertion order. Orders are
// append-only; there is no update path.
type OrderRepository interface {
	NextOrderID(ctx context.Context) int64
	AppendOrder(ctx context.Context, o *domain.Order) error
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
}
