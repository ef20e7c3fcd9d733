package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// OrderService runs the order-build session: begin, add items against live
// stock, then finalize or discard. A session that never accepts a line is
// discarded and leaves no trace beyond its consumed id.
type OrderService struct {
	customers repository.CustomerRepository
	products  repository.ProductRepository
	orders    repository.OrderRepository
}

func NewOrderService(customers repository.CustomerRepository, products repository.ProductRepository, orders repository.OrderRepository) *OrderService {
	return &OrderService{customers: customers, products: products, orders: orders}
}

var (
	// ErrEmptyOrder means a session ended without a single accepted line;
	// the order is discarded, never finalized or stored.
	ErrEmptyOrder = errors.New("empty order")
	// ErrOrderFinalized rejects mutation after Finalize
	ErrOrderFinalized = errors.New("order already finalized")
)

// StockError reports a rejected line with enough context to retry: which
// product, how much was asked, how much is there. It is an expected
// outcome, not a fault.
type StockError struct {
	ProductID int64
	Requested int64
	Available int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return repository.ErrInsufficientStock }

// Begin opens a build session for the given customer: fresh id, current
// timestamp, Pending, no lines.
func (s *OrderService) Begin(ctx context.Context, customerID int64) (*domain.Order, error) {
	if customerID <= 0 {
		return nil, ErrInvalidInput
	}
	c, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &domain.Order{
		ID:         s.orders.NextOrderID(ctx),
		CustomerID: c.ID,
		CreatedAt:  time.Now().UTC(),
		Status:     domain.OrderStatusPending,
	}, nil
}

// AddItem appends a line after decrementing live stock. The decrement is
// immediate and visible to every other session referencing the product; on
// shortfall nothing changes and a *StockError comes back.
func (s *OrderService) AddItem(ctx context.Context, o *domain.Order, productID, qty int64) error {
	if o == nil || productID <= 0 || qty <= 0 {
		return ErrInvalidInput
	}
	if o.Status != domain.OrderStatusPending {
		return ErrOrderFinalized
	}
	remaining, err := s.products.DecrementStock(ctx, productID, qty)
	if errors.Is(err, repository.ErrInsufficientStock) {
		return &StockError{ProductID: productID, Requested: qty, Available: remaining}
	}
	if err != nil {
		return err
	}
	o.Lines = append(o.Lines, domain.OrderLine{ProductID: productID, Quantity: qty})
	return nil
}

// Finalize closes the session and stores the order. At least one line is
// required; finalized orders are immutable.
func (s *OrderService) Finalize(ctx context.Context, o *domain.Order) error {
	if o == nil {
		return ErrInvalidInput
	}
	if o.Status != domain.OrderStatusPending {
		return ErrOrderFinalized
	}
	if len(o.Lines) == 0 {
		return ErrEmptyOrder
	}
	o.Status = domain.OrderStatusFinalized
	return s.orders.AppendOrder(ctx, o)
}

// PlaceOrder runs a whole session in one call. Every product id is resolved
// up front, so an unknown product fails the request before any stock moves.
// Stock shortfalls do not abort: the rejected lines are collected and the
// order finalizes with whatever was accepted. If nothing was accepted the
// order is discarded and ErrEmptyOrder returned alongside the rejections.
func (s *OrderService) PlaceOrder(ctx context.Context, customerID int64, items []domain.OrderLine) (*domain.Order, []StockError, error) {
	if len(items) == 0 {
		return nil, nil, ErrInvalidInput
	}
	for _, it := range items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			return nil, nil, ErrInvalidInput
		}
		if _, err := s.products.GetProduct(ctx, it.ProductID); err != nil {
			return nil, nil, fmt.Errorf("product %d: %w", it.ProductID, err)
		}
	}

	o, err := s.Begin(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}

	var rejected []StockError
	for _, it := range items {
		err := s.AddItem(ctx, o, it.ProductID, it.Quantity)
		var se *StockError
		if errors.As(err, &se) {
			rejected = append(rejected, *se)
			continue
		}
		if err != nil {
			return nil, rejected, err
		}
	}

	if err := s.Finalize(ctx, o); err != nil {
		return nil, rejected, err
	}
	return o, rejected, nil
}

// Subtotal is price times quantity, resolved against the live product
func (s *OrderService) Subtotal(ctx context.Context, line domain.OrderLine) (decimal.Decimal, error) {
	p, err := s.products.GetProduct(ctx, line.ProductID)
	if err != nil {
		return decimal.Zero, err
	}
	return p.Price.Mul(decimal.NewFromInt(line.Quantity)), nil
}

// Total sums the subtotals of every line; pure, computed on demand
func (s *OrderService) Total(ctx context.Context, o *domain.Order) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range o.Lines {
		sub, err := s.Subtotal(ctx, line)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(sub)
	}
	return total, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.orders.GetOrder(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListOrders(ctx)
}
