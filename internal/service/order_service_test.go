package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

func setup(t *testing.T) (*CatalogService, *OrderService) {
	t.Helper()
	store := repository.NewMemoryStore()
	cs := NewCatalogService(store, store)
	os := NewOrderService(store, store, store)
	return cs, os
}

// The canonical session: register Ana and a 9.99 widget with stock 5, take
// 3, get refused 5 more, finalize at 29.97.
func TestOrderSession_Scenario(t *testing.T) {
	ctx := context.Background()
	cs, os := setup(t)

	ana, err := cs.RegisterCustomer(ctx, domain.Person{Name: "Ana"})
	if err != nil {
		t.Fatalf("register customer: %v", err)
	}
	widget, err := cs.RegisterProduct(ctx, "Widget", decimal.RequireFromString("9.99"), 5)
	if err != nil {
		t.Fatalf("register product: %v", err)
	}

	o, err := os.Begin(ctx, ana.ID)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if o.Status != domain.OrderStatusPending || o.ID != 1 {
		t.Fatalf("unexpected order: %+v", o)
	}

	if err := os.AddItem(ctx, o, widget.ID, 3); err != nil {
		t.Fatalf("add item: %v", err)
	}
	p, _ := cs.GetProduct(ctx, widget.ID)
	if p.Stock != 2 {
		t.Fatalf("stock expected 2, got %d", p.Stock)
	}

	// over-ask rejected, stock untouched
	err = os.AddItem(ctx, o, widget.ID, 5)
	var se *StockError
	if !errors.As(err, &se) {
		t.Fatalf("expected stock error, got %v", err)
	}
	if se.ProductID != widget.ID || se.Requested != 5 || se.Available != 2 {
		t.Fatalf("stock error context wrong: %+v", se)
	}
	p, _ = cs.GetProduct(ctx, widget.ID)
	if p.Stock != 2 {
		t.Fatalf("stock expected 2 after rejection, got %d", p.Stock)
	}
	if len(o.Lines) != 1 {
		t.Fatalf("rejected line must not be appended")
	}

	if err := os.Finalize(ctx, o); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if o.Status != domain.OrderStatusFinalized {
		t.Fatalf("expected finalized")
	}

	total, err := os.Total(ctx, o)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if !total.Equal(decimal.RequireFromString("29.97")) {
		t.Fatalf("total expected 29.97, got %s", total)
	}

	stored, err := os.GetOrder(ctx, o.ID)
	if err != nil || stored.Status != domain.OrderStatusFinalized {
		t.Fatalf("stored order: %v", err)
	}
}

func TestOrderSession_EmptyOrderDiscarded(t *testing.T) {
	ctx := context.Background()
	cs, os := setup(t)
	ana, _ := cs.RegisterCustomer(ctx, domain.Person{Name: "Ana"})

	o, err := os.Begin(ctx, ana.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Finalize(ctx, o); !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("expected empty order error, got %v", err)
	}

	list, _ := os.ListOrders(ctx)
	if len(list) != 0 {
		t.Fatalf("discarded order must not be stored")
	}
}

func TestOrderSession_FinalizedIsImmutable(t *testing.T) {
	ctx := context.Background()
	cs, os := setup(t)
	ana, _ := cs.RegisterCustomer(ctx, domain.Person{Name: "Ana"})
	w, _ := cs.RegisterProduct(ctx, "Widget", decimal.NewFromInt(10), 5)

	o, _ := os.Begin(ctx, ana.ID)
	if err := os.AddItem(ctx, o, w.ID, 1); err != nil {
		t.Fatal(err)
	}
	if err := os.Finalize(ctx, o); err != nil {
		t.Fatal(err)
	}
	if err := os.AddItem(ctx, o, w.ID, 1); !errors.Is(err, ErrOrderFinalized) {
		t.Fatalf("expected finalized error, got %v", err)
	}
	if err := os.Finalize(ctx, o); !errors.Is(err, ErrOrderFinalized) {
		t.Fatalf("expected finalized error, got %v", err)
	}
}

func TestOrderSession_UnknownCustomer(t *testing.T) {
	ctx := context.Background()
	_, os := setup(t)
	if _, err := os.Begin(ctx, 42); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTotal_IndependentOfLineOrder(t *testing.T) {
	ctx := context.Background()
	cs, os := setup(t)
	ana, _ := cs.RegisterCustomer(ctx, domain.Person{Name: "Ana"})
	a, _ := cs.RegisterProduct(ctx, "A", decimal.RequireFromString("1.50"), 10)
	b, _ := cs.RegisterProduct(ctx, "B", decimal.RequireFromString("2.25"), 10)

	o1, _ := os.Begin(ctx, ana.ID)
	_ = os.AddItem(ctx, o1, a.ID, 2)
	_ = os.AddItem(ctx, o1, b.ID, 2)

	o2, _ := os.Begin(ctx, ana.ID)
	_ = os.AddItem(ctx, o2, b.ID, 2)
	_ = os.AddItem(ctx, o2, a.ID, 2)

	t1, _ := os.Total(ctx, o1)
	t2, _ := os.Total(ctx, o2)
	if !t1.Equal(t2) {
		t.Fatalf("totals differ: %s vs %s", t1, t2)
	}
	if !t1.Equal(decimal.RequireFromString("7.50")) {
		t.Fatalf("total expected 7.50, got %s", t1)
	}
}

func TestPlaceOrder_CollectsRejections(t *testing.T) {
	ctx := context.Background()
	cs, os := setup(t)
	ana, _ := cs.RegisterCustomer(ctx, domain.Person{Name: "Ana"})
	a, _ := cs.RegisterProduct(ctx, "A", decimal.NewFromInt(10), 5)
	b, _ := cs.RegisterProduct(ctx, "B", decimal.NewFromInt(20), 1)

	o, rejected, err := os.PlaceOrder(ctx, ana.ID, []domain.OrderLine{
		{ProductID: a.ID, Quantity: 3},
		{ProductID: b.ID, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if len(o.Lines) != 1 || o.Lines[0].ProductID != a.ID {
		t.Fatalf("expected only product A accepted: %+v", o.Lines)
	}
	if len(rejected) != 1 || rejected[0].ProductID != b.ID || rejected[0].Available != 1 {
		t.Fatalf("unexpected rejections: %+v", rejected)
	}

	// stock of B untouched by the rejected line
	pb, _ := cs.GetProduct(ctx, b.ID)
	if pb.Stock != 1 {
		t.Fatalf("stock of B expected 1, got %d", pb.Stock)
	}
}

func TestPlaceOrder_AllRejectedDiscards(t *testing.T) {
	ctx := context.Background()
	cs, os := setup(t)
	ana, _ := cs.RegisterCustomer(ctx, domain.Person{Name: "Ana"})
	a, _ := cs.RegisterProduct(ctx, "A", decimal.NewFromInt(10), 1)

	_, rejected, err := os.PlaceOrder(ctx, ana.ID, []domain.OrderLine{{ProductID: a.ID, Quantity: 5}})
	if !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("expected empty order, got %v", err)
	}
	if len(rejected) != 1 {
		t.Fatalf("expected one rejection, got %d", len(rejected))
	}
	list, _ := os.ListOrders(ctx)
	if len(list) != 0 {
		t.Fatalf("discarded order must not be stored")
	}
}

func TestPlaceOrder_UnknownProductFailsBeforeStockMoves(t *testing.T) {
	ctx := context.Background()
	cs, os := setup(t)
	ana, _ := cs.RegisterCustomer(ctx, domain.Person{Name: "Ana"})
	a, _ := cs.RegisterProduct(ctx, "A", decimal.NewFromInt(10), 5)

	_, _, err := os.PlaceOrder(ctx, ana.ID, []domain.OrderLine{
		{ProductID: a.ID, Quantity: 2},
		{ProductID: 999, Quantity: 1},
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	pa, _ := cs.GetProduct(ctx, a.ID)
	if pa.Stock != 5 {
		t.Fatalf("stock must be untouched, got %d", pa.Stock)
	}
}
