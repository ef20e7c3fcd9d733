package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

func setupCatalog(t *testing.T) *CatalogService {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewCatalogService(store, store)
}

func TestCatalog_RegisterCustomer(t *testing.T) {
	ctx := context.Background()
	cs := setupCatalog(t)

	c, err := cs.RegisterCustomer(ctx, domain.Person{Name: "Ana", NationalID: "123.456.789-00", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.ID != 1 {
		t.Fatalf("expected id 1, got %d", c.ID)
	}

	got, err := cs.GetCustomer(ctx, c.ID)
	if err != nil || got.Person.Email != "ana@example.com" {
		t.Fatalf("get failed: %v", err)
	}
}

func TestCatalog_RegisterCustomer_Invalid(t *testing.T) {
	ctx := context.Background()
	cs := setupCatalog(t)
	if _, err := cs.RegisterCustomer(ctx, domain.Person{Name: ""}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCatalog_RegisterProduct(t *testing.T) {
	ctx := context.Background()
	cs := setupCatalog(t)

	p, err := cs.RegisterProduct(ctx, "Widget", decimal.RequireFromString("9.99"), 5)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.ID != 1 || p.Stock != 5 {
		t.Fatalf("unexpected product: %+v", p)
	}
	if !p.Price.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("price mismatch: %s", p.Price)
	}
}

func TestCatalog_RegisterProduct_Invalid(t *testing.T) {
	ctx := context.Background()
	cs := setupCatalog(t)
	if _, err := cs.RegisterProduct(ctx, "", decimal.NewFromInt(1), 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := cs.RegisterProduct(ctx, "N", decimal.NewFromInt(-1), 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := cs.RegisterProduct(ctx, "N", decimal.NewFromInt(1), -1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCatalog_Lookup_Miss(t *testing.T) {
	ctx := context.Background()
	cs := setupCatalog(t)
	if _, err := cs.GetCustomer(ctx, 42); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := cs.GetProduct(ctx, 42); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalog_Listings(t *testing.T) {
	ctx := context.Background()
	cs := setupCatalog(t)
	_, _ = cs.RegisterCustomer(ctx, domain.Person{Name: "Ana"})
	_, _ = cs.RegisterCustomer(ctx, domain.Person{Name: "Bob"})
	_, _ = cs.RegisterProduct(ctx, "Widget", decimal.NewFromInt(10), 5)

	customers, err := cs.ListCustomers(ctx)
	if err != nil || len(customers) != 2 {
		t.Fatalf("list customers: %v (%d)", err, len(customers))
	}
	if customers[0].ID != 1 || customers[1].ID != 2 {
		t.Fatalf("customers not sorted by id: %+v", customers)
	}

	products, err := cs.ListProducts(ctx)
	if err != nil || len(products) != 1 {
		t.Fatalf("list products: %v (%d)", err, len(products))
	}
}
