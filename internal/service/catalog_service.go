package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// CatalogService encapsulates customer and product registration
type CatalogService struct {
	customers repository.CustomerRepository
	products  repository.ProductRepository
}

func NewCatalogService(customers repository.CustomerRepository, products repository.ProductRepository) *CatalogService {
	return &CatalogService{customers: customers, products: products}
}

var ErrInvalidInput = errors.New("invalid input")

// RegisterCustomer wraps the person in a new customer and assigns the next
// id. National id and email are stored as given, not validated.
func (s *CatalogService) RegisterCustomer(ctx context.Context, p domain.Person) (*domain.Customer, error) {
	if p.Name == "" {
		return nil, ErrInvalidInput
	}
	c := domain.Customer{Person: p}
	if err := s.customers.RegisterCustomer(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CatalogService) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.customers.GetCustomer(ctx, id)
}

func (s *CatalogService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.customers.ListCustomers(ctx)
}

func (s *CatalogService) RegisterProduct(ctx context.Context, name string, price decimal.Decimal, stock int64) (*domain.Product, error) {
	if name == "" || price.IsNegative() || stock < 0 {
		return nil, ErrInvalidInput
	}
	p := domain.Product{Name: name, Price: price, Stock: stock}
	if err := s.products.RegisterProduct(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.products.GetProduct(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.ListProducts(ctx)
}
