package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/samber/lo"

	"storefront/internal/domain"
)

// MemoryStore is the in-memory catalog store: id-keyed customer and product
// tables, the finalized-order log, and one monotonic id counter per entity
// type. Counters start at 1 and only move forward, including across Restore.
type MemoryStore struct {
	mu             sync.RWMutex
	nextCustomerID int64
	nextProductID  int64
	nextOrderID    int64
	customersByID  map[int64]domain.Customer
	productsByID   map[int64]domain.Product
	orders         []domain.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextCustomerID: 1,
		nextProductID:  1,
		nextOrderID:    1,
		customersByID:  make(map[int64]domain.Customer),
		productsByID:   make(map[int64]domain.Product),
	}
}

// Ensure interfaces
var (
	_ CustomerRepository = (*MemoryStore)(nil)
	_ ProductRepository  = (*MemoryStore)(nil)
	_ OrderRepository    = (*MemoryStore)(nil)
)

// CustomerRepository implementation

func (m *MemoryStore) RegisterCustomer(ctx context.Context, c *domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextCustomerID
	m.nextCustomerID++
	m.customersByID[c.ID] = *c
	return nil
}

func (m *MemoryStore) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.customersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := c
	return &cp, nil
}

func (m *MemoryStore) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := lo.Values(m.customersByID)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ProductRepository implementation

func (m *MemoryStore) RegisterProduct(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextProductID
	m.nextProductID++
	m.productsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.productsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := p
	return &cp, nil
}

func (m *MemoryStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := lo.Values(m.productsByID)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DecrementStock is the only stock mutation: check and decrement happen
// under one lock, so stock can never go negative.
func (m *MemoryStore) DecrementStock(ctx context.Context, productID, qty int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.productsByID[productID]
	if !ok {
		return 0, ErrNotFound
	}
	if qty > p.Stock {
		return p.Stock, ErrInsufficientStock
	}
	p.Stock -= qty
	m.productsByID[productID] = p
	return p.Stock, nil
}

// OrderRepository implementation

// NextOrderID allocates an order id. Ids consumed by sessions that end up
// discarded are not reused; only monotonicity matters.
func (m *MemoryStore) NextOrderID(ctx context.Context) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextOrderID
	m.nextOrderID++
	return id
}

func (m *MemoryStore) AppendOrder(ctx context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, cloneOrder(*o))
	return nil
}

func (m *MemoryStore) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.ID == id {
			cp := cloneOrder(o)
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListOrders(ctx context.Context) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lo.Map(m.orders, func(o domain.Order, _ int) domain.Order {
		return cloneOrder(o)
	}), nil
}

// Snapshot returns a consistent copy of the whole store state.
func (m *MemoryStore) Snapshot(ctx context.Context) ([]domain.Customer, []domain.Product, []domain.Order) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	customers := lo.Values(m.customersByID)
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })
	products := lo.Values(m.productsByID)
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	orders := lo.Map(m.orders, func(o domain.Order, _ int) domain.Order {
		return cloneOrder(o)
	})
	return customers, products, orders
}

// Restore replaces the whole store state wholesale and advances each id
// counter past the maximum restored id. Callers validate the input first;
// nothing here is applied partially.
func (m *MemoryStore) Restore(ctx context.Context, customers []domain.Customer, products []domain.Product, orders []domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.customersByID = lo.SliceToMap(customers, func(c domain.Customer) (int64, domain.Customer) {
		return c.ID, c
	})
	m.productsByID = lo.SliceToMap(products, func(p domain.Product) (int64, domain.Product) {
		return p.ID, p
	})
	m.orders = lo.Map(orders, func(o domain.Order, _ int) domain.Order {
		return cloneOrder(o)
	})

	m.nextCustomerID = nextID(lo.Keys(m.customersByID))
	m.nextProductID = nextID(lo.Keys(m.productsByID))
	m.nextOrderID = nextID(lo.Map(m.orders, func(o domain.Order, _ int) int64 { return o.ID }))
	return nil
}

// nextID is one past the largest id seen, or 1 for an empty table
func nextID(ids []int64) int64 {
	if len(ids) == 0 {
		return 1
	}
	return lo.Max(ids) + 1
}

func cloneOrder(o domain.Order) domain.Order {
	o.Lines = append([]domain.OrderLine(nil), o.Lines...)
	return o
}
