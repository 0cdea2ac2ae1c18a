// Package orderstore provides OrderGateway adapters. The in-memory store
// here backs local development and tests; the sqlite subpackage is the
// durable implementation.
package orderstore

import (
	"context"
	"sync"

	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/domain/entity"
	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/ports"
)

var _ ports.OrderGateway = (*MemoryStore)(nil)

// MemoryStore is an in-memory OrderGateway guarded by a single mutex, so
// the conditional transitions are atomic per store, which is stricter
// than the per-order guarantee the port demands.
type MemoryStore struct {
	mu         sync.Mutex
	orders     map[int64]*entity.Order
	notes      map[int64][]string
	stockCalls map[int64]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders:     make(map[int64]*entity.Order),
		notes:      make(map[int64][]string),
		stockCalls: make(map[int64]int),
	}
}

// Put seeds an order. Intended for wiring and tests.
func (m *MemoryStore) Put(order *entity.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *order
	m.orders[order.ID] = &cp
}

func (m *MemoryStore) Find(ctx context.Context, id int64) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, ports.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *MemoryStore) MarkPaid(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return false, ports.ErrOrderNotFound
	}
	if order.Status == entity.StatusPaid {
		return false, nil
	}
	order.Status = entity.StatusPaid
	order.Reason = ""
	return true, nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id int64, status entity.OrderStatus, reason string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return false, ports.ErrOrderNotFound
	}
	if order.Status == status {
		return false, nil
	}
	order.Status = status
	order.Reason = reason
	return true, nil
}

func (m *MemoryStore) AddNote(ctx context.Context, id int64, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[id]; !ok {
		return ports.ErrOrderNotFound
	}
	m.notes[id] = append(m.notes[id], note)
	return nil
}

func (m *MemoryStore) ReduceStock(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[id]; !ok {
		return ports.ErrOrderNotFound
	}
	m.stockCalls[id]++
	return nil
}

// Notes returns the audit notes recorded for an order.
func (m *MemoryStore) Notes(id int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.notes[id]...)
}

// StockReductions returns how many times stock was reduced for an order.
func (m *MemoryStore) StockReductions(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stockCalls[id]
}
