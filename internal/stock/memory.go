package stock

import (
	"context"
	"strings"
	"sync"

	"github.com/tilldesk/minimart/internal/catalogue"
)

// Memory is an in-process stock list guarded by a RWMutex, used where no
// database is wanted: tests and local runs.
type Memory struct {
	mu    sync.RWMutex
	items map[string]*catalogue.Product
}

func NewMemory(seed ...*catalogue.Product) *Memory {
	m := &Memory{items: make(map[string]*catalogue.Product)}
	for _, p := range seed {
		m.items[p.ProductNo] = p.Copy()
	}
	return m
}

func (m *Memory) Exists(_ context.Context, productNo string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[productNo]
	return ok, nil
}

func (m *Memory) Details(_ context.Context, productNo string) (*catalogue.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.items[productNo]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Copy(), nil
}

func (m *Memory) Search(_ context.Context, terms string) ([]*catalogue.Product, error) {
	fields := strings.Fields(strings.ToUpper(terms))
	if len(fields) == 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*catalogue.Product
	for _, p := range m.items {
		desc := strings.ToUpper(p.Description)
		for _, f := range fields {
			if strings.Contains(desc, f) {
				out = append(out, p.Copy())
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) Reserve(_ context.Context, productNo string, qty int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[productNo]
	if !ok {
		return false, ErrNotFound
	}
	if p.Quantity < qty {
		return false, nil
	}
	p.Quantity -= qty
	return true, nil
}

func (m *Memory) Return(_ context.Context, productNo string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[productNo]
	if !ok {
		return ErrNotFound
	}
	p.Quantity += qty
	return nil
}

// Level reports the current stock level, for tests.
func (m *Memory) Level(productNo string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.items[productNo]; ok {
		return p.Quantity
	}
	return 0
}
