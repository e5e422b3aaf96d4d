package orders

import (
	"context"
	"sync"

	"github.com/tilldesk/minimart/internal/catalogue"
)

// Memory is an in-process order queue, used where no database is wanted:
// tests and local runs.
type Memory struct {
	mu      sync.Mutex
	nextNo  int64
	waiting []*catalogue.Basket
	packing map[int64]*catalogue.Basket
	packed  []int64
}

func NewMemory() *Memory {
	return &Memory{packing: make(map[int64]*catalogue.Basket)}
}

func (m *Memory) AllocateNumber(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextNo++
	return m.nextNo, nil
}

func (m *Memory) Submit(_ context.Context, b *catalogue.Basket) error {
	if b.OrderNo() == 0 {
		return ErrNoOrderNumber
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waiting = append(m.waiting, b.Copy())
	return nil
}

func (m *Memory) NextToPack(_ context.Context) (*catalogue.Basket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.waiting) == 0 {
		return nil, nil
	}
	b := m.waiting[0]
	m.waiting = m.waiting[1:]
	m.packing[b.OrderNo()] = b
	return b.Copy(), nil
}

func (m *Memory) MarkPacked(_ context.Context, orderNo int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.packing[orderNo]; !ok {
		return ErrUnknownOrder
	}
	delete(m.packing, orderNo)
	m.packed = append(m.packed, orderNo)
	return nil
}

// Waiting reports the number of queued orders, for tests.
func (m *Memory) Waiting() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiting)
}

// Packed reports the order numbers acknowledged as packed, for tests.
func (m *Memory) Packed() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.packed))
	copy(out, m.packed)
	return out
}
