// Package packing implements the warehouse packing coordinator: a background
// poll loop that claims one order at a time for a human operator and reports
// completion back to the order service.
package packing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tilldesk/minimart/internal/catalogue"
	"github.com/tilldesk/minimart/internal/notify"
	"github.com/tilldesk/minimart/internal/orders"
)

// ErrNothingToPack means MarkPacked was called while no order was claimed.
var ErrNothingToPack = errors.New("no order being packed")

const DefaultPollInterval = 2 * time.Second

// Coordinator serializes one packing job at a time through an exclusive
// claim. The claim flag and the current order are owned by one mutex so the
// poll loop and the completion handler never see half an update.
type Coordinator struct {
	orders   orders.Service
	bus      *notify.Bus
	interval time.Duration

	mu      sync.Mutex
	held    bool
	current *catalogue.Basket
}

func NewCoordinator(ord orders.Service, bus *notify.Bus, interval time.Duration) *Coordinator {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Coordinator{orders: ord, bus: bus, interval: interval}
}

// Run polls until the context is cancelled. Service errors are logged and
// the loop carries on at the next tick.
func (c *Coordinator) Run(ctx context.Context) error {
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		c.poll(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

// poll is one cycle: claim, fetch, hand over or release. While an order is
// being packed the claim stays held and the cycle is a no-op.
func (c *Coordinator) poll(ctx context.Context) {
	if !c.tryClaim() {
		return
	}

	b, err := c.orders.NextToPack(ctx)
	if err != nil {
		// release so the next cycle can retry
		c.release()
		log.Printf("packing: next order: %v", err)
		c.bus.Publish(err.Error())
		return
	}
	if b == nil {
		c.release()
		c.bus.Publish("Waiting for new orders")
		return
	}

	sorted := catalogue.NewBasket()
	sorted.SetOrderNo(b.OrderNo())
	for _, p := range b.Lines() {
		sorted.Add(p.Copy())
	}
	sorted.Sort(catalogue.Ascending)

	c.setCurrent(sorted)
	c.bus.Publish("Order found, please pack items")
}

// CurrentOrder returns a snapshot of the order being packed, or nil.
func (c *Coordinator) CurrentOrder() *catalogue.Basket {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	return c.current.Copy()
}

// MarkPacked completes the claimed order and returns its number. The claim
// is released even when the order-service acknowledgment fails, so the
// coordinator can keep polling.
func (c *Coordinator) MarkPacked(ctx context.Context) (int64, error) {
	c.mu.Lock()
	b := c.current
	if b == nil {
		c.mu.Unlock()
		c.bus.Publish("Order not packed")
		return 0, ErrNothingToPack
	}
	c.current = nil
	c.mu.Unlock()

	err := c.orders.MarkPacked(ctx, b.OrderNo())
	c.release()
	if err != nil {
		// the order may be left in progress on the service side
		log.Printf("packing: mark packed %d: %v", b.OrderNo(), err)
		c.bus.Publish(err.Error())
		return b.OrderNo(), fmt.Errorf("mark packed %d: %w", b.OrderNo(), err)
	}
	c.bus.Publish("Order packed")
	return b.OrderNo(), nil
}

// tryClaim is a non-blocking test-and-set on the exclusive claim.
func (c *Coordinator) tryClaim() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.held {
		return false
	}
	c.held = true
	return true
}

func (c *Coordinator) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.held = false
}

func (c *Coordinator) setCurrent(b *catalogue.Basket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = b
}
