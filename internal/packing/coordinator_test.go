package packing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilldesk/minimart/internal/catalogue"
	"github.com/tilldesk/minimart/internal/notify"
	"github.com/tilldesk/minimart/internal/orders"
)

func submitOrder(t *testing.T, ord *orders.Memory, lines ...*catalogue.Product) int64 {
	t.Helper()
	ctx := context.Background()
	no, err := ord.AllocateNumber(ctx)
	require.NoError(t, err)
	b := catalogue.NewBasket()
	b.SetOrderNo(no)
	for _, p := range lines {
		b.Add(p)
	}
	require.NoError(t, ord.Submit(ctx, b))
	return no
}

func TestClaim_Exclusive(t *testing.T) {
	c := NewCoordinator(orders.NewMemory(), notify.NewBus(), time.Second)

	const attempts = 32
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.tryClaim() {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, won)
}

func TestScenarioC_WaitFindHoldPack(t *testing.T) {
	ctx := context.Background()
	ord := orders.NewMemory()
	bus := notify.NewBus()
	_, ch := bus.Subscribe()
	c := NewCoordinator(ord, bus, time.Second)

	// No orders queued yet: every cycle waits and leaves the claim free.
	for i := 0; i < 3; i++ {
		c.poll(ctx)
		assert.Equal(t, "Waiting for new orders", <-ch)
		assert.Nil(t, c.CurrentOrder())
	}

	no := submitOrder(t, ord,
		catalogue.NewProduct("10", "Radio", decimal.RequireFromString("5.00"), 1),
		catalogue.NewProduct("2", "Torch", decimal.RequireFromString("3.00"), 2),
	)

	// The very next cycle picks the order up, sorted ascending.
	c.poll(ctx)
	assert.Equal(t, "Order found, please pack items", <-ch)
	cur := c.CurrentOrder()
	require.NotNil(t, cur)
	assert.Equal(t, no, cur.OrderNo())
	lines := cur.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "2", lines[0].ProductNo)
	assert.Equal(t, "10", lines[1].ProductNo)

	// Claim is held across subsequent cycles: no status, order unchanged.
	c.poll(ctx)
	c.poll(ctx)
	assert.Empty(t, ch)
	require.NotNil(t, c.CurrentOrder())

	packedNo, err := c.MarkPacked(ctx)
	require.NoError(t, err)
	assert.Equal(t, no, packedNo)
	assert.Equal(t, "Order packed", <-ch)
	assert.Nil(t, c.CurrentOrder())
	assert.Equal(t, []int64{no}, ord.Packed())

	// Claim released: the loop is back to waiting.
	c.poll(ctx)
	assert.Equal(t, "Waiting for new orders", <-ch)
}

func TestMarkPacked_NothingClaimed(t *testing.T) {
	ctx := context.Background()
	bus := notify.NewBus()
	_, ch := bus.Subscribe()
	c := NewCoordinator(orders.NewMemory(), bus, time.Second)

	_, err := c.MarkPacked(ctx)

	assert.ErrorIs(t, err, ErrNothingToPack)
	assert.Equal(t, "Order not packed", <-ch)
}

func TestMarkPacked_ConcurrentSecondCallerLoses(t *testing.T) {
	ctx := context.Background()
	ord := orders.NewMemory()
	c := NewCoordinator(ord, notify.NewBus(), time.Second)

	submitOrder(t, ord, catalogue.NewProduct("10", "Radio", decimal.RequireFromString("5.00"), 1))
	c.poll(ctx)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.MarkPacked(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var okCount, nothingCount int
	for err := range errs {
		switch {
		case err == nil:
			okCount++
		case errors.Is(err, ErrNothingToPack):
			nothingCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, nothingCount)
}

// ackFailOrders fails MarkPacked once, then recovers.
type ackFailOrders struct {
	*orders.Memory
	failures int
}

func (a *ackFailOrders) MarkPacked(ctx context.Context, no int64) error {
	if a.failures > 0 {
		a.failures--
		return errors.New("order service unreachable")
	}
	return a.Memory.MarkPacked(ctx, no)
}

func TestMarkPacked_AckFailureStillReleasesClaim(t *testing.T) {
	ctx := context.Background()
	mem := orders.NewMemory()
	ord := &ackFailOrders{Memory: mem, failures: 1}
	bus := notify.NewBus()
	_, ch := bus.Subscribe()
	c := NewCoordinator(ord, bus, time.Second)

	submitOrder(t, mem, catalogue.NewProduct("10", "Radio", decimal.RequireFromString("5.00"), 1))
	c.poll(ctx)
	<-ch // order found

	_, err := c.MarkPacked(ctx)
	require.Error(t, err)
	assert.Equal(t, "order service unreachable", <-ch)

	// The claim must be free again so the coordinator can keep working.
	c.poll(ctx)
	assert.Equal(t, "Waiting for new orders", <-ch)
}

// pollErrOrders fails NextToPack a fixed number of times.
type pollErrOrders struct {
	*orders.Memory
	failures int
}

func (p *pollErrOrders) NextToPack(ctx context.Context) (*catalogue.Basket, error) {
	if p.failures > 0 {
		p.failures--
		return nil, errors.New("order service unreachable")
	}
	return p.Memory.NextToPack(ctx)
}

func TestPoll_ServiceErrorReleasesClaimAndContinues(t *testing.T) {
	ctx := context.Background()
	mem := orders.NewMemory()
	ord := &pollErrOrders{Memory: mem, failures: 1}
	bus := notify.NewBus()
	_, ch := bus.Subscribe()
	c := NewCoordinator(ord, bus, time.Second)

	c.poll(ctx)
	assert.Equal(t, "order service unreachable", <-ch)

	submitOrder(t, mem, catalogue.NewProduct("10", "Radio", decimal.RequireFromString("5.00"), 1))
	c.poll(ctx)
	assert.Equal(t, "Order found, please pack items", <-ch)
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewCoordinator(orders.NewMemory(), notify.NewBus(), 10*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
