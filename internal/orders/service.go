// Package orders defines the order-service boundary: allocating order
// numbers, queueing submitted orders and handing them out for packing.
package orders

import (
	"context"
	"errors"

	"github.com/tilldesk/minimart/internal/catalogue"
)

var (
	// ErrNoOrderNumber means Submit was called with a basket that was never
	// assigned an order number.
	ErrNoOrderNumber = errors.New("basket has no order number")
	// ErrUnknownOrder means MarkPacked was called for an order number the
	// service is not tracking as in progress.
	ErrUnknownOrder = errors.New("unknown order number")
)

type Service interface {
	// AllocateNumber hands out a unique order number. Monotonicity is not
	// guaranteed across implementations.
	AllocateNumber(ctx context.Context) (int64, error)
	// Submit queues the basket as a new order awaiting packing. The basket
	// must already carry its order number.
	Submit(ctx context.Context, b *catalogue.Basket) error
	// NextToPack hands out the oldest waiting order, at most once, and marks
	// it in progress. It returns nil with no error when nothing is waiting.
	NextToPack(ctx context.Context) (*catalogue.Basket, error)
	// MarkPacked records the in-progress order as packed.
	MarkPacked(ctx context.Context, orderNo int64) error
}
