// Package stock defines the stock-service boundary used by the cashier and
// back-door workflows, with a Postgres implementation and an in-memory one.
package stock

import (
	"context"
	"errors"

	"github.com/tilldesk/minimart/internal/catalogue"
)

// ErrNotFound means the product number is unknown. It is distinct from a
// service-level failure (network, storage), which comes back as any other
// non-nil error.
var ErrNotFound = errors.New("product not found")

type Reader interface {
	// Exists reports whether the product number is in the stock list.
	Exists(ctx context.Context, productNo string) (bool, error)
	// Details returns the product with its current stock level as quantity.
	Details(ctx context.Context, productNo string) (*catalogue.Product, error)
	// Search matches any of the space-separated terms against product
	// descriptions, case-insensitive. An empty result is not an error.
	Search(ctx context.Context, terms string) ([]*catalogue.Product, error)
}

type ReadWriter interface {
	Reader
	// Reserve atomically decrements available stock by qty. It returns false
	// when there is not enough stock; the level never goes negative.
	Reserve(ctx context.Context, productNo string, qty int) (bool, error)
	// Return adds qty back to available stock, compensating a reservation.
	Return(ctx context.Context, productNo string, qty int) error
}
