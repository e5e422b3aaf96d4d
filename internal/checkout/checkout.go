// Package checkout implements the cashier workflow: check availability,
// reserve stock into an order basket, and submit the basket as an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tilldesk/minimart/internal/catalogue"
	"github.com/tilldesk/minimart/internal/notify"
	"github.com/tilldesk/minimart/internal/orders"
	"github.com/tilldesk/minimart/internal/stock"
)

var (
	// ErrNotChecked means add-to-basket was attempted before a successful
	// availability check.
	ErrNotChecked = errors.New("availability not checked")
	ErrOutOfStock = errors.New("not enough stock")
	ErrEmptyOrder = errors.New("no basket to check out")
)

type State int

const (
	// Idle is the resting state; every transition ends here except a
	// completed product-number check.
	Idle State = iota
	// Checked means a product has been looked up and add-to-basket may run.
	Checked
)

// Workflow is one cashier session. It is not safe for concurrent use;
// independent sessions share only the underlying services.
type Workflow struct {
	stock  stock.ReadWriter
	orders orders.Service
	bus    *notify.Bus

	state        State
	basket       *catalogue.Basket // order basket, created on first add
	searchBasket *catalogue.Basket
}

func New(st stock.ReadWriter, ord orders.Service, bus *notify.Bus) *Workflow {
	return &Workflow{
		stock:        st,
		orders:       ord,
		bus:          bus,
		searchBasket: catalogue.NewBasket(),
	}
}

func (w *Workflow) State() State { return w.state }

// Basket returns the order basket, nil until the first successful add.
func (w *Workflow) Basket() *catalogue.Basket { return w.basket }

func (w *Workflow) SearchBasket() *catalogue.Basket { return w.searchBasket }

// Check looks a product up by number and puts it in the search basket. A
// completed lookup, found or not, promotes the session to Checked.
func (w *Workflow) Check(ctx context.Context, productNo string) error {
	w.searchBasket.Clear()
	w.state = Idle

	pn := strings.TrimSpace(productNo)
	if pn == "" {
		w.bus.Publish("No product number entered")
		return nil
	}

	ok, err := w.stock.Exists(ctx, pn)
	if err != nil {
		w.bus.Publish(err.Error())
		return fmt.Errorf("check %s: %w", pn, err)
	}
	if ok {
		pr, err := w.stock.Details(ctx, pn)
		if err != nil {
			w.bus.Publish(err.Error())
			return fmt.Errorf("check %s: %w", pn, err)
		}
		w.searchBasket.Add(pr)
		w.state = Checked
		w.bus.Publish(fmt.Sprintf("Product in stock | %s", pr.Description))
		return nil
	}

	w.state = Checked
	w.bus.Publish("Product number not found | " + pn)
	return nil
}

// Search fills the search basket with every product matching the keyword
// terms. Keyword results carry stock levels, not confirmed availability, so
// the session stays Idle.
func (w *Workflow) Search(ctx context.Context, terms string) error {
	w.searchBasket.Clear()
	w.state = Idle

	products, err := w.stock.Search(ctx, terms)
	if err != nil {
		w.bus.Publish(err.Error())
		return fmt.Errorf("search %q: %w", terms, err)
	}
	if len(products) == 0 {
		w.bus.Publish("No products found")
		return nil
	}
	w.searchBasket.AddAll(products)
	w.bus.Publish(fmt.Sprintf("%d products found", len(products)))
	return nil
}

// AddToBasket reserves the requested quantity and merges the product into
// the order basket. The session drops back to Idle whatever the outcome.
func (w *Workflow) AddToBasket(ctx context.Context, pr *catalogue.Product) error {
	if w.state != Checked {
		w.bus.Publish("Please check availability first")
		return ErrNotChecked
	}
	w.state = Idle

	bought, err := w.stock.Reserve(ctx, pr.ProductNo, pr.Quantity)
	if err != nil {
		w.bus.Publish(err.Error())
		return fmt.Errorf("reserve %s: %w", pr.ProductNo, err)
	}
	if !bought {
		w.bus.Publish("Couldn't add to basket")
		return ErrOutOfStock
	}

	if w.basket == nil {
		no, err := w.orders.AllocateNumber(ctx)
		if err != nil {
			// Give the reservation back rather than strand stock on an
			// order basket that never existed.
			if rerr := w.stock.Return(ctx, pr.ProductNo, pr.Quantity); rerr != nil {
				w.bus.Publish(rerr.Error())
			}
			w.bus.Publish(err.Error())
			return fmt.Errorf("allocate order number: %w", err)
		}
		w.basket = catalogue.NewBasket()
		w.basket.SetOrderNo(no)
	}

	w.basket.Add(pr.Copy())
	w.searchBasket.Clear()
	w.bus.Publish(fmt.Sprintf("Added item number %s to the basket", pr.ProductNo))
	return nil
}

// RemoveFromCart takes the whole line for the product number out of the
// basket and gives its quantity back to stock. Unknown numbers are a no-op.
func (w *Workflow) RemoveFromCart(ctx context.Context, productNo string) error {
	if w.basket == nil {
		return nil
	}
	line, ok := w.basket.Find(productNo)
	if !ok {
		return nil
	}

	// Return stock first: if the service call fails the basket is untouched.
	if err := w.stock.Return(ctx, productNo, line.Quantity); err != nil {
		w.bus.Publish(err.Error())
		return fmt.Errorf("return %s: %w", productNo, err)
	}
	w.basket.Remove(productNo)
	w.bus.Publish(fmt.Sprintf("Item number %s removed from cart", productNo))
	return nil
}

// Checkout submits the order basket and returns the submitted order. On a
// service failure the basket is kept for a retry.
func (w *Workflow) Checkout(ctx context.Context) (*catalogue.Basket, error) {
	if w.basket == nil || w.basket.Empty() {
		w.bus.Publish("No basket found")
		return nil, ErrEmptyOrder
	}

	if err := w.orders.Submit(ctx, w.basket); err != nil {
		w.bus.Publish(err.Error())
		return nil, fmt.Errorf("submit order %d: %w", w.basket.OrderNo(), err)
	}

	submitted := w.basket
	w.basket = nil
	w.searchBasket.Clear()
	w.state = Idle
	w.bus.Publish("Order checked out")
	return submitted, nil
}
