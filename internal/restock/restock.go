// Package restock implements the back-door workflow: locate a product and
// top up its available stock.
package restock

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tilldesk/minimart/internal/catalogue"
	"github.com/tilldesk/minimart/internal/notify"
	"github.com/tilldesk/minimart/internal/stock"
)

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrUnknownProduct  = errors.New("unknown product number")
)

type Workflow struct {
	stock stock.ReadWriter
	bus   *notify.Bus

	basket *catalogue.Basket // last lookup / restock result
}

func New(st stock.ReadWriter, bus *notify.Bus) *Workflow {
	return &Workflow{stock: st, bus: bus, basket: catalogue.NewBasket()}
}

func (w *Workflow) Basket() *catalogue.Basket { return w.basket }

// Restock adds the given amount to the product's stock and deposits the
// refreshed product detail in the result basket. The amount must be a
// non-negative integer; nothing is sent to the service otherwise.
func (w *Workflow) Restock(ctx context.Context, productNo, amountText string) error {
	w.basket = catalogue.NewBasket()
	pn := strings.TrimSpace(productNo)

	amount, err := strconv.Atoi(strings.TrimSpace(amountText))
	if err != nil || amount < 0 {
		w.bus.Publish("Invalid quantity")
		return ErrInvalidQuantity
	}

	ok, err := w.stock.Exists(ctx, pn)
	if err != nil {
		w.bus.Publish(err.Error())
		return fmt.Errorf("restock %s: %w", pn, err)
	}
	if !ok {
		w.bus.Publish("Unknown product number: " + pn)
		return ErrUnknownProduct
	}

	if err := w.stock.Return(ctx, pn, amount); err != nil {
		w.bus.Publish(err.Error())
		return fmt.Errorf("restock %s: %w", pn, err)
	}
	pr, err := w.stock.Details(ctx, pn)
	if err != nil {
		w.bus.Publish(err.Error())
		return fmt.Errorf("restock %s: %w", pn, err)
	}
	w.basket.Add(pr)
	w.bus.Publish("Product stock updated")
	return nil
}

// CheckNumber looks a product up by number and reports whether it is in
// stock.
func (w *Workflow) CheckNumber(ctx context.Context, productNo string) error {
	w.basket.Clear()
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
	if !ok {
		w.bus.Publish("Product number not found | " + pn)
		return nil
	}

	pr, err := w.stock.Details(ctx, pn)
	if err != nil {
		w.bus.Publish(err.Error())
		return fmt.Errorf("check %s: %w", pn, err)
	}
	w.basket.Add(pr)
	if pr.Quantity > 0 {
		w.bus.Publish("Product in stock | " + pr.Description)
	} else {
		w.bus.Publish("Product not in stock | " + pr.Description)
	}
	return nil
}

// SearchKeyword fills the result basket with every matching product.
func (w *Workflow) SearchKeyword(ctx context.Context, terms string) error {
	w.basket.Clear()

	products, err := w.stock.Search(ctx, terms)
	if err != nil {
		w.bus.Publish(err.Error())
		return fmt.Errorf("search %q: %w", terms, err)
	}
	if len(products) == 0 {
		w.bus.Publish("No products found")
		return nil
	}
	w.basket.AddAll(products)
	w.bus.Publish(fmt.Sprintf("%d products found", len(products)))
	return nil
}

func (w *Workflow) Clear() {
	w.basket.Clear()
	w.bus.Publish("Search for product by product number or keyword")
}
