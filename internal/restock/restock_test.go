package restock

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilldesk/minimart/internal/catalogue"
	"github.com/tilldesk/minimart/internal/notify"
	"github.com/tilldesk/minimart/internal/stock"
)

func newWorkflow(t *testing.T) (*Workflow, *stock.Memory, <-chan string) {
	t.Helper()
	st := stock.NewMemory(
		catalogue.NewProduct("100", "Toaster", decimal.RequireFromString("19.99"), 5),
		catalogue.NewProduct("300", "Lamp", decimal.RequireFromString("9.00"), 0),
	)
	bus := notify.NewBus()
	_, ch := bus.Subscribe()
	return New(st, bus), st, ch
}

func TestRestock_AddsStockAndRefreshesDetail(t *testing.T) {
	ctx := context.Background()
	w, st, ch := newWorkflow(t)

	require.NoError(t, w.Restock(ctx, "100", "7"))

	assert.Equal(t, 12, st.Level("100"))
	require.Equal(t, 1, w.Basket().Len())
	pr, _ := w.Basket().Find("100")
	assert.Equal(t, 12, pr.Quantity)
	assert.Equal(t, "Product stock updated", <-ch)
}

func TestRestock_InvalidQuantity(t *testing.T) {
	ctx := context.Background()
	w, st, ch := newWorkflow(t)

	for _, bad := range []string{"-3", "abc", "1.5", ""} {
		err := w.Restock(ctx, "100", bad)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "quantity %q", bad)
		assert.Equal(t, "Invalid quantity", <-ch)
	}
	assert.Equal(t, 5, st.Level("100"))
}

func TestRestock_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	w, _, ch := newWorkflow(t)

	err := w.Restock(ctx, "999", "3")

	assert.ErrorIs(t, err, ErrUnknownProduct)
	assert.True(t, w.Basket().Empty())
	assert.Equal(t, "Unknown product number: 999", <-ch)
}

func TestCheckNumber_ReportsStockState(t *testing.T) {
	ctx := context.Background()
	w, _, ch := newWorkflow(t)

	require.NoError(t, w.CheckNumber(ctx, "100"))
	assert.Equal(t, "Product in stock | Toaster", <-ch)

	require.NoError(t, w.CheckNumber(ctx, "300"))
	assert.Equal(t, "Product not in stock | Lamp", <-ch)

	require.NoError(t, w.CheckNumber(ctx, "999"))
	assert.Equal(t, "Product number not found | 999", <-ch)
	assert.True(t, w.Basket().Empty())
}

func TestSearchKeyword(t *testing.T) {
	ctx := context.Background()
	w, _, ch := newWorkflow(t)

	require.NoError(t, w.SearchKeyword(ctx, "toaster lamp"))
	assert.Equal(t, 2, w.Basket().Len())
	assert.Equal(t, "2 products found", <-ch)
}
