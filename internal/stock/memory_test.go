package stock

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilldesk/minimart/internal/catalogue"
)

func newMemory() *Memory {
	return NewMemory(
		catalogue.NewProduct("100", "Toaster", decimal.RequireFromString("19.99"), 5),
		catalogue.NewProduct("200", "Electric Kettle", decimal.RequireFromString("29.50"), 2),
	)
}

func TestReserve_NeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	m := newMemory()

	// 20 buyers race for 5 units, one each.
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sold int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := m.Reserve(ctx, "100", 1); ok {
				mu.Lock()
				sold++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, sold)
	assert.Equal(t, 0, m.Level("100"))
}

func TestReserve_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	m := newMemory()

	ok, err := m.Reserve(ctx, "200", 3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, m.Level("200"))
}

func TestReserveReturn_Symmetric(t *testing.T) {
	ctx := context.Background()
	m := newMemory()

	ok, err := m.Reserve(ctx, "100", 3)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, m.Return(ctx, "100", 3))

	assert.Equal(t, 5, m.Level("100"))
}

func TestDetails_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := newMemory()

	p, err := m.Details(ctx, "100")
	require.NoError(t, err)
	p.Quantity = 0

	again, err := m.Details(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, 5, again.Quantity)
}

func TestDetails_NotFound(t *testing.T) {
	_, err := newMemory().Details(context.Background(), "999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearch_MatchesAnyTerm(t *testing.T) {
	ctx := context.Background()
	m := newMemory()

	got, err := m.Search(ctx, "kettle toaster")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = m.Search(ctx, "ELECTRIC")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "200", got[0].ProductNo)

	got, err = m.Search(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}
