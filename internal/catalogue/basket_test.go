package catalogue

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAdd_MergesByProductNumber(t *testing.T) {
	b := NewBasket()

	assert.True(t, b.Add(NewProduct("100", "Toaster", dec("19.99"), 2)))
	assert.True(t, b.Add(NewProduct("200", "Kettle", dec("29.50"), 1)))
	assert.True(t, b.Add(NewProduct("100", "Toaster", dec("19.99"), 3)))

	require.Equal(t, 2, b.Len())
	p, ok := b.Find("100")
	require.True(t, ok)
	assert.Equal(t, 5, p.Quantity)
}

func TestAdd_SortsNumericallyAscending(t *testing.T) {
	b := NewBasket()
	b.Add(NewProduct("10", "Radio", dec("5.00"), 1))
	b.Add(NewProduct("2", "Torch", dec("5.00"), 1))
	b.Add(NewProduct("100", "Toaster", dec("5.00"), 1))

	var nos []string
	for _, p := range b.Lines() {
		nos = append(nos, p.ProductNo)
	}
	assert.Equal(t, []string{"2", "10", "100"}, nos)
}

func TestSort_Descending(t *testing.T) {
	b := NewBasket()
	b.Add(NewProduct("2", "Torch", dec("5.00"), 1))
	b.Add(NewProduct("100", "Toaster", dec("5.00"), 1))
	b.Add(NewProduct("10", "Radio", dec("5.00"), 1))

	b.Sort(Descending)

	var nos []string
	for _, p := range b.Lines() {
		nos = append(nos, p.ProductNo)
	}
	assert.Equal(t, []string{"100", "10", "2"}, nos)
}

func TestTotalPrice_RoundsHalfUpWithoutDrift(t *testing.T) {
	b := NewBasket()
	b.Add(NewProduct("1", "Screws", dec("0.10"), 3))
	b.Add(NewProduct("2", "Washer", dec("0.20"), 1))

	assert.Equal(t, "0.50", b.TotalPrice().StringFixed(2))
}

func TestLineTotal_RoundsHalfUp(t *testing.T) {
	p := NewProduct("1", "Widget", dec("0.125"), 1)
	assert.Equal(t, "0.13", p.LineTotal().StringFixed(2))
}

func TestRemove(t *testing.T) {
	b := NewBasket()
	b.Add(NewProduct("100", "Toaster", dec("19.99"), 2))

	p, ok := b.Remove("100")
	require.True(t, ok)
	assert.Equal(t, 2, p.Quantity)
	assert.True(t, b.Empty())

	_, ok = b.Remove("100")
	assert.False(t, ok)
}

func TestSelection_IndependentOfLines(t *testing.T) {
	b := NewBasket()
	pr := NewProduct("100", "Toaster", dec("19.99"), 1)

	b.SetSelected(pr)
	assert.Equal(t, pr, b.Selected())
	assert.True(t, b.Empty())

	b.ClearSelected()
	assert.Nil(t, b.Selected())
}

func TestCopy_IsDeep(t *testing.T) {
	b := NewBasket()
	b.SetOrderNo(7)
	b.Add(NewProduct("100", "Toaster", dec("19.99"), 2))

	cp := b.Copy()
	cp.Lines()[0].Quantity = 99

	orig, _ := b.Find("100")
	assert.Equal(t, 2, orig.Quantity)
	assert.Equal(t, int64(7), cp.OrderNo())
}
