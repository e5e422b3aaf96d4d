package catalogue

import (
	"sort"

	"github.com/shopspring/decimal"
)

type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// Basket holds product lines unique by product number, kept in ascending
// numeric product-number order after any structural change. A basket that has
// been promoted to an order also carries the order number.
type Basket struct {
	lines    []*Product
	orderNo  int64
	selected *Product
}

func NewBasket() *Basket {
	return &Basket{}
}

// Add merges the product into an existing line with the same product number,
// or appends it and re-sorts. Always reports the basket as modified.
func (b *Basket) Add(pr *Product) bool {
	for _, p := range b.lines {
		if p.ProductNo == pr.ProductNo {
			p.Quantity += pr.Quantity
			return true
		}
	}
	b.lines = append(b.lines, pr)
	b.Sort(Ascending)
	return true
}

// AddAll adds every product in order, applying the merge rule per product.
func (b *Basket) AddAll(prs []*Product) {
	for _, pr := range prs {
		b.Add(pr)
	}
}

func (b *Basket) Sort(order SortOrder) {
	sort.SliceStable(b.lines, func(i, j int) bool {
		if order == Descending {
			return b.lines[i].NumericKey() > b.lines[j].NumericKey()
		}
		return b.lines[i].NumericKey() < b.lines[j].NumericKey()
	})
}

// Remove takes the whole line for the product number out of the basket and
// returns it. The second return is false if no such line exists.
func (b *Basket) Remove(productNo string) (*Product, bool) {
	for i, p := range b.lines {
		if p.ProductNo == productNo {
			b.lines = append(b.lines[:i], b.lines[i+1:]...)
			return p, true
		}
	}
	return nil, false
}

func (b *Basket) Clear() {
	b.lines = nil
	b.selected = nil
}

func (b *Basket) Len() int { return len(b.lines) }

func (b *Basket) Empty() bool { return len(b.lines) == 0 }

// Lines returns the product lines in basket order. The slice is a copy, the
// products are not.
func (b *Basket) Lines() []*Product {
	out := make([]*Product, len(b.lines))
	copy(out, b.lines)
	return out
}

func (b *Basket) Find(productNo string) (*Product, bool) {
	for _, p := range b.lines {
		if p.ProductNo == productNo {
			return p, true
		}
	}
	return nil, false
}

// TotalPrice sums the rounded line totals and rounds the sum half-up to 2
// decimals again.
func (b *Basket) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, p := range b.lines {
		total = total.Add(p.LineTotal())
	}
	return total.Round(2)
}

func (b *Basket) OrderNo() int64      { return b.orderNo }
func (b *Basket) SetOrderNo(no int64) { b.orderNo = no }

// Selection is transient staging state for interactive flows. It never
// affects the basket contents.
func (b *Basket) SetSelected(pr *Product) { b.selected = pr }
func (b *Basket) Selected() *Product      { return b.selected }
func (b *Basket) ClearSelected()          { b.selected = nil }

// Copy returns a deep copy of the basket lines and order number. Selection is
// not carried over.
func (b *Basket) Copy() *Basket {
	cp := &Basket{orderNo: b.orderNo, lines: make([]*Product, 0, len(b.lines))}
	for _, p := range b.lines {
		cp.lines = append(cp.lines, p.Copy())
	}
	return cp
}
