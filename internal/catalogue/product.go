package catalogue

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Product is one stock line: unique product number, description, unit price
// and a quantity. Quantity is contextual: available stock when the product
// comes back from the stock service, requested quantity inside a basket.
type Product struct {
	ProductNo   string
	Description string
	UnitPrice   decimal.Decimal
	Quantity    int
	PictureURL  string
}

func NewProduct(productNo, description string, unitPrice decimal.Decimal, quantity int) *Product {
	return &Product{
		ProductNo:   productNo,
		Description: description,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
	}
}

// LineTotal is unit price times quantity, rounded half-up to 2 decimals.
func (p *Product) LineTotal() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity))).Round(2)
}

// NumericKey parses the product number as an integer for ordering, so that
// "2" sorts before "10".
func (p *Product) NumericKey() int64 {
	n, _ := strconv.ParseInt(p.ProductNo, 10, 64)
	return n
}

func (p *Product) Copy() *Product {
	cp := *p
	return &cp
}

func (p *Product) String() string {
	return fmt.Sprintf("%s - %s | Total Price: %s - Qty: %d",
		p.ProductNo, p.Description, p.LineTotal().StringFixed(2), p.Quantity)
}
