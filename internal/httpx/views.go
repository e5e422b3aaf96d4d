package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/tilldesk/minimart/internal/catalogue"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type LineView struct {
	ProductNo   string `json:"product_no"`
	Description string `json:"description"`
	Qty         int    `json:"qty"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

type BasketView struct {
	OrderNo int64      `json:"order_no,omitempty"`
	Lines   []LineView `json:"lines"`
	Total   string     `json:"total"`
}

func basketView(b *catalogue.Basket) BasketView {
	view := BasketView{Lines: []LineView{}, Total: "0.00"}
	if b == nil {
		return view
	}
	view.OrderNo = b.OrderNo()
	view.Total = b.TotalPrice().StringFixed(2)
	for _, p := range b.Lines() {
		view.Lines = append(view.Lines, LineView{
			ProductNo:   p.ProductNo,
			Description: p.Description,
			Qty:         p.Quantity,
			UnitPrice:   p.UnitPrice.StringFixed(2),
			LineTotal:   p.LineTotal().StringFixed(2),
		})
	}
	return view
}
