package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/tilldesk/minimart/internal/catalogue"
	"github.com/tilldesk/minimart/internal/checkout"
	kafkax "github.com/tilldesk/minimart/internal/kafka"
	"github.com/tilldesk/minimart/internal/orders"
	"github.com/tilldesk/minimart/internal/redisx"
)

// CashierHandler exposes one cashier session over HTTP. The mutex serializes
// requests onto the session, which is single-till by design.
type CashierHandler struct {
	mu       sync.Mutex
	Checkout *checkout.Workflow
	Producer *kafkax.Producer
	Redis    *redis.Client
	Service  string
}

type checkReq struct {
	ProductNo string `json:"product_no"`
}

type searchReq struct {
	Terms string `json:"terms"`
}

type addItemReq struct {
	ProductNo string `json:"product_no"`
	Qty       int    `json:"qty"`
}

type checkoutResp struct {
	OrderNo int64  `json:"order_no"`
	Total   string `json:"total"`
}

func (h *CashierHandler) Register(r *chi.Mux) {
	r.Post("/cashier/check", h.check)
	r.Post("/cashier/search", h.search)
	r.Post("/cashier/basket/items", h.addItem)
	r.Delete("/cashier/basket/items/{productNo}", h.removeItem)
	r.Post("/cashier/checkout", h.checkout)
	r.Get("/cashier/basket", h.basket)
}

func (h *CashierHandler) check(w http.ResponseWriter, r *http.Request) {
	var req checkReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.Checkout.Check(r.Context(), req.ProductNo); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, basketView(h.Checkout.SearchBasket()))
}

func (h *CashierHandler) search(w http.ResponseWriter, r *http.Request) {
	var req searchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.Checkout.Search(r.Context(), req.Terms); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, basketView(h.Checkout.SearchBasket()))
}

func (h *CashierHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ProductNo == "" || req.Qty <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	pr, ok := h.Checkout.SearchBasket().Find(req.ProductNo)
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "check availability first"})
		return
	}
	item := pr.Copy()
	item.Quantity = req.Qty

	err := h.Checkout.AddToBasket(r.Context(), item)
	switch {
	case errors.Is(err, checkout.ErrNotChecked):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "check availability first"})
	case errors.Is(err, checkout.ErrOutOfStock):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "not enough stock"})
	case err != nil:
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusOK, basketView(h.Checkout.Basket()))
	}
}

func (h *CashierHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	productNo := chi.URLParam(r, "productNo")
	if productNo == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing product number"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.Checkout.RemoveFromCart(r.Context(), productNo); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, basketView(h.Checkout.Basket()))
}

func (h *CashierHandler) checkout(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	submitted, err := h.Checkout.Checkout(r.Context())
	switch {
	case errors.Is(err, checkout.ErrEmptyOrder):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no basket to check out"})
		return
	case err != nil:
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	// Cache the status so the packing side answers reads cheaply.
	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, submitted.OrderNo())
	_ = h.Redis.Set(r.Context(), statusKey, `{"status":"WAITING"}`, redisx.TTLStatusCache).Err()

	h.publishPlaced(submitted.OrderNo(), submitted)
	writeJSON(w, http.StatusAccepted, checkoutResp{
		OrderNo: submitted.OrderNo(),
		Total:   submitted.TotalPrice().StringFixed(2),
	})
}

func (h *CashierHandler) basket(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	writeJSON(w, http.StatusOK, basketView(h.Checkout.Basket()))
}

func (h *CashierHandler) publishPlaced(orderNo int64, b *catalogue.Basket) {
	lines := make([]orders.LineItem, 0, b.Len())
	for _, p := range b.Lines() {
		lines = append(lines, orders.LineItem{
			ProductNo:   p.ProductNo,
			Description: p.Description,
			Qty:         p.Quantity,
			UnitPrice:   p.UnitPrice.StringFixed(2),
		})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		CorrelationID: string(orders.PartitionKey(orderNo)),
		Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
			OrderNo: orderNo,
			Lines:   lines,
			Total:   b.TotalPrice().StringFixed(2),
		}),
	}
	h.Producer.Publish(orders.PartitionKey(orderNo), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
