package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/tilldesk/minimart/internal/restock"
)

// BackdoorHandler exposes the warehouse back door: stock lookups and
// restocking.
type BackdoorHandler struct {
	mu      sync.Mutex
	Restock *restock.Workflow
}

type restockReq struct {
	ProductNo string `json:"product_no"`
	Quantity  string `json:"quantity"`
}

func (h *BackdoorHandler) Register(r *chi.Mux) {
	r.Post("/backdoor/restock", h.restock)
	r.Post("/backdoor/check", h.check)
	r.Post("/backdoor/search", h.search)
	r.Get("/backdoor/basket", h.basket)
}

func (h *BackdoorHandler) restock(w http.ResponseWriter, r *http.Request) {
	var req restockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	err := h.Restock.Restock(r.Context(), req.ProductNo, req.Quantity)
	switch {
	case errors.Is(err, restock.ErrInvalidQuantity):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity"})
	case errors.Is(err, restock.ErrUnknownProduct):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown product number"})
	case err != nil:
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusOK, basketView(h.Restock.Basket()))
	}
}

func (h *BackdoorHandler) check(w http.ResponseWriter, r *http.Request) {
	var req checkReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.Restock.CheckNumber(r.Context(), req.ProductNo); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, basketView(h.Restock.Basket()))
}

func (h *BackdoorHandler) search(w http.ResponseWriter, r *http.Request) {
	var req searchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.Restock.SearchKeyword(r.Context(), req.Terms); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, basketView(h.Restock.Basket()))
}

func (h *BackdoorHandler) basket(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	writeJSON(w, http.StatusOK, basketView(h.Restock.Basket()))
}
