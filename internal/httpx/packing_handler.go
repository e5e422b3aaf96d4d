package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/tilldesk/minimart/internal/kafka"
	"github.com/tilldesk/minimart/internal/orders"
	"github.com/tilldesk/minimart/internal/packing"
	"github.com/tilldesk/minimart/internal/redisx"
)

// PackingHandler exposes the packing coordinator to the warehouse operator:
// a read of the claimed order and the completion handshake.
type PackingHandler struct {
	Coordinator *packing.Coordinator
	Producer    *kafkax.Producer
	Redis       *redis.Client
	Service     string
}

func (h *PackingHandler) Register(r *chi.Mux) {
	r.Get("/packing/order", h.currentOrder)
	r.Post("/packing/packed", h.markPacked)
}

func (h *PackingHandler) currentOrder(w http.ResponseWriter, r *http.Request) {
	cur := h.Coordinator.CurrentOrder()
	if cur == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no order being packed"})
		return
	}
	writeJSON(w, http.StatusOK, basketView(cur))
}

func (h *PackingHandler) markPacked(w http.ResponseWriter, r *http.Request) {
	orderNo, err := h.Coordinator.MarkPacked(r.Context())
	switch {
	case errors.Is(err, packing.ErrNothingToPack):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no order being packed"})
		return
	case err != nil:
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, orderNo)
	_ = h.Redis.Set(r.Context(), statusKey, `{"status":"PACKED"}`, redisx.TTLStatusCache).Err()

	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPacked,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		CorrelationID: string(orders.PartitionKey(orderNo)),
		Payload:       kafkax.MustMarshal(orders.OrderPackedPayload{OrderNo: orderNo}),
	}
	h.Producer.Publish(orders.PartitionKey(orderNo), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPacked)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)

	writeJSON(w, http.StatusOK, map[string]int64{"order_no": orderNo})
}
