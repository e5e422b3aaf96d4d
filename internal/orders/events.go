package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced = "OrderPlaced"
	EventOrderPacked = "OrderPacked"
)

type Envelope struct {
	EventID       string          `json:"event_id"` // uuid
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "minimart-cashier"
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload per event ----

type LineItem struct {
	ProductNo   string `json:"product_no"`
	Description string `json:"description"`
	Qty         int    `json:"qty"`
	UnitPrice   string `json:"unit_price"` // decimal string, 2dp
}

type OrderPlacedPayload struct {
	OrderNo int64      `json:"order_no"`
	Lines   []LineItem `json:"lines"`
	Total   string     `json:"total"` // decimal string, 2dp
}

type OrderPackedPayload struct {
	OrderNo int64 `json:"order_no"`
}
