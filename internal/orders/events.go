package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderSubmitted     = "OrderSubmitted"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g. "ssp-portal"
	CorrelationID string          `json:"correlation_id,omitempty"` // numeric order id
	Payload       json.RawMessage `json:"payload"`
}

type SubmittedItem struct {
	Service   string  `json:"service"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	LineTotal float64 `json:"line_total"`
}

type OrderSubmittedPayload struct {
	OrderID       int64           `json:"order_id"`
	DisplayID     string          `json:"display_id"`
	CustomerEmail string          `json:"customer_email"`
	Subtotal      float64         `json:"subtotal"`
	GST           float64         `json:"gst"`
	Total         float64         `json:"total"`
	Items         []SubmittedItem `json:"items"`
}

type OrderStatusChangedPayload struct {
	OrderID   int64  `json:"order_id"`
	OldStatus Status `json:"old_status"`
	NewStatus Status `json:"new_status"`
	ChangedBy string `json:"changed_by"`
}
