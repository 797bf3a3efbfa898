package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventPaymentAuthorized  = "PaymentAuthorized"
	EventPaymentFailed      = "PaymentFailed"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the constants above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g. "storefront-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID     int     `json:"order_id"`
	OrderNumber string  `json:"order_number"`
	Total       float64 `json:"total"`
	ItemCount   int     `json:"item_count"`
}

type OrderStatusChangedPayload struct {
	OrderID int    `json:"order_id"`
	From    Status `json:"from"`
	To      Status `json:"to"`
}

type PaymentAuthorizedPayload struct {
	OrderID       int     `json:"order_id,omitempty"`
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
}

type PaymentFailedPayload struct {
	OrderID int    `json:"order_id,omitempty"`
	Reason  string `json:"reason"`
}
