package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType names transaction and analytics events
type EventType string

const (
	EventCouponIssued     EventType = "coupon_issued"
	EventCouponUsed       EventType = "coupon_used"
	EventOrderCreated     EventType = "order_created"
	EventPaymentCompleted EventType = "payment_completed"
	EventGameFinished     EventType = "game_finished"
	EventTicketPurchased  EventType = "ticket_purchased"
	EventTicketUsed       EventType = "ticket_used"
)

// TransactionEvent is an audit/analytics record
type TransactionEvent struct {
	ID         uuid.UUID       `json:"id"`
	EventType  EventType       `json:"event_type"`
	MerchantID *uuid.UUID      `json:"merchant_id"`
	StoreID    *uuid.UUID      `json:"store_id"`
	ConsumerID *uuid.UUID      `json:"consumer_id"`
	Amount     int64           `json:"amount"`
	Metadata   json.RawMessage `json:"metadata"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewTransactionEvent builds an event with metadata marshalled to JSON
func NewTransactionEvent(eventType EventType, amount int64, metadata map[string]any) *TransactionEvent {
	raw, err := json.Marshal(metadata)
	if err != nil || metadata == nil {
		raw = json.RawMessage("{}")
	}
	return &TransactionEvent{
		EventType: eventType,
		Amount:    amount,
		Metadata:  raw,
	}
}
