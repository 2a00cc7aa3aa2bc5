package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// KitchenStatus represents the kitchen ticket lifecycle
type KitchenStatus string

const (
	KitchenNew       KitchenStatus = "new"
	KitchenPreparing KitchenStatus = "preparing"
	KitchenReady     KitchenStatus = "ready"
	KitchenServed    KitchenStatus = "served"
	KitchenCancelled KitchenStatus = "cancelled"
)

var kitchenPredecessors = map[KitchenStatus][]KitchenStatus{
	KitchenPreparing: {KitchenNew},
	KitchenReady:     {KitchenPreparing},
	KitchenServed:    {KitchenReady},
	KitchenCancelled: {KitchenNew, KitchenPreparing},
}

// KitchenPredecessors lists the states an order may move from into target.
// An empty result means target cannot be reached by a transition.
func KitchenPredecessors(target KitchenStatus) []KitchenStatus {
	return kitchenPredecessors[target]
}

// CanTransition reports whether from -> to is allowed
func (from KitchenStatus) CanTransition(to KitchenStatus) bool {
	for _, s := range kitchenPredecessors[to] {
		if s == from {
			return true
		}
	}
	return false
}

// CartCascade returns the cart line status a kitchen transition propagates
// and the line statuses it applies to.
func CartCascade(target KitchenStatus) (CartItemStatus, []CartItemStatus, bool) {
	switch target {
	case KitchenPreparing:
		return CartPreparing, []CartItemStatus{CartConfirmed}, true
	case KitchenServed:
		return CartServed, []CartItemStatus{CartConfirmed, CartPreparing}, true
	case KitchenCancelled:
		return CartCancelled, []CartItemStatus{CartConfirmed, CartPreparing}, true
	}
	return "", nil, false
}

// KitchenItem is the denormalized snapshot of a cart line
type KitchenItem struct {
	CartItemID  uuid.UUID `json:"cart_item_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   int64     `json:"unit_price"`
	Options     string    `json:"options,omitempty"`
}

// KitchenOrder is the ticket the kitchen works from
type KitchenOrder struct {
	ID             uuid.UUID     `json:"id"`
	StoreID        uuid.UUID     `json:"store_id"`
	SessionID      uuid.UUID     `json:"session_id"`
	OrderNumber    int64         `json:"order_number"`
	OrderDate      string        `json:"order_date"`
	TableName      string        `json:"table_name"`
	Items          []KitchenItem `json:"items"`
	TotalAmount    int64         `json:"total_amount"`
	DiscountAmount int64         `json:"discount_amount"`
	FinalAmount    int64         `json:"final_amount"`
	CouponIssueID  *uuid.UUID    `json:"coupon_issue_id"`
	Notes          null.String   `json:"notes"`
	Status         KitchenStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	StartedAt      null.Time     `json:"started_at"`
	ReadyAt        null.Time     `json:"ready_at"`
	ServedAt       null.Time     `json:"served_at"`
	CancelledAt    null.Time     `json:"cancelled_at"`
}

// KitchenStatusInput is the kitchen update request body
type KitchenStatusInput struct {
	OrderID string        `json:"order_id"`
	Status  KitchenStatus `json:"status"`
}

// KitchenEvent is published when a kitchen order is created or moves
type KitchenEvent struct {
	Type        string        `json:"type"`
	OrderID     uuid.UUID     `json:"order_id"`
	StoreID     uuid.UUID     `json:"store_id"`
	OrderNumber int64         `json:"order_number"`
	TableName   string        `json:"table_name"`
	Status      KitchenStatus `json:"status"`
	At          time.Time     `json:"at"`
}

const (
	KitchenEventCreated       = "kitchen.order_created"
	KitchenEventStatusChanged = "kitchen.status_changed"
)
