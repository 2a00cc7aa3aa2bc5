package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// SessionStatus represents the table session lifecycle
type SessionStatus string

const (
	SessionActive   SessionStatus = "active"
	SessionOrdering SessionStatus = "ordering"
	SessionPaid     SessionStatus = "paid"
	SessionClosed   SessionStatus = "closed"
)

// IsOpen reports whether the session still accepts cart changes
func (s SessionStatus) IsOpen() bool {
	return s == SessionActive || s == SessionOrdering
}

// SessionPredecessors lists the states a session may move from into target
func SessionPredecessors(target SessionStatus) []SessionStatus {
	switch target {
	case SessionOrdering:
		return []SessionStatus{SessionActive, SessionOrdering}
	case SessionPaid:
		return []SessionStatus{SessionActive, SessionOrdering}
	case SessionClosed:
		return []SessionStatus{SessionPaid}
	}
	return nil
}

// OpenTableKey is the uniqueness key held by an open session of a table
func OpenTableKey(storeID uuid.UUID, tableID string) string {
	return fmt.Sprintf("%s:%s", storeID, tableID)
}

const DefaultTableName = "테이블"

// TableSession is a table-side ordering context
type TableSession struct {
	ID             uuid.UUID     `json:"id"`
	StoreID        uuid.UUID     `json:"store_id"`
	TableID        string        `json:"table_id"`
	TableName      string        `json:"table_name"`
	Code           string        `json:"code"`
	Status         SessionStatus `json:"status"`
	ConsumerID     *uuid.UUID    `json:"consumer_id"`
	TotalAmount    int64         `json:"total_amount"`
	DiscountAmount int64         `json:"discount_amount"`
	FinalAmount    int64         `json:"final_amount"`
	CouponIssueID  *uuid.UUID    `json:"coupon_issue_id"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	PaidAt         null.Time     `json:"paid_at"`
	ClosedAt       null.Time     `json:"closed_at"`
}

// StartSessionInput is the session start request body
type StartSessionInput struct {
	StoreID    string `json:"store_id"`
	TableID    string `json:"table_id"`
	TableName  string `json:"table_name"`
	ConsumerID string `json:"consumer_id"`
}

// CartItemStatus represents a cart line lifecycle
type CartItemStatus string

const (
	CartPending   CartItemStatus = "pending"
	CartConfirmed CartItemStatus = "confirmed"
	CartPreparing CartItemStatus = "preparing"
	CartServed    CartItemStatus = "served"
	CartCancelled CartItemStatus = "cancelled"
)

// CartItem is one line of a table session cart
type CartItem struct {
	ID             uuid.UUID      `json:"id"`
	SessionID      uuid.UUID      `json:"session_id"`
	ProductID      uuid.UUID      `json:"product_id"`
	ProductName    string         `json:"product_name"`
	Quantity       int            `json:"quantity"`
	UnitPrice      int64          `json:"unit_price"`
	Options        null.String    `json:"options"`
	Status         CartItemStatus `json:"status"`
	KitchenOrderID *uuid.UUID     `json:"kitchen_order_id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// LineTotal is the price snapshot times quantity
func (c *CartItem) LineTotal() int64 {
	return c.UnitPrice * int64(c.Quantity)
}

// AddToCartInput is the add line request body
type AddToCartInput struct {
	SessionID string         `json:"session_id"`
	ProductID string         `json:"product_id"`
	Quantity  int            `json:"quantity"`
	Options   map[string]any `json:"options"`
}

// UpdateCartInput changes the quantity of a pending line
type UpdateCartInput struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Cart is the current cart of a session
type Cart struct {
	SessionID uuid.UUID   `json:"session_id"`
	Items     []*CartItem `json:"items"`
	Total     int64       `json:"total"`
}

// CartTotal sums every line that is not cancelled
func CartTotal(items []*CartItem) int64 {
	var total int64
	for _, item := range items {
		if item.Status == CartCancelled {
			continue
		}
		total += item.LineTotal()
	}
	return total
}

// SubmitOrderInput is the order submit request body
type SubmitOrderInput struct {
	SessionID     string `json:"session_id"`
	CouponIssueID string `json:"coupon_issue_id"`
	Notes         string `json:"notes"`
}

// OrderTotals is the priced result of a submitted order
type OrderTotals struct {
	TotalAmount    int64 `json:"total_amount"`
	DiscountAmount int64 `json:"discount_amount"`
	FinalAmount    int64 `json:"final_amount"`
}

// PriceOrder applies an optional coupon to total
func PriceOrder(total int64, coupon *Coupon) OrderTotals {
	var discount int64
	if coupon != nil {
		discount = coupon.ComputeDiscount(total)
	}
	return OrderTotals{TotalAmount: total, DiscountAmount: discount, FinalAmount: total - discount}
}

// SubmittedOrder is returned by a successful submit
type SubmittedOrder struct {
	KitchenOrder  *KitchenOrder `json:"kitchen_order"`
	Session       *TableSession `json:"session"`
	CouponApplied bool          `json:"coupon_applied"`
	OrderTotals
}

// SessionStatusInput is the merchant session status request body
type SessionStatusInput struct {
	Status SessionStatus `json:"status"`
}
