package entities

import (
	"time"

	"github.com/google/uuid"
)

// TouchpointType is a kind of merchant/consumer interaction
type TouchpointType string

const (
	TouchpointCouponGame    TouchpointType = "COUPON_GAME"
	TouchpointTableOrder    TouchpointType = "TABLE_ORDER"
	TouchpointTicketBooking TouchpointType = "TICKET_BOOKING"
	TouchpointVisit         TouchpointType = "VISIT"
)

// Touchpoint is one recorded interaction
type Touchpoint struct {
	MerchantID uuid.UUID
	ConsumerID uuid.UUID
	Type       TouchpointType
	Amount     int64
}

// TouchpointIncrements is how a touchpoint moves the relationship counters
type TouchpointIncrements struct {
	Visits  int64
	Coupons int64
	Spent   int64
}

// Increments returns the counter changes this touchpoint applies.
// A coupon game adds a coupon; everything else is a visit with spend.
func (t Touchpoint) Increments() TouchpointIncrements {
	if t.Type == TouchpointCouponGame {
		return TouchpointIncrements{Coupons: 1}
	}
	return TouchpointIncrements{Visits: 1, Spent: t.Amount}
}

// MerchantCustomer is the CRM relationship between a merchant and a consumer
type MerchantCustomer struct {
	ID               uuid.UUID `json:"id"`
	MerchantID       uuid.UUID `json:"merchant_id"`
	ConsumerID       uuid.UUID `json:"consumer_id"`
	VisitCount       int64     `json:"visit_count"`
	CouponIssueCount int64     `json:"coupon_issue_count"`
	TotalSpent       int64     `json:"total_spent"`
	FirstVisitAt     time.Time `json:"first_visit_at"`
	LastVisitAt      time.Time `json:"last_visit_at"`
}
