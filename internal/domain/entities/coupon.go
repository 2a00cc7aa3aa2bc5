package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// DiscountType represents how a coupon discounts an order
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountAmount  DiscountType = "amount"
)

// Valid reports whether the discount type is known
func (d DiscountType) Valid() bool {
	return d == DiscountPercent || d == DiscountAmount
}

// CouponIssueStatus represents the state of one issued coupon
type CouponIssueStatus string

const (
	IssueStatusIssued    CouponIssueStatus = "ISSUED"
	IssueStatusUsed      CouponIssueStatus = "USED"
	IssueStatusExpired   CouponIssueStatus = "EXPIRED"
	IssueStatusCancelled CouponIssueStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is possible
func (s CouponIssueStatus) IsTerminal() bool {
	return s != IssueStatusIssued
}

// IssueChannel is where an issue came from
type IssueChannel string

const (
	ChannelEvent      IssueChannel = "event"
	ChannelMerchant   IssueChannel = "merchant"
	ChannelAdmin      IssueChannel = "admin"
	ChannelTableOrder IssueChannel = "table_order"
)

// Valid reports whether the channel is known
func (c IssueChannel) Valid() bool {
	switch c {
	case ChannelEvent, ChannelMerchant, ChannelAdmin, ChannelTableOrder:
		return true
	}
	return false
}

const (
	DefaultIssueReason = "MANUAL"
	GameRewardReason   = "GAME_REWARD"
)

// Coupon is a discount template owned by a merchant
type Coupon struct {
	ID             uuid.UUID    `json:"id"`
	MerchantID     uuid.UUID    `json:"merchant_id"`
	StoreID        *uuid.UUID   `json:"store_id"`
	Title          string       `json:"title"`
	Description    null.String  `json:"description"`
	Category       null.String  `json:"category"`
	DiscountType   DiscountType `json:"discount_type"`
	DiscountValue  int64        `json:"discount_value"`
	MinOrderAmount null.Int64   `json:"min_order_amount"`
	ValidFrom      null.Time    `json:"valid_from"`
	ValidTo        null.Time    `json:"valid_to"`
	TotalIssuable  null.Int64   `json:"total_issuable"`
	PerUserLimit   null.Int64   `json:"per_user_limit"`
	IssuedCount    int64        `json:"issued_count"`
	IsActive       bool         `json:"is_active"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// IsExpired reports whether the validity window has closed at now
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ValidTo.Valid && c.ValidTo.Time.Before(now)
}

// ValidAt reports whether the coupon may be used at store: the store must
// belong to the coupon's merchant, and to the coupon's store when one is set.
func (c *Coupon) ValidAt(store *Store) bool {
	if store == nil || c.MerchantID != store.MerchantID {
		return false
	}
	return c.StoreID == nil || *c.StoreID == store.ID
}

// InWindow reports whether now lies inside the validity window
func (c *Coupon) InWindow(now time.Time) bool {
	if c.ValidFrom.Valid && now.Before(c.ValidFrom.Time) {
		return false
	}
	return !c.IsExpired(now)
}

// ComputeDiscount returns the discount this coupon grants on total.
// The discount is zero when the minimum order amount is not met and
// never exceeds total.
func (c *Coupon) ComputeDiscount(total int64) int64 {
	if total <= 0 {
		return 0
	}
	if c.MinOrderAmount.Valid && total < c.MinOrderAmount.Int64 {
		return 0
	}
	var discount int64
	switch c.DiscountType {
	case DiscountPercent:
		discount = total * c.DiscountValue / 100
	case DiscountAmount:
		discount = c.DiscountValue
	}
	if discount < 0 {
		return 0
	}
	if discount > total {
		return total
	}
	return discount
}

// MeetsMinimum reports whether total passes the minimum order gate
func (c *Coupon) MeetsMinimum(total int64) bool {
	return !c.MinOrderAmount.Valid || total >= c.MinOrderAmount.Int64
}

// CouponIssue is one coupon granted to one consumer
type CouponIssue struct {
	ID          uuid.UUID         `json:"id"`
	CouponID    uuid.UUID         `json:"coupon_id"`
	ConsumerID  uuid.UUID         `json:"consumer_id"`
	Code        string            `json:"code"`
	Status      CouponIssueStatus `json:"status"`
	Channel     IssueChannel      `json:"channel"`
	Reason      string            `json:"reason"`
	IssuedAt    time.Time         `json:"issued_at"`
	UsedAt      null.Time         `json:"used_at"`
	UsedStoreID *uuid.UUID        `json:"used_store_id"`
}

// EffectiveStatus derives EXPIRED for an ISSUED issue whose coupon window closed
func (i *CouponIssue) EffectiveStatus(coupon *Coupon, now time.Time) CouponIssueStatus {
	if i.Status == IssueStatusIssued && coupon != nil && coupon.IsExpired(now) {
		return IssueStatusExpired
	}
	return i.Status
}

// IssuedCoupon is an issue joined with its coupon
type IssuedCoupon struct {
	*CouponIssue
	Coupon          *Coupon           `json:"coupon"`
	EffectiveStatus CouponIssueStatus `json:"effective_status"`
}

// NearbyCoupon is an active coupon with the distance to its store
type NearbyCoupon struct {
	*Coupon
	StoreName    string       `json:"store_name"`
	StoreLat     null.Float64 `json:"store_lat"`
	StoreLng     null.Float64 `json:"store_lng"`
	RadiusMeters int          `json:"-"`
	DistanceKm   *float64     `json:"distance_km"`
}

// NearbyCouponQuery filters coupon discovery
type NearbyCouponQuery struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
	Category string
	Limit    int
}

// CreateCouponInput creates a coupon template
type CreateCouponInput struct {
	StoreID        string       `json:"store_id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Category       string       `json:"category"`
	DiscountType   DiscountType `json:"discount_type"`
	DiscountValue  int64        `json:"discount_value"`
	MinOrderAmount *int64       `json:"min_order_amount"`
	ValidFrom      *time.Time   `json:"valid_from"`
	ValidTo        *time.Time   `json:"valid_to"`
	TotalIssuable  *int64       `json:"total_issuable"`
	PerUserLimit   *int64       `json:"per_user_limit"`
}

// IssueCouponInput is the coupon issue request body
type IssueCouponInput struct {
	ConsumerID string `json:"consumer_id"`
	CouponID   string `json:"coupon_id"`
	Reason     string `json:"reason"`
	Channel    string `json:"channel"`
}

// IssueResult is returned by a successful issue
type IssueResult struct {
	CouponIssueID uuid.UUID         `json:"coupon_issue_id"`
	Code          string            `json:"code"`
	Status        CouponIssueStatus `json:"status"`
}

// RedeemInput is the coupon use request body
type RedeemInput struct {
	CouponIssueID string `json:"coupon_issue_id"`
	StoreID       string `json:"store_id"`
}

// RedeemResult is returned by a successful redemption
type RedeemResult struct {
	ID     uuid.UUID         `json:"id"`
	Status CouponIssueStatus `json:"status"`
}

// CouponCheck is the merchant view of an issue before redemption
type CouponCheck struct {
	Issue     *CouponIssue      `json:"issue"`
	Coupon    *Coupon           `json:"coupon"`
	Status    CouponIssueStatus `json:"status"`
	CanUse    bool              `json:"can_use"`
	Reason    null.String       `json:"reason"`
	CheckedAt time.Time         `json:"checked_at"`
}
