package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"couponmap.backend/pkg/utils"
)

// ApprovalStatus represents merchant approval state
type ApprovalStatus string

const (
	ApprovalPending   ApprovalStatus = "pending"
	ApprovalReviewing ApprovalStatus = "reviewing"
	ApprovalApproved  ApprovalStatus = "approved"
	ApprovalRejected  ApprovalStatus = "rejected"
	ApprovalSuspended ApprovalStatus = "suspended"
)

// AllApprovalStatuses in display order
var AllApprovalStatuses = []ApprovalStatus{
	ApprovalPending, ApprovalReviewing, ApprovalApproved, ApprovalRejected, ApprovalSuspended,
}

// ApprovalAction is an admin decision on a merchant
type ApprovalAction string

const (
	ActionApprove ApprovalAction = "approve"
	ActionReject  ApprovalAction = "reject"
	ActionSuspend ApprovalAction = "suspend"
	ActionReview  ApprovalAction = "review"
)

// TargetStatus maps an action to the status it produces
func (a ApprovalAction) TargetStatus() (ApprovalStatus, bool) {
	switch a {
	case ActionApprove:
		return ApprovalApproved, true
	case ActionReject:
		return ApprovalRejected, true
	case ActionSuspend:
		return ApprovalSuspended, true
	case ActionReview:
		return ApprovalReviewing, true
	}
	return "", false
}

// Merchant represents a merchant entity
type Merchant struct {
	ID             uuid.UUID      `json:"id"`
	OwnerUserID    uuid.UUID      `json:"owner_user_id"`
	BusinessName   string         `json:"business_name"`
	OwnerName      string         `json:"owner_name"`
	Phone          string         `json:"phone"`
	Email          string         `json:"email"`
	Slug           string         `json:"slug"`
	Category       string         `json:"category"`
	Address        null.String    `json:"address"`
	Description    null.String    `json:"description"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	StatusReason   null.String    `json:"status_reason"`
	ApprovedAt     null.Time      `json:"approved_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// MerchantRegisterInput is the public merchant sign-up form
type MerchantRegisterInput struct {
	BusinessName string   `json:"businessName"`
	OwnerName    string   `json:"ownerName"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Slug         string   `json:"slug"`
	Category     string   `json:"category"`
	Address      string   `json:"address"`
	Description  string   `json:"description"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
}

// CouponTemplate is a suggested first coupon for a new merchant
type CouponTemplate struct {
	Title          string       `json:"title"`
	DiscountType   DiscountType `json:"discount_type"`
	DiscountValue  int64        `json:"discount_value"`
	MinOrderAmount int64        `json:"min_order_amount,omitempty"`
}

// MerchantRegistration is the result of a merchant sign-up
type MerchantRegistration struct {
	Merchant             *Merchant        `json:"merchant"`
	Store                *Store           `json:"store"`
	RecommendedTemplates []CouponTemplate `json:"recommended_templates"`
}

// ApprovalLog records one admin decision
type ApprovalLog struct {
	ID         uuid.UUID      `json:"id"`
	MerchantID uuid.UUID      `json:"merchant_id"`
	AdminID    uuid.UUID      `json:"admin_id"`
	Action     ApprovalAction `json:"action"`
	FromStatus ApprovalStatus `json:"from_status"`
	ToStatus   ApprovalStatus `json:"to_status"`
	Reason     null.String    `json:"reason"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ApprovalActionInput is the admin approval request body
type ApprovalActionInput struct {
	MerchantID string `json:"merchant_id"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

// ApprovalList is the admin approvals page
type ApprovalList struct {
	Merchants  []*Merchant              `json:"merchants"`
	Counts     map[ApprovalStatus]int64 `json:"counts"`
	Pagination utils.PaginationMeta     `json:"pagination"`
}

// MerchantStats summarizes one merchant over a period
type MerchantStats struct {
	Period        string    `json:"period"`
	From          time.Time `json:"from"`
	CouponsIssued int64     `json:"coupons_issued"`
	CouponsUsed   int64     `json:"coupons_used"`
	Orders        int64     `json:"orders"`
	Revenue       int64     `json:"revenue"`
	Customers     int64     `json:"customers"`
	NewCustomers  int64     `json:"new_customers"`
	WalletBalance int64     `json:"wallet_balance"`
}
