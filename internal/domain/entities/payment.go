package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentType represents what a payment is for
type PaymentType string

const (
	PaymentTypeTopup PaymentType = "topup"
)

const (
	MinCustomTopupAmount int64 = 10000
	PGOrderPrefix              = "CTT"
)

// PGOrderID builds the gateway order id from a timestamp and a random suffix
func PGOrderID(now time.Time, suffix string) string {
	return fmt.Sprintf("%s_%s_%s", PGOrderPrefix, now.UTC().Format("20060102150405"), suffix)
}

// TopupPackage is a predefined charge amount with a bonus
type TopupPackage struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Amount       int64     `json:"amount"`
	BonusAmount  int64     `json:"bonus_amount"`
	BonusPercent int64     `json:"bonus_percent"`
	IsActive     bool      `json:"is_active"`
	DisplayOrder int       `json:"display_order"`
}

// Bonus is the fixed bonus, or the percent bonus when no fixed one is set
func (p *TopupPackage) Bonus() int64 {
	if p.BonusAmount > 0 {
		return p.BonusAmount
	}
	return p.Amount * p.BonusPercent / 100
}

// Payment represents a payment entity
type Payment struct {
	ID             uuid.UUID     `json:"id"`
	MerchantID     uuid.UUID     `json:"merchant_id"`
	StoreID        *uuid.UUID    `json:"store_id"`
	PaymentType    PaymentType   `json:"payment_type"`
	PackageID      *uuid.UUID    `json:"package_id"`
	Amount         int64         `json:"amount"`
	BonusAmount    int64         `json:"bonus_amount"`
	FinalAmount    int64         `json:"final_amount"`
	PGOrderID      string        `json:"pg_order_id"`
	PGPaymentKey   null.String   `json:"pg_payment_key"`
	PaymentMethod  null.String   `json:"payment_method"`
	ReceiptURL     null.String   `json:"receipt_url"`
	FailureCode    null.String   `json:"failure_code"`
	FailureMessage null.String   `json:"failure_message"`
	Status         PaymentStatus `json:"status"`
	ApprovedAt     null.Time     `json:"approved_at"`
	FailedAt       null.Time     `json:"failed_at"`
	RefundAmount   int64         `json:"refund_amount"`
	RefundedAt     null.Time     `json:"refunded_at"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// CreateTopupInput is the topup request body
type CreateTopupInput struct {
	PackageID    string `json:"package_id"`
	CustomAmount int64  `json:"custom_amount"`
}

// TopupCheckout is what the client needs to open the gateway widget
type TopupCheckout struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	PGOrderID   string    `json:"pg_order_id"`
	Amount      int64     `json:"amount"`
	BonusAmount int64     `json:"bonus_amount"`
	TotalCredit int64     `json:"total_credit"`
	OrderName   string    `json:"order_name"`
}

// ConfirmPaymentInput is the gateway redirect payload
type ConfirmPaymentInput struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

// PaymentConfirmation is returned after a payment is approved
type PaymentConfirmation struct {
	PaymentID   uuid.UUID   `json:"payment_id"`
	Amount      int64       `json:"amount"`
	BonusAmount int64       `json:"bonus_amount"`
	TotalCredit int64       `json:"total_credit"`
	ReceiptURL  null.String `json:"receipt_url"`
}

// GatewayApproval is the gateway answer to a successful confirm
type GatewayApproval struct {
	PaymentKey string
	Method     string
	ReceiptURL string
	ApprovedAt time.Time
}

// GatewayDecline is an authoritative refusal from the gateway
type GatewayDecline struct {
	Status  int
	Code    string
	Message string
}

func (d *GatewayDecline) Error() string {
	return fmt.Sprintf("payment declined (%d %s): %s", d.Status, d.Code, d.Message)
}
