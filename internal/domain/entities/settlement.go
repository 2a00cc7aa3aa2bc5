package entities

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// SettlementStatus is the payout state of a settlement
type SettlementStatus string

const (
	SettlementPending    SettlementStatus = "pending"
	SettlementConfirmed  SettlementStatus = "confirmed"
	SettlementProcessing SettlementStatus = "processing"
	SettlementCompleted  SettlementStatus = "completed"
	SettlementFailed     SettlementStatus = "failed"

	// DefaultSettlementFeeRate is the platform fee in percent
	DefaultSettlementFeeRate = 3.5
	// DefaultSettlementPeriod is the window settled when none is given
	DefaultSettlementPeriod = 7 * 24 * time.Hour

	SettlementDateLayout = "2006-01-02"
)

// SettlementSources lists, per target status, the statuses it may be reached from
var SettlementSources = map[SettlementStatus][]SettlementStatus{
	SettlementConfirmed:  {SettlementPending},
	SettlementProcessing: {SettlementPending, SettlementConfirmed},
	SettlementCompleted:  {SettlementPending, SettlementConfirmed, SettlementProcessing},
	SettlementFailed:     {SettlementPending, SettlementConfirmed, SettlementProcessing},
	SettlementPending:    {SettlementFailed},
}

// Settlement aggregates a merchant's payments over a period into one payout
type Settlement struct {
	ID            uuid.UUID         `json:"id"`
	MerchantID    uuid.UUID         `json:"merchant_id"`
	PeriodStart   string            `json:"period_start"`
	PeriodEnd     string            `json:"period_end"`
	GrossAmount   int64             `json:"gross_amount"`
	FeeAmount     int64             `json:"fee_amount"`
	FeeRate       float64           `json:"fee_rate"`
	NetAmount     int64             `json:"net_amount"`
	OrderCount    int64             `json:"order_count"`
	RefundCount   int64             `json:"refund_count"`
	RefundAmount  int64             `json:"refund_amount"`
	Status        SettlementStatus  `json:"status"`
	BankName      null.String       `json:"bank_name"`
	BankAccount   null.String       `json:"bank_account"`
	AccountHolder null.String       `json:"account_holder"`
	Notes         null.String       `json:"notes"`
	ConfirmedAt   null.Time         `json:"confirmed_at"`
	ProcessedAt   null.Time         `json:"processed_at"`
	CompletedAt   null.Time         `json:"completed_at"`
	Items         []*SettlementItem `json:"items,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// SettlementItem is one payment counted in a settlement
type SettlementItem struct {
	ID            uuid.UUID `json:"id"`
	SettlementID  uuid.UUID `json:"settlement_id"`
	ItemType      string    `json:"item_type"`
	ReferenceID   uuid.UUID `json:"reference_id"`
	ReferenceType string    `json:"reference_type"`
	GrossAmount   int64     `json:"gross_amount"`
	FeeAmount     int64     `json:"fee_amount"`
	NetAmount     int64     `json:"net_amount"`
	Description   string    `json:"description"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// SettlementFee is the fee on amount at rate percent, rounded half away from zero
func SettlementFee(amount int64, rate float64) int64 {
	return int64(math.Round(float64(amount) * rate / 100))
}

// BuildSettlement aggregates paid and refunded payments of one merchant.
// The net amount is gross minus fee minus refunds.
func BuildSettlement(merchantID uuid.UUID, start, end time.Time, paid, refunded []*Payment, rate float64) *Settlement {
	s := &Settlement{
		MerchantID:  merchantID,
		PeriodStart: start.UTC().Format(SettlementDateLayout),
		PeriodEnd:   end.UTC().Format(SettlementDateLayout),
		FeeRate:     rate,
		Status:      SettlementPending,
		Items:       make([]*SettlementItem, 0, len(paid)),
	}
	for _, p := range paid {
		fee := SettlementFee(p.FinalAmount, rate)
		description := "order"
		if p.PaymentType == PaymentTypeTopup {
			description = "topup"
		}
		s.GrossAmount += p.FinalAmount
		s.OrderCount++
		s.Items = append(s.Items, &SettlementItem{
			ItemType:      "order",
			ReferenceID:   p.ID,
			ReferenceType: "payment",
			GrossAmount:   p.FinalAmount,
			FeeAmount:     fee,
			NetAmount:     p.FinalAmount - fee,
			Description:   description,
			OccurredAt:    p.ApprovedAt.Time,
		})
	}
	for _, p := range refunded {
		s.RefundAmount += p.RefundAmount
		s.RefundCount++
	}
	s.FeeAmount = SettlementFee(s.GrossAmount, rate)
	s.NetAmount = s.GrossAmount - s.FeeAmount - s.RefundAmount
	return s
}

// CreateSettlementInput asks for a settlement of one merchant's period.
// Missing bounds default to the last seven days.
type CreateSettlementInput struct {
	MerchantID  string     `json:"merchant_id"`
	PeriodStart *time.Time `json:"period_start"`
	PeriodEnd   *time.Time `json:"period_end"`
}

// UpdateSettlementInput moves a settlement and records payout details
type UpdateSettlementInput struct {
	Status        SettlementStatus `json:"status"`
	BankName      string           `json:"bank_name"`
	BankAccount   string           `json:"bank_account"`
	AccountHolder string           `json:"account_holder"`
	Notes         string           `json:"notes"`
}

// SettlementSummary totals a settlement listing
type SettlementSummary struct {
	TotalGross     int64 `json:"total_gross"`
	TotalNet       int64 `json:"total_net"`
	PendingCount   int   `json:"pending_count"`
	CompletedCount int   `json:"completed_count"`
}

// Summarize totals settlements
func Summarize(settlements []*Settlement) SettlementSummary {
	var sum SettlementSummary
	for _, s := range settlements {
		sum.TotalGross += s.GrossAmount
		sum.TotalNet += s.NetAmount
		switch s.Status {
		case SettlementPending:
			sum.PendingCount++
		case SettlementCompleted:
			sum.CompletedCount++
		}
	}
	return sum
}

// SettlementList is a merchant's settlements with totals
type SettlementList struct {
	Settlements []*Settlement     `json:"settlements"`
	Summary     SettlementSummary `json:"summary"`
}
