package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderSummary is the order count and revenue of a merchant
type OrderSummary struct {
	Orders  int64
	Revenue int64
}

// CustomerSummary counts a merchant's customers
type CustomerSummary struct {
	Total int64
	New   int64
}

// StatsRepository defines merchant reporting queries
type StatsRepository interface {
	CountCouponsIssued(ctx context.Context, merchantID uuid.UUID, since time.Time) (int64, error)
	CountCouponsUsed(ctx context.Context, merchantID uuid.UUID, since time.Time) (int64, error)
	SummarizeOrders(ctx context.Context, merchantID uuid.UUID, since time.Time) (OrderSummary, error)
	SummarizeCustomers(ctx context.Context, merchantID uuid.UUID, since time.Time) (CustomerSummary, error)
}
