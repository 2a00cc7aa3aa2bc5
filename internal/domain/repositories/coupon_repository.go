package repositories

import (
	"context"
	"time"

	"couponmap.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// CouponRepository defines coupon template data operations
type CouponRepository interface {
	Create(ctx context.Context, coupon *entities.Coupon) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Coupon, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.Coupon, error)
	// ReserveIssue increments issued_count when the coupon still has stock.
	// It reports false when total_issuable is reached.
	ReserveIssue(ctx context.Context, id uuid.UUID) (bool, error)
	// ListNearbyCandidates returns active in-window coupons joined with
	// their store location, at most fetch rows.
	ListNearbyCandidates(ctx context.Context, category string, now time.Time, fetch int) ([]*entities.NearbyCoupon, error)
	FindIssuableForMerchant(ctx context.Context, merchantID uuid.UUID, now time.Time) (*entities.Coupon, error)
}

// CouponIssueRepository defines issued coupon data operations
type CouponIssueRepository interface {
	Create(ctx context.Context, issue *entities.CouponIssue) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.CouponIssue, error)
	GetByCode(ctx context.Context, code string) (*entities.CouponIssue, error)
	CountByConsumer(ctx context.Context, couponID, consumerID uuid.UUID) (int64, error)
	// MarkUsed flips an ISSUED issue to USED. It reports false when the
	// issue was not ISSUED anymore.
	MarkUsed(ctx context.Context, id, storeID uuid.UUID, usedAt time.Time) (bool, error)
	ListByConsumer(ctx context.Context, consumerID uuid.UUID) ([]*entities.CouponIssue, error)
	// ExpireElapsed flips up to limit ISSUED issues whose coupon window
	// closed before now to EXPIRED and returns how many moved.
	ExpireElapsed(ctx context.Context, now time.Time, limit int) (int64, error)
}
