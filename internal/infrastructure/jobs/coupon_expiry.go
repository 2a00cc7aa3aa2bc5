package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"couponmap.backend/pkg/logger"
)

const couponExpiryBatch = 100

// couponIssueExpirer is the slice of the issue repository the job needs
type couponIssueExpirer interface {
	ExpireElapsed(ctx context.Context, now time.Time, limit int) (int64, error)
}

// CouponExpiryJob moves issued coupons whose template window has closed to EXPIRED
type CouponExpiryJob struct {
	repo     couponIssueExpirer
	interval time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewCouponExpiryJob(repo couponIssueExpirer, interval time.Duration) *CouponExpiryJob {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CouponExpiryJob{
		repo:     repo,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
		stop:     make(chan struct{}),
	}
}

func (j *CouponExpiryJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting coupon expiry job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Coupon expiry job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Coupon expiry job stopped")
			return
		case <-ticker.C:
			j.expireElapsed(ctx)
		}
	}
}

func (j *CouponExpiryJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

// expireElapsed drains elapsed issues in batches so one tick never holds a
// long write lock.
func (j *CouponExpiryJob) expireElapsed(ctx context.Context) int64 {
	var total int64
	now := j.now()
	for {
		n, err := j.repo.ExpireElapsed(ctx, now, couponExpiryBatch)
		if err != nil {
			logger.Error(ctx, "Error expiring coupon issues", zap.Error(err))
			return total
		}
		total += n
		if n < couponExpiryBatch || ctx.Err() != nil {
			break
		}
	}
	if total > 0 {
		logger.Info(ctx, "Expired coupon issues", zap.Int64("count", total))
	}
	return total
}
