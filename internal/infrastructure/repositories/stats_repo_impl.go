package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"couponmap.backend/internal/domain/entities"
	domainRepos "couponmap.backend/internal/domain/repositories"
)

// StatsRepository implements merchant reporting queries
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) CountCouponsIssued(ctx context.Context, merchantID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Table("coupon_issues ci").
		Joins("JOIN coupons c ON c.id = ci.coupon_id").
		Where("c.merchant_id = ? AND ci.issued_at >= ?", merchantID, since.UTC()).
		Count(&n).Error
	return n, err
}

func (r *StatsRepository) CountCouponsUsed(ctx context.Context, merchantID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Table("coupon_issues ci").
		Joins("JOIN coupons c ON c.id = ci.coupon_id").
		Where("c.merchant_id = ? AND ci.status = ? AND ci.used_at >= ?", merchantID, string(entities.IssueStatusUsed), since.UTC()).
		Count(&n).Error
	return n, err
}

func (r *StatsRepository) SummarizeOrders(ctx context.Context, merchantID uuid.UUID, since time.Time) (domainRepos.OrderSummary, error) {
	var out domainRepos.OrderSummary
	err := GetDB(ctx, r.db).Table("kitchen_orders ko").
		Select("COUNT(*) AS orders, COALESCE(SUM(ko.final_amount), 0) AS revenue").
		Joins("JOIN stores s ON s.id = ko.store_id").
		Where("s.merchant_id = ? AND ko.created_at >= ? AND ko.status <> ?", merchantID, since.UTC(), string(entities.KitchenCancelled)).
		Scan(&out).Error
	return out, err
}

func (r *StatsRepository) SummarizeCustomers(ctx context.Context, merchantID uuid.UUID, since time.Time) (domainRepos.CustomerSummary, error) {
	var out domainRepos.CustomerSummary
	err := GetDB(ctx, r.db).Table("merchant_customers").
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN first_visit_at >= ? THEN 1 ELSE 0 END), 0) AS new", since.UTC()).
		Where("merchant_id = ?", merchantID).
		Scan(&out).Error
	return out, err
}
