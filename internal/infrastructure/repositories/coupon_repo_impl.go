package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/internal/infrastructure/models"
)

// CouponRepository implements coupon template data operations
type CouponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) Create(ctx context.Context, c *entities.Coupon) error {
	assignIdentity(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	m := &models.Coupon{
		ID:             c.ID,
		MerchantID:     c.MerchantID,
		StoreID:        c.StoreID,
		Title:          c.Title,
		Description:    c.Description.Ptr(),
		Category:       c.Category.Ptr(),
		DiscountType:   string(c.DiscountType),
		DiscountValue:  c.DiscountValue,
		MinOrderAmount: c.MinOrderAmount.Ptr(),
		ValidFrom:      utcPtr(c.ValidFrom),
		ValidTo:        utcPtr(c.ValidTo),
		TotalIssuable:  c.TotalIssuable.Ptr(),
		PerUserLimit:   c.PerUserLimit.Ptr(),
		IssuedCount:    c.IssuedCount,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	return translateError(GetDB(ctx, r.db).Create(m).Error)
}

func (r *CouponRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Coupon, error) {
	var m models.Coupon
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return couponEntity(&m), nil
}

func (r *CouponRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.Coupon, error) {
	out := make(map[uuid.UUID]*entities.Coupon, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var ms []models.Coupon
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, err
	}
	for i := range ms {
		out[ms[i].ID] = couponEntity(&ms[i])
	}
	return out, nil
}

func (r *CouponRepository) ReserveIssue(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Model(&models.Coupon{}).
		Where("id = ? AND (total_issuable IS NULL OR issued_count < total_issuable)", id).
		Updates(map[string]interface{}{
			"issued_count": gorm.Expr("issued_count + 1"),
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

type nearbyCouponRow struct {
	models.Coupon
	StoreName   *string
	StoreLat    *float64
	StoreLng    *float64
	StoreRadius *int
}

func (r *CouponRepository) ListNearbyCandidates(ctx context.Context, category string, now time.Time, fetch int) ([]*entities.NearbyCoupon, error) {
	now = now.UTC()
	q := GetDB(ctx, r.db).Table("coupons AS c").
		Select("c.*, s.name AS store_name, s.lat AS store_lat, s.lng AS store_lng, s.radius_meters AS store_radius").
		Joins("LEFT JOIN stores s ON s.id = c.store_id").
		Where("c.is_active = ?", true).
		Where("c.valid_from IS NULL OR c.valid_from <= ?", now).
		Where("c.valid_to IS NULL OR c.valid_to >= ?", now).
		Where("s.id IS NULL OR s.is_active = ?", true)
	if category != "" {
		q = q.Where("c.category = ?", category)
	}
	var rows []nearbyCouponRow
	if err := q.Order("c.created_at DESC").Limit(fetch).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.NearbyCoupon, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		nc := &entities.NearbyCoupon{
			Coupon:   couponEntity(&row.Coupon),
			StoreLat: null.Float64FromPtr(row.StoreLat),
			StoreLng: null.Float64FromPtr(row.StoreLng),
		}
		if row.StoreName != nil {
			nc.StoreName = *row.StoreName
		}
		if row.StoreRadius != nil {
			nc.RadiusMeters = *row.StoreRadius
		}
		out = append(out, nc)
	}
	return out, nil
}

func (r *CouponRepository) FindIssuableForMerchant(ctx context.Context, merchantID uuid.UUID, now time.Time) (*entities.Coupon, error) {
	now = now.UTC()
	var m models.Coupon
	if err := GetDB(ctx, r.db).
		Where("merchant_id = ? AND is_active = ?", merchantID, true).
		Where("valid_from IS NULL OR valid_from <= ?", now).
		Where("valid_to IS NULL OR valid_to >= ?", now).
		Where("total_issuable IS NULL OR issued_count < total_issuable").
		Order("created_at ASC").
		First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return couponEntity(&m), nil
}

func couponEntity(m *models.Coupon) *entities.Coupon {
	return &entities.Coupon{
		ID:             m.ID,
		MerchantID:     m.MerchantID,
		StoreID:        m.StoreID,
		Title:          m.Title,
		Description:    null.StringFromPtr(m.Description),
		Category:       null.StringFromPtr(m.Category),
		DiscountType:   entities.DiscountType(m.DiscountType),
		DiscountValue:  m.DiscountValue,
		MinOrderAmount: null.Int64FromPtr(m.MinOrderAmount),
		ValidFrom:      null.TimeFromPtr(m.ValidFrom),
		ValidTo:        null.TimeFromPtr(m.ValidTo),
		TotalIssuable:  null.Int64FromPtr(m.TotalIssuable),
		PerUserLimit:   null.Int64FromPtr(m.PerUserLimit),
		IssuedCount:    m.IssuedCount,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func utcPtr(t null.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	u := t.Time.UTC()
	return &u
}

// CouponIssueRepository implements issued coupon data operations
type CouponIssueRepository struct {
	db *gorm.DB
}

func NewCouponIssueRepository(db *gorm.DB) *CouponIssueRepository {
	return &CouponIssueRepository{db: db}
}

func (r *CouponIssueRepository) Create(ctx context.Context, issue *entities.CouponIssue) error {
	assignIdentity(&issue.ID, &issue.IssuedAt)
	m := &models.CouponIssue{
		ID:          issue.ID,
		CouponID:    issue.CouponID,
		ConsumerID:  issue.ConsumerID,
		Code:        issue.Code,
		Status:      string(issue.Status),
		Channel:     string(issue.Channel),
		Reason:      issue.Reason,
		IssuedAt:    issue.IssuedAt.UTC(),
		UsedAt:      utcPtr(issue.UsedAt),
		UsedStoreID: issue.UsedStoreID,
	}
	return translateError(GetDB(ctx, r.db).Create(m).Error)
}

func (r *CouponIssueRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.CouponIssue, error) {
	var m models.CouponIssue
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return issueEntity(&m), nil
}

func (r *CouponIssueRepository) GetByCode(ctx context.Context, code string) (*entities.CouponIssue, error) {
	var m models.CouponIssue
	if err := GetDB(ctx, r.db).Where("code = ?", code).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return issueEntity(&m), nil
}

func (r *CouponIssueRepository) CountByConsumer(ctx context.Context, couponID, consumerID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.CouponIssue{}).
		Where("coupon_id = ? AND consumer_id = ? AND status <> ?", couponID, consumerID, string(entities.IssueStatusCancelled)).
		Count(&count).Error
	return count, err
}

func (r *CouponIssueRepository) MarkUsed(ctx context.Context, id, storeID uuid.UUID, usedAt time.Time) (bool, error) {
	res := GetDB(ctx, r.db).Model(&models.CouponIssue{}).
		Where("id = ? AND status = ?", id, string(entities.IssueStatusIssued)).
		Updates(map[string]interface{}{
			"status":        string(entities.IssueStatusUsed),
			"used_at":       usedAt.UTC(),
			"used_store_id": storeID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *CouponIssueRepository) ListByConsumer(ctx context.Context, consumerID uuid.UUID) ([]*entities.CouponIssue, error) {
	var ms []models.CouponIssue
	if err := GetDB(ctx, r.db).Where("consumer_id = ?", consumerID).Order("issued_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.CouponIssue, 0, len(ms))
	for i := range ms {
		out = append(out, issueEntity(&ms[i]))
	}
	return out, nil
}

func (r *CouponIssueRepository) ExpireElapsed(ctx context.Context, now time.Time, limit int) (int64, error) {
	res := GetDB(ctx, r.db).Exec(`UPDATE coupon_issues SET status = ?
		WHERE status = ? AND id IN (
			SELECT ci.id FROM coupon_issues ci
			JOIN coupons c ON c.id = ci.coupon_id
			WHERE ci.status = ? AND c.valid_to IS NOT NULL AND c.valid_to < ?
			LIMIT ?
		)`,
		string(entities.IssueStatusExpired),
		string(entities.IssueStatusIssued),
		string(entities.IssueStatusIssued), now.UTC(), limit)
	return res.RowsAffected, res.Error
}

func issueEntity(m *models.CouponIssue) *entities.CouponIssue {
	return &entities.CouponIssue{
		ID:          m.ID,
		CouponID:    m.CouponID,
		ConsumerID:  m.ConsumerID,
		Code:        m.Code,
		Status:      entities.CouponIssueStatus(m.Status),
		Channel:     entities.IssueChannel(m.Channel),
		Reason:      m.Reason,
		IssuedAt:    m.IssuedAt,
		UsedAt:      null.TimeFromPtr(m.UsedAt),
		UsedStoreID: m.UsedStoreID,
	}
}
