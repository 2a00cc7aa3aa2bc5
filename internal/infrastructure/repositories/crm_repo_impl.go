package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/internal/infrastructure/models"
	"couponmap.backend/pkg/utils"
)

// CustomerRepository implements CRM relationship data operations
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// RecordTouchpoint inserts the relationship or bumps its counters
func (r *CustomerRepository) RecordTouchpoint(ctx context.Context, tp entities.Touchpoint, at time.Time) error {
	inc := tp.Increments()
	at = at.UTC()
	return GetDB(ctx, r.db).Exec(`INSERT INTO merchant_customers
		(id, merchant_id, consumer_id, visit_count, coupon_issue_count, total_spent, first_visit_at, last_visit_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (merchant_id, consumer_id) DO UPDATE SET
			visit_count = merchant_customers.visit_count + excluded.visit_count,
			coupon_issue_count = merchant_customers.coupon_issue_count + excluded.coupon_issue_count,
			total_spent = merchant_customers.total_spent + excluded.total_spent,
			last_visit_at = excluded.last_visit_at`,
		utils.GenerateUUIDv7(), tp.MerchantID, tp.ConsumerID, inc.Visits, inc.Coupons, inc.Spent, at, at,
	).Error
}

func (r *CustomerRepository) Get(ctx context.Context, merchantID, consumerID uuid.UUID) (*entities.MerchantCustomer, error) {
	var m models.MerchantCustomer
	if err := GetDB(ctx, r.db).
		Where("merchant_id = ? AND consumer_id = ?", merchantID, consumerID).
		First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return &entities.MerchantCustomer{
		ID:               m.ID,
		MerchantID:       m.MerchantID,
		ConsumerID:       m.ConsumerID,
		VisitCount:       m.VisitCount,
		CouponIssueCount: m.CouponIssueCount,
		TotalSpent:       m.TotalSpent,
		FirstVisitAt:     m.FirstVisitAt,
		LastVisitAt:      m.LastVisitAt,
	}, nil
}

// TransactionEventRepository implements audit event writes
type TransactionEventRepository struct {
	db *gorm.DB
}

func NewTransactionEventRepository(db *gorm.DB) *TransactionEventRepository {
	return &TransactionEventRepository{db: db}
}

func (r *TransactionEventRepository) Create(ctx context.Context, e *entities.TransactionEvent) error {
	assignIdentity(&e.ID, &e.CreatedAt)
	metadata := string(e.Metadata)
	if metadata == "" {
		metadata = "{}"
	}
	m := &models.TransactionEvent{
		ID:         e.ID,
		EventType:  string(e.EventType),
		MerchantID: e.MerchantID,
		StoreID:    e.StoreID,
		ConsumerID: e.ConsumerID,
		Amount:     e.Amount,
		Metadata:   metadata,
		CreatedAt:  e.CreatedAt,
	}
	return translateError(GetDB(ctx, r.db).Create(m).Error)
}
