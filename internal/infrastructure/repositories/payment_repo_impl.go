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

// PaymentRepository implements PaymentRepository interface
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create creates a new payment
func (r *PaymentRepository) Create(ctx context.Context, p *entities.Payment) error {
	assignIdentity(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	m := &models.Payment{
		ID:          p.ID,
		MerchantID:  p.MerchantID,
		StoreID:     p.StoreID,
		PaymentType: string(p.PaymentType),
		PackageID:   p.PackageID,
		Amount:      p.Amount,
		BonusAmount: p.BonusAmount,
		FinalAmount: p.FinalAmount,
		PGOrderID:   p.PGOrderID,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	return translateError(GetDB(ctx, r.db).Create(m).Error)
}

// GetByID gets a payment by ID
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Payment, error) {
	var m models.Payment
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return paymentEntity(&m), nil
}

// GetByPGOrderID gets a payment by its gateway order id
func (r *PaymentRepository) GetByPGOrderID(ctx context.Context, orderID string) (*entities.Payment, error) {
	var m models.Payment
	if err := GetDB(ctx, r.db).Where("pg_order_id = ?", orderID).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return paymentEntity(&m), nil
}

// MarkPaid moves a pending payment to paid
func (r *PaymentRepository) MarkPaid(ctx context.Context, id uuid.UUID, approval *entities.GatewayApproval) (bool, error) {
	approvedAt := approval.ApprovedAt
	if approvedAt.IsZero() {
		approvedAt = time.Now()
	}
	return r.transition(ctx, id, map[string]interface{}{
		"status":         string(entities.PaymentStatusPaid),
		"pg_payment_key": approval.PaymentKey,
		"payment_method": stringPtr(approval.Method),
		"receipt_url":    stringPtr(approval.ReceiptURL),
		"approved_at":    approvedAt.UTC(),
	})
}

// MarkFailed moves a pending payment to failed with the gateway reason
func (r *PaymentRepository) MarkFailed(ctx context.Context, id uuid.UUID, decline *entities.GatewayDecline) (bool, error) {
	return r.transition(ctx, id, map[string]interface{}{
		"status":          string(entities.PaymentStatusFailed),
		"failure_code":    stringPtr(decline.Code),
		"failure_message": stringPtr(decline.Message),
		"failed_at":       time.Now().UTC(),
	})
}

// ListPaidBetween returns a merchant's payments approved in [from, to]
func (r *PaymentRepository) ListPaidBetween(ctx context.Context, merchantID uuid.UUID, from, to time.Time) ([]*entities.Payment, error) {
	return r.listBetween(ctx, merchantID, entities.PaymentStatusPaid, "approved_at", from, to)
}

// ListRefundedBetween returns a merchant's payments refunded in [from, to]
func (r *PaymentRepository) ListRefundedBetween(ctx context.Context, merchantID uuid.UUID, from, to time.Time) ([]*entities.Payment, error) {
	return r.listBetween(ctx, merchantID, entities.PaymentStatusRefunded, "refunded_at", from, to)
}

func (r *PaymentRepository) listBetween(ctx context.Context, merchantID uuid.UUID, status entities.PaymentStatus, column string, from, to time.Time) ([]*entities.Payment, error) {
	var ms []models.Payment
	err := GetDB(ctx, r.db).
		Where("merchant_id = ? AND status = ?", merchantID, string(status)).
		Where(column+" >= ? AND "+column+" <= ?", from.UTC(), to.UTC()).
		Order(column + " ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]*entities.Payment, 0, len(ms))
	for i := range ms {
		out = append(out, paymentEntity(&ms[i]))
	}
	return out, nil
}

func (r *PaymentRepository) transition(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	updates["updated_at"] = time.Now().UTC()
	res := GetDB(ctx, r.db).Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, string(entities.PaymentStatusPending)).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func paymentEntity(m *models.Payment) *entities.Payment {
	return &entities.Payment{
		ID:             m.ID,
		MerchantID:     m.MerchantID,
		StoreID:        m.StoreID,
		PaymentType:    entities.PaymentType(m.PaymentType),
		PackageID:      m.PackageID,
		Amount:         m.Amount,
		BonusAmount:    m.BonusAmount,
		FinalAmount:    m.FinalAmount,
		PGOrderID:      m.PGOrderID,
		PGPaymentKey:   null.StringFromPtr(m.PGPaymentKey),
		PaymentMethod:  null.StringFromPtr(m.PaymentMethod),
		ReceiptURL:     null.StringFromPtr(m.ReceiptURL),
		FailureCode:    null.StringFromPtr(m.FailureCode),
		FailureMessage: null.StringFromPtr(m.FailureMessage),
		Status:         entities.PaymentStatus(m.Status),
		ApprovedAt:     null.TimeFromPtr(m.ApprovedAt),
		FailedAt:       null.TimeFromPtr(m.FailedAt),
		RefundAmount:   m.RefundAmount,
		RefundedAt:     null.TimeFromPtr(m.RefundedAt),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// TopupPackageRepository implements topup package data operations
type TopupPackageRepository struct {
	db *gorm.DB
}

func NewTopupPackageRepository(db *gorm.DB) *TopupPackageRepository {
	return &TopupPackageRepository{db: db}
}

func (r *TopupPackageRepository) ListActive(ctx context.Context) ([]*entities.TopupPackage, error) {
	var ms []models.TopupPackage
	if err := GetDB(ctx, r.db).Where("is_active = ?", true).Order("display_order ASC, amount ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.TopupPackage, 0, len(ms))
	for i := range ms {
		out = append(out, packageEntity(&ms[i]))
	}
	return out, nil
}

func (r *TopupPackageRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*entities.TopupPackage, error) {
	var m models.TopupPackage
	if err := GetDB(ctx, r.db).Where("id = ? AND is_active = ?", id, true).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return packageEntity(&m), nil
}

func packageEntity(m *models.TopupPackage) *entities.TopupPackage {
	return &entities.TopupPackage{
		ID:           m.ID,
		Name:         m.Name,
		Amount:       m.Amount,
		BonusAmount:  m.BonusAmount,
		BonusPercent: m.BonusPercent,
		IsActive:     m.IsActive,
		DisplayOrder: m.DisplayOrder,
	}
}
