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

// SettlementRepository implements settlement data operations
type SettlementRepository struct {
	db *gorm.DB
}

func NewSettlementRepository(db *gorm.DB) *SettlementRepository {
	return &SettlementRepository{db: db}
}

func (r *SettlementRepository) Create(ctx context.Context, s *entities.Settlement) error {
	assignIdentity(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	m := &models.Settlement{
		ID:            s.ID,
		MerchantID:    s.MerchantID,
		PeriodStart:   s.PeriodStart,
		PeriodEnd:     s.PeriodEnd,
		GrossAmount:   s.GrossAmount,
		FeeAmount:     s.FeeAmount,
		FeeRate:       s.FeeRate,
		NetAmount:     s.NetAmount,
		OrderCount:    s.OrderCount,
		RefundCount:   s.RefundCount,
		RefundAmount:  s.RefundAmount,
		Status:        string(s.Status),
		BankName:      s.BankName.Ptr(),
		BankAccount:   s.BankAccount.Ptr(),
		AccountHolder: s.AccountHolder.Ptr(),
		Notes:         s.Notes.Ptr(),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	db := GetDB(ctx, r.db)
	if err := db.Create(m).Error; err != nil {
		return translateError(err)
	}
	if len(s.Items) == 0 {
		return nil
	}
	items := make([]models.SettlementItem, 0, len(s.Items))
	for _, it := range s.Items {
		assignIdentity(&it.ID)
		it.SettlementID = s.ID
		items = append(items, models.SettlementItem{
			ID:            it.ID,
			SettlementID:  s.ID,
			ItemType:      it.ItemType,
			ReferenceID:   it.ReferenceID,
			ReferenceType: it.ReferenceType,
			GrossAmount:   it.GrossAmount,
			FeeAmount:     it.FeeAmount,
			NetAmount:     it.NetAmount,
			Description:   it.Description,
			OccurredAt:    it.OccurredAt.UTC(),
		})
	}
	return translateError(db.Create(&items).Error)
}

func (r *SettlementRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Settlement, error) {
	db := GetDB(ctx, r.db)
	var m models.Settlement
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	var items []models.SettlementItem
	if err := db.Where("settlement_id = ?", id).Order("occurred_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	s := settlementEntity(&m)
	s.Items = make([]*entities.SettlementItem, 0, len(items))
	for i := range items {
		it := &items[i]
		s.Items = append(s.Items, &entities.SettlementItem{
			ID:            it.ID,
			SettlementID:  it.SettlementID,
			ItemType:      it.ItemType,
			ReferenceID:   it.ReferenceID,
			ReferenceType: it.ReferenceType,
			GrossAmount:   it.GrossAmount,
			FeeAmount:     it.FeeAmount,
			NetAmount:     it.NetAmount,
			Description:   it.Description,
			OccurredAt:    it.OccurredAt,
		})
	}
	return s, nil
}

func (r *SettlementRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, status *entities.SettlementStatus) ([]*entities.Settlement, error) {
	q := GetDB(ctx, r.db).Where("merchant_id = ?", merchantID)
	if status != nil {
		q = q.Where("status = ?", string(*status))
	}
	var ms []models.Settlement
	if err := q.Order("period_start DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Settlement, 0, len(ms))
	for i := range ms {
		out = append(out, settlementEntity(&ms[i]))
	}
	return out, nil
}

func (r *SettlementRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []entities.SettlementStatus, input *entities.UpdateSettlementInput, at time.Time) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	sources := make([]string, 0, len(from))
	for _, s := range from {
		sources = append(sources, string(s))
	}
	at = at.UTC()
	updates := map[string]interface{}{
		"status":     string(input.Status),
		"updated_at": at,
	}
	switch input.Status {
	case entities.SettlementConfirmed:
		updates["confirmed_at"] = at
	case entities.SettlementProcessing:
		updates["processed_at"] = at
	case entities.SettlementCompleted:
		updates["completed_at"] = at
	}
	for column, value := range map[string]string{
		"bank_name":      input.BankName,
		"bank_account":   input.BankAccount,
		"account_holder": input.AccountHolder,
		"notes":          input.Notes,
	} {
		if value != "" {
			updates[column] = value
		}
	}
	res := GetDB(ctx, r.db).Model(&models.Settlement{}).
		Where("id = ? AND status IN ?", id, sources).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func settlementEntity(m *models.Settlement) *entities.Settlement {
	return &entities.Settlement{
		ID:            m.ID,
		MerchantID:    m.MerchantID,
		PeriodStart:   m.PeriodStart,
		PeriodEnd:     m.PeriodEnd,
		GrossAmount:   m.GrossAmount,
		FeeAmount:     m.FeeAmount,
		FeeRate:       m.FeeRate,
		NetAmount:     m.NetAmount,
		OrderCount:    m.OrderCount,
		RefundCount:   m.RefundCount,
		RefundAmount:  m.RefundAmount,
		Status:        entities.SettlementStatus(m.Status),
		BankName:      null.StringFromPtr(m.BankName),
		BankAccount:   null.StringFromPtr(m.BankAccount),
		AccountHolder: null.StringFromPtr(m.AccountHolder),
		Notes:         null.StringFromPtr(m.Notes),
		ConfirmedAt:   null.TimeFromPtr(m.ConfirmedAt),
		ProcessedAt:   null.TimeFromPtr(m.ProcessedAt),
		CompletedAt:   null.TimeFromPtr(m.CompletedAt),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
