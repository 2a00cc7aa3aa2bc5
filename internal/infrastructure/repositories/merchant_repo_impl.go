package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/internal/infrastructure/models"
	"couponmap.backend/pkg/utils"
)

// MerchantRepository implements merchant data operations
type MerchantRepository struct {
	db *gorm.DB
}

func NewMerchantRepository(db *gorm.DB) *MerchantRepository {
	return &MerchantRepository{db: db}
}

func (r *MerchantRepository) Create(ctx context.Context, merchant *entities.Merchant) error {
	assignIdentity(&merchant.ID, &merchant.CreatedAt, &merchant.UpdatedAt)
	m := &models.Merchant{
		ID:             merchant.ID,
		OwnerUserID:    merchant.OwnerUserID,
		BusinessName:   merchant.BusinessName,
		OwnerName:      merchant.OwnerName,
		Phone:          merchant.Phone,
		Email:          merchant.Email,
		Slug:           merchant.Slug,
		Category:       merchant.Category,
		Address:        merchant.Address.Ptr(),
		Description:    merchant.Description.Ptr(),
		ApprovalStatus: string(merchant.ApprovalStatus),
		StatusReason:   merchant.StatusReason.Ptr(),
		ApprovedAt:     merchant.ApprovedAt.Ptr(),
		CreatedAt:      merchant.CreatedAt,
		UpdatedAt:      merchant.UpdatedAt,
	}
	return translateError(GetDB(ctx, r.db).Create(m).Error)
}

func (r *MerchantRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Merchant, error) {
	var m models.Merchant
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return r.toEntity(&m), nil
}

func (r *MerchantRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&models.Merchant{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MerchantRepository) UpdateApproval(ctx context.Context, id uuid.UUID, from, to entities.ApprovalStatus, reason null.String) (bool, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"approval_status": string(to),
		"status_reason":   reason.Ptr(),
		"updated_at":      now,
	}
	if to == entities.ApprovalApproved {
		updates["approved_at"] = now
	}
	res := GetDB(ctx, r.db).Model(&models.Merchant{}).
		Where("id = ? AND approval_status = ?", id, string(from)).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *MerchantRepository) List(ctx context.Context, status *entities.ApprovalStatus, page utils.PaginationParams) ([]*entities.Merchant, int64, error) {
	q := GetDB(ctx, r.db).Model(&models.Merchant{})
	if status != nil {
		q = q.Where("approval_status = ?", string(*status))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Merchant
	if err := q.Order("created_at DESC").Offset(page.CalculateOffset()).Limit(page.Limit).Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*entities.Merchant, 0, len(ms))
	for i := range ms {
		out = append(out, r.toEntity(&ms[i]))
	}
	return out, total, nil
}

func (r *MerchantRepository) CountByStatus(ctx context.Context) (map[entities.ApprovalStatus]int64, error) {
	var rows []struct {
		ApprovalStatus string
		Count          int64
	}
	if err := GetDB(ctx, r.db).Model(&models.Merchant{}).
		Select("approval_status, COUNT(*) AS count").
		Group("approval_status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[entities.ApprovalStatus]int64, len(entities.AllApprovalStatuses))
	for _, s := range entities.AllApprovalStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[entities.ApprovalStatus(row.ApprovalStatus)] = row.Count
	}
	return counts, nil
}

func (r *MerchantRepository) FirstApproved(ctx context.Context) (*entities.Merchant, error) {
	var m models.Merchant
	if err := GetDB(ctx, r.db).
		Where("approval_status = ?", string(entities.ApprovalApproved)).
		Order("created_at ASC").
		First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return r.toEntity(&m), nil
}

func (r *MerchantRepository) AppendApprovalLog(ctx context.Context, log *entities.ApprovalLog) error {
	assignIdentity(&log.ID, &log.CreatedAt)
	m := &models.MerchantApprovalLog{
		ID:         log.ID,
		MerchantID: log.MerchantID,
		AdminID:    log.AdminID,
		Action:     string(log.Action),
		FromStatus: string(log.FromStatus),
		ToStatus:   string(log.ToStatus),
		Reason:     log.Reason.Ptr(),
		CreatedAt:  log.CreatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *MerchantRepository) toEntity(m *models.Merchant) *entities.Merchant {
	return &entities.Merchant{
		ID:             m.ID,
		OwnerUserID:    m.OwnerUserID,
		BusinessName:   m.BusinessName,
		OwnerName:      m.OwnerName,
		Phone:          m.Phone,
		Email:          m.Email,
		Slug:           m.Slug,
		Category:       m.Category,
		Address:        null.StringFromPtr(m.Address),
		Description:    null.StringFromPtr(m.Description),
		ApprovalStatus: entities.ApprovalStatus(m.ApprovalStatus),
		StatusReason:   null.StringFromPtr(m.StatusReason),
		ApprovedAt:     null.TimeFromPtr(m.ApprovedAt),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
