package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/internal/infrastructure/models"
)

// TableSessionRepository implements table session data operations
type TableSessionRepository struct {
	db *gorm.DB
}

func NewTableSessionRepository(db *gorm.DB) *TableSessionRepository {
	return &TableSessionRepository{db: db}
}

func (r *TableSessionRepository) CreateIfAbsent(ctx context.Context, s *entities.TableSession) (bool, error) {
	assignIdentity(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	key := entities.OpenTableKey(s.StoreID, s.TableID)
	m := &models.TableSession{
		ID:           s.ID,
		StoreID:      s.StoreID,
		TableID:      s.TableID,
		TableLabel:   s.TableName,
		Code:         s.Code,
		Status:       string(s.Status),
		OpenTableKey: &key,
		ConsumerID:   s.ConsumerID,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	res := GetDB(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(m)
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *TableSessionRepository) GetOpenByTable(ctx context.Context, storeID uuid.UUID, tableID string) (*entities.TableSession, error) {
	var m models.TableSession
	if err := GetDB(ctx, r.db).
		Where("open_table_key = ?", entities.OpenTableKey(storeID, tableID)).
		First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return sessionEntity(&m), nil
}

func (r *TableSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.TableSession, error) {
	var m models.TableSession
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return sessionEntity(&m), nil
}

func (r *TableSessionRepository) GetByCode(ctx context.Context, code string) (*entities.TableSession, error) {
	var m models.TableSession
	if err := GetDB(ctx, r.db).Where("code = ?", code).Order("created_at DESC").First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return sessionEntity(&m), nil
}

func (r *TableSessionRepository) AddOrder(ctx context.Context, id uuid.UUID, totals entities.OrderTotals, couponIssueID *uuid.UUID) (bool, error) {
	updates := map[string]interface{}{
		"status":          string(entities.SessionOrdering),
		"total_amount":    gorm.Expr("total_amount + ?", totals.TotalAmount),
		"discount_amount": gorm.Expr("discount_amount + ?", totals.DiscountAmount),
		"final_amount":    gorm.Expr("final_amount + ?", totals.FinalAmount),
		"updated_at":      time.Now().UTC(),
	}
	if couponIssueID != nil {
		updates["coupon_issue_id"] = *couponIssueID
	}
	res := GetDB(ctx, r.db).Model(&models.TableSession{}).
		Where("id = ? AND status IN ?", id, sessionStatuses(entities.SessionPredecessors(entities.SessionOrdering))).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *TableSessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []entities.SessionStatus, to entities.SessionStatus, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     string(to),
		"updated_at": at.UTC(),
	}
	switch to {
	case entities.SessionPaid:
		updates["paid_at"] = at.UTC()
		updates["open_table_key"] = nil
	case entities.SessionClosed:
		updates["closed_at"] = at.UTC()
		updates["open_table_key"] = nil
	}
	res := GetDB(ctx, r.db).Model(&models.TableSession{}).
		Where("id = ? AND status IN ?", id, sessionStatuses(from)).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func sessionStatuses(in []entities.SessionStatus) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

func sessionEntity(m *models.TableSession) *entities.TableSession {
	return &entities.TableSession{
		ID:             m.ID,
		StoreID:        m.StoreID,
		TableID:        m.TableID,
		TableName:      m.TableLabel,
		Code:           m.Code,
		Status:         entities.SessionStatus(m.Status),
		ConsumerID:     m.ConsumerID,
		TotalAmount:    m.TotalAmount,
		DiscountAmount: m.DiscountAmount,
		FinalAmount:    m.FinalAmount,
		CouponIssueID:  m.CouponIssueID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		PaidAt:         null.TimeFromPtr(m.PaidAt),
		ClosedAt:       null.TimeFromPtr(m.ClosedAt),
	}
}

// CartRepository implements cart line data operations
type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) Create(ctx context.Context, item *entities.CartItem) error {
	assignIdentity(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	m := &models.CartItem{
		ID:             item.ID,
		SessionID:      item.SessionID,
		ProductID:      item.ProductID,
		ProductName:    item.ProductName,
		Quantity:       item.Quantity,
		UnitPrice:      item.UnitPrice,
		Options:        item.Options.Ptr(),
		Status:         string(item.Status),
		KitchenOrderID: item.KitchenOrderID,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
	return translateError(GetDB(ctx, r.db).Create(m).Error)
}

func (r *CartRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.CartItem, error) {
	var m models.CartItem
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return cartEntity(&m), nil
}

func (r *CartRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*entities.CartItem, error) {
	return r.list(GetDB(ctx, r.db).Where("session_id = ?", sessionID))
}

func (r *CartRepository) ListPending(ctx context.Context, sessionID uuid.UUID) ([]*entities.CartItem, error) {
	return r.list(GetDB(ctx, r.db).Where("session_id = ? AND status = ?", sessionID, string(entities.CartPending)))
}

func (r *CartRepository) list(q *gorm.DB) ([]*entities.CartItem, error) {
	var ms []models.CartItem
	if err := q.Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.CartItem, 0, len(ms))
	for i := range ms {
		out = append(out, cartEntity(&ms[i]))
	}
	return out, nil
}

func (r *CartRepository) UpdatePendingQuantity(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	res := GetDB(ctx, r.db).Model(&models.CartItem{}).
		Where("id = ? AND status = ?", id, string(entities.CartPending)).
		Updates(map[string]interface{}{"quantity": quantity, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *CartRepository) DeletePending(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).
		Where("id = ? AND status = ?", id, string(entities.CartPending)).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *CartRepository) Confirm(ctx context.Context, ids []uuid.UUID, kitchenOrderID uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := GetDB(ctx, r.db).Model(&models.CartItem{}).
		Where("id IN ? AND status = ?", ids, string(entities.CartPending)).
		Updates(map[string]interface{}{
			"status":           string(entities.CartConfirmed),
			"kitchen_order_id": kitchenOrderID,
			"updated_at":       time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *CartRepository) Cascade(ctx context.Context, kitchenOrderID uuid.UUID, from []entities.CartItemStatus, to entities.CartItemStatus) (int64, error) {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}
	res := GetDB(ctx, r.db).Model(&models.CartItem{}).
		Where("kitchen_order_id = ? AND status IN ?", kitchenOrderID, statuses).
		Updates(map[string]interface{}{"status": string(to), "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

func cartEntity(m *models.CartItem) *entities.CartItem {
	return &entities.CartItem{
		ID:             m.ID,
		SessionID:      m.SessionID,
		ProductID:      m.ProductID,
		ProductName:    m.ProductName,
		Quantity:       m.Quantity,
		UnitPrice:      m.UnitPrice,
		Options:        null.StringFromPtr(m.Options),
		Status:         entities.CartItemStatus(m.Status),
		KitchenOrderID: m.KitchenOrderID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
