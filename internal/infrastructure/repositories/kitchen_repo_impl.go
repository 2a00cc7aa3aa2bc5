package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/internal/infrastructure/models"
)

var kitchenTimestampColumn = map[entities.KitchenStatus]string{
	entities.KitchenPreparing: "started_at",
	entities.KitchenReady:     "ready_at",
	entities.KitchenServed:    "served_at",
	entities.KitchenCancelled: "cancelled_at",
}

// KitchenOrderRepository implements kitchen ticket data operations
type KitchenOrderRepository struct {
	db *gorm.DB
}

func NewKitchenOrderRepository(db *gorm.DB) *KitchenOrderRepository {
	return &KitchenOrderRepository{db: db}
}

func (r *KitchenOrderRepository) Create(ctx context.Context, o *entities.KitchenOrder) error {
	assignIdentity(&o.ID, &o.CreatedAt)
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal kitchen items: %w", err)
	}
	m := &models.KitchenOrder{
		ID:             o.ID,
		StoreID:        o.StoreID,
		SessionID:      o.SessionID,
		OrderNumber:    o.OrderNumber,
		OrderDate:      o.OrderDate,
		TableLabel:     o.TableName,
		Items:          string(items),
		TotalAmount:    o.TotalAmount,
		DiscountAmount: o.DiscountAmount,
		FinalAmount:    o.FinalAmount,
		CouponIssueID:  o.CouponIssueID,
		Notes:          o.Notes.Ptr(),
		Status:         string(o.Status),
		CreatedAt:      o.CreatedAt,
	}
	return translateError(GetDB(ctx, r.db).Create(m).Error)
}

func (r *KitchenOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.KitchenOrder, error) {
	var m models.KitchenOrder
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return kitchenEntity(&m)
}

func (r *KitchenOrderRepository) ListByStore(ctx context.Context, storeID uuid.UUID, statuses []entities.KitchenStatus) ([]*entities.KitchenOrder, error) {
	q := GetDB(ctx, r.db).Where("store_id = ?", storeID)
	if len(statuses) > 0 {
		in := make([]string, len(statuses))
		for i, s := range statuses {
			in[i] = string(s)
		}
		q = q.Where("status IN ?", in)
	}
	var ms []models.KitchenOrder
	if err := q.Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.KitchenOrder, 0, len(ms))
	for i := range ms {
		o, err := kitchenEntity(&ms[i])
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *KitchenOrderRepository) Transition(ctx context.Context, id uuid.UUID, from []entities.KitchenStatus, to entities.KitchenStatus, at time.Time) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	in := make([]string, len(from))
	for i, s := range from {
		in[i] = string(s)
	}
	updates := map[string]interface{}{"status": string(to)}
	if col, ok := kitchenTimestampColumn[to]; ok {
		updates[col] = at.UTC()
	}
	res := GetDB(ctx, r.db).Model(&models.KitchenOrder{}).
		Where("id = ? AND status IN ?", id, in).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *KitchenOrderRepository) NextOrderNumber(ctx context.Context, storeID uuid.UUID, orderDate string) (int64, error) {
	var next int64
	err := GetDB(ctx, r.db).Raw(`INSERT INTO store_order_counters (store_id, order_date, last_number)
		VALUES (?, ?, 1)
		ON CONFLICT (store_id, order_date)
		DO UPDATE SET last_number = store_order_counters.last_number + 1
		RETURNING last_number`, storeID, orderDate).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func kitchenEntity(m *models.KitchenOrder) (*entities.KitchenOrder, error) {
	var items []entities.KitchenItem
	if m.Items != "" {
		if err := json.Unmarshal([]byte(m.Items), &items); err != nil {
			return nil, fmt.Errorf("decode kitchen items: %w", err)
		}
	}
	return &entities.KitchenOrder{
		ID:             m.ID,
		StoreID:        m.StoreID,
		SessionID:      m.SessionID,
		OrderNumber:    m.OrderNumber,
		OrderDate:      m.OrderDate,
		TableName:      m.TableLabel,
		Items:          items,
		TotalAmount:    m.TotalAmount,
		DiscountAmount: m.DiscountAmount,
		FinalAmount:    m.FinalAmount,
		CouponIssueID:  m.CouponIssueID,
		Notes:          null.StringFromPtr(m.Notes),
		Status:         entities.KitchenStatus(m.Status),
		CreatedAt:      m.CreatedAt,
		StartedAt:      null.TimeFromPtr(m.StartedAt),
		ReadyAt:        null.TimeFromPtr(m.ReadyAt),
		ServedAt:       null.TimeFromPtr(m.ServedAt),
		CancelledAt:    null.TimeFromPtr(m.CancelledAt),
	}, nil
}
