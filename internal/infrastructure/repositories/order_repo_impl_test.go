package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
)

func newSession(storeID uuid.UUID, tableID, code string) *entities.TableSession {
	return &entities.TableSession{
		ID:        uuid.New(),
		StoreID:   storeID,
		TableID:   tableID,
		TableName: "창가 " + tableID,
		Code:      code,
		Status:    entities.SessionActive,
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
}

func TestTableSessionRepository_OneOpenSessionPerTable(t *testing.T) {
	db := newTestDB(t)
	repo := NewTableSessionRepository(db)
	ctx := context.Background()
	storeID := uuid.New()

	first := newSession(storeID, "T1", "SESS0001")
	created, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	require.True(t, created)

	created, err = repo.CreateIfAbsent(ctx, newSession(storeID, "T1", "SESS0002"))
	require.NoError(t, err)
	require.False(t, created, "table already has an open session")

	open, err := repo.GetOpenByTable(ctx, storeID, "T1")
	require.NoError(t, err)
	require.Equal(t, first.ID, open.ID)
	require.Equal(t, "창가 T1", open.TableName)

	created, err = repo.CreateIfAbsent(ctx, newSession(storeID, "T2", "SESS0003"))
	require.NoError(t, err)
	require.True(t, created)

	ok, err := repo.UpdateStatus(ctx, first.ID, entities.SessionPredecessors(entities.SessionPaid), entities.SessionPaid, fixedNow)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = repo.GetOpenByTable(ctx, storeID, "T1")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	created, err = repo.CreateIfAbsent(ctx, newSession(storeID, "T1", "SESS0004"))
	require.NoError(t, err)
	require.True(t, created, "a paid session frees the table")

	paid, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, entities.SessionPaid, paid.Status)
	require.True(t, paid.PaidAt.Valid)
}

func TestTableSessionRepository_AddOrderAccumulates(t *testing.T) {
	db := newTestDB(t)
	repo := NewTableSessionRepository(db)
	ctx := context.Background()

	s := newSession(uuid.New(), "T9", "SESS0009")
	_, err := repo.CreateIfAbsent(ctx, s)
	require.NoError(t, err)

	couponIssueID := uuid.New()
	ok, err := repo.AddOrder(ctx, s.ID, entities.OrderTotals{TotalAmount: 50000, DiscountAmount: 5000, FinalAmount: 45000}, &couponIssueID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.AddOrder(ctx, s.ID, entities.OrderTotals{TotalAmount: 8000, FinalAmount: 8000}, nil)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.GetByCode(ctx, "SESS0009")
	require.NoError(t, err)
	require.Equal(t, entities.SessionOrdering, got.Status)
	require.Equal(t, int64(58000), got.TotalAmount)
	require.Equal(t, int64(5000), got.DiscountAmount)
	require.Equal(t, int64(53000), got.FinalAmount)
	require.Equal(t, couponIssueID, *got.CouponIssueID)

	_, err = repo.UpdateStatus(ctx, s.ID, entities.SessionPredecessors(entities.SessionPaid), entities.SessionPaid, fixedNow)
	require.NoError(t, err)
	ok, err = repo.AddOrder(ctx, s.ID, entities.OrderTotals{TotalAmount: 1000, FinalAmount: 1000}, nil)
	require.NoError(t, err)
	require.False(t, ok, "paid session takes no more orders")

	ok, err = repo.UpdateStatus(ctx, s.ID, entities.SessionPredecessors(entities.SessionPaid), entities.SessionPaid, fixedNow)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = repo.UpdateStatus(ctx, s.ID, entities.SessionPredecessors(entities.SessionClosed), entities.SessionClosed, fixedNow)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCartRepository_PendingLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()
	sessionID := uuid.New()

	mk := func(name string, price int64, offset time.Duration) *entities.CartItem {
		return &entities.CartItem{
			ID:          uuid.New(),
			SessionID:   sessionID,
			ProductID:   uuid.New(),
			ProductName: name,
			Quantity:    1,
			UnitPrice:   price,
			Status:      entities.CartPending,
			CreatedAt:   fixedNow.Add(offset),
			UpdatedAt:   fixedNow.Add(offset),
		}
	}
	a, b, c := mk("김치찌개", 9000, 0), mk("공기밥", 1000, time.Second), mk("콜라", 2000, 2*time.Second)
	for _, item := range []*entities.CartItem{a, b, c} {
		require.NoError(t, repo.Create(ctx, item))
	}

	ok, err := repo.UpdatePendingQuantity(ctx, a.ID, 3)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.DeletePending(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, ok)

	pending, err := repo.ListPending(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, 3, pending[0].Quantity)

	kitchenOrderID := uuid.New()
	n, err := repo.Confirm(ctx, []uuid.UUID{a.ID, b.ID}, kitchenOrderID)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	ok, err = repo.UpdatePendingQuantity(ctx, a.ID, 5)
	require.NoError(t, err)
	require.False(t, ok, "confirmed lines are frozen")

	ok, err = repo.DeletePending(ctx, b.ID)
	require.NoError(t, err)
	require.False(t, ok)

	to, from, _ := entities.CartCascade(entities.KitchenPreparing)
	n, err = repo.Cascade(ctx, kitchenOrderID, from, to)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	items, err := repo.ListBySession(ctx, sessionID)
	require.NoError(t, err)
	for _, item := range items {
		require.Equal(t, entities.CartPreparing, item.Status)
		require.Equal(t, kitchenOrderID, *item.KitchenOrderID)
	}

	n, err = repo.Confirm(ctx, nil, kitchenOrderID)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestKitchenOrderRepository_TransitionAndNumbers(t *testing.T) {
	db := newTestDB(t)
	repo := NewKitchenOrderRepository(db)
	ctx := context.Background()
	storeID := uuid.New()

	for want := int64(1); want <= 3; want++ {
		got, err := repo.NextOrderNumber(ctx, storeID, "2025-06-01")
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	got, err := repo.NextOrderNumber(ctx, storeID, "2025-06-02")
	require.NoError(t, err)
	require.Equal(t, int64(1), got, "numbering restarts every day")

	got, err = repo.NextOrderNumber(ctx, uuid.New(), "2025-06-01")
	require.NoError(t, err)
	require.Equal(t, int64(1), got, "numbering is per store")

	order := &entities.KitchenOrder{
		ID:          uuid.New(),
		StoreID:     storeID,
		SessionID:   uuid.New(),
		OrderNumber: 3,
		OrderDate:   "2025-06-01",
		TableName:   "T1",
		Items: []entities.KitchenItem{
			{CartItemID: uuid.New(), ProductID: uuid.New(), ProductName: "비빔밥", Quantity: 2, UnitPrice: 9000},
		},
		TotalAmount: 18000,
		FinalAmount: 18000,
		Status:      entities.KitchenNew,
		CreatedAt:   fixedNow,
	}
	require.NoError(t, repo.Create(ctx, order))

	ok, err := repo.Transition(ctx, order.ID, entities.KitchenPredecessors(entities.KitchenServed), entities.KitchenServed, fixedNow)
	require.NoError(t, err)
	require.False(t, ok, "new cannot jump to served")

	ok, err = repo.Transition(ctx, order.ID, entities.KitchenPredecessors(entities.KitchenPreparing), entities.KitchenPreparing, fixedNow)
	require.NoError(t, err)
	require.True(t, ok)

	loaded, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, entities.KitchenPreparing, loaded.Status)
	require.True(t, loaded.StartedAt.Valid)
	require.Len(t, loaded.Items, 1)
	require.Equal(t, "비빔밥", loaded.Items[0].ProductName)

	active, err := repo.ListByStore(ctx, storeID, []entities.KitchenStatus{entities.KitchenNew, entities.KitchenPreparing})
	require.NoError(t, err)
	require.Len(t, active, 1)

	done, err := repo.ListByStore(ctx, storeID, []entities.KitchenStatus{entities.KitchenServed})
	require.NoError(t, err)
	require.Empty(t, done)
}

func TestCartRepository_CascadeStaysWithinKitchenOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()
	sessionID := uuid.New()

	line := func(name string) *entities.CartItem {
		item := &entities.CartItem{
			ID:          uuid.New(),
			SessionID:   sessionID,
			ProductID:   uuid.New(),
			ProductName: name,
			Quantity:    1,
			UnitPrice:   5000,
			Status:      entities.CartPending,
			CreatedAt:   fixedNow,
			UpdatedAt:   fixedNow,
		}
		require.NoError(t, repo.Create(ctx, item))
		return item
	}
	first, second := line("떡볶이"), line("순대")

	firstOrder, secondOrder := uuid.New(), uuid.New()
	_, err := repo.Confirm(ctx, []uuid.UUID{first.ID}, firstOrder)
	require.NoError(t, err)
	_, err = repo.Confirm(ctx, []uuid.UUID{second.ID}, secondOrder)
	require.NoError(t, err)

	to, from, _ := entities.CartCascade(entities.KitchenServed)
	n, err := repo.Cascade(ctx, firstOrder, from, to)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	items, err := repo.ListBySession(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		switch item.ID {
		case first.ID:
			require.Equal(t, entities.CartServed, item.Status)
		case second.ID:
			require.Equal(t, entities.CartConfirmed, item.Status, "a later order of the same session keeps its status")
		}
	}
}
