package repositories

import (
	"context"
	"time"

	"couponmap.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// TableSessionRepository defines table session data operations
type TableSessionRepository interface {
	// CreateIfAbsent inserts the session unless the table already has an
	// open one. It reports whether the row was inserted.
	CreateIfAbsent(ctx context.Context, session *entities.TableSession) (bool, error)
	GetOpenByTable(ctx context.Context, storeID uuid.UUID, tableID string) (*entities.TableSession, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.TableSession, error)
	GetByCode(ctx context.Context, code string) (*entities.TableSession, error)
	// AddOrder accumulates totals onto an open session and moves it to ordering.
	AddOrder(ctx context.Context, id uuid.UUID, totals entities.OrderTotals, couponIssueID *uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []entities.SessionStatus, to entities.SessionStatus, at time.Time) (bool, error)
}

// CartRepository defines cart line data operations
type CartRepository interface {
	Create(ctx context.Context, item *entities.CartItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.CartItem, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*entities.CartItem, error)
	ListPending(ctx context.Context, sessionID uuid.UUID) ([]*entities.CartItem, error)
	UpdatePendingQuantity(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
	DeletePending(ctx context.Context, id uuid.UUID) (bool, error)
	// Confirm links pending lines to a kitchen order and flips them to confirmed.
	Confirm(ctx context.Context, ids []uuid.UUID, kitchenOrderID uuid.UUID) (int64, error)
	// Cascade moves the lines of a kitchen order currently in from to to.
	Cascade(ctx context.Context, kitchenOrderID uuid.UUID, from []entities.CartItemStatus, to entities.CartItemStatus) (int64, error)
}

// KitchenOrderRepository defines kitchen ticket data operations
type KitchenOrderRepository interface {
	Create(ctx context.Context, order *entities.KitchenOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.KitchenOrder, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, statuses []entities.KitchenStatus) ([]*entities.KitchenOrder, error)
	// Transition moves the order to to when its status is one of from,
	// stamping the matching timestamp with at.
	Transition(ctx context.Context, id uuid.UUID, from []entities.KitchenStatus, to entities.KitchenStatus, at time.Time) (bool, error)
	// NextOrderNumber atomically advances the per-store daily counter.
	NextOrderNumber(ctx context.Context, storeID uuid.UUID, orderDate string) (int64, error)
}
