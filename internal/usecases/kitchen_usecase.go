package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
	"couponmap.backend/internal/domain/repositories"
)

var openKitchenStatuses = []entities.KitchenStatus{
	entities.KitchenNew, entities.KitchenPreparing, entities.KitchenReady,
}

// KitchenUsecase handles the kitchen display of a store
type KitchenUsecase struct {
	uow         repositories.UnitOfWork
	kitchenRepo repositories.KitchenOrderRepository
	cartRepo    repositories.CartRepository
	storeRepo   repositories.StoreRepository
	effects     *SideEffects
	now         func() time.Time
}

// NewKitchenUsecase creates a new kitchen usecase
func NewKitchenUsecase(
	uow repositories.UnitOfWork,
	kitchenRepo repositories.KitchenOrderRepository,
	cartRepo repositories.CartRepository,
	storeRepo repositories.StoreRepository,
	effects *SideEffects,
) *KitchenUsecase {
	return &KitchenUsecase{
		uow:         uow,
		kitchenRepo: kitchenRepo,
		cartRepo:    cartRepo,
		storeRepo:   storeRepo,
		effects:     effects,
		now:         time.Now,
	}
}

// ListOrders returns the tickets of a store. Without a status filter only
// tickets still in progress are listed.
func (u *KitchenUsecase) ListOrders(ctx context.Context, principal entities.Principal, storeID uuid.UUID, status string) ([]*entities.KitchenOrder, error) {
	if _, err := u.managedStore(ctx, principal, storeID); err != nil {
		return nil, err
	}

	statuses := openKitchenStatuses
	if s := strings.TrimSpace(status); s != "" {
		target := entities.KitchenStatus(s)
		if !validKitchenStatus(target) {
			return nil, domainerrors.BadRequest("unknown status " + s)
		}
		statuses = []entities.KitchenStatus{target}
	}

	orders, err := u.kitchenRepo.ListByStore(ctx, storeID, statuses)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []*entities.KitchenOrder{}
	}
	return orders, nil
}

// UpdateStatus moves a ticket along its lifecycle and cascades the change
// to the cart lines it was built from.
func (u *KitchenUsecase) UpdateStatus(ctx context.Context, principal entities.Principal, input *entities.KitchenStatusInput) (*entities.KitchenOrder, error) {
	orderID, err := uuid.Parse(strings.TrimSpace(input.OrderID))
	if err != nil {
		return nil, domainerrors.BadRequest("valid order_id is required")
	}
	from := entities.KitchenPredecessors(input.Status)
	if len(from) == 0 {
		return nil, domainerrors.BadRequest("invalid status " + string(input.Status))
	}

	order, err := u.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := u.managedStore(ctx, principal, order.StoreID); err != nil {
		return nil, err
	}

	now := u.now().UTC()
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		moved, err := u.kitchenRepo.Transition(txCtx, order.ID, from, input.Status, now)
		if err != nil {
			return err
		}
		if !moved {
			current, err := u.getOrder(txCtx, order.ID)
			if err != nil {
				return err
			}
			return domainerrors.Conflict(fmt.Sprintf("Order cannot move from %s to %s", current.Status, input.Status))
		}
		if to, cascadeFrom, ok := entities.CartCascade(input.Status); ok {
			if _, err := u.cartRepo.Cascade(txCtx, order.ID, cascadeFrom, to); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := u.getOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	u.effects.Kitchen(ctx, &entities.KitchenEvent{
		Type:        entities.KitchenEventStatusChanged,
		OrderID:     updated.ID,
		StoreID:     updated.StoreID,
		OrderNumber: updated.OrderNumber,
		TableName:   updated.TableName,
		Status:      updated.Status,
		At:          now,
	})
	return updated, nil
}

func (u *KitchenUsecase) getOrder(ctx context.Context, id uuid.UUID) (*entities.KitchenOrder, error) {
	order, err := u.kitchenRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Kitchen order not found")
		}
		return nil, err
	}
	return order, nil
}

func (u *KitchenUsecase) managedStore(ctx context.Context, principal entities.Principal, id uuid.UUID) (*entities.Store, error) {
	store, err := u.storeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Store not found")
		}
		return nil, err
	}
	if !principal.CanManage(store.MerchantID) {
		return nil, domainerrors.Forbidden("Store belongs to another merchant")
	}
	return store, nil
}

func validKitchenStatus(s entities.KitchenStatus) bool {
	switch s {
	case entities.KitchenNew, entities.KitchenPreparing, entities.KitchenReady, entities.KitchenServed, entities.KitchenCancelled:
		return true
	}
	return false
}
