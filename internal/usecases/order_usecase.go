package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
	"couponmap.backend/internal/domain/repositories"
	"couponmap.backend/pkg/crypto"
	"couponmap.backend/pkg/logger"
	"couponmap.backend/pkg/utils"
)

const (
	sessionCodeAttempts = 3
	orderDateLayout     = "2006-01-02"
)

// OrderUsecase handles table sessions, carts and order submission
type OrderUsecase struct {
	uow         repositories.UnitOfWork
	sessionRepo repositories.TableSessionRepository
	cartRepo    repositories.CartRepository
	kitchenRepo repositories.KitchenOrderRepository
	storeRepo   repositories.StoreRepository
	productRepo repositories.ProductRepository
	couponRepo  repositories.CouponRepository
	issueRepo   repositories.CouponIssueRepository
	eventRepo   repositories.TransactionEventRepository
	effects     *SideEffects
	now         func() time.Time
}

// NewOrderUsecase creates a new order usecase
func NewOrderUsecase(
	uow repositories.UnitOfWork,
	sessionRepo repositories.TableSessionRepository,
	cartRepo repositories.CartRepository,
	kitchenRepo repositories.KitchenOrderRepository,
	storeRepo repositories.StoreRepository,
	productRepo repositories.ProductRepository,
	couponRepo repositories.CouponRepository,
	issueRepo repositories.CouponIssueRepository,
	eventRepo repositories.TransactionEventRepository,
	effects *SideEffects,
) *OrderUsecase {
	return &OrderUsecase{
		uow:         uow,
		sessionRepo: sessionRepo,
		cartRepo:    cartRepo,
		kitchenRepo: kitchenRepo,
		storeRepo:   storeRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		issueRepo:   issueRepo,
		eventRepo:   eventRepo,
		effects:     effects,
		now:         time.Now,
	}
}

// StartSession opens a session for a table, or returns the one already open
func (u *OrderUsecase) StartSession(ctx context.Context, input *entities.StartSessionInput) (*entities.TableSession, error) {
	tableID := strings.TrimSpace(input.TableID)
	if strings.TrimSpace(input.StoreID) == "" || tableID == "" {
		return nil, domainerrors.BadRequest("store_id and table_id are required")
	}
	storeID, err := uuid.Parse(strings.TrimSpace(input.StoreID))
	if err != nil {
		return nil, domainerrors.BadRequest("invalid store_id")
	}
	consumerID, err := parseOptionalID(input.ConsumerID, "consumer_id")
	if err != nil {
		return nil, err
	}

	store, err := u.getStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !store.IsActive {
		return nil, domainerrors.NotFound("Store not found")
	}

	tableName := strings.TrimSpace(input.TableName)
	if tableName == "" {
		tableName = entities.DefaultTableName
	}

	for attempt := 0; attempt < sessionCodeAttempts; attempt++ {
		code, err := crypto.GenerateCode()
		if err != nil {
			return nil, err
		}
		now := u.now().UTC()
		session := &entities.TableSession{
			StoreID:    store.ID,
			TableID:    tableID,
			TableName:  tableName,
			Code:       code,
			Status:     entities.SessionActive,
			ConsumerID: consumerID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		inserted, err := u.sessionRepo.CreateIfAbsent(ctx, session)
		if err != nil {
			return nil, err
		}
		if inserted {
			return session, nil
		}

		existing, err := u.sessionRepo.GetOpenByTable(ctx, store.ID, tableID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return nil, err
		}
		// Nothing open for the table, so the insert lost on a code collision
		logger.Debug(ctx, "Session code collision, retrying", zap.Int("attempt", attempt+1))
	}
	return nil, domainerrors.Dependency(fmt.Errorf("could not allocate a unique session code"))
}

// GetSession finds a session by id or by its table code
func (u *OrderUsecase) GetSession(ctx context.Context, id, code string) (*entities.TableSession, error) {
	switch {
	case strings.TrimSpace(id) != "":
		sessionID, err := uuid.Parse(strings.TrimSpace(id))
		if err != nil {
			return nil, domainerrors.BadRequest("invalid session_id")
		}
		return u.getSession(ctx, sessionID)
	case strings.TrimSpace(code) != "":
		session, err := u.sessionRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return nil, domainerrors.NotFound("Session not found")
			}
			return nil, err
		}
		return session, nil
	}
	return nil, domainerrors.BadRequest("session_id or code is required")
}

// AddToCart appends a pending line priced at the product's current price
func (u *OrderUsecase) AddToCart(ctx context.Context, input *entities.AddToCartInput) (*entities.CartItem, error) {
	sessionID, err := uuid.Parse(strings.TrimSpace(input.SessionID))
	if err != nil {
		return nil, domainerrors.BadRequest("valid session_id is required")
	}
	productID, err := uuid.Parse(strings.TrimSpace(input.ProductID))
	if err != nil {
		return nil, domainerrors.BadRequest("valid product_id is required")
	}
	if input.Quantity <= 0 {
		return nil, domainerrors.BadRequest("quantity must be positive")
	}

	session, err := u.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	store, err := u.getStore(ctx, session.StoreID)
	if err != nil {
		return nil, err
	}

	product, err := u.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Product not found")
		}
		return nil, err
	}
	if !product.IsActive || product.MerchantID != store.MerchantID {
		return nil, domainerrors.Wrap(http.StatusBadRequest, "Product is not available", domainerrors.ErrProductUnavailable)
	}

	var options null.String
	if len(input.Options) > 0 {
		raw, err := json.Marshal(input.Options)
		if err != nil {
			return nil, domainerrors.BadRequest("invalid options")
		}
		options = null.StringFrom(string(raw))
	}

	item := &entities.CartItem{
		SessionID:   session.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    input.Quantity,
		UnitPrice:   product.BasePrice,
		Options:     options,
		Status:      entities.CartPending,
	}
	if err := u.cartRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateCartItem changes the quantity of a pending line. A quantity of
// zero or less removes the line.
func (u *OrderUsecase) UpdateCartItem(ctx context.Context, input *entities.UpdateCartInput) (*entities.Cart, error) {
	itemID, err := uuid.Parse(strings.TrimSpace(input.ItemID))
	if err != nil {
		return nil, domainerrors.BadRequest("valid item_id is required")
	}
	if input.Quantity <= 0 {
		return u.RemoveCartItem(ctx, itemID)
	}

	item, err := u.pendingItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	updated, err := u.cartRepo.UpdatePendingQuantity(ctx, item.ID, input.Quantity)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, domainerrors.Conflict("Only pending items can be changed")
	}
	return u.GetCart(ctx, item.SessionID)
}

// RemoveCartItem deletes a pending line
func (u *OrderUsecase) RemoveCartItem(ctx context.Context, itemID uuid.UUID) (*entities.Cart, error) {
	item, err := u.pendingItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	deleted, err := u.cartRepo.DeletePending(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, domainerrors.Conflict("Only pending items can be removed")
	}
	return u.GetCart(ctx, item.SessionID)
}

// GetCart returns every line of a session and the total of the live ones
func (u *OrderUsecase) GetCart(ctx context.Context, sessionID uuid.UUID) (*entities.Cart, error) {
	items, err := u.cartRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*entities.CartItem{}
	}
	return &entities.Cart{SessionID: sessionID, Items: items, Total: entities.CartTotal(items)}, nil
}

// SubmitOrder sends the pending lines of a session to the kitchen.
// Pricing, coupon redemption, the kitchen ticket, the cart flip and the
// session totals commit together.
func (u *OrderUsecase) SubmitOrder(ctx context.Context, input *entities.SubmitOrderInput) (*entities.SubmittedOrder, error) {
	sessionID, err := uuid.Parse(strings.TrimSpace(input.SessionID))
	if err != nil {
		return nil, domainerrors.BadRequest("valid session_id is required")
	}
	issueID, err := parseOptionalID(input.CouponIssueID, "coupon_issue_id")
	if err != nil {
		return nil, err
	}

	session, err := u.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	store, err := u.getStore(ctx, session.StoreID)
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	var (
		order   *entities.KitchenOrder
		totals  entities.OrderTotals
		issue   *entities.CouponIssue
		applied bool
		event   *entities.TransactionEvent
	)

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		pending, err := u.cartRepo.ListPending(txCtx, session.ID)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return domainerrors.Wrap(http.StatusBadRequest, "Cart is empty", domainerrors.ErrEmptyCart)
		}
		total := entities.CartTotal(pending)

		var coupon *entities.Coupon
		if issueID != nil {
			issue, coupon, err = u.usableCoupon(txCtx, *issueID, store, now)
			if err != nil {
				return err
			}
		}
		totals = entities.PriceOrder(total, coupon)
		applied = coupon != nil && totals.DiscountAmount > 0

		var appliedIssueID *uuid.UUID
		if applied {
			if err := markIssueUsed(txCtx, u.issueRepo, issue, store.ID, now); err != nil {
				return err
			}
			appliedIssueID = &issue.ID
		}

		number, err := u.kitchenRepo.NextOrderNumber(txCtx, store.ID, now.Format(orderDateLayout))
		if err != nil {
			return err
		}

		items := make([]entities.KitchenItem, 0, len(pending))
		ids := make([]uuid.UUID, 0, len(pending))
		for _, line := range pending {
			items = append(items, entities.KitchenItem{
				CartItemID:  line.ID,
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				Options:     line.Options.String,
			})
			ids = append(ids, line.ID)
		}

		tableName := session.TableName
		if tableName == "" {
			tableName = entities.DefaultTableName
		}
		order = &entities.KitchenOrder{
			StoreID:        store.ID,
			SessionID:      session.ID,
			OrderNumber:    number,
			OrderDate:      now.Format(orderDateLayout),
			TableName:      tableName,
			Items:          items,
			TotalAmount:    totals.TotalAmount,
			DiscountAmount: totals.DiscountAmount,
			FinalAmount:    totals.FinalAmount,
			CouponIssueID:  appliedIssueID,
			Notes:          null.NewString(input.Notes, strings.TrimSpace(input.Notes) != ""),
			Status:         entities.KitchenNew,
			CreatedAt:      now,
		}
		if err := u.kitchenRepo.Create(txCtx, order); err != nil {
			return err
		}

		confirmed, err := u.cartRepo.Confirm(txCtx, ids, order.ID)
		if err != nil {
			return err
		}
		if confirmed != int64(len(ids)) {
			return domainerrors.Conflict("Cart changed while the order was submitted")
		}

		added, err := u.sessionRepo.AddOrder(txCtx, session.ID, totals, appliedIssueID)
		if err != nil {
			return err
		}
		if !added {
			return domainerrors.Wrap(http.StatusBadRequest, "Session is no longer open", domainerrors.ErrInvalidSession)
		}

		event = entities.NewTransactionEvent(entities.EventOrderCreated, totals.FinalAmount, map[string]any{
			"kitchen_order_id": order.ID,
			"order_number":     order.OrderNumber,
			"session_id":       session.ID,
			"total_amount":     totals.TotalAmount,
			"discount_amount":  totals.DiscountAmount,
			"coupon_issue_id":  appliedIssueID,
		})
		event.MerchantID = &store.MerchantID
		event.StoreID = &store.ID
		event.ConsumerID = session.ConsumerID
		return u.eventRepo.Create(txCtx, event)
	})
	if err != nil {
		return nil, err
	}

	u.effects.Kitchen(ctx, &entities.KitchenEvent{
		Type:        entities.KitchenEventCreated,
		OrderID:     order.ID,
		StoreID:     order.StoreID,
		OrderNumber: order.OrderNumber,
		TableName:   order.TableName,
		Status:      order.Status,
		At:          now,
	})
	u.effects.Publish(ctx, event)
	if applied {
		used := entities.NewTransactionEvent(entities.EventCouponUsed, totals.DiscountAmount, map[string]any{
			"coupon_id":       issue.CouponID,
			"coupon_issue_id": issue.ID,
			"channel":         entities.ChannelTableOrder,
		})
		used.MerchantID = &store.MerchantID
		used.StoreID = &store.ID
		used.ConsumerID = &issue.ConsumerID
		u.effects.Record(ctx, used)
	}
	if session.ConsumerID != nil {
		u.effects.Touchpoint(ctx, entities.Touchpoint{
			MerchantID: store.MerchantID,
			ConsumerID: *session.ConsumerID,
			Type:       entities.TouchpointTableOrder,
			Amount:     totals.FinalAmount,
		})
	}

	if fresh, err := u.sessionRepo.GetByID(ctx, session.ID); err == nil {
		session = fresh
	} else {
		logger.Warn(ctx, "Failed to reload session after submit", zap.String("session_id", session.ID.String()), zap.Error(err))
	}

	return &entities.SubmittedOrder{
		KitchenOrder:  order,
		Session:       session,
		CouponApplied: applied,
		OrderTotals:   totals,
	}, nil
}

// UpdateSessionStatus settles or closes a session of a store the caller manages
func (u *OrderUsecase) UpdateSessionStatus(ctx context.Context, principal entities.Principal, sessionID uuid.UUID, status entities.SessionStatus) (*entities.TableSession, error) {
	if status != entities.SessionPaid && status != entities.SessionClosed {
		return nil, domainerrors.BadRequest("status must be paid or closed")
	}

	session, err := u.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	store, err := u.getStore(ctx, session.StoreID)
	if err != nil {
		return nil, err
	}
	if !principal.CanManage(store.MerchantID) {
		return nil, domainerrors.Forbidden("Session belongs to another merchant")
	}

	moved, err := u.sessionRepo.UpdateStatus(ctx, session.ID, entities.SessionPredecessors(status), status, u.now().UTC())
	if err != nil {
		return nil, err
	}
	if !moved {
		current, err := u.getSession(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		return nil, domainerrors.Conflict(fmt.Sprintf("Session cannot move from %s to %s", current.Status, status))
	}
	return u.getSession(ctx, session.ID)
}

// usableCoupon loads an issue for an order and checks it may discount it
func (u *OrderUsecase) usableCoupon(txCtx context.Context, issueID uuid.UUID, store *entities.Store, now time.Time) (*entities.CouponIssue, *entities.Coupon, error) {
	issue, err := u.issueRepo.GetByID(txCtx, issueID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, nil, domainerrors.NotFound("Coupon issue not found")
		}
		return nil, nil, err
	}
	if issue.Status != entities.IssueStatusIssued {
		return nil, nil, notRedeemable(issue.Status)
	}

	coupon, err := u.couponRepo.GetByID(txCtx, issue.CouponID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, nil, domainerrors.NotFound("Coupon not found")
		}
		return nil, nil, err
	}
	if !coupon.ValidAt(store) {
		return nil, nil, domainerrors.Conflict("Coupon is not valid at this store")
	}
	if coupon.IsExpired(now) {
		return nil, nil, domainerrors.Expired("Coupon has expired")
	}
	return issue, coupon, nil
}

func (u *OrderUsecase) pendingItem(ctx context.Context, id uuid.UUID) (*entities.CartItem, error) {
	item, err := u.cartRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Cart item not found")
		}
		return nil, err
	}
	if item.Status != entities.CartPending {
		return nil, domainerrors.Conflict("Only pending items can be changed")
	}
	if _, err := u.openSession(ctx, item.SessionID); err != nil {
		return nil, err
	}
	return item, nil
}

func (u *OrderUsecase) openSession(ctx context.Context, id uuid.UUID) (*entities.TableSession, error) {
	session, err := u.getSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.Status.IsOpen() {
		return nil, domainerrors.Wrap(http.StatusBadRequest, "Session is "+string(session.Status), domainerrors.ErrInvalidSession)
	}
	return session, nil
}

func (u *OrderUsecase) getSession(ctx context.Context, id uuid.UUID) (*entities.TableSession, error) {
	session, err := u.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Session not found")
		}
		return nil, err
	}
	return session, nil
}

func (u *OrderUsecase) getStore(ctx context.Context, id uuid.UUID) (*entities.Store, error) {
	store, err := u.storeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Store not found")
		}
		return nil, err
	}
	return store, nil
}

func parseOptionalID(raw, field string) (*uuid.UUID, error) {
	id, err := utils.ParseOptionalUUID(raw)
	if err != nil {
		return nil, domainerrors.BadRequest("invalid " + field)
	}
	return id, nil
}
