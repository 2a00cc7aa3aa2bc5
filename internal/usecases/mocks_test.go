package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/volatiletech/null/v8"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/pkg/utils"
	"couponmap.backend/internal/domain/repositories"
)

// Mock UnitOfWork runs the callback inline on the caller's context
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) WithLock(ctx context.Context) context.Context {
	return ctx
}

func newMockUoW() *MockUnitOfWork {
	uow := new(MockUnitOfWork)
	uow.On("Do", mock.Anything, mock.Anything).Return()
	return uow
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

// Mock MerchantRepository
type MockMerchantRepository struct {
	mock.Mock
}

func (m *MockMerchantRepository) Create(ctx context.Context, merchant *entities.Merchant) error {
	return m.Called(ctx, merchant).Error(0)
}

func (m *MockMerchantRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Merchant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockMerchantRepository) UpdateApproval(ctx context.Context, id uuid.UUID, from, to entities.ApprovalStatus, reason null.String) (bool, error) {
	args := m.Called(ctx, id, from, to, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockMerchantRepository) List(ctx context.Context, status *entities.ApprovalStatus, page utils.PaginationParams) ([]*entities.Merchant, int64, error) {
	args := m.Called(ctx, status, page)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*entities.Merchant), args.Get(1).(int64), args.Error(2)
}

func (m *MockMerchantRepository) CountByStatus(ctx context.Context) (map[entities.ApprovalStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[entities.ApprovalStatus]int64), args.Error(1)
}

func (m *MockMerchantRepository) FirstApproved(ctx context.Context) (*entities.Merchant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) AppendApprovalLog(ctx context.Context, log *entities.ApprovalLog) error {
	return m.Called(ctx, log).Error(0)
}

// Mock StoreRepository
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) Create(ctx context.Context, store *entities.Store) error {
	return m.Called(ctx, store).Error(0)
}

func (m *MockStoreRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Store), args.Error(1)
}

func (m *MockStoreRepository) ListCandidates(ctx context.Context, query entities.StoreQuery, fetch int) ([]*entities.Store, error) {
	args := m.Called(ctx, query, fetch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Store), args.Error(1)
}

func (m *MockStoreRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]*entities.Store, error) {
	args := m.Called(ctx, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Store), args.Error(1)
}

func (m *MockStoreRepository) Update(ctx context.Context, store *entities.Store) error {
	return m.Called(ctx, store).Error(0)
}

func (m *MockStoreRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

// Mock ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *entities.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Product), args.Error(1)
}

func (m *MockProductRepository) ListActiveByMerchant(ctx context.Context, merchantID uuid.UUID) ([]*entities.Product, error) {
	args := m.Called(ctx, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Product), args.Error(1)
}

// Mock CouponRepository
type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) Create(ctx context.Context, coupon *entities.Coupon) error {
	return m.Called(ctx, coupon).Error(0)
}

func (m *MockCouponRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Coupon), args.Error(1)
}

func (m *MockCouponRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.Coupon, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*entities.Coupon), args.Error(1)
}

func (m *MockCouponRepository) ReserveIssue(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCouponRepository) ListNearbyCandidates(ctx context.Context, category string, now time.Time, fetch int) ([]*entities.NearbyCoupon, error) {
	args := m.Called(ctx, category, now, fetch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.NearbyCoupon), args.Error(1)
}

func (m *MockCouponRepository) FindIssuableForMerchant(ctx context.Context, merchantID uuid.UUID, now time.Time) (*entities.Coupon, error) {
	args := m.Called(ctx, merchantID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Coupon), args.Error(1)
}

// Mock CouponIssueRepository
type MockCouponIssueRepository struct {
	mock.Mock
}

func (m *MockCouponIssueRepository) Create(ctx context.Context, issue *entities.CouponIssue) error {
	return m.Called(ctx, issue).Error(0)
}

func (m *MockCouponIssueRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.CouponIssue, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CouponIssue), args.Error(1)
}

func (m *MockCouponIssueRepository) GetByCode(ctx context.Context, code string) (*entities.CouponIssue, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CouponIssue), args.Error(1)
}

func (m *MockCouponIssueRepository) CountByConsumer(ctx context.Context, couponID, consumerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, couponID, consumerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCouponIssueRepository) MarkUsed(ctx context.Context, id, storeID uuid.UUID, usedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, storeID, usedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockCouponIssueRepository) ListByConsumer(ctx context.Context, consumerID uuid.UUID) ([]*entities.CouponIssue, error) {
	args := m.Called(ctx, consumerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CouponIssue), args.Error(1)
}

func (m *MockCouponIssueRepository) ExpireElapsed(ctx context.Context, now time.Time, limit int) (int64, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).(int64), args.Error(1)
}

// Mock TableSessionRepository
type MockTableSessionRepository struct {
	mock.Mock
}

func (m *MockTableSessionRepository) CreateIfAbsent(ctx context.Context, session *entities.TableSession) (bool, error) {
	args := m.Called(ctx, session)
	return args.Bool(0), args.Error(1)
}

func (m *MockTableSessionRepository) GetOpenByTable(ctx context.Context, storeID uuid.UUID, tableID string) (*entities.TableSession, error) {
	args := m.Called(ctx, storeID, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TableSession), args.Error(1)
}

func (m *MockTableSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.TableSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TableSession), args.Error(1)
}

func (m *MockTableSessionRepository) GetByCode(ctx context.Context, code string) (*entities.TableSession, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TableSession), args.Error(1)
}

func (m *MockTableSessionRepository) AddOrder(ctx context.Context, id uuid.UUID, totals entities.OrderTotals, couponIssueID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, totals, couponIssueID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTableSessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []entities.SessionStatus, to entities.SessionStatus, at time.Time) (bool, error) {
	args := m.Called(ctx, id, from, to, at)
	return args.Bool(0), args.Error(1)
}

// Mock CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Create(ctx context.Context, item *entities.CartItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockCartRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.CartItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CartItem), args.Error(1)
}

func (m *MockCartRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*entities.CartItem, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CartItem), args.Error(1)
}

func (m *MockCartRepository) ListPending(ctx context.Context, sessionID uuid.UUID) ([]*entities.CartItem, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CartItem), args.Error(1)
}

func (m *MockCartRepository) UpdatePendingQuantity(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	args := m.Called(ctx, id, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) DeletePending(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) Confirm(ctx context.Context, ids []uuid.UUID, kitchenOrderID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids, kitchenOrderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCartRepository) Cascade(ctx context.Context, kitchenOrderID uuid.UUID, from []entities.CartItemStatus, to entities.CartItemStatus) (int64, error) {
	args := m.Called(ctx, kitchenOrderID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

// Mock KitchenOrderRepository
type MockKitchenOrderRepository struct {
	mock.Mock
}

func (m *MockKitchenOrderRepository) Create(ctx context.Context, order *entities.KitchenOrder) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockKitchenOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.KitchenOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.KitchenOrder), args.Error(1)
}

func (m *MockKitchenOrderRepository) ListByStore(ctx context.Context, storeID uuid.UUID, statuses []entities.KitchenStatus) ([]*entities.KitchenOrder, error) {
	args := m.Called(ctx, storeID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.KitchenOrder), args.Error(1)
}

func (m *MockKitchenOrderRepository) Transition(ctx context.Context, id uuid.UUID, from []entities.KitchenStatus, to entities.KitchenStatus, at time.Time) (bool, error) {
	args := m.Called(ctx, id, from, to, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockKitchenOrderRepository) NextOrderNumber(ctx context.Context, storeID uuid.UUID, orderDate string) (int64, error) {
	args := m.Called(ctx, storeID, orderDate)
	return args.Get(0).(int64), args.Error(1)
}

// Mock WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetByOwner(ctx context.Context, owner entities.WalletOwner) (*entities.Wallet, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Ensure(ctx context.Context, owner entities.WalletOwner) error {
	return m.Called(ctx, owner).Error(0)
}

func (m *MockWalletRepository) ApplyBalance(ctx context.Context, owner entities.WalletOwner, change repositories.BalanceChange) (*entities.Wallet, error) {
	args := m.Called(ctx, owner, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) AppendTransaction(ctx context.Context, tx *entities.WalletTransaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockWalletRepository) ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]*entities.WalletTransaction, error) {
	args := m.Called(ctx, walletID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.WalletTransaction), args.Error(1)
}

// Mock PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *entities.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByPGOrderID(ctx context.Context, orderID string) (*entities.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) MarkPaid(ctx context.Context, id uuid.UUID, approval *entities.GatewayApproval) (bool, error) {
	args := m.Called(ctx, id, approval)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) MarkFailed(ctx context.Context, id uuid.UUID, decline *entities.GatewayDecline) (bool, error) {
	args := m.Called(ctx, id, decline)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) ListPaidBetween(ctx context.Context, merchantID uuid.UUID, from, to time.Time) ([]*entities.Payment, error) {
	args := m.Called(ctx, merchantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListRefundedBetween(ctx context.Context, merchantID uuid.UUID, from, to time.Time) ([]*entities.Payment, error) {
	args := m.Called(ctx, merchantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Payment), args.Error(1)
}

// Mock TopupPackageRepository
type MockTopupPackageRepository struct {
	mock.Mock
}

func (m *MockTopupPackageRepository) ListActive(ctx context.Context) ([]*entities.TopupPackage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TopupPackage), args.Error(1)
}

func (m *MockTopupPackageRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*entities.TopupPackage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TopupPackage), args.Error(1)
}

// Mock EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *entities.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Event), args.Error(1)
}

func (m *MockEventRepository) List(ctx context.Context, query entities.EventQuery, now time.Time) ([]*entities.Event, int64, error) {
	args := m.Called(ctx, query, now)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Event), args.Get(1).(int64), args.Error(2)
}

func (m *MockEventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []entities.EventStatus, to entities.EventStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventRepository) MarkSoldOutIfExhausted(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// Mock TicketTypeRepository
type MockTicketTypeRepository struct {
	mock.Mock
}

func (m *MockTicketTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.TicketType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TicketType), args.Error(1)
}

func (m *MockTicketTypeRepository) Sell(ctx context.Context, id uuid.UUID, quantity int) (int64, bool, error) {
	args := m.Called(ctx, id, quantity)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

// Mock TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) CreateBatch(ctx context.Context, tickets []*entities.Ticket) error {
	return m.Called(ctx, tickets).Error(0)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByQRCode(ctx context.Context, code string) (*entities.Ticket, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ListByUser(ctx context.Context, userID uuid.UUID, status *entities.TicketStatus) ([]*entities.Ticket, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Ticket), args.Error(1)
}

func (m *MockTicketRepository) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, usedAt)
	return args.Bool(0), args.Error(1)
}

// Mock SettlementRepository
type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) Create(ctx context.Context, settlement *entities.Settlement) error {
	return m.Called(ctx, settlement).Error(0)
}

func (m *MockSettlementRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Settlement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, status *entities.SettlementStatus) ([]*entities.Settlement, error) {
	args := m.Called(ctx, merchantID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []entities.SettlementStatus, input *entities.UpdateSettlementInput, at time.Time) (bool, error) {
	args := m.Called(ctx, id, from, input, at)
	return args.Bool(0), args.Error(1)
}

// Mock GameSessionRepository
type MockGameSessionRepository struct {
	mock.Mock
}

func (m *MockGameSessionRepository) Create(ctx context.Context, session *entities.GameSession) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockGameSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.GameSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GameSession), args.Error(1)
}

func (m *MockGameSessionRepository) Finish(ctx context.Context, session *entities.GameSession) (bool, error) {
	args := m.Called(ctx, session)
	return args.Bool(0), args.Error(1)
}

// Mock StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) CountCouponsIssued(ctx context.Context, merchantID uuid.UUID, since time.Time) (int64, error) {
	args := m.Called(ctx, merchantID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsRepository) CountCouponsUsed(ctx context.Context, merchantID uuid.UUID, since time.Time) (int64, error) {
	args := m.Called(ctx, merchantID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsRepository) SummarizeOrders(ctx context.Context, merchantID uuid.UUID, since time.Time) (repositories.OrderSummary, error) {
	args := m.Called(ctx, merchantID, since)
	return args.Get(0).(repositories.OrderSummary), args.Error(1)
}

func (m *MockStatsRepository) SummarizeCustomers(ctx context.Context, merchantID uuid.UUID, since time.Time) (repositories.CustomerSummary, error) {
	args := m.Called(ctx, merchantID, since)
	return args.Get(0).(repositories.CustomerSummary), args.Error(1)
}

// Mock CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) RecordTouchpoint(ctx context.Context, touchpoint entities.Touchpoint, at time.Time) error {
	return m.Called(ctx, touchpoint, at).Error(0)
}

func (m *MockCustomerRepository) Get(ctx context.Context, merchantID, consumerID uuid.UUID) (*entities.MerchantCustomer, error) {
	args := m.Called(ctx, merchantID, consumerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MerchantCustomer), args.Error(1)
}

// Mock TransactionEventRepository
type MockTransactionEventRepository struct {
	mock.Mock
}

func (m *MockTransactionEventRepository) Create(ctx context.Context, event *entities.TransactionEvent) error {
	return m.Called(ctx, event).Error(0)
}

// Mock PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Confirm(ctx context.Context, paymentKey, orderID string, amount int64) (*entities.GatewayApproval, error) {
	args := m.Called(ctx, paymentKey, orderID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GatewayApproval), args.Error(1)
}

// Mock AnalyticsPublisher
type MockAnalyticsPublisher struct {
	mock.Mock
}

func (m *MockAnalyticsPublisher) Publish(ctx context.Context, event *entities.TransactionEvent) error {
	return m.Called(ctx, event).Error(0)
}

// Mock KitchenNotifier
type MockKitchenNotifier struct {
	mock.Mock
}

func (m *MockKitchenNotifier) Notify(ctx context.Context, event *entities.KitchenEvent) error {
	return m.Called(ctx, event).Error(0)
}

// inlineRunner executes side effects synchronously so tests can assert them
type inlineRunner struct{}

func (inlineRunner) Submit(ctx context.Context, _ string, fn func(ctx context.Context) error) bool {
	_ = fn(ctx)
	return true
}
