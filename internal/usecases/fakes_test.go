package usecases_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
	"couponmap.backend/internal/domain/repositories"
)

// memIssueRepo keeps issues in memory with the same conditional
// semantics as the SQL implementation
type memIssueRepo struct {
	mu     sync.Mutex
	issues map[uuid.UUID]*entities.CouponIssue
}

func newMemIssueRepo(issues ...*entities.CouponIssue) *memIssueRepo {
	r := &memIssueRepo{issues: map[uuid.UUID]*entities.CouponIssue{}}
	for _, issue := range issues {
		r.issues[issue.ID] = issue
	}
	return r
}

func (r *memIssueRepo) Create(_ context.Context, issue *entities.CouponIssue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if issue.ID == uuid.Nil {
		issue.ID = uuid.New()
	}
	cp := *issue
	r.issues[issue.ID] = &cp
	return nil
}

func (r *memIssueRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.CouponIssue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	cp := *issue
	return &cp, nil
}

func (r *memIssueRepo) GetByCode(_ context.Context, code string) (*entities.CouponIssue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, issue := range r.issues {
		if issue.Code == code {
			cp := *issue
			return &cp, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *memIssueRepo) CountByConsumer(_ context.Context, couponID, consumerID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, issue := range r.issues {
		if issue.CouponID == couponID && issue.ConsumerID == consumerID {
			n++
		}
	}
	return n, nil
}

func (r *memIssueRepo) MarkUsed(_ context.Context, id, storeID uuid.UUID, usedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok || issue.Status != entities.IssueStatusIssued {
		return false, nil
	}
	issue.Status = entities.IssueStatusUsed
	issue.UsedAt = null.TimeFrom(usedAt)
	issue.UsedStoreID = &storeID
	return true, nil
}

func (r *memIssueRepo) ListByConsumer(_ context.Context, consumerID uuid.UUID) ([]*entities.CouponIssue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.CouponIssue
	for _, issue := range r.issues {
		if issue.ConsumerID == consumerID {
			cp := *issue
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memIssueRepo) ExpireElapsed(context.Context, time.Time, int) (int64, error) {
	return 0, nil
}

// memWalletRepo serializes balance changes like a single UPDATE would
type memWalletRepo struct {
	mu      sync.Mutex
	wallets map[entities.WalletOwner]*entities.Wallet
	txs     []*entities.WalletTransaction
}

func newMemWalletRepo() *memWalletRepo {
	return &memWalletRepo{wallets: map[entities.WalletOwner]*entities.Wallet{}}
}

func (r *memWalletRepo) GetByOwner(_ context.Context, owner entities.WalletOwner) (*entities.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[owner]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *memWalletRepo) Ensure(_ context.Context, owner entities.WalletOwner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wallets[owner]; !ok {
		r.wallets[owner] = &entities.Wallet{ID: uuid.New(), OwnerType: owner.Type, OwnerID: owner.ID}
	}
	return nil
}

func (r *memWalletRepo) ApplyBalance(_ context.Context, owner entities.WalletOwner, change repositories.BalanceChange) (*entities.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[owner]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	if change.NonNegative && w.Balance+change.Amount < 0 {
		return nil, domainerrors.ErrInsufficientFunds
	}
	w.Balance += change.Amount
	w.TotalCharged += change.Charged
	w.TotalUsed += change.Used
	cp := *w
	return &cp, nil
}

func (r *memWalletRepo) AppendTransaction(_ context.Context, tx *entities.WalletTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx.ID = uuid.New()
	r.txs = append(r.txs, tx)
	return nil
}

func (r *memWalletRepo) ListTransactions(_ context.Context, walletID uuid.UUID, limit int) ([]*entities.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.WalletTransaction
	for i := len(r.txs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.txs[i].WalletID == walletID {
			out = append(out, r.txs[i])
		}
	}
	return out, nil
}
