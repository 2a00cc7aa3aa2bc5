package usecases

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
	"couponmap.backend/internal/domain/repositories"
)

const merchantWalletHistory = 20

// WalletUsecase handles wallet balances and their ledger
type WalletUsecase struct {
	uow           repositories.UnitOfWork
	walletRepo    repositories.WalletRepository
	allowNegative bool
}

// NewWalletUsecase creates a new wallet usecase
func NewWalletUsecase(uow repositories.UnitOfWork, walletRepo repositories.WalletRepository, allowNegative bool) *WalletUsecase {
	return &WalletUsecase{
		uow:           uow,
		walletRepo:    walletRepo,
		allowNegative: allowNegative,
	}
}

// ApplyDelta changes a balance and appends the matching ledger row in one
// transaction, creating the wallet on first use. The balance update is a
// single statement, so concurrent deltas on a wallet serialize on its row
// and balance_after always equals balance_before plus amount.
//
// Called inside another transaction it joins that one.
func (u *WalletUsecase) ApplyDelta(ctx context.Context, delta entities.WalletDelta) (*entities.WalletTransaction, error) {
	var tx *entities.WalletTransaction
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.walletRepo.Ensure(txCtx, delta.Owner); err != nil {
			return err
		}

		change := repositories.BalanceChange{
			Amount:      delta.Amount,
			NonNegative: !u.allowNegative && delta.Amount < 0,
		}
		if delta.Amount > 0 {
			change.Charged = delta.Amount
		} else {
			change.Used = -delta.Amount
		}

		wallet, err := u.walletRepo.ApplyBalance(txCtx, delta.Owner, change)
		if err != nil {
			if errors.Is(err, domainerrors.ErrInsufficientFunds) {
				return domainerrors.Wrap(http.StatusBadRequest, "Insufficient balance", domainerrors.ErrInsufficientFunds)
			}
			return err
		}

		tx = &entities.WalletTransaction{
			WalletID:      wallet.ID,
			OwnerID:       delta.Owner.ID,
			Type:          delta.Type,
			Amount:        delta.Amount,
			BalanceBefore: wallet.Balance - delta.Amount,
			BalanceAfter:  wallet.Balance,
			PaymentID:     delta.PaymentID,
			Description:   null.NewString(delta.Description, delta.Description != ""),
		}
		return u.walletRepo.AppendTransaction(txCtx, tx)
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// ConsumerTransaction applies a signed point delta to a consumer wallet
func (u *WalletUsecase) ConsumerTransaction(ctx context.Context, input *entities.WalletDeltaInput) (*entities.WalletDeltaResult, error) {
	txType := strings.TrimSpace(input.Type)
	if strings.TrimSpace(input.ConsumerID) == "" || txType == "" || input.AmountPoints == nil {
		return nil, domainerrors.BadRequest("consumer_id, type and amount_points are required")
	}
	consumerID, err := uuid.Parse(strings.TrimSpace(input.ConsumerID))
	if err != nil {
		return nil, domainerrors.BadRequest("invalid consumer_id")
	}

	tx, err := u.ApplyDelta(ctx, entities.WalletDelta{
		Owner:  entities.ConsumerWallet(consumerID),
		Type:   entities.WalletTxType(txType),
		Amount: *input.AmountPoints,
	})
	if err != nil {
		return nil, err
	}
	return &entities.WalletDeltaResult{Status: "ok", WalletTxID: tx.ID, NewBalance: tx.BalanceAfter}, nil
}

// ConsumerBalance returns a consumer's points, zero when there is no wallet yet
func (u *WalletUsecase) ConsumerBalance(ctx context.Context, consumerID uuid.UUID) (*entities.ConsumerBalance, error) {
	wallet, err := u.walletRepo.GetByOwner(ctx, entities.ConsumerWallet(consumerID))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return &entities.ConsumerBalance{ConsumerID: consumerID}, nil
		}
		return nil, err
	}
	return &entities.ConsumerBalance{ConsumerID: consumerID, TotalPoints: wallet.Balance}, nil
}

// MerchantOverview returns the merchant wallet and its latest ledger rows
func (u *WalletUsecase) MerchantOverview(ctx context.Context, merchantID uuid.UUID) (*entities.WalletOverview, error) {
	owner := entities.MerchantWallet(merchantID)
	if err := u.walletRepo.Ensure(ctx, owner); err != nil {
		return nil, err
	}
	wallet, err := u.walletRepo.GetByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	txs, err := u.walletRepo.ListTransactions(ctx, wallet.ID, merchantWalletHistory)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []*entities.WalletTransaction{}
	}
	return &entities.WalletOverview{Wallet: wallet, Transactions: txs}, nil
}
