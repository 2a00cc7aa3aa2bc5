package repositories

import (
	"context"

	"couponmap.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// BalanceChange is one atomic update of a wallet balance
type BalanceChange struct {
	Amount  int64
	Charged int64
	Used    int64
	// NonNegative rejects a change that would take the balance below zero
	NonNegative bool
}

// WalletRepository defines wallet and ledger data operations
type WalletRepository interface {
	GetByOwner(ctx context.Context, owner entities.WalletOwner) (*entities.Wallet, error)
	// Ensure creates an empty wallet for owner when none exists
	Ensure(ctx context.Context, owner entities.WalletOwner) error
	// ApplyBalance adds change to the balance in a single statement and
	// returns the wallet as it is after the update.
	ApplyBalance(ctx context.Context, owner entities.WalletOwner, change BalanceChange) (*entities.Wallet, error)
	AppendTransaction(ctx context.Context, tx *entities.WalletTransaction) error
	ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]*entities.WalletTransaction, error)
}
