package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// WalletOwnerType is the kind of account a wallet belongs to
type WalletOwnerType string

const (
	WalletOwnerConsumer WalletOwnerType = "consumer"
	WalletOwnerMerchant WalletOwnerType = "merchant"
)

// WalletTxType categorizes ledger rows
type WalletTxType string

const (
	WalletTxCharge     WalletTxType = "charge"
	WalletTxBonus      WalletTxType = "bonus"
	WalletTxUse        WalletTxType = "use"
	WalletTxRefund     WalletTxType = "refund"
	WalletTxGameReward WalletTxType = "GAME_REWARD"
)

// WalletOwner identifies the holder of a wallet
type WalletOwner struct {
	Type WalletOwnerType
	ID   uuid.UUID
}

// ConsumerWallet is the point wallet of a consumer
func ConsumerWallet(id uuid.UUID) WalletOwner {
	return WalletOwner{Type: WalletOwnerConsumer, ID: id}
}

// MerchantWallet is the prepaid wallet of a merchant
func MerchantWallet(id uuid.UUID) WalletOwner {
	return WalletOwner{Type: WalletOwnerMerchant, ID: id}
}

// Wallet holds a running balance backed by the ledger
type Wallet struct {
	ID           uuid.UUID       `json:"id"`
	OwnerType    WalletOwnerType `json:"owner_type"`
	OwnerID      uuid.UUID       `json:"owner_id"`
	Balance      int64           `json:"balance"`
	TotalCharged int64           `json:"total_charged"`
	TotalUsed    int64           `json:"total_used"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// WalletTransaction is an append-only ledger row
type WalletTransaction struct {
	ID            uuid.UUID    `json:"id"`
	WalletID      uuid.UUID    `json:"wallet_id"`
	OwnerID       uuid.UUID    `json:"owner_id"`
	Type          WalletTxType `json:"type"`
	Amount        int64        `json:"amount"`
	BalanceBefore int64        `json:"balance_before"`
	BalanceAfter  int64        `json:"balance_after"`
	PaymentID     *uuid.UUID   `json:"payment_id"`
	Description   null.String  `json:"description"`
	CreatedAt     time.Time    `json:"created_at"`
}

// WalletDelta is one signed balance change
type WalletDelta struct {
	Owner       WalletOwner
	Type        WalletTxType
	Amount      int64
	PaymentID   *uuid.UUID
	Description string
}

// WalletDeltaInput is the consumer wallet transaction request body
type WalletDeltaInput struct {
	ConsumerID   string `json:"consumer_id"`
	Type         string `json:"type"`
	AmountPoints *int64 `json:"amount_points"`
}

// WalletDeltaResult is returned after a delta is applied
type WalletDeltaResult struct {
	Status     string    `json:"status"`
	WalletTxID uuid.UUID `json:"wallet_tx_id"`
	NewBalance int64     `json:"new_balance"`
}

// ConsumerBalance is the consumer point balance view
type ConsumerBalance struct {
	ConsumerID  uuid.UUID `json:"consumer_id"`
	TotalPoints int64     `json:"total_points"`
}

// WalletOverview is the merchant wallet page
type WalletOverview struct {
	Wallet       *Wallet              `json:"wallet"`
	Transactions []*WalletTransaction `json:"transactions"`
}
