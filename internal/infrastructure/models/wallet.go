package models

import (
	"time"

	"github.com/google/uuid"
)

type Wallet struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerType    string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_wallet_owner"`
	OwnerID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wallet_owner"`
	Balance      int64     `gorm:"not null;default:0"`
	TotalCharged int64     `gorm:"not null;default:0"`
	TotalUsed    int64     `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Wallet) TableName() string { return "wallets" }

type WalletTransaction struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	WalletID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	OwnerID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type          string     `gorm:"column:transaction_type;type:varchar(30);not null"`
	Amount        int64      `gorm:"not null"`
	BalanceBefore int64      `gorm:"not null"`
	BalanceAfter  int64      `gorm:"not null"`
	PaymentID     *uuid.UUID `gorm:"type:uuid"`
	Description   *string    `gorm:"type:text"`
	CreatedAt     time.Time
}

func (WalletTransaction) TableName() string { return "wallet_transactions" }
