package models

import (
	"time"

	"github.com/google/uuid"
)

type Settlement struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	MerchantID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_settlement_period"`
	PeriodStart   string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_settlement_period"`
	PeriodEnd     string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_settlement_period"`
	GrossAmount   int64     `gorm:"not null;default:0"`
	FeeAmount     int64     `gorm:"not null;default:0"`
	FeeRate       float64   `gorm:"not null"`
	NetAmount     int64     `gorm:"not null;default:0"`
	OrderCount    int64     `gorm:"not null;default:0"`
	RefundCount   int64     `gorm:"not null;default:0"`
	RefundAmount  int64     `gorm:"not null;default:0"`
	Status        string    `gorm:"type:varchar(20);not null;default:'pending';index"`
	BankName      *string   `gorm:"type:varchar(50)"`
	BankAccount   *string   `gorm:"type:varchar(50)"`
	AccountHolder *string   `gorm:"type:varchar(100)"`
	Notes         *string   `gorm:"type:text"`
	ConfirmedAt   *time.Time
	ProcessedAt   *time.Time
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Settlement) TableName() string { return "settlements" }

type SettlementItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	SettlementID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ItemType      string    `gorm:"type:varchar(20);not null"`
	ReferenceID   uuid.UUID `gorm:"type:uuid;not null"`
	ReferenceType string    `gorm:"type:varchar(20);not null"`
	GrossAmount   int64     `gorm:"not null"`
	FeeAmount     int64     `gorm:"not null"`
	NetAmount     int64     `gorm:"not null"`
	Description   string    `gorm:"type:varchar(255)"`
	OccurredAt    time.Time `gorm:"not null"`
}

func (SettlementItem) TableName() string { return "settlement_items" }
