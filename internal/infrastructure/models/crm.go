package models

import (
	"time"

	"github.com/google/uuid"
)

type MerchantCustomer struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	MerchantID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_merchant_customer"`
	ConsumerID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_merchant_customer"`
	VisitCount       int64     `gorm:"not null;default:0"`
	CouponIssueCount int64     `gorm:"not null;default:0"`
	TotalSpent       int64     `gorm:"not null;default:0"`
	FirstVisitAt     time.Time `gorm:"not null"`
	LastVisitAt      time.Time `gorm:"not null"`
}

func (MerchantCustomer) TableName() string { return "merchant_customers" }

type TransactionEvent struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EventType  string     `gorm:"type:varchar(50);not null;index"`
	MerchantID *uuid.UUID `gorm:"type:uuid;index"`
	StoreID    *uuid.UUID `gorm:"type:uuid"`
	ConsumerID *uuid.UUID `gorm:"type:uuid"`
	Amount     int64      `gorm:"not null;default:0"`
	Metadata   string     `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt  time.Time
}

func (TransactionEvent) TableName() string { return "transaction_events" }
