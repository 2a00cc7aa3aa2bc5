package models

import (
	"time"

	"github.com/google/uuid"
)

type Payment struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	MerchantID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	StoreID        *uuid.UUID `gorm:"type:uuid"`
	PaymentType    string     `gorm:"type:varchar(20);not null"`
	PackageID      *uuid.UUID `gorm:"type:uuid"`
	Amount         int64      `gorm:"not null"`
	BonusAmount    int64      `gorm:"not null;default:0"`
	FinalAmount    int64      `gorm:"not null"`
	PGOrderID      string     `gorm:"column:pg_order_id;type:varchar(64);not null;uniqueIndex"`
	PGPaymentKey   *string    `gorm:"column:pg_payment_key;type:varchar(255)"`
	PaymentMethod  *string    `gorm:"type:varchar(50)"`
	ReceiptURL     *string    `gorm:"type:text"`
	FailureCode    *string    `gorm:"type:varchar(100)"`
	FailureMessage *string    `gorm:"type:text"`
	Status         string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	ApprovedAt     *time.Time `gorm:"index"`
	FailedAt       *time.Time
	RefundAmount   int64 `gorm:"not null;default:0"`
	RefundedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Payment) TableName() string { return "payments" }

type TopupPackage struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Amount       int64     `gorm:"not null"`
	BonusAmount  int64     `gorm:"not null;default:0"`
	BonusPercent int64     `gorm:"not null;default:0"`
	IsActive     bool      `gorm:"not null"`
	DisplayOrder int       `gorm:"not null;default:0"`
	CreatedAt    time.Time
}

func (TopupPackage) TableName() string { return "topup_packages" }
