package models

import (
	"time"

	"github.com/google/uuid"
)

type Coupon struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	MerchantID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	StoreID        *uuid.UUID `gorm:"type:uuid;index"`
	Title          string     `gorm:"type:varchar(255);not null"`
	Description    *string    `gorm:"type:text"`
	Category       *string    `gorm:"type:varchar(50)"`
	DiscountType   string     `gorm:"type:varchar(20);not null"`
	DiscountValue  int64      `gorm:"not null"`
	MinOrderAmount *int64
	ValidFrom      *time.Time
	ValidTo        *time.Time `gorm:"index"`
	TotalIssuable  *int64
	PerUserLimit   *int64
	IssuedCount    int64 `gorm:"not null;default:0"`
	IsActive       bool  `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Coupon) TableName() string { return "coupons" }

type CouponIssue struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CouponID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ConsumerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Code        string    `gorm:"type:varchar(16);not null;uniqueIndex"`
	Status      string    `gorm:"type:varchar(20);not null;default:'ISSUED';index"`
	Channel     string    `gorm:"type:varchar(20);not null"`
	Reason      string    `gorm:"type:varchar(50);not null;default:'MANUAL'"`
	IssuedAt    time.Time `gorm:"not null"`
	UsedAt      *time.Time
	UsedStoreID *uuid.UUID `gorm:"type:uuid"`
}

func (CouponIssue) TableName() string { return "coupon_issues" }
