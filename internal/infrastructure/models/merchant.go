package models

import (
	"time"

	"github.com/google/uuid"
)

type Merchant struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerUserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	BusinessName   string    `gorm:"type:varchar(255);not null"`
	OwnerName      string    `gorm:"type:varchar(100);not null"`
	Phone          string    `gorm:"type:varchar(30);not null"`
	Email          string    `gorm:"type:varchar(255)"`
	Slug           string    `gorm:"type:varchar(60);not null;uniqueIndex"`
	Category       string    `gorm:"type:varchar(50);not null;default:'restaurant'"`
	Address        *string   `gorm:"type:text"`
	Description    *string   `gorm:"type:text"`
	ApprovalStatus string    `gorm:"type:varchar(20);not null;default:'pending';index"`
	StatusReason   *string   `gorm:"type:text"`
	ApprovedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Merchant) TableName() string { return "merchants" }

type MerchantApprovalLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	MerchantID uuid.UUID `gorm:"type:uuid;not null;index"`
	AdminID    uuid.UUID `gorm:"type:uuid;not null"`
	Action     string    `gorm:"type:varchar(20);not null"`
	FromStatus string    `gorm:"type:varchar(20);not null"`
	ToStatus   string    `gorm:"type:varchar(20);not null"`
	Reason     *string   `gorm:"type:text"`
	CreatedAt  time.Time
}

func (MerchantApprovalLog) TableName() string { return "merchant_approval_logs" }
