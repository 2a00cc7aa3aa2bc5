package models

import (
	"time"

	"github.com/google/uuid"
)

// TableSession holds OpenTableKey while active or ordering; it is cleared
// once the session is paid or closed.
type TableSession struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	StoreID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	TableID        string     `gorm:"type:varchar(64);not null"`
	TableLabel     string     `gorm:"column:table_name;type:varchar(100);not null"`
	Code           string     `gorm:"type:varchar(16);not null;uniqueIndex"`
	Status         string     `gorm:"type:varchar(20);not null;default:'active'"`
	OpenTableKey   *string    `gorm:"type:varchar(128);uniqueIndex"`
	ConsumerID     *uuid.UUID `gorm:"type:uuid"`
	TotalAmount    int64      `gorm:"not null;default:0"`
	DiscountAmount int64      `gorm:"not null;default:0"`
	FinalAmount    int64      `gorm:"not null;default:0"`
	CouponIssueID  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	PaidAt         *time.Time
	ClosedAt       *time.Time
}

func (TableSession) TableName() string { return "table_sessions" }

type CartItem struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SessionID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID  `gorm:"type:uuid;not null"`
	ProductName    string     `gorm:"type:varchar(255);not null"`
	Quantity       int        `gorm:"not null"`
	UnitPrice      int64      `gorm:"not null"`
	Options        *string    `gorm:"type:jsonb"`
	Status         string     `gorm:"type:varchar(20);not null;default:'pending'"`
	KitchenOrderID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (CartItem) TableName() string { return "cart_items" }

type KitchenOrder struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	StoreID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	SessionID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	OrderNumber    int64      `gorm:"not null"`
	OrderDate      string     `gorm:"type:varchar(10);not null"`
	TableLabel     string     `gorm:"column:table_name;type:varchar(100);not null"`
	Items          string     `gorm:"type:jsonb;not null"`
	TotalAmount    int64      `gorm:"not null"`
	DiscountAmount int64      `gorm:"not null;default:0"`
	FinalAmount    int64      `gorm:"not null"`
	CouponIssueID  *uuid.UUID `gorm:"type:uuid"`
	Notes          *string    `gorm:"type:text"`
	Status         string     `gorm:"type:varchar(20);not null;default:'new';index"`
	CreatedAt      time.Time
	StartedAt      *time.Time
	ReadyAt        *time.Time
	ServedAt       *time.Time
	CancelledAt    *time.Time
}

func (KitchenOrder) TableName() string { return "kitchen_orders" }

type StoreOrderCounter struct {
	StoreID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderDate  string    `gorm:"type:varchar(10);primaryKey"`
	LastNumber int64     `gorm:"not null;default:0"`
}

func (StoreOrderCounter) TableName() string { return "store_order_counters" }
