package models

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	MerchantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Title        string    `gorm:"type:varchar(255);not null"`
	Subtitle     *string   `gorm:"type:varchar(255)"`
	Description  *string   `gorm:"type:text"`
	Category     string    `gorm:"type:varchar(50);not null;default:'other';index"`
	PosterURL    *string   `gorm:"type:text"`
	VenueName    string    `gorm:"type:varchar(255);not null"`
	VenueAddress *string   `gorm:"type:text"`
	EventDate    time.Time `gorm:"not null;index"`
	EventEndDate *time.Time
	Status       string `gorm:"type:varchar(20);not null;default:'draft';index"`
	IsFeatured   bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Event) TableName() string { return "events" }

type TicketType struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID          uuid.UUID `gorm:"type:uuid;not null;index"`
	Name             string    `gorm:"type:varchar(100);not null"`
	Description      *string   `gorm:"type:text"`
	Price            int64     `gorm:"not null"`
	OriginalPrice    *int64
	TotalQuantity    int64 `gorm:"not null"`
	SoldQuantity     int64 `gorm:"not null;default:0"`
	ReservedQuantity int64 `gorm:"not null;default:0"`
	MaxPerOrder      int   `gorm:"not null;default:10"`
	IsNumberedSeat   bool  `gorm:"not null;default:false"`
	DisplayOrder     int   `gorm:"not null;default:0"`
	CreatedAt        time.Time
}

func (TicketType) TableName() string { return "ticket_types" }

type Ticket struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EventID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	TicketTypeID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_ticket_type_number"`
	UserID       *uuid.UUID `gorm:"type:uuid;index"`
	BuyerName    string     `gorm:"type:varchar(100);not null"`
	BuyerPhone   string     `gorm:"type:varchar(20);not null"`
	BuyerEmail   *string    `gorm:"type:varchar(255)"`
	TicketNumber string     `gorm:"type:varchar(30);not null;uniqueIndex:idx_ticket_type_number"`
	QRCode       string     `gorm:"column:qr_code;type:varchar(64);not null;uniqueIndex"`
	Price        int64      `gorm:"not null"`
	PaymentID    *uuid.UUID `gorm:"type:uuid"`
	SeatSection  *string    `gorm:"type:varchar(20)"`
	SeatRow      *string    `gorm:"type:varchar(10)"`
	SeatNumber   *string    `gorm:"type:varchar(10)"`
	Status       string     `gorm:"type:varchar(20);not null;default:'issued';index"`
	UsedAt       *time.Time
	CreatedAt    time.Time
}

func (Ticket) TableName() string { return "tickets" }
