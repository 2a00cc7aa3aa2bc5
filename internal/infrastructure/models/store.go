package models

import (
	"time"

	"github.com/google/uuid"
)

type Store struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	MerchantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Slug         string    `gorm:"type:varchar(60);not null;uniqueIndex"`
	Category     string    `gorm:"type:varchar(50);not null;default:'restaurant';index"`
	Address      *string   `gorm:"type:text"`
	Phone        *string   `gorm:"type:varchar(30)"`
	Lat          *float64
	Lng          *float64
	RadiusMeters int  `gorm:"not null;default:5000"`
	IsActive     bool `gorm:"not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Store) TableName() string { return "stores" }

type Product struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	MerchantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Description  *string   `gorm:"type:text"`
	Category     *string   `gorm:"type:varchar(50)"`
	BasePrice    int64     `gorm:"not null"`
	ImageURL     *string   `gorm:"type:text"`
	IsActive     bool      `gorm:"not null"`
	DisplayOrder int       `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Product) TableName() string { return "products" }
