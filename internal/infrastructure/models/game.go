package models

import (
	"time"

	"github.com/google/uuid"
)

type GameSession struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ConsumerID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	MerchantID   *uuid.UUID `gorm:"type:uuid"`
	GameType     string     `gorm:"type:varchar(50);not null"`
	Status       string     `gorm:"type:varchar(20);not null;default:'playing'"`
	StepsCleared int        `gorm:"not null;default:0"`
	Success      bool       `gorm:"not null"`
	RewardType   *string    `gorm:"type:varchar(20)"`
	RewardValue  int64      `gorm:"not null;default:0"`
	IssueID      *uuid.UUID `gorm:"type:uuid"`
	StartedAt    time.Time  `gorm:"not null"`
	FinishedAt   *time.Time
}

func (GameSession) TableName() string { return "game_sessions" }
