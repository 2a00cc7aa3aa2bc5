package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// GameStatus represents game session state
type GameStatus string

const (
	GamePlaying  GameStatus = "playing"
	GameFinished GameStatus = "finished"
)

// RewardType is what a finished game paid out
type RewardType string

const (
	RewardCoupon RewardType = "COUPON"
	RewardPoints RewardType = "POINTS"
	RewardNone   RewardType = "NONE"
)

// GameSession is one play of a mini-game
type GameSession struct {
	ID           uuid.UUID   `json:"id"`
	ConsumerID   uuid.UUID   `json:"consumer_id"`
	MerchantID   *uuid.UUID  `json:"merchant_id"`
	GameType     string      `json:"game_type"`
	Status       GameStatus  `json:"status"`
	StepsCleared int         `json:"steps_cleared"`
	Success      bool        `json:"success"`
	RewardType   null.String `json:"reward_type"`
	RewardValue  int64       `json:"reward_value"`
	IssueID      *uuid.UUID  `json:"issue_id"`
	StartedAt    time.Time   `json:"started_at"`
	FinishedAt   null.Time   `json:"finished_at"`
}

// StartGameInput is the game start request body
type StartGameInput struct {
	ConsumerID string `json:"consumer_id"`
	GameType   string `json:"game_type"`
	MerchantID string `json:"merchant_id"`
}

// FinishGameInput is the game finish request body
type FinishGameInput struct {
	SessionID    string `json:"session_id"`
	StepsCleared int    `json:"steps_cleared"`
	Success      bool   `json:"success"`
}

// GameReward is the answer to a finished game
type GameReward struct {
	SessionID   uuid.UUID  `json:"session_id"`
	Success     bool       `json:"success"`
	RewardType  RewardType `json:"reward_type"`
	RewardValue int64      `json:"reward_value"`
	CouponTitle string     `json:"coupon_title,omitempty"`
	IssueID     *uuid.UUID `json:"issue_id"`
}
