package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/internal/infrastructure/models"
)

// GameSessionRepository implements game session data operations
type GameSessionRepository struct {
	db *gorm.DB
}

func NewGameSessionRepository(db *gorm.DB) *GameSessionRepository {
	return &GameSessionRepository{db: db}
}

func (r *GameSessionRepository) Create(ctx context.Context, s *entities.GameSession) error {
	assignIdentity(&s.ID, &s.StartedAt)
	m := &models.GameSession{
		ID:         s.ID,
		ConsumerID: s.ConsumerID,
		MerchantID: s.MerchantID,
		GameType:   s.GameType,
		Status:     string(s.Status),
		StartedAt:  s.StartedAt.UTC(),
	}
	return translateError(GetDB(ctx, r.db).Create(m).Error)
}

func (r *GameSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.GameSession, error) {
	var m models.GameSession
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return &entities.GameSession{
		ID:           m.ID,
		ConsumerID:   m.ConsumerID,
		MerchantID:   m.MerchantID,
		GameType:     m.GameType,
		Status:       entities.GameStatus(m.Status),
		StepsCleared: m.StepsCleared,
		Success:      m.Success,
		RewardType:   null.StringFromPtr(m.RewardType),
		RewardValue:  m.RewardValue,
		IssueID:      m.IssueID,
		StartedAt:    m.StartedAt,
		FinishedAt:   null.TimeFromPtr(m.FinishedAt),
	}, nil
}

func (r *GameSessionRepository) Finish(ctx context.Context, s *entities.GameSession) (bool, error) {
	finishedAt := s.FinishedAt.Time
	if !s.FinishedAt.Valid {
		finishedAt = time.Now()
	}
	res := GetDB(ctx, r.db).Model(&models.GameSession{}).
		Where("id = ? AND status = ?", s.ID, string(entities.GamePlaying)).
		Updates(map[string]interface{}{
			"status":        string(entities.GameFinished),
			"steps_cleared": s.StepsCleared,
			"success":       s.Success,
			"reward_type":   s.RewardType.Ptr(),
			"reward_value":  s.RewardValue,
			"issue_id":      s.IssueID,
			"finished_at":   finishedAt.UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
