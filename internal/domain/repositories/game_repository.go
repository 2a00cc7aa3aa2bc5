package repositories

import (
	"context"

	"couponmap.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// GameSessionRepository defines game session data operations
type GameSessionRepository interface {
	Create(ctx context.Context, session *entities.GameSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.GameSession, error)
	// Finish stores the outcome of a playing session. It reports false when
	// the session was already finished.
	Finish(ctx context.Context, session *entities.GameSession) (bool, error)
}
