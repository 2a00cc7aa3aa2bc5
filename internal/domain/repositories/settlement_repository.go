package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"couponmap.backend/internal/domain/entities"
)

// SettlementRepository defines settlement data operations
type SettlementRepository interface {
	// Create inserts the settlement and its items
	Create(ctx context.Context, settlement *entities.Settlement) error
	// GetByID returns the settlement with its items
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Settlement, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, status *entities.SettlementStatus) ([]*entities.Settlement, error)
	// UpdateStatus moves a settlement whose status is one of from and applies
	// the payout details. It reports false when the status did not match.
	UpdateStatus(ctx context.Context, id uuid.UUID, from []entities.SettlementStatus, input *entities.UpdateSettlementInput, at time.Time) (bool, error)
}
