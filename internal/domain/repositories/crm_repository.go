package repositories

import (
	"context"
	"time"

	"couponmap.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// CustomerRepository defines CRM relationship data operations
type CustomerRepository interface {
	// RecordTouchpoint upserts the merchant/consumer row in one statement
	RecordTouchpoint(ctx context.Context, touchpoint entities.Touchpoint, at time.Time) error
	Get(ctx context.Context, merchantID, consumerID uuid.UUID) (*entities.MerchantCustomer, error)
}

// TransactionEventRepository defines audit event data operations
type TransactionEventRepository interface {
	Create(ctx context.Context, event *entities.TransactionEvent) error
}
