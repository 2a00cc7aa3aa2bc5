package repositories

import (
	"context"
	"time"

	"couponmap.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// PaymentRepository defines payment data operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *entities.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Payment, error)
	GetByPGOrderID(ctx context.Context, orderID string) (*entities.Payment, error)
	// MarkPaid moves a pending payment to paid. It reports false when the
	// payment was not pending.
	MarkPaid(ctx context.Context, id uuid.UUID, approval *entities.GatewayApproval) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, decline *entities.GatewayDecline) (bool, error)
	// ListPaidBetween returns a merchant's payments approved in [from, to]
	ListPaidBetween(ctx context.Context, merchantID uuid.UUID, from, to time.Time) ([]*entities.Payment, error)
	// ListRefundedBetween returns a merchant's payments refunded in [from, to]
	ListRefundedBetween(ctx context.Context, merchantID uuid.UUID, from, to time.Time) ([]*entities.Payment, error)
}

// TopupPackageRepository defines topup package data operations
type TopupPackageRepository interface {
	ListActive(ctx context.Context) ([]*entities.TopupPackage, error)
	GetActiveByID(ctx context.Context, id uuid.UUID) (*entities.TopupPackage, error)
}
