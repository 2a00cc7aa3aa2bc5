package repositories

import (
	"context"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// MerchantRepository defines merchant data operations
type MerchantRepository interface {
	Create(ctx context.Context, merchant *entities.Merchant) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Merchant, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// UpdateApproval moves a merchant from one approval status to another.
	// It reports false when the merchant is no longer in from.
	UpdateApproval(ctx context.Context, id uuid.UUID, from, to entities.ApprovalStatus, reason null.String) (bool, error)
	// List returns one page of merchants, newest first, plus the total match count
	List(ctx context.Context, status *entities.ApprovalStatus, page utils.PaginationParams) ([]*entities.Merchant, int64, error)
	CountByStatus(ctx context.Context) (map[entities.ApprovalStatus]int64, error)
	FirstApproved(ctx context.Context) (*entities.Merchant, error)
	AppendApprovalLog(ctx context.Context, log *entities.ApprovalLog) error
}
