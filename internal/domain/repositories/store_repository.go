package repositories

import (
	"context"

	"couponmap.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// StoreRepository defines store data operations
type StoreRepository interface {
	Create(ctx context.Context, store *entities.Store) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Store, error)
	// ListCandidates returns up to fetch active stores matching the
	// category and search filters, before any distance filtering.
	ListCandidates(ctx context.Context, query entities.StoreQuery, fetch int) ([]*entities.Store, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]*entities.Store, error)
	Update(ctx context.Context, store *entities.Store) error
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// ProductRepository defines menu data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entities.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Product, error)
	ListActiveByMerchant(ctx context.Context, merchantID uuid.UUID) ([]*entities.Product, error)
}
