package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
	"couponmap.backend/internal/domain/repositories"
	"couponmap.backend/pkg/geo"
	"couponmap.backend/pkg/logger"
	"couponmap.backend/pkg/redis"
	"couponmap.backend/pkg/utils"
)

// Slug kinds accepted by CheckSlug
const (
	SlugKindMerchant = "merchant"
	SlugKindStore    = "store"
)

const maxSlugSuffix = 100

// MenuCacheTTL bounds how stale a cached menu may be
const MenuCacheTTL = 5 * time.Minute

// MenuCacheKey is the cache key of a merchant's active products
func MenuCacheKey(merchantID uuid.UUID) string {
	return "menu:merchant:" + merchantID.String()
}

// StoreUsecase handles store discovery and menu maintenance
type StoreUsecase struct {
	storeRepo    repositories.StoreRepository
	productRepo  repositories.ProductRepository
	merchantRepo repositories.MerchantRepository
}

// NewStoreUsecase creates a new store usecase
func NewStoreUsecase(
	storeRepo repositories.StoreRepository,
	productRepo repositories.ProductRepository,
	merchantRepo repositories.MerchantRepository,
) *StoreUsecase {
	return &StoreUsecase{
		storeRepo:    storeRepo,
		productRepo:  productRepo,
		merchantRepo: merchantRepo,
	}
}

// ListNearbyStores returns active stores ordered by distance from the origin.
// Stores outside their own radius are dropped; stores without coordinates
// are kept with an unknown distance.
func (u *StoreUsecase) ListNearbyStores(ctx context.Context, query entities.StoreQuery) ([]*entities.NearbyStore, error) {
	if query.Origin != nil && query.Origin.Validate() != nil {
		return nil, domainerrors.BadRequest("invalid lat/lng")
	}
	query.Limit = utils.ClampLimit(query.Limit)
	query.Search = strings.TrimSpace(query.Search)

	candidates, err := u.storeRepo.ListCandidates(ctx, query, query.Limit*geo.OverFetchFactor)
	if err != nil {
		return nil, err
	}

	ranked := geo.FilterByRadius(query.Origin, candidates, func(s *entities.Store) geo.Located {
		return s.Located()
	})
	if len(ranked) > query.Limit {
		ranked = ranked[:query.Limit]
	}

	out := make([]*entities.NearbyStore, 0, len(ranked))
	for _, r := range ranked {
		ns := &entities.NearbyStore{Store: r.Item, Distance: r.DistanceMeters}
		if r.DistanceMeters != nil {
			ns.DistanceText = null.StringFrom(geo.FormatDistance(*r.DistanceMeters))
		}
		out = append(out, ns)
	}
	return out, nil
}

// GetStore returns an active store
func (u *StoreUsecase) GetStore(ctx context.Context, id uuid.UUID) (*entities.Store, error) {
	store, err := u.storeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Store not found")
		}
		return nil, err
	}
	if !store.IsActive {
		return nil, domainerrors.NotFound("Store not found")
	}
	return store, nil
}

// UpdateStore applies a partial edit to a store the caller manages
func (u *StoreUsecase) UpdateStore(ctx context.Context, principal entities.Principal, id uuid.UUID, input *entities.StoreUpdateInput) (*entities.Store, error) {
	store, err := u.managedStore(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domainerrors.BadRequest("name cannot be empty")
		}
		store.Name = name
	}
	if input.Category != nil {
		store.Category = strings.TrimSpace(*input.Category)
	}
	if input.Address != nil {
		store.Address = null.NewString(*input.Address, *input.Address != "")
	}
	if input.Phone != nil {
		store.Phone = null.NewString(*input.Phone, *input.Phone != "")
	}
	if input.Lat != nil || input.Lng != nil {
		if input.Lat == nil || input.Lng == nil {
			return nil, domainerrors.BadRequest("lat and lng must be set together")
		}
		if (geo.Point{Lat: *input.Lat, Lng: *input.Lng}).Validate() != nil {
			return nil, domainerrors.BadRequest("coordinates out of range")
		}
		store.Lat = null.Float64From(*input.Lat)
		store.Lng = null.Float64From(*input.Lng)
	}
	if input.RadiusMeters != nil {
		if *input.RadiusMeters <= 0 {
			return nil, domainerrors.BadRequest("radius_meters must be positive")
		}
		store.RadiusMeters = *input.RadiusMeters
	}
	if input.IsActive != nil {
		store.IsActive = *input.IsActive
	}

	if err := u.storeRepo.Update(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// ListProducts returns the active menu of a store grouped by category
func (u *StoreUsecase) ListProducts(ctx context.Context, storeID uuid.UUID) (*entities.StoreMenu, error) {
	store, err := u.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	products, err := u.activeProducts(ctx, store.MerchantID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, p := range products {
		if !p.Category.Valid || seen[p.Category.String] {
			continue
		}
		seen[p.Category.String] = true
		categories = append(categories, p.Category.String)
	}

	return &entities.StoreMenu{Store: store, Categories: categories, Products: products}, nil
}

// CreateProduct adds a menu item to the merchant owning the store
func (u *StoreUsecase) CreateProduct(ctx context.Context, principal entities.Principal, input *entities.CreateProductInput) (*entities.Product, error) {
	storeID, err := uuid.Parse(strings.TrimSpace(input.StoreID))
	if err != nil {
		return nil, domainerrors.BadRequest("valid store_id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domainerrors.BadRequest("name is required")
	}
	if input.BasePrice < 0 {
		return nil, domainerrors.BadRequest("base_price cannot be negative")
	}

	store, err := u.managedStore(ctx, principal, storeID)
	if err != nil {
		return nil, err
	}

	product := &entities.Product{
		MerchantID:   store.MerchantID,
		Name:         name,
		Description:  null.NewString(input.Description, input.Description != ""),
		Category:     null.NewString(input.Category, input.Category != ""),
		BasePrice:    input.BasePrice,
		ImageURL:     null.NewString(input.ImageURL, input.ImageURL != ""),
		IsActive:     true,
		DisplayOrder: input.DisplayOrder,
	}
	if err := u.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	if err := redis.Invalidate(ctx, MenuCacheKey(store.MerchantID)); err != nil {
		logger.Warn(ctx, "Failed to invalidate menu cache", zap.String("merchant_id", store.MerchantID.String()), zap.Error(err))
	}
	return product, nil
}

// activeProducts reads the merchant's menu through the cache.
// Cache failures fall back to the repository.
func (u *StoreUsecase) activeProducts(ctx context.Context, merchantID uuid.UUID) ([]*entities.Product, error) {
	key := MenuCacheKey(merchantID)
	var cached []*entities.Product
	hit, err := redis.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warn(ctx, "Menu cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		return cached, nil
	}

	products, err := u.productRepo.ListActiveByMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if err := redis.SetJSON(ctx, key, products, MenuCacheTTL); err != nil {
		logger.Warn(ctx, "Menu cache write failed", zap.String("key", key), zap.Error(err))
	}
	return products, nil
}

// CheckSlug reports whether a merchant or store slug is free and suggests
// the first free numbered variant when it is not.
func (u *StoreUsecase) CheckSlug(ctx context.Context, slug, kind string) (*entities.SlugCheck, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, domainerrors.BadRequest("slug is required")
	}
	exists := u.storeRepo.SlugExists
	switch kind {
	case "", SlugKindMerchant:
		exists = u.merchantRepo.SlugExists
	case SlugKindStore:
	default:
		return nil, domainerrors.BadRequest("type must be merchant or store")
	}

	slug = utils.GenerateSlug(slug)
	taken, err := exists(ctx, slug)
	if err != nil {
		return nil, err
	}
	result := &entities.SlugCheck{Slug: slug, Available: !taken}
	if !taken {
		return result, nil
	}

	for n := 1; n < maxSlugSuffix; n++ {
		candidate := fmt.Sprintf("%s-%d", slug, n)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if !taken {
			result.Suggestion = null.StringFrom(candidate)
			break
		}
	}
	return result, nil
}

func (u *StoreUsecase) managedStore(ctx context.Context, principal entities.Principal, id uuid.UUID) (*entities.Store, error) {
	store, err := u.storeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Store not found")
		}
		return nil, err
	}
	if !principal.CanManage(store.MerchantID) {
		return nil, domainerrors.Forbidden("Store belongs to another merchant")
	}
	return store, nil
}
