package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/internal/infrastructure/models"
)

// StoreRepository implements store data operations
type StoreRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

func (r *StoreRepository) Create(ctx context.Context, store *entities.Store) error {
	assignIdentity(&store.ID, &store.CreatedAt, &store.UpdatedAt)
	return translateError(GetDB(ctx, r.db).Create(storeModel(store)).Error)
}

func (r *StoreRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Store, error) {
	var m models.Store
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return storeEntity(&m), nil
}

func (r *StoreRepository) ListCandidates(ctx context.Context, query entities.StoreQuery, fetch int) ([]*entities.Store, error) {
	q := GetDB(ctx, r.db).Model(&models.Store{}).Where("is_active = ?", true)
	if query.Category != "" {
		q = q.Where("category = ?", query.Category)
	}
	if s := strings.TrimSpace(query.Search); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	var ms []models.Store
	if err := q.Order("created_at DESC").Limit(fetch).Find(&ms).Error; err != nil {
		return nil, err
	}
	return storeEntities(ms), nil
}

func (r *StoreRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]*entities.Store, error) {
	var ms []models.Store
	if err := GetDB(ctx, r.db).Where("merchant_id = ?", merchantID).Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return storeEntities(ms), nil
}

// Update writes every mutable column, including false and null values
func (r *StoreRepository) Update(ctx context.Context, store *entities.Store) error {
	res := GetDB(ctx, r.db).Model(&models.Store{}).
		Where("id = ?", store.ID).
		Updates(map[string]interface{}{
			"name":          store.Name,
			"category":      store.Category,
			"address":       store.Address.Ptr(),
			"phone":         store.Phone.Ptr(),
			"lat":           store.Lat.Ptr(),
			"lng":           store.Lng.Ptr(),
			"radius_meters": store.RadiusMeters,
			"is_active":     store.IsActive,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *StoreRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&models.Store{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func storeModel(s *entities.Store) *models.Store {
	return &models.Store{
		ID:           s.ID,
		MerchantID:   s.MerchantID,
		Name:         s.Name,
		Slug:         s.Slug,
		Category:     s.Category,
		Address:      s.Address.Ptr(),
		Phone:        s.Phone.Ptr(),
		Lat:          s.Lat.Ptr(),
		Lng:          s.Lng.Ptr(),
		RadiusMeters: s.RadiusMeters,
		IsActive:     s.IsActive,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func storeEntity(m *models.Store) *entities.Store {
	return &entities.Store{
		ID:           m.ID,
		MerchantID:   m.MerchantID,
		Name:         m.Name,
		Slug:         m.Slug,
		Category:     m.Category,
		Address:      null.StringFromPtr(m.Address),
		Phone:        null.StringFromPtr(m.Phone),
		Lat:          null.Float64FromPtr(m.Lat),
		Lng:          null.Float64FromPtr(m.Lng),
		RadiusMeters: m.RadiusMeters,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func storeEntities(ms []models.Store) []*entities.Store {
	out := make([]*entities.Store, 0, len(ms))
	for i := range ms {
		out = append(out, storeEntity(&ms[i]))
	}
	return out
}

// ProductRepository implements menu data operations
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *entities.Product) error {
	assignIdentity(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	m := &models.Product{
		ID:           p.ID,
		MerchantID:   p.MerchantID,
		Name:         p.Name,
		Description:  p.Description.Ptr(),
		Category:     p.Category.Ptr(),
		BasePrice:    p.BasePrice,
		ImageURL:     p.ImageURL.Ptr(),
		IsActive:     p.IsActive,
		DisplayOrder: p.DisplayOrder,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	return translateError(GetDB(ctx, r.db).Create(m).Error)
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Product, error) {
	var m models.Product
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return productEntity(&m), nil
}

func (r *ProductRepository) ListActiveByMerchant(ctx context.Context, merchantID uuid.UUID) ([]*entities.Product, error) {
	var ms []models.Product
	if err := GetDB(ctx, r.db).
		Where("merchant_id = ? AND is_active = ?", merchantID, true).
		Order("display_order ASC, name ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Product, 0, len(ms))
	for i := range ms {
		out = append(out, productEntity(&ms[i]))
	}
	return out, nil
}

func productEntity(m *models.Product) *entities.Product {
	return &entities.Product{
		ID:           m.ID,
		MerchantID:   m.MerchantID,
		Name:         m.Name,
		Description:  null.StringFromPtr(m.Description),
		Category:     null.StringFromPtr(m.Category),
		BasePrice:    m.BasePrice,
		ImageURL:     null.StringFromPtr(m.ImageURL),
		IsActive:     m.IsActive,
		DisplayOrder: m.DisplayOrder,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
