package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/internal/infrastructure/models"
)

var fixedNow = time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	require.NoError(t, models.AutoMigrate(db), "migrate")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func seedMerchant(t *testing.T, db *gorm.DB, status entities.ApprovalStatus) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	require.NoError(t, db.Create(&models.Merchant{
		ID:             id,
		OwnerUserID:    uuid.New(),
		BusinessName:   "Cafe " + id.String()[:6],
		OwnerName:      "Kim",
		Phone:          "010-0000-0000",
		Slug:           "cafe-" + id.String()[:8],
		Category:       "cafe",
		ApprovalStatus: string(status),
		CreatedAt:      now,
		UpdatedAt:      now,
	}).Error)
	return id
}

func seedStore(t *testing.T, db *gorm.DB, merchantID uuid.UUID, lat, lng float64) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	require.NoError(t, db.Create(&models.Store{
		ID:           id,
		MerchantID:   merchantID,
		Name:         "Store " + id.String()[:6],
		Slug:         "store-" + id.String()[:8],
		Category:     "cafe",
		Lat:          &lat,
		Lng:          &lng,
		RadiusMeters: 5000,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}).Error)
	return id
}

func seedCoupon(t *testing.T, db *gorm.DB, merchantID uuid.UUID, storeID *uuid.UUID, mutate func(*models.Coupon)) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	m := &models.Coupon{
		ID:            id,
		MerchantID:    merchantID,
		StoreID:       storeID,
		Title:         "10% off",
		DiscountType:  string(entities.DiscountPercent),
		DiscountValue: 10,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if mutate != nil {
		mutate(m)
	}
	require.NoError(t, db.Create(m).Error)
	return id
}
