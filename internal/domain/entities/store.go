package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"couponmap.backend/pkg/geo"
)

// Store is a physical shop owned by a merchant. Stores are deactivated, never deleted.
type Store struct {
	ID           uuid.UUID    `json:"id"`
	MerchantID   uuid.UUID    `json:"merchant_id"`
	Name         string       `json:"name"`
	Slug         string       `json:"slug"`
	Category     string       `json:"category"`
	Address      null.String  `json:"address"`
	Phone        null.String  `json:"phone"`
	Lat          null.Float64 `json:"lat"`
	Lng          null.Float64 `json:"lng"`
	RadiusMeters int          `json:"radius_meters"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Location returns the store coordinates, or nil when either is missing
func (s *Store) Location() *geo.Point {
	if !s.Lat.Valid || !s.Lng.Valid {
		return nil
	}
	return &geo.Point{Lat: s.Lat.Float64, Lng: s.Lng.Float64}
}

// Located adapts the store for geo.FilterByRadius
func (s *Store) Located() geo.Located {
	return geo.Located{Location: s.Location(), RadiusMeters: float64(s.RadiusMeters)}
}

// NearbyStore is a store annotated with its distance to the consumer
type NearbyStore struct {
	*Store
	Distance     *float64    `json:"distance"`
	DistanceText null.String `json:"distance_text"`
}

// StoreQuery filters store discovery
type StoreQuery struct {
	Origin   *geo.Point
	Category string
	Search   string
	Limit    int
}

// StoreUpdateInput is a partial store edit
type StoreUpdateInput struct {
	Name         *string  `json:"name"`
	Category     *string  `json:"category"`
	Address      *string  `json:"address"`
	Phone        *string  `json:"phone"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	RadiusMeters *int     `json:"radius_meters"`
	IsActive     *bool    `json:"is_active"`
}

// Product is a menu item of a merchant, sold in the merchant's stores
type Product struct {
	ID           uuid.UUID   `json:"id"`
	MerchantID   uuid.UUID   `json:"merchant_id"`
	Name         string      `json:"name"`
	Description  null.String `json:"description"`
	Category     null.String `json:"category"`
	BasePrice    int64       `json:"base_price"`
	ImageURL     null.String `json:"image_url"`
	IsActive     bool        `json:"is_active"`
	DisplayOrder int         `json:"display_order"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// CreateProductInput creates a menu item
type CreateProductInput struct {
	StoreID      string          `json:"store_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	BasePrice    int64           `json:"base_price"`
	ImageURL     string          `json:"image_url"`
	DisplayOrder int             `json:"display_order"`
	Extra        json.RawMessage `json:"extra,omitempty"`
}

// StoreMenu is the table-order menu of a store
type StoreMenu struct {
	Store      *Store     `json:"store"`
	Categories []string   `json:"categories"`
	Products   []*Product `json:"products"`
}

// SlugCheck is the result of a slug availability check
type SlugCheck struct {
	Slug       string      `json:"slug"`
	Available  bool        `json:"available"`
	Suggestion null.String `json:"suggestion"`
}
