package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
	"couponmap.backend/internal/interfaces/http/response"
)

type storeService interface {
	ListNearbyStores(ctx context.Context, query entities.StoreQuery) ([]*entities.NearbyStore, error)
	GetStore(ctx context.Context, id uuid.UUID) (*entities.Store, error)
	UpdateStore(ctx context.Context, principal entities.Principal, id uuid.UUID, input *entities.StoreUpdateInput) (*entities.Store, error)
	ListProducts(ctx context.Context, storeID uuid.UUID) (*entities.StoreMenu, error)
	CreateProduct(ctx context.Context, principal entities.Principal, input *entities.CreateProductInput) (*entities.Product, error)
	CheckSlug(ctx context.Context, slug, kind string) (*entities.SlugCheck, error)
}

// StoreHandler handles store discovery and menu endpoints
type StoreHandler struct {
	storeUsecase storeService
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(storeUsecase storeService) *StoreHandler {
	return &StoreHandler{storeUsecase: storeUsecase}
}

// ListNearbyStores lists stores around the consumer
// GET /api/v1/consumer/stores?lat=&lng=&category=&search=&limit=
func (h *StoreHandler) ListNearbyStores(c *gin.Context) {
	origin, err := originQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		response.Error(c, err)
		return
	}

	query := entities.StoreQuery{
		Origin:   origin,
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Limit:    limit,
	}

	stores, err := h.storeUsecase.ListNearbyStores(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stores": stores, "count": len(stores)})
}

// GetStore returns one active store
// GET /api/v1/consumer/stores/:id
func (h *StoreHandler) GetStore(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	store, err := h.storeUsecase.GetStore(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"store": store})
}

// UpdateStore edits a store of the caller's merchant
// PUT /api/v1/merchant/stores/:id
func (h *StoreHandler) UpdateStore(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.StoreUpdateInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	store, err := h.storeUsecase.UpdateStore(c.Request.Context(), p, id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"store": store})
}

// ListProducts returns the menu of a store
// GET /api/v1/stores/:storeId/products
func (h *StoreHandler) ListProducts(c *gin.Context) {
	id, err := uuidParam(c, "storeId")
	if err != nil {
		response.Error(c, err)
		return
	}

	menu, err := h.storeUsecase.ListProducts(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, menu)
}

// CreateProduct adds a menu item
// POST /api/v1/merchant/products
func (h *StoreHandler) CreateProduct(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.CreateProductInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	product, err := h.storeUsecase.CreateProduct(c.Request.Context(), p, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"product": product})
}

// CheckSlug reports slug availability
// GET /api/v1/slug/check?slug=&type=merchant|store
func (h *StoreHandler) CheckSlug(c *gin.Context) {
	slug := c.Query("slug")
	if slug == "" {
		response.Error(c, domainerrors.BadRequest("slug is required"))
		return
	}

	check, err := h.storeUsecase.CheckSlug(c.Request.Context(), slug, c.Query("type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, check)
}
