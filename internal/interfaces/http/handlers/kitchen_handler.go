package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/internal/interfaces/http/response"
)

type kitchenService interface {
	ListOrders(ctx context.Context, principal entities.Principal, storeID uuid.UUID, status string) ([]*entities.KitchenOrder, error)
	UpdateStatus(ctx context.Context, principal entities.Principal, input *entities.KitchenStatusInput) (*entities.KitchenOrder, error)
}

// KitchenHandler serves the kitchen display
type KitchenHandler struct {
	kitchenUsecase kitchenService
}

// NewKitchenHandler creates a new kitchen handler
func NewKitchenHandler(kitchenUsecase kitchenService) *KitchenHandler {
	return &KitchenHandler{kitchenUsecase: kitchenUsecase}
}

// ListOrders lists the tickets of a store
// GET /api/v1/merchant/kitchen?store_id=&status=
func (h *KitchenHandler) ListOrders(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	storeID, err := uuidQuery(c, "store_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	orders, err := h.kitchenUsecase.ListOrders(c.Request.Context(), p, storeID, c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// UpdateStatus moves a ticket along its lifecycle
// PUT /api/v1/merchant/kitchen
func (h *KitchenHandler) UpdateStatus(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.KitchenStatusInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	order, err := h.kitchenUsecase.UpdateStatus(c.Request.Context(), p, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"order": order})
}
