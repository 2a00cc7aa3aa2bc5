package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/internal/interfaces/http/response"
)

type settlementService interface {
	Create(ctx context.Context, principal entities.Principal, input *entities.CreateSettlementInput) (*entities.Settlement, error)
	List(ctx context.Context, principal entities.Principal, merchantID *uuid.UUID, status string) (*entities.SettlementList, error)
	Get(ctx context.Context, principal entities.Principal, id uuid.UUID) (*entities.Settlement, error)
	UpdateStatus(ctx context.Context, principal entities.Principal, id uuid.UUID, input *entities.UpdateSettlementInput) (*entities.Settlement, error)
}

// SettlementHandler handles merchant payouts
type SettlementHandler struct {
	settlementUsecase settlementService
}

// NewSettlementHandler creates a new settlement handler
func NewSettlementHandler(settlementUsecase settlementService) *SettlementHandler {
	return &SettlementHandler{settlementUsecase: settlementUsecase}
}

// List returns settlements, or one settlement with its items when
// settlement_id is given
// GET /api/v1/merchant/settlements?merchant_id=&status=&settlement_id=
func (h *SettlementHandler) List(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if strings.TrimSpace(c.Query("settlement_id")) != "" {
		id, err := uuidQuery(c, "settlement_id")
		if err != nil {
			response.Error(c, err)
			return
		}
		settlement, err := h.settlementUsecase.Get(c.Request.Context(), p, id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, settlement)
		return
	}

	var merchantID *uuid.UUID
	if strings.TrimSpace(c.Query("merchant_id")) != "" {
		id, err := uuidQuery(c, "merchant_id")
		if err != nil {
			response.Error(c, err)
			return
		}
		merchantID = &id
	}

	list, err := h.settlementUsecase.List(c.Request.Context(), p, merchantID, c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// Create settles a merchant's period
// POST /api/v1/admin/settlements
func (h *SettlementHandler) Create(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.CreateSettlementInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	settlement, err := h.settlementUsecase.Create(c.Request.Context(), p, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, settlement)
}

// UpdateStatus moves a settlement along the payout lifecycle
// PUT /api/v1/admin/settlements/:id
func (h *SettlementHandler) UpdateStatus(c *gin.Context) {
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
	var input entities.UpdateSettlementInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	settlement, err := h.settlementUsecase.UpdateStatus(c.Request.Context(), p, id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, settlement)
}
