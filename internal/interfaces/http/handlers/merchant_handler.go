package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/internal/interfaces/http/response"
)

type merchantService interface {
	Register(ctx context.Context, input *entities.MerchantRegisterInput) (*entities.MerchantRegistration, error)
	ListApprovals(ctx context.Context, status string, page, limit int) (*entities.ApprovalList, error)
	ApplyApprovalAction(ctx context.Context, admin entities.Principal, input *entities.ApprovalActionInput) (*entities.Merchant, error)
	MerchantStats(ctx context.Context, principal entities.Principal, period string) (*entities.MerchantStats, error)
}

// MerchantHandler handles merchant onboarding and admin approvals
type MerchantHandler struct {
	merchantUsecase merchantService
}

// NewMerchantHandler creates a new merchant handler
func NewMerchantHandler(merchantUsecase merchantService) *MerchantHandler {
	return &MerchantHandler{merchantUsecase: merchantUsecase}
}

// Register signs up a merchant with its first store
// POST /api/v1/merchant/register
func (h *MerchantHandler) Register(c *gin.Context) {
	var input entities.MerchantRegisterInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	registration, err := h.merchantUsecase.Register(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, registration)
}

// Stats returns the merchant dashboard numbers
// GET /api/v1/merchant/stats?period=today|week|month
func (h *MerchantHandler) Stats(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	stats, err := h.merchantUsecase.MerchantStats(c.Request.Context(), p, c.Query("period"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// ListApprovals lists merchants by approval status
// GET /api/v1/admin/approvals?status=&page=&limit=
func (h *MerchantHandler) ListApprovals(c *gin.Context) {
	page, err := intQuery(c, "page")
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		response.Error(c, err)
		return
	}

	list, err := h.merchantUsecase.ListApprovals(c.Request.Context(), c.Query("status"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// ApplyApprovalAction approves, rejects or suspends a merchant
// POST /api/v1/admin/approvals
func (h *MerchantHandler) ApplyApprovalAction(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.ApprovalActionInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	merchant, err := h.merchantUsecase.ApplyApprovalAction(c.Request.Context(), p, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"merchant": merchant})
}
