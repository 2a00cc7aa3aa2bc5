package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/internal/interfaces/http/response"
)

type paymentService interface {
	ListPackages(ctx context.Context) ([]*entities.TopupPackage, error)
	CreateTopup(ctx context.Context, principal entities.Principal, input *entities.CreateTopupInput) (*entities.TopupCheckout, error)
	ConfirmPayment(ctx context.Context, principal entities.Principal, input *entities.ConfirmPaymentInput) (*entities.PaymentConfirmation, error)
}

// PaymentHandler handles merchant point top-ups
type PaymentHandler struct {
	paymentUsecase paymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentUsecase paymentService) *PaymentHandler {
	return &PaymentHandler{paymentUsecase: paymentUsecase}
}

// ListPackages lists the active top-up packages
// GET /api/v1/payment/topup
func (h *PaymentHandler) ListPackages(c *gin.Context) {
	packages, err := h.paymentUsecase.ListPackages(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"packages": packages})
}

// CreateTopup starts a gateway checkout
// POST /api/v1/payment/topup
func (h *PaymentHandler) CreateTopup(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.CreateTopupInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	checkout, err := h.paymentUsecase.CreateTopup(c.Request.Context(), p, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, checkout)
}

// ConfirmPayment approves a checkout with the gateway and credits points
// POST /api/v1/payment/confirm
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.ConfirmPaymentInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	confirmation, err := h.paymentUsecase.ConfirmPayment(c.Request.Context(), p, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, confirmation)
}
