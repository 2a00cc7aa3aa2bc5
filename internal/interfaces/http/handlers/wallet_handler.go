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

type walletService interface {
	ConsumerTransaction(ctx context.Context, input *entities.WalletDeltaInput) (*entities.WalletDeltaResult, error)
	ConsumerBalance(ctx context.Context, consumerID uuid.UUID) (*entities.ConsumerBalance, error)
	MerchantOverview(ctx context.Context, merchantID uuid.UUID) (*entities.WalletOverview, error)
}

// WalletHandler handles wallet endpoints
type WalletHandler struct {
	walletUsecase walletService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletUsecase walletService) *WalletHandler {
	return &WalletHandler{walletUsecase: walletUsecase}
}

// Transaction applies a consumer point delta
// POST /api/v1/wallet/transaction
func (h *WalletHandler) Transaction(c *gin.Context) {
	var input entities.WalletDeltaInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.walletUsecase.ConsumerTransaction(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// MyBalance returns a consumer's point balance
// GET /api/v1/wallet/my-balance?consumer_id=
func (h *WalletHandler) MyBalance(c *gin.Context) {
	consumerID, err := uuidQuery(c, "consumer_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	balance, err := h.walletUsecase.ConsumerBalance(c.Request.Context(), consumerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, balance)
}

// MerchantWallet returns the caller's merchant wallet overview.
// Admins pass ?merchant_id= to look at any merchant.
// GET /api/v1/merchant/wallet
func (h *WalletHandler) MerchantWallet(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var merchantID uuid.UUID
	switch {
	case p.IsAdmin() && c.Query("merchant_id") != "":
		merchantID, err = uuidQuery(c, "merchant_id")
		if err != nil {
			response.Error(c, err)
			return
		}
	case p.MerchantID != nil:
		merchantID = *p.MerchantID
	default:
		response.Error(c, domainerrors.Forbidden("No merchant linked to this account"))
		return
	}

	overview, err := h.walletUsecase.MerchantOverview(c.Request.Context(), merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, overview)
}
