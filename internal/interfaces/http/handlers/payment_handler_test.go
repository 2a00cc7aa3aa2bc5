package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
)

type fakePaymentService struct {
	confirm    *entities.ConfirmPaymentInput
	confirmErr error
}

func (f *fakePaymentService) ListPackages(context.Context) ([]*entities.TopupPackage, error) {
	return []*entities.TopupPackage{{Name: "Starter", Amount: 10000, IsActive: true}}, nil
}

func (f *fakePaymentService) CreateTopup(_ context.Context, _ entities.Principal, input *entities.CreateTopupInput) (*entities.TopupCheckout, error) {
	return &entities.TopupCheckout{PaymentID: uuid.New(), PGOrderID: "TOPUP-1", Amount: input.CustomAmount}, nil
}

func (f *fakePaymentService) ConfirmPayment(_ context.Context, _ entities.Principal, input *entities.ConfirmPaymentInput) (*entities.PaymentConfirmation, error) {
	f.confirm = input
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return &entities.PaymentConfirmation{Amount: input.Amount, TotalCredit: input.Amount}, nil
}

func TestPaymentHandler(t *testing.T) {
	merchantID := uuid.New()
	svc := &fakePaymentService{}
	h := NewPaymentHandler(svc)
	r := newTestRouter(&entities.Principal{UserID: uuid.New(), Role: entities.UserRoleMerchant, MerchantID: &merchantID})
	r.GET("/topup", h.ListPackages)
	r.POST("/topup", h.CreateTopup)
	r.POST("/confirm", h.ConfirmPayment)

	w := doJSON(r, http.MethodGet, "/topup", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Starter")

	w = doJSON(r, http.MethodPost, "/topup", `{"custom_amount":30000}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"pg_order_id":"TOPUP-1"`)

	w = doJSON(r, http.MethodPost, "/confirm", `{"paymentKey":"pk_1","orderId":"TOPUP-1","amount":30000}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pk_1", svc.confirm.PaymentKey)
	assert.Equal(t, "TOPUP-1", svc.confirm.OrderID)
	assert.Equal(t, int64(30000), svc.confirm.Amount)

	svc.confirmErr = domainerrors.Wrap(http.StatusBadRequest, "amount mismatch", domainerrors.ErrPaymentFailed)
	w = doJSON(r, http.MethodPost, "/confirm", `{"paymentKey":"pk_1","orderId":"TOPUP-1","amount":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "amount mismatch")
}
