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

type fakeKitchenService struct {
	storeID uuid.UUID
	status  string
	input   *entities.KitchenStatusInput
}

func (f *fakeKitchenService) ListOrders(_ context.Context, _ entities.Principal, storeID uuid.UUID, status string) ([]*entities.KitchenOrder, error) {
	f.storeID, f.status = storeID, status
	return []*entities.KitchenOrder{{StoreID: storeID, Status: entities.KitchenNew}}, nil
}

func (f *fakeKitchenService) UpdateStatus(_ context.Context, _ entities.Principal, input *entities.KitchenStatusInput) (*entities.KitchenOrder, error) {
	f.input = input
	if input.Status == entities.KitchenNew {
		return nil, domainerrors.Conflict("cannot move order back to new")
	}
	return &entities.KitchenOrder{Status: input.Status}, nil
}

func TestKitchenHandler(t *testing.T) {
	merchantID := uuid.New()
	svc := &fakeKitchenService{}
	h := NewKitchenHandler(svc)
	r := newTestRouter(&entities.Principal{UserID: uuid.New(), Role: entities.UserRoleMerchant, MerchantID: &merchantID})
	r.GET("/kitchen", h.ListOrders)
	r.PUT("/kitchen", h.UpdateStatus)

	storeID := uuid.New()
	w := doJSON(r, http.MethodGet, "/kitchen?store_id="+storeID.String()+"&status=new", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, storeID, svc.storeID)
	assert.Equal(t, "new", svc.status)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = doJSON(r, http.MethodGet, "/kitchen", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	orderID := uuid.NewString()
	w = doJSON(r, http.MethodPut, "/kitchen", `{"order_id":"`+orderID+`","status":"preparing"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, orderID, svc.input.OrderID)
	assert.Contains(t, w.Body.String(), `"status":"preparing"`)

	w = doJSON(r, http.MethodPut, "/kitchen", `{"order_id":"`+orderID+`","status":"new"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
