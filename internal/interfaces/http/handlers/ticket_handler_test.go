package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
)

type fakeTicketService struct {
	query       entities.EventQuery
	buyer       entities.Principal
	purchase    *entities.PurchaseTicketsInput
	purchaseErr error
	verdict     *entities.TicketVerification
	status      string
}

func (f *fakeTicketService) ListEvents(_ context.Context, query entities.EventQuery) (*entities.EventList, error) {
	f.query = query
	return &entities.EventList{Events: []*entities.Event{}}, nil
}

func (f *fakeTicketService) GetEvent(_ context.Context, id uuid.UUID) (*entities.Event, error) {
	return &entities.Event{ID: id}, nil
}

func (f *fakeTicketService) CreateEvent(context.Context, entities.Principal, *entities.CreateEventInput) (*entities.Event, error) {
	return &entities.Event{Status: entities.EventDraft}, nil
}

func (f *fakeTicketService) UpdateEventStatus(_ context.Context, _ entities.Principal, id uuid.UUID, input *entities.EventStatusInput) (*entities.Event, error) {
	return &entities.Event{ID: id, Status: input.Status}, nil
}

func (f *fakeTicketService) Purchase(_ context.Context, p entities.Principal, input *entities.PurchaseTicketsInput) (*entities.TicketPurchase, error) {
	f.buyer, f.purchase = p, input
	if f.purchaseErr != nil {
		return nil, f.purchaseErr
	}
	return &entities.TicketPurchase{Tickets: []*entities.Ticket{{}}, TotalAmount: 50000}, nil
}

func (f *fakeTicketService) Verify(context.Context, entities.Principal, *entities.VerifyTicketInput) (*entities.TicketVerification, error) {
	return f.verdict, nil
}

func (f *fakeTicketService) ListMyTickets(_ context.Context, _ entities.Principal, status string) ([]*entities.Ticket, error) {
	f.status = status
	return []*entities.Ticket{}, nil
}

func (f *fakeTicketService) GetTicket(_ context.Context, _ entities.Principal, id uuid.UUID) (*entities.Ticket, error) {
	return &entities.Ticket{ID: id}, nil
}

func TestTicketHandler_ListEvents(t *testing.T) {
	svc := &fakeTicketService{}
	h := NewTicketHandler(svc)
	r := newTestRouter(nil)
	r.GET("/events", h.ListEvents)
	r.GET("/events/:id", h.GetEvent)

	w := doJSON(r, http.MethodGet, "/events?status=upcoming&category=concert&featured=true&page=2&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entities.EventFilterUpcoming, svc.query.Status)
	assert.Equal(t, "concert", svc.query.Category)
	assert.True(t, svc.query.Featured)
	assert.Equal(t, 2, svc.query.Page.Page)
	assert.Equal(t, 5, svc.query.Page.Limit)

	w = doJSON(r, http.MethodGet, "/events?page=x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/events/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTicketHandler_Purchase(t *testing.T) {
	svc := &fakeTicketService{}
	h := NewTicketHandler(svc)
	buyer := entities.Principal{UserID: uuid.New(), Role: entities.UserRoleConsumer}
	r := newTestRouter(&buyer)
	r.POST("/tickets", h.Purchase)

	w := doJSON(r, http.MethodPost, "/tickets", `{"event_id":"e","ticket_type_id":"t","quantity":2,"buyer_name":"Lee","buyer_phone":"010"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, buyer.UserID, svc.buyer.UserID)
	assert.Equal(t, 2, svc.purchase.Quantity)

	svc.purchaseErr = domainerrors.Wrap(http.StatusBadRequest, "Not enough tickets left", domainerrors.ErrSoldOut)
	w = doJSON(r, http.MethodPost, "/tickets", `{"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Not enough tickets left")

	w = doJSON(r, http.MethodPost, "/tickets", `{"quantity":"two"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTicketHandler_RequiresPrincipal(t *testing.T) {
	h := NewTicketHandler(&fakeTicketService{})
	r := newTestRouter(nil)
	r.POST("/tickets", h.Purchase)
	r.GET("/tickets/my", h.MyTickets)
	r.POST("/verify", h.Verify)

	for _, req := range []struct{ method, path, body string }{
		{http.MethodPost, "/tickets", `{}`},
		{http.MethodGet, "/tickets/my", ""},
		{http.MethodPost, "/verify", `{}`},
	} {
		w := doJSON(r, req.method, req.path, req.body)
		assert.Equal(t, http.StatusUnauthorized, w.Code, req.path)
	}
}

func TestTicketHandler_VerifyRejectionIsOK(t *testing.T) {
	svc := &fakeTicketService{verdict: &entities.TicketVerification{
		Verification: entities.Verification{Valid: false, Reason: entities.VerifyAlreadyUsed},
	}}
	h := NewTicketHandler(svc)
	merchantID := uuid.New()
	r := newTestRouter(&entities.Principal{UserID: uuid.New(), Role: entities.UserRoleMerchant, MerchantID: &merchantID})
	r.POST("/verify", h.Verify)

	w := doJSON(r, http.MethodPost, "/verify", `{"qr_code":"ABC","event_id":"`+uuid.NewString()+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Verification struct {
			Valid  bool   `json:"valid"`
			Reason string `json:"reason"`
		} `json:"verification"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Verification.Valid)
	assert.Equal(t, "ALREADY_USED", body.Verification.Reason)
}

func TestTicketHandler_EventManagement(t *testing.T) {
	svc := &fakeTicketService{}
	h := NewTicketHandler(svc)
	merchantID := uuid.New()
	r := newTestRouter(&entities.Principal{UserID: uuid.New(), Role: entities.UserRoleMerchant, MerchantID: &merchantID})
	r.POST("/events", h.CreateEvent)
	r.PUT("/events/:id/status", h.UpdateEventStatus)
	r.GET("/tickets/my", h.MyTickets)

	w := doJSON(r, http.MethodPost, "/events", `{"title":"Jazz Night","venue_name":"Hall A","event_date":"2025-04-01T19:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPut, "/events/"+uuid.NewString()+"/status", `{"status":"on_sale"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"on_sale"`)

	w = doJSON(r, http.MethodGet, "/tickets/my?status=used", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "used", svc.status)
	assert.Contains(t, w.Body.String(), `"tickets":[]`)
}
