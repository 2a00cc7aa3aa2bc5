package usecases_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
	"couponmap.backend/internal/usecases"
	"couponmap.backend/pkg/utils"
)

type ticketFixture struct {
	uow        *MockUnitOfWork
	eventRepo  *MockEventRepository
	typeRepo   *MockTicketTypeRepository
	ticketRepo *MockTicketRepository
	customers  *MockCustomerRepository
	events     *MockTransactionEventRepository
	analytics  *MockAnalyticsPublisher
	uc         *usecases.TicketUsecase
}

func newTicketFixture() *ticketFixture {
	f := &ticketFixture{
		uow:        newMockUoW(),
		eventRepo:  new(MockEventRepository),
		typeRepo:   new(MockTicketTypeRepository),
		ticketRepo: new(MockTicketRepository),
		customers:  new(MockCustomerRepository),
		events:     new(MockTransactionEventRepository),
		analytics:  new(MockAnalyticsPublisher),
	}
	effects := usecases.NewSideEffects(inlineRunner{}, f.analytics, nil, f.customers, f.events)
	f.uc = usecases.NewTicketUsecase(f.uow, f.eventRepo, f.typeRepo, f.ticketRepo, effects)
	f.uc.SetClock(func() time.Time { return fixedNow })
	return f
}

func onSaleEvent(merchantID uuid.UUID, date time.Time) (*entities.Event, *entities.TicketType) {
	eventID := uuid.New()
	vip := &entities.TicketType{ID: uuid.New(), EventID: eventID, Name: "VIP", Price: 50000, TotalQuantity: 100, MaxPerOrder: 4}
	return &entities.Event{
		ID:          eventID,
		MerchantID:  merchantID,
		Title:       "Jazz Night",
		EventDate:   date,
		Status:      entities.EventOnSale,
		TicketTypes: []*entities.TicketType{vip},
	}, vip
}

func consumerPrincipal() entities.Principal {
	return entities.Principal{UserID: uuid.New(), Role: entities.UserRoleConsumer}
}

func TestTicketUsecase_ListEvents_DefaultsToOnSale(t *testing.T) {
	f := newTicketFixture()
	want := entities.EventQuery{Status: string(entities.EventOnSale), Page: utils.PaginationParams{Page: 1, Limit: utils.DefaultLimit}}
	f.eventRepo.On("List", mock.Anything, want, fixedNow).Return([]*entities.Event{}, int64(0), nil).Once()

	list, err := f.uc.ListEvents(context.Background(), entities.EventQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Pagination.Page)

	_, err = f.uc.ListEvents(context.Background(), entities.EventQuery{Status: string(entities.EventDraft)})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput, "drafts are private")
	f.eventRepo.AssertExpectations(t)
}

func TestTicketUsecase_GetEvent_HidesDrafts(t *testing.T) {
	f := newTicketFixture()
	event, _ := onSaleEvent(uuid.New(), fixedNow.Add(72*time.Hour))
	event.Status = entities.EventDraft
	f.eventRepo.On("GetByID", mock.Anything, event.ID).Return(event, nil)

	_, err := f.uc.GetEvent(context.Background(), event.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestTicketUsecase_CreateEvent(t *testing.T) {
	f := newTicketFixture()
	merchantID := uuid.New()
	date := fixedNow.Add(14 * 24 * time.Hour)

	f.eventRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *entities.Event) bool {
		return e.MerchantID == merchantID && e.Status == entities.EventDraft &&
			e.Category == entities.DefaultEventCategory && len(e.TicketTypes) == 2
	})).Return(nil).Once()

	event, err := f.uc.CreateEvent(context.Background(), merchantPrincipal(merchantID), &entities.CreateEventInput{
		Title:     " Jazz Night ",
		VenueName: "Hall A",
		EventDate: &date,
		TicketTypes: []entities.TicketTypeInput{
			{Name: "VIP", Price: 50000, TotalQuantity: 50},
			{Name: "General", Price: 20000, TotalQuantity: 200},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Jazz Night", event.Title)
	f.eventRepo.AssertExpectations(t)
}

func TestTicketUsecase_CreateEvent_Validation(t *testing.T) {
	f := newTicketFixture()
	p := merchantPrincipal(uuid.New())
	date := fixedNow.Add(24 * time.Hour)
	before := date.Add(-time.Hour)
	types := []entities.TicketTypeInput{{Name: "VIP", Price: 1000, TotalQuantity: 10}}

	cases := []*entities.CreateEventInput{
		{Title: "", VenueName: "Hall", EventDate: &date, TicketTypes: types},
		{Title: "Show", VenueName: "Hall", TicketTypes: types},
		{Title: "Show", VenueName: "Hall", EventDate: &date, EventEndDate: &before, TicketTypes: types},
		{Title: "Show", VenueName: "Hall", EventDate: &date},
		{Title: "Show", VenueName: "Hall", EventDate: &date, TicketTypes: []entities.TicketTypeInput{{Name: "VIP", Price: 1000}}},
		{Title: "Show", VenueName: "Hall", EventDate: &date, TicketTypes: []entities.TicketTypeInput{{Name: "VIP", Price: -1, TotalQuantity: 1}}},
	}
	for _, in := range cases {
		_, err := f.uc.CreateEvent(context.Background(), p, in)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	}

	_, err := f.uc.CreateEvent(context.Background(), consumerPrincipal(), &entities.CreateEventInput{})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	f.eventRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTicketUsecase_UpdateEventStatus(t *testing.T) {
	f := newTicketFixture()
	merchantID := uuid.New()
	event, _ := onSaleEvent(merchantID, fixedNow.Add(72*time.Hour))
	event.Status = entities.EventDraft

	f.eventRepo.On("GetByID", mock.Anything, event.ID).Return(event, nil)
	f.eventRepo.On("UpdateStatus", mock.Anything, event.ID, mock.Anything, entities.EventOnSale).Return(true, nil).Once()
	_, err := f.uc.UpdateEventStatus(context.Background(), merchantPrincipal(merchantID), event.ID, &entities.EventStatusInput{Status: entities.EventOnSale})
	require.NoError(t, err)

	f.eventRepo.On("UpdateStatus", mock.Anything, event.ID, mock.Anything, entities.EventClosed).Return(false, nil).Once()
	_, err = f.uc.UpdateEventStatus(context.Background(), merchantPrincipal(merchantID), event.ID, &entities.EventStatusInput{Status: entities.EventClosed})
	assert.ErrorIs(t, err, domainerrors.ErrConflict)

	_, err = f.uc.UpdateEventStatus(context.Background(), merchantPrincipal(uuid.New()), event.ID, &entities.EventStatusInput{Status: entities.EventCancelled})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = f.uc.UpdateEventStatus(context.Background(), merchantPrincipal(merchantID), event.ID, &entities.EventStatusInput{Status: entities.EventDraft})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestTicketUsecase_Purchase(t *testing.T) {
	f := newTicketFixture()
	merchantID := uuid.New()
	event, vip := onSaleEvent(merchantID, fixedNow.Add(72*time.Hour))
	buyer := consumerPrincipal()

	f.eventRepo.On("GetByID", mock.Anything, event.ID).Return(event, nil)
	f.typeRepo.On("GetByID", mock.Anything, vip.ID).Return(vip, nil)
	f.typeRepo.On("Sell", mock.Anything, vip.ID, 2).Return(int64(12), true, nil).Once()
	f.ticketRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*entities.Ticket")).Return(nil).Once()
	f.eventRepo.On("MarkSoldOutIfExhausted", mock.Anything, event.ID).Return(false, nil).Once()
	f.customers.On("RecordTouchpoint", mock.Anything, entities.Touchpoint{
		MerchantID: merchantID,
		ConsumerID: buyer.UserID,
		Type:       entities.TouchpointTicketBooking,
		Amount:     100000,
	}, mock.AnythingOfType("time.Time")).Return(nil).Once()
	f.events.On("Create", mock.Anything, mock.MatchedBy(func(e *entities.TransactionEvent) bool {
		return e.EventType == entities.EventTicketPurchased && e.Amount == 100000
	})).Return(nil).Once()
	f.analytics.On("Publish", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.Purchase(context.Background(), buyer, &entities.PurchaseTicketsInput{
		EventID:      event.ID.String(),
		TicketTypeID: vip.ID.String(),
		Quantity:     2,
		BuyerName:    "Lee",
		BuyerPhone:   "010-1234-5678",
	})
	require.NoError(t, err)
	require.Len(t, out.Tickets, 2)
	assert.EqualValues(t, 100000, out.TotalAmount)
	assert.Equal(t, "TKT-20250314-0011", out.Tickets[0].TicketNumber)
	assert.Equal(t, "TKT-20250314-0012", out.Tickets[1].TicketNumber)
	qr := regexp.MustCompile(`^[0-9A-F]{32}$`)
	for _, ticket := range out.Tickets {
		assert.Regexp(t, qr, ticket.QRCode)
		assert.Equal(t, buyer.UserID, *ticket.UserID)
		assert.Equal(t, entities.TicketIssued, ticket.Status)
	}
	assert.NotEqual(t, out.Tickets[0].QRCode, out.Tickets[1].QRCode)
	f.customers.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestTicketUsecase_Purchase_SoldOut(t *testing.T) {
	f := newTicketFixture()
	event, vip := onSaleEvent(uuid.New(), fixedNow.Add(72*time.Hour))

	f.eventRepo.On("GetByID", mock.Anything, event.ID).Return(event, nil)
	f.typeRepo.On("GetByID", mock.Anything, vip.ID).Return(vip, nil)
	f.typeRepo.On("Sell", mock.Anything, vip.ID, 3).Return(int64(0), false, nil).Once()

	_, err := f.uc.Purchase(context.Background(), consumerPrincipal(), &entities.PurchaseTicketsInput{
		EventID: event.ID.String(), TicketTypeID: vip.ID.String(), Quantity: 3, BuyerName: "Lee", BuyerPhone: "010",
	})
	require.ErrorIs(t, err, domainerrors.ErrSoldOut)
	appErr, ok := domainerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Not enough tickets left", appErr.Message)
	f.ticketRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestTicketUsecase_Purchase_Rejections(t *testing.T) {
	merchantID := uuid.New()
	valid := func(event *entities.Event, tt *entities.TicketType) *entities.PurchaseTicketsInput {
		return &entities.PurchaseTicketsInput{
			EventID: event.ID.String(), TicketTypeID: tt.ID.String(), Quantity: 1, BuyerName: "Lee", BuyerPhone: "010",
		}
	}
	cases := []struct {
		name   string
		mutate func(*entities.Event, *entities.TicketType, *entities.PurchaseTicketsInput)
		want   error
	}{
		{"zero quantity", func(_ *entities.Event, _ *entities.TicketType, in *entities.PurchaseTicketsInput) { in.Quantity = 0 }, domainerrors.ErrInvalidInput},
		{"over order limit", func(_ *entities.Event, _ *entities.TicketType, in *entities.PurchaseTicketsInput) { in.Quantity = 5 }, domainerrors.ErrInvalidInput},
		{"missing buyer", func(_ *entities.Event, _ *entities.TicketType, in *entities.PurchaseTicketsInput) { in.BuyerPhone = " " }, domainerrors.ErrInvalidInput},
		{"draft event", func(e *entities.Event, _ *entities.TicketType, _ *entities.PurchaseTicketsInput) { e.Status = entities.EventDraft }, domainerrors.ErrConflict},
		{"started event", func(e *entities.Event, _ *entities.TicketType, _ *entities.PurchaseTicketsInput) { e.EventDate = fixedNow }, domainerrors.ErrExpired},
		{"type of another event", func(_ *entities.Event, tt *entities.TicketType, _ *entities.PurchaseTicketsInput) { tt.EventID = uuid.New() }, domainerrors.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newTicketFixture()
			event, vip := onSaleEvent(merchantID, fixedNow.Add(72*time.Hour))
			in := valid(event, vip)
			tc.mutate(event, vip, in)
			f.eventRepo.On("GetByID", mock.Anything, event.ID).Return(event, nil)
			f.typeRepo.On("GetByID", mock.Anything, vip.ID).Return(vip, nil)

			_, err := f.uc.Purchase(context.Background(), consumerPrincipal(), in)
			assert.ErrorIs(t, err, tc.want)
			f.typeRepo.AssertNotCalled(t, "Sell", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func issuedTicket(event *entities.Event, tt *entities.TicketType) *entities.Ticket {
	owner := uuid.New()
	return &entities.Ticket{
		ID:           uuid.New(),
		EventID:      event.ID,
		TicketTypeID: tt.ID,
		UserID:       &owner,
		BuyerName:    "Lee",
		TicketNumber: "TKT-20250314-0001",
		QRCode:       "0123456789ABCDEF0123456789ABCDEF",
		Price:        tt.Price,
		Status:       entities.TicketIssued,
	}
}

func TestTicketUsecase_Verify_Admits(t *testing.T) {
	f := newTicketFixture()
	merchantID := uuid.New()
	event, vip := onSaleEvent(merchantID, fixedNow.Add(30*time.Hour))
	ticket := issuedTicket(event, vip)

	f.eventRepo.On("GetByID", mock.Anything, event.ID).Return(event, nil)
	f.ticketRepo.On("GetByQRCode", mock.Anything, ticket.QRCode).Return(ticket, nil)
	f.ticketRepo.On("MarkUsed", mock.Anything, ticket.ID, fixedNow).Return(true, nil).Once()
	f.events.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.analytics.On("Publish", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.Verify(context.Background(), merchantPrincipal(merchantID), &entities.VerifyTicketInput{
		QRCode: ticket.QRCode, EventID: event.ID.String(),
	})
	require.NoError(t, err)
	assert.True(t, out.Verification.Valid)
	assert.Equal(t, entities.VerifyOK, out.Verification.Reason)
	assert.Equal(t, "VIP", out.Ticket.TicketType)
	assert.Equal(t, null.TimeFrom(fixedNow), out.Ticket.UsedAt)
}

func TestTicketUsecase_Verify_Reasons(t *testing.T) {
	merchantID := uuid.New()
	usedAt := fixedNow.Add(-time.Hour)
	cases := []struct {
		name   string
		setup  func(f *ticketFixture, event *entities.Event, ticket *entities.Ticket)
		reason entities.VerificationReason
	}{
		{"unknown code", func(f *ticketFixture, _ *entities.Event, ticket *entities.Ticket) {
			f.ticketRepo.On("GetByQRCode", mock.Anything, ticket.QRCode).Return(nil, domainerrors.ErrNotFound)
		}, entities.VerifyTicketNotFound},
		{"other event", func(f *ticketFixture, _ *entities.Event, ticket *entities.Ticket) {
			ticket.EventID = uuid.New()
			f.ticketRepo.On("GetByQRCode", mock.Anything, ticket.QRCode).Return(ticket, nil)
		}, entities.VerifyWrongEvent},
		{"already used", func(f *ticketFixture, _ *entities.Event, ticket *entities.Ticket) {
			ticket.Status = entities.TicketUsed
			ticket.UsedAt = null.TimeFrom(usedAt)
			f.ticketRepo.On("GetByQRCode", mock.Anything, ticket.QRCode).Return(ticket, nil)
		}, entities.VerifyAlreadyUsed},
		{"refunded", func(f *ticketFixture, _ *entities.Event, ticket *entities.Ticket) {
			ticket.Status = entities.TicketRefunded
			f.ticketRepo.On("GetByQRCode", mock.Anything, ticket.QRCode).Return(ticket, nil)
		}, entities.VerifyCancelled},
		{"too early", func(f *ticketFixture, event *entities.Event, ticket *entities.Ticket) {
			event.EventDate = fixedNow.Add(72 * time.Hour)
			f.ticketRepo.On("GetByQRCode", mock.Anything, ticket.QRCode).Return(ticket, nil)
		}, entities.VerifyNotYet},
		{"lost the race", func(f *ticketFixture, _ *entities.Event, ticket *entities.Ticket) {
			f.ticketRepo.On("GetByQRCode", mock.Anything, ticket.QRCode).Return(ticket, nil)
			f.ticketRepo.On("MarkUsed", mock.Anything, ticket.ID, fixedNow).Return(false, nil)
			used := *ticket
			used.Status = entities.TicketUsed
			used.UsedAt = null.TimeFrom(usedAt)
			f.ticketRepo.On("GetByID", mock.Anything, ticket.ID).Return(&used, nil)
		}, entities.VerifyAlreadyUsed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newTicketFixture()
			event, vip := onSaleEvent(merchantID, fixedNow.Add(2*time.Hour))
			ticket := issuedTicket(event, vip)
			tc.setup(f, event, ticket)
			f.eventRepo.On("GetByID", mock.Anything, event.ID).Return(event, nil)

			out, err := f.uc.Verify(context.Background(), merchantPrincipal(merchantID), &entities.VerifyTicketInput{
				QRCode: ticket.QRCode, EventID: event.ID.String(),
			})
			require.NoError(t, err)
			assert.False(t, out.Verification.Valid)
			assert.Equal(t, tc.reason, out.Verification.Reason)
			if tc.reason == entities.VerifyAlreadyUsed {
				assert.Equal(t, null.TimeFrom(usedAt), out.Verification.UsedAt)
			}
			if tc.reason == entities.VerifyNotYet {
				assert.True(t, out.Verification.EventDate.Valid)
			}
			f.events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestTicketUsecase_Verify_OtherMerchant(t *testing.T) {
	f := newTicketFixture()
	event, _ := onSaleEvent(uuid.New(), fixedNow.Add(2*time.Hour))
	f.eventRepo.On("GetByID", mock.Anything, event.ID).Return(event, nil)

	_, err := f.uc.Verify(context.Background(), merchantPrincipal(uuid.New()), &entities.VerifyTicketInput{
		QRCode: "ABC", EventID: event.ID.String(),
	})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	f.ticketRepo.AssertNotCalled(t, "GetByQRCode", mock.Anything, mock.Anything)
}

func TestTicketUsecase_GetTicket(t *testing.T) {
	f := newTicketFixture()
	merchantID := uuid.New()
	event, vip := onSaleEvent(merchantID, fixedNow.Add(72*time.Hour))
	ticket := issuedTicket(event, vip)
	f.ticketRepo.On("GetByID", mock.Anything, ticket.ID).Return(ticket, nil)
	f.eventRepo.On("GetByID", mock.Anything, event.ID).Return(event, nil)

	owner := entities.Principal{UserID: *ticket.UserID, Role: entities.UserRoleConsumer}
	_, err := f.uc.GetTicket(context.Background(), owner, ticket.ID)
	require.NoError(t, err)

	_, err = f.uc.GetTicket(context.Background(), merchantPrincipal(merchantID), ticket.ID)
	require.NoError(t, err)

	_, err = f.uc.GetTicket(context.Background(), consumerPrincipal(), ticket.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestTicketUsecase_ListMyTickets(t *testing.T) {
	f := newTicketFixture()
	p := consumerPrincipal()
	used := entities.TicketUsed
	f.ticketRepo.On("ListByUser", mock.Anything, p.UserID, &used).Return([]*entities.Ticket{}, nil).Once()

	_, err := f.uc.ListMyTickets(context.Background(), p, "used")
	require.NoError(t, err)

	_, err = f.uc.ListMyTickets(context.Background(), p, "lost")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	f.ticketRepo.On("ListByUser", mock.Anything, p.UserID, (*entities.TicketStatus)(nil)).Return(nil, errors.New("db down")).Once()
	_, err = f.uc.ListMyTickets(context.Background(), p, "")
	assert.Error(t, err)
}
