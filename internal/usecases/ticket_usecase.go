package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
	"couponmap.backend/internal/domain/repositories"
	"couponmap.backend/pkg/crypto"
	"couponmap.backend/pkg/utils"
)

const (
	qrAlphabet = "0123456789ABCDEF"
	qrLength   = 32
)

// TicketUsecase handles ticketed events, purchases and gate verification
type TicketUsecase struct {
	uow        repositories.UnitOfWork
	eventRepo  repositories.EventRepository
	typeRepo   repositories.TicketTypeRepository
	ticketRepo repositories.TicketRepository
	effects    *SideEffects
	now        func() time.Time
}

// NewTicketUsecase creates a new ticket usecase
func NewTicketUsecase(
	uow repositories.UnitOfWork,
	eventRepo repositories.EventRepository,
	typeRepo repositories.TicketTypeRepository,
	ticketRepo repositories.TicketRepository,
	effects *SideEffects,
) *TicketUsecase {
	return &TicketUsecase{
		uow:        uow,
		eventRepo:  eventRepo,
		typeRepo:   typeRepo,
		ticketRepo: ticketRepo,
		effects:    effects,
		now:        time.Now,
	}
}

// ListEvents returns the public event listing. Drafts are never listed.
func (u *TicketUsecase) ListEvents(ctx context.Context, query entities.EventQuery) (*entities.EventList, error) {
	switch query.Status {
	case "":
		query.Status = string(entities.EventOnSale)
	case entities.EventFilterUpcoming:
	case string(entities.EventOnSale), string(entities.EventSoldOut), string(entities.EventClosed), string(entities.EventCancelled):
	default:
		return nil, domainerrors.BadRequest("invalid status")
	}
	query.Page = utils.GetPaginationParams(query.Page.Page, query.Page.Limit)

	events, total, err := u.eventRepo.List(ctx, query, u.now().UTC())
	if err != nil {
		return nil, err
	}
	return &entities.EventList{
		Events:     events,
		Pagination: utils.CalculateMeta(total, query.Page.Page, query.Page.Limit),
	}, nil
}

// GetEvent returns a listed event with its ticket types
func (u *TicketUsecase) GetEvent(ctx context.Context, id uuid.UUID) (*entities.Event, error) {
	event, err := u.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Status == entities.EventDraft {
		return nil, domainerrors.NotFound("Event not found")
	}
	return event, nil
}

// CreateEvent registers a draft event for the caller's merchant
func (u *TicketUsecase) CreateEvent(ctx context.Context, principal entities.Principal, input *entities.CreateEventInput) (*entities.Event, error) {
	if principal.MerchantID == nil {
		return nil, domainerrors.Forbidden("Merchant account required")
	}
	title := strings.TrimSpace(input.Title)
	venue := strings.TrimSpace(input.VenueName)
	if title == "" || venue == "" {
		return nil, domainerrors.BadRequest("title and venue_name are required")
	}
	if input.EventDate == nil {
		return nil, domainerrors.BadRequest("event_date is required")
	}
	if input.EventEndDate != nil && input.EventEndDate.Before(*input.EventDate) {
		return nil, domainerrors.BadRequest("event_end_date must not precede event_date")
	}
	if len(input.TicketTypes) == 0 {
		return nil, domainerrors.BadRequest("at least one ticket type is required")
	}

	event := &entities.Event{
		MerchantID:   *principal.MerchantID,
		Title:        title,
		Subtitle:     null.StringFromPtr(input.Subtitle),
		Description:  null.StringFromPtr(input.Description),
		Category:     strings.TrimSpace(input.Category),
		PosterURL:    null.StringFromPtr(input.PosterURL),
		VenueName:    venue,
		VenueAddress: null.StringFromPtr(input.VenueAddress),
		EventDate:    input.EventDate.UTC(),
		EventEndDate: null.TimeFromPtr(input.EventEndDate),
		Status:       entities.EventDraft,
		TicketTypes:  make([]*entities.TicketType, 0, len(input.TicketTypes)),
	}
	if event.Category == "" {
		event.Category = entities.DefaultEventCategory
	}
	for _, t := range input.TicketTypes {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, domainerrors.BadRequest("ticket type name is required")
		}
		if t.Price < 0 || t.TotalQuantity <= 0 || t.MaxPerOrder < 0 {
			return nil, domainerrors.BadRequest("ticket type needs a non-negative price and a positive quantity")
		}
		event.TicketTypes = append(event.TicketTypes, &entities.TicketType{
			Name:           name,
			Description:    null.StringFromPtr(t.Description),
			Price:          t.Price,
			OriginalPrice:  null.Int64FromPtr(t.OriginalPrice),
			TotalQuantity:  t.TotalQuantity,
			MaxPerOrder:    t.MaxPerOrder,
			IsNumberedSeat: t.IsNumberedSeat,
		})
	}

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.eventRepo.Create(txCtx, event)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// UpdateEventStatus moves an event along its lifecycle
func (u *TicketUsecase) UpdateEventStatus(ctx context.Context, principal entities.Principal, id uuid.UUID, input *entities.EventStatusInput) (*entities.Event, error) {
	from := entities.EventSourcesFor(input.Status)
	if len(from) == 0 {
		return nil, domainerrors.BadRequest("invalid status")
	}
	event, err := u.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanManage(event.MerchantID) {
		return nil, domainerrors.Forbidden("Event belongs to another merchant")
	}
	moved, err := u.eventRepo.UpdateStatus(ctx, id, from, input.Status)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, domainerrors.Conflict(fmt.Sprintf("Cannot move event from %s to %s", event.Status, input.Status))
	}
	return u.getEvent(ctx, id)
}

// Purchase sells tickets of one type to the caller. Stock is taken with a
// single conditional update, so concurrent buyers never oversell.
func (u *TicketUsecase) Purchase(ctx context.Context, principal entities.Principal, input *entities.PurchaseTicketsInput) (*entities.TicketPurchase, error) {
	eventID, err := uuid.Parse(strings.TrimSpace(input.EventID))
	if err != nil {
		return nil, domainerrors.BadRequest("invalid event_id")
	}
	typeID, err := uuid.Parse(strings.TrimSpace(input.TicketTypeID))
	if err != nil {
		return nil, domainerrors.BadRequest("invalid ticket_type_id")
	}
	if input.Quantity < 1 {
		return nil, domainerrors.BadRequest("quantity must be at least 1")
	}
	buyerName := strings.TrimSpace(input.BuyerName)
	buyerPhone := strings.TrimSpace(input.BuyerPhone)
	if buyerName == "" || buyerPhone == "" {
		return nil, domainerrors.BadRequest("buyer_name and buyer_phone are required")
	}
	var paymentID *uuid.UUID
	if raw := strings.TrimSpace(input.PaymentID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, domainerrors.BadRequest("invalid payment_id")
		}
		paymentID = &id
	}

	now := u.now().UTC()
	event, err := u.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != entities.EventOnSale {
		return nil, domainerrors.Conflict("Event is not on sale")
	}
	if !event.EventDate.After(now) {
		return nil, domainerrors.Expired("Event has already started")
	}
	ticketType, err := u.typeRepo.GetByID(ctx, typeID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Ticket type not found")
		}
		return nil, err
	}
	if ticketType.EventID != event.ID {
		return nil, domainerrors.NotFound("Ticket type not found")
	}
	if input.Quantity > ticketType.OrderLimit() {
		return nil, domainerrors.BadRequest(fmt.Sprintf("at most %d tickets per order", ticketType.OrderLimit()))
	}

	userID := principal.UserID
	tickets := make([]*entities.Ticket, 0, input.Quantity)
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		tickets = tickets[:0]
		sold, ok, err := u.typeRepo.Sell(txCtx, ticketType.ID, input.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return domainerrors.Wrap(http.StatusBadRequest, "Not enough tickets left", domainerrors.ErrSoldOut)
		}
		first := sold - int64(input.Quantity) + 1
		for i := 0; i < input.Quantity; i++ {
			code, err := crypto.RandomString(qrAlphabet, qrLength)
			if err != nil {
				return err
			}
			tickets = append(tickets, &entities.Ticket{
				EventID:      event.ID,
				TicketTypeID: ticketType.ID,
				UserID:       &userID,
				BuyerName:    buyerName,
				BuyerPhone:   buyerPhone,
				BuyerEmail:   null.NewString(strings.TrimSpace(input.BuyerEmail), strings.TrimSpace(input.BuyerEmail) != ""),
				TicketNumber: entities.TicketNumber(now, first+int64(i)),
				QRCode:       code,
				Price:        ticketType.Price,
				PaymentID:    paymentID,
				Status:       entities.TicketIssued,
				CreatedAt:    now,
			})
		}
		if err := u.ticketRepo.CreateBatch(txCtx, tickets); err != nil {
			return err
		}
		_, err = u.eventRepo.MarkSoldOutIfExhausted(txCtx, event.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	total := ticketType.Price * int64(input.Quantity)
	u.effects.Touchpoint(ctx, entities.Touchpoint{
		MerchantID: event.MerchantID,
		ConsumerID: userID,
		Type:       entities.TouchpointTicketBooking,
		Amount:     total,
	})
	purchased := entities.NewTransactionEvent(entities.EventTicketPurchased, total, map[string]any{
		"event_id":       event.ID,
		"ticket_type_id": ticketType.ID,
		"quantity":       input.Quantity,
	})
	purchased.MerchantID = &event.MerchantID
	purchased.ConsumerID = &userID
	u.effects.Record(ctx, purchased)

	return &entities.TicketPurchase{Tickets: tickets, TotalAmount: total}, nil
}

// Verify checks a scanned QR code at the gate of event and admits the
// ticket. Rejections are reported in the verdict, not as errors.
func (u *TicketUsecase) Verify(ctx context.Context, principal entities.Principal, input *entities.VerifyTicketInput) (*entities.TicketVerification, error) {
	code := strings.TrimSpace(input.QRCode)
	if code == "" {
		return nil, domainerrors.BadRequest("qr_code is required")
	}
	eventID, err := uuid.Parse(strings.TrimSpace(input.EventID))
	if err != nil {
		return nil, domainerrors.BadRequest("invalid event_id")
	}
	event, err := u.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !principal.CanManage(event.MerchantID) {
		return nil, domainerrors.Forbidden("Event belongs to another merchant")
	}

	ticket, err := u.ticketRepo.GetByQRCode(ctx, code)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return rejected(entities.VerifyTicketNotFound, nil), nil
		}
		return nil, err
	}
	if ticket.EventID != event.ID {
		return rejected(entities.VerifyWrongEvent, nil), nil
	}
	summary := ticketSummary(ticket, event)
	switch ticket.Status {
	case entities.TicketUsed:
		out := rejected(entities.VerifyAlreadyUsed, summary)
		out.Verification.UsedAt = ticket.UsedAt
		return out, nil
	case entities.TicketCancelled, entities.TicketRefunded:
		return rejected(entities.VerifyCancelled, summary), nil
	}

	now := u.now().UTC()
	if !entities.EntryOpen(event.EventDate, now) {
		out := rejected(entities.VerifyNotYet, summary)
		out.Verification.EventDate = null.TimeFrom(event.EventDate)
		return out, nil
	}

	used, err := u.ticketRepo.MarkUsed(ctx, ticket.ID, now)
	if err != nil {
		return nil, err
	}
	if !used {
		// another gate admitted it first
		fresh, err := u.ticketRepo.GetByID(ctx, ticket.ID)
		if err != nil {
			return nil, err
		}
		out := rejected(entities.VerifyAlreadyUsed, ticketSummary(fresh, event))
		out.Verification.UsedAt = fresh.UsedAt
		return out, nil
	}

	summary.UsedAt = null.TimeFrom(now)
	admitted := entities.NewTransactionEvent(entities.EventTicketUsed, ticket.Price, map[string]any{
		"event_id":  event.ID,
		"ticket_id": ticket.ID,
	})
	admitted.MerchantID = &event.MerchantID
	admitted.ConsumerID = ticket.UserID
	u.effects.Record(ctx, admitted)

	return &entities.TicketVerification{
		Verification: entities.Verification{Valid: true, Reason: entities.VerifyOK, UsedAt: null.TimeFrom(now)},
		Ticket:       summary,
	}, nil
}

// ListMyTickets returns the caller's tickets, newest first
func (u *TicketUsecase) ListMyTickets(ctx context.Context, principal entities.Principal, status string) ([]*entities.Ticket, error) {
	var filter *entities.TicketStatus
	if status != "" {
		st := entities.TicketStatus(status)
		switch st {
		case entities.TicketIssued, entities.TicketUsed, entities.TicketCancelled, entities.TicketRefunded:
		default:
			return nil, domainerrors.BadRequest("invalid status")
		}
		filter = &st
	}
	return u.ticketRepo.ListByUser(ctx, principal.UserID, filter)
}

// GetTicket returns a ticket to its owner or to the event's merchant
func (u *TicketUsecase) GetTicket(ctx context.Context, principal entities.Principal, id uuid.UUID) (*entities.Ticket, error) {
	ticket, err := u.ticketRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Ticket not found")
		}
		return nil, err
	}
	if ticket.UserID != nil && *ticket.UserID == principal.UserID {
		return ticket, nil
	}
	event, err := u.getEvent(ctx, ticket.EventID)
	if err != nil {
		return nil, err
	}
	if !principal.CanManage(event.MerchantID) {
		return nil, domainerrors.Forbidden("Not allowed to view this ticket")
	}
	return ticket, nil
}

func (u *TicketUsecase) getEvent(ctx context.Context, id uuid.UUID) (*entities.Event, error) {
	event, err := u.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Event not found")
		}
		return nil, err
	}
	return event, nil
}

func rejected(reason entities.VerificationReason, summary *entities.TicketSummary) *entities.TicketVerification {
	return &entities.TicketVerification{
		Verification: entities.Verification{Valid: false, Reason: reason},
		Ticket:       summary,
	}
}

func ticketSummary(ticket *entities.Ticket, event *entities.Event) *entities.TicketSummary {
	summary := &entities.TicketSummary{
		ID:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
		BuyerName:    ticket.BuyerName,
		BuyerPhone:   ticket.BuyerPhone,
		EventTitle:   event.Title,
		SeatSection:  ticket.SeatSection,
		SeatRow:      ticket.SeatRow,
		SeatNumber:   ticket.SeatNumber,
		UsedAt:       ticket.UsedAt,
	}
	for _, t := range event.TicketTypes {
		if t.ID == ticket.TicketTypeID {
			summary.TicketType = t.Name
			break
		}
	}
	return summary
}
