package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/internal/interfaces/http/response"
	"couponmap.backend/pkg/utils"
)

type ticketService interface {
	ListEvents(ctx context.Context, query entities.EventQuery) (*entities.EventList, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*entities.Event, error)
	CreateEvent(ctx context.Context, principal entities.Principal, input *entities.CreateEventInput) (*entities.Event, error)
	UpdateEventStatus(ctx context.Context, principal entities.Principal, id uuid.UUID, input *entities.EventStatusInput) (*entities.Event, error)
	Purchase(ctx context.Context, principal entities.Principal, input *entities.PurchaseTicketsInput) (*entities.TicketPurchase, error)
	Verify(ctx context.Context, principal entities.Principal, input *entities.VerifyTicketInput) (*entities.TicketVerification, error)
	ListMyTickets(ctx context.Context, principal entities.Principal, status string) ([]*entities.Ticket, error)
	GetTicket(ctx context.Context, principal entities.Principal, id uuid.UUID) (*entities.Ticket, error)
}

// TicketHandler handles ticketed events and tickets
type TicketHandler struct {
	ticketUsecase ticketService
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(ticketUsecase ticketService) *TicketHandler {
	return &TicketHandler{ticketUsecase: ticketUsecase}
}

// ListEvents lists public events
// GET /api/v1/events?category=&status=&featured=&page=&limit=
func (h *TicketHandler) ListEvents(c *gin.Context) {
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

	list, err := h.ticketUsecase.ListEvents(c.Request.Context(), entities.EventQuery{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Featured: c.Query("featured") == "true",
		Page:     utils.PaginationParams{Page: page, Limit: limit},
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// GetEvent returns one event with its ticket types
// GET /api/v1/events/:id
func (h *TicketHandler) GetEvent(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	event, err := h.ticketUsecase.GetEvent(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, event)
}

// CreateEvent registers a draft event
// POST /api/v1/merchant/events
func (h *TicketHandler) CreateEvent(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.CreateEventInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	event, err := h.ticketUsecase.CreateEvent(c.Request.Context(), p, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, event)
}

// UpdateEventStatus opens, closes or cancels sales
// PUT /api/v1/merchant/events/:id/status
func (h *TicketHandler) UpdateEventStatus(c *gin.Context) {
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
	var input entities.EventStatusInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	event, err := h.ticketUsecase.UpdateEventStatus(c.Request.Context(), p, id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, event)
}

// Purchase buys tickets for the caller
// POST /api/v1/tickets
func (h *TicketHandler) Purchase(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.PurchaseTicketsInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	purchase, err := h.ticketUsecase.Purchase(c.Request.Context(), p, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, purchase)
}

// Verify scans a ticket at the gate. Rejected tickets still answer 200
// with the reason in the verdict.
// POST /api/v1/merchant/tickets/verify
func (h *TicketHandler) Verify(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.VerifyTicketInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	verdict, err := h.ticketUsecase.Verify(c.Request.Context(), p, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, verdict)
}

// MyTickets lists the caller's tickets
// GET /api/v1/tickets/my?status=
func (h *TicketHandler) MyTickets(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	tickets, err := h.ticketUsecase.ListMyTickets(c.Request.Context(), p, c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tickets": tickets})
}

// GetTicket returns one ticket
// GET /api/v1/tickets/:id
func (h *TicketHandler) GetTicket(c *gin.Context) {
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

	ticket, err := h.ticketUsecase.GetTicket(c.Request.Context(), p, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, ticket)
}
