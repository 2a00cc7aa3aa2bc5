package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"couponmap.backend/internal/domain/entities"
)

// EventRepository defines ticketed event data operations
type EventRepository interface {
	// Create inserts the event together with its ticket types
	Create(ctx context.Context, event *entities.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Event, error)
	List(ctx context.Context, query entities.EventQuery, now time.Time) ([]*entities.Event, int64, error)
	// UpdateStatus moves an event whose status is one of from. It reports
	// false when the event was in none of them.
	UpdateStatus(ctx context.Context, id uuid.UUID, from []entities.EventStatus, to entities.EventStatus) (bool, error)
	// MarkSoldOutIfExhausted flips an on-sale event to sold out once none of
	// its ticket types has tickets left.
	MarkSoldOutIfExhausted(ctx context.Context, id uuid.UUID) (bool, error)
}

// TicketTypeRepository defines ticket inventory operations
type TicketTypeRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.TicketType, error)
	// Sell adds quantity to the sold count when that many tickets are still
	// available and returns the new sold count. ok is false when stock ran out.
	Sell(ctx context.Context, id uuid.UUID, quantity int) (sold int64, ok bool, err error)
}

// TicketRepository defines issued ticket operations
type TicketRepository interface {
	CreateBatch(ctx context.Context, tickets []*entities.Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Ticket, error)
	GetByQRCode(ctx context.Context, code string) (*entities.Ticket, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status *entities.TicketStatus) ([]*entities.Ticket, error)
	// MarkUsed moves an issued ticket to used. It reports false when the
	// ticket was no longer issued.
	MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error)
}
