package entities

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"couponmap.backend/pkg/utils"
)

// EventStatus is the sales state of a ticketed event
type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventOnSale    EventStatus = "on_sale"
	EventSoldOut   EventStatus = "sold_out"
	EventClosed    EventStatus = "closed"
	EventCancelled EventStatus = "cancelled"

	// EventFilterUpcoming selects on-sale and sold-out events that have not started
	EventFilterUpcoming = "upcoming"
	// DefaultEventCategory applies when an event is created without one
	DefaultEventCategory = "other"
	// DefaultMaxPerOrder caps a purchase when the ticket type sets no limit
	DefaultMaxPerOrder = 10
)

// EventTransitions lists the statuses an event may move to from each status
var EventTransitions = map[EventStatus][]EventStatus{
	EventDraft:   {EventOnSale, EventCancelled},
	EventOnSale:  {EventSoldOut, EventClosed, EventCancelled},
	EventSoldOut: {EventOnSale, EventClosed, EventCancelled},
}

// EventSourcesFor returns the statuses from which an event may move to status
func EventSourcesFor(status EventStatus) []EventStatus {
	var from []EventStatus
	for src, targets := range EventTransitions {
		for _, t := range targets {
			if t == status {
				from = append(from, src)
			}
		}
	}
	return from
}

// Event is a ticketed performance or happening run by a merchant
type Event struct {
	ID           uuid.UUID     `json:"id"`
	MerchantID   uuid.UUID     `json:"merchant_id"`
	Title        string        `json:"title"`
	Subtitle     null.String   `json:"subtitle"`
	Description  null.String   `json:"description"`
	Category     string        `json:"category"`
	PosterURL    null.String   `json:"poster_url"`
	VenueName    string        `json:"venue_name"`
	VenueAddress null.String   `json:"venue_address"`
	EventDate    time.Time     `json:"event_date"`
	EventEndDate null.Time     `json:"event_end_date"`
	Status       EventStatus   `json:"status"`
	IsFeatured   bool          `json:"is_featured"`
	TicketTypes  []*TicketType `json:"ticket_types"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// TicketType is a priced class of tickets with its own inventory
type TicketType struct {
	ID               uuid.UUID   `json:"id"`
	EventID          uuid.UUID   `json:"event_id"`
	Name             string      `json:"name"`
	Description      null.String `json:"description"`
	Price            int64       `json:"price"`
	OriginalPrice    null.Int64  `json:"original_price"`
	TotalQuantity    int64       `json:"total_quantity"`
	SoldQuantity     int64       `json:"sold_quantity"`
	ReservedQuantity int64       `json:"reserved_quantity"`
	MaxPerOrder      int         `json:"max_per_order"`
	IsNumberedSeat   bool        `json:"is_numbered_seat"`
	DisplayOrder     int         `json:"display_order"`
}

// Available is the number of tickets still for sale
func (t *TicketType) Available() int64 {
	return t.TotalQuantity - t.SoldQuantity - t.ReservedQuantity
}

// OrderLimit is the most tickets one purchase may take
func (t *TicketType) OrderLimit() int {
	if t.MaxPerOrder > 0 {
		return t.MaxPerOrder
	}
	return DefaultMaxPerOrder
}

// TicketStatus is the lifecycle state of one ticket
type TicketStatus string

const (
	TicketIssued    TicketStatus = "issued"
	TicketUsed      TicketStatus = "used"
	TicketCancelled TicketStatus = "cancelled"
	TicketRefunded  TicketStatus = "refunded"
)

// Ticket is one admission to an event
type Ticket struct {
	ID           uuid.UUID    `json:"id"`
	EventID      uuid.UUID    `json:"event_id"`
	TicketTypeID uuid.UUID    `json:"ticket_type_id"`
	UserID       *uuid.UUID   `json:"user_id"`
	BuyerName    string       `json:"buyer_name"`
	BuyerPhone   string       `json:"buyer_phone"`
	BuyerEmail   null.String  `json:"buyer_email"`
	TicketNumber string       `json:"ticket_number"`
	QRCode       string       `json:"qr_code"`
	Price        int64        `json:"price"`
	PaymentID    *uuid.UUID   `json:"payment_id"`
	SeatSection  null.String  `json:"seat_section"`
	SeatRow      null.String  `json:"seat_row"`
	SeatNumber   null.String  `json:"seat_number"`
	Status       TicketStatus `json:"status"`
	UsedAt       null.Time    `json:"used_at"`
	CreatedAt    time.Time    `json:"created_at"`
}

// TicketNumber formats the printed number of the seq-th ticket of a type
func TicketNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("TKT-%s-%04d", day.UTC().Format("20060102"), seq)
}

// EntryOpen reports whether admission is allowed at now: the event must be
// less than two whole days away. There is no cutoff once it has started.
func EntryOpen(eventDate, now time.Time) bool {
	days := math.Floor(eventDate.Sub(now).Hours() / 24)
	return days <= 1
}

// EventQuery filters the public event listing
type EventQuery struct {
	Category string
	Status   string
	Featured bool
	Page     utils.PaginationParams
}

// EventList is a page of events
type EventList struct {
	Events     []*Event             `json:"events"`
	Pagination utils.PaginationMeta `json:"pagination"`
}

// TicketTypeInput describes a ticket type on event creation
type TicketTypeInput struct {
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	Price          int64   `json:"price"`
	OriginalPrice  *int64  `json:"original_price"`
	TotalQuantity  int64   `json:"total_quantity"`
	MaxPerOrder    int     `json:"max_per_order"`
	IsNumberedSeat bool    `json:"is_numbered_seat"`
}

// CreateEventInput is the event registration body
type CreateEventInput struct {
	Title        string            `json:"title"`
	Subtitle     *string           `json:"subtitle"`
	Description  *string           `json:"description"`
	Category     string            `json:"category"`
	PosterURL    *string           `json:"poster_url"`
	VenueName    string            `json:"venue_name"`
	VenueAddress *string           `json:"venue_address"`
	EventDate    *time.Time        `json:"event_date"`
	EventEndDate *time.Time        `json:"event_end_date"`
	TicketTypes  []TicketTypeInput `json:"ticket_types"`
}

// EventStatusInput moves an event along its lifecycle
type EventStatusInput struct {
	Status EventStatus `json:"status"`
}

// PurchaseTicketsInput is the ticket purchase body
type PurchaseTicketsInput struct {
	EventID      string `json:"event_id"`
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
	BuyerName    string `json:"buyer_name"`
	BuyerPhone   string `json:"buyer_phone"`
	BuyerEmail   string `json:"buyer_email"`
	PaymentID    string `json:"payment_id"`
}

// TicketPurchase is returned by a successful purchase
type TicketPurchase struct {
	Tickets     []*Ticket `json:"tickets"`
	TotalAmount int64     `json:"total_amount"`
}

// VerificationReason explains a ticket scan result
type VerificationReason string

const (
	VerifyOK             VerificationReason = "OK"
	VerifyTicketNotFound VerificationReason = "TICKET_NOT_FOUND"
	VerifyWrongEvent     VerificationReason = "WRONG_EVENT"
	VerifyAlreadyUsed    VerificationReason = "ALREADY_USED"
	VerifyCancelled      VerificationReason = "CANCELLED"
	VerifyNotYet         VerificationReason = "NOT_YET"
)

// VerifyTicketInput is the gate scan body
type VerifyTicketInput struct {
	QRCode  string `json:"qr_code"`
	EventID string `json:"event_id"`
}

// Verification is the verdict of a gate scan
type Verification struct {
	Valid     bool               `json:"valid"`
	Reason    VerificationReason `json:"reason"`
	UsedAt    null.Time          `json:"used_at"`
	EventDate null.Time          `json:"event_date"`
}

// TicketSummary is what the gate staff sees about a scanned ticket
type TicketSummary struct {
	ID           uuid.UUID   `json:"id"`
	TicketNumber string      `json:"ticket_number"`
	BuyerName    string      `json:"buyer_name"`
	BuyerPhone   string      `json:"buyer_phone,omitempty"`
	EventTitle   string      `json:"event_title"`
	TicketType   string      `json:"ticket_type"`
	SeatSection  null.String `json:"seat_section"`
	SeatRow      null.String `json:"seat_row"`
	SeatNumber   null.String `json:"seat_number"`
	UsedAt       null.Time   `json:"used_at"`
}

// TicketVerification is returned by a gate scan
type TicketVerification struct {
	Verification Verification   `json:"verification"`
	Ticket       *TicketSummary `json:"ticket,omitempty"`
}
