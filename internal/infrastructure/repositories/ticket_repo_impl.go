package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/internal/infrastructure/models"
)

// EventRepository implements ticketed event data operations
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, e *entities.Event) error {
	assignIdentity(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	m := &models.Event{
		ID:           e.ID,
		MerchantID:   e.MerchantID,
		Title:        e.Title,
		Subtitle:     e.Subtitle.Ptr(),
		Description:  e.Description.Ptr(),
		Category:     e.Category,
		PosterURL:    e.PosterURL.Ptr(),
		VenueName:    e.VenueName,
		VenueAddress: e.VenueAddress.Ptr(),
		EventDate:    e.EventDate.UTC(),
		EventEndDate: utcPtr(e.EventEndDate),
		Status:       string(e.Status),
		IsFeatured:   e.IsFeatured,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	db := GetDB(ctx, r.db)
	if err := db.Create(m).Error; err != nil {
		return translateError(err)
	}
	if len(e.TicketTypes) == 0 {
		return nil
	}
	types := make([]models.TicketType, 0, len(e.TicketTypes))
	for i, t := range e.TicketTypes {
		var created time.Time
		assignIdentity(&t.ID, &created)
		t.EventID = e.ID
		t.DisplayOrder = i
		types = append(types, models.TicketType{
			ID:               t.ID,
			EventID:          e.ID,
			Name:             t.Name,
			Description:      t.Description.Ptr(),
			Price:            t.Price,
			OriginalPrice:    t.OriginalPrice.Ptr(),
			TotalQuantity:    t.TotalQuantity,
			SoldQuantity:     t.SoldQuantity,
			ReservedQuantity: t.ReservedQuantity,
			MaxPerOrder:      t.OrderLimit(),
			IsNumberedSeat:   t.IsNumberedSeat,
			DisplayOrder:     i,
			CreatedAt:        created,
		})
	}
	return translateError(db.Create(&types).Error)
}

func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Event, error) {
	var m models.Event
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	events := []*entities.Event{eventEntity(&m)}
	if err := r.attachTicketTypes(ctx, events); err != nil {
		return nil, err
	}
	return events[0], nil
}

func (r *EventRepository) List(ctx context.Context, query entities.EventQuery, now time.Time) ([]*entities.Event, int64, error) {
	q := GetDB(ctx, r.db).Model(&models.Event{})
	switch query.Status {
	case "":
	case entities.EventFilterUpcoming:
		q = q.Where("status IN ?", []string{string(entities.EventOnSale), string(entities.EventSoldOut)}).
			Where("event_date >= ?", now.UTC())
	default:
		q = q.Where("status = ?", query.Status)
	}
	if query.Category != "" {
		q = q.Where("category = ?", query.Category)
	}
	if query.Featured {
		q = q.Where("is_featured = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Event
	if err := q.Order("is_featured DESC").Order("event_date ASC").
		Offset(query.Page.CalculateOffset()).Limit(query.Page.Limit).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*entities.Event, 0, len(ms))
	for i := range ms {
		out = append(out, eventEntity(&ms[i]))
	}
	if err := r.attachTicketTypes(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *EventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []entities.EventStatus, to entities.EventStatus) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	sources := make([]string, 0, len(from))
	for _, s := range from {
		sources = append(sources, string(s))
	}
	res := GetDB(ctx, r.db).Model(&models.Event{}).
		Where("id = ? AND status IN ?", id, sources).
		Updates(map[string]interface{}{
			"status":     string(to),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *EventRepository) MarkSoldOutIfExhausted(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Exec(`UPDATE events SET status = ?, updated_at = ?
		WHERE id = ? AND status = ? AND NOT EXISTS (
			SELECT 1 FROM ticket_types t
			WHERE t.event_id = events.id AND t.total_quantity - t.sold_quantity - t.reserved_quantity > 0
		)`,
		string(entities.EventSoldOut), time.Now().UTC(), id, string(entities.EventOnSale))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *EventRepository) attachTicketTypes(ctx context.Context, events []*entities.Event) error {
	if len(events) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*entities.Event, len(events))
	ids := make([]uuid.UUID, 0, len(events))
	for _, e := range events {
		e.TicketTypes = []*entities.TicketType{}
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}
	var ms []models.TicketType
	if err := GetDB(ctx, r.db).Where("event_id IN ?", ids).
		Order("display_order ASC").Find(&ms).Error; err != nil {
		return err
	}
	for i := range ms {
		if e, ok := byID[ms[i].EventID]; ok {
			e.TicketTypes = append(e.TicketTypes, ticketTypeEntity(&ms[i]))
		}
	}
	return nil
}

func eventEntity(m *models.Event) *entities.Event {
	return &entities.Event{
		ID:           m.ID,
		MerchantID:   m.MerchantID,
		Title:        m.Title,
		Subtitle:     null.StringFromPtr(m.Subtitle),
		Description:  null.StringFromPtr(m.Description),
		Category:     m.Category,
		PosterURL:    null.StringFromPtr(m.PosterURL),
		VenueName:    m.VenueName,
		VenueAddress: null.StringFromPtr(m.VenueAddress),
		EventDate:    m.EventDate,
		EventEndDate: null.TimeFromPtr(m.EventEndDate),
		Status:       entities.EventStatus(m.Status),
		IsFeatured:   m.IsFeatured,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// TicketTypeRepository implements ticket inventory operations
type TicketTypeRepository struct {
	db *gorm.DB
}

func NewTicketTypeRepository(db *gorm.DB) *TicketTypeRepository {
	return &TicketTypeRepository{db: db}
}

func (r *TicketTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.TicketType, error) {
	var m models.TicketType
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return ticketTypeEntity(&m), nil
}

// Sell takes quantity tickets in one UPDATE ... RETURNING so two buyers can
// never oversell the last seats.
func (r *TicketTypeRepository) Sell(ctx context.Context, id uuid.UUID, quantity int) (int64, bool, error) {
	var row struct {
		SoldQuantity int64
	}
	res := GetDB(ctx, r.db).Raw(`UPDATE ticket_types
		SET sold_quantity = sold_quantity + ?
		WHERE id = ? AND total_quantity - sold_quantity - reserved_quantity >= ?
		RETURNING sold_quantity`, quantity, id, quantity).Scan(&row)
	if res.Error != nil {
		return 0, false, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}
	return row.SoldQuantity, true, nil
}

func ticketTypeEntity(m *models.TicketType) *entities.TicketType {
	return &entities.TicketType{
		ID:               m.ID,
		EventID:          m.EventID,
		Name:             m.Name,
		Description:      null.StringFromPtr(m.Description),
		Price:            m.Price,
		OriginalPrice:    null.Int64FromPtr(m.OriginalPrice),
		TotalQuantity:    m.TotalQuantity,
		SoldQuantity:     m.SoldQuantity,
		ReservedQuantity: m.ReservedQuantity,
		MaxPerOrder:      m.MaxPerOrder,
		IsNumberedSeat:   m.IsNumberedSeat,
		DisplayOrder:     m.DisplayOrder,
	}
}

// TicketRepository implements issued ticket data operations
type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) CreateBatch(ctx context.Context, tickets []*entities.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	ms := make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		assignIdentity(&t.ID, &t.CreatedAt)
		ms = append(ms, models.Ticket{
			ID:           t.ID,
			EventID:      t.EventID,
			TicketTypeID: t.TicketTypeID,
			UserID:       t.UserID,
			BuyerName:    t.BuyerName,
			BuyerPhone:   t.BuyerPhone,
			BuyerEmail:   t.BuyerEmail.Ptr(),
			TicketNumber: t.TicketNumber,
			QRCode:       t.QRCode,
			Price:        t.Price,
			PaymentID:    t.PaymentID,
			SeatSection:  t.SeatSection.Ptr(),
			SeatRow:      t.SeatRow.Ptr(),
			SeatNumber:   t.SeatNumber.Ptr(),
			Status:       string(t.Status),
			UsedAt:       utcPtr(t.UsedAt),
			CreatedAt:    t.CreatedAt,
		})
	}
	return translateError(GetDB(ctx, r.db).Create(&ms).Error)
}

func (r *TicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Ticket, error) {
	var m models.Ticket
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return ticketEntity(&m), nil
}

func (r *TicketRepository) GetByQRCode(ctx context.Context, code string) (*entities.Ticket, error) {
	var m models.Ticket
	if err := GetDB(ctx, r.db).Where("qr_code = ?", code).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return ticketEntity(&m), nil
}

func (r *TicketRepository) ListByUser(ctx context.Context, userID uuid.UUID, status *entities.TicketStatus) ([]*entities.Ticket, error) {
	q := GetDB(ctx, r.db).Where("user_id = ?", userID)
	if status != nil {
		q = q.Where("status = ?", string(*status))
	}
	var ms []models.Ticket
	if err := q.Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Ticket, 0, len(ms))
	for i := range ms {
		out = append(out, ticketEntity(&ms[i]))
	}
	return out, nil
}

func (r *TicketRepository) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error) {
	res := GetDB(ctx, r.db).Model(&models.Ticket{}).
		Where("id = ? AND status = ?", id, string(entities.TicketIssued)).
		Updates(map[string]interface{}{
			"status":  string(entities.TicketUsed),
			"used_at": usedAt.UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func ticketEntity(m *models.Ticket) *entities.Ticket {
	return &entities.Ticket{
		ID:           m.ID,
		EventID:      m.EventID,
		TicketTypeID: m.TicketTypeID,
		UserID:       m.UserID,
		BuyerName:    m.BuyerName,
		BuyerPhone:   m.BuyerPhone,
		BuyerEmail:   null.StringFromPtr(m.BuyerEmail),
		TicketNumber: m.TicketNumber,
		QRCode:       m.QRCode,
		Price:        m.Price,
		PaymentID:    m.PaymentID,
		SeatSection:  null.StringFromPtr(m.SeatSection),
		SeatRow:      null.StringFromPtr(m.SeatRow),
		SeatNumber:   null.StringFromPtr(m.SeatNumber),
		Status:       entities.TicketStatus(m.Status),
		UsedAt:       null.TimeFromPtr(m.UsedAt),
		CreatedAt:    m.CreatedAt,
	}
}
