package usecases

import (
	"context"
	"time"

	"go.uber.org/zap"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/internal/domain/repositories"
	"couponmap.backend/pkg/logger"
)

// AnalyticsPublisher streams analytics copies of transaction events
type AnalyticsPublisher interface {
	Publish(ctx context.Context, event *entities.TransactionEvent) error
}

// KitchenNotifier pushes kitchen order changes to store displays
type KitchenNotifier interface {
	Notify(ctx context.Context, event *entities.KitchenEvent) error
}

// TaskRunner runs best-effort work after the primary write committed
type TaskRunner interface {
	Submit(ctx context.Context, name string, fn func(ctx context.Context) error) bool
}

// SideEffects schedules the follow-ups of committed writes. None of them
// can fail the operation that triggered them.
type SideEffects struct {
	runner    TaskRunner
	analytics AnalyticsPublisher
	kitchen   KitchenNotifier
	customers repositories.CustomerRepository
	events    repositories.TransactionEventRepository
	now       func() time.Time
}

// NewSideEffects creates the follow-up scheduler
func NewSideEffects(
	runner TaskRunner,
	analytics AnalyticsPublisher,
	kitchen KitchenNotifier,
	customers repositories.CustomerRepository,
	events repositories.TransactionEventRepository,
) *SideEffects {
	return &SideEffects{
		runner:    runner,
		analytics: analytics,
		kitchen:   kitchen,
		customers: customers,
		events:    events,
		now:       time.Now,
	}
}

// Touchpoint records a CRM interaction
func (s *SideEffects) Touchpoint(ctx context.Context, tp entities.Touchpoint) {
	if s == nil {
		return
	}
	at := s.now().UTC()
	s.submit(ctx, "crm_touchpoint", func(ctx context.Context) error {
		return s.customers.RecordTouchpoint(ctx, tp, at)
	})
}

// Publish streams an event that was already persisted with its transaction
func (s *SideEffects) Publish(ctx context.Context, event *entities.TransactionEvent) {
	s.submit(ctx, "analytics_"+string(event.EventType), func(ctx context.Context) error {
		return s.analytics.Publish(ctx, event)
	})
}

// Record persists event outside any transaction, then streams it
func (s *SideEffects) Record(ctx context.Context, event *entities.TransactionEvent) {
	s.submit(ctx, "event_"+string(event.EventType), func(ctx context.Context) error {
		if err := s.events.Create(ctx, event); err != nil {
			return err
		}
		return s.analytics.Publish(ctx, event)
	})
}

// Kitchen notifies the store kitchen display
func (s *SideEffects) Kitchen(ctx context.Context, event *entities.KitchenEvent) {
	s.submit(ctx, "kitchen_notify", func(ctx context.Context) error {
		return s.kitchen.Notify(ctx, event)
	})
}

func (s *SideEffects) submit(ctx context.Context, name string, fn func(ctx context.Context) error) {
	if s == nil || s.runner == nil {
		return
	}
	if !s.runner.Submit(ctx, name, fn) {
		logger.Warn(ctx, "Side effect not scheduled", zap.String("task", name))
	}
}
