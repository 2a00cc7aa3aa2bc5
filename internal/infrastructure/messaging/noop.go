package messaging

import (
	"context"

	"go.uber.org/zap"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/pkg/logger"
)

// LogAnalyticsPublisher is used when kafka is disabled
type LogAnalyticsPublisher struct{}

func (LogAnalyticsPublisher) Publish(ctx context.Context, event *entities.TransactionEvent) error {
	logger.Debug(ctx, "analytics event", zap.String("event_type", string(event.EventType)), zap.Int64("amount", event.Amount))
	return nil
}

func (LogAnalyticsPublisher) Close() error { return nil }

// LogKitchenNotifier is used when rabbitmq is disabled
type LogKitchenNotifier struct{}

func (LogKitchenNotifier) Notify(ctx context.Context, event *entities.KitchenEvent) error {
	logger.Debug(ctx, "kitchen event", zap.String("type", event.Type), zap.String("order_id", event.OrderID.String()), zap.String("status", string(event.Status)))
	return nil
}

func (LogKitchenNotifier) Close() error { return nil }
