package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/device-cost-service/internal/config"
	"github.com/spec-kit/device-cost-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events and returns the types it subscribed.
func (n *NotificationService) RegisterHandlers() []events.EventType {
	if n.dispatcher == nil {
		return nil
	}
	handlers := []struct {
		eventType events.EventType
		handler   events.EventHandler
	}{
		{events.EventProductAdded, n.handleProductChanged},
		{events.EventProductUpdated, n.handleProductChanged},
		{events.EventProductDeleted, n.handleProductChanged},
		{events.EventLifespanAdvisory, n.handleLifespanAdvisory},
	}
	subscribed := make([]events.EventType, 0, len(handlers))
	for _, h := range handlers {
		n.dispatcher.Subscribe(h.eventType, h.handler)
		subscribed = append(subscribed, h.eventType)
	}
	return subscribed
}

func (n *NotificationService) handleProductChanged(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("user_id", event.UserID),
		zap.String("product_id", event.ProductID),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleLifespanAdvisory(ctx context.Context, event events.Event) error {
	n.logger.Info("LifespanAdvisory",
		zap.String("user_id", event.UserID),
		zap.String("product_id", event.ProductID),
		zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("user_id", event.UserID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("product_id", event.ProductID),
		zap.String("event_type", string(event.Type)))
}
