package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/device-cost-service/internal/events"
	"github.com/spec-kit/device-cost-service/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to product
// and advisory events and returns the event types now covered.
func StartNotificationWorker(notifications *service.NotificationService, logger *zap.Logger) []events.EventType {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifications == nil {
		logger.Warn("notification worker disabled")
		return nil
	}
	subscribed := notifications.RegisterHandlers()
	names := make([]string, 0, len(subscribed))
	for _, et := range subscribed {
		names = append(names, string(et))
	}
	logger.Info("notification worker started", zap.Strings("events", names))
	return subscribed
}
