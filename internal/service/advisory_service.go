package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/device-cost-service/internal/domain"
	"github.com/spec-kit/device-cost-service/internal/events"
	"github.com/spec-kit/device-cost-service/internal/repository"
	"github.com/spec-kit/device-cost-service/internal/valuation"
)

// AdvisoryService sweeps all products and flags the ones due for replacement.
type AdvisoryService struct {
	products   repository.ProductRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewAdvisoryService builds the sweep.
func NewAdvisoryService(products repository.ProductRepository, dispatcher events.Dispatcher, logger *zap.Logger) *AdvisoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdvisoryService{products: products, dispatcher: dispatcher, logger: logger, now: time.Now}
}

// Sweep publishes a lifespan advisory for every in-use or idle product whose
// progress reached the upgrade threshold. It returns the number flagged.
func (s *AdvisoryService) Sweep(ctx context.Context) (int, error) {
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	flagged := 0
	for _, p := range products {
		if p.Status != domain.ProductStatusInUse && p.Status != domain.ProductStatusIdle {
			continue
		}
		v := valuation.Evaluate(p, now)
		if !v.UpgradeSuggested {
			continue
		}
		flagged++
		event := events.NewEvent(events.EventLifespanAdvisory, p.UserID, p.ID, events.LifespanAdvisoryPayload{
			Name:     p.Name,
			Progress: v.Progress,
			Message:  v.Message,
		})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("advisory handler failed", zap.String("product_id", p.ID), zap.Error(err))
		}
	}
	s.logger.Info("lifespan advisory sweep finished",
		zap.Int("products", len(products)), zap.Int("flagged", flagged))
	return flagged, nil
}
