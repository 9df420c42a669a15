package service

import (
	"bytes"
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/device-cost-service/internal/domain"
	"github.com/spec-kit/device-cost-service/internal/report"
	"github.com/spec-kit/device-cost-service/internal/valuation"
	apperrors "github.com/spec-kit/device-cost-service/pkg/util/errorutil"
)

// ImagePublisher stores a rendered image and returns where to fetch it.
type ImagePublisher interface {
	Publish(ctx context.Context, userID string, png []byte) (*report.Published, error)
}

// ShareService builds the shareable summary and image of a user's devices.
type ShareService struct {
	products  *ProductService
	renderer  *report.Renderer
	publisher ImagePublisher
	logger    *zap.Logger
}

// NewShareService wires the share export. publisher may be nil when object storage is not configured.
func NewShareService(products *ProductService, renderer *report.Renderer, publisher ImagePublisher, logger *zap.Logger) *ShareService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShareService{products: products, renderer: renderer, publisher: publisher, logger: logger}
}

// Summary returns the statistics shown at the top of the share image.
func (s *ShareService) Summary(ctx context.Context, userID string) (valuation.Summary, error) {
	_, summary, err := s.products.Summary(ctx, userID)
	return summary, err
}

// Image renders the user's device list as PNG.
func (s *ShareService) Image(ctx context.Context, user *domain.User) ([]byte, error) {
	views, summary, err := s.products.List(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	rep := report.Report{Owner: user.Name, Summary: summary}
	for _, v := range views {
		rep.Items = append(rep.Items, report.Item{Product: v.Product, Valuation: v.Valuation})
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, rep); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return buf.Bytes(), nil
}

// Publish renders the image and uploads it.
func (s *ShareService) Publish(ctx context.Context, user *domain.User) (*report.Published, error) {
	if s.publisher == nil {
		return nil, apperrors.NewUnavailable("share publishing is not configured")
	}
	img, err := s.Image(ctx, user)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	published, err := s.publisher.Publish(ctx, user.ID, img)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("share image published",
		zap.String("user_id", user.ID),
		zap.String("key", published.Key),
		zap.Int("bytes", len(img)),
		zap.Duration("took", time.Since(started)))
	return published, nil
}
