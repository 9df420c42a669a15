package service

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/device-cost-service/internal/domain"
	"github.com/spec-kit/device-cost-service/internal/report"
)

type stubPublisher struct {
	err    error
	userID string
	size   int
}

func (s *stubPublisher) Publish(_ context.Context, userID string, img []byte) (*report.Published, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.userID, s.size = userID, len(img)
	return &report.Published{Key: "share/" + userID + ".png", URL: "https://example/x", ExpiresAt: fixedNow.Add(time.Hour)}, nil
}

func TestShareService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := &domain.User{ID: "u1", Name: "alice"}
	_, err := f.product.Add(ctx, "u1", ProductInput{Name: "Phone", Category: "phone", Price: 3650,
		PurchaseDate: "2024-06-01", ExpectedLifespanYears: intPtr(2)})
	require.NoError(t, err)

	renderer := report.NewRenderer(480)

	t.Run("summary", func(t *testing.T) {
		share := NewShareService(f.product, renderer, nil, nil)
		summary, err := share.Summary(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Count)
		assert.Equal(t, 10.0, summary.TotalDailyCost)
	})

	t.Run("image", func(t *testing.T) {
		share := NewShareService(f.product, renderer, nil, nil)
		img, err := share.Image(ctx, user)
		require.NoError(t, err)
		decoded, err := png.Decode(bytes.NewReader(img))
		require.NoError(t, err)
		assert.Equal(t, 480, decoded.Bounds().Dx())
		assert.Equal(t, renderer.Height(1), decoded.Bounds().Dy())
	})

	t.Run("publish without storage", func(t *testing.T) {
		share := NewShareService(f.product, renderer, nil, nil)
		requireCode(t, errOf(share.Publish(ctx, user)), "UNAVAILABLE")
	})

	t.Run("publish", func(t *testing.T) {
		pub := &stubPublisher{}
		share := NewShareService(f.product, renderer, pub, nil)
		got, err := share.Publish(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, "share/u1.png", got.Key)
		assert.Equal(t, "u1", pub.userID)
		assert.Positive(t, pub.size)
	})

	t.Run("publish failure", func(t *testing.T) {
		share := NewShareService(f.product, renderer, &stubPublisher{err: errors.New("s3 down")}, nil)
		requireCode(t, errOf(share.Publish(ctx, user)), "INTERNAL_ERROR")
	})
}
