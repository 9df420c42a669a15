package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/device-cost-service/internal/config"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/products", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/products", "GET", 200, 30*time.Millisecond)
	m.RecordError("/products", "POST", "VALIDATION_FAILED")

	s := m.Snapshot()
	assert.Equal(t, int64(2), s.Requests["/products|GET|200"])
	assert.Equal(t, int64(20), s.AvgLatencyMS["/products|GET|200"])
	assert.Equal(t, int64(1), s.Errors["/products|POST|VALIDATION_FAILED"])

	var nilMetrics *Metrics
	nilMetrics.RecordRequest("/x", "GET", 200, time.Millisecond)
	assert.Empty(t, nilMetrics.Snapshot().Requests)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/products/:id", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/products/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "request", entry.Message)
	assert.Equal(t, "/products/abc", entry.ContextMap()["path"])
	assert.Equal(t, int64(1), metrics.Snapshot().Requests["/products/:id|GET|204"])
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "not-a-level"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}
