package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/device-cost-service/internal/config"
	"github.com/spec-kit/device-cost-service/internal/events"
	"github.com/spec-kit/device-cost-service/internal/service"
)

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("09:05")
	require.NoError(t, err)
	assert.Equal(t, "0 5 9 * * *", spec)

	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd", "1:2:3"} {
		_, err := buildDailySpec(bad)
		assert.Error(t, err, bad)
	}
}

type countingSweeper struct {
	calls int
	err   error
}

func (c *countingSweeper) Sweep(ctx context.Context) (int, error) {
	c.calls++
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("sweep without deadline")
	}
	return 1, c.err
}

func TestAdvisoryScheduler(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	sweeper := &countingSweeper{}
	s := NewAdvisoryScheduler(sweeper, time.UTC, zap.New(core))

	id, err := s.ScheduleDaily("03:30")
	require.NoError(t, err)
	assert.NotZero(t, id)
	_, err = s.ScheduleDaily("bad")
	assert.Error(t, err)

	s.RunOnce()
	assert.Equal(t, 1, sweeper.calls)
	assert.Zero(t, logs.Len())

	sweeper.err = errors.New("db down")
	s.RunOnce()
	assert.Equal(t, 1, logs.Len())

	s.Start()
	s.Stop()
}

func TestStartNotificationWorker(t *testing.T) {
	workerCore, workerLogs := observer.New(zap.InfoLevel)
	assert.Nil(t, StartNotificationWorker(nil, zap.New(workerCore)))
	require.Equal(t, 1, workerLogs.Len())
	assert.Equal(t, "notification worker disabled", workerLogs.All()[0].Message)

	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	subscribed := StartNotificationWorker(service.NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{}), zap.New(workerCore))
	assert.ElementsMatch(t, []events.EventType{
		events.EventProductAdded, events.EventProductUpdated,
		events.EventProductDeleted, events.EventLifespanAdvisory,
	}, subscribed)
	require.Equal(t, 2, workerLogs.Len())
	assert.Equal(t, "notification worker started", workerLogs.All()[1].Message)

	require.NoError(t, dispatcher.Publish(context.Background(),
		events.NewEvent(events.EventLifespanAdvisory, "u1", "p1", events.LifespanAdvisoryPayload{Name: "Phone", Progress: 90})))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "LifespanAdvisory", logs.All()[0].Message)
}
