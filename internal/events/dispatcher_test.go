package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_PublishReachesAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")
	var seen []string

	d.Subscribe(EventProductAdded, func(_ context.Context, e Event) error {
		seen = append(seen, "first:"+e.ProductID)
		return boom
	})
	d.Subscribe(EventProductAdded, func(_ context.Context, e Event) error {
		seen = append(seen, "second:"+e.ProductID)
		return nil
	})
	d.Subscribe(EventProductDeleted, func(context.Context, Event) error {
		seen = append(seen, "deleted")
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventProductAdded, "u1", "p1", ProductAddedPayload{Name: "Phone"}))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first:p1", "second:p1"}, seen)
}

func TestDispatcher_NoListeners(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), NewEvent(EventLifespanAdvisory, "u1", "p1", nil)))
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(EventProductUpdated, "u1", "p1", ProductUpdatedPayload{Fields: []string{"name"}})
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, EventProductUpdated, e.Type)
	assert.False(t, e.Timestamp.IsZero())
}
