package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/device-cost-service/internal/events"
)

func TestAdvisoryService_Sweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	worn, err := f.product.Add(ctx, "u1", ProductInput{Name: "Worn phone", Category: "phone", Price: 2000,
		PurchaseDate: "2023-09-01", ExpectedLifespanYears: intPtr(2)})
	require.NoError(t, err)
	_, err = f.product.Add(ctx, "u2", ProductInput{Name: "Sold phone", Category: "phone", Price: 2000,
		Status: "sold", PurchaseDate: "2020-01-01", ExpectedLifespanYears: intPtr(2)})
	require.NoError(t, err)
	_, err = f.product.Add(ctx, "u1", ProductInput{Name: "New laptop", Category: "computer", Price: 9000,
		PurchaseDate: "2025-05-01", ExpectedLifespanYears: intPtr(5)})
	require.NoError(t, err)

	advisory := NewAdvisoryService(f.products, f.product.dispatcher, nil)
	advisory.now = f.product.now

	flagged, err := advisory.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, flagged)

	var advisories []events.Event
	for _, e := range f.events.events {
		if e.Type == events.EventLifespanAdvisory {
			advisories = append(advisories, e)
		}
	}
	require.Len(t, advisories, 1)
	assert.Equal(t, worn.ID, advisories[0].ProductID)
	payload := advisories[0].Payload.(events.LifespanAdvisoryPayload)
	assert.Equal(t, 88, payload.Progress)
	assert.Equal(t, "NEAR_END", string(payload.Message))
}

