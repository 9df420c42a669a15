package localstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisTier(t *testing.T) (*RedisTier, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisTier("redis", client, "test:"), mr
}

func TestRedisTier_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	tier, mr := newRedisTier(t)

	_, err := tier.Get(ctx, "k")
	require.ErrorIs(t, err, ErrMiss)

	require.NoError(t, tier.Set(ctx, "k", []byte(`{"a":1}`)))
	got, err := tier.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))
	assert.True(t, mr.Exists("test:k"))

	require.NoError(t, tier.Delete(ctx, "k"))
	_, err = tier.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisTier_BackupSurvivesPrimaryLoss(t *testing.T) {
	ctx := context.Background()
	tier, mr := newRedisTier(t)
	store := New(Options{Primary: tier})
	v := NewValue[map[string]int](store, "totals", nil)

	v.Write(ctx, map[string]int{"phones": 2})
	mr.Del("test:totals")

	assert.Equal(t, map[string]int{"phones": 2}, v.Read(ctx))
}

func TestRedisTier_UnavailableServerFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	tier, mr := newRedisTier(t)
	store := New(Options{Primary: tier})
	v := NewValue(store, "user", "nobody")

	mr.Close()
	v.Write(ctx, "alice")

	assert.Equal(t, "nobody", v.Read(ctx))
}
