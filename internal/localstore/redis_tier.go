package localstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisTier stores values as plain Redis strings under a key prefix.
type RedisTier struct {
	name   string
	client *redis.Client
	prefix string
}

// NewRedisTier wraps client. prefix namespaces every key.
func NewRedisTier(name string, client *redis.Client, prefix string) *RedisTier {
	return &RedisTier{name: name, client: client, prefix: prefix}
}

func (r *RedisTier) Name() string { return r.name }

func (r *RedisTier) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (r *RedisTier) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *RedisTier) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}
