// Package localstore keeps small keyed values durable across restarts.
//
// Every write lands on a primary tier under the logical key and on a backup
// tier under key+"_backup". Reads fall back from primary to backup to the
// caller's default. A secondary store receives a best-effort copy through a
// background mirror and is never consulted by reads.
package localstore

import (
	"context"
	"errors"
	"sync"
)

// BackupSuffix is appended to a logical key on the backup tier.
const BackupSuffix = "_backup"

// ErrMiss is returned by a Tier when the key holds no value.
var ErrMiss = errors.New("localstore: key not found")

// Tier is one synchronous key-value location.
type Tier interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryTier is a process-local Tier.
type MemoryTier struct {
	name string
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryTier returns an empty in-memory tier.
func NewMemoryTier(name string) *MemoryTier {
	return &MemoryTier{name: name, data: make(map[string][]byte)}
}

func (m *MemoryTier) Name() string { return m.name }

func (m *MemoryTier) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrMiss
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryTier) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryTier) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
