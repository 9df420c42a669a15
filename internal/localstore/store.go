package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Options wires the tiers of a Store.
type Options struct {
	Primary Tier
	// Backup defaults to Primary; backup copies always use the _backup key.
	Backup Tier
	// Mirror is optional.
	Mirror *Mirror
	Logger *zap.Logger
}

// Store is the durable local store shared by all consumers of a process.
type Store struct {
	primary Tier
	backup  Tier
	mirror  *Mirror
	logger  *zap.Logger

	// serializes read-modify-write cycles inside this process
	mu sync.Mutex
}

// New builds a Store. Primary is required.
func New(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	backup := opts.Backup
	if backup == nil {
		backup = opts.Primary
	}
	return &Store{
		primary: opts.Primary,
		backup:  backup,
		mirror:  opts.Mirror,
		logger:  logger,
	}
}

// load tries the primary then the backup tier. decode must not keep partial state on error.
func (s *Store) load(ctx context.Context, key string, decode func([]byte) error) bool {
	locations := []struct {
		tier Tier
		key  string
	}{
		{s.primary, key},
		{s.backup, key + BackupSuffix},
	}
	for _, loc := range locations {
		data, err := loc.tier.Get(ctx, loc.key)
		if errors.Is(err, ErrMiss) {
			continue
		}
		if err != nil {
			s.logger.Warn("local store read failed",
				zap.String("tier", loc.tier.Name()), zap.String("key", loc.key), zap.Error(err))
			continue
		}
		if err := decode(data); err != nil {
			s.logger.Warn("local store value unreadable",
				zap.String("tier", loc.tier.Name()), zap.String("key", loc.key), zap.Error(err))
			continue
		}
		return true
	}
	return false
}

// save writes primary then backup; a failure on one tier never skips the other.
func (s *Store) save(ctx context.Context, key string, data []byte) {
	if err := s.primary.Set(ctx, key, data); err != nil {
		s.logger.Error("local store write failed",
			zap.String("tier", s.primary.Name()), zap.String("key", key), zap.Error(err))
	}
	if err := s.backup.Set(ctx, key+BackupSuffix, data); err != nil {
		s.logger.Error("local store write failed",
			zap.String("tier", s.backup.Name()), zap.String("key", key+BackupSuffix), zap.Error(err))
	}
	if s.mirror != nil {
		s.mirror.Enqueue(key, data)
	}
}

// Value is a typed handle on one logical key.
type Value[T any] struct {
	store *Store
	key   string
	def   T
}

// NewValue binds key on store. def is returned when no tier holds a readable value.
func NewValue[T any](store *Store, key string, def T) *Value[T] {
	return &Value[T]{store: store, key: key, def: def}
}

// Key returns the logical key.
func (v *Value[T]) Key() string { return v.key }

// Read returns the stored value, falling back to the backup copy and then the default.
func (v *Value[T]) Read(ctx context.Context) T {
	out, ok := v.read(ctx)
	if !ok {
		return v.def
	}
	return out
}

func (v *Value[T]) read(ctx context.Context) (T, bool) {
	var out T
	ok := v.store.load(ctx, v.key, func(data []byte) error {
		var decoded T
		if err := json.Unmarshal(data, &decoded); err != nil {
			return err
		}
		out = decoded
		return nil
	})
	return out, ok
}

// Write persists value to both tiers and schedules the mirror copy.
func (v *Value[T]) Write(ctx context.Context, value T) {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	v.write(ctx, value)
}

func (v *Value[T]) write(ctx context.Context, value T) {
	data, err := json.Marshal(value)
	if err != nil {
		v.store.logger.Error("local store encode failed", zap.String("key", v.key), zap.Error(err))
		return
	}
	v.store.save(ctx, v.key, data)
}

// Update reads the current value, applies fn and writes the result.
func (v *Value[T]) Update(ctx context.Context, fn func(T) T) T {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	current, ok := v.read(ctx)
	if !ok {
		current = v.def
	}
	next := fn(current)
	v.write(ctx, next)
	return next
}
