package localstore

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const mirrorPutTimeout = 5 * time.Second

// Secondary is a larger-capacity store fed only by the Mirror.
type Secondary interface {
	Put(ctx context.Context, key string, data []byte) error
}

type mirrorWrite struct {
	key  string
	data []byte
}

// Mirror copies writes into a Secondary from a background goroutine.
// Enqueue never blocks and no failure reaches the writer.
type Mirror struct {
	secondary Secondary
	queue     chan mirrorWrite
	logger    *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewMirror creates a mirror with a queue of size entries.
func NewMirror(secondary Secondary, size int, logger *zap.Logger) *Mirror {
	if size <= 0 {
		size = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror{
		secondary: secondary,
		queue:     make(chan mirrorWrite, size),
		logger:    logger,
	}
}

// Start drains the queue until Close.
func (m *Mirror) Start(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for w := range m.queue {
			m.put(ctx, w)
		}
	}()
}

func (m *Mirror) put(ctx context.Context, w mirrorWrite) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("mirror write panicked", zap.String("key", w.key), zap.Any("panic", r))
		}
	}()
	putCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorPutTimeout)
	defer cancel()
	if err := m.secondary.Put(putCtx, w.key, w.data); err != nil {
		m.logger.Warn("mirror write failed", zap.String("key", w.key), zap.Error(err))
	}
}

// Enqueue schedules a copy. It reports false when the write was dropped.
func (m *Mirror) Enqueue(key string, data []byte) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return false
	}
	select {
	case m.queue <- mirrorWrite{key: key, data: append([]byte(nil), data...)}:
		return true
	default:
		m.logger.Warn("mirror queue full; dropping write", zap.String("key", key))
		return false
	}
}

// Close stops accepting writes and waits for queued ones to finish.
func (m *Mirror) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.queue)
	m.mu.Unlock()
	m.wg.Wait()
}
