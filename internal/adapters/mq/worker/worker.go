// Package worker drains the snapshot queue into the persistence store.
//
// A single Writer owns all writes for one storage key. Every snapshot carries
// a sequence number and the writer never lets an older snapshot overwrite a
// newer one, whether it arrives through the queue or through a direct Write.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/upg/internal/adapters/mq/queue"
	"github.com/okian/upg/pkg/logger"
	"github.com/okian/upg/pkg/metrics"
)

// Saver persists a value under a key.
type Saver interface {
	Set(ctx context.Context, key string, value []byte) error
}

// Queue defines how the writer receives snapshots.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Snapshot
}

// Writer persists snapshots in sequence order, skipping stale ones.
type Writer struct {
	queue Queue
	store Saver
	key   string
	name  string

	mu      sync.Mutex
	lastSeq uint64
	written uint64
	skipped uint64
	failed  uint64

	// Shutdown control
	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewWriter creates a writer for key.
func NewWriter(q Queue, store Saver, key string, opts ...Option) *Writer {
	w := &Writer{
		queue:    q,
		store:    store,
		key:      key,
		name:     "writer",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get()
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run writes snapshots until the queue is closed and drained, ctx is
// cancelled or Shutdown gives up waiting.
func (w *Writer) Run(ctx context.Context) {
	defer close(w.done)

	snapshots := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case s, ok := <-snapshots:
			if !ok {
				return
			}
			if _, err := w.Write(ctx, s); err != nil {
				w.logger.Error(ctx, "snapshot write failed",
					logger.Uint64("seq", s.Seq),
					logger.Error(err),
				)
			}
		}
	}
}

// Write stores s unless a snapshot with an equal or higher sequence number
// was already written. It reports whether the store was touched.
func (w *Writer) Write(ctx context.Context, s queue.Snapshot) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if s.Seq <= w.lastSeq {
		w.skipped++
		metrics.RecordPersistStale()
		w.logger.Debug(ctx, "skipping stale snapshot",
			logger.Uint64("seq", s.Seq),
			logger.Uint64("lastSeq", w.lastSeq),
		)
		return false, nil
	}

	start := time.Now()
	if err := w.store.Set(ctx, w.key, s.Data); err != nil {
		w.failed++
		metrics.RecordPersistWriteError()
		metrics.RecordErrorByComponent("writer", "store_error")
		return false, fmt.Errorf("write snapshot %d: %w", s.Seq, err)
	}
	metrics.RecordPersistWrite(float64(time.Since(start).Microseconds()) / 1000)

	w.lastSeq = s.Seq
	w.written++
	return true, nil
}

// LastSeq returns the sequence number of the newest written snapshot.
func (w *Writer) LastSeq() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeq
}

// Stats reports writer counters.
func (w *Writer) Stats() map[string]any {
	w.mu.Lock()
	defer w.mu.Unlock()
	return map[string]any{
		"last_seq": w.lastSeq,
		"written":  w.written,
		"skipped":  w.skipped,
		"failed":   w.failed,
	}
}

// Done is closed when Run returns.
func (w *Writer) Done() <-chan struct{} {
	return w.done
}

// Shutdown waits for Run to drain the queue. Callers close the queue first.
// If ctx expires before the queue is drained, Run is told to stop and the
// remaining snapshots are abandoned.
func (w *Writer) Shutdown(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.shutdownOnce.Do(func() { close(w.shutdown) })
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
