// Package app holds the controller: the single owner of the grade
// calculator document.
//
// Every operation runs under one mutex, so edits are applied one at a time.
// After each successful mutation the whole document is encoded and handed to
// the persist queue tagged with a new sequence number; a single writer
// stores it and never lets an older snapshot replace a newer one.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/upg/internal/adapters/codec"
	"github.com/okian/upg/internal/adapters/mq/queue"
	"github.com/okian/upg/internal/adapters/mq/worker"
	"github.com/okian/upg/internal/adapters/repository"
	"github.com/okian/upg/internal/domain/grading"
	"github.com/okian/upg/internal/domain/model"
	"github.com/okian/upg/internal/domain/types"
	"github.com/okian/upg/pkg/logger"
	"github.com/okian/upg/pkg/metrics"
)

// Defaults.
const (
	DefaultStorageKey = "upg-calculator:v1"
	defaultQueueSize  = 64
)

// Controller owns the document and sequences load, mutate, persist and report.
type Controller struct {
	mu sync.Mutex

	state *model.State
	seq   uint64

	store     repository.Store
	key       string
	queueSize int
	queue     *queue.InMemoryQueue
	writer    *worker.Writer

	started    bool
	startedAt  time.Time
	mutations  uint64
	syncWrites uint64

	logger logger.Logger
}

// New constructs a Controller. Start must be called before use.
func New(opts ...Option) *Controller {
	c := &Controller{
		key:       DefaultStorageKey,
		queueSize: defaultQueueSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("controller")
	}
	if c.store == nil {
		c.store = repository.NewMemoryStore()
	}
	return c
}

// Start loads the stored document, or the seed document when nothing usable
// is stored, and starts the persistence writer. A stored document that fails
// to decode is logged and replaced by the seed.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}
	c.logger.Info(ctx, "starting controller", logger.String("key", c.key))

	state, seeded, err := c.load(ctx)
	if err != nil {
		return err
	}
	c.state = state

	c.queue = queue.NewInMemoryQueue(queue.WithCapacity(c.queueSize))
	c.writer = worker.NewWriter(c.queue, c.store, c.key, worker.WithLogger(c.logger), worker.WithName("writer"))
	// the writer outlives request contexts; Stop ends it by closing the queue
	go c.writer.Run(context.WithoutCancel(ctx))

	c.started = true
	c.startedAt = time.Now()
	if seeded {
		c.commitLocked(ctx, "seed")
	} else {
		c.updateGauges()
	}

	c.logger.Info(ctx, "controller started",
		logger.Int("subjects", len(c.state.Subjects)),
		logger.Bool("seeded", seeded),
		logger.Int("queueSize", c.queueSize),
	)
	return nil
}

func (c *Controller) load(ctx context.Context) (*model.State, bool, error) {
	data, err := c.store.Get(ctx, c.key)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Seed(), true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %q: %w", c.key, err)
	}

	state, err := codec.Decode(data, codec.FormatJSON)
	if err != nil {
		c.logger.Warn(ctx, "stored document is unreadable, starting from the seed document",
			logger.String("key", c.key),
			logger.Error(err),
		)
		metrics.RecordErrorByComponent("controller", "malformed_document")
		return model.Seed(), true, nil
	}
	return state, false, nil
}

// Stop drains pending snapshots into the store. Mutations after Stop are
// still applied and written synchronously.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = false
	c.logger.Info(ctx, "stopping controller")
	if err := c.queue.Close(); err != nil {
		c.logger.Error(ctx, "error closing persist queue", logger.Error(err))
	}
	w := c.writer
	c.mu.Unlock()

	if err := w.Shutdown(ctx); err != nil {
		return fmt.Errorf("drain persist queue: %w", err)
	}
	c.logger.Info(ctx, "controller stopped", logger.Uint64("lastSeq", w.LastSeq()))
	return nil
}

// commitLocked persists the current document. Callers hold c.mu.
func (c *Controller) commitLocked(ctx context.Context, op string) {
	c.mutations++
	metrics.RecordMutation(op)
	c.updateGauges()

	data, err := codec.Encode(c.state, codec.FormatJSON)
	if err != nil {
		c.logger.Error(ctx, "encode snapshot failed", logger.String("op", op), logger.Error(err))
		metrics.RecordErrorByComponent("controller", "encode_error")
		return
	}
	c.seq++
	snap := queue.Snapshot{Seq: c.seq, Data: data}

	if err := c.queue.Enqueue(ctx, snap); err == nil {
		return
	}
	// queue full or closed: write through the same writer so ordering holds
	c.syncWrites++
	if _, err := c.writer.Write(context.WithoutCancel(ctx), snap); err != nil {
		c.logger.Error(ctx, "snapshot write failed", logger.String("op", op), logger.Error(err))
	}
}

func (c *Controller) updateGauges() {
	metrics.UpdateSubjectsTotal(len(c.state.Subjects))
	sum := grading.OverallAverage(c.state.Subjects)
	if sum.Count == 0 {
		metrics.ClearOverallAverage()
		return
	}
	metrics.UpdateOverallAverage(sum.Average)
}

// mutate runs fn against the document and persists it when fn succeeds.
func (c *Controller) mutate(ctx context.Context, op string, fn func(s *model.State) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == nil {
		return ErrNotStarted
	}
	if err := fn(c.state); err != nil {
		metrics.RecordErrorByComponent("controller", errorType(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	c.commitLocked(ctx, op)
	c.logger.Debug(ctx, "mutation applied", logger.String("op", op), logger.Uint64("seq", c.seq))
	return nil
}

// view runs fn against the document without persisting.
func (c *Controller) view(fn func(s *model.State) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == nil {
		return ErrNotStarted
	}
	return fn(c.state)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, codec.ErrMalformedDocument):
		return "malformed_document"
	default:
		return "internal"
	}
}

// State returns a copy of the whole document.
func (c *Controller) State(ctx context.Context) (*model.State, error) {
	var out *model.State
	err := c.view(func(s *model.State) error {
		out = s.Clone()
		return nil
	})
	return out, err
}

// Overview computes the cross-subject summary.
func (c *Controller) Overview(ctx context.Context) (types.Overview, error) {
	var out types.Overview
	err := c.view(func(s *model.State) error {
		out = grading.Overview(s.Subjects)
		return nil
	})
	return out, err
}

// Subject computes the report for one subject.
func (c *Controller) Subject(ctx context.Context, id string) (types.SubjectReport, error) {
	var out types.SubjectReport
	err := c.view(func(s *model.State) error {
		subj, err := s.FindSubject(id)
		if err != nil {
			return err
		}
		out = grading.Report(*subj)
		return nil
	})
	return out, err
}

// Export serializes the document.
func (c *Controller) Export(ctx context.Context, f codec.Format) ([]byte, error) {
	var out []byte
	err := c.view(func(s *model.State) error {
		data, err := codec.Encode(s, f)
		if err != nil {
			return err
		}
		out = data
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	metrics.RecordExport(string(f))
	return out, nil
}

// Import replaces the whole document. Malformed input leaves the document
// unchanged and fails with codec.ErrMalformedDocument.
func (c *Controller) Import(ctx context.Context, data []byte, f codec.Format) error {
	imported, err := codec.Decode(data, f)
	if err != nil {
		metrics.RecordErrorByComponent("controller", errorType(err))
		return fmt.Errorf("import: %w", err)
	}
	err = c.mutate(ctx, "import", func(s *model.State) error {
		*s = *imported
		return nil
	})
	if err != nil {
		return err
	}
	metrics.RecordImport(string(f))
	c.logger.Info(ctx, "document imported",
		logger.String("format", string(f)),
		logger.Int("subjects", len(imported.Subjects)),
	)
	return nil
}

// Reset replaces the document with the seed document.
func (c *Controller) Reset(ctx context.Context) error {
	return c.mutate(ctx, "reset", func(s *model.State) error {
		*s = *model.Seed()
		return nil
	})
}

// GetStats returns controller statistics for monitoring.
func (c *Controller) GetStats() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := map[string]any{
		"started":    c.started,
		"storageKey": c.key,
		"store":      fmt.Sprintf("%T", c.store),
		"queueSize":  c.queueSize,
		"mutations":  c.mutations,
		"syncWrites": c.syncWrites,
		"seq":        c.seq,
	}
	if c.state != nil {
		stats["subjects"] = len(c.state.Subjects)
	}
	if c.queue != nil {
		stats["queueLength"] = c.queue.Len()
	}
	if c.writer != nil {
		stats["writer"] = c.writer.Stats()
	}
	if c.started {
		stats["uptimeSeconds"] = int64(time.Since(c.startedAt).Seconds())
	}
	return stats
}
