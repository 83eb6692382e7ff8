// Package backup periodically exports the calculator document to disk.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/upg/internal/adapters/codec"
	"github.com/okian/upg/pkg/logger"
	"github.com/okian/upg/pkg/metrics"
	"github.com/robfig/cron/v3"
)

const (
	filePrefix = "upg-backup-"
	// timeLayout sorts lexically in time order.
	timeLayout = "20060102T150405.000000000Z"

	defaultKeep = 7
	jobTimeout  = time.Minute
)

// Exporter produces the encoded document.
type Exporter interface {
	Export(ctx context.Context, f codec.Format) ([]byte, error)
}

// Scheduler runs backups on a cron schedule.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	running bool

	source Exporter
	dir    string
	keep   int
	format codec.Format
	now    func() time.Time
	logger logger.Logger
}

// New creates a scheduler for a standard 5-field cron expression.
func New(schedule string, source Exporter, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		source: source,
		dir:    "backups",
		keep:   defaultKeep,
		format: codec.FormatJSON,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("backup")
	}

	id, err := s.cron.AddFunc(schedule, s.job)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, schedule, err)
	}
	s.entryID = id
	return s, nil
}

// Start begins cron execution.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	s.logger.Info(ctx, "backup scheduler started",
		logger.String("dir", s.dir),
		logger.Int("keep", s.keep),
		logger.String("format", string(s.format)),
		logger.String("next", s.Next().Format(time.RFC3339)),
	)
}

// Stop stops the scheduler and waits for a running backup to finish or ctx
// to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop backup scheduler: %w", ctx.Err())
	}
}

// Next reports when the next backup is due.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entryID).Next
}

func (s *Scheduler) job() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error(ctx, "scheduled backup failed", logger.Error(err))
	}
}

// RunOnce writes one backup now and prunes old ones. It returns the path of
// the new file.
func (s *Scheduler) RunOnce(ctx context.Context) (string, error) {
	path, err := s.write(ctx)
	if err != nil {
		metrics.RecordBackupError()
		metrics.RecordErrorByComponent("backup", "write")
		return "", err
	}
	if err := s.prune(); err != nil {
		s.logger.Warn(ctx, "pruning old backups failed", logger.Error(err))
	}
	return path, nil
}

func (s *Scheduler) write(ctx context.Context) (string, error) {
	data, err := s.source.Export(ctx, s.format)
	if err != nil {
		return "", fmt.Errorf("%w: export: %w", ErrBackup, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBackup, err)
	}

	now := s.now().UTC()
	path := filepath.Join(s.dir, filePrefix+now.Format(timeLayout)+"."+s.format.Ext())
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBackup, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("%w: %w", ErrBackup, err)
	}

	metrics.RecordBackup(now.Unix())
	s.logger.Info(ctx, "backup written",
		logger.String("path", path),
		logger.Int("bytes", len(data)),
	)
	return path, nil
}

// prune removes all but the newest keep backups.
func (s *Scheduler) prune() error {
	files, err := s.List()
	if err != nil {
		return err
	}
	if len(files) <= s.keep {
		return nil
	}
	for _, f := range files[:len(files)-s.keep] {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// List returns existing backup files, oldest first.
func (s *Scheduler) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || strings.HasSuffix(name, ".tmp") {
			continue
		}
		out = append(out, filepath.Join(s.dir, name))
	}
	sort.Strings(out)
	return out, nil
}
