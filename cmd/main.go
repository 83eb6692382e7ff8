package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/upg/internal/adapters/backup"
	"github.com/okian/upg/internal/adapters/codec"
	"github.com/okian/upg/internal/adapters/http/api"
	"github.com/okian/upg/internal/adapters/repository"
	"github.com/okian/upg/internal/app"
	"github.com/okian/upg/internal/config"
	"github.com/okian/upg/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// logger isn't configured yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, nil); err != nil {
		logger.Get().Error(context.Background(), "upg stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

// run starts the calculator and serves until ctx ends. When ready is not nil
// it receives the bound listen address once the server accepts connections.
func run(ctx context.Context, cfg *config.Config, ready chan<- string) error {
	log := logger.Get()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(context.Background(), "closing store failed", logger.Error(err))
		}
	}()

	ctrl := app.New(
		app.WithLogger(log.Named("controller")),
		app.WithStore(store),
		app.WithStorageKey(cfg.StorageKey),
		app.WithQueueSize(cfg.PersistQueueSize),
	)
	if err := ctrl.Start(ctx); err != nil {
		return fmt.Errorf("start controller: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := ctrl.Stop(stopCtx); err != nil {
			log.Error(stopCtx, "controller stop failed", logger.Error(err))
		}
	}()

	if cfg.BackupSchedule != "" {
		sched, err := backup.New(cfg.BackupSchedule, ctrl,
			backup.WithDir(cfg.BackupDir),
			backup.WithKeep(cfg.BackupKeep),
			backup.WithFormat(codec.Format(cfg.BackupFormat)),
			backup.WithLogger(log.Named("backup")),
		)
		if err != nil {
			return err
		}
		sched.Start(ctx)
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := sched.Stop(stopCtx); err != nil {
				log.Error(stopCtx, "backup scheduler stop failed", logger.Error(err))
			}
		}()
	}

	apiServer := api.NewServer(ctrl, ctrl,
		api.WithLogger(log.Named("http")),
		api.WithCORSOrigins(cfg.CORSAllowedOrigins),
	)
	srv := &http.Server{
		Handler:           apiServer.Handler(ctx),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}
	log.Info(ctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
	if ready != nil {
		ready <- ln.Addr().String()
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "server stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	driver, err := repository.ParseDriver(cfg.StoreDriver)
	if err != nil {
		return nil, err
	}
	store, err := repository.Open(ctx, driver,
		repository.WithPath(cfg.StorePath),
		repository.WithDSN(cfg.StoreDSN),
	)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	return store, nil
}
