package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/briefd/internal/assembly"
	"github.com/fyrsmithlabs/briefd/internal/embeddings"
	briefdhttp "github.com/fyrsmithlabs/briefd/internal/http"
	"github.com/fyrsmithlabs/briefd/internal/logging"
	"github.com/fyrsmithlabs/briefd/internal/memorystore"
	"github.com/fyrsmithlabs/briefd/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the briefd daemon",
	Long: `Start the briefd HTTP daemon.

The daemon serves POST /api/v1/context/assemble and GET /health. All
settings come from the optional --config file and BRIEFD-style environment
variables; by default it runs against the embedded chromem store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.New(ctx, telemetry.FromObservability(cfg.Observability))
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			logger.Warn(context.Background(), "telemetry shutdown failed", zap.Error(err))
		}
	}()

	embedder, err := embeddings.NewService(cfg.Embeddings)
	if err != nil {
		return fmt.Errorf("initializing embedding service: %w", err)
	}

	store, err := memorystore.New(cfg.MemoryStore, embedder, logger)
	if err != nil {
		return fmt.Errorf("initializing memory store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn(context.Background(), "memory store close failed", zap.Error(err))
		}
	}()

	assembler := assembly.NewAssembler(store, logger)

	server, err := briefdhttp.NewServer(assembler, logger, &briefdhttp.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	logger.Info(ctx, "starting briefd",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("memorystore", cfg.MemoryStore.Provider),
		zap.Bool("telemetry", tel.IsEnabled()))

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	logger.Info(context.Background(), "briefd shutdown complete")
	return nil
}
