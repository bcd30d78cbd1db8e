package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"golang.org/x/sync/errgroup"

	"prfcli/internal/config"
	apperrors "prfcli/internal/errors"
	"prfcli/internal/infrastructure"
	"prfcli/internal/services"
	handlers "prfcli/internal/transport/http"
	"prfcli/pkg/contracts"
)

// Application represents the dashboard server container
type Application struct {
	Config    *config.Config
	Paths     *config.Paths
	Logger    *slog.Logger
	Metrics   *infrastructure.Metrics
	Dashboard *services.DashboardService
	Health    *services.HealthService
	Router    http.Handler
	Server    *http.Server
}

// NewApplication loads the cleaned table at tablePath (the configured
// checkpoint when empty) and wires the dashboard API around it.
func NewApplication(ctx context.Context, cfg *config.Config, paths *config.Paths, tablePath string, metrics *infrastructure.Metrics, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if paths == nil {
		paths = config.NewPaths(cfg)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tablePath == "" {
		tablePath = paths.CleanedTable
	}
	if !config.FileExists(tablePath) {
		return nil, apperrors.NewConfigurationError("cleaned table not found; run the clean command first", tablePath, nil)
	}

	dashboard, err := services.LoadDashboardService(ctx, tablePath, cfg.Output.Separator(), logger)
	if err != nil {
		return nil, err
	}

	a := &Application{
		Config:    cfg,
		Paths:     paths,
		Logger:    infrastructure.WithComponent(logger, "app"),
		Metrics:   metrics,
		Dashboard: dashboard,
		Health:    services.NewHealthService(dashboard),
	}
	a.Router = handlers.NewRouter(handlers.RouterDeps{
		Dashboard: dashboard,
		Health:    a.Health,
		Metrics:   metrics,
		Server:    cfg.Server,
		Logger:    logger,
	})
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return a, nil
}

// Run listens on the configured port and serves until ctx is cancelled
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled or the server fails, then shuts
// down gracefully within the configured timeout.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(ctx, "Dashboard listening",
			slog.String("address", ln.Addr().String()),
			slog.String("version", contracts.Version),
			slog.Int("rows", a.Dashboard.Rows()))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.WithoutCancel(ctx))
	})

	return g.Wait()
}

// Stop gracefully stops the server
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down dashboard")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	a.Logger.InfoContext(ctx, "Dashboard shutdown complete")
	return nil
}
