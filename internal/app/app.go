package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/pokedex-backend/internal/config"
	"github.com/heartmarshall/pokedex-backend/internal/service/enrichment"
	"github.com/heartmarshall/pokedex-backend/internal/transport/middleware"
	"github.com/heartmarshall/pokedex-backend/internal/transport/rest"
)

// Run is the server entry point. It wires the services, loads the first
// backend page, starts background enrichment and serves HTTP until ctx is
// cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config) error {
	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("storage", cfg.Storage.Driver),
	)

	core, err := NewCore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := core.Close(); err != nil {
			logger.Error("close storage", slog.String("error", err.Error()))
		}
	}()

	// The list stays usable with custom records only when the backend is down.
	if err := core.Catalog.EnsurePage(ctx, 1); err != nil {
		logger.Warn("initial page unavailable", slog.String("error", err.Error()))
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
	defer limiter.Stop()

	events := rest.NewEventsHandler(core.Catalog, cfg.CORS.AllowedOrigins, logger)

	router := rest.NewRouter(rest.Handlers{
		Health:  rest.NewHealthHandler(core, core.Enrichment, Version),
		Pokemon: rest.NewPokemonHandler(core.Store, core.Catalog, core.Resolver, core.Enrichment, logger),
		Meta:    rest.NewMetaHandler(core.Catalog, core.Enrichment, logger),
		Events:  events,
	}, limiter, rest.RouterConfig{
		CORS:            cfg.CORS,
		WritesPerMinute: cfg.RateLimit.WritesPerMinute,
		Languages:       cfg.Catalog.Languages,
	}, logger)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cfg.Enrichment.Enabled {
		g.Go(func() error {
			err := core.Enrichment.Run(gctx)
			// A failed or cancelled run degrades the list; it never stops the server.
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, enrichment.ErrAlreadyRunning) {
				logger.Warn("enrichment stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		events.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("stopped")
	return nil
}
