// Package app wires configuration, logging, storage, services, and the
// HTTP transport into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spendview/catalog-backend/internal/adapter/postgres"
	badgerepo "github.com/spendview/catalog-backend/internal/adapter/postgres/badge"
	datasetrepo "github.com/spendview/catalog-backend/internal/adapter/postgres/dataset"
	"github.com/spendview/catalog-backend/internal/config"
	"github.com/spendview/catalog-backend/internal/service/catalog"
	"github.com/spendview/catalog-backend/internal/service/search"
	"github.com/spendview/catalog-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// the database, assembles the services and HTTP router, and serves until
// ctx is canceled, then shuts down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.Int("facet_dimensions", len(cfg.Catalog.Dimensions)),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	datasets := datasetrepo.New(pool)
	badges := badgerepo.New(pool)
	tx := postgres.NewTxManager(pool)

	searchSvc := search.NewService(logger, datasets, badges, cfg.Catalog)
	catalogSvc := catalog.NewService(logger, datasets, badges, tx, cfg.Catalog)

	router := rest.NewRouter(
		logger,
		cfg.CORS,
		rest.NewHealthHandler(pool, BuildVersion()),
		rest.NewSearchHandler(logger, searchSvc),
		rest.NewCatalogHandler(logger, catalogSvc),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}
