package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/veo1/catalog-api/app/catalog"
	"github.com/veo1/catalog-api/app/categories"
	"github.com/veo1/catalog-api/app/config"
	"github.com/veo1/catalog-api/app/database"
	"github.com/veo1/catalog-api/app/events"
	"github.com/veo1/catalog-api/app/logger"
	"github.com/veo1/catalog-api/app/lowstock"
	"github.com/veo1/catalog-api/app/server"
	"github.com/veo1/catalog-api/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logr, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	db, err := database.Open(cfg.Database, logr)
	if err != nil {
		logr.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logr.WithError(err).Error("close database")
		}
	}()

	// Repositories
	categoriesRepo := models.NewCategoriesRepository(db, logr)
	productsRepo := models.NewProductsRepository(db, logr, events.NewLogSink(logr))
	usersRepo := models.NewUsersRepository(db)
	notificationsRepo := models.NewNotificationsRepository(db)

	// Handlers
	handler := server.NewHandler(
		catalog.NewCatalogHandler(productsRepo, logr),
		categories.NewCategoryHandler(categoriesRepo, logr),
		logr,
	)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logr.Infof("Starting server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logr.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.LowStock.Enabled {
		scanner := lowstock.NewScanner(productsRepo, usersRepo, notificationsRepo, cfg.LowStock.Threshold, logr)
		g.Go(func() error {
			return scanner.Start(gctx, cfg.LowStock.Interval)
		})
	}

	if err := g.Wait(); err != nil {
		logr.WithError(err).Error("server stopped with error")
		return
	}
	logr.Info("Server exited")
}
