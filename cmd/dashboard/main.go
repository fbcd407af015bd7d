package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/couchcryptid/sf-danger-zones/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/sf-danger-zones/internal/adapter/kafka"
	"github.com/couchcryptid/sf-danger-zones/internal/adapter/mapbox"
	"github.com/couchcryptid/sf-danger-zones/internal/adapter/xlsx"
	"github.com/couchcryptid/sf-danger-zones/internal/config"
	"github.com/couchcryptid/sf-danger-zones/internal/observability"
	"github.com/couchcryptid/sf-danger-zones/internal/pipeline"
	"github.com/couchcryptid/sf-danger-zones/internal/render"
	"github.com/couchcryptid/sf-danger-zones/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Error("dashboard stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The workbook is read once up front; a bad file stops the process.
	st := store.New(xlsx.NewFileLoader(cfg.DataFile, logger), clock, logger, metrics)
	if _, err := st.Snapshot(ctx); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}

	// Map token (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var mapSettings render.MapSettings
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		client.Verify(ctx)
		mapSettings = render.MapSettings{Token: cfg.MapboxToken, Style: cfg.MapboxStyle}
		logger.Info("map enabled", "style", cfg.MapboxStyle, "zoom", cfg.MapZoom)
	} else {
		logger.Info("map disabled, no access token configured")
	}

	var exporter pipeline.Exporter
	if cfg.ExportEnabled() {
		writer := kafkaadapter.NewWriter(cfg, clock, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		exporter = writer
		logger.Info("incident export enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	dash := pipeline.New(st, exporter, pipeline.Settings{
		MapZoom:          cfg.MapZoom,
		PreviewRows:      cfg.PreviewRows,
		SummaryCacheSize: cfg.SummaryCacheSize,
	}, logger, metrics)

	pages, err := render.New(mapSettings, exporter != nil)
	if err != nil {
		return err
	}

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:           cfg.HTTPAddr,
		WSMessageRate:  cfg.WSMessageRate,
		WSMessageBurst: cfg.WSMessageBurst,
	}, dash, pages, st, st, metrics, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cfg.ReloadSchedule != "" {
		scheduler, err := newReloadScheduler(cfg.ReloadSchedule, st, logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			scheduler.Start()
			<-gctx.Done()
			<-scheduler.Stop().Done()
			return nil
		})
		logger.Info("source change detection scheduled", "schedule", cfg.ReloadSchedule)
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
