package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/covid-risk-levels/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/covid-risk-levels/internal/adapter/kafka"
	"github.com/couchcryptid/covid-risk-levels/internal/adapter/memory"
	"github.com/couchcryptid/covid-risk-levels/internal/adapter/postgres"
	"github.com/couchcryptid/covid-risk-levels/internal/chart"
	"github.com/couchcryptid/covid-risk-levels/internal/config"
	"github.com/couchcryptid/covid-risk-levels/internal/domain"
	"github.com/couchcryptid/covid-risk-levels/internal/observability"
	"github.com/couchcryptid/covid-risk-levels/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store domain.SeriesStore
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open postgres store", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		store = pg
		logger.Info("using postgres series store")
	} else {
		store = memory.NewStore()
		logger.Info("using in-memory series store")
	}

	chartOpts := chart.DefaultOptions()
	chartOpts.Width, chartOpts.Height = cfg.ChartWidth, cfg.ChartHeight
	renderer := chart.NewCachedRenderer(chart.NewRenderer(nil), cfg.ChartCacheSize, cfg.ChartCacheTTL, metrics)

	// Start the ingestion pipeline when Kafka is enabled.
	ready := httpadapter.ReadinessChecks{store}
	var reader *kafkaadapter.Reader
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		transformer := pipeline.NewTransformer(logger, metrics)
		loader := pipeline.MultiLoader{pipeline.NewStoreLoader(store, metrics), writer}

		p := pipeline.New(reader, transformer, loader, logger, metrics, cfg.BatchSize)
		ready = append(ready, p)
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		logger.Info("kafka ingestion disabled")
	}

	api := httpadapter.NewAPI(store, renderer, chartOpts, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, api, logger, metrics)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
