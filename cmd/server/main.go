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

	httpadapter "github.com/couchcryptid/practicum-geofence/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/practicum-geofence/internal/adapter/kafka"
	"github.com/couchcryptid/practicum-geofence/internal/adapter/tabular"
	"github.com/couchcryptid/practicum-geofence/internal/config"
	"github.com/couchcryptid/practicum-geofence/internal/domain"
	"github.com/couchcryptid/practicum-geofence/internal/observability"
	"github.com/couchcryptid/practicum-geofence/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Optionally preload a site registry so uploads can omit the sites file.
	var preloaded domain.Registry
	if cfg.SitesFile != "" {
		preloaded, err = loadRegistry(cfg.SitesFile)
		if err != nil {
			logger.Error("failed to preload site registry", "file", cfg.SitesFile, "error", err)
			os.Exit(1)
		}
		metrics.RegistrySites.Set(float64(len(preloaded)))
		logger.Info("site registry preloaded", "file", cfg.SitesFile, "sites", len(preloaded))
	}

	// Initialize the results sink (feature-flagged via KAFKA_SINK_TOPIC).
	var sink pipeline.Sink
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, clock, logger)
		sink = kafkaWriter
		metrics.SinkEnabled.Set(1)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	} else {
		metrics.SinkEnabled.Set(0)
		logger.Info("kafka sink disabled")
	}

	normalizer := domain.NewNormalizer(domain.DefaultFieldMap())
	pipe := pipeline.New(normalizer, sink, logger, metrics, cfg.VerifiedRadiusM, cfg.ReviewRadiusM)

	srv := httpadapter.NewServer(cfg, pipe, preloaded, clock, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func loadRegistry(path string) (domain.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows, err := tabular.ReadTable(path, data)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return domain.ParseRegistry(rows)
}
