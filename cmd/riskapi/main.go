package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/api"
	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/cfg"
	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/metrics"
	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/ml"
	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/predict"
	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/storage"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	setupLogging(c.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	mw := metrics.NewWrapper(m)

	store := initializeStorage(c)
	if store != nil {
		defer store.Close()
	}

	engine := predict.NewEngine(predict.Config{
		LowRiskCut:  c.LowRiskThreshold,
		HighRiskCut: c.HighRiskThreshold,
		TopFeatures: c.TopFeatures,
	}, modelLoader(c, mw), mw)

	// Eager load so a broken model path surfaces at startup. The engine
	// still retries lazily, so a transient failure here is not fatal.
	if err := engine.Warm(); err != nil {
		log.Warn().Err(err).Msg("model not loaded at startup, will retry on first request")
	}

	startMetricsServer(ctx, c)

	server := api.NewServer(engine, store, mw, c.APIPort)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("API server failed")
			cancel()
		}
	}()

	waitForShutdown(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown API server")
	}
	log.Info().Msg("API server stopped")
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// modelLoader builds the lazy loader the engine calls on first use.
func modelLoader(c cfg.Settings, mw *metrics.Wrapper) predict.Loader {
	return func() (ml.Scorer, *ml.Metadata, error) {
		model, err := ml.NewPipelineModel(c.ModelPath, c.BridgeTimeout)
		if err != nil {
			mw.ModelLoadFailuresInc()
			return nil, nil, err
		}

		metadata, err := ml.LoadMetadata(c.MetadataPath)
		if err != nil {
			mw.ModelLoadFailuresInc()
			return nil, nil, err
		}

		return model, metadata, nil
	}
}

// initializeStorage opens prediction history if DATA_PATH is configured.
func initializeStorage(c cfg.Settings) *storage.Store {
	if c.DataPath == "" {
		return nil
	}
	store, err := storage.New(c.DataPath)
	if err != nil {
		log.Warn().Err(err).Msg("storage initialization failed, continuing without persistence")
		return nil
	}
	return store
}

// startMetricsServer starts the standalone Prometheus metrics HTTP server.
func startMetricsServer(ctx context.Context, c cfg.Settings) {
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		mux.Handle("/metrics", promhttp.Handler())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", c.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		go func() {
			<-ctx.Done()
			if err := server.Shutdown(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to shutdown metrics server")
			}
		}()

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

// waitForShutdown blocks until a shutdown signal arrives or the context is
// canceled.
func waitForShutdown(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}
	log.Info().Msg("shutting down gracefully...")
}
