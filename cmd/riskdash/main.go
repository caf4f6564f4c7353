package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/cfg"
	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/dashboard"
	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/ml"
	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/predict"
	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/storage"
)

func main() {
	_ = godotenv.Load()

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	var store *storage.Store
	if c.DataPath != "" {
		store, err = storage.New(c.DataPath)
		if err != nil {
			log.Warn().Err(err).Msg("storage initialization failed, trend panels will be empty")
			store = nil
		} else {
			defer store.Close()
		}
	}

	engine := predict.NewEngine(predict.Config{
		LowRiskCut:  c.LowRiskThreshold,
		HighRiskCut: c.HighRiskThreshold,
		TopFeatures: c.TopFeatures,
	}, func() (ml.Scorer, *ml.Metadata, error) {
		model, err := ml.NewPipelineModel(c.ModelPath, c.BridgeTimeout)
		if err != nil {
			return nil, nil, err
		}
		metadata, err := ml.LoadMetadata(c.MetadataPath)
		if err != nil {
			return nil, nil, err
		}
		return model, metadata, nil
	}, nil)

	if err := engine.Warm(); err != nil {
		log.Warn().Err(err).Msg("model not loaded at startup, will retry on first analysis")
	}

	d := dashboard.New(engine, store, c.DashboardPort)
	if err := d.Start(); err != nil {
		log.Fatal().Err(err).Msg("dashboard start failed")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutdown signal received")
	if err := d.Stop(); err != nil {
		log.Error().Err(err).Msg("dashboard shutdown failed")
	}
}
