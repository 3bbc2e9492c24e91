package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rzzdr/payoff-engine/config"
	"github.com/rzzdr/payoff-engine/internal/payoff"
	"github.com/rzzdr/payoff-engine/internal/pricing"
	"github.com/rzzdr/payoff-engine/internal/store"
	"github.com/rzzdr/payoff-engine/internal/stream"
	"github.com/rzzdr/payoff-engine/internal/websocket"
	"github.com/rzzdr/payoff-engine/pkg/api"
	"github.com/rzzdr/payoff-engine/pkg/metrics"
	"github.com/rzzdr/payoff-engine/pkg/utils/logger"
)

var configFile = flag.String("config", "", "Path to configuration file (defaults to ./config/config.yaml)")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.GetLogger("api.main").Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.App.LogLevel, cfg.App.Environment)
	log := logger.GetLogger("api.main")
	log.Infof("Starting %s API service", cfg.App.Name)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.NewRecorder()
	}

	aggregator := payoff.NewAggregator(pricing.NewEngine())
	strategyStore := store.NewInMemoryStrategyStore()

	var publisher *stream.Publisher
	if cfg.Stream.Enabled {
		publisher, err = stream.NewPublisher(stream.Config{
			Brokers:      cfg.Stream.Brokers,
			Topic:        cfg.Stream.Topic,
			WriteTimeout: cfg.Stream.WriteTimeout,
		})
		if err != nil {
			log.Fatalf("Failed to create stream publisher: %v", err)
		}
	}

	var hub *websocket.Hub
	if recorder != nil {
		hub = websocket.NewHub(recorder)
	} else {
		hub = websocket.NewHub(nil)
	}
	go hub.Run(ctx)

	handlers := api.CreateHandlers(aggregator, strategyStore, hub, publisher, recorder, cfg.Engine)

	apiServer := api.NewServer(
		api.Config{
			Host:         cfg.API.Host,
			Port:         cfg.API.Port,
			ReadTimeout:  cfg.API.ReadTimeout,
			WriteTimeout: cfg.API.WriteTimeout,
			Environment:  cfg.App.Environment,
		},
		handlers,
		hub,
		recorder,
	)

	go func() {
		if err := apiServer.Start(); err != nil {
			log.Errorf("API server error: %v", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Infof("Received signal %v, initiating shutdown", sig)
	case <-ctx.Done():
		log.Info("Context canceled, initiating shutdown")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Errorf("API server shutdown error: %v", err)
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Errorf("Stream publisher shutdown error: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
