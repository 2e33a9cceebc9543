package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/domino14/othello/config"
	"github.com/domino14/othello/worker"
)

func main() {
	cfg := worker.DefaultWorkerConfig()
	logFile := cfg.LogFile
	if logFile != "" {
		logFile = fmt.Sprintf("%s.%d", logFile, cfg.Index)
	}
	closer, err := config.SetupLogging(logFile, cfg.Debug)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open log file")
	}
	defer closer.Close()

	log.Info().
		Int("index", cfg.Index).
		Int("depth", cfg.Depth).
		Str("nats-url", cfg.NatsURL).
		Msg("starting search worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	if err := worker.Main(ctx, cfg); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("worker failed")
		return
	}

	log.Info().Msg("search worker stopped")
}
