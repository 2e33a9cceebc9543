package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/domino14/othello/config"
	"github.com/domino14/othello/shell"
)

var (
	GitVersion string
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	closer, err := config.SetupLogging(cfg.GetString(config.ConfigLogFile), cfg.GetBool(config.ConfigDebug))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open log file")
	}
	defer closer.Close()
	fmt.Println("othello", GitVersion)
	log.Debug().Msgf("Loaded config: %v", cfg.SanitizedSettings())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sc, err := shell.NewShellController(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start shell")
	}

	argsLine := strings.TrimSpace(strings.Join(cfg.Args(), " "))
	if argsLine != "" {
		sc.Execute(argsLine)
		if err := sc.Close(); err != nil {
			log.Err(err).Msg("worker-shutdown-failed")
		}
		return
	}

	if err := sc.AttachReadline(); err != nil {
		log.Fatal().Err(err).Msg("failed to start readline")
	}
	// Loop signals on sig when it exits; SIGTERM from outside cancels any
	// running search.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("got quit signal...")
		cancel()
	}()
	sc.Loop(sig)
}
