package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/bot"
	"github.com/domino14/othello/config"
	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/master"
	"github.com/domino14/othello/protocol"
)

const refereeDialTimeout = 30 * time.Second

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	closer, err := config.SetupLogging(cfg.GetString(config.ConfigLogFile), cfg.GetBool(config.ConfigDebug))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open log file")
	}
	defer closer.Close()
	log.Info().Interface("config", cfg.SanitizedSettings()).Msg("loaded-config")

	colour, err := board.PlayerFromString(cfg.GetString(config.ConfigColour))
	if err != nil {
		log.Fatal().Err(err).Msg("bad colour")
	}
	eval, err := equity.New(cfg.GetString(config.ConfigEvaluator), cfg.GetString(config.ConfigWeightsFile))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load evaluator")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	pool, err := master.NewPool(ctx, cfg, eval)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start workers")
	}
	defer func() {
		if err := pool.Close(); err != nil {
			log.Err(err).Msg("worker-shutdown-failed")
		}
	}()
	b := bot.NewBot(pool, colour)

	if err := run(ctx, cfg, b); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("bot stopped")
		return
	}
	log.Info().Msg("bot stopped")
}

func run(ctx context.Context, cfg *config.Config, b *bot.Bot) error {
	if channel := cfg.GetString(config.ConfigBotChannel); channel != "" {
		nc, err := protocol.Connect(ctx, cfg.GetString(config.ConfigNatsURL), "othello-bot", 10)
		if err != nil {
			return err
		}
		defer nc.Close()
		return bot.Main(ctx, nc, channel, b)
	}
	addr := cfg.GetString(config.ConfigRefereeAddr)
	if addr == "" {
		return b.Serve(ctx, os.Stdin, os.Stdout)
	}
	conn, err := dialReferee(ctx, addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	return b.Serve(ctx, conn, conn)
}

// dialReferee keeps trying addr until the referee is up or the dial
// timeout passes.
func dialReferee(ctx context.Context, addr string) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, refereeDialTimeout)
	defer cancel()
	var d net.Dialer
	return retry.DoWithData(
		func() (net.Conn, error) {
			return d.DialContext(ctx, "tcp", addr)
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.MaxDelay(2*time.Second),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Err(err).Uint("attempt", n).Str("addr", addr).Msg("referee-dial-failed")
		}),
	)
}
