package worker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/protocol"
)

// Main connects a worker process to NATS and serves rounds until the
// master broadcasts Shutdown.
func Main(ctx context.Context, cfg *WorkerConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	eval, err := equity.New(cfg.Evaluator, cfg.WeightsFile)
	if err != nil {
		return err
	}
	cctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	nc, err := protocol.Connect(cctx, cfg.NatsURL, fmt.Sprintf("othello-worker-%d", cfg.Index), 0)
	if err != nil {
		return fmt.Errorf("failed to connect to nats: %w", err)
	}
	defer nc.Close()

	conn, err := protocol.NewNatsWorker(nc, cfg.SubjectPrefix, cfg.Index)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Info().
		Str("nats-url", cfg.NatsURL).
		Str("prefix", cfg.SubjectPrefix).
		Int("worker", cfg.Index).
		Msg("worker-connected")
	return NewSearchWorker(conn, eval, cfg.Depth).Run(ctx)
}
