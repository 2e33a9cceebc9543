package master

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/config"
	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/move"
	"github.com/domino14/othello/protocol"
	"github.com/domino14/othello/worker"
)

const (
	shutdownTimeout = 10 * time.Second
	connectAttempts = 10
)

// Pool is a Coordinator plus whatever it needs torn down at the end.
type Pool interface {
	WaitReady(ctx context.Context) error
	Search(ctx context.Context, b *board.Board, p board.Player) (move.Move, error)
	Close() error
}

// LocalPool runs its workers as goroutines in this process.
type LocalPool struct {
	*Coordinator
	g      *errgroup.Group
	cancel context.CancelFunc
}

// NewLocalPool starts cfg's number of workers in-process and returns a
// pool whose Coordinator is ready to search. The workers stop when ctx
// ends or the pool is closed.
func NewLocalPool(ctx context.Context, cfg *config.Config, eval equity.Evaluator) (*LocalPool, error) {
	n := cfg.GetInt(config.ConfigWorkers)
	depth := cfg.GetInt(config.ConfigWorkerDepth)
	m, conns, err := protocol.NewLocalCluster(n)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	for _, conn := range conns {
		w := worker.NewSearchWorker(conn, eval, depth)
		g.Go(func() error {
			return w.Run(gctx)
		})
	}
	p := &LocalPool{
		Coordinator: NewCoordinator(m, eval, cfg.GetInt(config.ConfigRerankDepth)),
		g:           g,
		cancel:      cancel,
	}
	if err := p.WaitReady(ctx); err != nil {
		cancel()
		g.Wait()
		return nil, err
	}
	log.Info().Int("workers", n).Int("depth", depth).Msg("local-pool-started")
	return p, nil
}

// Close shuts the workers down and waits for them to exit.
func (p *LocalPool) Close() error {
	defer p.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		p.cancel()
		p.g.Wait()
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return p.g.Wait()
}

// NatsPool coordinates worker processes over NATS.
type NatsPool struct {
	*Coordinator
	nc   *nats.Conn
	conn *protocol.NatsMaster
}

// NewNatsPool connects to NATS and returns once every worker has said
// hello, or ctx ends.
func NewNatsPool(ctx context.Context, cfg *config.Config, eval equity.Evaluator) (*NatsPool, error) {
	url := cfg.GetString(config.ConfigNatsURL)
	nc, err := protocol.Connect(ctx, url, "othello-master", connectAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	n := cfg.GetInt(config.ConfigWorkers)
	conn, err := protocol.NewNatsMaster(nc, cfg.GetString(config.ConfigSubjectPrefix), n)
	if err != nil {
		nc.Close()
		return nil, err
	}
	p := &NatsPool{
		Coordinator: NewCoordinator(conn, eval, cfg.GetInt(config.ConfigRerankDepth)),
		nc:          nc,
		conn:        conn,
	}
	log.Info().Str("nats-url", url).Int("workers", n).Msg("waiting-for-workers")
	if err := p.WaitReady(ctx); err != nil {
		p.conn.Close()
		nc.Close()
		return nil, err
	}
	log.Info().Int("workers", n).Msg("nats-pool-started")
	return p, nil
}

func (p *NatsPool) Close() error {
	defer p.nc.Close()
	defer p.conn.Close()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return p.Shutdown(ctx)
}

// NewPool starts the pool named by the transport setting.
func NewPool(ctx context.Context, cfg *config.Config, eval equity.Evaluator) (Pool, error) {
	var pool Pool
	var err error
	switch t := cfg.GetString(config.ConfigTransport); t {
	case config.TransportLocal:
		pool, err = NewLocalPool(ctx, cfg, eval)
	case config.TransportNats:
		pool, err = NewNatsPool(ctx, cfg, eval)
	default:
		err = fmt.Errorf("%w: unknown transport %q", config.ErrBadConfig, t)
	}
	if err != nil {
		return nil, err
	}
	return pool, nil
}
