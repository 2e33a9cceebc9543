package master

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/move"
	"github.com/domino14/othello/protocol"
	"github.com/domino14/othello/rules"
	"github.com/domino14/othello/search"
)

// Coordinator runs search rounds over a pool of workers. Rounds are
// serialized; a Coordinator may be shared between goroutines.
type Coordinator struct {
	mu          sync.Mutex
	conn        protocol.MasterConn
	eval        equity.Evaluator
	rerankDepth int
	round       uint64
}

func NewCoordinator(conn protocol.MasterConn, eval equity.Evaluator, rerankDepth int) *Coordinator {
	return &Coordinator{conn: conn, eval: eval, rerankDepth: rerankDepth}
}

func (c *Coordinator) Workers() int {
	return c.conn.Workers()
}

// WaitReady blocks until every worker has announced itself.
func (c *Coordinator) WaitReady(ctx context.Context) error {
	return c.conn.WaitReady(ctx)
}

// Search returns the best move for p on b. b is not modified. If p has no
// legal move it returns move.Pass without contacting any worker.
func (c *Coordinator) Search(ctx context.Context, b *board.Board, p board.Player) (move.Move, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	moves := rules.LegalMoves(b, p)
	if len(moves) == 0 {
		log.Debug().Str("player", p.String()).Msg("no-moves-pass")
		return move.Pass, nil
	}

	c.round++
	round := c.round
	st := time.Now()
	chunks := Partition(moves, c.conn.Workers())

	if err := c.conn.Broadcast(ctx, protocol.NewSnapshot(round, b, p)); err != nil {
		return move.Pass, fmt.Errorf("broadcast failed: %w", err)
	}
	for i, chunk := range chunks {
		if err := c.conn.Send(ctx, i, protocol.NewAssignment(round, i, chunk)); err != nil {
			return move.Pass, fmt.Errorf("send to worker %d failed: %w", i, err)
		}
	}

	// Keep reading after a protocol fault so each worker's reply for this
	// round is consumed. Replies left behind by an abandoned round are
	// skipped in collect.
	reports := make([]protocol.Report, len(chunks))
	var roundErr error
	for i := range chunks {
		r, err := c.collect(ctx, round, i, moves)
		if err != nil && !errors.Is(err, protocol.ErrProtocol) {
			return move.Pass, err
		}
		if err != nil && roundErr == nil {
			roundErr = err
		}
		reports[i] = r
	}
	if roundErr != nil {
		return move.Pass, roundErr
	}

	candidates := lo.FilterMap(reports, func(r protocol.Report, _ int) (move.Move, bool) {
		return r.Move, !r.Move.IsPass()
	})
	if len(candidates) == 0 {
		log.Warn().Uint64("round", round).Msg("all-workers-passed")
		return move.Pass, nil
	}

	solver := search.NewSolver(c.eval, p)
	best, score := solver.BestOf(b, candidates, c.rerankDepth)
	log.Info().
		Uint64("round", round).
		Int("root-moves", len(moves)).
		Strs("candidates", lo.Map(candidates, func(m move.Move, _ int) string { return m.String() })).
		Uint64("worker-nodes", lo.SumBy(reports, func(r protocol.Report) uint64 { return r.Nodes })).
		Str("best", best.String()).
		Int("score", score).
		Dur("elapsed", time.Since(st)).
		Msg("round-complete")
	return best, nil
}

// collect reads worker i's report for round. Reports from earlier, abandoned
// rounds are dropped. A worker that gave up on its assignment counts as a
// pass; anything malformed is a protocol error.
func (c *Coordinator) collect(ctx context.Context, round uint64, i int, moves []move.Move) (protocol.Report, error) {
	var r protocol.Report
	for {
		msg, err := c.conn.Recv(ctx, i)
		if err != nil {
			return protocol.Report{}, fmt.Errorf("receive from worker %d failed: %w", i, err)
		}
		if msg.Kind != protocol.KindReport || msg.Report == nil {
			return protocol.Report{}, fmt.Errorf("%w: worker %d sent %q", protocol.ErrProtocol, i, msg.Kind)
		}
		r = *msg.Report
		if r.Round >= round {
			break
		}
		log.Warn().Int("worker", i).Uint64("round", round).Uint64("report-round", r.Round).Msg("stale-report")
	}
	if r.Round != round {
		return r, fmt.Errorf("%w: worker %d reported round %d during round %d",
			protocol.ErrProtocol, i, r.Round, round)
	}
	if r.Worker != i {
		return r, fmt.Errorf("%w: worker %d reported as worker %d", protocol.ErrProtocol, i, r.Worker)
	}
	if r.Error != "" {
		log.Warn().Int("worker", i).Uint64("round", round).Str("error", r.Error).Msg("worker-gave-up")
		r.Move = move.Pass
		return r, nil
	}
	if !r.Move.IsPass() && !lo.Contains(moves, r.Move) {
		return r, fmt.Errorf("%w: worker %d reported move %d, not a root move",
			protocol.ErrProtocol, i, int(r.Move))
	}
	return r, nil
}

// Shutdown tells every worker to exit.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Broadcast(ctx, protocol.Shutdown())
}
