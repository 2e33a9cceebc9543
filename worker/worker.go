// Package worker runs the worker side of a distributed search: it receives
// a position and a slice of root moves, searches them, and reports its best
// candidate.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/move"
	"github.com/domino14/othello/protocol"
	"github.com/domino14/othello/rules"
	"github.com/domino14/othello/search"
)

// SearchWorker serves search rounds until the master shuts it down.
type SearchWorker struct {
	conn  protocol.WorkerConn
	eval  equity.Evaluator
	depth int
}

// NewSearchWorker creates a worker. depth must be at least 1.
func NewSearchWorker(conn protocol.WorkerConn, eval equity.Evaluator, depth int) *SearchWorker {
	return &SearchWorker{conn: conn, eval: eval, depth: depth}
}

// Run starts the worker main loop. It returns nil on Shutdown and the
// context's error if ctx ends first.
func (w *SearchWorker) Run(ctx context.Context) error {
	log.Info().
		Int("worker", w.conn.Index()).
		Int("depth", w.depth).
		Msg("starting search worker")

	if err := w.conn.Announce(ctx); err != nil {
		return fmt.Errorf("announce failed: %w", err)
	}

	for {
		msg, err := w.conn.RecvBroadcast(ctx)
		var snap *protocol.Snapshot
		switch {
		case errors.Is(err, protocol.ErrProtocol):
			// The assignment still arrives; answer it with the error.
			log.Warn().Err(err).Int("worker", w.conn.Index()).Msg("bad-broadcast")
		case err != nil:
			return err
		case msg.Kind == protocol.KindShutdown:
			log.Info().Int("worker", w.conn.Index()).Msg("worker shutting down")
			return nil
		case msg.Kind == protocol.KindSnapshot:
			snap = msg.Snapshot
		default:
			log.Warn().Str("kind", string(msg.Kind)).Msg("unexpected-broadcast")
			continue
		}

		direct, err := w.conn.RecvDirect(ctx)
		if err != nil && !errors.Is(err, protocol.ErrProtocol) {
			return err
		}
		report := w.processRound(snap, direct, err)
		if report.Error != "" {
			log.Warn().
				Int("worker", w.conn.Index()).
				Uint64("round", report.Round).
				Str("error", report.Error).
				Msg("round-failed")
		}
		if err := w.conn.Send(ctx, protocol.NewReport(report)); err != nil {
			return err
		}
	}
}

// processRound never fails: a round it cannot complete is answered with a
// pass carrying the reason, so the master is never starved.
func (w *SearchWorker) processRound(snap *protocol.Snapshot, direct protocol.Message, recvErr error) protocol.Report {
	report := protocol.Report{Worker: w.conn.Index(), Move: move.Pass}
	if snap != nil {
		report.Round = snap.Round
	}
	fail := func(format string, args ...any) protocol.Report {
		report.Move = move.Pass
		report.Score = 0
		report.Error = fmt.Sprintf(format, args...)
		return report
	}
	if recvErr != nil {
		return fail("bad assignment: %v", recvErr)
	}
	if direct.Kind != protocol.KindAssignment {
		return fail("expected assignment, got %q", direct.Kind)
	}
	asg := direct.Assignment
	if snap == nil {
		report.Round = asg.Round
		return fail("no snapshot for round %d", asg.Round)
	}
	if asg.Round != snap.Round {
		return fail("assignment for round %d during round %d", asg.Round, snap.Round)
	}
	if asg.Worker != w.conn.Index() {
		return fail("assignment for worker %d", asg.Worker)
	}
	if !snap.Player.Valid() {
		return fail("invalid player %d", snap.Player)
	}
	if sum := snap.Board.Checksum(); sum != snap.Checksum {
		return fail("checksum mismatch: %x != %x", sum, snap.Checksum)
	}
	for _, m := range asg.Moves {
		if m.IsPass() || !m.Valid() {
			return fail("bad move %d", int(m))
		}
		if !rules.IsLegal(snap.Board, m, snap.Player) {
			return fail("illegal move %s", m)
		}
	}
	if len(asg.Moves) == 0 {
		return report
	}

	st := time.Now()
	solver := search.NewSolver(w.eval, snap.Player)
	best, score := solver.BestOf(snap.Board, asg.Moves, w.depth-1)
	report.Move = best
	report.Score = score
	report.Nodes = solver.Nodes()
	log.Info().
		Int("worker", w.conn.Index()).
		Uint64("round", snap.Round).
		Int("moves", len(asg.Moves)).
		Str("best", best.String()).
		Int("score", score).
		Uint64("nodes", report.Nodes).
		Dur("elapsed", time.Since(st)).
		Msg("round-searched")
	return report
}
