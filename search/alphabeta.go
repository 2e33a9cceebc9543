// Package search implements a fixed-depth minimax search with alpha-beta
// pruning over Othello positions.
package search

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/move"
	"github.com/domino14/othello/rules"
)

// thanks Wikipedia:
/**function alphabeta(node, depth, α, β, maximizingPlayer) is
    if depth = 0 or node is a terminal node then
        return the heuristic value of node
    if maximizingPlayer then
        value := −∞
        for each child of node do
            value := max(value, alphabeta(child, depth − 1, α, β, FALSE))
            α := max(α, value)
            if α ≥ β then
                break (* β cut-off *)
        return value
    else
        value := +∞
        for each child of node do
            value := min(value, alphabeta(child, depth − 1, α, β, TRUE))
            β := min(β, value)
            if α ≥ β then
                break (* α cut-off *)
        return value
**/

const (
	// Infinity bounds the search window. Evaluator scores stay far below it.
	Infinity = 10000000
)

// Solver searches on behalf of one player, the maximizer. Leaves are
// always evaluated from the maximizer's point of view. A Solver is not
// safe for concurrent use; give each goroutine its own.
type Solver struct {
	eval            equity.Evaluator
	maximizer       board.Player
	pruningDisabled bool

	nodes atomic.Uint64
}

func NewSolver(eval equity.Evaluator, maximizer board.Player) *Solver {
	if !maximizer.Valid() {
		panic(fmt.Errorf("%w: %d", board.ErrInvalidPlayer, maximizer))
	}
	return &Solver{eval: eval, maximizer: maximizer}
}

func (s *Solver) Maximizer() board.Player {
	return s.maximizer
}

// SetPruningDisabled turns the search into plain minimax. Only useful to
// check that pruning never changes a result.
func (s *Solver) SetPruningDisabled(d bool) {
	s.pruningDisabled = d
}

// Nodes returns the number of positions visited so far.
func (s *Solver) Nodes() uint64 {
	return s.nodes.Load()
}

// Search returns the minimax value of b with toMove on turn, looking depth
// plies ahead. b is not modified.
func (s *Solver) Search(b *board.Board, toMove board.Player, depth int, α, β int) int {
	s.nodes.Add(1)

	if depth == 0 || rules.IsTerminal(b) {
		return s.eval.Evaluate(b, s.maximizer)
	}

	moves := rules.LegalMoves(b, toMove)
	if len(moves) == 0 {
		// Forced pass: same position, other side, one ply used.
		return s.Search(b, toMove.Opponent(), depth-1, α, β)
	}

	child := &board.Board{}
	if toMove == s.maximizer {
		value := -Infinity
		for _, m := range moves {
			child.CopyFrom(b)
			rules.ApplyMove(child, m, toMove)
			value = max(value, s.Search(child, toMove.Opponent(), depth-1, α, β))
			α = max(α, value)
			if β <= α && !s.pruningDisabled {
				break
			}
		}
		return value
	}

	value := Infinity
	for _, m := range moves {
		child.CopyFrom(b)
		rules.ApplyMove(child, m, toMove)
		value = min(value, s.Search(child, toMove.Opponent(), depth-1, α, β))
		β = min(β, value)
		if β <= α && !s.pruningDisabled {
			break
		}
	}
	return value
}

// ScoreMove plays m for the maximizer on a copy of b and searches plies
// further with the opponent on turn.
func (s *Solver) ScoreMove(b *board.Board, m move.Move, plies int) int {
	c := b.Copy()
	rules.ApplyMove(c, m, s.maximizer)
	return s.Search(c, s.maximizer.Opponent(), plies, -Infinity, Infinity)
}

// BestOf scores every candidate with ScoreMove and returns the one with
// the strictly greatest score; the earliest candidate wins ties. An empty
// candidate list yields a pass.
func (s *Solver) BestOf(b *board.Board, candidates []move.Move, plies int) (move.Move, int) {
	best := move.Pass
	bestScore := -Infinity
	st := time.Now()
	startNodes := s.Nodes()
	for _, m := range candidates {
		score := s.ScoreMove(b, m, plies)
		if best.IsPass() || score > bestScore {
			best = m
			bestScore = score
		}
	}
	log.Debug().
		Str("best", best.String()).
		Int("score", bestScore).
		Int("candidates", len(candidates)).
		Int("plies", plies).
		Uint64("nodes", s.Nodes()-startNodes).
		Dur("elapsed", time.Since(st)).
		Msg("best-of")
	return best, bestScore
}
