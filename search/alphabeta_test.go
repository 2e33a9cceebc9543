package search

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/move"
	"github.com/domino14/othello/rules"
	"github.com/domino14/othello/testhelpers"
)

var positional = equity.NewPositional(equity.DefaultWeights)

// minimax is an unpruned reference written without the Solver.
func minimax(b *board.Board, toMove, me board.Player, depth int) int {
	if depth == 0 || rules.IsTerminal(b) {
		return positional.Evaluate(b, me)
	}
	moves := rules.LegalMoves(b, toMove)
	if len(moves) == 0 {
		return minimax(b, toMove.Opponent(), me, depth-1)
	}
	best := 0
	for i, m := range moves {
		c := b.Copy()
		rules.ApplyMove(c, m, toMove)
		v := minimax(c, toMove.Opponent(), me, depth-1)
		if i == 0 || (toMove == me && v > best) || (toMove != me && v < best) {
			best = v
		}
	}
	return best
}

func TestAlphaBetaMatchesMinimax(t *testing.T) {
	is := is.New(t)
	for i := 0; i < 30; i++ {
		b, toMove := testhelpers.RandomPosition(i * 2)
		for depth := 1; depth <= 4; depth++ {
			for _, me := range []board.Player{board.First, board.Second} {
				pruned := NewSolver(positional, me)
				full := NewSolver(positional, me)
				full.SetPruningDisabled(true)

				want := minimax(b, toMove, me, depth)
				got := pruned.Search(b, toMove, depth, -Infinity, Infinity)
				is.Equal(got, want)
				is.Equal(full.Search(b, toMove, depth, -Infinity, Infinity), want)
				is.True(pruned.Nodes() <= full.Nodes())
			}
		}
	}
}

func TestSearchDoesNotMutateBoard(t *testing.T) {
	is := is.New(t)
	b, toMove := testhelpers.RandomPosition(20)
	c := b.Copy()
	s := NewSolver(positional, toMove)
	s.Search(b, toMove, 4, -Infinity, Infinity)
	is.True(b.Equals(c))
}

func TestTerminalIgnoresDepth(t *testing.T) {
	is := is.New(t)
	for _, rows := range [][]string{testhelpers.FullBoard, testhelpers.WhiteWipeout} {
		b := testhelpers.MustBoard(rows)
		s := NewSolver(positional, board.First)
		v := s.Search(b, board.First, 6, -Infinity, Infinity)
		is.Equal(v, positional.Evaluate(b, board.First))
		is.Equal(s.Nodes(), uint64(1))
	}
}

func TestForcedPassRecursesForOpponent(t *testing.T) {
	is := is.New(t)
	b := testhelpers.MustBoard(testhelpers.FirstStuck)
	s := NewSolver(positional, board.First)

	// One ply: black passes and the position is evaluated as is.
	is.Equal(s.Search(b, board.First, 1, -Infinity, Infinity), positional.Evaluate(b, board.First))

	// Two plies: black passes, white plays its only move 02.
	after := b.Copy()
	rules.ApplyMove(after, move.Move(13), board.Second)
	is.Equal(s.Search(b, board.First, 2, -Infinity, Infinity), positional.Evaluate(after, board.First))
}

func TestBestOfFirstWinsTies(t *testing.T) {
	is := is.New(t)
	b := board.NewBoard()
	s := NewSolver(equity.DiscCount{}, board.First)
	moves := rules.LegalMoves(b, board.First)
	// Every opening move leaves black 4-1 up.
	best, score := s.BestOf(b, moves, 0)
	is.Equal(best, moves[0])
	is.Equal(score, 3)

	reversed := []move.Move{moves[3], moves[2], moves[1], moves[0]}
	best, _ = s.BestOf(b, reversed, 0)
	is.Equal(best, moves[3])
}

func TestBestOfPicksStrictMaximum(t *testing.T) {
	is := is.New(t)
	b := testhelpers.MustBoard([]string{
		"........",
		".w......",
		"..b.....",
		"........",
		"...w....",
		"...b....",
		"........",
		"........",
	})
	s := NewSolver(positional, board.First)
	moves := rules.LegalMoves(b, board.First)
	is.Equal(len(moves), 2)
	// 00 takes the corner but also the X-square; 33 leaves white stuck on
	// the X-square.
	is.Equal(s.ScoreMove(b, moves[0], 0), 1)
	is.Equal(s.ScoreMove(b, moves[1], 0), 7)
	best, score := s.BestOf(b, moves, 0)
	is.Equal(best.String(), "33")
	is.Equal(score, 7)
}

func TestBestOfEmpty(t *testing.T) {
	is := is.New(t)
	s := NewSolver(positional, board.First)
	best, score := s.BestOf(board.NewBoard(), nil, 5)
	is.True(best.IsPass())
	is.Equal(score, -Infinity)
}
