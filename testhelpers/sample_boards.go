// Package testhelpers holds board fixtures and random playouts shared by
// the package tests.
package testhelpers

import (
	"lukechampine.com/frand"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/move"
	"github.com/domino14/othello/rules"
)

// Sample positions, top row first.
var (
	// FirstStuck: black has a disc but no move; white can play 02.
	FirstStuck = []string{
		"wb......",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
	}

	// FullBoard is a finished game, 40-24 to black.
	FullBoard = []string{
		"bbbbbbbb",
		"bbbbbbbb",
		"bbbbbbbb",
		"bbbbbbbb",
		"bbbbbbbb",
		"wwwwwwww",
		"wwwwwwww",
		"wwwwwwww",
	}

	// WhiteWipeout has only white discs left with empties; nobody can move.
	WhiteWipeout = []string{
		"........",
		"........",
		"..www...",
		"..www...",
		"..www...",
		"........",
		"........",
		"........",
	}

	// Midgame is an unbalanced middle-game position, black to move.
	Midgame = []string{
		"........",
		"........",
		"..wwww..",
		"..wwbb..",
		"..bbwb..",
		"...bww..",
		"....w...",
		"........",
	}
)

// MustBoard builds a board from rows and panics on bad input.
func MustBoard(rows []string) *board.Board {
	b, err := board.FromRows(rows...)
	if err != nil {
		panic(err)
	}
	return b
}

// RandomPosition plays up to plies random legal moves from the opening,
// passing when forced, and returns the position and the side to move.
// It stops early if the game ends.
func RandomPosition(plies int) (*board.Board, board.Player) {
	b := board.NewBoard()
	p := board.First
	for i := 0; i < plies; i++ {
		if rules.IsTerminal(b) {
			break
		}
		rules.ApplyMove(b, RandomMove(b, p), p)
		p = p.Opponent()
	}
	return b, p
}

// RandomMove picks a uniformly random legal move for p, or a pass.
func RandomMove(b *board.Board, p board.Player) move.Move {
	moves := rules.LegalMoves(b, p)
	if len(moves) == 0 {
		return move.Pass
	}
	return moves[frand.Intn(len(moves))]
}
