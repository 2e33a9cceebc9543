// Package equity scores Othello positions without looking ahead.
package equity

import (
	"github.com/domino14/othello/board"
)

// Evaluator is a static evaluator. Evaluate returns a score for the given
// player: larger is better for p. It never searches.
type Evaluator interface {
	Evaluate(b *board.Board, p board.Player) int
}

const (
	PositionalName = "positional"
	DiscCountName  = "disccount"
)
