package equity

import "github.com/domino14/othello/board"

// DiscCount is the plain disc differential.
type DiscCount struct{}

func (DiscCount) Evaluate(b *board.Board, p board.Player) int {
	return b.Count(p) - b.Count(p.Opponent())
}
