package equity

import (
	"github.com/domino14/othello/board"
)

// Weights is a positional table indexed by [row][col] of the playing
// surface.
type Weights [board.Dim][board.Dim]int

// DefaultWeights favour corners and edges and punish the squares next to
// the corners.
var DefaultWeights = Weights{
	{5, -3, 2, 2, 2, 2, -3, 5},
	{-3, -4, -1, -1, -1, -1, -4, -3},
	{2, -1, 1, 0, 0, 1, -1, 2},
	{2, -1, 0, 1, 1, 0, -1, 2},
	{2, -1, 0, 1, 1, 0, -1, 2},
	{2, -1, 1, 0, 0, 1, -1, 2},
	{-3, -4, -1, -1, -1, -1, -4, -3},
	{5, -3, 2, 2, 2, 2, -3, 5},
}

// Positional sums the weight of every square: +w for p's discs, -w for
// the opponent's, 0 for empties.
type Positional struct {
	byLoc [board.NumSquares]int
}

func NewPositional(w Weights) *Positional {
	p := &Positional{}
	for _, l := range board.Interior() {
		r, c := l.RowCol()
		p.byLoc[l] = w[r][c]
	}
	return p
}

func (e *Positional) Evaluate(b *board.Board, p board.Player) int {
	own := board.DiscOf(p)
	opp := board.DiscOf(p.Opponent())
	score := 0
	for _, l := range board.Interior() {
		switch b.At(l) {
		case own:
			score += e.byLoc[l]
		case opp:
			score -= e.byLoc[l]
		}
	}
	return score
}

// WeightAt returns the weight of interior loc l.
func (e *Positional) WeightAt(l board.Loc) int {
	return e.byLoc[l]
}
