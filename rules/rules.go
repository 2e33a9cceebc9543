// Package rules implements Othello move legality and move application on
// top of the board package.
package rules

import (
	"github.com/domino14/othello/board"
	"github.com/domino14/othello/move"
)

// bracket walks from l in direction d. If the walk crosses at least one
// opponent disc and ends on one of p's discs, it returns that disc's loc.
func bracket(b *board.Board, l board.Loc, d board.Direction, p board.Player) (board.Loc, bool) {
	opp := board.DiscOf(p.Opponent())
	own := board.DiscOf(p)
	sq := l.Step(d)
	if b.At(sq) != opp {
		return 0, false
	}
	for b.At(sq) == opp {
		sq = sq.Step(d)
	}
	if b.At(sq) == own {
		return sq, true
	}
	return 0, false
}

// IsLegal reports whether p may place a disc at m. The target must be an
// empty interior square and at least one direction must bracket a run of
// opponent discs.
func IsLegal(b *board.Board, m move.Move, p board.Player) bool {
	if m.IsPass() || !m.Valid() {
		return false
	}
	l := m.Loc()
	if b.At(l) != board.Empty {
		return false
	}
	for _, d := range board.Directions {
		if _, ok := bracket(b, l, d, p); ok {
			return true
		}
	}
	return false
}

// LegalMoves returns every legal move for p in ascending loc order. An
// empty result means p has to pass.
func LegalMoves(b *board.Board, p board.Player) []move.Move {
	var moves []move.Move
	for _, l := range board.Interior() {
		m := move.FromLoc(l)
		if IsLegal(b, m, p) {
			moves = append(moves, m)
		}
	}
	return moves
}

// HasLegalMoves is LegalMoves without the allocation.
func HasLegalMoves(b *board.Board, p board.Player) bool {
	for _, l := range board.Interior() {
		if IsLegal(b, move.FromLoc(l), p) {
			return true
		}
	}
	return false
}

// IsTerminal reports whether neither side can move.
func IsTerminal(b *board.Board) bool {
	return !HasLegalMoves(b, board.First) && !HasLegalMoves(b, board.Second)
}

// ApplyMove places p's disc at m and flips every bracketed run. m must be
// legal for p; a pass leaves the board untouched.
func ApplyMove(b *board.Board, m move.Move, p board.Player) {
	if m.IsPass() {
		return
	}
	l := m.Loc()
	own := board.DiscOf(p)
	b.Set(l, own)
	for _, d := range board.Directions {
		end, ok := bracket(b, l, d, p)
		if !ok {
			continue
		}
		for sq := l.Step(d); sq != end; sq = sq.Step(d) {
			b.Set(sq, own)
		}
	}
}

// Flips returns how many discs m would turn over for p.
func Flips(b *board.Board, m move.Move, p board.Player) int {
	if m.IsPass() {
		return 0
	}
	l := m.Loc()
	ct := 0
	for _, d := range board.Directions {
		end, ok := bracket(b, l, d, p)
		if !ok {
			continue
		}
		for sq := l.Step(d); sq != end; sq = sq.Step(d) {
			ct++
		}
	}
	return ct
}
