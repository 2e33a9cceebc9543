// Package board holds the Othello grid. The 8x8 playing surface is stored
// inside a 10x10 frame of border squares so ray walks in any direction
// stop on their own without bounds checks.
package board

import (
	"errors"
	"fmt"
)

const (
	// Dim is the side length of the playing surface.
	Dim = 8
	// NumInterior is the number of playable squares.
	NumInterior = Dim * Dim
	// NumSquares is the size of the bordered grid.
	NumSquares = gridDim * gridDim

	gridDim = Dim + 2
)

var (
	ErrOutOfRange = errors.New("coordinate out of range")
)

// A Loc is a linear index into the bordered grid.
type Loc int

// A Direction is a step between neighbouring locs in the bordered grid.
type Direction int

// Directions are the eight compass steps. The same set drives both
// legality checks and flipping.
var Directions = [8]Direction{
	-gridDim - 1, -gridDim, -gridDim + 1,
	-1, 1,
	gridDim - 1, gridDim, gridDim + 1,
}

var interior [NumInterior]Loc

func init() {
	i := 0
	for row := 0; row < Dim; row++ {
		for col := 0; col < Dim; col++ {
			interior[i] = locOf(row, col)
			i++
		}
	}
}

func locOf(row, col int) Loc {
	return Loc(gridDim*(row+1) + col + 1)
}

// IsInside returns true iff l is a playable (non-border) square.
func IsInside(l Loc) bool {
	if l < 0 || l >= NumSquares {
		return false
	}
	c := int(l) % gridDim
	r := int(l) / gridDim
	return r >= 1 && r <= Dim && c >= 1 && c <= Dim
}

// LocFromRowCol converts a zero-based interior coordinate into a Loc.
func LocFromRowCol(row, col int) (Loc, error) {
	if row < 0 || row >= Dim || col < 0 || col >= Dim {
		return 0, fmt.Errorf("%w: row %d col %d", ErrOutOfRange, row, col)
	}
	return locOf(row, col), nil
}

// RowCol returns the zero-based interior coordinate of l. It panics if l
// is not inside the playing surface.
func (l Loc) RowCol() (int, int) {
	if !IsInside(l) {
		panic(fmt.Sprintf("loc %d is not an interior square", int(l)))
	}
	return int(l)/gridDim - 1, int(l)%gridDim - 1
}

// Step returns the neighbour of l in direction d.
func (l Loc) Step(d Direction) Loc {
	return l + Loc(d)
}

// Interior returns every playable loc in ascending order.
func Interior() [NumInterior]Loc {
	return interior
}

// Board is an Othello position. It carries no side-to-move; callers pass
// the player explicitly.
type Board struct {
	squares [NumSquares]Square
}

// NewEmptyBoard returns a board with every interior square empty.
func NewEmptyBoard() *Board {
	b := &Board{}
	for i := range b.squares {
		b.squares[i] = Border
	}
	for _, l := range interior {
		b.squares[l] = Empty
	}
	return b
}

// NewBoard returns the standard starting position.
func NewBoard() *Board {
	b := NewEmptyBoard()
	b.squares[locOf(3, 3)] = SecondDisc
	b.squares[locOf(3, 4)] = FirstDisc
	b.squares[locOf(4, 3)] = FirstDisc
	b.squares[locOf(4, 4)] = SecondDisc
	return b
}

// At returns the square at l. Locs on the frame read as Border.
func (b *Board) At(l Loc) Square {
	if l < 0 || l >= NumSquares {
		return Border
	}
	return b.squares[l]
}

// Set places s at interior loc l.
func (b *Board) Set(l Loc, s Square) {
	if !IsInside(l) {
		panic(fmt.Sprintf("cannot set border loc %d", int(l)))
	}
	if s == Border {
		panic("cannot place a border square on the interior")
	}
	b.squares[l] = s
}

// Copy returns an independent copy of the board.
func (b *Board) Copy() *Board {
	c := *b
	return &c
}

// CopyFrom overwrites b with the contents of o.
func (b *Board) CopyFrom(o *Board) {
	b.squares = o.squares
}

// Equals reports whether both boards hold the same discs.
func (b *Board) Equals(o *Board) bool {
	return b.squares == o.squares
}

// Count returns the number of discs p has on the board.
func (b *Board) Count(p Player) int {
	d := DiscOf(p)
	ct := 0
	for _, l := range interior {
		if b.squares[l] == d {
			ct++
		}
	}
	return ct
}

// Empties returns the number of empty interior squares.
func (b *Board) Empties() int {
	ct := 0
	for _, l := range interior {
		if b.squares[l] == Empty {
			ct++
		}
	}
	return ct
}
