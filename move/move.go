// Package move defines a single Othello move: a disc placement on an
// interior square, or a pass.
package move

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/domino14/othello/board"
)

// Move is either a board.Loc or Pass. It is a plain value and is never
// mutated.
type Move int

// Pass is the sentinel for "no legal move".
const Pass Move = -1

// PassString is the wire token for a pass.
const PassString = "pass"

var ErrMalformedMove = errors.New("malformed move")

var reCoords = regexp.MustCompile(`^([0-7])([0-7])$`)

// FromLoc returns the move that places a disc on l. It panics if l is on
// the border.
func FromLoc(l board.Loc) Move {
	if !board.IsInside(l) {
		panic(fmt.Sprintf("loc %d is not a playable square", int(l)))
	}
	return Move(l)
}

// FromRowCol builds a move from a zero-based interior coordinate.
func FromRowCol(row, col int) (Move, error) {
	l, err := board.LocFromRowCol(row, col)
	if err != nil {
		return Pass, err
	}
	return Move(l), nil
}

// FromString decodes a referee move string: two digits, row then column,
// or "pass". Surrounding whitespace, including the trailing newline the
// referee sends, is ignored.
func FromString(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if s == PassString {
		return Pass, nil
	}
	m := reCoords.FindStringSubmatch(s)
	if m == nil {
		return Pass, fmt.Errorf("%w: %q", ErrMalformedMove, s)
	}
	return FromRowCol(int(m[1][0]-'0'), int(m[2][0]-'0'))
}

func (m Move) IsPass() bool {
	return m == Pass
}

// Loc returns the square the move places a disc on. It must not be called
// on a pass.
func (m Move) Loc() board.Loc {
	if m.IsPass() {
		panic("pass has no location")
	}
	return board.Loc(m)
}

// RowCol returns the zero-based coordinate of a non-pass move.
func (m Move) RowCol() (int, int) {
	return m.Loc().RowCol()
}

// String returns the referee encoding of the move.
func (m Move) String() string {
	if m.IsPass() {
		return PassString
	}
	if !board.IsInside(board.Loc(m)) {
		return fmt.Sprintf("<bad move %d>", int(m))
	}
	r, c := m.RowCol()
	return string([]byte{byte(r) + '0', byte(c) + '0'})
}

// Valid reports whether m is a pass or targets an interior square.
func (m Move) Valid() bool {
	return m.IsPass() || board.IsInside(board.Loc(m))
}
