package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash"
)

var ErrBadBoardText = errors.New("malformed board text")

// ToDisplayText renders the board with 1-based row and column headers and
// the disc count for both sides.
func (b *Board) ToDisplayText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "   1 2 3 4 5 6 7 8 [%c=%d %c=%d]\n",
		FirstDisc.Name(), b.Count(First), SecondDisc.Name(), b.Count(Second))
	for row := 1; row <= Dim; row++ {
		fmt.Fprintf(&sb, "%d  ", row)
		for col := 1; col <= Dim; col++ {
			sb.WriteByte(b.squares[gridDim*row+col].Name())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// MarshalText encodes the interior as eight rows of eight characters
// separated by slashes, top row first.
func (b *Board) MarshalText() ([]byte, error) {
	buf := make([]byte, 0, NumInterior+Dim-1)
	for row := 0; row < Dim; row++ {
		if row > 0 {
			buf = append(buf, '/')
		}
		for col := 0; col < Dim; col++ {
			buf = append(buf, b.squares[locOf(row, col)].Name())
		}
	}
	return buf, nil
}

// UnmarshalText is the inverse of MarshalText.
func (b *Board) UnmarshalText(text []byte) error {
	rows := strings.Split(string(text), "/")
	if len(rows) != Dim {
		return fmt.Errorf("%w: want %d rows, got %d", ErrBadBoardText, Dim, len(rows))
	}
	nb := NewEmptyBoard()
	for row, r := range rows {
		if len(r) != Dim {
			return fmt.Errorf("%w: row %d has %d squares", ErrBadBoardText, row+1, len(r))
		}
		for col := 0; col < Dim; col++ {
			sq, ok := squareFromName(r[col])
			if !ok {
				return fmt.Errorf("%w: bad square %q at row %d", ErrBadBoardText, r[col], row+1)
			}
			nb.squares[locOf(row, col)] = sq
		}
	}
	b.CopyFrom(nb)
	return nil
}

// FromRows builds a board from eight rows of eight characters.
func FromRows(rows ...string) (*Board, error) {
	b := &Board{}
	if err := b.UnmarshalText([]byte(strings.Join(rows, "/"))); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Board) String() string {
	t, _ := b.MarshalText()
	return string(t)
}

// Checksum hashes the interior so a receiver can tell a snapshot arrived
// intact.
func (b *Board) Checksum() uint64 {
	t, _ := b.MarshalText()
	return xxhash.Sum64(t)
}
