package board

import "fmt"

// A Square is the content of a single grid cell.
type Square uint8

const (
	Empty Square = iota
	FirstDisc
	SecondDisc
	Border
)

var squareNames = [4]byte{'.', 'b', 'w', '?'}

// DiscOf returns the square that holds p's disc.
func DiscOf(p Player) Square {
	switch p {
	case First:
		return FirstDisc
	case Second:
		return SecondDisc
	}
	panic(fmt.Errorf("%w: %d", ErrInvalidPlayer, p))
}

// Owner returns the player whose disc is on s, or NoPlayer.
func (s Square) Owner() Player {
	switch s {
	case FirstDisc:
		return First
	case SecondDisc:
		return Second
	}
	return NoPlayer
}

// Name returns the single-character rendering of s.
func (s Square) Name() byte {
	if int(s) >= len(squareNames) {
		panic(fmt.Sprintf("bad square %d", s))
	}
	return squareNames[s]
}

func (s Square) String() string {
	return string(s.Name())
}

func squareFromName(c byte) (Square, bool) {
	switch c {
	case '.':
		return Empty, true
	case 'b':
		return FirstDisc, true
	case 'w':
		return SecondDisc, true
	}
	return Empty, false
}
