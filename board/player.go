package board

import (
	"errors"
	"fmt"
	"strings"
)

// Player is one of the two sides. First moves first and plays the black
// discs.
type Player uint8

const (
	NoPlayer Player = iota
	First
	Second
)

var ErrInvalidPlayer = errors.New("invalid player")

// Opponent returns the other side. Asking for the opponent of anything but
// First or Second is a programming error and panics.
func (p Player) Opponent() Player {
	switch p {
	case First:
		return Second
	case Second:
		return First
	}
	panic(fmt.Errorf("%w: %d", ErrInvalidPlayer, p))
}

func (p Player) Valid() bool {
	return p == First || p == Second
}

func (p Player) String() string {
	switch p {
	case First:
		return "black"
	case Second:
		return "white"
	}
	return "none"
}

// PlayerFromString accepts black/white, b/w, first/second or 1/2.
func PlayerFromString(s string) (Player, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "black", "b", "first", "1":
		return First, nil
	case "white", "w", "second", "2":
		return Second, nil
	}
	return NoPlayer, fmt.Errorf("%w: %q", ErrInvalidPlayer, s)
}
