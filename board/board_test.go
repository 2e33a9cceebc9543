package board

import (
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestInitialBoard(t *testing.T) {
	is := is.New(t)
	b := NewBoard()
	is.Equal(b.Count(First), 2)
	is.Equal(b.Count(Second), 2)
	is.Equal(b.Empties(), NumInterior-4)
	is.Equal(b.At(44), SecondDisc)
	is.Equal(b.At(45), FirstDisc)
	is.Equal(b.At(54), FirstDisc)
	is.Equal(b.At(55), SecondDisc)

	for l := Loc(0); l < NumSquares; l++ {
		if IsInside(l) {
			is.True(b.At(l) != Border)
		} else {
			is.Equal(b.At(l), Border)
		}
	}
}

func TestIsInside(t *testing.T) {
	is := is.New(t)
	is.True(!IsInside(0))
	is.True(!IsInside(10))
	is.True(IsInside(11))
	is.True(IsInside(18))
	is.True(!IsInside(19))
	is.True(!IsInside(20))
	is.True(IsInside(88))
	is.True(!IsInside(89))
	is.True(!IsInside(99))
	is.True(!IsInside(-1))
	is.True(!IsInside(100))

	ct := 0
	for l := Loc(0); l < NumSquares; l++ {
		if IsInside(l) {
			ct++
		}
	}
	is.Equal(ct, NumInterior)
}

func TestRowColRoundTrip(t *testing.T) {
	is := is.New(t)
	prev := Loc(-1)
	for _, l := range Interior() {
		is.True(l > prev)
		prev = l
		r, c := l.RowCol()
		back, err := LocFromRowCol(r, c)
		is.NoErr(err)
		is.Equal(back, l)
	}
	_, err := LocFromRowCol(8, 0)
	is.True(errors.Is(err, ErrOutOfRange))
	_, err = LocFromRowCol(0, -1)
	is.True(errors.Is(err, ErrOutOfRange))
}

func TestOpponent(t *testing.T) {
	is := is.New(t)
	is.Equal(First.Opponent(), Second)
	is.Equal(Second.Opponent(), First)
	is.Equal(First.Opponent().Opponent(), First)

	defer func() {
		r := recover()
		is.True(r != nil)
		err, ok := r.(error)
		is.True(ok)
		is.True(errors.Is(err, ErrInvalidPlayer))
	}()
	NoPlayer.Opponent()
}

func TestCopyIsIndependent(t *testing.T) {
	is := is.New(t)
	b := NewBoard()
	c := b.Copy()
	c.Set(11, FirstDisc)
	is.Equal(b.At(11), Empty)
	is.Equal(c.At(11), FirstDisc)
	is.True(!b.Equals(c))
	b.CopyFrom(c)
	is.True(b.Equals(c))
}

func TestTextRoundTrip(t *testing.T) {
	is := is.New(t)
	b := NewBoard()
	text, err := b.MarshalText()
	is.NoErr(err)
	is.Equal(string(text), "......../......../......../...wb.../...bw.../......../......../........")
	is.Equal(len(text), NumInterior+Dim-1)

	c := &Board{}
	is.NoErr(c.UnmarshalText(text))
	is.True(b.Equals(c))
	is.Equal(b.Checksum(), c.Checksum())

	c.Set(11, SecondDisc)
	is.True(b.Checksum() != c.Checksum())

	err = c.UnmarshalText([]byte("......../........"))
	is.True(errors.Is(err, ErrBadBoardText))
	_, err = FromRows("bbbbbbbb", "x.......", "........", "........",
		"........", "........", "........", "........")
	is.True(errors.Is(err, ErrBadBoardText))
}

func TestDisplayText(t *testing.T) {
	is := is.New(t)
	lines := strings.Split(NewBoard().ToDisplayText(), "\n")
	is.Equal(lines[0], "   1 2 3 4 5 6 7 8 [b=2 w=2]")
	is.Equal(lines[4], "4  . . . w b . . . ")
	is.Equal(lines[5], "5  . . . b w . . . ")
	is.Equal(len(lines), 10)
}

func TestPlayerFromString(t *testing.T) {
	is := is.New(t)
	p, err := PlayerFromString("Black")
	is.NoErr(err)
	is.Equal(p, First)
	p, err = PlayerFromString("w")
	is.NoErr(err)
	is.Equal(p, Second)
	_, err = PlayerFromString("green")
	is.True(errors.Is(err, ErrInvalidPlayer))
}
