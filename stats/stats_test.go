package stats

import (
	"bytes"
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		scores []int
		mean   float64
		stdev  float64
	}
	cases := []tc{
		{[]int{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891},
		{[]int{1}, 1, 0},
		{[]int{}, 0, 0},
		{[]int{1, 1}, 1, 0},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, score := range c.scores {
			s.Push(float64(score))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
		is.Equal(s.Iterations(), len(c.scores))
	}
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(FuzzyEqual(ZVal(95), 1.959963984540054))
	is.True(FuzzyEqual(ZVal(0), 0))
}

func TestInterval(t *testing.T) {
	is := is.New(t)
	s := &Statistic{}
	for _, v := range []float64{1, 0, 1, 1, 0, 1, 0, 1} {
		s.Push(v)
	}
	lo, hi := Interval(s, 95)
	is.True(lo < s.Mean())
	is.True(hi > s.Mean())
	is.True(FuzzyEqual(s.Mean()-lo, hi-s.Mean()))
}

func TestFhistogram(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	is.NoErr(Fhistogram(&buf, &Statistic{}, 5, 20))
	is.Equal(buf.String(), "(no data)\n")

	s := &Statistic{}
	for _, v := range []float64{-10, -2, 0, 4, 4, 12, 30} {
		s.Push(v)
	}
	buf.Reset()
	is.NoErr(Fhistogram(&buf, s, 4, 20))
	is.True(buf.Len() > 0)
	is.Equal(s.Last(), 30.0)
}
