package stats

import (
	"io"

	"github.com/aybabtme/uniplot/histogram"
)

// Fhistogram draws an ASCII histogram of the values in s to w.
func Fhistogram(w io.Writer, s *Statistic, bins, width int) error {
	if s.Iterations() == 0 {
		_, err := io.WriteString(w, "(no data)\n")
		return err
	}
	h := histogram.Hist(bins, s.Values())
	return histogram.Fprint(w, h, histogram.Linear(width))
}
