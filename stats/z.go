package stats

import "gonum.org/v1/gonum/stat/distuv"

// ZVal returns the two-tailed Z-value associated with a specific confidence interval.
// The interval is a number from 0 to 100 percent.
func ZVal(confidenceInterval float64) float64 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: 1,
	}
	area := (1 + (confidenceInterval / 100)) / 2
	return dist.Quantile(area)
}

// Interval returns the confidence interval around the mean of s, e.g.
// Interval(s, 95).
func Interval(s *Statistic, confidence float64) (float64, float64) {
	margin := ZVal(confidence) * s.StandardError()
	return s.Mean() - margin, s.Mean() + margin
}
