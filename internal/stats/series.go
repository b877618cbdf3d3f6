package stats

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Summary condenses one metric series into the fields reports consume.
// Std is the sample standard deviation and 0 for a single observation.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Final float64 `json:"final"`
}

func Summarize(series []float64) (Summary, error) {
	if len(series) == 0 {
		return Summary{}, fmt.Errorf("series is empty")
	}

	summary := Summary{
		Count: len(series),
		Mean:  stat.Mean(series, nil),
		Min:   series[0],
		Max:   series[0],
		Final: series[len(series)-1],
	}
	if len(series) > 1 {
		summary.Std = stat.StdDev(series, nil)
	}
	for _, value := range series[1:] {
		if value < summary.Min {
			summary.Min = value
		}
		if value > summary.Max {
			summary.Max = value
		}
	}
	return summary, nil
}

// WindowedMean smooths a series with a trailing window: element i is the
// mean of the last window values up to and including i. Window sizes
// below 2 return a copy unchanged.
func WindowedMean(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	if window < 2 {
		copy(out, series)
		return out
	}
	sum := 0.0
	for i, value := range series {
		sum += value
		if i >= window {
			sum -= series[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// FinalWindowMean is the mean of the last window elements, or of the whole
// series when it is shorter than the window.
func FinalWindowMean(series []float64, window int) (float64, error) {
	if len(series) == 0 {
		return 0, fmt.Errorf("series is empty")
	}
	if window <= 0 || window > len(series) {
		window = len(series)
	}
	return stat.Mean(series[len(series)-window:], nil), nil
}
