package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// WelchResult is a two-sided Welch's t-test between two independent
// samples with possibly unequal variances.
type WelchResult struct {
	MeanA float64 `json:"mean_a"`
	MeanB float64 `json:"mean_b"`
	T     float64 `json:"t"`
	DF    float64 `json:"df"`
	P     float64 `json:"p"`
}

// Welch compares two samples, typically final accuracies across seeds for
// two experiment conditions. Each sample needs at least two observations.
func Welch(a, b []float64) (WelchResult, error) {
	if len(a) < 2 || len(b) < 2 {
		return WelchResult{}, fmt.Errorf("welch test needs at least two observations per sample: got=%d and %d", len(a), len(b))
	}

	meanA := stat.Mean(a, nil)
	meanB := stat.Mean(b, nil)
	varA := stat.Variance(a, nil)
	varB := stat.Variance(b, nil)

	na := float64(len(a))
	nb := float64(len(b))
	sa := varA / na
	sb := varB / nb
	se := sa + sb
	if se == 0 {
		// Identical constant samples carry no evidence either way.
		return WelchResult{MeanA: meanA, MeanB: meanB, DF: na + nb - 2, P: 1}, nil
	}

	t := (meanA - meanB) / math.Sqrt(se)
	// Welch-Satterthwaite degrees of freedom.
	df := se * se / (sa*sa/(na-1) + sb*sb/(nb-1))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))

	return WelchResult{MeanA: meanA, MeanB: meanB, T: t, DF: df, P: p}, nil
}
