package charts

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// scottBandwidth is Scott's rule, 1.06 * sigma * n^(-1/5). Degenerate samples
// (one value or zero spread) fall back to a bandwidth of one.
func scottBandwidth(data []float64) float64 {
	if len(data) < 2 {
		return 1
	}
	sigma := stat.StdDev(data, nil)
	if sigma == 0 || math.IsNaN(sigma) {
		return 1
	}
	return 1.06 * sigma * math.Pow(float64(len(data)), -0.2)
}

// gaussianKDE evaluates a Gaussian kernel density estimate of data on n
// evenly spaced points spanning three bandwidths past the data range.
func gaussianKDE(data []float64, n int) (xs, ys []float64) {
	if len(data) == 0 || n < 2 {
		return nil, nil
	}
	bw := scottBandwidth(data)
	lo := floats.Min(data) - 3*bw
	hi := floats.Max(data) + 3*bw

	xs = make([]float64, n)
	floats.Span(xs, lo, hi)

	kernels := make([]distuv.Normal, len(data))
	for i, d := range data {
		kernels[i] = distuv.Normal{Mu: d, Sigma: bw}
	}

	ys = make([]float64, n)
	scale := 1 / float64(len(data))
	for i, x := range xs {
		var sum float64
		for _, k := range kernels {
			sum += k.Prob(x)
		}
		ys[i] = sum * scale
	}
	return xs, ys
}

// sturgesBins picks a histogram bin count for n samples.
func sturgesBins(n int) int {
	if n <= 1 {
		return 1
	}
	bins := int(math.Ceil(math.Log2(float64(n)))) + 1
	if bins > 50 {
		bins = 50
	}
	return bins
}
