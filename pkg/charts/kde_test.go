package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaussianKDE_IntegratesToOne(t *testing.T) {
	data := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5, 9}
	xs, ys := gaussianKDE(data, 400)
	require.Len(t, xs, 400)
	require.Len(t, ys, 400)

	var area float64
	for i := 1; i < len(xs); i++ {
		area += (xs[i] - xs[i-1]) * (ys[i] + ys[i-1]) / 2
	}
	assert.InDelta(t, 1.0, area, 0.01)
}

func TestGaussianKDE_Empty(t *testing.T) {
	xs, ys := gaussianKDE(nil, 10)
	assert.Nil(t, xs)
	assert.Nil(t, ys)
}

func TestScottBandwidth_Degenerate(t *testing.T) {
	assert.Equal(t, 1.0, scottBandwidth([]float64{5}))
	assert.Equal(t, 1.0, scottBandwidth([]float64{5, 5, 5}))
	assert.Greater(t, scottBandwidth([]float64{1, 2, 3, 4}), 0.0)
}

func TestSturgesBins(t *testing.T) {
	assert.Equal(t, 1, sturgesBins(1))
	assert.Equal(t, 5, sturgesBins(10))
	assert.Equal(t, 50, sturgesBins(1<<60))
}
