package predictor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitGrid(t *testing.T) *Grid {
	t.Helper()
	g, err := NewGrid(
		[]float64{0, 1000},
		[]float64{0, 1000},
		[][]float64{
			{0.0, 0.4},
			{0.2, 1.0},
		},
	)
	require.NoError(t, err)
	return g
}

func TestGridCornersExact(t *testing.T) {
	g := unitGrid(t)

	assert.InDelta(t, 0.0, g.CalculateSelfConsumption(0, 0), 1e-9)
	assert.InDelta(t, 0.4, g.CalculateSelfConsumption(0, 1000), 1e-9)
	assert.InDelta(t, 0.2, g.CalculateSelfConsumption(1000, 0), 1e-9)
	assert.InDelta(t, 1.0, g.CalculateSelfConsumption(1000, 1000), 1e-9)
}

func TestGridBilinearMidpoint(t *testing.T) {
	g := unitGrid(t)

	// mean of the four corners
	assert.InDelta(t, 0.4, g.CalculateSelfConsumption(500, 500), 1e-9)
}

func TestGridClampsOutsideAxes(t *testing.T) {
	g := unitGrid(t)

	assert.InDelta(t, 1.0, g.CalculateSelfConsumption(5000, 5000), 1e-9)
	assert.InDelta(t, 0.0, g.CalculateSelfConsumption(-100, -100), 1e-9)
	assert.InDelta(t, 0.4, g.CalculateSelfConsumption(-5, 1000), 1e-9)
}

func TestGridValidation(t *testing.T) {
	require := require.New(t)

	_, err := NewGrid([]float64{0}, []float64{0, 1}, [][]float64{{0, 0}})
	require.Error(err, "axis too short")

	_, err = NewGrid([]float64{0, 0}, []float64{0, 1}, [][]float64{{0, 0}, {0, 0}})
	require.Error(err, "axis not increasing")

	_, err = NewGrid([]float64{0, 1}, []float64{0, 1}, [][]float64{{0, 0}})
	require.Error(err, "row count mismatch")

	_, err = NewGrid([]float64{0, 1}, []float64{0, 1}, [][]float64{{0, 0}, {0, 1.5}})
	require.Error(err, "value outside [0,1]")
}

func TestDefaultGridInRange(t *testing.T) {
	g := DefaultGrid()
	for _, consumption := range []float64{0, 300, 1500, 5000, 20000} {
		for _, generation := range []float64{0, 800, 3000, 12000} {
			r := g.CalculateSelfConsumption(consumption, generation)
			assert.GreaterOrEqual(t, r, 0.0)
			assert.LessOrEqual(t, r, 1.0)
		}
	}
}
