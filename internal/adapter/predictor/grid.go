package predictor

import (
	"fmt"
	"sort"

	"github.com/homeflux/homeflux/internal/core/port"
)

// Grid interpolates a precomputed self-consumption surface bilinearly over
// (consumption, generation). Queries outside the axes are clamped to the
// edge values; results are always in [0, 1].
type Grid struct {
	consumptionAxis []float64
	generationAxis  []float64
	values          [][]float64 // [consumption][generation]
}

// NewGrid validates axes (strictly increasing, at least two points) and
// the value surface shape once, so lookups stay check-free.
func NewGrid(consumptionAxis, generationAxis []float64, values [][]float64) (*Grid, error) {
	if err := checkAxis("consumption", consumptionAxis); err != nil {
		return nil, err
	}
	if err := checkAxis("generation", generationAxis); err != nil {
		return nil, err
	}
	if len(values) != len(consumptionAxis) {
		return nil, fmt.Errorf("surface has %d rows, consumption axis has %d points",
			len(values), len(consumptionAxis))
	}
	for i, row := range values {
		if len(row) != len(generationAxis) {
			return nil, fmt.Errorf("surface row %d has %d columns, generation axis has %d points",
				i, len(row), len(generationAxis))
		}
		for j, v := range row {
			if v < 0 || v > 1 {
				return nil, fmt.Errorf("surface value [%d][%d]=%v outside [0, 1]", i, j, v)
			}
		}
	}
	return &Grid{
		consumptionAxis: consumptionAxis,
		generationAxis:  generationAxis,
		values:          values,
	}, nil
}

func checkAxis(name string, axis []float64) error {
	if len(axis) < 2 {
		return fmt.Errorf("%s axis needs at least 2 points, got %d", name, len(axis))
	}
	for i := 1; i < len(axis); i++ {
		if axis[i] <= axis[i-1] {
			return fmt.Errorf("%s axis must be strictly increasing at index %d", name, i)
		}
	}
	return nil
}

func (g *Grid) CalculateSelfConsumption(consumptionWh, generationWh float64) float64 {
	ci, ct := locate(g.consumptionAxis, consumptionWh)
	gi, gt := locate(g.generationAxis, generationWh)

	v00 := g.values[ci][gi]
	v01 := g.values[ci][gi+1]
	v10 := g.values[ci+1][gi]
	v11 := g.values[ci+1][gi+1]

	low := v00 + (v01-v00)*gt
	high := v10 + (v11-v10)*gt
	ratio := low + (high-low)*ct

	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// locate returns the lower cell index and the fractional position of v
// within that cell, clamped to the axis ends.
func locate(axis []float64, v float64) (int, float64) {
	if v <= axis[0] {
		return 0, 0
	}
	last := len(axis) - 1
	if v >= axis[last] {
		return last - 1, 1
	}
	i := sort.SearchFloat64s(axis, v)
	if axis[i] > v {
		i--
	}
	return i, (v - axis[i]) / (axis[i+1] - axis[i])
}

// ensure interface compliance
var _ port.SelfConsumptionPredictor = (*Grid)(nil)
