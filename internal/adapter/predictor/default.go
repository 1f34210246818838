package predictor

// DefaultGrid is a coarse household self-consumption surface: the ratio
// rises with consumption and falls as the generation surplus grows. Real
// installations should replace it with a surface fitted to their own
// interpolation data.
func DefaultGrid() *Grid {
	consumptionAxis := []float64{0, 500, 1000, 2000, 4000, 8000}
	generationAxis := []float64{0, 1000, 2000, 4000, 6000, 10000}
	values := [][]float64{
		{0.00, 0.05, 0.05, 0.05, 0.05, 0.05},
		{0.30, 0.45, 0.35, 0.25, 0.20, 0.15},
		{0.45, 0.65, 0.55, 0.40, 0.30, 0.25},
		{0.60, 0.80, 0.75, 0.60, 0.50, 0.40},
		{0.75, 0.90, 0.85, 0.80, 0.70, 0.60},
		{0.85, 0.95, 0.95, 0.90, 0.85, 0.80},
	}
	grid, err := NewGrid(consumptionAxis, generationAxis, values)
	if err != nil {
		// the table above is static, a shape error is a programming bug
		panic(err)
	}
	return grid
}
