package port

// SelfConsumptionPredictor estimates which fraction of a generation surplus
// is consumed directly instead of being exported. The returned ratio is in
// [0, 1] and deterministic for the same pair of inputs.
type SelfConsumptionPredictor interface {
	CalculateSelfConsumption(consumptionWh, generationWh float64) float64
}
