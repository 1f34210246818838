package domain

// EnergyFlowResult is the outcome of dispatching one simulated hour of PV
// generation against household consumption. All fields are watt-hours and
// never negative; in the common case at most one of GridExport/GridImport
// is non-zero.
type EnergyFlowResult struct {
	GridExport      float64 `json:"grid_export_wh"`
	GridImport      float64 `json:"grid_import_wh"`
	Losses          float64 `json:"losses_wh"`
	SelfConsumption float64 `json:"self_consumption_wh"`
}

// BatteryOperationResult is returned by a single charge or discharge call.
// AmountWh is the energy actually applied (charged into or delivered from
// the battery), never more than requested. LossesWh is the conversion loss
// of that operation.
type BatteryOperationResult struct {
	AmountWh float64
	LossesWh float64
}
