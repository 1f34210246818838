package port

import (
	"github.com/homeflux/homeflux/internal/core/domain"
)

// Battery is the storage system attached to the PV inverter. State of
// charge, power limits and degradation are owned by the implementation;
// hour identifies the simulated hour for time-dependent behavior. Both
// calls must accept amount == 0 and return zeros.
type Battery interface {
	ChargeEnergy(amountWh float64, hour int) domain.BatteryOperationResult
	DischargeEnergy(amountWh float64, hour int) domain.BatteryOperationResult
}
