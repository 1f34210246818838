package service

import (
	"errors"
	"fmt"
	"math"

	"github.com/homeflux/homeflux/internal/config"
	"github.com/homeflux/homeflux/internal/core/domain"
	"github.com/homeflux/homeflux/internal/core/port"

	"go.uber.org/zap"
)

// InverterParams are the explicit setup parameters of the inverter.
type InverterParams struct {
	MaxPowerWh float64
}

// inverterProviders maps a provider identifier to the function resolving
// the inverter's maximum AC throughput from the configuration.
var inverterProviders = map[string]func(config.InverterConfig) float64{
	"GenericInverter": func(cfg config.InverterConfig) float64 { return cfg.MaxPowerWh },
}

// InverterParamsFromConfig resolves setup parameters through the provider
// mapping. Unknown providers fail here, at setup, never at dispatch time.
func InverterParamsFromConfig(cfg config.InverterConfig) (*InverterParams, error) {
	resolve, ok := inverterProviders[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown inverter provider %q", cfg.Provider)
	}
	return &InverterParams{MaxPowerWh: resolve(cfg)}, nil
}

// Inverter dispatches one hour of PV generation against consumption,
// deciding self-consumption, battery charge/discharge, grid export/import
// and conversion losses. It is stateless across calls; the only side
// effect is the battery mutation delegated through the port.
type Inverter struct {
	maxPowerWh float64
	battery    port.Battery
	predictor  port.SelfConsumptionPredictor
	logger     *zap.Logger
}

// NewInverter validates the setup once. The battery is mandatory and
// MaxPowerWh must be positive.
func NewInverter(params *InverterParams, battery port.Battery,
	predictor port.SelfConsumptionPredictor, logger *zap.Logger) (*Inverter, error) {

	if battery == nil {
		return nil, errors.New("battery for PV inverter is mandatory")
	}
	if predictor == nil {
		return nil, errors.New("self-consumption predictor for PV inverter is mandatory")
	}
	if params == nil {
		return nil, errors.New("inverter parameters missing, can't instantiate")
	}
	if params.MaxPowerWh <= 0 {
		return nil, fmt.Errorf("inverter max_power_wh must be > 0, got %v", params.MaxPowerWh)
	}
	return &Inverter{
		maxPowerWh: params.MaxPowerWh,
		battery:    battery,
		predictor:  predictor,
		logger:     logger.With(zap.String("component", "inverter")),
	}, nil
}

// MaxPowerWh returns the inverter's maximum AC throughput per hour.
func (inv *Inverter) MaxPowerWh() float64 {
	return inv.maxPowerWh
}

// ProcessEnergy dispatches one simulated hour. Inputs are watt-hours and
// must be non-negative; all result fields are non-negative. Surplus the
// inverter cannot export or the battery cannot absorb becomes losses,
// never silently dropped.
func (inv *Inverter) ProcessEnergy(generation, consumption float64, hour int) domain.EnergyFlowResult {
	var losses, gridExport, gridImport, selfConsumption float64

	if generation >= consumption {
		if consumption > inv.maxPowerWh {
			// the load alone saturates the inverter
			losses += generation - inv.maxPowerWh
			remainingPower := inv.maxPowerWh - consumption
			gridImport = -remainingPower
			selfConsumption = inv.maxPowerWh
		} else {
			scr := inv.predictor.CalculateSelfConsumption(consumption, generation)

			// surplus split: the part routed to charging/export vs the
			// imperfect part the battery has to even out
			remainingPower := (generation - consumption) * scr
			residualLoad := (generation - consumption) * (1.0 - scr)

			var fromBattery float64
			if residualLoad > 0 {
				discharge := inv.battery.DischargeEnergy(residualLoad, hour)
				fromBattery = discharge.AmountWh
				residualLoad -= fromBattery
				losses += discharge.LossesWh

				// whatever the battery cannot cover is drawn from the grid
				if residualLoad > 0 {
					gridImport += residualLoad
					residualLoad = 0
				}
			}

			if remainingPower > 0 {
				charge := inv.battery.ChargeEnergy(remainingPower, hour)
				remainingSurplus := remainingPower - (charge.AmountWh + charge.LossesWh)

				// feed-in is capped by the headroom left after the load
				if remainingSurplus > inv.maxPowerWh-consumption {
					gridExport = inv.maxPowerWh - consumption
					losses += remainingSurplus - gridExport
				} else {
					gridExport = remainingSurplus
				}
				losses += charge.LossesWh
			}
			selfConsumption = consumption + fromBattery
		}
	} else {
		// insufficient generation, cover the shortfall
		shortfall := consumption - generation
		availableACPower := math.Max(inv.maxPowerWh-generation, 0)

		discharge := inv.battery.DischargeEnergy(math.Min(shortfall, availableACPower), hour)
		losses += discharge.LossesWh

		// discharge losses are already netted out by the battery call
		gridImport = shortfall - discharge.AmountWh
		selfConsumption = generation + discharge.AmountWh
	}

	return domain.EnergyFlowResult{
		GridExport:      gridExport,
		GridImport:      gridImport,
		Losses:          losses,
		SelfConsumption: selfConsumption,
	}
}
