package battery

import (
	"fmt"

	"github.com/homeflux/homeflux/internal/config"
	"github.com/homeflux/homeflux/internal/core/domain"
	"github.com/homeflux/homeflux/internal/core/port"
)

// Battery is a state-of-charge tracking storage model with separate charge
// and discharge conversion efficiencies, SoC floor/ceiling and an hourly
// converter power limit. It implements port.Battery for the inverter.
//
// ChargeEnergy reports the energy stored in the cell; the grid-side draw is
// stored + losses and never exceeds the request. DischargeEnergy reports
// the energy delivered after losses.
type Battery struct {
	capacityWh   float64
	minSoCWh     float64
	maxSoCWh     float64
	chargeEff    float64
	dischargeEff float64
	maxPowerWh   float64

	socWh float64

	// hours of day where discharging is disabled, e.g. while a cheap
	// tariff window should charge instead
	dischargeBlocked [domain.HoursPerDay]bool
}

func New(cfg config.BatteryConfig) (*Battery, error) {
	if cfg.CapacityWh <= 0 {
		return nil, fmt.Errorf("battery capacity_wh must be > 0, got %v", cfg.CapacityWh)
	}
	if cfg.ChargeEfficiency <= 0 || cfg.ChargeEfficiency > 1 {
		return nil, fmt.Errorf("battery charge_efficiency must be in (0, 1], got %v", cfg.ChargeEfficiency)
	}
	if cfg.DischargeEfficiency <= 0 || cfg.DischargeEfficiency > 1 {
		return nil, fmt.Errorf("battery discharge_efficiency must be in (0, 1], got %v", cfg.DischargeEfficiency)
	}
	if cfg.MinSoCPercent < 0 || cfg.MaxSoCPercent > 100 || cfg.MinSoCPercent >= cfg.MaxSoCPercent {
		return nil, fmt.Errorf("battery SoC bounds invalid: min=%v max=%v", cfg.MinSoCPercent, cfg.MaxSoCPercent)
	}

	b := &Battery{
		capacityWh:   cfg.CapacityWh,
		minSoCWh:     cfg.CapacityWh * cfg.MinSoCPercent / 100,
		maxSoCWh:     cfg.CapacityWh * cfg.MaxSoCPercent / 100,
		chargeEff:    cfg.ChargeEfficiency,
		dischargeEff: cfg.DischargeEfficiency,
		maxPowerWh:   cfg.MaxPowerW,
	}
	b.socWh = cfg.CapacityWh * cfg.InitialSoCPercent / 100
	if b.socWh < b.minSoCWh {
		b.socWh = b.minSoCWh
	}
	if b.socWh > b.maxSoCWh {
		b.socWh = b.maxSoCWh
	}
	for _, h := range cfg.DischargeBlockedHours {
		if h < 0 || h >= domain.HoursPerDay {
			return nil, fmt.Errorf("battery discharge_blocked_hours entry %d outside [0, 23]", h)
		}
		b.dischargeBlocked[h] = true
	}
	return b, nil
}

// SetDischargeAllowed enables or disables discharging for an hour of day.
func (b *Battery) SetDischargeAllowed(hour int, allowed bool) {
	b.dischargeBlocked[hour%domain.HoursPerDay] = !allowed
}

// SoCPercent returns the current state of charge in percent of capacity.
func (b *Battery) SoCPercent() float64 {
	return b.socWh / b.capacityWh * 100
}

func (b *Battery) ChargeEnergy(amountWh float64, hour int) domain.BatteryOperationResult {
	if amountWh <= 0 {
		return domain.BatteryOperationResult{}
	}
	request := amountWh
	if b.maxPowerWh > 0 && request > b.maxPowerWh {
		request = b.maxPowerWh
	}
	stored := request * b.chargeEff
	if free := b.maxSoCWh - b.socWh; stored > free {
		stored = free
	}
	if stored <= 0 {
		return domain.BatteryOperationResult{}
	}
	drawn := stored / b.chargeEff
	b.socWh += stored
	return domain.BatteryOperationResult{AmountWh: stored, LossesWh: drawn - stored}
}

func (b *Battery) DischargeEnergy(amountWh float64, hour int) domain.BatteryOperationResult {
	if amountWh <= 0 {
		return domain.BatteryOperationResult{}
	}
	if b.dischargeBlocked[((hour%domain.HoursPerDay)+domain.HoursPerDay)%domain.HoursPerDay] {
		return domain.BatteryOperationResult{}
	}
	fromCell := amountWh / b.dischargeEff
	if b.maxPowerWh > 0 && fromCell > b.maxPowerWh {
		fromCell = b.maxPowerWh
	}
	if available := b.socWh - b.minSoCWh; fromCell > available {
		fromCell = available
	}
	if fromCell <= 0 {
		return domain.BatteryOperationResult{}
	}
	delivered := fromCell * b.dischargeEff
	b.socWh -= fromCell
	return domain.BatteryOperationResult{AmountWh: delivered, LossesWh: fromCell - delivered}
}

// ensure interface compliance
var _ port.Battery = (*Battery)(nil)
