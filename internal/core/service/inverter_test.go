package service

import (
	"testing"

	"github.com/homeflux/homeflux/internal/config"
	"github.com/homeflux/homeflux/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fixedRatio is a predictor that always returns the same ratio.
type fixedRatio float64

func (r fixedRatio) CalculateSelfConsumption(consumptionWh, generationWh float64) float64 {
	return float64(r)
}

// stubBattery answers charge/discharge requests with scripted functions.
// The zero value is a no-op battery (applies nothing, loses nothing).
type stubBattery struct {
	chargeFn    func(amountWh float64, hour int) domain.BatteryOperationResult
	dischargeFn func(amountWh float64, hour int) domain.BatteryOperationResult
}

func (b *stubBattery) ChargeEnergy(amountWh float64, hour int) domain.BatteryOperationResult {
	if b.chargeFn == nil {
		return domain.BatteryOperationResult{}
	}
	return b.chargeFn(amountWh, hour)
}

func (b *stubBattery) DischargeEnergy(amountWh float64, hour int) domain.BatteryOperationResult {
	if b.dischargeFn == nil {
		return domain.BatteryOperationResult{}
	}
	return b.dischargeFn(amountWh, hour)
}

// perfectBattery applies every request in full with zero losses.
func perfectBattery() *stubBattery {
	apply := func(amountWh float64, hour int) domain.BatteryOperationResult {
		return domain.BatteryOperationResult{AmountWh: amountWh}
	}
	return &stubBattery{chargeFn: apply, dischargeFn: apply}
}

func newTestInverter(t *testing.T, maxPowerWh float64, battery *stubBattery, scr float64) *Inverter {
	t.Helper()
	inv, err := NewInverter(&InverterParams{MaxPowerWh: maxPowerWh}, battery, fixedRatio(scr), zap.NewNop())
	require.NoError(t, err)
	return inv
}

func TestSurplusFullSelfConsumptionExportsRest(t *testing.T) {
	inv := newTestInverter(t, 10000, &stubBattery{}, 1.0)

	r := inv.ProcessEnergy(8000, 3000, 0)

	assert.Equal(t, 5000.0, r.GridExport)
	assert.Equal(t, 0.0, r.GridImport)
	assert.Equal(t, 0.0, r.Losses)
	assert.Equal(t, 3000.0, r.SelfConsumption)
}

func TestDeficitFullyCoveredByBattery(t *testing.T) {
	battery := perfectBattery()
	var requested float64
	battery.dischargeFn = func(amountWh float64, hour int) domain.BatteryOperationResult {
		requested = amountWh
		return domain.BatteryOperationResult{AmountWh: amountWh}
	}
	inv := newTestInverter(t, 10000, battery, 1.0)

	r := inv.ProcessEnergy(1000, 4000, 3)

	assert.Equal(t, 3000.0, requested, "discharge request is min(shortfall, ac headroom)")
	assert.Equal(t, 0.0, r.GridExport)
	assert.Equal(t, 0.0, r.GridImport)
	assert.Equal(t, 0.0, r.Losses)
	assert.Equal(t, 4000.0, r.SelfConsumption)
}

func TestLoadSaturatesInverter(t *testing.T) {
	inv := newTestInverter(t, 10000, &stubBattery{}, 1.0)

	r := inv.ProcessEnergy(15000, 12000, 12)

	assert.Equal(t, 0.0, r.GridExport)
	assert.Equal(t, 2000.0, r.GridImport)
	assert.Equal(t, 5000.0, r.Losses)
	assert.Equal(t, 10000.0, r.SelfConsumption)
}

func TestExportCappedAtInverterHeadroom(t *testing.T) {
	inv := newTestInverter(t, 10000, &stubBattery{}, 1.0)

	// surplus of 11000 but only 1000 of headroom left after the load
	r := inv.ProcessEnergy(20000, 9000, 0)

	assert.Equal(t, 1000.0, r.GridExport)
	assert.Equal(t, 0.0, r.GridImport)
	assert.Equal(t, 10000.0, r.Losses)
	assert.Equal(t, 9000.0, r.SelfConsumption)
}

func TestImperfectSelfConsumptionUsesBattery(t *testing.T) {
	battery := &stubBattery{
		dischargeFn: func(amountWh float64, hour int) domain.BatteryOperationResult {
			return domain.BatteryOperationResult{AmountWh: 1500, LossesWh: 100}
		},
		chargeFn: func(amountWh float64, hour int) domain.BatteryOperationResult {
			return domain.BatteryOperationResult{AmountWh: 1800, LossesWh: 200}
		},
	}
	inv := newTestInverter(t, 10000, battery, 0.5)

	// surplus 4000: 2000 for charging/export, 2000 imperfect
	r := inv.ProcessEnergy(5000, 1000, 6)

	// imperfect part: battery supplies 1500, the rest comes from the grid
	assert.Equal(t, 500.0, r.GridImport)
	// charge absorbs 1800+200, nothing is left to export
	assert.Equal(t, 0.0, r.GridExport)
	assert.Equal(t, 300.0, r.Losses)
	assert.Equal(t, 2500.0, r.SelfConsumption)
}

func TestDeficitPartialBatteryBalancesEnergy(t *testing.T) {
	battery := &stubBattery{
		dischargeFn: func(amountWh float64, hour int) domain.BatteryOperationResult {
			return domain.BatteryOperationResult{AmountWh: 1200, LossesWh: 150}
		},
	}
	inv := newTestInverter(t, 10000, battery, 1.0)

	r := inv.ProcessEnergy(500, 4200, 20)

	assert.Equal(t, 0.0, r.GridExport)
	assert.Equal(t, 2500.0, r.GridImport)
	assert.Equal(t, 150.0, r.Losses)
	assert.Equal(t, 1700.0, r.SelfConsumption)
	// deficit branch energy balance: generation + battery + grid = consumption
	assert.Equal(t, 4200.0, r.SelfConsumption+r.GridImport)
}

func TestZeroGenerationZeroConsumption(t *testing.T) {
	inv := newTestInverter(t, 10000, &stubBattery{}, 1.0)

	r := inv.ProcessEnergy(0, 0, 0)

	assert.Equal(t, domain.EnergyFlowResult{}, r)
}

func TestResultsNeverNegative(t *testing.T) {
	// lossy battery: applies half of every request, loses 10% of it
	battery := &stubBattery{
		chargeFn: func(amountWh float64, hour int) domain.BatteryOperationResult {
			return domain.BatteryOperationResult{AmountWh: amountWh * 0.5, LossesWh: amountWh * 0.05}
		},
		dischargeFn: func(amountWh float64, hour int) domain.BatteryOperationResult {
			return domain.BatteryOperationResult{AmountWh: amountWh * 0.5, LossesWh: amountWh * 0.05}
		},
	}
	levels := []float64{0, 100, 2500, 9999, 10000, 10001, 16000}
	for _, scr := range []float64{0, 0.25, 1} {
		inv := newTestInverter(t, 10000, battery, scr)
		for _, generation := range levels {
			for _, consumption := range levels {
				r := inv.ProcessEnergy(generation, consumption, 0)
				assert.GreaterOrEqual(t, r.GridExport, 0.0)
				assert.GreaterOrEqual(t, r.GridImport, 0.0)
				assert.GreaterOrEqual(t, r.Losses, 0.0)
				assert.GreaterOrEqual(t, r.SelfConsumption, 0.0)
				if generation < consumption {
					assert.Equal(t, 0.0, r.GridExport, "no export on deficit")
				}
				if consumption <= 10000 {
					assert.LessOrEqual(t, r.GridExport, 10000-consumption+1e-9, "export capped at headroom")
				}
			}
		}
	}
}

func TestNewInverterValidation(t *testing.T) {
	require := require.New(t)

	_, err := NewInverter(&InverterParams{MaxPowerWh: 10000}, nil, fixedRatio(1), zap.NewNop())
	require.Error(err, "battery is mandatory")

	_, err = NewInverter(nil, &stubBattery{}, fixedRatio(1), zap.NewNop())
	require.Error(err, "parameters are mandatory")

	_, err = NewInverter(&InverterParams{MaxPowerWh: 0}, &stubBattery{}, fixedRatio(1), zap.NewNop())
	require.Error(err, "max power must be positive")

	_, err = NewInverter(&InverterParams{MaxPowerWh: 10000}, &stubBattery{}, nil, zap.NewNop())
	require.Error(err, "predictor is mandatory")
}

func TestInverterParamsFromConfig(t *testing.T) {
	require := require.New(t)

	params, err := InverterParamsFromConfig(config.InverterConfig{
		Provider:   "GenericInverter",
		MaxPowerWh: 8000,
	})
	require.NoError(err)
	require.Equal(8000.0, params.MaxPowerWh)

	_, err = InverterParamsFromConfig(config.InverterConfig{Provider: "NoSuchInverter"})
	require.Error(err)
}
