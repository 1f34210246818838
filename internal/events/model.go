package events

import (
	"time"

	"github.com/homeflux/homeflux/internal/core/domain"
)

type Device struct {
	Id           string
	Name         string
	Version      string
	Model        string
	Manufacturer string
}

type GenericSensor struct {
	Device            Device
	Id                string
	SensorType        string
	Name              string
	UniqueId          string
	UnitOfMeasurement string
	StateClass        string // measurement, total_increasing
	DeviceClass       string // power, energy
	Icon              string
}

// EnergyFlowMessage is the per-hour dispatch result published on the flow
// state topic.
type EnergyFlowMessage struct {
	Hour   int                     `json:"hour"`
	Result domain.EnergyFlowResult `json:"result"`
}

// ForecastMessage is the adjusted load forecast published on the forecast
// state topic.
type ForecastMessage struct {
	UpdatedAt time.Time              `json:"updated_at"`
	Points    []domain.ForecastPoint `json:"points"`
}
