package port

import (
	"github.com/homeflux/homeflux/internal/core/domain"
)

// LoadProfileSource builds the baseline statistics table by scaling a
// relative yearly profile by the configured yearly energy (kWh).
// Implementations report a distinct "not found" error when the backing
// archive is missing and a generic load error for any other failure.
type LoadProfileSource interface {
	LoadProfileTable(yearEnergyKWh float64) (*domain.LoadProfileTable, error)
}
