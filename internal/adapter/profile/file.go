package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/homeflux/homeflux/internal/core/domain"
	"github.com/homeflux/homeflux/internal/core/port"
	"github.com/homeflux/homeflux/internal/util/logutil"

	"go.uber.org/zap"
)

var (
	// ErrProfileNotFound reports a missing profile archive.
	ErrProfileNotFound = errors.New("load profile file not found")
	// ErrProfileLoad reports any other read or parse failure.
	ErrProfileLoad = errors.New("load profile could not be loaded")
)

// archive mirrors the on-disk profile file: relative per-unit values
// shaped [day_of_year: 366][hour: 24].
type archive struct {
	YearlyProfiles    [][]float64 `json:"yearly_profiles"`
	YearlyProfilesStd [][]float64 `json:"yearly_profiles_std"`
}

// FileSource builds the baseline statistics table from a JSON profile
// archive, scaling the relative values by the yearly energy to watt-hours.
type FileSource struct {
	path   string
	logger *zap.Logger
}

func NewFileSource(path string, logger *zap.Logger) *FileSource {
	return &FileSource{
		path:   path,
		logger: logutil.ComponentLogger("load_profile", logger),
	}
}

func (s *FileSource) LoadProfileTable(yearEnergyKWh float64) (*domain.LoadProfileTable, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("profile archive missing", zap.String("file", s.path))
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, s.path)
		}
		return nil, fmt.Errorf("%w: %v", ErrProfileLoad, err)
	}

	var a archive
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileLoad, err)
	}

	// relative profile values scaled by yearly consumption (kWh) to W
	scale := yearEnergyKWh * 1000
	mean := scaleRows(a.YearlyProfiles, scale)
	std := scaleRows(a.YearlyProfilesStd, scale)

	table, err := domain.NewLoadProfileTable(mean, std)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileLoad, err)
	}
	s.logger.Debug("profile archive loaded",
		zap.String("file", s.path), zap.Float64("year_energy_kwh", yearEnergyKWh))
	return table, nil
}

func scaleRows(rows [][]float64, scale float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = v * scale
		}
	}
	return out
}

// ensure interface compliance
var _ port.LoadProfileSource = (*FileSource)(nil)
