package domain

import (
	"fmt"
	"time"
)

const (
	ProfileDays  = 366
	HoursPerDay  = 24
	WeekdayCount = 5
)

// LoadProfileTable holds per day-of-year, per hour-of-day load statistics
// in watt-hours. Day 1 of the year maps to row 0. Shape is validated once
// when the table is built, lookups do no bounds checking.
type LoadProfileTable struct {
	mean [ProfileDays][HoursPerDay]float64
	std  [ProfileDays][HoursPerDay]float64
}

// NewLoadProfileTable builds a table from two [366][24] slices of already
// scaled watt-hour values.
func NewLoadProfileTable(mean, std [][]float64) (*LoadProfileTable, error) {
	if len(mean) != ProfileDays || len(std) != ProfileDays {
		return nil, fmt.Errorf("profile table must have %d day rows, got mean=%d std=%d",
			ProfileDays, len(mean), len(std))
	}
	t := &LoadProfileTable{}
	for d := 0; d < ProfileDays; d++ {
		if len(mean[d]) != HoursPerDay || len(std[d]) != HoursPerDay {
			return nil, fmt.Errorf("profile table day %d must have %d hour columns, got mean=%d std=%d",
				d+1, HoursPerDay, len(mean[d]), len(std[d]))
		}
		for h := 0; h < HoursPerDay; h++ {
			t.mean[d][h] = mean[d][h]
			t.std[d][h] = std[d][h]
		}
	}
	return t, nil
}

// Stats returns the (mean, std) pair for a 1-based day of year and an
// hour of day.
func (t *LoadProfileTable) Stats(dayOfYear, hour int) (float64, float64) {
	return t.mean[dayOfYear-1][hour], t.std[dayOfYear-1][hour]
}

// AdjustmentTable carries the additive per hour-of-day corrections applied
// to the baseline mean, split by weekday vs weekend class. Hours without
// measurement weight stay at zero.
type AdjustmentTable struct {
	Weekday [HoursPerDay]float64 `json:"weekday"`
	Weekend [HoursPerDay]float64 `json:"weekend"`
}

// For returns the correction for the class and hour of the given time.
func (a AdjustmentTable) For(t time.Time) float64 {
	if IsWeekday(t) {
		return a.Weekday[t.Hour()]
	}
	return a.Weekend[t.Hour()]
}

// IsWeekday reports whether t falls on Monday through Friday.
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// ForecastPoint is one hour of the adjusted load forecast.
type ForecastPoint struct {
	Time         time.Time `json:"time"`
	Mean         float64   `json:"load_mean"`
	Std          float64   `json:"load_std"`
	MeanAdjusted float64   `json:"load_mean_adjusted"`
}

// ForecastSeries is the output of one calibration run. UpdatedAt is the
// wall-clock time the adjustment was computed.
type ForecastSeries struct {
	Points    []ForecastPoint `json:"points"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MeasurementSample is a single total-load reading.
type MeasurementSample struct {
	Timestamp   time.Time
	TotalLoadWh float64
}
