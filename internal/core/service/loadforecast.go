package service

import (
	"time"

	"github.com/homeflux/homeflux/internal/core/domain"
	"github.com/homeflux/homeflux/internal/core/port"

	"go.uber.org/zap"
)

const (
	compareWindow   = 7 * 24 * time.Hour
	compareInterval = time.Hour
)

// LoadForecast calibrates the statistical baseline load profile against
// recent measurements and produces the adjusted forecast series.
type LoadForecast struct {
	profile      *domain.LoadProfileTable
	measurements port.MeasurementSeries
	location     *time.Location
	logger       *zap.Logger
}

func NewLoadForecast(profile *domain.LoadProfileTable, measurements port.MeasurementSeries,
	location *time.Location, logger *zap.Logger) *LoadForecast {

	if location == nil {
		location = time.Local
	}
	return &LoadForecast{
		profile:      profile,
		measurements: measurements,
		location:     location,
		logger:       logger.With(zap.String("component", "load_forecast")),
	}
}

// CalculateAdjustment compares the baseline against the trailing seven days
// of measurements (clipped to the earliest available one) and returns the
// weighted-mean residual per hour-of-day, split by weekday/weekend class.
// Without any measurement the adjustment stays all-zero.
func (f *LoadForecast) CalculateAdjustment() domain.AdjustmentTable {
	var adjust domain.AdjustmentTable
	var weekdayWeight, weekendWeight [domain.HoursPerDay]float64

	compareEnd, ok := f.measurements.MaxDatetime()
	if !ok {
		return adjust
	}
	compareStart := compareEnd.Add(-compareWindow)
	if minDatetime, ok := f.measurements.MinDatetime(); ok && compareStart.Before(minDatetime) {
		// not enough measurements for 7 days, use what is available
		compareStart = minDatetime
	}

	loadTotals := f.measurements.LoadTotal(compareStart, compareEnd, compareInterval)
	compareDt := compareStart
	for _, loadTotal := range loadTotals {
		// day/hour classification uses the civil date in the configured
		// location, not the sample timestamp's own zone
		local := compareDt.In(f.location)
		mean, _ := f.profile.Stats(local.YearDay(), local.Hour())
		// recency weighting: whole calendar days from the window end,
		// inverse-linear, not exponential decay
		weight := 1.0 / float64(wholeDaysBetween(compareEnd, compareDt)+1)
		hour := local.Hour()
		if domain.IsWeekday(local) {
			adjust.Weekday[hour] += (loadTotal - mean) * weight
			weekdayWeight[hour] += weight
		} else {
			adjust.Weekend[hour] += (loadTotal - mean) * weight
			weekendWeight[hour] += weight
		}
		compareDt = compareDt.Add(compareInterval)
	}

	for i := 0; i < domain.HoursPerDay; i++ {
		if weekdayWeight[i] > 0 {
			adjust.Weekday[i] /= weekdayWeight[i]
		}
		if weekendWeight[i] > 0 {
			adjust.Weekend[i] /= weekendWeight[i]
		}
	}
	return adjust
}

// Forecast fills the horizon starting at start with baseline mean/std and
// the class-adjusted mean for each hour.
func (f *LoadForecast) Forecast(start time.Time, hours int) domain.ForecastSeries {
	adjust := f.CalculateAdjustment()

	points := make([]domain.ForecastPoint, 0, hours)
	date := start
	for i := 0; i < hours; i++ {
		local := date.In(f.location)
		mean, std := f.profile.Stats(local.YearDay(), local.Hour())
		points = append(points, domain.ForecastPoint{
			Time:         date,
			Mean:         mean,
			Std:          std,
			MeanAdjusted: mean + adjust.For(local),
		})
		date = date.Add(time.Hour)
	}
	f.logger.Debug("forecast refreshed", zap.Int("hours", hours), zap.Time("start", start))
	return domain.ForecastSeries{
		Points:    points,
		UpdatedAt: time.Now().In(f.location),
	}
}

// wholeDaysBetween returns the number of whole days from t back to end.
func wholeDaysBetween(end, t time.Time) int {
	return int(end.Sub(t).Hours() / 24)
}
