package service

import (
	"sync"
	"time"

	"github.com/homeflux/homeflux/internal/core/domain"

	"go.uber.org/zap"
)

// Refresher recomputes the adjusted load forecast and keeps the most
// recent series for the API and MQTT publishers. The adjustment table is
// rebuilt on every refresh, nothing is cached across horizon changes.
type Refresher struct {
	forecast *LoadForecast
	hours    int
	logger   *zap.Logger

	mu        sync.RWMutex
	latest    domain.ForecastSeries
	hasLatest bool
}

func NewRefresher(forecast *LoadForecast, hours int, logger *zap.Logger) *Refresher {
	return &Refresher{
		forecast: forecast,
		hours:    hours,
		logger:   logger.With(zap.String("component", "forecast_refresher")),
	}
}

// Refresh recalibrates and fills the horizon starting at the hour
// containing now.
func (r *Refresher) Refresh(now time.Time) domain.ForecastSeries {
	series := r.forecast.Forecast(now.Truncate(time.Hour), r.hours)

	r.mu.Lock()
	r.latest = series
	r.hasLatest = true
	r.mu.Unlock()

	r.logger.Info("forecast refresh complete",
		zap.Int("points", len(series.Points)), zap.Time("updated_at", series.UpdatedAt))
	return series
}

// LatestForecast returns the last refreshed series, if any.
func (r *Refresher) LatestForecast() (domain.ForecastSeries, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.hasLatest
}
