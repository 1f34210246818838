package port

import (
	"time"
)

// MeasurementSeries exposes recorded total-load readings. LoadTotal returns
// one aggregate per interval tick over [start, end], both endpoints
// included. The boolean results of MinDatetime/MaxDatetime report whether
// any measurement exists at all.
type MeasurementSeries interface {
	MinDatetime() (time.Time, bool)
	MaxDatetime() (time.Time, bool)
	LoadTotal(start, end time.Time, interval time.Duration) []float64
}
