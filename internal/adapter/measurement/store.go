package measurement

import (
	"sort"
	"sync"
	"time"

	"github.com/homeflux/homeflux/internal/core/domain"
	"github.com/homeflux/homeflux/internal/core/port"
)

// Store is an in-memory total-load measurement series ordered by
// timestamp. It is safe for concurrent use: the meter poller appends while
// the calibrator reads.
type Store struct {
	mu      sync.RWMutex
	samples []domain.MeasurementSample
}

func NewStore() *Store {
	return &Store{}
}

// Add records one reading, keeping the series ordered.
func (s *Store) Add(timestamp time.Time, totalLoadWh float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sample := domain.MeasurementSample{Timestamp: timestamp, TotalLoadWh: totalLoadWh}
	n := len(s.samples)
	if n == 0 || !timestamp.Before(s.samples[n-1].Timestamp) {
		s.samples = append(s.samples, sample)
		return
	}
	i := sort.Search(n, func(i int) bool {
		return s.samples[i].Timestamp.After(timestamp)
	})
	s.samples = append(s.samples, domain.MeasurementSample{})
	copy(s.samples[i+1:], s.samples[i:])
	s.samples[i] = sample
}

func (s *Store) MinDatetime() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.samples) == 0 {
		return time.Time{}, false
	}
	return s.samples[0].Timestamp, true
}

func (s *Store) MaxDatetime() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.samples) == 0 {
		return time.Time{}, false
	}
	return s.samples[len(s.samples)-1].Timestamp, true
}

// LoadTotal aggregates readings into one total per interval tick over
// [start, end], both endpoints included. A tick at time t sums the samples
// in [t, t+interval).
func (s *Store) LoadTotal(start, end time.Time, interval time.Duration) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []float64
	for t := start; !t.After(end); t = t.Add(interval) {
		out = append(out, s.sumLocked(t, t.Add(interval)))
	}
	return out
}

func (s *Store) sumLocked(from, to time.Time) float64 {
	first := sort.Search(len(s.samples), func(i int) bool {
		return !s.samples[i].Timestamp.Before(from)
	})
	var total float64
	for i := first; i < len(s.samples) && s.samples[i].Timestamp.Before(to); i++ {
		total += s.samples[i].TotalLoadWh
	}
	return total
}

// ensure interface compliance
var _ port.MeasurementSeries = (*Store)(nil)
