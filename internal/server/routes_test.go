package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/homeflux/homeflux/internal/core/domain"
	"github.com/homeflux/homeflux/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDispatcher struct {
	lastGeneration, lastConsumption float64
	lastHour                        int
	result                          domain.EnergyFlowResult
}

func (d *stubDispatcher) ProcessEnergy(generation, consumption float64, hour int) domain.EnergyFlowResult {
	d.lastGeneration = generation
	d.lastConsumption = consumption
	d.lastHour = hour
	return d.result
}

type stubForecasts struct {
	series domain.ForecastSeries
	has    bool
}

func (f *stubForecasts) LatestForecast() (domain.ForecastSeries, bool) {
	return f.series, f.has
}

func testHandler(dispatcher Dispatcher, forecasts ForecastProvider) http.Handler {
	return NewServer(util.LoadTestConfig(), dispatcher, forecasts).Handler
}

func TestHealthCheck(t *testing.T) {
	handler := testHandler(&stubDispatcher{}, &stubForecasts{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "health_check: OK")
}

func TestForecastUnavailableBeforeFirstRefresh(t *testing.T) {
	handler := testHandler(&stubDispatcher{}, &stubForecasts{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forecast", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestForecastReturnsLatestSeries(t *testing.T) {
	series := domain.ForecastSeries{
		Points: []domain.ForecastPoint{
			{Time: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Mean: 420, Std: 50, MeanAdjusted: 440},
		},
		UpdatedAt: time.Date(2024, 6, 1, 0, 5, 0, 0, time.UTC),
	}
	handler := testHandler(&stubDispatcher{}, &stubForecasts{series: series, has: true})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forecast", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.ForecastSeries
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Points, 1)
	assert.Equal(t, 440.0, got.Points[0].MeanAdjusted)
}

func TestSimulateDispatchesRequest(t *testing.T) {
	dispatcher := &stubDispatcher{
		result: domain.EnergyFlowResult{GridExport: 5000, SelfConsumption: 3000},
	}
	handler := testHandler(dispatcher, &stubForecasts{})

	body := `{"generation_wh": 8000, "consumption_wh": 3000, "hour": 12}`
	req := httptest.NewRequest(http.MethodPost, "/simulate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 8000.0, dispatcher.lastGeneration)
	assert.Equal(t, 3000.0, dispatcher.lastConsumption)
	assert.Equal(t, 12, dispatcher.lastHour)

	var got domain.EnergyFlowResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, dispatcher.result, got)
}

func TestSimulateRejectsNegativeInputs(t *testing.T) {
	handler := testHandler(&stubDispatcher{}, &stubForecasts{})

	body := `{"generation_wh": -1, "consumption_wh": 3000}`
	req := httptest.NewRequest(http.MethodPost, "/simulate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
