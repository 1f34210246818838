package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/homeflux/homeflux/internal/config"
	"github.com/homeflux/homeflux/internal/core/domain"

	_ "github.com/joho/godotenv/autoload"
)

// Dispatcher runs the per-hour energy dispatch. Implemented by the
// inverter service.
type Dispatcher interface {
	ProcessEnergy(generation, consumption float64, hour int) domain.EnergyFlowResult
}

// ForecastProvider hands out the most recent adjusted forecast series.
type ForecastProvider interface {
	LatestForecast() (domain.ForecastSeries, bool)
}

type Server struct {
	port       uint
	httpLog    bool
	dispatcher Dispatcher
	forecasts  ForecastProvider
}

func NewServer(cfg config.Config, dispatcher Dispatcher, forecasts ForecastProvider) *http.Server {
	NewServer := &Server{
		port:       cfg.Port,
		httpLog:    cfg.HttpLog,
		dispatcher: dispatcher,
		forecasts:  forecasts,
	}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", NewServer.port),
		Handler:      NewServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
