package server

import (
	"fmt"
	"net/http"

	"github.com/carlmjohnson/versioninfo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type simulateRequest struct {
	GenerationWh  float64 `json:"generation_wh"`
	ConsumptionWh float64 `json:"consumption_wh"`
	Hour          int     `json:"hour"`
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/forecast", s.ForecastHandler)
	e.POST("/simulate", s.SimulateHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	return c.String(http.StatusOK, fmt.Sprintf("health_check: OK (%s)", versioninfo.Short()))
}

func (s *Server) ForecastHandler(c echo.Context) error {
	series, ok := s.forecasts.LatestForecast()
	if !ok {
		return c.String(http.StatusServiceUnavailable, "forecast not refreshed yet")
	}
	return c.JSON(http.StatusOK, series)
}

func (s *Server) SimulateHandler(c echo.Context) error {
	var req simulateRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "invalid request body")
	}
	if req.GenerationWh < 0 || req.ConsumptionWh < 0 {
		return c.String(http.StatusBadRequest, "generation_wh and consumption_wh must be >= 0")
	}
	result := s.dispatcher.ProcessEnergy(req.GenerationWh, req.ConsumptionWh, req.Hour)
	return c.JSON(http.StatusOK, result)
}
