package util

import (
	"github.com/homeflux/homeflux/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		Inverter: config.InverterConfig{
			Provider:   "GenericInverter",
			MaxPowerWh: 10000,
		},
		Battery: config.BatteryConfig{
			CapacityWh:          10000,
			InitialSoCPercent:   50,
			MinSoCPercent:       10,
			MaxSoCPercent:       90,
			ChargeEfficiency:    0.9,
			DischargeEfficiency: 0.9,
		},
		LoadProfile: config.LoadProfileConfig{
			File:          "testdata/load_profiles.json",
			YearEnergyKWh: 4000,
		},
		Forecast: config.ForecastConfig{
			PredictionHours:       48,
			RefreshIntervalMillis: 3600000,
		},
		MQTT: config.MQTTConfig{
			Host:      "localhost",
			Port:      1883,
			BaseTopic: "homeflux",
		},
		Timezone: "UTC",
		Port:     8080,
	}
}
