package config

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel zapcore.Level

	Inverter    InverterConfig    `mapstructure:"inverter"`
	Battery     BatteryConfig     `mapstructure:"battery"`
	LoadProfile LoadProfileConfig `mapstructure:"load_profile"`
	Forecast    ForecastConfig    `mapstructure:"forecast"`
	Meter       MeterConfig       `mapstructure:"meter"`
	MQTT        MQTTConfig        `mapstructure:"mqtt"`

	Timezone string `mapstructure:"timezone"`
	Port     uint   `mapstructure:"port"`
	HttpLog  bool   `mapstructure:"http_log"`
}

type InverterConfig struct {
	Provider   string  `mapstructure:"provider"`
	MaxPowerWh float64 `mapstructure:"max_power_wh"`
}

type BatteryConfig struct {
	CapacityWh          float64 `mapstructure:"capacity_wh"`
	InitialSoCPercent   float64 `mapstructure:"initial_soc_percent"`
	MinSoCPercent       float64 `mapstructure:"min_soc_percent"`
	MaxSoCPercent       float64 `mapstructure:"max_soc_percent"`
	ChargeEfficiency    float64 `mapstructure:"charge_efficiency"`
	DischargeEfficiency float64 `mapstructure:"discharge_efficiency"`
	MaxPowerW           float64 `mapstructure:"max_power_w"`

	// hours of day where discharging is disabled, e.g. while a cheap
	// tariff window should charge instead
	DischargeBlockedHours []int `mapstructure:"discharge_blocked_hours"`
}

type LoadProfileConfig struct {
	File          string  `mapstructure:"file"`
	YearEnergyKWh float64 `mapstructure:"year_energy_kwh"`
}

type ForecastConfig struct {
	PredictionHours       int    `mapstructure:"prediction_hours"`
	RefreshIntervalMillis uint32 `mapstructure:"refresh_interval_millis"`
}

type MeterConfig struct {
	Enable             bool   `mapstructure:"enable"`
	Host               string `mapstructure:"host"`
	Port               uint   `mapstructure:"port"`
	UnitId             uint   `mapstructure:"unit_id"`
	PowerRegister      uint16 `mapstructure:"power_register"`
	PollIntervalMillis uint32 `mapstructure:"poll_interval_millis"`
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}
