package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/homeflux/homeflux/internal/adapter/battery"
	"github.com/homeflux/homeflux/internal/adapter/measurement"
	"github.com/homeflux/homeflux/internal/adapter/meter"
	"github.com/homeflux/homeflux/internal/adapter/predictor"
	"github.com/homeflux/homeflux/internal/adapter/profile"
	"github.com/homeflux/homeflux/internal/config"
	"github.com/homeflux/homeflux/internal/core/domain"
	"github.com/homeflux/homeflux/internal/core/service"
	"github.com/homeflux/homeflux/internal/events"
	"github.com/homeflux/homeflux/internal/mqtt"
	"github.com/homeflux/homeflux/internal/server"
	"github.com/homeflux/homeflux/internal/util/logutil"

	"github.com/reugn/go-quartz/job"
	"github.com/reugn/go-quartz/quartz"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		return
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())
	defer logger.Sync()

	slog.SetDefault(logutil.NewSlogBridge(logger))

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal("invalid timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	// baseline profile table
	profileSource := profile.NewFileSource(cfg.LoadProfile.File, logger)
	table, err := profileSource.LoadProfileTable(cfg.LoadProfile.YearEnergyKWh)
	if err != nil {
		logger.Fatal("could not load baseline profile", zap.Error(err))
	}

	// measurement series, optionally fed by the modbus meter
	store := measurement.NewStore()
	if cfg.Meter.Enable {
		poller, err := meter.NewPoller(cfg.Meter, store, logger)
		if err != nil {
			logger.Fatal("could not create meter poller", zap.Error(err))
		}
		if err := poller.Start(); err != nil {
			logger.Fatal("could not start meter poller", zap.Error(err))
		}
		defer poller.Stop()
	}

	// dispatch pipeline
	bat, err := battery.New(cfg.Battery)
	if err != nil {
		logger.Fatal("invalid battery config", zap.Error(err))
	}
	params, err := service.InverterParamsFromConfig(cfg.Inverter)
	if err != nil {
		logger.Fatal("invalid inverter config", zap.Error(err))
	}
	inverter, err := service.NewInverter(params, bat, predictor.DefaultGrid(), logger)
	if err != nil {
		logger.Fatal("could not create inverter", zap.Error(err))
	}

	// calibrated load forecast
	forecast := service.NewLoadForecast(table, store, location, logger)
	refresher := service.NewRefresher(forecast, cfg.Forecast.PredictionHours, logger)

	mqttClient := connectMQTT(cfg, logger)
	if mqttClient != nil {
		defer mqttClient.Disconnect()
	}

	refresh := func() {
		series := refresher.Refresh(time.Now())
		if mqttClient == nil {
			return
		}
		mqttClient.PublishForecast(events.ForecastMessage{
			UpdatedAt: series.UpdatedAt,
			Points:    series.Points,
		}, func(err error) {
			if err != nil {
				logger.Warn("forecast publish failed", zap.Error(err))
			}
		}, 10*time.Second)
	}
	refresh()

	// periodic forecast refresh
	ctx, cancelScheduler := context.WithCancel(context.Background())
	defer cancelScheduler()
	sched := quartz.NewStdScheduler()
	sched.Start(ctx)
	refreshJob := job.NewFunctionJob(func(_ context.Context) (bool, error) {
		refresh()
		return true, nil
	})
	trigger := quartz.NewSimpleTrigger(time.Duration(cfg.Forecast.RefreshIntervalMillis) * time.Millisecond)
	if err := sched.ScheduleJob(quartz.NewJobDetail(refreshJob, quartz.NewJobKey("forecast_refresh")), trigger); err != nil {
		logger.Fatal("could not schedule forecast refresh", zap.Error(err))
	}
	defer sched.Stop()

	var dispatcher server.Dispatcher = inverter
	if mqttClient != nil {
		dispatcher = &publishingDispatcher{inverter: inverter, client: mqttClient, logger: logger}
	}

	apiServer := server.NewServer(*cfg, dispatcher, refresher)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(apiServer, done)

	err = apiServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")
}

// publishingDispatcher forwards dispatch calls to the inverter and mirrors
// each result to the flow and sensor state topics.
type publishingDispatcher struct {
	inverter *service.Inverter
	client   *mqtt.MQTTClient
	logger   *zap.Logger
}

func (d *publishingDispatcher) ProcessEnergy(generation, consumption float64, hour int) domain.EnergyFlowResult {
	result := d.inverter.ProcessEnergy(generation, consumption, hour)
	d.client.PublishEnergyFlow(events.EnergyFlowMessage{Hour: hour, Result: result}, func(err error) {
		if err != nil {
			d.logger.Warn("energy flow publish failed", zap.Error(err))
		}
	}, 5*time.Second)
	return result
}

func connectMQTT(cfg *config.Config, logger *zap.Logger) *mqtt.MQTTClient {
	if cfg.MQTT.Host == "" {
		return nil
	}

	client := mqtt.CreateMQTTClient(cfg, mqtt.OptsFromConfig(cfg), nil, func(err error) {
		logger.Warn("mqtt connection lost", zap.Error(err))
	})
	if err := client.ConnectSync(10 * time.Second); err != nil {
		logger.Fatal("could not connect to mqtt broker", zap.Error(err))
	}
	client.PublishBridgeOnline(func(err error) {
		if err != nil {
			logger.Warn("bridge state publish failed", zap.Error(err))
		}
	}, 5*time.Second)

	if cfg.MQTT.HADiscoveryEnable {
		publishHADiscovery(cfg, client, logger)
	}
	return client
}

func publishHADiscovery(cfg *config.Config, client *mqtt.MQTTClient, logger *zap.Logger) {
	sensors := events.EnergyFlowSensors(cfg.MQTT.BaseTopic)
	sensors = append(sensors,
		events.LoadForecastSensor(cfg.MQTT.BaseTopic),
		events.BridgeStateSensor(cfg.MQTT.BaseTopic))

	for _, sensor := range sensors {
		payload, err := json.Marshal(mqtt.GenericSensorToHADiscoveryMessage(client, sensor))
		if err != nil {
			logger.Warn("discovery marshal failed", zap.String("sensor", sensor.Id), zap.Error(err))
			continue
		}
		client.Publish(mqtt.HADiscoverySensorTopic(cfg.MQTT.HADiscoveryTopic, sensor),
			payload, 0, true, func(err error) {
				if err != nil {
					logger.Warn("discovery publish failed", zap.Error(err))
				}
			}, 5*time.Second)
	}
}

func initConfig() (*config.Config, error) {

	// alias PORT => HOMEFLUX_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("HOMEFLUX_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("homeflux")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	// check and fix base topic
	baseTopic, err := config.CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return nil, errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	// check and fix homeassistant discovery topic
	hadBaseTopic, err := config.CheckMQTTTopic(cfg.MQTT.HADiscoveryTopic)
	if err != nil {
		return nil, errors.New("invalid homeassistant discovery topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.HADiscoveryTopic = hadBaseTopic

	// check bounds
	if cfg.Inverter.MaxPowerWh <= 0 {
		return nil, errors.New("config param inverter.max_power_wh should be > 0")
	}
	if cfg.Forecast.PredictionHours <= 0 {
		return nil, errors.New("config param forecast.prediction_hours should be > 0")
	}
	if cfg.Forecast.RefreshIntervalMillis < 60000 {
		return nil, errors.New("config param forecast.refresh_interval_millis should be >= 60000")
	}
	if cfg.Meter.Enable && cfg.Meter.PollIntervalMillis < 1000 {
		return nil, errors.New("config param meter.poll_interval_millis should be >= 1000")
	}
	if cfg.LoadProfile.File == "" {
		return nil, errors.New("config param load_profile.file is mandatory")
	}

	return &cfg, nil
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("timezone", "Europe/Berlin")
	viper.SetDefault("port", 8080)
	viper.SetDefault("inverter.provider", "GenericInverter")
	viper.SetDefault("inverter.max_power_wh", 10000)
	viper.SetDefault("battery.capacity_wh", 10000)
	viper.SetDefault("battery.initial_soc_percent", 50)
	viper.SetDefault("battery.min_soc_percent", 10)
	viper.SetDefault("battery.max_soc_percent", 90)
	viper.SetDefault("battery.charge_efficiency", 0.9)
	viper.SetDefault("battery.discharge_efficiency", 0.9)
	viper.SetDefault("load_profile.file", "data/load_profiles.json")
	viper.SetDefault("load_profile.year_energy_kwh", 0)
	viper.SetDefault("forecast.prediction_hours", 48)
	viper.SetDefault("forecast.refresh_interval_millis", 3600000)
	viper.SetDefault("meter.enable", false)
	viper.SetDefault("meter.port", 502)
	viper.SetDefault("meter.poll_interval_millis", 5000)
	viper.SetDefault("mqtt.base_topic", "homeflux")
	viper.SetDefault("mqtt.ha_discovery_enable", false)
	viper.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	slog.Info("Using", "config", cfg)
}
