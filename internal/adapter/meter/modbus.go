package meter

import (
	"fmt"
	"time"

	"github.com/homeflux/homeflux/internal/adapter/measurement"
	"github.com/homeflux/homeflux/internal/config"
	"github.com/homeflux/homeflux/internal/util/logutil"

	"github.com/simonvetter/modbus"
	"go.uber.org/zap"
)

// Poller reads the house power meter over Modbus TCP and folds the power
// readings into hourly total-load samples on the measurement store. Each
// completed hour becomes one sample stamped with the hour start.
type Poller struct {
	client        *modbus.ModbusClient
	store         *measurement.Store
	interval      time.Duration
	powerRegister uint16
	logger        *zap.Logger

	stop chan struct{}
	done chan struct{}
}

func NewPoller(cfg config.MeterConfig, store *measurement.Store, logger *zap.Logger) (*Poller, error) {
	client, err := modbus.NewClient(&modbus.ClientConfiguration{
		URL:     fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port),
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	if cfg.UnitId > 0 {
		if err := client.SetUnitId(uint8(cfg.UnitId)); err != nil {
			return nil, err
		}
	}
	return &Poller{
		client:        client,
		store:         store,
		interval:      time.Duration(cfg.PollIntervalMillis) * time.Millisecond,
		powerRegister: cfg.PowerRegister,
		logger:        logutil.ComponentLogger("meter_poller", logger),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}, nil
}

// Start opens the modbus connection and begins polling.
func (p *Poller) Start() error {
	if err := p.client.Open(); err != nil {
		return err
	}
	go p.run()
	return nil
}

// Stop ends polling and closes the connection. The partial hour being
// accumulated is discarded.
func (p *Poller) Stop() {
	close(p.stop)
	<-p.done
	if err := p.client.Close(); err != nil {
		p.logger.Warn("meter close failed", zap.Error(err))
	}
}

func (p *Poller) run() {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	acc := &hourAccumulator{store: p.store, logger: p.logger}
	for {
		select {
		case <-p.stop:
			return
		case now := <-ticker.C:
			powerW, err := p.client.ReadFloat32(p.powerRegister, modbus.HOLDING_REGISTER)
			if err != nil {
				p.logger.Warn("meter read failed", zap.Error(err))
				continue
			}
			acc.observe(now, float64(powerW))
		}
	}
}

// hourAccumulator integrates power readings into hourly watt-hour totals.
// A poll segment spanning an hour boundary is split at the boundary so
// each hour is credited exactly with its share.
type hourAccumulator struct {
	store  *measurement.Store
	logger *zap.Logger

	hourStart time.Time
	lastPoll  time.Time
	accWh     float64
}

func (a *hourAccumulator) observe(now time.Time, powerW float64) {
	if a.lastPoll.IsZero() {
		a.hourStart = now.Truncate(time.Hour)
		a.lastPoll = now
		return
	}
	for boundary := a.hourStart.Add(time.Hour); !now.Before(boundary); boundary = a.hourStart.Add(time.Hour) {
		a.accWh += powerW * boundary.Sub(a.lastPoll).Hours()
		a.store.Add(a.hourStart, a.accWh)
		a.logger.Debug("hourly load total recorded",
			zap.Time("hour", a.hourStart), zap.Float64("total_wh", a.accWh))
		a.hourStart = boundary
		a.lastPoll = boundary
		a.accWh = 0
	}
	a.accWh += powerW * now.Sub(a.lastPoll).Hours()
	a.lastPoll = now
}
