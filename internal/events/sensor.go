package events

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/homeflux/homeflux/internal/core/domain"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_BRIDGE_STATE       = "bridge"
	SENSOR_ID_GRID_EXPORT        = "grid_export"
	SENSOR_ID_GRID_IMPORT        = "grid_import"
	SENSOR_ID_LOSSES             = "losses"
	SENSOR_ID_SELF_CONSUMPTION   = "self_consumption"
	SENSOR_ID_LOAD_FORECAST      = "load_forecast"
	STATE_CLASS_MEASUREMENT      = "measurement"
	STATE_CLASS_TOTAL_INCREASING = "total_increasing"
	DEVICE_CLASS_ENERGY          = "energy"
	DEVICE_CLASS_POWER           = "power"
	SENSOR_TYPE_SENSOR           = "sensor"
	SENSOR_TYPE_BINARY           = "binary_sensor"
)

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("homeflux_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "homeflux",
		Model:        "Homeflux",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("Homeflux %s", md5HashShort(baseTopic)),
	}
}

func BridgeStateSensor(baseTopic string) GenericSensor {
	dev := BridgeDevice(baseTopic)
	return GenericSensor{
		Device:     dev,
		Id:         SENSOR_ID_BRIDGE_STATE,
		SensorType: SENSOR_TYPE_BINARY,
		Name:       "Bridge state",
		UniqueId:   fmt.Sprintf("%s_%s", dev.Id, SENSOR_ID_BRIDGE_STATE),
	}
}

// EnergyFlowSensors describes the four dispatch result fields for Home
// Assistant discovery.
func EnergyFlowSensors(baseTopic string) []GenericSensor {
	dev := BridgeDevice(baseTopic)
	ids := []struct {
		id   string
		name string
	}{
		{SENSOR_ID_GRID_EXPORT, "Grid export"},
		{SENSOR_ID_GRID_IMPORT, "Grid import"},
		{SENSOR_ID_LOSSES, "Conversion losses"},
		{SENSOR_ID_SELF_CONSUMPTION, "Self consumption"},
	}
	sensors := make([]GenericSensor, 0, len(ids))
	for _, s := range ids {
		sensors = append(sensors, GenericSensor{
			Device:            dev,
			Id:                s.id,
			SensorType:        SENSOR_TYPE_SENSOR,
			Name:              s.name,
			UniqueId:          fmt.Sprintf("%s_%s", dev.Id, s.id),
			UnitOfMeasurement: "Wh",
			StateClass:        STATE_CLASS_MEASUREMENT,
			DeviceClass:       DEVICE_CLASS_ENERGY,
		})
	}
	return sensors
}

// EnergyFlowSensorValues maps each flow sensor id to its value in the
// dispatch result, so state publishes line up with the discovery configs.
func EnergyFlowSensorValues(r domain.EnergyFlowResult) map[string]float64 {
	return map[string]float64{
		SENSOR_ID_GRID_EXPORT:      r.GridExport,
		SENSOR_ID_GRID_IMPORT:      r.GridImport,
		SENSOR_ID_LOSSES:           r.Losses,
		SENSOR_ID_SELF_CONSUMPTION: r.SelfConsumption,
	}
}

func LoadForecastSensor(baseTopic string) GenericSensor {
	dev := BridgeDevice(baseTopic)
	return GenericSensor{
		Device:            dev,
		Id:                SENSOR_ID_LOAD_FORECAST,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Load forecast",
		UniqueId:          fmt.Sprintf("%s_%s", dev.Id, SENSOR_ID_LOAD_FORECAST),
		UnitOfMeasurement: "Wh",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_ENERGY,
	}
}

func md5HashShort(value string) string {
	hash := md5.Sum([]byte(value))
	return hex.EncodeToString(hash[:])[:8]
}
