package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/homeflux/homeflux/internal/config"
	"github.com/homeflux/homeflux/internal/events"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	MQTT_PAYLOAD_ONLINE  = "online"
	MQTT_PAYLOAD_OFFLINE = "offline"
)

func OptsFromConfig(cfg *config.Config) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTT.Host, cfg.MQTT.Port))
	opts.SetClientID(fmt.Sprintf("homeflux_%d", rand.IntN(1000)))
	if cfg.MQTT.Username != "" && cfg.MQTT.Password != "" {
		opts.SetUsername(cfg.MQTT.Username)
		opts.SetPassword(cfg.MQTT.Password)
	}
	opts.WillEnabled = true
	opts.WillPayload = []byte(MQTT_PAYLOAD_OFFLINE)
	opts.WillRetained = true
	opts.WillTopic = bridgeStateTopic(cfg.MQTT.BaseTopic)
	opts.WillQos = 0

	return opts
}

func CreateMQTTClient(cfg *config.Config, opts *mqtt.ClientOptions, onConnectHandler func(),
	onConnectionLostHandler func(error)) *MQTTClient {
	if onConnectHandler != nil {
		opts.OnConnect = func(_ mqtt.Client) { onConnectHandler() }
	}
	if onConnectionLostHandler != nil {
		opts.OnConnectionLost = func(_ mqtt.Client, err error) { onConnectionLostHandler(err) }
	}
	return &MQTTClient{
		client: mqtt.NewClient(opts),
		cfg:    cfg.MQTT,
	}
}

type MQTTClient struct {
	client mqtt.Client
	cfg    config.MQTTConfig
}

func (c *MQTTClient) baseTopic() string {
	return c.cfg.BaseTopic
}

func (c *MQTTClient) BridgeStateTopic() string {
	return bridgeStateTopic(c.baseTopic())
}

func (c *MQTTClient) SensorStateTopic(sensorId string) string {
	return fmt.Sprintf("%s/sensor/%s/state", c.baseTopic(), sensorId)
}

func (c *MQTTClient) BinarySensorStateTopic(sensorId string) string {
	return fmt.Sprintf("%s/binary_sensor/%s/state", c.baseTopic(), sensorId)
}

func (c *MQTTClient) EnergyFlowStateTopic() string {
	return fmt.Sprintf("%s/flow/state", c.baseTopic())
}

func (c *MQTTClient) ForecastStateTopic() string {
	return fmt.Sprintf("%s/forecast/state", c.baseTopic())
}

func (c *MQTTClient) Publish(topic string, payload any, qos byte, retain bool, continuation func(error), timeout time.Duration) {
	token := c.client.Publish(topic, qos, retain, payload)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT publish timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

// PublishBridgeOnline announces the bridge on the LWT topic.
func (c *MQTTClient) PublishBridgeOnline(continuation func(error), timeout time.Duration) {
	c.Publish(c.BridgeStateTopic(), MQTT_PAYLOAD_ONLINE, 0, true, continuation, timeout)
}

// PublishEnergyFlow publishes one hour's dispatch result: the aggregate as
// JSON on the flow state topic plus each field on the per-sensor state
// topic its discovery config points at. The continuation runs once per
// published topic.
func (c *MQTTClient) PublishEnergyFlow(msg events.EnergyFlowMessage, continuation func(error), timeout time.Duration) {
	payload, err := json.Marshal(msg)
	if err != nil {
		continuation(err)
		return
	}
	c.Publish(c.EnergyFlowStateTopic(), payload, 0, false, continuation, timeout)
	for sensorId, value := range events.EnergyFlowSensorValues(msg.Result) {
		c.Publish(c.SensorStateTopic(sensorId),
			strconv.FormatFloat(value, 'f', 2, 64), 0, false, continuation, timeout)
	}
}

// PublishForecast publishes the adjusted forecast series as JSON, retained
// so consumers joining later still see the current horizon.
func (c *MQTTClient) PublishForecast(msg events.ForecastMessage, continuation func(error), timeout time.Duration) {
	payload, err := json.Marshal(msg)
	if err != nil {
		continuation(err)
		return
	}
	c.Publish(c.ForecastStateTopic(), payload, 0, true, continuation, timeout)
}

func (c *MQTTClient) Connect(continuation func(error), timeout time.Duration) {
	token := c.client.Connect()
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT connect timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

// ConnectSync connects and waits for the broker handshake.
func (c *MQTTClient) ConnectSync(timeout time.Duration) error {
	errCh := make(chan error, 1)
	c.Connect(func(err error) { errCh <- err }, timeout)
	return <-errCh
}

func (c *MQTTClient) Disconnect() {
	c.client.Disconnect(500)
}

func bridgeStateTopic(baseTopic string) string {
	return fmt.Sprintf("%s/bridge/state", baseTopic)
}
