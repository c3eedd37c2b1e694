// Package status publishes the device state to an MQTT broker so that other
// tools can follow source switches and retunes.
package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kevmo314/go-avertv/pkg/config"
)

var (
	ErrPublishTimeout = errors.New("status: publish timed out")
	ErrConnectTimeout = errors.New("status: connect timed out")
)

const defaultTimeout = 5 * time.Second

// Event is the retained payload of <prefix>/state.
type Event struct {
	Session           string    `json:"session"`
	Reason            string    `json:"reason"`
	Source            string    `json:"source"`
	Standard          string    `json:"standard"`
	EffectiveStandard string    `json:"effective_standard,omitempty"`
	Audio             string    `json:"audio"`
	Paused            bool      `json:"paused"`
	FrequencyMHz      float64   `json:"frequency_mhz"`
	Channel           string    `json:"channel,omitempty"`
	VerticalLock      bool      `json:"vertical_lock"`
	HorizontalLock    bool      `json:"horizontal_lock"`
	Width             int       `json:"width"`
	Height            int       `json:"height"`
	Color             Color     `json:"color"`
	Streamer          string    `json:"streamer_session,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

type Color struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
}

type Publisher interface {
	Publish(Event) error
	Close() error
}

// Noop discards events. It stands in when MQTT is disabled.
type Noop struct{}

func (Noop) Publish(Event) error { return nil }
func (Noop) Close() error        { return nil }

// client is the part of pahomqtt.Client the publisher uses.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Disconnect(quiesce uint)
}

type MQTT struct {
	client  client
	prefix  string
	qos     byte
	timeout time.Duration
	log     *slog.Logger
}

func StateTopic(prefix string) string        { return prefix + "/state" }
func AvailabilityTopic(prefix string) string { return prefix + "/availability" }

// New connects to the broker when cfg is enabled and returns Noop otherwise.
func New(cfg config.MQTTConfig, log *slog.Logger) (Publisher, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	return Connect(cfg, log)
}

// Connect opens a session with a unique client id and marks the device
// online. A broker-side will marks it offline if the process dies.
func Connect(cfg config.MQTTConfig, log *slog.Logger) (*MQTT, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	clientID := fmt.Sprintf("%s-%s", cfg.ClientID, uuid.NewString()[:8])

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(cfg.Timeout)
	opts.SetWill(AvailabilityTopic(cfg.TopicPrefix), "offline", byte(cfg.QoS), true)
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		log.Warn("mqtt connection lost", "err", err)
	})

	c := pahomqtt.NewClient(opts)
	if err := waitConnect(c, c.Connect(), cfg.Timeout); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}
	log.Info("mqtt connected", "broker", cfg.Broker, "client_id", clientID)

	m := newMQTT(c, cfg, log)
	if err := m.publish(AvailabilityTopic(m.prefix), []byte("online")); err != nil {
		log.Warn("mqtt availability publish failed", "err", err)
	}
	return m, nil
}

// waitConnect waits for a connect token. On failure the client is
// disconnected so its reconnect loop stops.
func waitConnect(c client, token pahomqtt.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		c.Disconnect(0)
		return fmt.Errorf("%w after %v", ErrConnectTimeout, timeout)
	}
	if err := token.Error(); err != nil {
		c.Disconnect(0)
		return err
	}
	return nil
}

func newMQTT(c client, cfg config.MQTTConfig, log *slog.Logger) *MQTT {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &MQTT{client: c, prefix: cfg.TopicPrefix, qos: byte(cfg.QoS), timeout: timeout, log: log}
}

func (m *MQTT) publish(topic string, payload []byte) error {
	token := m.client.Publish(topic, m.qos, true, payload)
	if !token.WaitTimeout(m.timeout) {
		return fmt.Errorf("%w: %s", ErrPublishTimeout, topic)
	}
	return token.Error()
}

// Publish sends e as retained JSON. A zero timestamp is set to now.
func (m *MQTT) Publish(e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding status: %w", err)
	}
	return m.publish(StateTopic(m.prefix), payload)
}

// Close marks the device offline and disconnects.
func (m *MQTT) Close() error {
	err := m.publish(AvailabilityTopic(m.prefix), []byte("offline"))
	m.client.Disconnect(250)
	return err
}
